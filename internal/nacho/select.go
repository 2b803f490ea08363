package nacho

import (
	"context"
)

// rowIterator scans the table from the first row in insertion order.
type rowIterator struct {
	db      *Database
	cursor  *Cursor
	current Row
	err     error
}

func (it *rowIterator) Next(ctx context.Context) bool {
	if it.err != nil || it.cursor.EndOfTable {
		return false
	}
	if err := it.db.check(); err != nil {
		it.err = err
		return false
	}

	slot, err := it.cursor.Value(ctx)
	if err != nil {
		it.err = it.db.fail("select", err)
		return false
	}

	UnmarshalRow(slot.Bytes(), &it.current)
	it.cursor.Advance()
	it.db.metrics.rowScanned()

	return true
}

func (it *rowIterator) Row() Row {
	return it.current
}

func (it *rowIterator) Err() error {
	return it.err
}

// CollectRows drains an iterator.
func CollectRows(ctx context.Context, it Iterator) ([]Row, error) {
	var rows []Row
	for it.Next(ctx) {
		rows = append(rows, it.Row())
	}
	if err := it.Err(); err != nil {
		return nil, err
	}
	return rows, nil
}
