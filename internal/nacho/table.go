package nacho

import (
	"context"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

type Table struct {
	NumRows uint32
	MaxRows uint32
	pager   Pager
	logger  *zap.Logger
}

// NewTable derives the row count from the size of the database file.
// The file has no header, a trailing partial row (e.g. after the file was
// truncated mid row) is ignored and will be overwritten by the next insert.
func NewTable(logger *zap.Logger, aPager Pager) (*Table, error) {
	var (
		fileSize = aPager.FileSize()
		maxRows  = uint64(RowsPerPage) * uint64(aPager.MaxPages())
		numRows  = uint64(fileSize / RowSize)
	)

	if trailing := fileSize % RowSize; trailing != 0 {
		logger.Warn(
			"database file ends with a partial row, ignoring it",
			zap.Int64("file_size", fileSize),
			zap.Int64("trailing_bytes", trailing),
		)
	}

	if numRows > maxRows {
		return nil, fmt.Errorf("database file holds %d rows, table capacity is %d", numRows, maxRows)
	}

	return &Table{
		NumRows: uint32(numRows),
		MaxRows: uint32(maxRows),
		pager:   aPager,
		logger:  logger,
	}, nil
}

// RowLocation maps a row number to its page and the byte offset inside that page.
func RowLocation(rowNum uint32) (PageIndex, int) {
	var (
		pageIdx   = PageIndex(rowNum / RowsPerPage)
		rowOffset = rowNum % RowsPerPage
	)
	return pageIdx, int(rowOffset) * RowSize
}

func (t *Table) Full() bool {
	return t.NumRows >= t.MaxRows
}

// Start returns a cursor pointing at the first row.
func (t *Table) Start() *Cursor {
	return &Cursor{
		Table:      t,
		RowNum:     0,
		EndOfTable: t.NumRows == 0,
	}
}

// End returns a cursor pointing one past the last row, where the next row is appended.
func (t *Table) End() *Cursor {
	return &Cursor{
		Table:      t,
		RowNum:     t.NumRows,
		EndOfTable: true,
	}
}

// Close writes all loaded pages back to the file, closes it and releases
// every cached page. Only bytes of rows that exist are written, so the file
// size stays NumRows * RowSize. It must be called exactly once.
func (t *Table) Close(ctx context.Context) error {
	fullPages := t.NumRows / RowsPerPage

	for i := uint32(0); i < fullPages; i++ {
		pageIdx := PageIndex(i)
		if !t.pager.IsLoaded(pageIdx) {
			continue
		}
		if err := t.pager.Flush(ctx, pageIdx, PageDiskSize); err != nil {
			return multierr.Append(fmt.Errorf("flush page %d: %w", pageIdx, err), t.pager.Close())
		}
		t.pager.Release(pageIdx)
	}

	if extraRows := t.NumRows % RowsPerPage; extraRows > 0 {
		pageIdx := PageIndex(fullPages)
		if t.pager.IsLoaded(pageIdx) {
			if err := t.pager.Flush(ctx, pageIdx, int(extraRows)*RowSize); err != nil {
				return multierr.Append(fmt.Errorf("flush page %d: %w", pageIdx, err), t.pager.Close())
			}
			t.pager.Release(pageIdx)
		}
	}

	if err := t.pager.Close(); err != nil {
		return fmt.Errorf("close database file: %w", err)
	}

	// Pages past the last row could have been loaded by a cursor, drop them too
	for i := 0; i < t.pager.MaxPages(); i++ {
		t.pager.Release(PageIndex(i))
	}

	t.logger.Debug("table closed", zap.Uint32("rows", t.NumRows))

	return nil
}
