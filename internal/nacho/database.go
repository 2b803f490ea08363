package nacho

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var (
	ErrTableFull      = errors.New("table full")
	ErrDatabaseClosed = errors.New("database is closed")

	errUnrecognizedStatementKind = errors.New("unrecognised statement kind")
)

// FatalError means the in-memory state can no longer be trusted to match
// the file. The database refuses further work once one has been returned.
type FatalError struct {
	Op  string
	Err error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("fatal error during %s: %s", e.Op, e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

func IsFatal(err error) bool {
	var fatal *FatalError
	return errors.As(err, &fatal)
}

type Stats struct {
	Rows          uint32 `json:"rows"`
	MaxRows       uint32 `json:"max_rows"`
	ResidentPages int    `json:"resident_pages"`
	MaxPages      int    `json:"max_pages"`
	FileSize      int64  `json:"file_size"`
}

// Database is the engine façade over a single users table. It is not safe
// for concurrent use.
type Database struct {
	Name    string
	table   *Table
	pager   Pager
	logger  *zap.Logger
	metrics *Metrics
	fault   error
	closed  bool
}

// Open opens or creates the database file and loads nothing but its size.
func Open(ctx context.Context, logger *zap.Logger, filePath string, maxPages int, metrics *Metrics) (*Database, error) {
	dbFile, err := os.OpenFile(filePath, os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		return nil, &FatalError{Op: "open", Err: err}
	}

	aPager, err := NewPager(logger, dbFile, maxPages, metrics)
	if err != nil {
		return nil, &FatalError{Op: "open", Err: multierr.Append(err, dbFile.Close())}
	}

	aDatabase, err := NewDatabase(ctx, logger, filePath, aPager, metrics)
	if err != nil {
		return nil, &FatalError{Op: "open", Err: multierr.Append(err, aPager.Close())}
	}

	return aDatabase, nil
}

func NewDatabase(ctx context.Context, logger *zap.Logger, name string, aPager Pager, metrics *Metrics) (*Database, error) {
	aTable, err := NewTable(logger, aPager)
	if err != nil {
		return nil, err
	}

	metrics.setRows(aTable.NumRows)

	logger.Info(
		"database opened",
		zap.String("name", name),
		zap.Uint32("rows", aTable.NumRows),
		zap.Uint32("max_rows", aTable.MaxRows),
	)

	return &Database{
		Name:    name,
		table:   aTable,
		pager:   aPager,
		logger:  logger,
		metrics: metrics,
	}, nil
}

func (d *Database) check() error {
	if d.closed {
		return ErrDatabaseClosed
	}
	return d.fault
}

// fail latches the first fatal error, every later call returns it.
func (d *Database) fail(op string, err error) error {
	if d.fault != nil {
		return d.fault
	}
	d.fault = &FatalError{Op: op, Err: err}
	d.logger.Error("database fault", zap.String("op", op), zap.Error(err))
	return d.fault
}

// ExecuteStatement runs a prepared statement against the table.
func (d *Database) ExecuteStatement(ctx context.Context, stmt Statement) (StatementResult, error) {
	switch stmt.Kind {
	case Insert:
		if err := d.Insert(ctx, stmt.Row); err != nil {
			return StatementResult{}, err
		}
		return StatementResult{Kind: Insert, RowsAffected: 1}, nil
	case Select:
		it, err := d.Select(ctx)
		if err != nil {
			return StatementResult{}, err
		}
		return StatementResult{Kind: Select, Rows: it}, nil
	}
	return StatementResult{}, fmt.Errorf("%w: %d", errUnrecognizedStatementKind, stmt.Kind)
}

// Insert appends a row at the end of the table.
func (d *Database) Insert(ctx context.Context, aRow Row) error {
	if err := d.check(); err != nil {
		return err
	}

	if d.table.Full() {
		d.metrics.tableFull()
		return ErrTableFull
	}

	aCursor := d.table.End()
	slot, err := aCursor.Value(ctx)
	if err != nil {
		return d.fail("insert", err)
	}

	MarshalRow(&aRow, slot.Bytes())
	d.table.NumRows += 1
	d.metrics.rowInserted(d.table.NumRows)

	d.logger.Debug(
		"row inserted",
		zap.Uint32("id", aRow.ID),
		zap.Uint32("row_num", aCursor.RowNum),
		zap.Uint32("page", uint32(slot.Page.Index)),
	)

	return nil
}

// Select returns an iterator over all rows in insertion order.
func (d *Database) Select(ctx context.Context) (Iterator, error) {
	if err := d.check(); err != nil {
		return nil, err
	}
	return &rowIterator{
		db:     d,
		cursor: d.table.Start(),
	}, nil
}

func (d *Database) Stats() Stats {
	return Stats{
		Rows:          d.table.NumRows,
		MaxRows:       d.table.MaxRows,
		ResidentPages: d.pager.ResidentPages(),
		MaxPages:      d.pager.MaxPages(),
		FileSize:      d.pager.FileSize(),
	}
}

// Close flushes cached pages and closes the file. After a fault nothing is
// flushed, only the file is closed and the fault is returned.
func (d *Database) Close(ctx context.Context) error {
	if d.closed {
		return ErrDatabaseClosed
	}
	d.closed = true

	if d.fault != nil {
		return multierr.Append(d.fault, d.pager.Close())
	}

	if err := d.table.Close(ctx); err != nil {
		d.fault = &FatalError{Op: "close", Err: err}
		d.logger.Error("database fault", zap.String("op", "close"), zap.Error(err))
		return d.fault
	}

	d.logger.Info("database closed", zap.String("name", d.Name), zap.Uint32("rows", d.table.NumRows))

	return nil
}
