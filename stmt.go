package nacho

import (
	"context"
	"database/sql/driver"

	"github.com/RichardKnop/nacho/internal/nacho"
)

type Stmt struct {
	conn      *Conn
	statement nacho.Statement
}

// Close closes the statement.
func (s *Stmt) Close() error {
	return nil
}

// NumInput returns the number of placeholder parameters, statements
// never have any so the sql package rejects arguments up front.
func (s *Stmt) NumInput() int {
	return 0
}

// Exec executes a statement that doesn't return rows, such as an INSERT.
//
// Deprecated: Drivers should implement StmtExecContext instead (or additionally).
func (s *Stmt) Exec(args []driver.Value) (driver.Result, error) {
	if len(args) > 0 {
		return nil, ErrArgumentsNotSupported
	}
	return s.conn.exec(context.Background(), s.statement)
}

func (s *Stmt) ExecContext(ctx context.Context, args []driver.NamedValue) (driver.Result, error) {
	if len(args) > 0 {
		return nil, ErrArgumentsNotSupported
	}
	return s.conn.exec(ctx, s.statement)
}

// Query executes a statement that may return rows, such as a SELECT.
//
// Deprecated: Drivers should implement StmtQueryContext instead (or additionally).
func (s *Stmt) Query(args []driver.Value) (driver.Rows, error) {
	if len(args) > 0 {
		return nil, ErrArgumentsNotSupported
	}
	return s.conn.query(context.Background(), s.statement)
}

func (s *Stmt) QueryContext(ctx context.Context, args []driver.NamedValue) (driver.Rows, error) {
	if len(args) > 0 {
		return nil, ErrArgumentsNotSupported
	}
	return s.conn.query(ctx, s.statement)
}

var _ driver.Stmt = (*Stmt)(nil)
var _ driver.StmtExecContext = (*Stmt)(nil)
var _ driver.StmtQueryContext = (*Stmt)(nil)
