package nacho

import (
	"database/sql/driver"
	"fmt"
	"io"

	"github.com/RichardKnop/nacho/internal/nacho"
)

var columns = []string{"id", "username", "email"}

// Rows are fully read from the table before they are returned, so a slow
// reader never holds the database lock.
type Rows struct {
	rows []nacho.Row
	i    int
}

// Columns returns the names of the columns.
func (r *Rows) Columns() []string {
	return columns
}

// Close closes the rows iterator.
func (r *Rows) Close() error {
	r.rows = nil
	return nil
}

// Next is called to populate the next row of data into
// the provided slice. The provided slice will be the same
// size as the Columns() are wide.
//
// Next should return io.EOF when there are no more rows.
func (r *Rows) Next(dest []driver.Value) error {
	if r.i >= len(r.rows) {
		return io.EOF
	}

	if len(dest) != len(columns) {
		return fmt.Errorf("expected %d values, got %d", len(columns), len(dest))
	}

	aRow := r.rows[r.i]
	dest[0] = int64(aRow.ID)
	dest[1] = aRow.Username
	dest[2] = aRow.Email
	r.i += 1

	return nil
}
