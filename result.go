package nacho

type Result struct {
	rowsAffected int64
	lastInsertID int64
}

// LastInsertId returns the id of the inserted row, ids are chosen by the
// caller so this simply echoes it back.
func (r Result) LastInsertId() (int64, error) {
	return r.lastInsertID, nil
}

// RowsAffected returns the number of rows affected by the
// statement.
func (r Result) RowsAffected() (int64, error) {
	return r.rowsAffected, nil
}
