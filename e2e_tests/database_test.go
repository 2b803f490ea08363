package e2etests

import (
	"fmt"

	"github.com/RichardKnop/nacho/internal/nacho"
)

func (s *TestSuite) execInsert(aRow nacho.Row) error {
	aResult, err := s.db.Exec(fmt.Sprintf("insert %d %s %s", aRow.ID, aRow.Username, aRow.Email))
	if err != nil {
		return err
	}
	rowsAffected, err := aResult.RowsAffected()
	s.Require().NoError(err)
	s.Equal(int64(1), rowsAffected)
	return nil
}

func (s *TestSuite) selectAll() []nacho.Row {
	rows, err := s.db.Query("select")
	s.Require().NoError(err)
	defer rows.Close()

	var result []nacho.Row
	for rows.Next() {
		var aRow nacho.Row
		s.Require().NoError(rows.Scan(&aRow.ID, &aRow.Username, &aRow.Email))
		result = append(result, aRow)
	}
	s.Require().NoError(rows.Err())
	return result
}

func (s *TestSuite) TestEmptyDatabase() {
	s.Empty(s.selectAll())
}

func (s *TestSuite) TestScenario() {
	names := []string{"alice", "bob", "carol", "dave", "eve"}
	for i, name := range names {
		err := s.execInsert(nacho.Row{ID: uint32(i + 1), Username: name, Email: name + "@example.com"})
		s.Require().NoError(err)
	}

	rows := s.selectAll()
	s.Require().Len(rows, 5)
	for i, aRow := range rows {
		s.Equal(uint32(i+1), aRow.ID)
		s.Equal(names[i], aRow.Username)
	}
}

func (s *TestSuite) TestPersistence() {
	rows := s.fakeRows(3*nacho.RowsPerPage + 4)
	for _, aRow := range rows {
		s.Require().NoError(s.execInsert(aRow))
	}

	s.reopen("")
	s.Equal(rows, s.selectAll())

	// Appending after a restart continues on the partial last page
	more := s.fakeRows(5)
	for i := range more {
		more[i].ID += uint32(len(rows))
		s.Require().NoError(s.execInsert(more[i]))
	}

	s.reopen("log_level=error")
	s.Equal(append(rows, more...), s.selectAll())
}

func (s *TestSuite) TestTableFull() {
	s.reopen("max_pages=2")

	rows := s.fakeRows(2 * nacho.RowsPerPage)
	for _, aRow := range rows {
		s.Require().NoError(s.execInsert(aRow))
	}

	err := s.execInsert(nacho.Row{ID: 1000, Username: "zed", Email: "zed@example.com"})
	s.Require().ErrorIs(err, nacho.ErrTableFull)

	s.reopen("max_pages=2")
	s.Equal(rows, s.selectAll())
}

func (s *TestSuite) TestPrepareErrors() {
	_, err := s.db.Exec("insert -1 alice alice@example.com")
	s.Require().Error(err)

	_, err = s.db.Exec("insert 1 alice")
	s.Require().Error(err)

	_, err = s.db.Exec("drop table users")
	s.Require().Error(err)

	s.Empty(s.selectAll())
}

func (s *TestSuite) TestPreparedStatement() {
	stmt, err := s.db.Prepare("insert 7 grace grace@example.com")
	s.Require().NoError(err)

	_, err = stmt.Exec()
	s.Require().NoError(err)
	_, err = stmt.Exec()
	s.Require().NoError(err)
	s.Require().NoError(stmt.Close())

	rows := s.selectAll()
	s.Require().Len(rows, 2)
	s.Equal(rows[0], rows[1])
}
