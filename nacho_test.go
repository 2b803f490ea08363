package nacho

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T, dsn string) *sql.DB {
	db, err := sql.Open(driverName, dsn)
	require.NoError(t, err)
	return db
}

func TestDriver_SharesDatabasePerFile(t *testing.T) {
	t.Parallel()

	var (
		aDriver  = &Driver{}
		filePath = filepath.Join(t.TempDir(), "test.db")
	)

	conn1, err := aDriver.Open(filePath)
	require.NoError(t, err)
	conn2, err := aDriver.Open(filePath + "?log_level=debug")
	require.NoError(t, err)

	assert.Same(t, conn1.(*Conn).shared, conn2.(*Conn).shared)
	assert.Equal(t, 2, conn1.(*Conn).shared.refs)
	assert.Len(t, aDriver.databases, 1)

	require.NoError(t, conn1.Close())
	// Closing twice does not release twice
	require.NoError(t, conn1.Close())
	assert.Len(t, aDriver.databases, 1)

	require.NoError(t, conn2.Close())
	assert.Empty(t, aDriver.databases)
}

func TestDriver_InvalidConnectionString(t *testing.T) {
	t.Parallel()

	_, err := (&Driver{}).Open(filepath.Join(t.TempDir(), "test.db") + "?max_pages=-1")
	require.Error(t, err)
}

func TestConn_ClosedConnection(t *testing.T) {
	t.Parallel()

	aConn, err := (&Driver{}).Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, aConn.Close())

	conn := aConn.(*Conn)
	_, err = conn.ExecContext(context.Background(), "insert 1 a b", nil)
	require.ErrorIs(t, err, errConnClosed)
}

func TestDriver_RoundTrip(t *testing.T) {
	t.Parallel()

	var (
		ctx      = context.Background()
		filePath = filepath.Join(t.TempDir(), "test.db")
		db       = openTestDB(t, filePath+"?max_pages=2")
	)

	aResult, err := db.ExecContext(ctx, "insert 42 alice alice@example.com")
	require.NoError(t, err)

	rowsAffected, err := aResult.RowsAffected()
	require.NoError(t, err)
	assert.Equal(t, int64(1), rowsAffected)

	lastInsertID, err := aResult.LastInsertId()
	require.NoError(t, err)
	assert.Equal(t, int64(42), lastInsertID)

	var (
		id       int64
		username string
		email    string
	)
	err = db.QueryRowContext(ctx, "select").Scan(&id, &username, &email)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.Equal(t, "alice", username)
	assert.Equal(t, "alice@example.com", email)

	rows, err := db.QueryContext(ctx, "select")
	require.NoError(t, err)
	cols, err := rows.Columns()
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "username", "email"}, cols)
	require.NoError(t, rows.Close())

	require.NoError(t, db.Close())
}

func TestDriver_Unsupported(t *testing.T) {
	t.Parallel()

	var (
		ctx = context.Background()
		db  = openTestDB(t, filepath.Join(t.TempDir(), "test.db"))
	)
	defer db.Close()

	_, err := db.BeginTx(ctx, nil)
	require.ErrorIs(t, err, ErrTransactionsNotSupported)

	_, err = db.ExecContext(ctx, "insert 1 a b", "extra")
	require.Error(t, err)

	_, err = db.ExecContext(ctx, "insert -1 a b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse query")
}
