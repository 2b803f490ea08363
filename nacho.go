package nacho

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/RichardKnop/nacho/internal/nacho"
	"github.com/RichardKnop/nacho/internal/parser"
	"github.com/RichardKnop/nacho/internal/pkg/logging"
)

const (
	driverName = "nacho"
)

var (
	ErrTransactionsNotSupported = errors.New("transactions are not supported")
	ErrArgumentsNotSupported    = errors.New("query arguments are not supported")
	errConnClosed               = errors.New("connection is closed")
)

func init() {
	sql.Register(driverName, &Driver{})
}

// Driver implements the database/sql/driver.Driver interface.
// Connections to the same file share one open database.
type Driver struct {
	mu        sync.Mutex
	databases map[string]*sharedDatabase
}

type statementParser interface {
	Parse(context.Context, string) (nacho.Statement, error)
}

// sharedDatabase serializes access to an engine which is single threaded.
type sharedDatabase struct {
	mu     sync.Mutex
	db     *nacho.Database
	parser statementParser
	logger *zap.Logger
	key    string
	refs   int
}

// Open returns a new connection to the database.
// The name is a connection string, see ParseConnectionString.
func (d *Driver) Open(name string) (driver.Conn, error) {
	config, err := ParseConnectionString(name)
	if err != nil {
		return nil, err
	}

	key, err := filepath.Abs(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve database file path: %w", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.databases == nil {
		d.databases = make(map[string]*sharedDatabase)
	}

	// Check if database is already open
	shared, exists := d.databases[key]
	if !exists {
		logConf := logging.DefaultConfig()
		logConf.Level = config.GetZapLevel()
		logConf.OutputPaths = []string{"stderr"}
		logger, err := logConf.Build()
		if err != nil {
			return nil, fmt.Errorf("failed to create logger: %w", err)
		}

		db, err := nacho.Open(context.Background(), logger, config.FilePath, config.MaxPages, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}

		shared = &sharedDatabase{
			db:     db,
			parser: parser.New(logger),
			logger: logger,
			key:    key,
		}
		d.databases[key] = shared
	}
	shared.refs += 1

	return &Conn{
		driver: d,
		shared: shared,
	}, nil
}

// release closes the database once its last connection is gone.
func (d *Driver) release(shared *sharedDatabase) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	shared.refs -= 1
	if shared.refs > 0 {
		return nil
	}
	delete(d.databases, shared.key)

	shared.mu.Lock()
	defer shared.mu.Unlock()

	err := shared.db.Close(context.Background())
	shared.logger.Sync()
	return err
}

// Conn implements the database/sql/driver.Conn interface.
type Conn struct {
	driver *Driver
	shared *sharedDatabase
	mu     sync.Mutex
	closed bool
}

func (c *Conn) Ping(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return driver.ErrBadConn
	}
	return nil
}

// Close marks this connection as no longer in use. The database file is
// flushed and closed together with the last connection.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	return c.driver.release(c.shared)
}

// Prepare returns a prepared statement, bound to this connection.
func (c *Conn) Prepare(query string) (driver.Stmt, error) {
	return c.PrepareContext(context.Background(), query)
}

// PrepareContext returns a prepared statement, bound to this connection.
func (c *Conn) PrepareContext(ctx context.Context, query string) (driver.Stmt, error) {
	stmt, err := c.parse(ctx, query)
	if err != nil {
		return nil, err
	}

	return &Stmt{
		conn:      c,
		statement: stmt,
	}, nil
}

// Begin is not supported, every statement is applied on its own.
//
// Deprecated: Drivers should implement ConnBeginTx instead (or additionally).
func (c *Conn) Begin() (driver.Tx, error) {
	return c.BeginTx(context.Background(), driver.TxOptions{})
}

func (c *Conn) BeginTx(ctx context.Context, opts driver.TxOptions) (driver.Tx, error) {
	return nil, ErrTransactionsNotSupported
}

// ExecContext executes a statement that doesn't return rows.
func (c *Conn) ExecContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	if len(args) > 0 {
		return nil, ErrArgumentsNotSupported
	}

	stmt, err := c.parse(ctx, query)
	if err != nil {
		return nil, err
	}

	return c.exec(ctx, stmt)
}

// QueryContext executes a statement that may return rows.
func (c *Conn) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	if len(args) > 0 {
		return nil, ErrArgumentsNotSupported
	}

	stmt, err := c.parse(ctx, query)
	if err != nil {
		return nil, err
	}

	return c.query(ctx, stmt)
}

func (c *Conn) parse(ctx context.Context, query string) (nacho.Statement, error) {
	if err := c.check(); err != nil {
		return nacho.Statement{}, err
	}

	c.shared.mu.Lock()
	defer c.shared.mu.Unlock()

	stmt, err := c.shared.parser.Parse(ctx, query)
	if err != nil {
		return nacho.Statement{}, fmt.Errorf("failed to parse query: %w", err)
	}
	return stmt, nil
}

func (c *Conn) check() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errConnClosed
	}
	return nil
}

func (c *Conn) exec(ctx context.Context, stmt nacho.Statement) (driver.Result, error) {
	_, err := c.executeStatement(ctx, stmt)
	if err != nil {
		return nil, err
	}

	aResult := Result{}
	if stmt.Kind == nacho.Insert {
		aResult.rowsAffected = 1
		aResult.lastInsertID = int64(stmt.Row.ID)
	}
	return aResult, nil
}

func (c *Conn) query(ctx context.Context, stmt nacho.Statement) (driver.Rows, error) {
	rows, err := c.executeStatement(ctx, stmt)
	if err != nil {
		return nil, err
	}
	return &Rows{rows: rows}, nil
}

// executeStatement runs a statement and drains its rows while holding the
// database lock, the engine's cursors must not outlive it.
func (c *Conn) executeStatement(ctx context.Context, stmt nacho.Statement) ([]nacho.Row, error) {
	if err := c.check(); err != nil {
		return nil, err
	}

	c.shared.mu.Lock()
	defer c.shared.mu.Unlock()

	aResult, err := c.shared.db.ExecuteStatement(ctx, stmt)
	if err != nil {
		return nil, err
	}
	if aResult.Rows == nil {
		return nil, nil
	}
	return nacho.CollectRows(ctx, aResult.Rows)
}

// Ensure interfaces are implemented
var _ driver.Driver = (*Driver)(nil)
var _ driver.Conn = (*Conn)(nil)
var _ driver.Pinger = (*Conn)(nil)
var _ driver.ConnPrepareContext = (*Conn)(nil)
var _ driver.ConnBeginTx = (*Conn)(nil)
var _ driver.ExecerContext = (*Conn)(nil)
var _ driver.QueryerContext = (*Conn)(nil)
