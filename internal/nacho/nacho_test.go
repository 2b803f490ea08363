package nacho

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

//go:generate mockery --name=Pager --structname=MockPager --inpackage --case=snake --testonly

var (
	gen        = newDataGen(time.Now().Unix())
	testLogger = zap.NewNop()
)

type dataGen struct {
	*gofakeit.Faker
}

func newDataGen(seed int64) *dataGen {
	return &dataGen{Faker: gofakeit.New(seed)}
}

func (g *dataGen) Row() Row {
	return Row{
		ID:       g.Uint32(),
		Username: g.Username(),
		Email:    g.Email(),
	}
}

func (g *dataGen) Rows(number int) []Row {
	rows := make([]Row, 0, number)
	for i := 0; i < number; i++ {
		aRow := g.Row()
		aRow.ID = uint32(i + 1)
		rows = append(rows, aRow)
	}
	return rows
}

func newTestFile(t *testing.T) *os.File {
	dbFile, err := os.CreateTemp(t.TempDir(), "testdb")
	require.NoError(t, err)
	return dbFile
}

func newTestDatabase(t *testing.T, dbFile DBFile, maxPages int, metrics *Metrics) *Database {
	aPager, err := NewPager(testLogger, dbFile, maxPages, metrics)
	require.NoError(t, err)
	aDatabase, err := NewDatabase(context.Background(), testLogger, "test", aPager, metrics)
	require.NoError(t, err)
	return aDatabase
}

var errDiskFailure = errors.New("disk failure")

// faultyFile fails reads and/or writes on demand.
type faultyFile struct {
	*os.File
	failReads  bool
	failWrites bool
	failClose  bool
}

func (f *faultyFile) ReadAt(p []byte, off int64) (int, error) {
	if f.failReads {
		return 0, errDiskFailure
	}
	return f.File.ReadAt(p, off)
}

func (f *faultyFile) WriteAt(p []byte, off int64) (int, error) {
	if f.failWrites {
		return 0, errDiskFailure
	}
	return f.File.WriteAt(p, off)
}

func (f *faultyFile) Close() error {
	err := f.File.Close()
	if f.failClose {
		return errDiskFailure
	}
	return err
}
