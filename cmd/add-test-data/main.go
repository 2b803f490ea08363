package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"go.uber.org/zap"

	_ "github.com/RichardKnop/nacho"
	"github.com/RichardKnop/nacho/internal/nacho"
	"github.com/RichardKnop/nacho/internal/pkg/logging"
)

var (
	dbFlag    string
	rowsFlag  int
	startFlag int
	seedFlag  int64
)

func init() {
	flag.StringVar(&dbFlag, "db", "db", "Database file to seed")
	flag.IntVar(&rowsFlag, "rows", 100, "Number of rows to insert")
	flag.IntVar(&startFlag, "start-id", 1, "ID of the first inserted row")
	flag.Int64Var(&seedFlag, "seed", 0, "Random seed, current time when zero")
}

func main() {
	flag.Parse()

	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = "info"
	}

	logger, err := logging.New(level)
	if err != nil {
		panic(err)
	}
	defer logger.Sync() // flushes buffer, if any

	if err := seed(context.Background(), logger); err != nil {
		logger.Fatal("failed to add test data", zap.Error(err))
	}
}

func seed(ctx context.Context, logger *zap.Logger) error {
	if seedFlag == 0 {
		seedFlag = time.Now().UnixNano()
	}
	faker := gofakeit.New(seedFlag)

	db, err := sql.Open("nacho", dbFlag)
	if err != nil {
		return err
	}
	defer db.Close()

	inserted := 0
	for i := 0; i < rowsFlag; i++ {
		var (
			id       = startFlag + i
			username = faker.Username()
			email    = faker.Email()
		)
		_, err := db.ExecContext(ctx, fmt.Sprintf("insert %d %s %s", id, username, email))
		if errors.Is(err, nacho.ErrTableFull) {
			logger.Warn("table is full, stopping", zap.Int("inserted", inserted))
			break
		}
		if err != nil {
			return fmt.Errorf("insert row %d: %w", id, err)
		}
		inserted += 1
	}

	logger.Info("test data added", zap.String("db", dbFlag), zap.Int("rows", inserted))

	// closing the pool flushes the file
	return db.Close()
}
