package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/RichardKnop/nacho/internal/nacho"
	"github.com/RichardKnop/nacho/internal/parser"
	"github.com/RichardKnop/nacho/internal/protocol"
)

type ServeCmd struct {
	DB       string `arg:"" name:"db" help:"Database file, created when missing." type:"path"`
	Addr     string `name:"addr" short:"a" default:":8080" help:"Address to listen on."`
	MaxPages int    `name:"max-pages" default:"100" help:"Page cache capacity, limits the table to 7 rows per page."`
}

func (c *ServeCmd) Run(globals *Globals) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := globals.logger()
	if err != nil {
		return err
	}
	defer logger.Sync() // flushes buffer, if any

	metrics, stopMetrics := globals.metrics(logger)
	defer stopMetrics()

	aDatabase, err := nacho.Open(ctx, logger, c.DB, c.MaxPages, metrics)
	if err != nil {
		return err
	}

	srv, err := protocol.NewServer(aDatabase, parser.New(logger), logger, c.Addr)
	if err != nil {
		return multierr.Append(err, aDatabase.Close(ctx))
	}
	srv.Serve(ctx)

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-srv.Fatal():
		logger.Error("database fault, shutting down", zap.Error(err))
	}

	srv.Stop()

	// after a fault this releases the file and returns the fault
	return aDatabase.Close(context.Background())
}
