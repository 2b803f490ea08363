package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/alecthomas/kong"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/RichardKnop/nacho/internal/nacho"
	"github.com/RichardKnop/nacho/internal/pkg/logging"
)

const cliName = "nacho"

type Globals struct {
	LogLevel    string `name:"log-level" env:"LOG_LEVEL" default:"warn" help:"Log level (debug, info, warn, error)."`
	MetricsAddr string `name:"metrics-addr" env:"METRICS_ADDR" help:"Expose Prometheus metrics on this address, e.g. :9090."`
}

var CLI struct {
	Globals

	Repl   ReplCmd   `cmd:"" default:"withargs" help:"Open a database file and read statements from the terminal."`
	Serve  ServeCmd  `cmd:"" help:"Serve a database file over TCP."`
	Client ClientCmd `cmd:"" help:"Send statements to a running server."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(cliName),
		kong.Description("A tiny persistent row store."),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	err := ctx.Run(&CLI.Globals)
	ctx.FatalIfErrorf(err)
}

func (g *Globals) logger() (*zap.Logger, error) {
	return logging.New(g.LogLevel)
}

// metrics starts the metrics endpoint when an address is configured. The
// returned stop function shuts it down, both are no-ops otherwise.
func (g *Globals) metrics(logger *zap.Logger) (*nacho.Metrics, func()) {
	if g.MetricsAddr == "" {
		return nil, func() {}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{
		Addr:              g.MetricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("serving metrics", zap.String("addr", g.MetricsAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()

	return nacho.NewMetrics(reg), func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}
}
