package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/RichardKnop/nacho/internal/nacho"
	"github.com/RichardKnop/nacho/internal/parser"
	"github.com/RichardKnop/nacho/internal/pkg/util"
)

type ReplCmd struct {
	DB       string `arg:"" name:"db" help:"Database file, created when missing." type:"path"`
	MaxPages int    `name:"max-pages" default:"100" help:"Page cache capacity, limits the table to 7 rows per page."`
	History  string `name:"history" help:"Keep input history in this file." type:"path"`
}

func (c *ReplCmd) Run(globals *Globals) error {
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

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          cliName + " > ",
		HistoryFile:     c.History,
		InterruptPrompt: "^C",
		EOFPrompt:       ".exit",
	})
	if err != nil {
		return multierr.Append(err, aDatabase.Close(ctx))
	}
	defer rl.Close()

	// unblock a pending read when a signal arrives
	go func() {
		<-ctx.Done()
		rl.Close()
	}()

	aSession := newSession(logger, aDatabase, parser.New(logger), rl.Stdout())

	for {
		line, err := rl.Readline()
		if err != nil {
			// Ctrl-C, Ctrl-D and signals all end the session cleanly
			if !errors.Is(err, readline.ErrInterrupt) && !errors.Is(err, io.EOF) && ctx.Err() == nil {
				logger.Error("error reading input", zap.Error(err))
			}
			break
		}

		exit, err := aSession.handleLine(ctx, line)
		if err != nil {
			// the fault is latched, close releases the file and returns it
			logger.Error("database fault, exiting", zap.Error(err))
			return aDatabase.Close(ctx)
		}
		if exit {
			break
		}
	}

	return aDatabase.Close(ctx)
}

type metaCommand int

const (
	Unknown metaCommand = iota + 1
	Help
	Exit
	Stats
	Constants
)

func isMetaCommand(input string) bool {
	return len(input) > 0 && input[:1] == "."
}

func doMetaCommand(input string) metaCommand {
	switch input {
	case "help":
		return Help
	case "exit":
		return Exit
	case "stats":
		return Stats
	case "constants":
		return Constants
	default:
		return Unknown
	}
}

type database interface {
	ExecuteStatement(context.Context, nacho.Statement) (nacho.StatementResult, error)
	Stats() nacho.Stats
}

type statementParser interface {
	Parse(context.Context, string) (nacho.Statement, error)
}

type session struct {
	db     database
	parser statementParser
	out    io.Writer
	logger *zap.Logger
}

func newSession(logger *zap.Logger, db database, aParser statementParser, out io.Writer) *session {
	return &session{
		db:     db,
		parser: aParser,
		out:    out,
		logger: logger,
	}
}

// handleLine runs one line of input. It reports whether the session should
// end, an error is only returned for faults the session cannot recover from.
func (s *session) handleLine(ctx context.Context, line string) (bool, error) {
	input := strings.TrimSpace(line)
	if input == "" {
		return false, nil
	}

	if isMetaCommand(input) {
		switch doMetaCommand(strings.ToLower(input[1:])) {
		case Help:
			fmt.Fprintln(s.out, ".help       - Show available commands")
			fmt.Fprintln(s.out, ".exit       - Save the database and exit")
			fmt.Fprintln(s.out, ".stats      - Show table and page cache statistics")
			fmt.Fprintln(s.out, ".constants  - Show the row and page layout")
			fmt.Fprintln(s.out, "insert <id> <username> <email>")
			fmt.Fprintln(s.out, "select")
		case Exit:
			return true, nil
		case Stats:
			fmt.Fprintln(s.out, util.FormatStats(s.db.Stats()))
		case Constants:
			util.PrintConstants(s.out)
		case Unknown:
			fmt.Fprintf(s.out, "Unrecognised command: '%s'\n", input)
		}
		return false, nil
	}

	stmt, err := s.parser.Parse(ctx, input)
	if err != nil {
		switch {
		case errors.Is(err, parser.ErrNegativeID):
			fmt.Fprintln(s.out, "ID must be positive.")
		case errors.Is(err, parser.ErrSyntax):
			fmt.Fprintln(s.out, "Syntax error. Could not parse statement.")
		case errors.Is(err, parser.ErrStringTooLong):
			fmt.Fprintln(s.out, "String is too long.")
		default:
			fmt.Fprintf(s.out, "Unrecognised keyword at the start of '%s'.\n", input)
		}
		return false, nil
	}

	aResult, err := s.db.ExecuteStatement(ctx, stmt)
	if err != nil {
		return s.executeError(err)
	}

	switch aResult.Kind {
	case nacho.Insert:
		fmt.Fprintln(s.out, "Executed.")
	case nacho.Select:
		count := 0
		for aResult.Rows.Next(ctx) {
			fmt.Fprintln(s.out, aResult.Rows.Row().String())
			count += 1
		}
		if err := aResult.Rows.Err(); err != nil {
			return s.executeError(err)
		}
		fmt.Fprintf(s.out, "\n\nFound %d records\n", count)
	}

	return false, nil
}

func (s *session) executeError(err error) (bool, error) {
	if errors.Is(err, nacho.ErrTableFull) {
		fmt.Fprintln(s.out, "Error: Table full.")
		return false, nil
	}
	if nacho.IsFatal(err) {
		return true, err
	}
	fmt.Fprintf(s.out, "Error executing statement: %s\n", err)
	return false, nil
}
