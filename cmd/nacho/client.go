package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"

	"github.com/RichardKnop/nacho/internal/protocol"
	"github.com/RichardKnop/nacho/internal/pkg/util"
)

type ClientCmd struct {
	Addr string `name:"addr" short:"a" default:":8080" help:"Address to dial."`
}

func (c *ClientCmd) Run(globals *Globals) error {
	aClient, err := protocol.NewClient(c.Addr)
	if err != nil {
		return err
	}
	defer aClient.Close()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          cliName + " > ",
		InterruptPrompt: "^C",
		EOFPrompt:       ".exit",
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		input := strings.TrimSpace(line)
		var resp protocol.Response
		switch input {
		case "":
			continue
		case ".help":
			fmt.Fprintln(rl.Stdout(), ".help    - Show available commands")
			fmt.Fprintln(rl.Stdout(), ".exit    - Closes program")
			fmt.Fprintln(rl.Stdout(), ".ping    - Check if the server is alive")
			fmt.Fprintln(rl.Stdout(), ".stats   - Show table and page cache statistics")
			continue
		case ".exit":
			return nil
		case ".ping":
			resp, err = aClient.Ping()
		case ".stats":
			resp, err = aClient.Stats()
		default:
			resp, err = aClient.SendQuery(input)
		}
		if err != nil {
			return err
		}

		printResponse(rl.Stdout(), resp)
		if resp.Fatal {
			return errors.New(resp.Error)
		}
	}
}

func printResponse(w io.Writer, resp protocol.Response) {
	if !resp.Success {
		fmt.Fprintf(w, "Error: %s\n", resp.Error)
		return
	}

	if resp.Kind == "SELECT" {
		util.PrintRows(w, resp.Rows)
	}

	if resp.Message != "" {
		fmt.Fprintln(w, resp.Message)
	}
}
