// Package main implements an interactive client for the chessduel API.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"chessduel/internal/client/commands"
	"chessduel/internal/client/display"
	"chessduel/internal/client/session"

	"github.com/chzyer/readline"
	"golang.org/x/term"
)

func main() {
	apiURL := flag.String("api", "http://localhost:8080", "API base URL")
	history := flag.String("history", ".chessduel_history", "Readline history file (empty disables)")
	flag.Parse()

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		display.Disable()
	}

	s := session.New(*apiURL, os.Stdout)
	registry := commands.NewRegistry(s)

	var completions []readline.PrefixCompleterInterface
	for _, name := range registry.Names() {
		completions = append(completions, readline.PcItem(name))
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          display.Prompt("chess"),
		HistoryFile:     *history,
		AutoComplete:    readline.NewPrefixCompleter(completions...),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s%s%s\n", display.Red, err.Error(), display.Reset)
		os.Exit(1)
	}
	defer rl.Close()

	fmt.Printf("%schessduel client%s\n", display.Cyan, display.Reset)
	fmt.Printf("%sAPI: %s%s\n", display.Cyan, s.APIBaseURL, display.Reset)
	fmt.Printf("Type 'help' for commands\n\n")

	for {
		rl.SetPrompt(buildPrompt(s))

		line, err := rl.Readline()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "quit" {
			break
		}

		s.Verbose = strings.HasSuffix(line, " -v")
		line = strings.TrimSuffix(line, " -v")

		if err := registry.Execute(line); errors.Is(err, commands.ErrExit) {
			break
		}
	}
}

func buildPrompt(s *session.Session) string {
	var parts []string

	if s.CurrentGame != "" {
		id := s.CurrentGame
		if len(id) > 8 {
			id = id[:8]
		}
		parts = append(parts, display.White+id+display.Reset)
	}
	if c := s.Color(); c != "" {
		parts = append(parts, display.ColorForTurn(c))
	}

	prompt := "chess"
	if len(parts) > 0 {
		prompt += display.Yellow + " [" + display.Reset + strings.Join(parts, " ") + display.Yellow + "]"
	}

	if g := s.GameState; g != nil {
		switch {
		case g.GameOver:
			prompt += " - over"
		case g.ReadyToStart:
			prompt += " - Turn:" + display.ColorForTurn(g.WhoseTurn)
		default:
			prompt += " - waiting"
		}
	}

	return display.Prompt(prompt)
}
