package commands

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"chessduel/internal/client/display"
	"chessduel/internal/client/session"
)

// ErrExit is returned by the exit command
var ErrExit = errors.New("exit")

// Command defines a client command with its handler
type Command struct {
	Name        string
	ShortName   string
	Description string
	Usage       string
	Handler     func(*session.Session, []string) error
}

// Registry manages command registration and execution
type Registry struct {
	session  *session.Session
	commands map[string]*Command
}

func NewRegistry(s *session.Session) *Registry {
	r := &Registry{
		session:  s,
		commands: make(map[string]*Command),
	}

	r.registerGameCommands()
	r.registerDebugCommands()

	r.Register(&Command{
		Name:        "help",
		ShortName:   "?",
		Description: "Show available commands",
		Usage:       "help [command]",
		Handler:     r.helpHandler,
	})

	r.Register(&Command{
		Name:        "exit",
		ShortName:   "x",
		Description: "Exit the client",
		Usage:       "exit",
		Handler: func(s *session.Session, args []string) error {
			fmt.Fprintf(s.Out, "%sGoodbye!%s\n", display.Cyan, display.Reset)
			return ErrExit
		},
	})

	return r
}

func (r *Registry) Register(cmd *Command) {
	r.commands[cmd.Name] = cmd
	if cmd.ShortName != "" {
		r.commands[cmd.ShortName] = cmd
	}
}

// Execute runs one input line. It returns ErrExit when the user asked to
// leave; other errors are printed.
func (r *Registry) Execute(input string) error {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return nil
	}

	cmd, exists := r.commands[parts[0]]
	if !exists {
		fmt.Fprintf(r.session.Out, "%sUnknown command: %s%s\n", display.Red, parts[0], display.Reset)
		fmt.Fprintf(r.session.Out, "Type 'help' for available commands\n")
		return nil
	}

	r.session.Client.SetVerbose(r.session.Verbose)

	err := cmd.Handler(r.session, parts[1:])
	if errors.Is(err, ErrExit) {
		return err
	}
	if err != nil {
		fmt.Fprintf(r.session.Out, "%sError: %s%s\n", display.Red, err.Error(), display.Reset)
	}
	return nil
}

func (r *Registry) helpHandler(s *session.Session, args []string) error {
	if len(args) > 0 {
		cmd, exists := r.commands[args[0]]
		if !exists {
			return fmt.Errorf("unknown command: %s", args[0])
		}
		fmt.Fprintf(s.Out, "\n%s%s%s - %s\n", display.Cyan, cmd.Name, display.Reset, cmd.Description)
		if cmd.ShortName != "" {
			fmt.Fprintf(s.Out, "Short form: %s%s%s\n", display.Cyan, cmd.ShortName, display.Reset)
		}
		fmt.Fprintf(s.Out, "Usage: %s\n", cmd.Usage)
		return nil
	}

	fmt.Fprintf(s.Out, "\n%sAvailable Commands:%s\n\n", display.Cyan, display.Reset)

	printGroup := func(title string, names []string) {
		fmt.Fprintf(s.Out, "%s%s:%s\n", display.Yellow, title, display.Reset)
		for _, name := range names {
			cmd, exists := r.commands[name]
			if !exists {
				continue
			}
			shortPart := "    "
			if cmd.ShortName != "" {
				shortPart = fmt.Sprintf("[%s%s%s] ", display.Cyan, cmd.ShortName, display.Reset)
			}
			fmt.Fprintf(s.Out, "  %s%-10s %s\n", shortPart, cmd.Name, cmd.Description)
		}
	}

	printGroup("Game Commands", []string{"player", "new", "join", "move", "hint", "show", "state", "poll", "delete"})
	fmt.Fprintln(s.Out)
	printGroup("Utility Commands", []string{"health", "url", "raw", "clear", "help", "exit"})

	fmt.Fprintf(s.Out, "\nType 'help <command>' for detailed usage\n")
	fmt.Fprintf(s.Out, "Add '-v' to any command for verbose output\n")
	return nil
}

// Names returns every registered command name, for completion
func (r *Registry) Names() []string {
	seen := make(map[string]bool)
	var names []string
	for _, cmd := range r.commands {
		if !seen[cmd.Name] {
			seen[cmd.Name] = true
			names = append(names, cmd.Name)
		}
	}
	sort.Strings(names)
	return names
}
