// File: main.go
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/debdutta1777/AuraProcure/cmd"
	"github.com/debdutta1777/AuraProcure/internal/observability"
)

const banner = `
AuraProcure - agentic procurement pipeline
Type a command ('run "5 ergonomic chairs"', 'approve', 'vendors', 'policies')
or 'exit' to quit.
`

// main is the entry point of the application.
func main() {
	// Listen for interrupt signals (SIGINT, SIGTERM) for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	defer observability.Sync()
	defer cmd.Shutdown()

	// If arguments are passed, execute the command directly and exit.
	if len(os.Args) > 1 {
		if err := cmd.Execute(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			observability.Sync()
			cmd.Shutdown()
			os.Exit(1)
		}
		return
	}

	// -- Interactive Mode --
	// Missions suspended at the approval gate live in this process, so the
	// shell is where a run followed by an approve makes sense.
	fmt.Print(banner)
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("auraprocure > ")
		if !scanner.Scan() {
			break // Exit on EOF (Ctrl+D).
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}

		executeInteractiveCommand(ctx, line)
	}

	if err := scanner.Err(); err != nil {
		fmt.Fprintln(os.Stderr, "Error reading from stdin:", err)
		observability.Sync()
		cmd.Shutdown()
		os.Exit(1)
	}

	fmt.Println("Exiting auraprocure.")
}

// executeInteractiveCommand parses and runs one line from the shell.
func executeInteractiveCommand(ctx context.Context, line string) {
	// A fresh command tree per line keeps flags from leaking between
	// commands; the shared service behind the commands persists.
	rootCmd := cmd.NewRootCommand()
	rootCmd.SetArgs(splitCommandLine(line))

	func() {
		defer func() {
			if r := recover(); r != nil {
				fmt.Fprintf(os.Stderr, "Error: Command panicked: %v\n", r)
			}
		}()
		// Errors are already logged by the command execution path.
		_ = rootCmd.ExecuteContext(ctx)
	}()
}

// splitCommandLine tokenizes a shell line, honoring double quotes so a full
// request text can be passed as one argument.
func splitCommandLine(line string) []string {
	var args []string
	var current strings.Builder
	inQuotes := false

	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == ' ' && !inQuotes:
			if current.Len() > 0 {
				args = append(args, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(r)
		}
	}
	if current.Len() > 0 {
		args = append(args, current.String())
	}
	return args
}
