package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"

	"github.com/aussiebroadwan/stockroom/internal/session"
	"github.com/peterh/liner"
)

var shellCommands = []string{
	"categories", "dismiss", "exit", "help", "login", "logout", "notifications",
	"products", "refresh", "suppliers", "transactions", "users", "whoami",
}

// shell runs an interactive session. The session renews itself in the
// background while the shell is open; leaving stops renewal and closes the
// notification queue.
func (c *CLI) shell(ctx context.Context, args []string) error {
	if c.inShell {
		return usageErrorf("already in the shell")
	}
	if len(args) > 0 {
		return usageErrorf("shell takes no arguments")
	}

	c.inShell = true
	defer func() { c.inShell = false }()

	c.manager.Start()
	defer c.queue.Close()
	defer c.manager.Stop()

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	line.SetCompleter(completeCommand)

	c.loadHistory(line)
	defer c.saveHistory(line)

	prev := c.readPassword
	c.readPassword = line.PasswordPrompt
	defer func() { c.readPassword = prev }()

	fmt.Fprintln(c.stdout, welcomeStyle.Render("stockroom shell. Type help for commands, exit to leave."))
	if !c.manager.IsAuthenticated() {
		c.router.Navigate(session.LoginPath)
	}

	for {
		c.renderNotifications(c.stderr)

		input, err := line.Prompt(c.prompt())
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Fprintln(c.stdout)
				return nil
			}
			return fmt.Errorf("read input: %w", err)
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		words, err := splitLine(input)
		if err != nil {
			fmt.Fprintln(c.stderr, errorStyle.Render(err.Error()))
			continue
		}
		line.AppendHistory(historyEntry(input, words))

		if words[0] == "exit" || words[0] == "quit" {
			return nil
		}

		c.execLine(ctx, words)
	}
}

// execLine runs one shell command. Ctrl+C cancels the command, not the
// shell.
func (c *CLI) execLine(ctx context.Context, words []string) {
	cmdCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	err := c.dispatch(cmdCtx, words)
	c.report(err)

	if err == nil && strings.EqualFold(words[0], "login") {
		c.resumePending(cmdCtx)
	}
}

// resumePending replays the command the guard turned away once login has
// returned the session to its route.
func (c *CLI) resumePending(ctx context.Context) {
	p := c.pending
	c.pending = nil
	if p == nil || c.router.Current() != p.path {
		return
	}

	c.report(c.dispatch(ctx, p.args))
}

func (c *CLI) prompt() string {
	state := c.manager.State()
	who := "anonymous"
	if state.Authenticated {
		who = state.Username
	}
	return promptStyle.Render(fmt.Sprintf("%s@stockroom:%s", who, c.router.Current())) + "> "
}

func completeCommand(line string) []string {
	if strings.Contains(line, " ") {
		return nil
	}
	var out []string
	for _, cmd := range shellCommands {
		if strings.HasPrefix(cmd, strings.ToLower(line)) {
			out = append(out, cmd)
		}
	}
	return out
}

// historyEntry is input as it goes into the history file, with passwords
// redacted.
func historyEntry(input string, words []string) string {
	redacted := RedactArgs(words)
	if slices.Equal(redacted, words) {
		return input
	}
	return joinLine(redacted)
}

func (c *CLI) loadHistory(line *liner.State) {
	if c.historyFile == "" {
		return
	}
	if f, err := os.Open(c.historyFile); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}
}

func (c *CLI) saveHistory(line *liner.State) {
	if c.historyFile == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(c.historyFile), 0o700); err != nil {
		c.logger.Warn("cannot create history directory", "error", err)
		return
	}

	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		c.logger.Warn("cannot save shell history", "error", err)
		return
	}
	defer f.Close()

	_, _ = line.WriteHistory(f)
}
