// Package cli is the view layer of stockroom: one-shot commands and an
// interactive shell over the inventory backend.
//
// Every resource command passes through the session route guard before it
// talks to the backend. Outcomes are posted to the notification queue, which
// the shell renders before each prompt and one-shot commands flush to stderr
// on exit.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/aussiebroadwan/stockroom/internal/notify"
	"github.com/aussiebroadwan/stockroom/internal/session"
	"github.com/aussiebroadwan/stockroom/pkg/invsdk"
	"github.com/aussiebroadwan/stockroom/pkg/slogx"
)

var (
	// ErrUsage is returned for malformed command lines.
	ErrUsage = errors.New("usage")

	// ErrLoginRequired is returned when the guard turned a command away.
	ErrLoginRequired = errors.New("login required")

	// errHelp marks a -h request; it is not a failure.
	errHelp = errors.New("help requested")
)

func usageErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrUsage}, args...)...)
}

// ExitCode maps a Run error to a process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil, errors.Is(err, errHelp):
		return 0
	case errors.Is(err, ErrUsage):
		return 2
	default:
		return 1
	}
}

// Deps are the collaborators a CLI drives.
type Deps struct {
	Manager  *session.Manager
	API      *invsdk.Session
	Queue    *notify.Queue
	Notifier *notify.Notifier
	Router   *Router
	Logger   *slog.Logger

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// HistoryFile keeps shell history between runs. Empty disables it.
	HistoryFile string
	Version     string
}

type CLI struct {
	manager  *session.Manager
	api      *invsdk.Session
	queue    *notify.Queue
	notifier *notify.Notifier
	router   *Router
	logger   *slog.Logger

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	historyFile string
	version     string

	readPassword func(prompt string) (string, error)

	// Shell state
	inShell bool
	shownID int64
	pending *pendingCommand
}

// pendingCommand is a command the guard turned away, replayed after login
// when the session returns to its route.
type pendingCommand struct {
	path string
	args []string
}

func New(d Deps) *CLI {
	c := &CLI{
		manager:     d.Manager,
		api:         d.API,
		queue:       d.Queue,
		notifier:    d.Notifier,
		router:      d.Router,
		logger:      d.Logger,
		stdin:       d.Stdin,
		stdout:      d.Stdout,
		stderr:      d.Stderr,
		historyFile: d.HistoryFile,
		version:     d.Version,
	}

	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.router == nil {
		c.router = NewRouter()
	}
	if c.stdin == nil {
		c.stdin = os.Stdin
	}
	if c.stdout == nil {
		c.stdout = os.Stdout
	}
	if c.stderr == nil {
		c.stderr = os.Stderr
	}
	c.readPassword = c.promptPassword

	return c
}

// Run executes one command line and flushes the notifications it produced
// to stderr.
func (c *CLI) Run(ctx context.Context, args []string) error {
	err := c.dispatch(ctx, args)
	c.report(err)
	c.renderNotifications(c.stderr)
	return err
}

// report prints the errors that no notification carries.
func (c *CLI) report(err error) {
	if errors.Is(err, ErrUsage) {
		fmt.Fprintln(c.stderr, errorStyle.Render(err.Error()))
		fmt.Fprintln(c.stderr, "Run 'help' for the list of commands.")
	}
}

func (c *CLI) dispatch(ctx context.Context, args []string) error {
	if len(args) == 0 {
		c.printUsage(c.stdout)
		return nil
	}

	name, rest := strings.ToLower(args[0]), args[1:]
	ctx = slogx.WithContext(ctx, c.logger.With("cmd", name))

	switch name {
	case "login":
		return c.login(ctx, rest)
	case "logout":
		return c.logout(rest)
	case "whoami", "me":
		return c.whoami(rest)
	case "refresh":
		return c.refresh(ctx, rest)

	case "products", "product":
		return c.products(ctx, args, rest)
	case "suppliers", "supplier":
		return c.suppliers(ctx, args, rest)
	case "categories", "category":
		return c.categories(ctx, args, rest)
	case "users", "user":
		return c.users(ctx, args, rest)
	case "transactions", "transaction", "tx":
		return c.transactions(ctx, args, rest)

	case "notifications":
		return c.notifications(rest)
	case "dismiss":
		return c.dismiss(rest)

	case "shell":
		return c.shell(ctx, rest)
	case "help", "-h", "--help":
		c.printUsage(c.stdout)
		return nil
	case "version", "--version":
		fmt.Fprintf(c.stdout, "stockroom %s\n", c.version)
		return nil
	default:
		return usageErrorf("unknown command %q", args[0])
	}
}

// enter runs the route guard for path. An anonymous session is sent to the
// login route and the command is remembered for replay after login.
func (c *CLI) enter(path string, args []string) error {
	if c.manager.Guard(path) {
		c.router.Navigate(path)
		return nil
	}

	c.pending = &pendingCommand{path: path, args: args}
	if c.inShell {
		c.notifier.Info("Please log in: login <username>")
	} else {
		c.notifier.Info("Please log in: stockroom login <username>")
	}
	return ErrLoginRequired
}

// fail posts err as an error notification for operation and returns it.
func (c *CLI) fail(operation string, err error) error {
	c.notifier.ReportError(operation, err)
	return err
}

const usageText = `stockroom - inventory client

Usage:
  stockroom <command> [arguments] [--json]

Session:
  login <username> [--password P]   Log in (or set STOCKROOM_PASSWORD)
  logout                            Forget the session
  whoami                            Show the logged in user
  refresh                           Renew the session tokens now

Resources:
  products     list|get|create|update|patch|delete
  suppliers    list|get|create|update|patch|delete
  categories   list|get|create|update|patch|delete
  users        list|get|create|update|patch|delete
  transactions list|get|create

Notifications:
  notifications                     Show pending notifications
  dismiss <id>                      Dismiss a notification

Other:
  shell                             Interactive shell with background renewal
  version                           Print the version
  help                              Show this help

Run '<resource> <action> -h' for the flags of an action.
`

func (c *CLI) printUsage(w io.Writer) {
	fmt.Fprint(w, usageText)
}
