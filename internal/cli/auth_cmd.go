package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/aussiebroadwan/stockroom/internal/session"
	"github.com/aussiebroadwan/stockroom/pkg/invsdk"
	"golang.org/x/term"
)

func (c *CLI) login(ctx context.Context, args []string) error {
	f := c.newFlags("login")
	password := f.String("password", "", "password, defaults to $STOCKROOM_PASSWORD or a prompt")

	positional, err := f.parse(args)
	if err != nil {
		return err
	}
	if len(positional) != 1 {
		return usageErrorf("login <username> [--password P]")
	}
	username := positional[0]

	if c.manager.IsAuthenticated() {
		fmt.Fprintf(c.stderr, "Already logged in as %s. Log out first.\n", c.manager.State().Username)
		return session.ErrAlreadyAuthenticated
	}

	c.router.Navigate(session.LoginPath)

	pw := *password
	if pw == "" {
		pw = os.Getenv("STOCKROOM_PASSWORD")
	}
	if pw == "" {
		if pw, err = c.readPassword("Password: "); err != nil {
			return err
		}
	}

	if err := c.manager.Login(ctx, username, pw); err != nil {
		fmt.Fprintln(c.stderr, errorStyle.Render(loginMessage(err)))
		return err
	}

	c.notifier.ReportSuccess("Logged in as " + username)
	return nil
}

// loginMessage is what the login form would show for err.
func loginMessage(err error) string {
	var (
		apiErr *invsdk.APIError
		valErr *invsdk.ValidationError
		netErr *invsdk.NetworkError
	)
	switch {
	case errors.As(err, &apiErr):
		return apiErr.Message
	case errors.As(err, &valErr):
		return valErr.Error()
	case errors.As(err, &netErr):
		return "Cannot reach the inventory server"
	case errors.Is(err, session.ErrAlreadyAuthenticated):
		return "Already logged in"
	default:
		return "Login failed"
	}
}

// promptPassword reads a password without echo from a terminal, or the first
// line of piped input.
func (c *CLI) promptPassword(prompt string) (string, error) {
	if f, ok := c.stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(c.stderr, prompt)
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(c.stderr)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(c.stdin).ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (c *CLI) logout(args []string) error {
	f := c.newFlags("logout")
	positional, err := f.parse(args)
	if err != nil {
		return err
	}
	if err := noArgs("logout", positional); err != nil {
		return err
	}

	if !c.manager.IsAuthenticated() {
		c.notifier.Info("Not logged in")
		return nil
	}

	c.manager.Logout()
	c.pending = nil
	c.notifier.ReportSuccess("Logged out")
	return nil
}

type whoamiView struct {
	Username  string    `json:"username"`
	UserID    int64     `json:"user_id"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (c *CLI) whoami(args []string) error {
	f := c.newFlags("whoami")
	positional, err := f.parse(args)
	if err != nil {
		return err
	}
	if err := noArgs("whoami", positional); err != nil {
		return err
	}

	if !c.manager.IsAuthenticated() {
		fmt.Fprintln(c.stderr, "Not logged in.")
		return session.ErrNotAuthenticated
	}

	view := whoamiView{Username: c.manager.State().Username}
	if claims, err := c.manager.Claims(); err == nil {
		view.UserID = claims.UserID
		view.Role = claims.Role
		view.ExpiresAt = claims.Expiry()
	} else {
		c.logger.Warn("access token claims unreadable", "error", err)
	}

	expires := "-"
	if !view.ExpiresAt.IsZero() {
		expires = view.ExpiresAt.Local().Format(time.DateTime)
	}

	return c.emit(f.json, view,
		[]string{"USERNAME", "USER ID", "ROLE", "TOKEN EXPIRES"},
		[][]string{{view.Username, itoa(view.UserID), view.Role, expires}},
	)
}

func (c *CLI) refresh(ctx context.Context, args []string) error {
	f := c.newFlags("refresh")
	positional, err := f.parse(args)
	if err != nil {
		return err
	}
	if err := noArgs("refresh", positional); err != nil {
		return err
	}

	if err := c.manager.RefreshAccessToken(ctx); err != nil {
		if errors.Is(err, session.ErrNotAuthenticated) {
			c.notifier.Info("Not logged in")
			return err
		}
		return c.fail("refresh session", err)
	}

	c.notifier.ReportSuccess("Session renewed")
	return nil
}
