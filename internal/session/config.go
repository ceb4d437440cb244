package session

import (
	"log/slog"
	"time"

	"github.com/aussiebroadwan/stockroom/internal/metrics"
)

const (
	// DefaultRefreshInterval is how often an authenticated session renews
	// its tokens. Access tokens live longer than this, so renewal always
	// happens before expiry.
	DefaultRefreshInterval = 4 * time.Minute

	// DefaultStoreTimeout bounds persistence calls that have no caller
	// context, such as Logout.
	DefaultStoreTimeout = 5 * time.Second
)

// Config tunes the Manager. Zero values take the defaults.
type Config struct {
	RefreshInterval time.Duration
	StoreTimeout    time.Duration
}

func (c Config) withDefaults() Config {
	if c.RefreshInterval <= 0 {
		c.RefreshInterval = DefaultRefreshInterval
	}
	if c.StoreTimeout <= 0 {
		c.StoreTimeout = DefaultStoreTimeout
	}
	return c
}

// Option configures optional collaborators of a Manager.
type Option func(*Manager)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithNavigator sets where redirects go. Defaults to discarding them.
func WithNavigator(n Navigator) Option {
	return func(m *Manager) {
		if n != nil {
			m.nav = n
		}
	}
}

// WithMetrics reports login, refresh and state changes to mt.
func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Manager) { m.metrics = mt }
}
