package session

import "errors"

var (
	// ErrAlreadyAuthenticated is returned by Login while a session is active.
	// Log out first to switch users.
	ErrAlreadyAuthenticated = errors.New("session: already authenticated")

	// ErrNotAuthenticated is returned when an operation needs tokens the
	// session does not hold.
	ErrNotAuthenticated = errors.New("session: not authenticated")

	// ErrSessionChanged is returned by a refresh whose result arrived after
	// the session was logged out or replaced. The result is discarded.
	ErrSessionChanged = errors.New("session: changed during refresh")

	// ErrIncompleteTokens is returned when the backend answers without both
	// tokens.
	ErrIncompleteTokens = errors.New("session: backend returned incomplete token pair")
)
