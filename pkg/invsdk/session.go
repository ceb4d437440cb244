package invsdk

import (
	"context"
	"fmt"
	"slices"
	"strings"
)

// Authenticator supplies bearer tokens to a Session.
type Authenticator interface {
	// AccessToken returns the current access token, false when there is none
	AccessToken() (string, bool)

	// RefreshAccessToken exchanges the token pair for a new one
	RefreshAccessToken(ctx context.Context) error
}

// RoleProvider is implemented by Authenticators that know the caller's role.
type RoleProvider interface {
	// Role returns the caller's role, or "" when it is unknown
	Role() string
}

// Session performs authenticated resource operations.
// Tokens are owned by the Authenticator; the Session holds no token state.
type Session struct {
	client *SDKClient
	auth   Authenticator
}

// Role returns the caller's role when the Authenticator exposes one.
func (s *Session) Role() string {
	if rp, ok := s.auth.(RoleProvider); ok {
		return rp.Role()
	}
	return ""
}

// HasRole reports whether the caller's role is one of roles.
func (s *Session) HasRole(roles ...string) bool {
	return slices.Contains(roles, s.Role())
}

// checkRoles checks the caller's role against the roles an endpoint allows.
// An unknown role is left for the server to judge.
func (s *Session) checkRoles(allowed ...string) error {
	if !s.client.CheckRoles {
		return nil // Role checking disabled
	}

	if len(allowed) == 0 {
		return nil // Any authenticated caller
	}

	role := s.Role()
	if role == "" {
		return nil
	}

	if !slices.Contains(allowed, role) {
		return fmt.Errorf("%w: have %s, need one of %s", ErrInsufficientRole, role, strings.Join(allowed, ", "))
	}

	return nil
}

// Role sets used by the backend's route guards.
var (
	rolesManage = []string{RoleAdministrator, RoleManager}
	rolesAdmin  = []string{RoleAdministrator}
)
