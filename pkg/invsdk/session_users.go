package invsdk

import (
	"context"
	"fmt"
	"net/http"
)

// User administration. Listing, creating and deactivating users is reserved
// for administrators; any authenticated caller may read or edit a single
// user and the backend decides whether that is allowed.

// ListUsers returns the users matching filter (nil for all).
// Requires: Administrator
func (s *Session) ListUsers(ctx context.Context, filter *UserFilter) ([]User, error) {
	out, err := sendJSON[[]User](ctx, s, http.MethodGet, withQuery("/users", filter.Values()), nil, rolesAdmin...)
	if err != nil {
		return nil, err
	}
	return *out, nil
}

// GetUser returns one user.
// Requires: authenticated session
func (s *Session) GetUser(ctx context.Context, id int64) (*User, error) {
	return sendJSON[User](ctx, s, http.MethodGet, userPath(id), nil)
}

// CreateUser adds a user.
// Requires: Administrator
func (s *Session) CreateUser(ctx context.Context, req *CreateUserRequest) (*User, error) {
	return sendJSON[User](ctx, s, http.MethodPost, "/users", req, rolesAdmin...)
}

// UpdateUser replaces a user.
// Requires: authenticated session
func (s *Session) UpdateUser(ctx context.Context, id int64, req *UpdateUserRequest) (*User, error) {
	return sendJSON[User](ctx, s, http.MethodPut, userPath(id), req)
}

// PatchUser changes the set fields of a user.
// Requires: authenticated session
func (s *Session) PatchUser(ctx context.Context, id int64, req *PatchUserRequest) (*User, error) {
	return sendJSON[User](ctx, s, http.MethodPatch, userPath(id), req)
}

// DeleteUser deactivates a user.
// Requires: Administrator
func (s *Session) DeleteUser(ctx context.Context, id int64) error {
	return s.sendNoContent(ctx, http.MethodDelete, userPath(id), rolesAdmin...)
}

func userPath(id int64) string {
	return fmt.Sprintf("/users/%d", id)
}
