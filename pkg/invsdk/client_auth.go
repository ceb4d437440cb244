package invsdk

import (
	"context"
	"net/http"
)

var (
	loginOverrides = statusOverrides{
		http.StatusUnauthorized: {Message: "Invalid credentials", Err: ErrInvalidCredentials},
		http.StatusNotFound:     {Message: "User not found", Err: ErrUserNotFound},
	}

	refreshOverrides = statusOverrides{
		http.StatusUnauthorized: {Message: "Invalid refresh token", Err: ErrInvalidRefreshToken},
	}
)

// Login exchanges a username and password for a token pair.
//
// A 401 is reported as ErrInvalidCredentials and a 404 as ErrUserNotFound;
// other failures carry the backend's message.
func (c *SDKClient) Login(ctx context.Context, username, password string) (*TokenResponse, error) {
	body, err := c.encodeBody(&loginRequest{Username: username, Password: password})
	if err != nil {
		return nil, err
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/users/login", body, "")
	if err != nil {
		return nil, err
	}

	var tokens TokenResponse
	if err := decodeJSON(resp, &tokens, loginOverrides); err != nil {
		return nil, err
	}

	return &tokens, nil
}

// Refresh exchanges the current token pair for a new one. The backend wants
// the (possibly expired) access token alongside the refresh token.
func (c *SDKClient) Refresh(ctx context.Context, accessToken, refreshToken string) (*TokenResponse, error) {
	body, err := c.encodeBody(&refreshRequest{AccessToken: accessToken, RefreshToken: refreshToken})
	if err != nil {
		return nil, err
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/users/refresh", body, "")
	if err != nil {
		return nil, err
	}

	var tokens TokenResponse
	if err := decodeJSON(resp, &tokens, refreshOverrides); err != nil {
		return nil, err
	}

	return &tokens, nil
}
