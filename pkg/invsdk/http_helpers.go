package invsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// url builds a complete URL by appending the path to the base URL.
func (c *SDKClient) url(path string) string {
	return c.BaseURL + path
}

// encodeBody validates payload and marshals it to JSON. A nil payload yields
// a nil body.
func (c *SDKClient) encodeBody(payload any) ([]byte, error) {
	if payload == nil {
		return nil, nil
	}
	if err := c.validate(payload); err != nil {
		return nil, err
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}
	return body, nil
}

// doRequest performs an HTTP request with the SDKClient's HTTP client.
// This is for unauthenticated requests (no Authorization header).
func (c *SDKClient) doRequest(
	ctx context.Context,
	method, path string,
	body []byte,
	token string,
) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Op: method + " " + path, Err: err}
	}

	return resp, nil
}

// doAuthRequest performs an authenticated HTTP request using the
// Authenticator's access token. It checks roles first and, on a 401,
// refreshes the token pair once and replays the request once.
func (s *Session) doAuthRequest(
	ctx context.Context,
	method, path string,
	body []byte,
	allowedRoles ...string,
) (*http.Response, error) {
	if err := s.checkRoles(allowedRoles...); err != nil {
		return nil, err
	}

	token, ok := s.auth.AccessToken()
	if !ok {
		return nil, ErrNoAccessToken
	}

	resp, err := s.client.doRequest(ctx, method, path, body, token)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	// Drain so the connection can be reused for the replay
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	if err := s.auth.RefreshAccessToken(ctx); err != nil {
		return nil, fmt.Errorf("refresh after 401 on %s %s: %w", method, path, err)
	}

	token, ok = s.auth.AccessToken()
	if !ok {
		return nil, ErrNoAccessToken
	}

	return s.client.doRequest(ctx, method, path, body, token)
}

// decodeJSON decodes a JSON response into target.
// Any 2xx status is a success; anything else becomes an *APIError.
func decodeJSON(resp *http.Response, target any, overrides statusOverrides) error {
	defer resp.Body.Close()

	// Read body once for both error parsing and success decoding
	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if err := parseErrorResponse(resp.StatusCode, bodyBytes, overrides); err != nil {
		return err
	}

	if err := json.Unmarshal(bodyBytes, target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// checkStatus returns an *APIError if the response is not 2xx. The body of a
// successful response is discarded.
func checkStatus(resp *http.Response, overrides statusOverrides) error {
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	return parseErrorResponse(resp.StatusCode, bodyBytes, overrides)
}

// sendJSON validates and encodes payload, performs an authenticated request
// and decodes the 2xx response into a T.
func sendJSON[T any](
	ctx context.Context,
	s *Session,
	method, path string,
	payload any,
	allowedRoles ...string,
) (*T, error) {
	body, err := s.client.encodeBody(payload)
	if err != nil {
		return nil, err
	}

	resp, err := s.doAuthRequest(ctx, method, path, body, allowedRoles...)
	if err != nil {
		return nil, err
	}

	var out T
	if err := decodeJSON(resp, &out, nil); err != nil {
		return nil, err
	}

	return &out, nil
}

// sendNoContent performs an authenticated request whose response body is
// not needed.
func (s *Session) sendNoContent(ctx context.Context, method, path string, allowedRoles ...string) error {
	resp, err := s.doAuthRequest(ctx, method, path, nil, allowedRoles...)
	if err != nil {
		return err
	}

	return checkStatus(resp, nil)
}
