/*
Package invsdk provides a client SDK for the stockroom inventory REST backend.

# Overview

The backend exposes token login plus CRUD endpoints for products, suppliers,
categories, users and the transaction ledger. This package wraps those
endpoints in typed Go calls. It provides both unauthenticated operations (via
SDKClient) and authenticated operations (via Session).

# SDKClient vs Session

  - SDKClient: login and token refresh, and the factory for Sessions
  - Session: resource operations carrying a bearer token

SDKClient does not hold tokens. A Session borrows them from an Authenticator,
normally the session manager in internal/session, which owns the token pair,
persists it and renews it in the background:

	client := invsdk.NewSDKClient("http://localhost:5000/api/v1")

	tokens, err := client.Login(ctx, "admin", "secret")

	api := client.Session(manager) // manager implements Authenticator
	products, err := api.ListProducts(ctx, &invsdk.ProductFilter{Name: "bolt"})

# Expired access tokens

When an authenticated request comes back 401 the Session asks its
Authenticator to refresh the token pair and replays the request once with the
new access token. A second 401 is returned to the caller. The Session never
retries on transport errors.

# Role checks

The backend gates writes by role (Administrator, Manager, Staff). When the
Authenticator also implements RoleProvider and CheckRoles is enabled, the
Session rejects calls the current role cannot make before sending them:

	client.CheckRoles = false // leave every decision to the server

# Validation

Create, update and patch payloads carry validate struct tags and are checked
before they are sent. Validation failures are returned as *ValidationError.

# Error Handling

  - ErrInvalidCredentials, ErrUserNotFound: login rejected (401 / 404)
  - ErrInvalidRefreshToken: refresh rejected (401)
  - *APIError: any other non-2xx response, matches ErrBadRequest,
    ErrUnauthorized, ErrForbidden, ErrNotFound, ErrConflict via errors.Is
  - *NetworkError: no response at all

Example:

	_, err := client.Login(ctx, "admin", "wrongpass")
	if errors.Is(err, invsdk.ErrInvalidCredentials) {
		fmt.Println(err) // "Invalid credentials"
	}

# Thread Safety

SDKClient and Session hold no mutable state of their own and are safe for
concurrent use. Token state lives in the Authenticator.
*/
package invsdk
