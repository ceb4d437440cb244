package invsdk

import (
	"net/http"
	"strings"
	"time"
)

// SDKClient is a client for the inventory backend.
// It provides the unauthenticated token endpoints and can create Sessions.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client

	// CheckRoles determines whether a Session checks the caller's role
	// against the roles an endpoint allows before sending the request. It
	// only applies when the Authenticator implements RoleProvider.
	// Default: true
	CheckRoles bool

	validator *Validator
}

// NewSDKClient creates a new inventory client with role checking enabled.
func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		CheckRoles: true,
		validator:  NewValidator(),
	}
}

// Session returns an authenticated view of the client whose bearer tokens
// come from auth.
func (c *SDKClient) Session(auth Authenticator) *Session {
	return &Session{client: c, auth: auth}
}

// validate checks a payload against its struct tags.
func (c *SDKClient) validate(payload any) error {
	if c.validator == nil {
		c.validator = NewValidator()
	}
	return c.validator.Validate(payload)
}
