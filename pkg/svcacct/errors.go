package svcacct

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Configuration errors. New raises these at construction; a credential
// derived into remote mode reports ErrNoTokenURL at first use instead.
var (
	ErrNoEmail         = errors.New("svcacct: missing service account email")
	ErrNoKey           = errors.New("svcacct: missing private key")
	ErrConflictingKeys = errors.New("svcacct: both PEM bytes and a parsed key configured")
	ErrNoTokenURL      = errors.New("svcacct: token URL required for remote issuance")
	ErrEmptyScopes     = errors.New("svcacct: jwt access with scopes requires at least one scope")
	ErrNoAudience      = errors.New("svcacct: identity token audience required")
)

// ErrNoTargetURI is returned by AccessToken when the self-signed unscoped
// path gets an empty target, since the target becomes the JWT audience.
var ErrNoTargetURI = errors.New("svcacct: target URI required")

// Error codes commonly returned by token-exchange endpoints (RFC 6749).
const (
	ErrorCodeInvalidGrant = "invalid_grant"
	ErrorCodeInvalidScope = "invalid_scope"
	ErrorCodeServerError  = "server_error"
)

// ExchangeError is a non-2xx response from the token-exchange endpoint,
// parsed from the standard OAuth2 error body where one was provided.
type ExchangeError struct {
	// StatusCode is the HTTP status code of the failed exchange
	StatusCode int `json:"-"`

	// Code is the OAuth2 error code (e.g., "invalid_grant", "invalid_scope")
	Code string `json:"error"`

	// Description is a human-readable description of the error
	Description string `json:"error_description"`
}

// Error implements the error interface.
func (e *ExchangeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// parseExchangeError turns a failed exchange response into a typed error.
// Returns nil for 2xx responses.
func parseExchangeError(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var errResp struct {
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
	}
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return &ExchangeError{
			StatusCode:  resp.StatusCode,
			Code:        errResp.Error,
			Description: errResp.ErrorDescription,
		}
	}

	// Fallback: create generic error from status code
	return &ExchangeError{
		StatusCode:  resp.StatusCode,
		Code:        ErrorCodeServerError,
		Description: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}
