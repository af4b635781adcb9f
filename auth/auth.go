// Package auth produces HTTP clients authorized to read YouTube Data API
// resources.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ErrAuthorization is matched by every AuthorizationError.
var ErrAuthorization = errors.New("auth: authorization failed")

// AuthorizationError reports a credential exchange that failed or was declined.
type AuthorizationError struct {
	// Op is the step that failed ("read client secrets", "exchange", ...).
	Op string
	// Err is the underlying error.
	Err error
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("auth: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for use with errors.Is() and errors.As().
func (e *AuthorizationError) Unwrap() error { return e.Err }

// Is reports whether target is ErrAuthorization.
func (e *AuthorizationError) Is(target error) bool { return target == ErrAuthorization }

// Authorizer yields an authorized HTTP client or fails with an
// AuthorizationError.
type Authorizer interface {
	Client(ctx context.Context) (*http.Client, error)
}
