package session

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
)

// Grant is what the remote endpoint returns on a successful login or
// register call: a bearer token plus the user it was issued to.
type Grant struct {
	Token string
	User  UserIdentity
}

// Registration carries the fields of a register call. Password confirmation
// mismatch is a precondition the caller enforces; the manager forwards the
// fields as-is.
type Registration struct {
	Email           string
	Username        string
	Password        string
	PasswordConfirm string
}

// API defines the remote auth endpoint operations the manager depends on.
// Implementations return *RemoteError for non-2xx responses so the manager
// can distinguish rejections from transport failures.
type API interface {
	// Login exchanges credentials for a token.
	Login(ctx context.Context, email, password string) (*Grant, error)

	// Register creates an account. The endpoint returns a token directly,
	// so a successful register behaves like a login.
	Register(ctx context.Context, reg Registration) (*Grant, error)

	// FetchProfile retrieves the profile for the given token.
	FetchProfile(ctx context.Context, token string) (Profile, error)

	// UpdateProfile patches profile fields and returns the updated profile.
	UpdateProfile(ctx context.Context, token string, fields map[string]any) (Profile, error)
}

// RemoteError is a non-2xx response from the remote endpoint. Message holds
// the server-provided error string when the body carried one.
type RemoteError struct {
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("remote endpoint %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("remote endpoint %d", e.StatusCode)
}

// AsRemoteError unwraps err to a *RemoteError if one is in its chain.
func AsRemoteError(err error) (*RemoteError, bool) {
	var re *RemoteError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}
