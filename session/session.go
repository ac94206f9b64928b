// Package session owns client-side authentication state: token acquisition,
// persistence across restarts, TTL-driven expiry and propagation of the
// bearer credential to authorized callers.
package session

import (
	"strings"
	"time"
)

// Status describes where the session is in its lifecycle.
type Status int

const (
	// StatusInitializing is the state before restore has completed.
	// Consumers must not make routing decisions while in this state.
	StatusInitializing Status = iota

	// StatusUnauthenticated is the logical "no session" state.
	StatusUnauthenticated

	// StatusAuthenticating is set while a login, register or restore
	// round-trip is in flight.
	StatusAuthenticating

	// StatusAuthenticated means a token and user identity are held.
	StatusAuthenticated

	// StatusExpired is a transient state: the stored token outlived its
	// TTL. It is always followed by StatusUnauthenticated.
	StatusExpired
)

func (s Status) String() string {
	switch s {
	case StatusInitializing:
		return "initializing"
	case StatusUnauthenticated:
		return "unauthenticated"
	case StatusAuthenticating:
		return "authenticating"
	case StatusAuthenticated:
		return "authenticated"
	case StatusExpired:
		return "expired"
	}
	return "unknown"
}

// UserIdentity is the minimal identity held once a token is validated.
type UserIdentity struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

// Profile is the richer account data returned by the profile endpoint.
// The backend returns a flat object whose fields vary by account type, so
// it is kept schemaless apart from the user_email discriminator.
type Profile map[string]any

// Email returns the user_email field, if present.
func (p Profile) Email() string {
	if p == nil {
		return ""
	}
	if v, ok := p["user_email"].(string); ok {
		return v
	}
	return ""
}

// Clone returns a shallow copy of the profile.
func (p Profile) Clone() Profile {
	if p == nil {
		return nil
	}
	out := make(Profile, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// IdentityFromProfile derives a UserIdentity from a fetched profile. The
// profile endpoint keys the account by email, so the email doubles as the
// ID and the username is the local part of the address.
func IdentityFromProfile(p Profile) UserIdentity {
	email := p.Email()
	return UserIdentity{
		ID:       email,
		Email:    email,
		Username: strings.SplitN(email, "@", 2)[0],
	}
}

// Snapshot is an immutable copy of session state handed to observers.
type Snapshot struct {
	Status   Status
	Token    string
	IssuedAt time.Time
	User     *UserIdentity
	Profile  Profile

	// ProfileIncomplete is set when the session is authenticated but the
	// profile fetch has not (yet) succeeded for the current token.
	ProfileIncomplete bool
}

// Authenticated reports whether the snapshot represents a live session.
func (s Snapshot) Authenticated() bool {
	return s.Status == StatusAuthenticated
}

// Event describes one observed state transition.
type Event struct {
	Previous Snapshot
	Current  Snapshot
	At       time.Time
}

// Result is the outcome of an operation with an expected failure mode.
// Expected failures never surface as errors; they carry the server-provided
// message when one was available.
type Result struct {
	Success bool
	Error   string
}

func ok() Result {
	return Result{Success: true}
}

func fail(msg string) Result {
	return Result{Success: false, Error: msg}
}
