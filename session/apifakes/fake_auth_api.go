package apifakes

import (
	"context"
	"net/http"
	"sync"

	"github.com/jrsteele09/go-auth-client/session"
)

var _ session.API = (*FakeAuthAPI)(nil)

// FakeAuthAPI is a scriptable in-memory session.API for tests.
type FakeAuthAPI struct {
	lock sync.Mutex

	// Grants issued for credentials, keyed by email.
	grants map[string]*session.Grant
	// Profiles served per token.
	profiles map[string]session.Profile
	// Errors to return per operation, when set.
	LoginErr    error
	RegisterErr error
	ProfileErr  error
	UpdateErr   error

	LoginCalls   int
	ProfileCalls int
}

func NewFakeAuthAPI() *FakeAuthAPI {
	return &FakeAuthAPI{
		grants:   make(map[string]*session.Grant),
		profiles: make(map[string]session.Profile),
	}
}

// SetGrant scripts a successful login/register outcome for an email.
func (f *FakeAuthAPI) SetGrant(email string, grant session.Grant) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.grants[email] = &grant
}

// SetProfile scripts the profile served for a token.
func (f *FakeAuthAPI) SetProfile(token string, profile session.Profile) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.profiles[token] = profile
}

func (f *FakeAuthAPI) Login(_ context.Context, email, _ string) (*session.Grant, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.LoginCalls++
	if f.LoginErr != nil {
		return nil, f.LoginErr
	}
	grant, found := f.grants[email]
	if !found {
		return nil, &session.RemoteError{StatusCode: http.StatusUnauthorized, Message: "Invalid credentials"}
	}
	copied := *grant
	return &copied, nil
}

func (f *FakeAuthAPI) Register(_ context.Context, reg session.Registration) (*session.Grant, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	if f.RegisterErr != nil {
		return nil, f.RegisterErr
	}
	grant, found := f.grants[reg.Email]
	if !found {
		return nil, &session.RemoteError{StatusCode: http.StatusBadRequest, Message: "Registration failed"}
	}
	copied := *grant
	return &copied, nil
}

func (f *FakeAuthAPI) FetchProfile(_ context.Context, token string) (session.Profile, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.ProfileCalls++
	if f.ProfileErr != nil {
		return nil, f.ProfileErr
	}
	profile, found := f.profiles[token]
	if !found {
		return nil, &session.RemoteError{StatusCode: http.StatusUnauthorized, Message: "Invalid token"}
	}
	return profile.Clone(), nil
}

func (f *FakeAuthAPI) UpdateProfile(_ context.Context, token string, fields map[string]any) (session.Profile, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	if f.UpdateErr != nil {
		return nil, f.UpdateErr
	}
	profile, found := f.profiles[token]
	if !found {
		return nil, &session.RemoteError{StatusCode: http.StatusUnauthorized, Message: "Invalid token"}
	}
	updated := profile.Clone()
	for k, v := range fields {
		updated[k] = v
	}
	f.profiles[token] = updated
	return updated.Clone(), nil
}
