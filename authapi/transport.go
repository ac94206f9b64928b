package authapi

import (
	"net/http"

	"github.com/pkg/errors"
)

// TokenSource supplies the Authorization header value for outbound
// requests. *session.Manager satisfies it.
type TokenSource interface {
	AuthHeader() (string, bool)
}

// Transport is an http.RoundTripper that attaches the session's
// Authorization header to every request and reports 401 responses back to
// the session, so any feature client built on it participates in the
// implicit-logout rule.
type Transport struct {
	base           http.RoundTripper
	source         TokenSource
	onUnauthorized func()
}

// TransportOption defines a function type to modify the Transport instance.
type TransportOption func(*Transport)

// WithBase sets the wrapped RoundTripper. Defaults to http.DefaultTransport.
func WithBase(rt http.RoundTripper) TransportOption {
	return func(t *Transport) { t.base = rt }
}

// WithOnUnauthorized sets the hook invoked when an authorized request
// comes back 401. Wire it to the manager's Logout.
func WithOnUnauthorized(fn func()) TransportOption {
	return func(t *Transport) { t.onUnauthorized = fn }
}

// NewTransport creates a Transport drawing tokens from source.
func NewTransport(source TokenSource, options ...TransportOption) (*Transport, error) {
	if source == nil {
		return nil, errors.New("[authapi.NewTransport] source is required")
	}

	t := &Transport{
		base:   http.DefaultTransport,
		source: source,
	}

	for _, opt := range options {
		opt(t)
	}

	return t, nil
}

// RoundTrip implements http.RoundTripper. The request is cloned before the
// header is set, per the RoundTripper contract.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if header, held := t.source.AuthHeader(); held {
		req = req.Clone(req.Context())
		req.Header.Set("Authorization", header)
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized && t.onUnauthorized != nil {
		t.onUnauthorized()
	}
	return resp, nil
}

// Compile-time interface check.
var _ http.RoundTripper = (*Transport)(nil)
