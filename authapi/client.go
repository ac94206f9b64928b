// Package authapi is the HTTP client for the remote auth endpoint. It
// implements session.API over the platform's token-auth routes.
package authapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/jrsteele09/go-auth-client/session"
)

const (
	// DefaultTimeout bounds every request so callers never hang in an
	// indefinite authenticating state.
	DefaultTimeout = 15 * time.Second

	loginPath    = "/api/auth/login/"
	registerPath = "/api/auth/register/"
	profilePath  = "/api/auth/profile/"
)

// Client talks to the remote auth endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// ClientOption defines a function type to modify the Client instance.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout on the underlying client.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l zerolog.Logger) ClientOption {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a Client for the endpoint at baseURL,
// e.g. "http://127.0.0.1:8000".
func NewClient(baseURL string, options ...ClientOption) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("[authapi.NewClient] baseURL is required")
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     zerolog.Nop(),
	}

	for _, opt := range options {
		opt(c)
	}

	return c, nil
}

// wireUser matches the user object in login/register responses. The
// backend serializes the ID as a number, so it is decoded loosely.
type wireUser struct {
	ID       any    `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

type grantResponse struct {
	Token string   `json:"token"`
	User  wireUser `json:"user"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Login exchanges credentials for a token.
func (c *Client) Login(ctx context.Context, email, password string) (*session.Grant, error) {
	body := map[string]string{"email": email, "password": password}
	var resp grantResponse
	if err := c.do(ctx, http.MethodPost, loginPath, "", body, &resp); err != nil {
		return nil, errors.Wrap(err, "[Client.Login]")
	}
	return grantFromResponse(resp), nil
}

// Register creates an account. The endpoint returns a token directly.
func (c *Client) Register(ctx context.Context, reg session.Registration) (*session.Grant, error) {
	body := map[string]string{
		"email":            reg.Email,
		"username":         reg.Username,
		"password":         reg.Password,
		"password_confirm": reg.PasswordConfirm,
	}
	var resp grantResponse
	if err := c.do(ctx, http.MethodPost, registerPath, "", body, &resp); err != nil {
		return nil, errors.Wrap(err, "[Client.Register]")
	}
	return grantFromResponse(resp), nil
}

// FetchProfile retrieves the profile for the given token.
func (c *Client) FetchProfile(ctx context.Context, token string) (session.Profile, error) {
	var profile session.Profile
	if err := c.do(ctx, http.MethodGet, profilePath, token, nil, &profile); err != nil {
		return nil, errors.Wrap(err, "[Client.FetchProfile]")
	}
	return profile, nil
}

// UpdateProfile patches profile fields and returns the updated profile.
func (c *Client) UpdateProfile(ctx context.Context, token string, fields map[string]any) (session.Profile, error) {
	var profile session.Profile
	if err := c.do(ctx, http.MethodPatch, profilePath, token, fields, &profile); err != nil {
		return nil, errors.Wrap(err, "[Client.UpdateProfile]")
	}
	return profile, nil
}

// do performs one round-trip. Non-2xx responses become *session.RemoteError
// carrying the server message; transport failures pass through wrapped.
func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "encode request body")
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return errors.Wrap(err, "build request")
	}

	requestID := uuid.New().String()
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug().Str("method", method).Str("path", path).Str("request_id", requestID).Err(err).Msg("request failed")
		return errors.Wrap(err, "round trip")
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Str("request_id", requestID).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(started)).
		Msg("request completed")

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return errors.Wrap(err, "read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &session.RemoteError{
			StatusCode: resp.StatusCode,
			Message:    serverMessage(payload, resp.StatusCode),
		}
	}

	if out != nil {
		decoder := json.NewDecoder(bytes.NewReader(payload))
		decoder.UseNumber()
		if err := decoder.Decode(out); err != nil {
			return errors.Wrap(err, "decode response body")
		}
	}
	return nil
}

// serverMessage extracts the error string from a non-2xx body: `error`
// takes precedence over `message`, and an undecodable body falls back to
// the HTTP status text.
func serverMessage(payload []byte, statusCode int) string {
	var er errorResponse
	if err := json.Unmarshal(payload, &er); err == nil {
		if er.Error != "" {
			return er.Error
		}
		if er.Message != "" {
			return er.Message
		}
	}
	return http.StatusText(statusCode)
}

func grantFromResponse(resp grantResponse) *session.Grant {
	return &session.Grant{
		Token: resp.Token,
		User: session.UserIdentity{
			ID:       idString(resp.User.ID),
			Email:    resp.User.Email,
			Username: resp.User.Username,
		},
	}
}

// idString renders the loosely-typed user ID as a string.
func idString(v any) string {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return id
	case json.Number:
		return id.String()
	default:
		return fmt.Sprintf("%v", id)
	}
}

// Compile-time interface check.
var _ session.API = (*Client)(nil)
