package authapi_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-auth-client/authapi"
)

type staticTokenSource struct {
	header string
	held   bool
}

func (s staticTokenSource) AuthHeader() (string, bool) {
	return s.header, s.held
}

func TestTransportInjectsAuthHeader(t *testing.T) {
	var seen string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)

	transport, err := authapi.NewTransport(staticTokenSource{header: "Token tok1", held: true})
	require.NoError(t, err)

	client := &http.Client{Transport: transport}
	resp, err := client.Get(server.URL + "/api/chat/")
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.Equal(t, "Token tok1", seen)
}

func TestTransportSkipsHeaderWithoutToken(t *testing.T) {
	var seen string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)

	transport, err := authapi.NewTransport(staticTokenSource{})
	require.NoError(t, err)

	client := &http.Client{Transport: transport}
	resp, err := client.Get(server.URL)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.Empty(t, seen)
}

func TestTransportReportsUnauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	t.Cleanup(server.Close)

	var fired int
	transport, err := authapi.NewTransport(
		staticTokenSource{header: "Token stale", held: true},
		authapi.WithOnUnauthorized(func() { fired++ }),
	)
	require.NoError(t, err)

	client := &http.Client{Transport: transport}
	resp, err := client.Get(server.URL)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.Equal(t, 1, fired)
}

func TestNewTransportRequiresSource(t *testing.T) {
	_, err := authapi.NewTransport(nil)
	require.Error(t, err)
}
