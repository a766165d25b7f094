package cli

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Makepad-fr/forcelist/internal/auth"
	"github.com/Makepad-fr/forcelist/internal/restapi"
	"github.com/Makepad-fr/forcelist/internal/stuborg"
	"github.com/Makepad-fr/forcelist/internal/ui"
)

func isolate(t *testing.T) (*bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("FORCELIST_CONFIG", "")
	t.Setenv(auth.EnvHome, filepath.Join(dir, ".forcelist"))
	t.Setenv(auth.EnvToken, "")
	t.Setenv(auth.EnvInstance, "")

	var out, errOut bytes.Buffer
	ui.SetOutput(&out, &errOut)
	t.Cleanup(func() { ui.SetOutput(nil, nil) })
	return &out, &errOut
}

func stubServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(stuborg.NewRouter(stuborg.Options{Token: "tok"}))
	t.Cleanup(srv.Close)
	return srv
}

func TestQueryPrintsNames(t *testing.T) {
	out, _ := isolate(t)
	srv := stubServer(t)
	t.Setenv(auth.EnvToken, "tok")
	t.Setenv(auth.EnvInstance, srv.URL)

	require.Equal(t, 0, Execute([]string{"query", "accounts"}))
	require.Contains(t, out.String(), "Accounts")
	require.Contains(t, out.String(), "Globex")
	require.Contains(t, out.String(), "Umbrella")
}

func TestQueryReportsOrgError(t *testing.T) {
	_, errOut := isolate(t)
	srv := stubServer(t)
	t.Setenv(auth.EnvToken, "stale")
	t.Setenv(auth.EnvInstance, srv.URL)

	require.Equal(t, 1, Execute([]string{"query", "contacts"}))
	require.Contains(t, errOut.String(), "query contacts: http 401 INVALID_SESSION_ID")

	root := newRoot()
	root.SetArgs([]string{"query", "contacts"})
	err := root.Execute()
	require.ErrorIs(t, err, restapi.ErrSessionExpired)
	var herr *restapi.HTTPError
	require.True(t, errors.As(err, &herr))
	require.Equal(t, "INVALID_SESSION_ID", herr.Code)
}

func TestQuerySendsVersionedUserAgent(t *testing.T) {
	isolate(t)
	agents := make(chan string, 1)
	router := stuborg.NewRouter(stuborg.Options{Token: "tok"})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agents <- r.UserAgent()
		router.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)
	t.Setenv(auth.EnvToken, "tok")
	t.Setenv(auth.EnvInstance, srv.URL)

	require.Equal(t, 0, Execute([]string{"query", "contacts"}))
	require.Equal(t, "forcelist/"+Version, <-agents)
}

func TestQueryNeedsSession(t *testing.T) {
	_, errOut := isolate(t)
	require.Equal(t, 1, Execute([]string{"query", "contacts"}))
	require.Contains(t, errOut.String(), "not logged in")
}

func TestUsageErrors(t *testing.T) {
	isolate(t)
	require.Equal(t, 2, Execute([]string{"query", "opportunities"}))
	require.Equal(t, 2, Execute([]string{"query", "Contacts"}))
	require.Equal(t, 2, Execute([]string{"query"}))
	require.Equal(t, 2, Execute([]string{"query", "contacts", "accounts"}))
	require.Equal(t, 2, Execute([]string{"frobnicate"}))
	require.Equal(t, 2, Execute([]string{"--nope"}))
	require.Equal(t, 2, Execute([]string{"query", "contacts", "--nope"}))
	require.Equal(t, 2, Execute([]string{"auth", "status", "extra"}))
}

func TestBadQueryArgIsUsageErrorWithoutSession(t *testing.T) {
	_, errOut := isolate(t)
	root := newRoot()
	root.SetArgs([]string{"query", "opportunities"})
	err := root.Execute()
	var ue usageError
	require.True(t, errors.As(err, &ue), "got %v", err)
	require.NotErrorIs(t, err, auth.ErrNotLoggedIn)
	require.NotContains(t, errOut.String(), "not logged in")
}

func TestAuthLogoutRevokesAndForgets(t *testing.T) {
	out, _ := isolate(t)
	srv := stubServer(t)
	require.NoError(t, auth.Save(auth.Session{AccessToken: "tok", InstanceURL: srv.URL}))

	require.Equal(t, 0, Execute([]string{"auth", "whoami"}))
	require.Contains(t, out.String(), "stub@example.com")

	require.Equal(t, 0, Execute([]string{"auth", "logout"}))
	require.Contains(t, out.String(), "logged out")
	_, err := auth.Load()
	require.ErrorIs(t, err, auth.ErrNotLoggedIn)

	require.Equal(t, 0, Execute([]string{"auth", "logout"}))
	require.Contains(t, out.String(), "nothing to delete")
}

func TestAuthStatus(t *testing.T) {
	out, _ := isolate(t)
	require.NoError(t, auth.Save(auth.Session{AccessToken: "tok", InstanceURL: "https://acme.my.salesforce.com"}))
	require.Equal(t, 0, Execute([]string{"auth", "status"}))
	require.Contains(t, out.String(), "https://acme.my.salesforce.com")
	require.Contains(t, out.String(), "source:   file")
	require.Contains(t, out.String(), "saved:")
	require.NotContains(t, out.String(), "expires")
}
