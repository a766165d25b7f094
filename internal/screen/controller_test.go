package screen

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Makepad-fr/forcelist/internal/restapi"
)

// queueUI collects posted tasks; the test decides when the UI loop runs.
type queueUI struct {
	mu    sync.Mutex
	tasks []func()
}

func (q *queueUI) Post(fn func()) {
	q.mu.Lock()
	q.tasks = append(q.tasks, fn)
	q.mu.Unlock()
}

func (q *queueUI) drain() int {
	q.mu.Lock()
	tasks := q.tasks
	q.tasks = nil
	q.mu.Unlock()
	for _, fn := range tasks {
		fn()
	}
	return len(tasks)
}

type sent struct {
	req *restapi.Request
	cb  restapi.AsyncRequestCallback
}

type fakeClient struct {
	sent []sent
}

func (f *fakeClient) SendAsync(req *restapi.Request, cb restapi.AsyncRequestCallback) {
	f.sent = append(f.sent, sent{req: req, cb: cb})
}

type fakeSession struct{ logouts int }

func (f *fakeSession) Logout() { f.logouts++ }

func readyController(t *testing.T) (*Controller, *queueUI, *fakeClient) {
	t.Helper()
	ui := &queueUI{}
	c := New(ui, &fakeSession{}, "")
	c.OnResume()
	fc := &fakeClient{}
	c.OnSessionReady(fc)
	return c, ui, fc
}

func succeed(s sent, body string) {
	s.cb.OnSuccess(s.req, restapi.NewResponse(http.StatusOK, []byte(body)))
}

func soqlOf(t *testing.T, req *restapi.Request) string {
	t.Helper()
	u, err := url.Parse(req.Path)
	require.NoError(t, err)
	return u.Query().Get("q")
}

func TestVisibilityFollowsSessionReady(t *testing.T) {
	ui := &queueUI{}
	c := New(ui, nil, "")
	require.Equal(t, Hidden, c.State())

	c.OnResume()
	require.False(t, c.Visible())
	require.Empty(t, c.Records())
	require.Equal(t, Hidden, c.State())

	// nothing posted can make it visible on its own
	require.Zero(t, ui.drain())
	require.False(t, c.Visible())

	c.OnSessionReady(&fakeClient{})
	require.True(t, c.Visible())
	require.Equal(t, Idle, c.State())
}

func TestFetchBeforeSessionReady(t *testing.T) {
	c := New(&queueUI{}, nil, "")
	c.OnResume()
	require.ErrorIs(t, c.OnFetchAccounts(), ErrNoSession)
	require.Zero(t, c.InFlight())
}

func TestEachFetchSubmitsOneQuery(t *testing.T) {
	cases := []struct {
		name  string
		fetch func(*Controller) error
		soql  string
	}{
		{"contacts", (*Controller).OnFetchContacts, "SELECT Name FROM Contact"},
		{"accounts", (*Controller).OnFetchAccounts, "SELECT Name FROM Account"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _, fc := readyController(t)
			require.NoError(t, tc.fetch(c))
			require.Len(t, fc.sent, 1)
			req := fc.sent[0].req
			require.Equal(t, http.MethodGet, req.Method)
			require.True(t, strings.HasPrefix(req.Path, "/services/data/"+restapi.DefaultAPIVersion+"/query?"))
			require.Equal(t, tc.soql, soqlOf(t, req))
			require.Equal(t, Awaiting, c.State())
		})
	}
}

func TestFetchUsesConfiguredVersion(t *testing.T) {
	fc := &fakeClient{}
	c := New(&queueUI{}, nil, "v58.0")
	c.OnResume()
	c.OnSessionReady(fc)
	require.NoError(t, c.OnFetchContacts())
	require.True(t, strings.HasPrefix(fc.sent[0].req.Path, "/services/data/v58.0/query?"))
}

func TestEncodingErrorPropagates(t *testing.T) {
	fc := &fakeClient{}
	c := New(&queueUI{}, nil, " ")
	c.OnResume()
	c.OnSessionReady(fc)
	err := c.OnFetchContacts()
	require.ErrorIs(t, err, restapi.ErrEncoding)
	require.Empty(t, fc.sent)
	require.Equal(t, Idle, c.State())
}

func TestSuccessReplacesList(t *testing.T) {
	c, ui, fc := readyController(t)

	require.NoError(t, c.OnFetchContacts())
	succeed(fc.sent[0], `{"records":[{"Name":"Ada"},{"Name":"Grace"},{"Name":"Linus"}]}`)
	// nothing changes until the UI loop runs the hand-off
	require.Empty(t, c.Records())
	require.Equal(t, 1, ui.drain())
	require.Equal(t, []string{"Ada", "Grace", "Linus"}, c.Records())
	require.Equal(t, Idle, c.State())
	require.False(t, c.LastFetch().IsZero())

	require.NoError(t, c.OnFetchAccounts())
	succeed(fc.sent[1], `{"totalSize":2,"done":true,"records":[{"attributes":{"type":"Account"},"Name":"Acme"},{"Name":"Globex"}]}`)
	ui.drain()
	require.Equal(t, []string{"Acme", "Globex"}, c.Records())
}

func TestEmptyRecordsClearsList(t *testing.T) {
	c, ui, fc := readyController(t)
	require.NoError(t, c.OnFetchContacts())
	succeed(fc.sent[0], `{"records":[{"Name":"Ada"}]}`)
	ui.drain()

	require.NoError(t, c.OnFetchContacts())
	succeed(fc.sent[1], `{"records":[]}`)
	ui.drain()
	require.Empty(t, c.Records())
	_, shown := c.Toast()
	require.False(t, shown)
}

func TestMalformedResponseRoutesToError(t *testing.T) {
	bodies := map[string]string{
		"no records":      `{"totalSize":0}`,
		"missing name":    `{"records":[{"Name":"Ok"},{"Id":"001"}]}`,
		"name not string": `{"records":[{"Name":42}]}`,
		"records object":  `{"records":{"Name":"x"}}`,
		"not json":        `<html>`,
		"array body":      `[{"Name":"x"}]`,
		"null name":       `{"records":[{"Name":null}]}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			c, ui, fc := readyController(t)
			require.NoError(t, c.OnFetchContacts())
			succeed(fc.sent[0], `{"records":[{"Name":"Before"}]}`)
			ui.drain()

			require.NoError(t, c.OnFetchAccounts())
			succeed(fc.sent[1], body)
			ui.drain()

			require.Equal(t, []string{"Before"}, c.Records())
			toast, shown := c.Toast()
			require.True(t, shown)
			require.True(t, strings.HasPrefix(toast.Text, "Error: "), toast.Text)
			require.Equal(t, Idle, c.State())
		})
	}
}

func TestTransportErrorShowsToast(t *testing.T) {
	c, ui, fc := readyController(t)
	require.NoError(t, c.OnFetchContacts())
	succeed(fc.sent[0], `{"records":[{"Name":"Ada"}]}`)
	ui.drain()

	require.NoError(t, c.OnFetchAccounts())
	fc.sent[1].cb.OnError(errors.New("dial tcp 10.0.0.1:443: connection refused"))
	require.Equal(t, Awaiting, c.State())
	ui.drain()

	require.Equal(t, []string{"Ada"}, c.Records())
	toast, shown := c.Toast()
	require.True(t, shown)
	require.Equal(t, "Error: dial tcp 10.0.0.1:443: connection refused", toast.Text)
	require.EqualError(t, toast.Err, "dial tcp 10.0.0.1:443: connection refused")
	require.Equal(t, Idle, c.State())
}

func TestNoContentRoutesToError(t *testing.T) {
	c, ui, fc := readyController(t)
	require.NoError(t, c.OnFetchContacts())
	succeed(fc.sent[0], `{"records":[{"Name":"Ada"}]}`)
	ui.drain()

	require.NoError(t, c.OnFetchAccounts())
	fc.sent[1].cb.OnSuccess(fc.sent[1].req, restapi.NewResponse(http.StatusNoContent, nil))
	ui.drain()

	require.Equal(t, []string{"Ada"}, c.Records())
	toast, shown := c.Toast()
	require.True(t, shown)
	require.ErrorIs(t, toast.Err, restapi.ErrEmptyResponse)
}

func TestLastResolvedWins(t *testing.T) {
	c, ui, fc := readyController(t)
	require.NoError(t, c.OnFetchContacts())
	require.NoError(t, c.OnFetchAccounts())
	require.Equal(t, 2, c.InFlight())

	// accounts resolves first, contacts last
	succeed(fc.sent[1], `{"records":[{"Name":"Acme"}]}`)
	ui.drain()
	succeed(fc.sent[0], `{"records":[{"Name":"Ada"},{"Name":"Grace"}]}`)
	ui.drain()
	require.Equal(t, []string{"Ada", "Grace"}, c.Records())

	// and the other way round
	require.NoError(t, c.OnFetchContacts())
	require.NoError(t, c.OnFetchAccounts())
	succeed(fc.sent[2], `{"records":[{"Name":"Ada"}]}`)
	succeed(fc.sent[3], `{"records":[{"Name":"Acme"},{"Name":"Globex"}]}`)
	ui.drain()
	require.Equal(t, []string{"Acme", "Globex"}, c.Records())
	require.Zero(t, c.InFlight())
}

func TestClearIsIdempotent(t *testing.T) {
	c, ui, fc := readyController(t)
	c.OnClear()
	require.Empty(t, c.Records())

	require.NoError(t, c.OnFetchContacts())
	succeed(fc.sent[0], `{"records":[{"Name":"Ada"},{"Name":"Ada"}]}`)
	ui.drain()
	require.Len(t, c.Records(), 2)

	c.OnClear()
	require.Empty(t, c.Records())
	c.OnClear()
	require.Empty(t, c.Records())
	require.Len(t, fc.sent, 1)
}

func TestLogoutDelegates(t *testing.T) {
	sess := &fakeSession{}
	c := New(&queueUI{}, sess, "")
	c.OnResume()
	c.OnSessionReady(&fakeClient{})
	c.OnLogout()
	require.Equal(t, 1, sess.logouts)
	require.True(t, c.Visible())
}

func TestDismissToastMatchesID(t *testing.T) {
	c, ui, fc := readyController(t)
	require.NoError(t, c.OnFetchContacts())
	require.NoError(t, c.OnFetchAccounts())
	fc.sent[0].cb.OnError(errors.New("first"))
	ui.drain()
	first, _ := c.Toast()
	fc.sent[1].cb.OnError(errors.New("second"))
	ui.drain()

	c.DismissToast(first.ID)
	cur, shown := c.Toast()
	require.True(t, shown)
	require.Equal(t, "Error: second", cur.Text)

	c.DismissToast(cur.ID)
	_, shown = c.Toast()
	require.False(t, shown)
}
