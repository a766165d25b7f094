// Package screen holds the record browser's screen controller: visibility,
// the displayed record list, and the two canned fetch gestures.
//
// Every exported method except the constructor must run on the UI
// execution context. Transport callbacks arrive on other goroutines and
// are handed back through UIThread.Post before touching any state.
package screen

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Makepad-fr/forcelist/internal/restapi"
)

const (
	ContactsQuery = "SELECT Name FROM Contact"
	AccountsQuery = "SELECT Name FROM Account"

	// ErrorTemplate is the generic error notification text.
	ErrorTemplate = "Error: %s"
)

// ErrNoSession is returned by a fetch gesture before OnSessionReady.
var ErrNoSession = errors.New("screen: no session yet")

// RestClient is the authenticated transport handle borrowed from the session.
type RestClient interface {
	SendAsync(req *restapi.Request, cb restapi.AsyncRequestCallback)
}

// UIThread schedules fn on the UI execution context.
type UIThread interface {
	Post(fn func())
}

// SessionManager ends the current session and restarts authentication.
type SessionManager interface {
	Logout()
}

type State int

const (
	Hidden State = iota
	Idle
	Awaiting
)

func (s State) String() string {
	switch s {
	case Hidden:
		return "hidden"
	case Idle:
		return "idle"
	case Awaiting:
		return "awaiting"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Toast is a transient notification. IDs increase so a dismiss timer can
// tell whether its toast is still the one on screen.
type Toast struct {
	ID   uint64
	Text string
	Err  error
}

type Controller struct {
	ui         UIThread
	session    SessionManager
	apiVersion string
	now        func() time.Time

	client   RestClient
	visible  bool
	records  []string
	inFlight int

	toast    *Toast
	toastSeq uint64

	lastFetch time.Time
	rev       uint64
}

// New returns a controller in the Hidden state. apiVersion falls back to
// restapi.DefaultAPIVersion when empty.
func New(ui UIThread, session SessionManager, apiVersion string) *Controller {
	if apiVersion == "" {
		apiVersion = restapi.DefaultAPIVersion
	}
	return &Controller{
		ui:         ui,
		session:    session,
		apiVersion: apiVersion,
		now:        time.Now,
	}
}

// OnResume hides the content and allocates an empty record list.
func (c *Controller) OnResume() {
	c.visible = false
	c.records = []string{}
	c.rev++
}

// OnSessionReady keeps the client handle and shows the content.
func (c *Controller) OnSessionReady(client RestClient) {
	c.client = client
	c.visible = true
	c.rev++
}

func (c *Controller) OnLogout() {
	if c.session != nil {
		c.session.Logout()
	}
}

// OnClear empties the record list in place.
func (c *Controller) OnClear() {
	if len(c.records) == 0 {
		return
	}
	c.records = c.records[:0]
	c.rev++
}

func (c *Controller) OnFetchContacts() error { return c.sendRequest(ContactsQuery) }

func (c *Controller) OnFetchAccounts() error { return c.sendRequest(AccountsQuery) }

func (c *Controller) sendRequest(soql string) error {
	req, err := restapi.NewQueryRequest(c.apiVersion, soql)
	if err != nil {
		return err
	}
	if c.client == nil {
		return ErrNoSession
	}
	c.inFlight++
	c.rev++
	c.client.SendAsync(req, &fetchCallback{c: c})
	return nil
}

// fetchCallback runs on the transport goroutine.
type fetchCallback struct {
	c *Controller
}

func (cb *fetchCallback) OnSuccess(_ *restapi.Request, resp *restapi.Response) {
	// release the connection before hopping to the UI context
	resp.ConsumeQuietly()
	cb.c.ui.Post(func() {
		cb.c.inFlight--
		names, err := recordNames(resp)
		if err != nil {
			cb.c.showError(err)
			return
		}
		cb.c.records = append(cb.c.records[:0], names...)
		cb.c.lastFetch = cb.c.now()
		cb.c.rev++
	})
}

func (cb *fetchCallback) OnError(err error) {
	cb.c.ui.Post(func() {
		cb.c.inFlight--
		cb.c.showError(err)
	})
}

// recordNames pulls records[].Name out of a query response. The whole
// array is extracted before the caller touches the list.
func recordNames(resp *restapi.Response) ([]string, error) {
	if resp.StatusCode() == http.StatusNoContent {
		return nil, restapi.ErrEmptyResponse
	}
	obj, err := resp.AsJSONObject()
	if err != nil {
		return nil, err
	}
	records, err := obj.GetJSONArray("records")
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, records.Len())
	for i := 0; i < records.Len(); i++ {
		rec, err := records.GetJSONObject(i)
		if err != nil {
			return nil, err
		}
		name, err := rec.GetString("Name")
		if err != nil {
			return nil, fmt.Errorf("records[%d]: %w", i, err)
		}
		names = append(names, name)
	}
	return names, nil
}

func (c *Controller) showError(err error) {
	c.toastSeq++
	c.toast = &Toast{ID: c.toastSeq, Text: fmt.Sprintf(ErrorTemplate, err), Err: err}
	c.rev++
}

// DismissToast hides the toast if id is still the current one.
func (c *Controller) DismissToast(id uint64) {
	if c.toast != nil && c.toast.ID == id {
		c.toast = nil
		c.rev++
	}
}

func (c *Controller) Visible() bool { return c.visible }

func (c *Controller) State() State {
	switch {
	case !c.visible:
		return Hidden
	case c.inFlight > 0:
		return Awaiting
	}
	return Idle
}

// InFlight counts submitted requests whose outcome has not been handled.
func (c *Controller) InFlight() int { return c.inFlight }

// Records returns a copy of the displayed record list.
func (c *Controller) Records() []string {
	out := make([]string, len(c.records))
	copy(out, c.records)
	return out
}

// Toast returns the current notification, if any.
func (c *Controller) Toast() (Toast, bool) {
	if c.toast == nil {
		return Toast{}, false
	}
	return *c.toast, true
}

// LastFetch is when the list was last replaced by a successful fetch.
func (c *Controller) LastFetch() time.Time { return c.lastFetch }

// Revision changes whenever anything the view shows changes.
func (c *Controller) Revision() uint64 { return c.rev }
