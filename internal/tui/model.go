package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/Makepad-fr/forcelist/internal/config"
	"github.com/Makepad-fr/forcelist/internal/screen"
	"github.com/Makepad-fr/forcelist/internal/ui"
)

// Options wire the screen to the session and transport.
type Options struct {
	APIVersion    string
	ToastDuration time.Duration
	Insets        config.Insets
	Instance      string // shown while connecting

	// Connect authenticates and returns the transport handle. It runs off
	// the UI loop.
	Connect func(ctx context.Context) (client screen.RestClient, user string, err error)
	// Logout ends the session server-side and locally.
	Logout func(ctx context.Context) error
}

// Result tells the caller why the screen closed.
type Result int

const (
	ResultQuit Result = iota
	ResultLogout
)

type (
	// uiTaskMsg carries work posted from another goroutine onto the loop.
	uiTaskMsg struct{ fn func() }

	sessionReadyMsg struct {
		client screen.RestClient
		user   string
	}
	sessionFailedMsg struct{ err error }
	toastExpiredMsg  struct{ id uint64 }
	loggedOutMsg     struct{ err error }
)

// logoutHook is the SessionManager the controller delegates to. Update
// turns a request into a command once the gesture handler returns.
type logoutHook struct{ requested bool }

func (h *logoutHook) Logout() { h.requested = true }

type model struct {
	opt  Options
	ctrl *screen.Controller
	hook *logoutHook
	keys keyMap

	list    list.Model
	spinner spinner.Model

	rev         uint64
	toastTimed  uint64 // last toast id a dismiss timer was started for
	status      string // errors raised by gesture handlers themselves
	user        string
	connectErr  error
	loggingOut  bool
	result      Result
	width       int
	height      int
	ctx         context.Context
	cancelCalls context.CancelFunc
}

func newModel(opt Options, thread screen.UIThread) model {
	if opt.ToastDuration <= 0 {
		opt.ToastDuration = 3500 * time.Millisecond
	}
	hook := &logoutHook{}
	ctrl := screen.New(thread, hook, opt.APIVersion)
	// screen shown
	ctrl.OnResume()

	keys := defaultKeys()
	th := ui.Current()

	l := list.New(nil, recordDelegate{}, 0, 0)
	l.Title = "Records"
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = th.Title
	l.Styles.HelpStyle = th.Muted
	l.Styles.PaginationStyle = th.Muted
	l.FilterInput.Prompt = "/ "
	l.SetStatusBarItemName("record", "records")
	l.AdditionalShortHelpKeys = keys.actions
	l.AdditionalFullHelpKeys = keys.actions

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = th.Pending

	ctx, cancel := context.WithCancel(context.Background())
	return model{
		opt:         opt,
		ctrl:        ctrl,
		hook:        hook,
		keys:        keys,
		list:        l,
		spinner:     sp,
		rev:         ctrl.Revision(),
		width:       80,
		height:      24,
		ctx:         ctx,
		cancelCalls: cancel,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.connect())
}

func (m model) connect() tea.Cmd {
	connect, ctx := m.opt.Connect, m.ctx
	return func() tea.Msg {
		if connect == nil {
			return sessionFailedMsg{err: fmt.Errorf("no session source")}
		}
		client, user, err := connect(ctx)
		if err != nil {
			return sessionFailedMsg{err: err}
		}
		return sessionReadyMsg{client: client, user: user}
	}
}

func (m model) logout() tea.Cmd {
	logout, ctx := m.opt.Logout, m.ctx
	return func() tea.Msg {
		if logout == nil {
			return loggedOutMsg{}
		}
		return loggedOutMsg{err: logout(ctx)}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m, cmd := m.update(msg)
	return m.sync(cmd)
}

func (m model) update(msg tea.Msg) (model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case uiTaskMsg:
		msg.fn()
		return m, nil

	case sessionReadyMsg:
		m.user = msg.user
		m.ctrl.OnSessionReady(msg.client)
		return m, nil

	case sessionFailedMsg:
		m.connectErr = msg.err
		return m, nil

	case toastExpiredMsg:
		m.ctrl.DismissToast(msg.id)
		return m, nil

	case loggedOutMsg:
		m.result = ResultLogout
		m.cancelCalls()
		if msg.err != nil {
			m.status = "logout: " + msg.err.Error()
		}
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) && m.list.FilterState() != list.Filtering {
		m.cancelCalls()
		return m, tea.Quit
	}
	// nothing but quit until the session is ready, or while leaving
	if !m.ctrl.Visible() || m.loggingOut {
		return m, nil
	}
	if m.list.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Contacts):
		m.status = errText(m.ctrl.OnFetchContacts())
		return m, nil
	case key.Matches(msg, m.keys.Accounts):
		m.status = errText(m.ctrl.OnFetchAccounts())
		return m, nil
	case key.Matches(msg, m.keys.Clear):
		m.status = ""
		m.ctrl.OnClear()
		return m, nil
	case key.Matches(msg, m.keys.Logout):
		m.ctrl.OnLogout()
		if m.hook.requested {
			m.hook.requested = false
			m.loggingOut = true
			return m, m.logout()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// sync copies controller state into the widgets and arms the toast timer.
func (m model) sync(cmd tea.Cmd) (tea.Model, tea.Cmd) {
	if rev := m.ctrl.Revision(); rev != m.rev {
		m.rev = rev
		setCmd := m.list.SetItems(toItems(m.ctrl.Records()))
		cmd = tea.Batch(cmd, setCmd)
	}
	if t, ok := m.ctrl.Toast(); ok && t.ID > m.toastTimed {
		m.toastTimed = t.ID
		id := t.ID
		cmd = tea.Batch(cmd, tea.Tick(m.opt.ToastDuration, func(time.Time) tea.Msg {
			return toastExpiredMsg{id: id}
		}))
	}
	return m, cmd
}

func errText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func (m model) View() string {
	th := ui.Current()
	in := m.opt.Insets
	innerW := m.width - in.Left - in.Right - 4
	innerH := m.height - in.Top - in.Bottom - 2

	var body string
	if !m.ctrl.Visible() {
		body = m.connectingView(th)
	} else {
		footer := m.footer(th)
		listH := innerH - lipgloss.Height(footer)
		if listH < 3 {
			listH = 3
		}
		m.list.SetSize(max(innerW, 10), listH)
		body = m.list.View() + "\n" + footer
	}

	frame := ui.Box(body)
	return lipgloss.NewStyle().
		Padding(in.Top, in.Right, in.Bottom, in.Left).
		Render(frame)
}

func (m model) connectingView(th ui.Theme) string {
	if m.connectErr != nil {
		return th.Error.Render(th.SymFail+" "+m.connectErr.Error()) + "\n" +
			th.Muted.Render("Run `forcelist auth login`, then try again. q quits.")
	}
	where := m.opt.Instance
	if where == "" {
		where = "org"
	}
	return m.spinner.View() + " Connecting to " + where + "…"
}

func (m model) footer(th ui.Theme) string {
	var parts []string
	n := len(m.ctrl.Records())
	count := humanize.Comma(int64(n)) + " records"
	if n == 1 {
		count = "1 record"
	}
	parts = append(parts, th.Accent.Render(count))
	if last := m.ctrl.LastFetch(); !last.IsZero() {
		parts = append(parts, th.Muted.Render("fetched "+humanize.Time(last)))
	}
	if m.user != "" {
		parts = append(parts, th.Muted.Render(m.user))
	}
	if m.ctrl.State() == screen.Awaiting {
		parts = append(parts, m.spinner.View()+th.Pending.Render(" loading"))
	}
	if m.loggingOut {
		parts = append(parts, th.Pending.Render("logging out…"))
	}
	lines := []string{strings.Join(parts, th.Muted.Render("  ·  "))}
	if m.status != "" {
		lines = append(lines, th.Error.Render(th.SymFail+" "+m.status))
	}
	if t, ok := m.ctrl.Toast(); ok {
		lines = append(lines, th.Toast.Render(t.Text))
	}
	return strings.Join(lines, "\n")
}
