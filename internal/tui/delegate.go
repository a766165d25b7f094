package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Makepad-fr/forcelist/internal/ui"
)

// recordItem adapts one displayed name to bubbles/list.Item
type recordItem string

func (i recordItem) Title() string       { return string(i) }
func (i recordItem) Description() string { return "" }
func (i recordItem) FilterValue() string { return string(i) }

// single-line rows
type recordDelegate struct{}

func (d recordDelegate) Height() int                               { return 1 }
func (d recordDelegate) Spacing() int                              { return 0 }
func (d recordDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d recordDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, _ := item.(recordItem)
	th := ui.Current()
	prefix := "  "
	text := string(it)
	if index == m.Index() {
		prefix = th.Selected.Render("> ")
		text = th.Accent.Render(text)
	}
	fmt.Fprintf(w, "%s%s %s", prefix, th.Muted.Render(th.Bullet), text)
}

func toItems(names []string) []list.Item {
	out := make([]list.Item, 0, len(names))
	for _, n := range names {
		out = append(out, recordItem(n))
	}
	return out
}
