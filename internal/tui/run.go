package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// programThread posts work onto the running program's event loop.
type programThread struct {
	p *tea.Program
}

func (t *programThread) Post(fn func()) {
	t.p.Send(uiTaskMsg{fn: fn})
}

// Run shows the record screen until the user quits or logs out.
func Run(opt Options) (Result, error) {
	thread := &programThread{}
	m := newModel(opt, thread)
	p := tea.NewProgram(m, tea.WithAltScreen())
	thread.p = p

	final, err := p.Run()
	if err != nil {
		return ResultQuit, err
	}
	fm, ok := final.(model)
	if !ok {
		return ResultQuit, nil
	}
	if fm.connectErr != nil {
		return ResultQuit, fm.connectErr
	}
	return fm.result, nil
}
