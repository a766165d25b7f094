package auth

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Prompt reads login details interactively. When In is a terminal the
// token is read without echo.
type Prompt struct {
	In  io.Reader
	Out io.Writer

	r *bufio.Reader
}

func (p *Prompt) line(label, def string) (string, error) {
	if p.r == nil {
		p.r = bufio.NewReader(p.In)
	}
	if def != "" {
		fmt.Fprintf(p.Out, "%s [%s]: ", label, def)
	} else {
		fmt.Fprintf(p.Out, "%s: ", label)
	}
	s, err := p.r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && s != "") {
		return "", err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		s = def
	}
	return s, nil
}

func (p *Prompt) secret(label string) (string, error) {
	if f, ok := p.In.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprintf(p.Out, "%s: ", label)
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(p.Out)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(b)), nil
	}
	return p.line(label, "")
}

// Login asks for an instance URL and an access token and saves them.
func (p *Prompt) Login(defaultInstance string) (*Session, error) {
	inst, err := p.line("Instance URL", defaultInstance)
	if err != nil {
		return nil, fmt.Errorf("read instance url: %w", err)
	}
	tok, err := p.secret("Access token")
	if err != nil {
		return nil, fmt.Errorf("read token: %w", err)
	}
	if tok == "" {
		return nil, errors.New("empty token")
	}
	if err := Save(Session{AccessToken: tok, InstanceURL: inst}); err != nil {
		return nil, err
	}
	return Load()
}
