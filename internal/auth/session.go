package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Makepad-fr/forcelist/internal/restapi"
	"github.com/Makepad-fr/forcelist/internal/store/jsonstore"
)

const credFileName = "credentials.json"

const (
	EnvToken    = "FORCELIST_TOKEN"
	EnvInstance = "FORCELIST_INSTANCE_URL"
	EnvHome     = "FORCELIST_HOME"
)

var ErrNotLoggedIn = errors.New("not logged in")

type Session struct {
	AccessToken string    `json:"access_token"`
	InstanceURL string    `json:"instance_url"`
	Username    string    `json:"username,omitempty"`
	Source      string    `json:"source"`     // "env" | "file"
	CreatedAt   time.Time `json:"created_at"` // when we saved to file
}

// Client builds the authenticated transport handle for s.
func (s *Session) Client(opts ...restapi.Option) (*restapi.Client, error) {
	return restapi.New(s.InstanceURL, s.AccessToken, opts...)
}

// Dir is where credentials live: $FORCELIST_HOME or ~/.forcelist.
func Dir() (string, error) {
	if d := strings.TrimSpace(os.Getenv(EnvHome)); d != "" {
		return d, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home: %w", err)
	}
	return filepath.Join(home, ".forcelist"), nil
}

func credFilePath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, credFileName), nil
}

// Load returns the current session. The environment wins over the file.
func Load() (*Session, error) {
	// 1) env override
	tok := strings.TrimSpace(os.Getenv(EnvToken))
	if tok != "" {
		inst := strings.TrimSpace(os.Getenv(EnvInstance))
		if inst == "" {
			return nil, fmt.Errorf("%s is set but %s is empty", EnvToken, EnvInstance)
		}
		return &Session{AccessToken: stripBearer(tok), InstanceURL: inst, Source: "env"}, nil
	}

	// 2) file
	p, err := credFilePath()
	if err != nil {
		return nil, err
	}
	var s Session
	if err := jsonstore.Load(p, &s); err != nil {
		if errors.Is(err, jsonstore.ErrNotFound) {
			return nil, ErrNotLoggedIn
		}
		return nil, fmt.Errorf("credentials: %w", err)
	}
	s.AccessToken = stripBearer(s.AccessToken)
	s.Source = "file"
	if s.AccessToken == "" || s.InstanceURL == "" {
		return nil, ErrNotLoggedIn
	}
	return &s, nil
}

// Save stores s owner-only.
func Save(s Session) error {
	s.AccessToken = stripBearer(strings.TrimSpace(s.AccessToken))
	s.InstanceURL = strings.TrimRight(strings.TrimSpace(s.InstanceURL), "/")
	if s.AccessToken == "" {
		return errors.New("empty token")
	}
	if s.InstanceURL == "" {
		return errors.New("empty instance url")
	}
	s.Source = "file"
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	p, err := credFilePath()
	if err != nil {
		return err
	}
	if err := jsonstore.Save(p, s, 0o600); err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}
	return nil
}

func Delete() error {
	p, err := credFilePath()
	if err != nil {
		return err
	}
	return jsonstore.Delete(p)
}

// Revoker invalidates a token server-side.
type Revoker interface {
	Revoke(ctx context.Context) error
}

// Logout revokes the token (best effort) and forgets the stored session.
// A session from the environment is left alone; there is nothing to delete.
func Logout(ctx context.Context, s *Session, r Revoker) error {
	if r != nil {
		if err := r.Revoke(ctx); err != nil {
			log.Printf("auth: revoke failed: %v", err)
		}
	}
	if s != nil && s.Source == "env" {
		return nil
	}
	return Delete()
}

func stripBearer(s string) string {
	if strings.HasPrefix(strings.ToLower(s), "bearer ") {
		return strings.TrimSpace(s[7:])
	}
	return s
}
