package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("FORCELIST_CONFIG", "")

	c, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "v62.0", c.API.Version)
	require.Equal(t, "dark", c.UI.Theme)
	require.False(t, c.UI.ApplyInsets)
	require.Equal(t, 3500*time.Millisecond, c.UI.ToastDuration())

	in, err := c.UI.EdgeInsets()
	require.NoError(t, err)
	require.Equal(t, Insets{}, in)
}

func TestLoadFileAndEnv(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[api]
version = "v58.0"

[ui]
theme = "light"
apply_insets = true
insets = "2,4,2,4"
toast_seconds = 1.5
`), 0o644))
	t.Setenv("FORCELIST_UI_THEME", "dark")

	c, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "v58.0", c.API.Version)
	require.Equal(t, "dark", c.UI.Theme)
	require.Equal(t, 1500*time.Millisecond, c.UI.ToastDuration())

	in, err := c.UI.EdgeInsets()
	require.NoError(t, err)
	require.Equal(t, Insets{Top: 2, Right: 4, Bottom: 2, Left: 4}, in)
}

func TestLoadRejectsBadInsets(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[ui]\napply_insets = true\ninsets = \"1,2\"\n"), 0o644))
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
}
