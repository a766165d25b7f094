package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Makepad-fr/forcelist/internal/restapi"
)

// Config holds application configuration.
type Config struct {
	API  APIConfig
	UI   UIConfig
	Log  LogConfig
	Stub StubConfig
}

type APIConfig struct {
	Version     string
	InstanceURL string `mapstructure:"instance_url"` // default offered by `auth login`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	Theme        string
	ApplyInsets  bool    `mapstructure:"apply_insets"`
	Insets       string  // "top,right,bottom,left" in cells
	ToastSeconds float64 `mapstructure:"toast_seconds"`
}

type LogConfig struct {
	File string
}

type StubConfig struct {
	Addr  string
	Token string
	Seed  string
}

// Insets is edge padding applied around the screen.
type Insets struct {
	Top, Right, Bottom, Left int
}

// EdgeInsets parses UI.Insets. When ApplyInsets is off the result is zero.
func (u UIConfig) EdgeInsets() (Insets, error) {
	if !u.ApplyInsets || strings.TrimSpace(u.Insets) == "" {
		return Insets{}, nil
	}
	parts := strings.Split(u.Insets, ",")
	if len(parts) != 4 {
		return Insets{}, fmt.Errorf("ui.insets: want top,right,bottom,left, got %q", u.Insets)
	}
	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 {
			return Insets{}, fmt.Errorf("ui.insets: bad value %q", p)
		}
		v[i] = n
	}
	return Insets{Top: v[0], Right: v[1], Bottom: v[2], Left: v[3]}, nil
}

func (u UIConfig) ToastDuration() time.Duration {
	if u.ToastSeconds <= 0 {
		return 3500 * time.Millisecond
	}
	return time.Duration(u.ToastSeconds * float64(time.Second))
}

func defaultPath() string {
	return filepath.Join(os.Getenv("HOME"), ".config", "forcelist", "config.toml")
}

// Load reads configuration from file and env. Env var overrides use prefix
// FORCELIST_. path wins over FORCELIST_CONFIG, which wins over the default.
func Load(path string) (Config, error) {
	v := viper.New()

	// default values
	v.SetDefault("api.version", restapi.DefaultAPIVersion)
	v.SetDefault("api.instance_url", "https://login.salesforce.com")
	v.SetDefault("ui.theme", "dark")
	v.SetDefault("ui.apply_insets", false)
	v.SetDefault("ui.insets", "1,2,1,2")
	v.SetDefault("ui.toast_seconds", 3.5)
	v.SetDefault("log.file", "")
	v.SetDefault("stub.addr", "127.0.0.1:8089")
	v.SetDefault("stub.token", "")
	v.SetDefault("stub.seed", "")

	v.SetConfigType("toml")

	if path == "" {
		path = os.Getenv("FORCELIST_CONFIG")
	}
	explicit := path != ""
	if explicit {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(filepath.Dir(defaultPath()))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("FORCELIST")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		// a missing default file is fine; a named file must exist
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || explicit {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if _, err := c.UI.EdgeInsets(); err != nil {
		return Config{}, err
	}
	return c, nil
}
