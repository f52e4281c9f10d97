package model

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config is the top-level application configuration.
type Config struct {
	// Server is the base URL monthly archives are fetched from, e.g.
	// "https://lists.example.org/pipermail". Lists may override it.
	Server string `mapstructure:"server" yaml:"server"`

	// Destination is the mail-client directory consolidated archives are
	// delivered to. It may contain ~, $VARS, and shell-style globs.
	Destination string `mapstructure:"destination" yaml:"destination"`

	// Years is the process-wide default set of years to mirror, used by
	// lists that do not set their own. When both are empty the current
	// year is mirrored.
	Years []int `mapstructure:"years" yaml:"years"`

	// Lists enumerates the mailing lists to mirror.
	Lists []List `mapstructure:"lists" yaml:"lists"`
}

// ServerFor returns the archive server base URL effective for a list.
func (c *Config) ServerFor(l List) string {
	if l.Server != "" {
		return l.Server
	}
	return c.Server
}

// YearsFor returns the set of years effective for a list, or nil when
// neither the list nor the process-wide default sets any.
func (c *Config) YearsFor(l List) []int {
	if len(l.Years) > 0 {
		return l.Years
	}
	return c.Years
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/listmirror/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "listmirror", "config.yaml")
}

// DefaultArchiveRoot returns the default directory monthly payloads and
// sync state are stored under.
func DefaultArchiveRoot() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "archives")
	}
	return filepath.Join(home, ".local", "share", "listmirror")
}

// LoadConfig reads configuration from the given YAML file path using
// Viper. A missing or unreadable file is an error: the tool has nothing
// useful to do without configured lists.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// validate rejects configurations the engine cannot act on.
func (c *Config) validate() error {
	if len(c.Lists) == 0 {
		return fmt.Errorf("no lists configured")
	}
	if strings.TrimSpace(c.Destination) == "" {
		return fmt.Errorf("destination directory not set")
	}

	seen := make(map[string]bool, len(c.Lists))
	for i, l := range c.Lists {
		if strings.TrimSpace(l.Name) == "" {
			return fmt.Errorf("list %d has no name", i)
		}
		if seen[l.Archive()] {
			return fmt.Errorf("list %q: duplicate archive name %q", l.Name, l.Archive())
		}
		seen[l.Archive()] = true

		if c.ServerFor(l) == "" {
			return fmt.Errorf("list %q: no server configured", l.Name)
		}
		for _, y := range c.YearsFor(l) {
			if y < 1 {
				return fmt.Errorf("list %q: invalid year %d", l.Name, y)
			}
		}
	}
	return nil
}
