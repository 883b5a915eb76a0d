// Package config reads the user's folderdiff settings.
package config

import (
	"fmt"
	"os"

	"github.com/ghodss/yaml"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"

	"github.com/lumipallolabs/folderdiff/internal/remote"
)

const (
	// DefaultPath is where the config is read from unless overridden
	DefaultPath = "~/.folderdiff.yaml"

	// PasswordEnv overrides the remote password from the file
	PasswordEnv = "FOLDERDIFF_PASSWORD"
)

// fs is swapped for an in-memory filesystem in tests
var fs = afero.NewOsFs()

// homedirExpand will be overridden in tests
var homedirExpand = homedir.Expand

// Config is the contents of the config file
type Config struct {
	Scan   Scan   `json:"scan"`
	Remote Remote `json:"remote"`
}

// Scan holds defaults for scans
type Scan struct {
	Workers       int    `json:"workers,omitempty"`
	Compare       string `json:"compare,omitempty"`
	OneFileSystem bool   `json:"oneFileSystem,omitempty"`
}

// Remote holds where differences are uploaded
type Remote struct {
	URL             string `json:"url,omitempty"`
	User            string `json:"user,omitempty"`
	Password        string `json:"password,omitempty"`
	KeyFile         string `json:"keyFile,omitempty"`
	Workers         int    `json:"workers,omitempty"`
	InsecureHostKey bool   `json:"insecureHostKey,omitempty"`
}

// Default returns the settings used when no file exists
func Default() Config {
	return Config{
		Scan: Scan{
			Compare: "name-size",
		},
		Remote: Remote{
			Workers: 1,
		},
	}
}

// Load reads the config at path. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return Config{}, err
	}

	if pw := os.Getenv(PasswordEnv); pw != "" {
		cfg.Remote.Password = pw
	}
	return cfg, nil
}

// Read reads the config at path without environment overrides, so the
// result can be written back.
func Read(path string) (Config, error) {
	if path == "" {
		path = DefaultPath
	}
	expanded, err := homedirExpand(path)
	if err != nil {
		return Config{}, fmt.Errorf("expand config path: %w", err)
	}

	cfg := Default()
	data, err := afero.ReadFile(fs, expanded)
	switch {
	case os.IsNotExist(err):
		// defaults
	case err != nil:
		return Config{}, fmt.Errorf("read %s: %w", expanded, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", expanded, err)
		}
	}

	if cfg.Remote.Workers < 1 {
		cfg.Remote.Workers = 1
	}
	if cfg.Scan.Compare == "" {
		cfg.Scan.Compare = "name-size"
	}
	return cfg, nil
}

// Write saves cfg to path
func Write(path string, cfg Config) error {
	if path == "" {
		path = DefaultPath
	}
	expanded, err := homedirExpand(path)
	if err != nil {
		return fmt.Errorf("expand config path: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := afero.WriteFile(fs, expanded, data, 0600); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// Configured reports whether a remote URL is set
func (r Remote) Configured() bool {
	return r.URL != ""
}

// Endpoint parses URL and applies the separately configured credentials
func (r Remote) Endpoint() (remote.Endpoint, error) {
	ep, err := remote.ParseEndpoint(r.URL)
	if err != nil {
		return remote.Endpoint{}, err
	}
	if r.User != "" {
		ep.User = r.User
	}
	if r.Password != "" {
		ep.Password = r.Password
	}
	ep.KeyFile = r.KeyFile
	ep.InsecureHostKey = r.InsecureHostKey
	return ep, nil
}
