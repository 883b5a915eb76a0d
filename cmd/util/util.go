// Package util holds helpers shared by the folderdiff commands.
package util

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/lumipallolabs/folderdiff/internal/config"
	"github.com/lumipallolabs/folderdiff/internal/remote"
	"github.com/lumipallolabs/folderdiff/internal/stats"
)

// HandleFatalError prints err and exits
func HandleFatalError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

// RemoteFlags are the command line overrides of the remote config section
type RemoteFlags struct {
	URL             string
	User            string
	Password        string
	KeyFile         string
	Workers         int
	InsecureHostKey bool
}

// Register adds the remote flags to cmd
func (f *RemoteFlags) Register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.URL, "remote", "", "upload destination, e.g. ftp://host/dir, sftp://host/dir or file:///dir")
	flags.StringVar(&f.User, "user", "", "remote user name")
	flags.StringVar(&f.Password, "password", "", "remote password (or set "+config.PasswordEnv+")")
	flags.StringVar(&f.KeyFile, "key-file", "", "SSH private key for sftp")
	flags.IntVar(&f.Workers, "upload-workers", 0, "parallel remote connections")
	flags.BoolVar(&f.InsecureHostKey, "insecure-host-key", false, "skip known_hosts verification for sftp")
}

// Apply overlays the flags onto the config section
func (f RemoteFlags) Apply(cfg config.Remote) config.Remote {
	if f.URL != "" {
		cfg.URL = f.URL
	}
	if f.User != "" {
		cfg.User = f.User
	}
	if f.Password != "" {
		cfg.Password = f.Password
	}
	if f.KeyFile != "" {
		cfg.KeyFile = f.KeyFile
	}
	if f.Workers > 0 {
		cfg.Workers = f.Workers
	}
	if f.InsecureHostKey {
		cfg.InsecureHostKey = true
	}
	return cfg
}

// Endpoint returns the configured endpoint, or nil when no remote is set
func Endpoint(cfg config.Remote) (*remote.Endpoint, error) {
	if !cfg.Configured() {
		return nil, nil
	}
	ep, err := cfg.Endpoint()
	if err != nil {
		return nil, err
	}
	return &ep, nil
}

// Confirm prints question and reports whether the answer starts with y
func Confirm(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintln(out, question)
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(answer)), "y")
}

// LoadStats opens the stats file, starting fresh when it cannot be read
func LoadStats() *stats.Manager {
	m := stats.NewManager()
	if err := m.Load(); err != nil {
		log.WithError(err).Debug("Failed to load stats")
	}
	return m
}
