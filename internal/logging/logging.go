package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// debugEnvKey enables the debug log when set to any non-empty value.
const debugEnvKey = "FOLDERDIFF_DEBUG"

var (
	Debug   *logrus.Entry
	Scanner *logrus.Entry
	Remote  *logrus.Entry
	Enabled bool

	base = logrus.New()
)

func init() {
	Debug = base.WithField("component", "app")
	Scanner = base.WithField("component", "scanner")
	Remote = base.WithField("component", "remote")

	// Only enable logging if FOLDERDIFF_DEBUG environment variable is set
	if os.Getenv(debugEnvKey) == "" {
		base.SetOutput(io.Discard)
		Enabled = false
		return
	}

	Enabled = true
	base.SetLevel(logrus.DebugLevel)

	// Open debug.log once for all loggers
	debugFile, err := os.OpenFile("debug.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		// Fallback to stderr if we can't open the file
		base.SetOutput(os.Stderr)
		return
	}
	base.SetOutput(debugFile)
}

// SetVerbose sends Info and above to stderr when the debug log is off.
// The terminal UI owns the screen, so this is only used in plain mode.
func SetVerbose(verbose bool) {
	if !verbose || Enabled {
		return
	}
	base.SetOutput(os.Stderr)
	base.SetLevel(logrus.InfoLevel)
}

// Logger returns the shared logger, mostly for hooking in tests
func Logger() *logrus.Logger {
	return base
}
