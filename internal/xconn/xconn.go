// Package xconn dials the X server with an explicitly resolved display and
// authority file.
//
// xgb reads the cookie file only from the XAUTHORITY environment variable.
// Dial therefore sets it for the duration of the handshake, under a
// package mutex, and restores the previous value afterwards. This is the one
// place the process environment is written.
//
// xgb logs connection problems to stderr through a package-level logger.
// It is silenced on init and can be routed into the application logger with
// SetLogger, so a failed dial never writes over the dashboard.
package xconn

import (
	"errors"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"sync"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgbutil"
	"github.com/charmbracelet/log"
)

func init() {
	SetLogger(nil)
}

// SetLogger routes xgb's internal messages to l at debug level. A nil
// logger discards them.
func SetLogger(l *log.Logger) {
	if l == nil {
		xgb.Logger = stdlog.New(io.Discard, "", 0)
		return
	}
	xgb.Logger = l.StandardLog(log.StandardLogOptions{ForceLevel: log.DebugLevel})
}

// ErrNoDisplay is returned when no display name is known.
var ErrNoDisplay = errors.New("no X display configured (DISPLAY is empty)")

// Options selects the X server to talk to.
type Options struct {
	Display   string
	Authority string
}

// dialMu serializes handshakes: xgb only reads the cookie location from
// XAUTHORITY, so the resolved path is applied for the duration of the
// handshake and the previous value restored afterwards.
var dialMu sync.Mutex

// Dial opens a connection to the X server described by opts.
func Dial(opts Options) (*xgbutil.XUtil, error) {
	if opts.Display == "" {
		return nil, ErrNoDisplay
	}

	dialMu.Lock()
	defer dialMu.Unlock()

	if opts.Authority != "" {
		restore := overrideEnv("XAUTHORITY", opts.Authority)
		defer restore()
	}

	xu, err := xgbutil.NewConnDisplay(opts.Display)
	if err != nil {
		return nil, fmt.Errorf("connect to X display %q: %w", opts.Display, err)
	}
	return xu, nil
}

func overrideEnv(key, value string) func() {
	prev, had := os.LookupEnv(key)
	if prev == value {
		return func() {}
	}
	os.Setenv(key, value)
	return func() {
		if had {
			os.Setenv(key, prev)
		} else {
			os.Unsetenv(key)
		}
	}
}
