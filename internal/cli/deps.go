package cli

import (
	"os"

	"github.com/charmbracelet/log"

	"github.com/stigoleg/stayactive/internal/config"
	"github.com/stigoleg/stayactive/internal/motion"
	"github.com/stigoleg/stayactive/internal/platform"
	"github.com/stigoleg/stayactive/internal/platform/uinput"
	"github.com/stigoleg/stayactive/internal/platform/xtest"
	"github.com/stigoleg/stayactive/internal/session"
	"github.com/stigoleg/stayactive/internal/topology"
)

// MutterHelperCommand is the hidden subcommand the GNOME monitor source
// re-executes.
const MutterHelperCommand = "mutter-monitors"

// Deps are the process-level collaborators of the commands.
type Deps struct {
	Session       func() session.Context
	SelectBackend func(session.Context, *config.Config, *log.Logger) (platform.Backend, error)
	NewResolver   func(session.Context, *config.Config, *log.Logger) *topology.Resolver
	// Sleep, when set, replaces real-time waits in motion and scheduling.
	Sleep motion.Sleeper
}

// DefaultDeps talks to the real desktop.
func DefaultDeps() Deps {
	return Deps{
		Session:       session.Current,
		SelectBackend: selectBackend,
		NewResolver:   newResolver,
	}
}

func (d Deps) withDefaults() Deps {
	def := DefaultDeps()
	if d.Session == nil {
		d.Session = def.Session
	}
	if d.SelectBackend == nil {
		d.SelectBackend = def.SelectBackend
	}
	if d.NewResolver == nil {
		d.NewResolver = def.NewResolver
	}
	return d
}

func selectBackend(sess session.Context, cfg *config.Config, logger *log.Logger) (platform.Backend, error) {
	s := platform.Selector{
		Session: sess,
		OpenRelative: func() (platform.Backend, error) {
			b, err := uinput.Open(uinput.Options{Path: cfg.UinputPath})
			if err != nil {
				return nil, err
			}
			return b, nil
		},
		OpenAbsolute: func(display, authority string) (platform.Backend, error) {
			b, err := xtest.Open(xtest.Options{Display: display, XAuthority: authority})
			if err != nil {
				return nil, err
			}
			return b, nil
		},
		Logger: logger,
	}
	return s.Select()
}

func newResolver(sess session.Context, cfg *config.Config, logger *log.Logger) *topology.Resolver {
	runner := topology.ExecRunner{
		Timeout: cfg.MonitorTimeout,
		Env:     sess.XEnv(os.Environ()),
	}
	var helper []string
	if exe, err := os.Executable(); err == nil {
		helper = []string{exe, MutterHelperCommand}
	}
	return topology.NewResolver(sess, runner, helper, cfg.MonitorTimeout, logger)
}
