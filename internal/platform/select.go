package platform

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/stigoleg/stayactive/internal/session"
)

// Selector chooses the backend once at startup.
type Selector struct {
	Session session.Context

	// OpenRelative constructs the uinput backend.
	OpenRelative func() (Backend, error)
	// OpenAbsolute constructs the X11 backend against an explicit display
	// and authority file.
	OpenAbsolute func(display, authority string) (Backend, error)
	// ResolveAuthority repairs a missing XAUTHORITY. Defaults to probing
	// the filesystem.
	ResolveAuthority func(session.Context) string

	Logger *log.Logger
}

// Select tries the relative backend first on a native Wayland session and
// falls back to the absolute backend. When both fail it returns a
// *NoBackendError.
func (s Selector) Select() (Backend, error) {
	var relErr error
	if s.Session.IsWayland() {
		b, err := s.openRelative()
		if err == nil {
			s.info("backend selected", "backend", b.Name(), "session", s.Session.Type)
			return b, nil
		}
		relErr = err
		s.debug("relative backend failed", "err", err)
	} else {
		relErr = fmt.Errorf("skipped: session type is %s, not wayland", s.Session.Type)
	}

	b, absErr := s.openAbsolute()
	if absErr == nil {
		s.info("backend selected", "backend", b.Name(), "session", s.Session.Type)
		return b, nil
	}
	s.debug("absolute backend failed", "err", absErr)

	return nil, &NoBackendError{Relative: relErr, Absolute: absErr}
}

func (s Selector) openRelative() (Backend, error) {
	if s.OpenRelative == nil {
		return nil, fmt.Errorf("relative backend not built in: %w", ErrBackendUnavailable)
	}
	b, err := s.OpenRelative()
	if err != nil {
		if !errors.Is(err, ErrBackendUnavailable) {
			err = fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
		}
		return nil, err
	}
	return b, nil
}

func (s Selector) openAbsolute() (Backend, error) {
	if s.OpenAbsolute == nil {
		return nil, fmt.Errorf("absolute backend not built in: %w", ErrBackendUnavailable)
	}
	resolve := s.ResolveAuthority
	if resolve == nil {
		resolve = func(c session.Context) string { return c.ResolveXAuthorityFS() }
	}
	authority := resolve(s.Session)
	if authority != s.Session.XAuthority {
		s.debug("using fallback X authority file", "path", authority)
	}

	b, err := s.OpenAbsolute(s.Session.Display, authority)
	if err != nil {
		if !errors.Is(err, ErrBackendUnavailable) {
			err = fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
		}
		return nil, err
	}
	return b, nil
}

func (s Selector) info(msg string, keyvals ...interface{}) {
	if s.Logger != nil {
		s.Logger.Info(msg, keyvals...)
	}
}

func (s Selector) debug(msg string, keyvals ...interface{}) {
	if s.Logger != nil {
		s.Logger.Debug(msg, keyvals...)
	}
}
