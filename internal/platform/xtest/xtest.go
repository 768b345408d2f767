// Package xtest implements the absolute input backend on top of the X11
// core protocol and the XTEST extension. It works on X11 sessions and, via
// XWayland, on Wayland sessions that expose a DISPLAY.
package xtest

import (
	"errors"
	"fmt"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgb/xtest"
	"github.com/BurntSushi/xgbutil"

	"github.com/stigoleg/stayactive/internal/geometry"
	"github.com/stigoleg/stayactive/internal/platform"
	"github.com/stigoleg/stayactive/internal/xconn"
)

// Options selects the X server.
type Options struct {
	Display    string
	XAuthority string
}

var keyCodes = map[string]byte{
	platform.KeyShift: 50,
	platform.KeyCtrl:  37,
	platform.KeyAlt:   64,
}

// binding holds the X calls the backend needs, resolved once at Open.
type binding struct {
	queryPointer func() (geometry.Point, error)
	warpPointer  func(geometry.Point) error
	fakeKey      func(keycode byte) error
	screenSize   func() geometry.Size
	close        func()
}

// Backend moves the pointer to absolute desktop coordinates.
type Backend struct {
	x         binding
	closeOnce sync.Once
}

var _ platform.Backend = (*Backend)(nil)

// Open connects to the display. Errors wrap platform.ErrConnection.
func Open(opts Options) (*Backend, error) {
	xu, err := xconn.Dial(xconn.Options{Display: opts.Display, Authority: opts.XAuthority})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", platform.ErrConnection, err)
	}
	if err := xtest.Init(xu.Conn()); err != nil {
		xu.Conn().Close()
		return nil, fmt.Errorf("%w: XTEST extension unavailable: %w", platform.ErrConnection, err)
	}
	return &Backend{x: bind(xu)}, nil
}

func bind(xu *xgbutil.XUtil) binding {
	conn := xu.Conn()
	root := xu.RootWin()
	screen := xu.Screen()

	return binding{
		queryPointer: func() (geometry.Point, error) {
			reply, err := xproto.QueryPointer(conn, root).Reply()
			if err != nil {
				return geometry.Point{}, err
			}
			return geometry.Point{X: int(reply.RootX), Y: int(reply.RootY)}, nil
		},
		warpPointer: func(p geometry.Point) error {
			return xproto.WarpPointerChecked(conn, xproto.WindowNone, root,
				0, 0, 0, 0, clampInt16(p.X), clampInt16(p.Y)).Check()
		},
		fakeKey: func(keycode byte) error {
			for _, typ := range []byte{xproto.KeyPress, xproto.KeyRelease} {
				if err := xtest.FakeInputChecked(conn, typ, keycode,
					xproto.TimeCurrentTime, root, 0, 0, 0).Check(); err != nil {
					return err
				}
			}
			conn.Sync()
			return nil
		},
		screenSize: func() geometry.Size {
			return geometry.Size{Width: int(screen.WidthInPixels), Height: int(screen.HeightInPixels)}
		},
		close: conn.Close,
	}
}

func clampInt16(v int) int16 {
	switch {
	case v > 32767:
		return 32767
	case v < -32768:
		return -32768
	}
	return int16(v)
}

func (b *Backend) Name() string { return "xtest" }

func (b *Backend) SupportsAbsolutePositioning() bool { return true }

func (b *Backend) Position() (geometry.Point, error) {
	p, err := b.x.queryPointer()
	if err != nil {
		return geometry.Point{}, fmt.Errorf("%w: query pointer: %w", platform.ErrConnection, err)
	}
	return p, nil
}

func (b *Backend) ScreenSize() (geometry.Size, error) {
	s := b.x.screenSize()
	if s.Width <= 0 || s.Height <= 0 {
		return geometry.Size{}, errors.New("root screen reports no size")
	}
	return s, nil
}

// MovePointer warps the pointer to p in root window coordinates.
func (b *Backend) MovePointer(p geometry.Point) error {
	if err := b.x.warpPointer(p); err != nil {
		return fmt.Errorf("%w: warp pointer to %s: %w", platform.ErrConnection, p, err)
	}
	return nil
}

// PressModifierKey sends a synthetic press and release of the key.
func (b *Backend) PressModifierKey(name string) error {
	code, ok := keyCodes[name]
	if !ok {
		return fmt.Errorf("%w: %q", platform.ErrUnknownKey, name)
	}
	if err := b.x.fakeKey(code); err != nil {
		return fmt.Errorf("%w: fake key %s: %w", platform.ErrConnection, name, err)
	}
	return nil
}

func (b *Backend) Close() error {
	b.closeOnce.Do(b.x.close)
	return nil
}
