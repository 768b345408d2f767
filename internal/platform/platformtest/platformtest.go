// Package platformtest provides a recording platform.Backend for tests.
package platformtest

import (
	"fmt"
	"sync"

	"github.com/stigoleg/stayactive/internal/geometry"
	"github.com/stigoleg/stayactive/internal/platform"
)

// Backend records every call. With Absolute set it tracks a pointer
// position; otherwise MovePointer calls are deltas.
type Backend struct {
	Absolute bool
	Screen   geometry.Size

	// MoveErr and KeyErr, when set, are returned by the matching calls.
	MoveErr error
	KeyErr  error

	mu        sync.Mutex
	pos       geometry.Point
	moves     []geometry.Point
	keys      []string
	positions int
	closes    int
}

var _ platform.Backend = (*Backend)(nil)

// NewAbsolute returns an absolute backend with the pointer at start.
func NewAbsolute(start geometry.Point, screen geometry.Size) *Backend {
	return &Backend{Absolute: true, Screen: screen, pos: start}
}

// NewRelative returns a relative backend.
func NewRelative() *Backend {
	return &Backend{}
}

func (b *Backend) Name() string {
	if b.Absolute {
		return "fake-absolute"
	}
	return "fake-relative"
}

func (b *Backend) SupportsAbsolutePositioning() bool { return b.Absolute }

func (b *Backend) Position() (geometry.Point, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.positions++
	if !b.Absolute {
		return geometry.Point{}, platform.ErrUnsupported
	}
	return b.pos, nil
}

func (b *Backend) ScreenSize() (geometry.Size, error) {
	if !b.Absolute || b.Screen.Width <= 0 || b.Screen.Height <= 0 {
		return geometry.Size{}, platform.ErrUnsupported
	}
	return b.Screen, nil
}

func (b *Backend) MovePointer(p geometry.Point) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.MoveErr != nil {
		return b.MoveErr
	}
	b.moves = append(b.moves, p)
	if b.Absolute {
		b.pos = p
	} else {
		b.pos = geometry.Point{X: b.pos.X + p.X, Y: b.pos.Y + p.Y}
	}
	return nil
}

func (b *Backend) PressModifierKey(name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.KeyErr != nil {
		return b.KeyErr
	}
	switch name {
	case platform.KeyShift, platform.KeyCtrl, platform.KeyAlt:
	default:
		return fmt.Errorf("%w: %q", platform.ErrUnknownKey, name)
	}
	b.keys = append(b.keys, name)
	return nil
}

func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closes++
	return nil
}

// Moves returns the MovePointer arguments in order.
func (b *Backend) Moves() []geometry.Point {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]geometry.Point(nil), b.moves...)
}

// Keys returns the pressed keys in order.
func (b *Backend) Keys() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.keys...)
}

// Pointer is the tracked position: absolute, or the running sum of deltas.
func (b *Backend) Pointer() geometry.Point {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pos
}

// PositionCalls counts Position invocations.
func (b *Backend) PositionCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.positions
}

// Closes counts Close invocations.
func (b *Backend) Closes() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closes
}
