// Package platform defines the input backend abstraction shared by the X11
// (absolute) and uinput (relative) implementations, and the policy that
// picks one of them at startup.
package platform

import "github.com/stigoleg/stayactive/internal/geometry"

// Backend synthesizes pointer motion and key presses.
//
// The two implementations address the pointer differently. When
// SupportsAbsolutePositioning is true, MovePointer takes a desktop
// coordinate and Position/ScreenSize work. Otherwise MovePointer takes a
// delta from the current (unknown) position and Position/ScreenSize return
// ErrUnsupported. Callers check the capability once and pick a code path.
type Backend interface {
	Name() string
	SupportsAbsolutePositioning() bool
	Position() (geometry.Point, error)
	ScreenSize() (geometry.Size, error)
	MovePointer(p geometry.Point) error
	PressModifierKey(name string) error
	// Close releases the backend. It is safe to call more than once.
	Close() error
}
