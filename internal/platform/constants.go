package platform

import "strings"

// Logical modifier keys understood by every backend.
const (
	KeyShift = "shift"
	KeyCtrl  = "ctrl"
	KeyAlt   = "alt"
)

// ModifierKeys lists the keys the scheduler picks from.
var ModifierKeys = []string{KeyShift, KeyCtrl, KeyAlt}

// KeyLabel returns the display form of a key name, e.g. "Shift".
func KeyLabel(name string) string {
	if name == "" {
		return name
	}
	return strings.ToUpper(name[:1]) + name[1:]
}
