package keepalive

import (
	"time"

	"github.com/stigoleg/stayactive/internal/platform"
)

// ActionKind identifies what the keeper did.
type ActionKind int

const (
	ActionMouse ActionKind = iota
	ActionKey
	ActionCenter
)

// Action is one completed (or failed) activity.
type Action struct {
	Time time.Time
	Kind ActionKind
	// Key is set for ActionKey.
	Key string
	Err error
}

func (a Action) String() string {
	switch a.Kind {
	case ActionKey:
		return "Key pressed (" + platform.KeyLabel(a.Key) + ")"
	case ActionCenter:
		return "Pointer centered"
	}
	return "Mouse moved"
}
