// Package session captures the display-server facts of the running desktop
// session once, at startup.
package session

import (
	"os"
	"strings"
)

// Type is the display server protocol of the session.
type Type string

const (
	TypeWayland Type = "wayland"
	TypeX11     Type = "x11"
	TypeUnknown Type = "unknown"
)

// Desktop is the desktop environment family.
type Desktop string

const (
	DesktopGNOME Desktop = "gnome"
	DesktopKDE   Desktop = "kde"
	DesktopOther Desktop = "other"
)

// Context holds environment-derived facts. It is never mutated after Detect.
type Context struct {
	Type           Type
	Desktop        Desktop
	Display        string
	WaylandDisplay string
	XAuthority     string
	Home           string
	UID            int
}

// Getenv matches the signature of os.Getenv.
type Getenv func(string) string

// Current detects the session from the process environment.
func Current() Context {
	return Detect(os.Getenv, os.Getuid())
}

// Detect builds a Context from getenv.
func Detect(getenv Getenv, uid int) Context {
	return Context{
		Type:           detectType(getenv),
		Desktop:        detectDesktop(getenv),
		Display:        getenv("DISPLAY"),
		WaylandDisplay: getenv("WAYLAND_DISPLAY"),
		XAuthority:     getenv("XAUTHORITY"),
		Home:           getenv("HOME"),
		UID:            uid,
	}
}

// IsWayland reports whether the session runs a native Wayland compositor.
func (c Context) IsWayland() bool {
	return c.Type == TypeWayland
}

// HasDisplay reports whether an X11 (or XWayland) display is advertised.
func (c Context) HasDisplay() bool {
	return c.Display != ""
}

func detectType(getenv Getenv) Type {
	switch strings.ToLower(getenv("XDG_SESSION_TYPE")) {
	case string(TypeWayland):
		return TypeWayland
	case string(TypeX11):
		return TypeX11
	}
	if getenv("DISPLAY") != "" {
		return TypeX11
	}
	return TypeUnknown
}

func detectDesktop(getenv Getenv) Desktop {
	xdgDesktop := strings.ToLower(getenv("XDG_CURRENT_DESKTOP"))
	desktopSession := strings.ToLower(getenv("DESKTOP_SESSION"))

	if containsAny(xdgDesktop, "kde", "plasma") || containsAny(desktopSession, "kde", "plasma") {
		return DesktopKDE
	}
	// Ubuntu, Unity and Pop ship Mutter-based shells.
	if containsAny(xdgDesktop, "gnome", "ubuntu", "unity", "pop") || containsAny(desktopSession, "gnome", "ubuntu") {
		return DesktopGNOME
	}
	return DesktopOther
}

func containsAny(s string, subs ...string) bool {
	if s == "" {
		return false
	}
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
