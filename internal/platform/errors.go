package platform

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrBackendUnavailable means a backend could not be constructed.
	ErrBackendUnavailable = errors.New("input backend unavailable")

	// ErrConnection means the display server could not be reached or lacks
	// a required extension.
	ErrConnection = errors.New("display server connection failed")

	// ErrUnsupported means the backend cannot provide the capability,
	// e.g. an absolute position on a relative device.
	ErrUnsupported = errors.New("operation not supported by backend")

	// ErrUnknownKey means the key name is not in the backend's key table.
	ErrUnknownKey = errors.New("unknown key")

	// ErrNoBackend means every backend failed.
	ErrNoBackend = errors.New("no input backend available")
)

// NoBackendError carries the failure of each attempted backend together
// with the remediation for each.
type NoBackendError struct {
	Relative error
	Absolute error
}

func (e *NoBackendError) Error() string {
	var b strings.Builder
	b.WriteString(ErrNoBackend.Error())
	b.WriteString(".\n")
	if e.Relative != nil {
		fmt.Fprintf(&b, "\nuinput: %v", e.Relative)
	}
	if e.Absolute != nil {
		fmt.Fprintf(&b, "\nX11: %v", e.Absolute)
	}
	b.WriteString("\n\nTo fix:\n")
	b.WriteString("• Wayland: make /dev/uinput writable, e.g. add yourself to the 'input' group\n")
	b.WriteString("  (sudo usermod -aG input $USER) and log in again, or install a udev rule\n")
	b.WriteString("  KERNEL==\"uinput\", GROUP=\"input\", MODE=\"0660\"\n")
	b.WriteString("• X11/XWayland: make sure DISPLAY is set and XAUTHORITY points at a valid\n")
	b.WriteString("  cookie file, and that the X server (or XWayland) is running")
	return b.String()
}

func (e *NoBackendError) Unwrap() []error {
	errs := []error{ErrNoBackend}
	if e.Relative != nil {
		errs = append(errs, e.Relative)
	}
	if e.Absolute != nil {
		errs = append(errs, e.Absolute)
	}
	return errs
}
