package uinput

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"syscall"
	"time"

	"github.com/stigoleg/stayactive/internal/geometry"
	"github.com/stigoleg/stayactive/internal/platform"
)

// Defaults for Options.
const (
	DefaultPath   = "/dev/uinput"
	DefaultName   = "stayactive-virtual-input"
	DefaultSettle = 200 * time.Millisecond

	vendorID  = 0x1234
	productID = 0x5678
)

// Options configures the virtual device.
type Options struct {
	Path string
	Name string
	// Settle is how long to wait after creation for the compositor to pick
	// up the new device. Zero means DefaultSettle; negative disables it.
	Settle time.Duration
}

var keyCodes = map[string]uint16{
	platform.KeyShift: KeyLeftShift,
	platform.KeyCtrl:  KeyLeftCtrl,
	platform.KeyAlt:   KeyLeftAlt,
}

// Backend is a virtual relative pointer plus modifier keyboard.
type Backend struct {
	dev       device
	closeOnce sync.Once
}

var _ platform.Backend = (*Backend)(nil)

// Open creates the virtual device. Errors wrap platform.ErrBackendUnavailable.
func Open(opts Options) (*Backend, error) {
	if opts.Path == "" {
		opts.Path = DefaultPath
	}
	dev, err := openDevice(opts.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w%s", platform.ErrBackendUnavailable, opts.Path, err, accessHint(err))
	}
	return create(dev, opts, time.Sleep)
}

func create(dev device, opts Options, sleep func(time.Duration)) (*Backend, error) {
	if opts.Name == "" {
		opts.Name = DefaultName
	}
	if err := configure(dev, opts.Name); err != nil {
		_ = dev.close()
		return nil, fmt.Errorf("%w: create uinput device: %w", platform.ErrBackendUnavailable, err)
	}

	settle := opts.Settle
	if settle == 0 {
		settle = DefaultSettle
	}
	if settle > 0 {
		sleep(settle)
	}
	return &Backend{dev: dev}, nil
}

func configure(dev device, name string) error {
	for _, ev := range []uintptr{EvKey, EvRel} {
		if err := dev.ioctl(uiSetEvbit, ev); err != nil {
			return fmt.Errorf("UI_SET_EVBIT %d: %w", ev, err)
		}
	}
	for _, rel := range []uintptr{RelX, RelY} {
		if err := dev.ioctl(uiSetRelbit, rel); err != nil {
			return fmt.Errorf("UI_SET_RELBIT %d: %w", rel, err)
		}
	}
	for _, key := range []uintptr{KeyLeftShift, KeyLeftCtrl, KeyLeftAlt} {
		if err := dev.ioctl(uiSetKeybit, key); err != nil {
			return fmt.Errorf("UI_SET_KEYBIT %d: %w", key, err)
		}
	}

	setup := Setup{
		ID:   ID{BusType: BusUSB, Vendor: vendorID, Product: productID, Version: 1},
		Name: name,
	}
	if err := dev.ioctlBuf(uiDevSetup, EncodeSetup(setup)); err != nil {
		if !errors.Is(err, syscall.ENOTTY) && !errors.Is(err, syscall.EINVAL) {
			return fmt.Errorf("UI_DEV_SETUP: %w", err)
		}
		// Kernels before 4.5 take the device description as a write.
		if _, err := dev.write(EncodeUserDev(setup)); err != nil {
			return fmt.Errorf("write uinput_user_dev: %w", err)
		}
	}

	if err := dev.ioctl(uiDevCreate, 0); err != nil {
		return fmt.Errorf("UI_DEV_CREATE: %w", err)
	}
	return nil
}

func accessHint(err error) string {
	switch {
	case errors.Is(err, os.ErrNotExist):
		return " (is the uinput module loaded? try 'sudo modprobe uinput')"
	case errors.Is(err, os.ErrPermission):
		return " (add your user to the 'input' group or install a udev rule for /dev/uinput)"
	}
	return ""
}

func (b *Backend) Name() string { return "uinput" }

func (b *Backend) SupportsAbsolutePositioning() bool { return false }

func (b *Backend) Position() (geometry.Point, error) {
	return geometry.Point{}, fmt.Errorf("pointer position: %w", platform.ErrUnsupported)
}

func (b *Backend) ScreenSize() (geometry.Size, error) {
	return geometry.Size{}, fmt.Errorf("screen size: %w", platform.ErrUnsupported)
}

// MovePointer moves the pointer by the delta p.
func (b *Backend) MovePointer(p geometry.Point) error {
	var evs []Event
	if p.X != 0 {
		evs = append(evs, Event{Type: EvRel, Code: RelX, Value: int32(p.X)})
	}
	if p.Y != 0 {
		evs = append(evs, Event{Type: EvRel, Code: RelY, Value: int32(p.Y)})
	}
	evs = append(evs, Event{Type: EvSyn, Code: SynReport})
	return b.emit(evs...)
}

// PressModifierKey taps one of the modifier keys.
func (b *Backend) PressModifierKey(name string) error {
	code, ok := keyCodes[name]
	if !ok {
		return fmt.Errorf("%w: %q", platform.ErrUnknownKey, name)
	}
	return b.emit(
		Event{Type: EvKey, Code: code, Value: 1},
		Event{Type: EvSyn, Code: SynReport},
		Event{Type: EvKey, Code: code, Value: 0},
		Event{Type: EvSyn, Code: SynReport},
	)
}

func (b *Backend) emit(evs ...Event) error {
	for _, ev := range evs {
		ev.Time = time.Now()
		if _, err := b.dev.write(EncodeEvent(ev)); err != nil {
			return fmt.Errorf("write input event: %w", err)
		}
	}
	return nil
}

// Close destroys the virtual device. Errors are ignored since the process
// is on its way out.
func (b *Backend) Close() error {
	b.closeOnce.Do(func() {
		_ = b.dev.ioctl(uiDevDestroy, 0)
		_ = b.dev.close()
	})
	return nil
}
