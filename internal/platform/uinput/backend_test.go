package uinput

import (
	"errors"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stigoleg/stayactive/internal/geometry"
	"github.com/stigoleg/stayactive/internal/platform"
)

type ioctlCall struct {
	req uintptr
	arg uintptr
	buf []byte
}

type fakeDevice struct {
	calls    []ioctlCall
	writes   [][]byte
	closed   int
	setupErr error
	failReq  uintptr
	writeErr error
}

func (d *fakeDevice) ioctl(req, arg uintptr) error {
	d.calls = append(d.calls, ioctlCall{req: req, arg: arg})
	if d.failReq != 0 && req == d.failReq {
		return syscall.EPERM
	}
	return nil
}

func (d *fakeDevice) ioctlBuf(req uintptr, buf []byte) error {
	d.calls = append(d.calls, ioctlCall{req: req, buf: append([]byte(nil), buf...)})
	return d.setupErr
}

func (d *fakeDevice) write(b []byte) (int, error) {
	if d.writeErr != nil {
		return 0, d.writeErr
	}
	d.writes = append(d.writes, append([]byte(nil), b...))
	return len(b), nil
}

func (d *fakeDevice) close() error {
	d.closed++
	return nil
}

func (d *fakeDevice) events(t *testing.T) []Event {
	t.Helper()
	var evs []Event
	for _, w := range d.writes {
		ev, err := DecodeEvent(w)
		require.NoError(t, err)
		ev.Time = time.Time{}
		evs = append(evs, ev)
	}
	return evs
}

func newTestBackend(t *testing.T, dev *fakeDevice) *Backend {
	t.Helper()
	b, err := create(dev, Options{Settle: -1}, func(time.Duration) { t.Fatal("unexpected settle") })
	require.NoError(t, err)
	dev.writes = nil
	return b
}

func TestCreateSequence(t *testing.T) {
	dev := &fakeDevice{}
	var slept time.Duration
	_, err := create(dev, Options{}, func(d time.Duration) { slept = d })
	require.NoError(t, err)

	require.Len(t, dev.calls, 9)
	assert.Equal(t, ioctlCall{req: uiSetEvbit, arg: EvKey}, dev.calls[0])
	assert.Equal(t, ioctlCall{req: uiSetEvbit, arg: EvRel}, dev.calls[1])
	assert.Equal(t, ioctlCall{req: uiSetRelbit, arg: RelX}, dev.calls[2])
	assert.Equal(t, ioctlCall{req: uiSetRelbit, arg: RelY}, dev.calls[3])
	assert.Equal(t, ioctlCall{req: uiSetKeybit, arg: KeyLeftShift}, dev.calls[4])
	assert.Equal(t, ioctlCall{req: uiSetKeybit, arg: KeyLeftCtrl}, dev.calls[5])
	assert.Equal(t, ioctlCall{req: uiSetKeybit, arg: KeyLeftAlt}, dev.calls[6])

	setup := dev.calls[7]
	assert.Equal(t, uintptr(uiDevSetup), setup.req)
	assert.Equal(t, EncodeSetup(Setup{
		ID:   ID{BusType: BusUSB, Vendor: 0x1234, Product: 0x5678, Version: 1},
		Name: DefaultName,
	}), setup.buf)

	assert.Equal(t, ioctlCall{req: uiDevCreate}, dev.calls[8])
	assert.Empty(t, dev.writes)
	assert.Equal(t, DefaultSettle, slept)
}

func TestCreateLegacySetup(t *testing.T) {
	for _, errno := range []syscall.Errno{syscall.ENOTTY, syscall.EINVAL} {
		t.Run(errno.Error(), func(t *testing.T) {
			dev := &fakeDevice{setupErr: errno}
			_, err := create(dev, Options{Name: "old", Settle: -1}, nil)
			require.NoError(t, err)
			require.Len(t, dev.writes, 1)
			assert.Len(t, dev.writes[0], UserDevSize)
			assert.Equal(t, uintptr(uiDevCreate), dev.calls[len(dev.calls)-1].req)
		})
	}
}

func TestCreateFailureClosesDevice(t *testing.T) {
	tests := []struct {
		name string
		dev  *fakeDevice
	}{
		{"set evbit", &fakeDevice{failReq: uiSetEvbit}},
		{"dev create", &fakeDevice{failReq: uiDevCreate}},
		{"dev setup", &fakeDevice{setupErr: syscall.EFAULT}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := create(tt.dev, Options{Settle: -1}, nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, platform.ErrBackendUnavailable)
			assert.Equal(t, 1, tt.dev.closed)
		})
	}
}

func TestMovePointer(t *testing.T) {
	tests := []struct {
		name  string
		delta geometry.Point
		want  []Event
	}{
		{"both axes", geometry.Point{X: 5, Y: -3}, []Event{
			{Type: EvRel, Code: RelX, Value: 5},
			{Type: EvRel, Code: RelY, Value: -3},
			{Type: EvSyn, Code: SynReport},
		}},
		{"x only", geometry.Point{X: -1}, []Event{
			{Type: EvRel, Code: RelX, Value: -1},
			{Type: EvSyn, Code: SynReport},
		}},
		{"zero", geometry.Point{}, []Event{
			{Type: EvSyn, Code: SynReport},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := &fakeDevice{}
			b := newTestBackend(t, dev)
			require.NoError(t, b.MovePointer(tt.delta))
			assert.Equal(t, tt.want, dev.events(t))
		})
	}
}

func TestPressModifierKey(t *testing.T) {
	dev := &fakeDevice{}
	b := newTestBackend(t, dev)

	require.NoError(t, b.PressModifierKey(platform.KeyCtrl))
	assert.Equal(t, []Event{
		{Type: EvKey, Code: KeyLeftCtrl, Value: 1},
		{Type: EvSyn, Code: SynReport},
		{Type: EvKey, Code: KeyLeftCtrl, Value: 0},
		{Type: EvSyn, Code: SynReport},
	}, dev.events(t))

	dev.writes = nil
	err := b.PressModifierKey("meta")
	assert.ErrorIs(t, err, platform.ErrUnknownKey)
	assert.Empty(t, dev.writes)
}

func TestWriteErrorPropagates(t *testing.T) {
	dev := &fakeDevice{}
	b := newTestBackend(t, dev)
	dev.writeErr = errors.New("EAGAIN")
	assert.Error(t, b.MovePointer(geometry.Point{X: 1}))
}

func TestCapabilities(t *testing.T) {
	b := newTestBackend(t, &fakeDevice{})
	assert.False(t, b.SupportsAbsolutePositioning())
	_, err := b.Position()
	assert.ErrorIs(t, err, platform.ErrUnsupported)
	_, err = b.ScreenSize()
	assert.ErrorIs(t, err, platform.ErrUnsupported)
}

func TestCloseIdempotent(t *testing.T) {
	dev := &fakeDevice{}
	b := newTestBackend(t, dev)
	dev.calls = nil

	require.NoError(t, b.Close())
	require.NoError(t, b.Close())

	assert.Equal(t, []ioctlCall{{req: uiDevDestroy}}, dev.calls)
	assert.Equal(t, 1, dev.closed)
}

func TestAccessHint(t *testing.T) {
	assert.Contains(t, accessHint(syscall.ENOENT), "modprobe uinput")
	assert.Contains(t, accessHint(syscall.EACCES), "'input' group")
	assert.Empty(t, accessHint(syscall.EBUSY))
}
