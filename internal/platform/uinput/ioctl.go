//go:build linux

package uinput

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// uinput ioctl requests from linux/uinput.h.
const (
	uiDevCreate  = 0x5501     // _IO('U', 1)
	uiDevDestroy = 0x5502     // _IO('U', 2)
	uiDevSetup   = 0x405C5503 // _IOW('U', 3, struct uinput_setup)
	uiSetEvbit   = 0x40045564 // _IOW('U', 100, int)
	uiSetKeybit  = 0x40045565 // _IOW('U', 101, int)
	uiSetRelbit  = 0x40045566 // _IOW('U', 102, int)
)

// device is the kernel surface the backend drives. fileDevice is the real
// character device; tests substitute a recorder.
type device interface {
	ioctl(req uintptr, arg uintptr) error
	ioctlBuf(req uintptr, buf []byte) error
	write(b []byte) (int, error)
	close() error
}

type fileDevice struct {
	fd int
}

func openDevice(path string) (device, error) {
	fd, err := unix.Open(path, unix.O_WRONLY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, err
	}
	return &fileDevice{fd: fd}, nil
}

func (d *fileDevice) ioctl(req uintptr, arg uintptr) error {
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(d.fd), req, arg); errno != 0 {
		return errno
	}
	return nil
}

func (d *fileDevice) ioctlBuf(req uintptr, buf []byte) error {
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(d.fd), req, uintptr(unsafe.Pointer(&buf[0]))); errno != 0 {
		return errno
	}
	return nil
}

func (d *fileDevice) write(b []byte) (int, error) {
	return unix.Write(d.fd, b)
}

func (d *fileDevice) close() error {
	return unix.Close(d.fd)
}
