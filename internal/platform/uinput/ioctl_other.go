//go:build !linux

package uinput

import (
	"errors"
	"runtime"
)

const (
	uiDevCreate  = 0x5501
	uiDevDestroy = 0x5502
	uiDevSetup   = 0x405C5503
	uiSetEvbit   = 0x40045564
	uiSetKeybit  = 0x40045565
	uiSetRelbit  = 0x40045566
)

type device interface {
	ioctl(req uintptr, arg uintptr) error
	ioctlBuf(req uintptr, buf []byte) error
	write(b []byte) (int, error)
	close() error
}

func openDevice(string) (device, error) {
	return nil, errors.New("uinput is not available on " + runtime.GOOS)
}
