// Package uinput implements the relative input backend: a synthetic
// mouse/keyboard created through the kernel's uinput interface.
package uinput

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"time"
)

// Event types and codes from linux/input-event-codes.h.
const (
	EvSyn = 0x00
	EvKey = 0x01
	EvRel = 0x02

	SynReport = 0x00

	RelX = 0x00
	RelY = 0x01

	KeyLeftCtrl  = 29
	KeyLeftShift = 42
	KeyLeftAlt   = 56

	BusUSB = 0x03
)

// Record sizes.
const (
	// timeWordSize is the width of the kernel's long, used by the timeval
	// in struct input_event: 8 on 64-bit targets, 4 on 32-bit ones.
	timeWordSize = strconv.IntSize / 8

	// EventSize is sizeof(struct input_event): timeval{sec, usec long},
	// type uint16, code uint16, value int32. 24 on 64-bit, 16 on 32-bit.
	EventSize = 2*timeWordSize + 8

	// SetupSize is sizeof(struct uinput_setup): input_id{4 x uint16},
	// name [80]byte, ff_effects_max uint32.
	SetupSize = 92

	// UserDevSize is sizeof(struct uinput_user_dev), the pre-4.5 setup
	// record: name, input_id, ff_effects_max, then four [64]int32 arrays.
	UserDevSize = 1116

	// NameSize is UINPUT_MAX_NAME_SIZE.
	NameSize = 80

)

// Event is one struct input_event.
type Event struct {
	Time  time.Time
	Type  uint16
	Code  uint16
	Value int32
}

// ID is struct input_id.
type ID struct {
	BusType uint16
	Vendor  uint16
	Product uint16
	Version uint16
}

// Setup is struct uinput_setup.
type Setup struct {
	ID           ID
	Name         string
	FFEffectsMax uint32
}

// EncodeEvent lays ev out in native byte order.
func EncodeEvent(ev Event) []byte {
	return encodeEvent(ev, timeWordSize)
}

// DecodeEvent is the inverse of EncodeEvent.
func DecodeEvent(b []byte) (Event, error) {
	return decodeEvent(b, timeWordSize)
}

func encodeEvent(ev Event, word int) []byte {
	buf := make([]byte, 2*word+8)
	var sec, usec int64
	if !ev.Time.IsZero() {
		sec = ev.Time.Unix()
		usec = int64(ev.Time.Nanosecond() / 1000)
	}
	putLong(buf[0:word], sec)
	putLong(buf[word:2*word], usec)
	rest := buf[2*word:]
	binary.NativeEndian.PutUint16(rest[0:2], ev.Type)
	binary.NativeEndian.PutUint16(rest[2:4], ev.Code)
	binary.NativeEndian.PutUint32(rest[4:8], uint32(ev.Value))
	return buf
}

func decodeEvent(b []byte, word int) (Event, error) {
	size := 2*word + 8
	if len(b) < size {
		return Event{}, fmt.Errorf("input event record too short: %d bytes, want %d", len(b), size)
	}
	sec := getLong(b[0:word])
	usec := getLong(b[word : 2*word])
	rest := b[2*word:]
	return Event{
		Time:  time.Unix(sec, usec*1000),
		Type:  binary.NativeEndian.Uint16(rest[0:2]),
		Code:  binary.NativeEndian.Uint16(rest[2:4]),
		Value: int32(binary.NativeEndian.Uint32(rest[4:8])),
	}, nil
}

// putLong writes v as a kernel long of len(b) bytes.
func putLong(b []byte, v int64) {
	if len(b) == 4 {
		binary.NativeEndian.PutUint32(b, uint32(int32(v)))
		return
	}
	binary.NativeEndian.PutUint64(b, uint64(v))
}

func getLong(b []byte) int64 {
	if len(b) == 4 {
		return int64(int32(binary.NativeEndian.Uint32(b)))
	}
	return int64(binary.NativeEndian.Uint64(b))
}

// EncodeSetup lays s out as struct uinput_setup. Names longer than the
// kernel limit are truncated, keeping the terminating NUL.
func EncodeSetup(s Setup) []byte {
	buf := make([]byte, SetupSize)
	putID(buf[0:8], s.ID)
	putName(buf[8:8+NameSize], s.Name)
	binary.NativeEndian.PutUint32(buf[88:92], s.FFEffectsMax)
	return buf
}

// EncodeUserDev lays s out as the legacy struct uinput_user_dev with all
// absolute axis ranges zeroed.
func EncodeUserDev(s Setup) []byte {
	buf := make([]byte, UserDevSize)
	putName(buf[0:NameSize], s.Name)
	putID(buf[80:88], s.ID)
	binary.NativeEndian.PutUint32(buf[88:92], s.FFEffectsMax)
	// absmax, absmin, absfuzz, absflat stay zero.
	return buf
}

func putID(b []byte, id ID) {
	binary.NativeEndian.PutUint16(b[0:2], id.BusType)
	binary.NativeEndian.PutUint16(b[2:4], id.Vendor)
	binary.NativeEndian.PutUint16(b[4:6], id.Product)
	binary.NativeEndian.PutUint16(b[6:8], id.Version)
}

func putName(b []byte, name string) {
	n := copy(b[:len(b)-1], name)
	clear(b[n:])
}
