package input

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"sync"
	"syscall"
	"unsafe"

	customlog "github.com/open-teleop/joynode/pkg/log"
)

// Linux joystick ioctls (linux/joystick.h)
const (
	jsIoctlName    = 0x80006a13 + (128 << 16)
	jsIoctlAxes    = 0x80016a11
	jsIoctlButtons = 0x80016a12
)

// Event type bits in the kernel js event stream
const (
	eventButton uint8 = 0x01
	eventAxis   uint8 = 0x02
	eventInit   uint8 = 0x80
)

// axisScale maps the kernel's int16 axis range onto [-1, 1]
const axisScale = 32767.0

var ErrDeviceClosed = errors.New("joystick device closed")

// rawEvent mirrors the 8-byte struct js_event layout
type rawEvent struct {
	Timestamp uint32
	Value     int16
	Type      uint8
	Index     uint8
}

// State is a snapshot of every axis and button on the device
type State struct {
	Axes    []float32
	Buttons []int32
}

// Device is an open Linux joystick (/dev/input/jsN). Run pumps kernel events
// into the internal state; State returns a copy at any time.
type Device struct {
	file   *os.File
	path   string
	name   string
	logger customlog.Logger

	mu      sync.RWMutex
	axes    []float32
	buttons []int32
}

// OpenDevice opens a joystick device node and queries its capabilities
func OpenDevice(path string, logger customlog.Logger) (*Device, error) {
	f, err := os.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open joystick %s: %w", path, err)
	}

	d := &Device{
		file:   f,
		path:   path,
		logger: logger,
	}

	var nameBuf [128]byte
	if err := ioctl(f, jsIoctlName, unsafe.Pointer(&nameBuf[0])); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to read joystick name: %w", err)
	}
	d.name = trimNul(nameBuf[:])

	var axisCount, buttonCount uint8
	if err := ioctl(f, jsIoctlAxes, unsafe.Pointer(&axisCount)); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to read axis count: %w", err)
	}
	if err := ioctl(f, jsIoctlButtons, unsafe.Pointer(&buttonCount)); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to read button count: %w", err)
	}

	d.axes = make([]float32, axisCount)
	d.buttons = make([]int32, buttonCount)

	logger.Infof("Opened joystick '%s' at %s (%d axes, %d buttons)", d.name, path, axisCount, buttonCount)
	return d, nil
}

// Name returns the device name reported by the kernel
func (d *Device) Name() string {
	return d.name
}

// State returns a copy of the current axis and button values
func (d *Device) State() State {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return State{
		Axes:    append([]float32(nil), d.axes...),
		Buttons: append([]int32(nil), d.buttons...),
	}
}

// Run reads kernel events until the context is cancelled or the device goes
// away. Returns nil on cancellation, ErrDeviceClosed if the node vanished.
func (d *Device) Run(ctx context.Context) error {
	// Closing the file is the only way to interrupt a blocked read
	go func() {
		<-ctx.Done()
		d.file.Close()
	}()

	for {
		var e rawEvent
		if err := binary.Read(d.file, binary.LittleEndian, &e); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			d.logger.Warnf("Joystick %s read failed: %v", d.path, err)
			return ErrDeviceClosed
		}
		d.apply(e)
	}
}

// apply folds one kernel event into the state. Synthetic init events carry
// the initial value of each control and are treated like regular events.
func (d *Device) apply(e rawEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch e.Type &^ eventInit {
	case eventAxis:
		if int(e.Index) < len(d.axes) {
			d.axes[e.Index] = normalizeAxis(e.Value)
		}
	case eventButton:
		if int(e.Index) < len(d.buttons) {
			d.buttons[e.Index] = int32(e.Value)
		}
	}
}

// normalizeAxis maps a raw int16 axis reading onto [-1, 1]
func normalizeAxis(v int16) float32 {
	f := float32(v) / axisScale
	if f < -1 {
		f = -1
	}
	return f
}

func ioctl(f *os.File, request int, dest unsafe.Pointer) error {
	_, _, errno := syscall.Syscall(syscall.SYS_IOCTL,
		f.Fd(),
		uintptr(request),
		uintptr(dest),
	)
	if errno != 0 {
		return fmt.Errorf("ioctl 0x%x: %v", request, errno)
	}
	return nil
}

func trimNul(src []byte) string {
	n := 0
	for _, b := range src {
		if b != 0 {
			src[n] = b
			n++
		}
	}
	return string(src[:n])
}
