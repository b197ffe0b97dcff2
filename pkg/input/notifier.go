package input

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unsafe"

	"golang.org/x/sys/unix"

	customlog "github.com/open-teleop/joynode/pkg/log"
)

const inputDir = "/dev/input"

// DeviceEvent reports a joystick node appearing or disappearing
type DeviceEvent struct {
	Path     string
	Attached bool
}

// Notifier watches /dev/input for joystick device nodes using inotify.
// Existing js nodes are reported as attached before live events begin.
type Notifier struct {
	logger customlog.Logger
}

func NewNotifier(logger customlog.Logger) *Notifier {
	return &Notifier{logger: logger}
}

// Watch sends device events until the context is cancelled
func (n *Notifier) Watch(ctx context.Context, events chan<- DeviceEvent) error {
	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", inputDir, err)
	}
	for _, entry := range entries {
		if isJoystickNode(entry.Name()) {
			events <- DeviceEvent{Path: filepath.Join(inputDir, entry.Name()), Attached: true}
		}
	}

	fd, err := unix.InotifyInit()
	if err != nil {
		return fmt.Errorf("inotify init failed: %w", err)
	}
	defer unix.Close(fd)

	wd, err := unix.InotifyAddWatch(fd, inputDir, unix.IN_CREATE|unix.IN_DELETE)
	if err != nil {
		return fmt.Errorf("inotify add watch failed: %w", err)
	}
	defer unix.InotifyRmWatch(fd, uint32(wd))

	// Unblock the read below on cancellation
	go func() {
		<-ctx.Done()
		unix.Close(fd)
	}()

	buf := make([]byte, 4096)
	for {
		nread, err := unix.Read(fd, buf)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("inotify read failed: %w", err)
		}

		var offset uint32
		for offset+unix.SizeofInotifyEvent <= uint32(nread) {
			event := (*unix.InotifyEvent)(unsafe.Pointer(&buf[offset]))
			nameBytes := buf[offset+unix.SizeofInotifyEvent : offset+unix.SizeofInotifyEvent+event.Len]
			name := trimNul(append([]byte(nil), nameBytes...))
			offset += unix.SizeofInotifyEvent + event.Len

			if !isJoystickNode(name) {
				continue
			}

			ev := DeviceEvent{
				Path:     filepath.Join(inputDir, name),
				Attached: event.Mask&unix.IN_CREATE != 0,
			}
			n.logger.Debugf("Joystick node %s attached=%v", ev.Path, ev.Attached)

			select {
			case events <- ev:
			case <-ctx.Done():
				return nil
			}
		}
	}
}

// isJoystickNode matches the legacy joystick nodes jsN, not evdev eventN
func isJoystickNode(name string) bool {
	if !strings.HasPrefix(name, "js") {
		return false
	}
	for _, r := range name[2:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(name) > 2
}
