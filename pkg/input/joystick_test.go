package input

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestNormalizeAxis(t *testing.T) {
	cases := []struct {
		raw  int16
		want float32
	}{
		{0, 0},
		{32767, 1},
		{-32768, -1},
	}
	for _, tc := range cases {
		if got := normalizeAxis(tc.raw); got != tc.want {
			t.Errorf("normalizeAxis(%d) = %v, want %v", tc.raw, got, tc.want)
		}
	}

	if got := normalizeAxis(16384); got <= 0.49 || got >= 0.51 {
		t.Errorf("normalizeAxis(16384) = %v, expected ~0.5", got)
	}
}

func TestRawEventLayout(t *testing.T) {
	// struct js_event is exactly 8 bytes on the wire
	raw := []byte{
		0x78, 0x56, 0x34, 0x12, // timestamp
		0xff, 0x7f, // value 32767
		0x02, // axis
		0x03, // index
	}

	var e rawEvent
	if err := binary.Read(bytes.NewReader(raw), binary.LittleEndian, &e); err != nil {
		t.Fatalf("binary.Read failed: %v", err)
	}

	if e.Timestamp != 0x12345678 || e.Value != 32767 || e.Type != eventAxis || e.Index != 3 {
		t.Errorf("Unexpected event decode: %+v", e)
	}
}

func TestApplyEvents(t *testing.T) {
	d := &Device{
		axes:    make([]float32, 2),
		buttons: make([]int32, 2),
	}

	d.apply(rawEvent{Type: eventAxis, Index: 0, Value: 32767})
	d.apply(rawEvent{Type: eventAxis | eventInit, Index: 1, Value: -32768})
	d.apply(rawEvent{Type: eventButton, Index: 1, Value: 1})

	// Out-of-range indices are ignored
	d.apply(rawEvent{Type: eventAxis, Index: 5, Value: 1})
	d.apply(rawEvent{Type: eventButton, Index: 9, Value: 1})

	state := d.State()
	if state.Axes[0] != 1 || state.Axes[1] != -1 {
		t.Errorf("Unexpected axes: %v", state.Axes)
	}
	if state.Buttons[0] != 0 || state.Buttons[1] != 1 {
		t.Errorf("Unexpected buttons: %v", state.Buttons)
	}
}

func TestIsJoystickNode(t *testing.T) {
	valid := []string{"js0", "js1", "js12"}
	invalid := []string{"js", "event0", "mouse0", "jsx", "js0a"}

	for _, name := range valid {
		if !isJoystickNode(name) {
			t.Errorf("Expected %q to be a joystick node", name)
		}
	}
	for _, name := range invalid {
		if isJoystickNode(name) {
			t.Errorf("Expected %q to be rejected", name)
		}
	}
}
