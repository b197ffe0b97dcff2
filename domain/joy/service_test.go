package joy

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	customlog "github.com/open-teleop/joynode/pkg/log"
	"github.com/open-teleop/joynode/pkg/rosmsg"
)

type nopLogger struct{}

func (nopLogger) Debugf(format string, args ...interface{}) {}
func (nopLogger) Infof(format string, args ...interface{})  {}
func (nopLogger) Warnf(format string, args ...interface{})  {}
func (nopLogger) Errorf(format string, args ...interface{}) {}
func (nopLogger) Fatalf(format string, args ...interface{}) {
	panic(fmt.Sprintf(format, args...))
}
func (l nopLogger) WithFields(fields map[string]interface{}) customlog.Logger {
	return l
}

func TestHandleMessageOutput(t *testing.T) {
	var out bytes.Buffer
	svc := NewService(nopLogger{}, &out)

	svc.HandleMessage(&rosmsg.Joy{
		Axes:    []float32{0.5, -1.0},
		Buttons: []int32{1, 0},
	}, 0)

	want := "axis 0: 0.5\n" +
		"axis 1: -1\n" +
		"button 0: 1\n" +
		"button 1: 0\n"
	if out.String() != want {
		t.Errorf("Output mismatch:\ngot:\n%swant:\n%s", out.String(), want)
	}
}

func TestHandleMessageLineCount(t *testing.T) {
	cases := []struct {
		name    string
		axes    int
		buttons int
	}{
		{"empty", 0, 0},
		{"axes only", 3, 0},
		{"buttons only", 0, 4},
		{"both", 6, 11},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer
			svc := NewService(nopLogger{}, &out)

			msg := &rosmsg.Joy{
				Axes:    make([]float32, tc.axes),
				Buttons: make([]int32, tc.buttons),
			}
			svc.HandleMessage(msg, 0)

			lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
			if out.Len() == 0 {
				lines = nil
			}
			if len(lines) != tc.axes+tc.buttons {
				t.Fatalf("Expected %d lines, got %d:\n%s", tc.axes+tc.buttons, len(lines), out.String())
			}

			for i := 0; i < tc.axes; i++ {
				if !strings.HasPrefix(lines[i], fmt.Sprintf("axis %d: ", i)) {
					t.Errorf("Line %d: expected axis %d, got %q", i, i, lines[i])
				}
			}
			for i := 0; i < tc.buttons; i++ {
				line := lines[tc.axes+i]
				if !strings.HasPrefix(line, fmt.Sprintf("button %d: ", i)) {
					t.Errorf("Line %d: expected button %d, got %q", tc.axes+i, i, line)
				}
			}
		})
	}
}

func TestHandleMessageValuesUnmodified(t *testing.T) {
	var out bytes.Buffer
	svc := NewService(nopLogger{}, &out)

	svc.HandleMessage(&rosmsg.Joy{
		Axes:    []float32{-0.25, 0, 1},
		Buttons: []int32{0, 1, 1},
	}, 0)

	want := "axis 0: -0.25\naxis 1: 0\naxis 2: 1\nbutton 0: 0\nbutton 1: 1\nbutton 2: 1\n"
	if out.String() != want {
		t.Errorf("Values altered in output:\ngot:\n%swant:\n%s", out.String(), want)
	}
}

func TestLatestSample(t *testing.T) {
	var out bytes.Buffer
	svc := NewService(nopLogger{}, &out)

	if _, ok := svc.LatestSample(); ok {
		t.Fatalf("Expected no sample before first message")
	}

	msg := &rosmsg.Joy{
		Header:  rosmsg.Header{FrameId: "js0"},
		Axes:    []float32{0.5},
		Buttons: []int32{1},
	}
	svc.HandleMessage(msg, 42)

	sample, ok := svc.LatestSample()
	if !ok {
		t.Fatalf("Expected a sample after first message")
	}
	if sample.FrameId != "js0" || sample.TimestampNs != 42 {
		t.Errorf("Unexpected sample metadata: %+v", sample)
	}
	if len(sample.Axes) != 1 || sample.Axes[0] != 0.5 {
		t.Errorf("Unexpected sample axes: %v", sample.Axes)
	}
	if svc.Count() != 1 {
		t.Errorf("Expected count 1, got %d", svc.Count())
	}

	// The retained sample must not alias the message slices
	msg.Axes[0] = -1
	sample, _ = svc.LatestSample()
	if sample.Axes[0] != 0.5 {
		t.Errorf("Sample aliases caller slice")
	}
}

func TestSubscribeStream(t *testing.T) {
	var out bytes.Buffer
	svc := NewService(nopLogger{}, &out)

	ch := svc.Subscribe(4)
	defer svc.Unsubscribe(ch)

	svc.HandleMessage(&rosmsg.Joy{Axes: []float32{1}}, 7)

	select {
	case sample := <-ch:
		if sample.TimestampNs != 7 {
			t.Errorf("Expected timestamp 7, got %d", sample.TimestampNs)
		}
	default:
		t.Fatalf("Expected a sample on the stream channel")
	}
}

func TestSubscribeStreamFullDoesNotBlock(t *testing.T) {
	var out bytes.Buffer
	svc := NewService(nopLogger{}, &out)

	ch := svc.Subscribe(1)
	defer svc.Unsubscribe(ch)

	svc.HandleMessage(&rosmsg.Joy{}, 1)
	svc.HandleMessage(&rosmsg.Joy{}, 2)

	sample := <-ch
	if sample.TimestampNs != 1 {
		t.Errorf("Expected first sample retained, got %d", sample.TimestampNs)
	}
	if svc.Count() != 2 {
		t.Errorf("Expected both messages handled, got %d", svc.Count())
	}
}
