package joy

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"

	customlog "github.com/open-teleop/joynode/pkg/log"
	"github.com/open-teleop/joynode/pkg/rosmsg"
)

// Sample is one decoded joystick reading
type Sample struct {
	FrameId     string    `json:"frame_id,omitempty"`
	Axes        []float32 `json:"axes"`
	Buttons     []int32   `json:"buttons"`
	TimestampNs int64     `json:"timestamp_ns"`
	ReceivedAt  time.Time `json:"received_at"`
}

// Service handles decoded joy messages: it prints each sample to its writer,
// retains the latest sample for introspection and fans samples out to
// websocket stream subscribers.
type Service struct {
	logger customlog.Logger
	out    io.Writer

	mu      sync.RWMutex
	latest  *Sample
	count   uint64
	streams map[chan Sample]struct{}
}

// NewService creates a new joy service writing sample lines to out
func NewService(logger customlog.Logger, out io.Writer) *Service {
	return &Service{
		logger:  logger,
		out:     out,
		streams: make(map[chan Sample]struct{}),
	}
}

// HandleMessage processes one joy message. One line is written per axis and
// one per button, in that order, indexed from zero:
//
//	axis 0: 0.5
//	button 0: 1
func (s *Service) HandleMessage(msg *rosmsg.Joy, timestampNs int64) {
	for i, v := range msg.Axes {
		fmt.Fprintf(s.out, "axis %d: %v\n", i, v)
	}
	for i, v := range msg.Buttons {
		fmt.Fprintf(s.out, "button %d: %v\n", i, v)
	}

	sample := Sample{
		FrameId:     msg.Header.FrameId,
		Axes:        append([]float32(nil), msg.Axes...),
		Buttons:     append([]int32(nil), msg.Buttons...),
		TimestampNs: timestampNs,
		ReceivedAt:  time.Now(),
	}

	s.mu.Lock()
	s.latest = &sample
	s.count++
	for ch := range s.streams {
		select {
		case ch <- sample:
		default:
			// Slow stream consumer; skip rather than stall the callback
		}
	}
	s.mu.Unlock()
}

// LatestSample returns the most recently received sample
func (s *Service) LatestSample() (Sample, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.latest == nil {
		return Sample{}, false
	}
	return *s.latest, true
}

// Count returns the number of samples handled
func (s *Service) Count() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.count
}

// Subscribe registers a stream channel receiving every subsequent sample.
// The channel is owned by the service until Unsubscribe is called.
func (s *Service) Subscribe(buffer int) chan Sample {
	ch := make(chan Sample, buffer)
	s.mu.Lock()
	s.streams[ch] = struct{}{}
	s.mu.Unlock()
	return ch
}

// Unsubscribe removes and closes a stream channel
func (s *Service) Unsubscribe(ch chan Sample) {
	s.mu.Lock()
	if _, ok := s.streams[ch]; ok {
		delete(s.streams, ch)
		close(ch)
	}
	s.mu.Unlock()
}

// StateHandler serves the latest sample and counters as JSON
func (s *Service) StateHandler(c *fiber.Ctx) error {
	latest, ok := s.LatestSample()

	resp := fiber.Map{
		"count": s.Count(),
	}
	if ok {
		resp["latest"] = latest
	}
	return c.JSON(resp)
}
