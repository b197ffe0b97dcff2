package node

import (
	"context"
	"fmt"
	"testing"
	"time"

	customlog "github.com/open-teleop/joynode/pkg/log"
)

// nopLogger satisfies the log.Logger interface for tests
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

func TestSubscriptionFifoOrder(t *testing.T) {
	qos := QosProfile{Reliability: ReliabilityReliable, History: HistoryKeepLast, Depth: 10}
	sub := newSubscription("joy", qos, func(data []byte) {})

	for i := 0; i < 5; i++ {
		if !sub.enqueue([]byte{byte(i)}) {
			t.Fatalf("enqueue %d failed unexpectedly", i)
		}
	}

	for i := 0; i < 5; i++ {
		data, ok := sub.tryDequeue()
		if !ok {
			t.Fatalf("tryDequeue %d returned no message", i)
		}
		if data[0] != byte(i) {
			t.Errorf("Expected message %d, got %d", i, data[0])
		}
	}

	if _, ok := sub.tryDequeue(); ok {
		t.Errorf("Expected empty queue")
	}
}

func TestSubscriptionReliableDropsNewest(t *testing.T) {
	qos := QosProfile{Reliability: ReliabilityReliable, History: HistoryKeepLast, Depth: 2}
	sub := newSubscription("joy", qos, func(data []byte) {})

	sub.enqueue([]byte{0})
	sub.enqueue([]byte{1})
	if sub.enqueue([]byte{2}) {
		t.Fatalf("Expected enqueue to fail on full reliable queue")
	}

	data, _ := sub.tryDequeue()
	if data[0] != 0 {
		t.Errorf("Expected oldest message retained, got %d", data[0])
	}
	if sub.Dropped() != 1 {
		t.Errorf("Expected 1 dropped, got %d", sub.Dropped())
	}
}

func TestSubscriptionBestEffortDropsOldest(t *testing.T) {
	qos := QosProfile{Reliability: ReliabilityBestEffort, History: HistoryKeepLast, Depth: 2}
	sub := newSubscription("joy", qos, func(data []byte) {})

	sub.enqueue([]byte{0})
	sub.enqueue([]byte{1})
	if !sub.enqueue([]byte{2}) {
		t.Fatalf("Expected best-effort enqueue to succeed by evicting the oldest")
	}

	data, _ := sub.tryDequeue()
	if data[0] != 1 {
		t.Errorf("Expected message 1 after eviction, got %d", data[0])
	}
	data, _ = sub.tryDequeue()
	if data[0] != 2 {
		t.Errorf("Expected message 2, got %d", data[0])
	}
	if sub.Dropped() != 1 {
		t.Errorf("Expected 1 dropped, got %d", sub.Dropped())
	}
}

func TestNodeSpinDispatchesInOrder(t *testing.T) {
	n := newNode("listener", "", 64, nopLogger{})

	var got []byte
	done := make(chan struct{})
	_, err := n.CreateSubscription("joy", "sensor_msgs/msg/Joy", QosDefault(), func(data []byte) {
		got = append(got, data[0])
		if len(got) == 3 {
			close(done)
		}
	})
	if err != nil {
		t.Fatalf("CreateSubscription failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		n.Deliver("joy", []byte{byte(i)}, int64(i))
	}

	ctx, cancel := context.WithCancel(context.Background())
	spinErr := make(chan error, 1)
	go func() { spinErr <- n.Spin(ctx) }()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Timed out waiting for callbacks")
	}

	cancel()
	if err := <-spinErr; err != nil {
		t.Errorf("Spin returned error: %v", err)
	}

	for i, b := range got {
		if b != byte(i) {
			t.Errorf("Out of order dispatch at %d: got %d", i, b)
		}
	}

	stats := n.Registry().Stats()
	if info, ok := stats["joy"]; !ok || info.Received != 3 {
		t.Errorf("Expected 3 received in registry, got %+v", stats)
	}
}

func TestNodeSpinTwice(t *testing.T) {
	n := newNode("listener", "", 64, nopLogger{})

	ctx, cancel := context.WithCancel(context.Background())
	go n.Spin(ctx)

	// Give the first Spin a moment to take ownership
	time.Sleep(50 * time.Millisecond)
	if err := n.Spin(ctx); err != ErrAlreadySpinning {
		t.Errorf("Expected ErrAlreadySpinning, got %v", err)
	}
	cancel()
}

func TestNodeDeliverUnknownTopic(t *testing.T) {
	n := newNode("listener", "", 64, nopLogger{})

	// No subscriptions: delivery is a no-op, not a panic
	n.Deliver("imu", []byte{1, 2, 3}, 42)

	if len(n.Registry().Stats()) != 0 {
		t.Errorf("Expected empty registry for unsubscribed topic")
	}
}

func TestCreateSubscriptionValidation(t *testing.T) {
	n := newNode("listener", "", 64, nopLogger{})

	if _, err := n.CreateSubscription("", "sensor_msgs/msg/Joy", QosDefault(), func([]byte) {}); err != ErrEmptyTopic {
		t.Errorf("Expected ErrEmptyTopic, got %v", err)
	}
	if _, err := n.CreateSubscription("joy", "sensor_msgs/msg/Joy", QosDefault(), nil); err != ErrNilHandler {
		t.Errorf("Expected ErrNilHandler, got %v", err)
	}
}
