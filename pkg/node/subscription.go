package node

import (
	"sync"
	"sync/atomic"
)

// MessageHandler is a callback function for received messages. The data is the
// serialized message payload; the handler owns the slice.
type MessageHandler func(data []byte)

// Subscription binds a topic to a callback through a QoS-governed queue.
type Subscription struct {
	topic   string
	qos     QosProfile
	handler MessageHandler
	queue   chan []byte
	mu      sync.Mutex

	received uint64
	dropped  uint64
}

func newSubscription(topic string, qos QosProfile, handler MessageHandler) *Subscription {
	return &Subscription{
		topic:   topic,
		qos:     qos,
		handler: handler,
		queue:   make(chan []byte, qos.queueDepth()),
	}
}

// Topic returns the topic this subscription is bound to
func (s *Subscription) Topic() string {
	return s.topic
}

// Qos returns the subscription's QoS profile
func (s *Subscription) Qos() QosProfile {
	return s.qos
}

// enqueue adds a message to the subscription queue, applying the QoS policy
// when the queue is full. Returns false if the message was dropped.
func (s *Subscription) enqueue(data []byte) bool {
	atomic.AddUint64(&s.received, 1)

	select {
	case s.queue <- data:
		return true
	default:
	}

	if s.qos.Reliability == ReliabilityBestEffort {
		// Drop the oldest message to make room. The lock keeps concurrent
		// enqueues from both draining and leaving the queue full.
		s.mu.Lock()
		defer s.mu.Unlock()
		select {
		case <-s.queue:
		default:
		}
		select {
		case s.queue <- data:
			atomic.AddUint64(&s.dropped, 1)
			return true
		default:
		}
	}

	atomic.AddUint64(&s.dropped, 1)
	return false
}

// tryDequeue removes the next queued message without blocking
func (s *Subscription) tryDequeue() ([]byte, bool) {
	select {
	case data := <-s.queue:
		return data, true
	default:
		return nil, false
	}
}

// Received returns the number of messages delivered to this subscription
func (s *Subscription) Received() uint64 {
	return atomic.LoadUint64(&s.received)
}

// Dropped returns the number of messages discarded by the QoS policy
func (s *Subscription) Dropped() uint64 {
	return atomic.LoadUint64(&s.dropped)
}
