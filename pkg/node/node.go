package node

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	customlog "github.com/open-teleop/joynode/pkg/log"
)

// Common errors
var (
	ErrEmptyTopic      = errors.New("subscription topic cannot be empty")
	ErrNilHandler      = errors.New("subscription handler cannot be nil")
	ErrAlreadySpinning = errors.New("node is already spinning")
)

// Node is this process's participation handle in the topic graph. It owns the
// subscriptions created through it and dispatches their callbacks from Spin.
type Node struct {
	name      string
	namespace string
	logger    customlog.Logger
	registry  *TopicRegistry

	mu   sync.RWMutex
	subs map[string][]*Subscription

	// ready carries one token per queued message; Spin drains it.
	ready    chan *Subscription
	spinning atomic.Bool
}

func newNode(name, namespace string, readyCapacity int, logger customlog.Logger) *Node {
	if readyCapacity <= 0 {
		readyCapacity = 1024
	}
	return &Node{
		name:      name,
		namespace: namespace,
		logger:    logger,
		registry:  NewTopicRegistry(logger),
		subs:      make(map[string][]*Subscription),
		ready:     make(chan *Subscription, readyCapacity),
	}
}

// Name returns the node name
func (n *Node) Name() string {
	return n.name
}

// FullName returns the namespace-qualified node name
func (n *Node) FullName() string {
	if n.namespace == "" {
		return n.name
	}
	return n.namespace + "/" + n.name
}

// Registry returns the node's topic registry
func (n *Node) Registry() *TopicRegistry {
	return n.registry
}

// CreateSubscription registers a callback against a topic with the given QoS
// profile. Messages arriving on the topic are queued and dispatched from Spin.
func (n *Node) CreateSubscription(topic string, messageType string, qos QosProfile, handler MessageHandler) (*Subscription, error) {
	if topic == "" {
		return nil, ErrEmptyTopic
	}
	if handler == nil {
		return nil, ErrNilHandler
	}

	sub := newSubscription(topic, qos, handler)

	n.mu.Lock()
	n.subs[topic] = append(n.subs[topic], sub)
	n.mu.Unlock()

	n.registry.Register(topic, messageType)
	n.logger.Infof("Node '%s' subscribed to topic '%s' (depth: %d)", n.FullName(), topic, qos.queueDepth())

	return sub, nil
}

// SubscribedTopics returns the topics this node has subscriptions for
func (n *Node) SubscribedTopics() []string {
	n.mu.RLock()
	defer n.mu.RUnlock()

	topics := make([]string, 0, len(n.subs))
	for topic := range n.subs {
		topics = append(topics, topic)
	}
	return topics
}

// Deliver queues a received message for every subscription on the topic.
// Called by the transport layer; the callbacks run later, on the Spin thread.
func (n *Node) Deliver(topic string, data []byte, timestampNs int64) {
	n.mu.RLock()
	subs := n.subs[topic]
	n.mu.RUnlock()

	if len(subs) == 0 {
		return
	}

	for _, sub := range subs {
		enqueued := sub.enqueue(data)
		n.registry.UpdateStats(topic, timestampNs, !enqueued)
		if !enqueued {
			n.logger.Warnf("Subscription queue full for topic '%s', discarding message", topic)
			continue
		}
		select {
		case n.ready <- sub:
		default:
			// Token channel full. The message stays queued and is picked up
			// by a later token for the same subscription.
		}
	}
}

// Spin dispatches queued messages to their callbacks, one at a time, until
// the context is cancelled. All callbacks run on the calling goroutine.
func (n *Node) Spin(ctx context.Context) error {
	if !n.spinning.CompareAndSwap(false, true) {
		return ErrAlreadySpinning
	}

	n.logger.Infof("Node '%s' spinning", n.FullName())

	for {
		select {
		case <-ctx.Done():
			n.logger.Infof("Node '%s' stopped spinning", n.FullName())
			return nil
		case sub := <-n.ready:
			if data, ok := sub.tryDequeue(); ok {
				sub.handler(data)
			}
		}
	}
}
