package node

import (
	"fmt"
	"sync"

	"github.com/open-teleop/joynode/pkg/config"
	customlog "github.com/open-teleop/joynode/pkg/log"
	"github.com/open-teleop/joynode/pkg/zeromq"
)

// Context is the process-wide runtime handle. It owns the transport service
// and the nodes created through it. Build one per process and tear it down
// once at exit.
type Context struct {
	cfg     *config.Config
	logger  customlog.Logger
	service *zeromq.Service

	mu      sync.Mutex
	nodes   []*Node
	started bool

	shutdownOnce sync.Once
}

// Init creates the runtime context and its transport service
func Init(cfg *config.Config, logger customlog.Logger) (*Context, error) {
	service, err := zeromq.NewService(cfg.ZeroMQ, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create transport service: %w", err)
	}

	return &Context{
		cfg:     cfg,
		logger:  logger,
		service: service,
	}, nil
}

// Service returns the underlying transport service
func (c *Context) Service() *zeromq.Service {
	return c.service
}

// CreateNode creates a node registered with this runtime
func (c *Context) CreateNode(name, namespace string) (*Node, error) {
	if name == "" {
		return nil, fmt.Errorf("node name cannot be empty")
	}

	n := newNode(name, namespace, c.cfg.ZeroMQ.MessageBufferSize, c.logger)

	c.mu.Lock()
	c.nodes = append(c.nodes, n)
	c.mu.Unlock()

	c.logger.Infof("Created node '%s'", n.FullName())
	return n, nil
}

// Start connects the transport and begins delivering inbound messages to the
// nodes' subscriptions. Call after all subscriptions are created.
func (c *Context) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.started {
		return nil
	}

	topicSet := make(map[string]struct{})
	for _, n := range c.nodes {
		for _, topic := range n.SubscribedTopics() {
			topicSet[topic] = struct{}{}
		}
	}
	topics := make([]string, 0, len(topicSet))
	for topic := range topicSet {
		topics = append(topics, topic)
	}

	if err := c.service.StartSubscriber(topics, c.dispatch); err != nil {
		return err
	}

	c.started = true
	return nil
}

// dispatch fans an inbound message out to every node in the runtime
func (c *Context) dispatch(topic string, payload []byte, timestampNs int64) {
	c.mu.Lock()
	nodes := c.nodes
	c.mu.Unlock()

	for _, n := range nodes {
		n.Deliver(topic, payload, timestampNs)
	}
}

// Shutdown tears down the transport. Safe to call more than once.
func (c *Context) Shutdown() {
	c.shutdownOnce.Do(func() {
		c.logger.Infof("Shutting down runtime context")
		c.service.Stop()
	})
}
