package node

import (
	"sync"

	customlog "github.com/open-teleop/joynode/pkg/log"
)

// TopicInfo holds metadata and counters for a subscribed topic
type TopicInfo struct {
	Topic        string
	MessageType  string
	Received     uint64
	Dropped      uint64
	LastReceived int64
}

// TopicRegistry maintains information about the topics a node subscribes to
type TopicRegistry struct {
	logger customlog.Logger
	topics map[string]*TopicInfo
	mu     sync.RWMutex
}

// NewTopicRegistry creates a new topic registry
func NewTopicRegistry(logger customlog.Logger) *TopicRegistry {
	return &TopicRegistry{
		logger: logger,
		topics: make(map[string]*TopicInfo),
	}
}

// Register adds a topic to the registry
func (r *TopicRegistry) Register(topic, messageType string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.topics[topic]; exists {
		return
	}
	r.topics[topic] = &TopicInfo{
		Topic:       topic,
		MessageType: messageType,
	}
	r.logger.Infof("Registered topic '%s' (type: %s)", topic, messageType)
}

// GetMessageType gets the message type for a topic
func (r *TopicRegistry) GetMessageType(topic string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	info, exists := r.topics[topic]
	if !exists {
		return "", false
	}
	return info.MessageType, true
}

// UpdateStats records a received (or dropped) message for a topic
func (r *TopicRegistry) UpdateStats(topic string, timestampNs int64, dropped bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	info, exists := r.topics[topic]
	if !exists {
		info = &TopicInfo{Topic: topic}
		r.topics[topic] = info
	}
	info.Received++
	if dropped {
		info.Dropped++
	}
	info.LastReceived = timestampNs
}

// AllTopics returns the names of all registered topics
func (r *TopicRegistry) AllTopics() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	topics := make([]string, 0, len(r.topics))
	for topic := range r.topics {
		topics = append(topics, topic)
	}
	return topics
}

// Stats returns a snapshot of per-topic statistics
func (r *TopicRegistry) Stats() map[string]TopicInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := make(map[string]TopicInfo, len(r.topics))
	for topic, info := range r.topics {
		stats[topic] = *info
	}
	return stats
}
