package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the full joynode configuration loaded from joynode.yaml
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Server  ServerConfig  `yaml:"server"`
	ZeroMQ  ZeroMQConfig  `yaml:"zeromq"`
	Node    NodeConfig    `yaml:"node"`
	Input   InputConfig   `yaml:"input"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogPath string `yaml:"log_path,omitempty"`
}

// ServerConfig holds the introspection HTTP server settings
type ServerConfig struct {
	Enabled  bool `yaml:"enabled"`
	HTTPPort int  `yaml:"http_port"`
}

// ZeroMQConfig holds ZeroMQ transport settings
type ZeroMQConfig struct {
	SubscribeAddress    string `yaml:"subscribe_address"`
	PublishBindAddress  string `yaml:"publish_bind_address,omitempty"`
	MessageBufferSize   int    `yaml:"message_buffer_size"`
	ReconnectIntervalMs int    `yaml:"reconnect_interval_ms"`
}

// SubscriptionConfig describes one topic subscription of the node
type SubscriptionConfig struct {
	Topic       string `yaml:"topic"`
	MessageType string `yaml:"message_type"`
	Profile     string `yaml:"qos,omitempty"`
	Depth       int    `yaml:"depth,omitempty"`
}

// NodeConfig holds the node identity and its subscriptions
type NodeConfig struct {
	Name          string               `yaml:"name"`
	Namespace     string               `yaml:"namespace,omitempty"`
	Subscriptions []SubscriptionConfig `yaml:"subscriptions"`
}

// InputConfig holds joystick device settings for the publisher binary.
// When Device is empty the publisher generates a synthetic pattern.
type InputConfig struct {
	Device string `yaml:"device,omitempty"`
	Topic  string `yaml:"topic,omitempty"`
	RateHz int    `yaml:"rate_hz,omitempty"`
}

// QoS profile names accepted in SubscriptionConfig.Profile
const (
	ProfileDefault    = "default"
	ProfileSensorData = "sensor_data"
)

// LoadConfig loads configuration from the specified file path,
// applies defaults and validates required fields.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file '%s': %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file '%s': %w", path, err)
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Server.Enabled && c.Server.HTTPPort == 0 {
		c.Server.HTTPPort = 8088
	}
	if c.ZeroMQ.MessageBufferSize == 0 {
		c.ZeroMQ.MessageBufferSize = 1000
	}
	if c.ZeroMQ.ReconnectIntervalMs == 0 {
		c.ZeroMQ.ReconnectIntervalMs = 1000
	}
	for i := range c.Node.Subscriptions {
		if c.Node.Subscriptions[i].Profile == "" {
			c.Node.Subscriptions[i].Profile = ProfileDefault
		}
	}
	if c.Input.Topic == "" {
		c.Input.Topic = "joy"
	}
	if c.Input.RateHz == 0 {
		c.Input.RateHz = 20
	}
}

func (c *Config) validate() error {
	if c.Node.Name == "" {
		return fmt.Errorf("missing required field in config: node.name")
	}
	if c.ZeroMQ.SubscribeAddress == "" {
		return fmt.Errorf("missing required field in config: zeromq.subscribe_address")
	}
	for _, sub := range c.Node.Subscriptions {
		if sub.Topic == "" {
			return fmt.Errorf("missing required field in config: node.subscriptions[].topic")
		}
		if sub.MessageType == "" {
			return fmt.Errorf("missing message_type for subscription '%s'", sub.Topic)
		}
		if sub.Profile != ProfileDefault && sub.Profile != ProfileSensorData {
			return fmt.Errorf("unknown qos profile '%s' for subscription '%s'", sub.Profile, sub.Topic)
		}
		if sub.Depth < 0 {
			return fmt.Errorf("negative queue depth for subscription '%s'", sub.Topic)
		}
	}
	return nil
}

// GetSubscription returns the subscription config for a topic
func (c *Config) GetSubscription(topic string) (SubscriptionConfig, bool) {
	for _, sub := range c.Node.Subscriptions {
		if sub.Topic == topic {
			return sub, true
		}
	}
	return SubscriptionConfig{}, false
}
