package zeromq

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/pebbe/zmq4"

	"github.com/open-teleop/joynode/pkg/config"
	customlog "github.com/open-teleop/joynode/pkg/log"
)

// Common errors
var (
	ErrServiceClosed   = errors.New("zeromq service is closed")
	ErrInvalidEnvelope = errors.New("invalid topic message envelope")
	ErrNoPublisher     = errors.New("publisher socket not started")
)

// DeliveryFunc receives each inbound message after the envelope is unwrapped
type DeliveryFunc func(topic string, payload []byte, timestampNs int64)

// Service coordinates ZeroMQ communications for a node process. It owns one
// SUB socket for inbound topic messages and, optionally, one PUB socket.
type Service struct {
	cfg    config.ZeroMQConfig
	ctx    *zmq4.Context
	logger customlog.Logger

	mu      sync.Mutex
	sub     *zmq4.Socket
	pub     *zmq4.Socket
	poller  *zmq4.Poller
	running bool
	wg      sync.WaitGroup
}

// NewService creates a new ZeroMQ service
func NewService(cfg config.ZeroMQConfig, logger customlog.Logger) (*Service, error) {
	ctx, err := zmq4.NewContext()
	if err != nil {
		return nil, fmt.Errorf("failed to create ZMQ context: %w", err)
	}

	return &Service{
		cfg:    cfg,
		ctx:    ctx,
		logger: logger,
	}, nil
}

// StartSubscriber connects the SUB socket, subscribes to the given topics and
// begins the receive loop, handing unwrapped messages to deliver.
func (s *Service) StartSubscriber(topics []string, deliver DeliveryFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sub != nil {
		return nil
	}

	socket, err := s.ctx.NewSocket(zmq4.SUB)
	if err != nil {
		return fmt.Errorf("failed to create SUB socket: %w", err)
	}

	if err := socket.SetLinger(0); err != nil {
		socket.Close()
		return fmt.Errorf("failed to set linger option: %w", err)
	}

	// Receive timeout keeps the loop from blocking indefinitely during shutdown
	const socketTimeout = 1 * time.Second
	if err := socket.SetRcvtimeo(socketTimeout); err != nil {
		socket.Close()
		return fmt.Errorf("failed to set receive timeout: %w", err)
	}

	if err := socket.Connect(s.cfg.SubscribeAddress); err != nil {
		socket.Close()
		return fmt.Errorf("failed to connect to %s: %w", s.cfg.SubscribeAddress, err)
	}

	for _, topic := range topics {
		if err := socket.SetSubscribe(topic); err != nil {
			socket.Close()
			return fmt.Errorf("failed to subscribe to '%s': %w", topic, err)
		}
	}

	poller := zmq4.NewPoller()
	poller.Add(socket, zmq4.POLLIN)

	s.sub = socket
	s.poller = poller
	s.running = true

	s.wg.Add(1)
	go s.receiveLoop(socket, poller, deliver)

	s.logger.Infof("Subscriber connected to %s (topics: %v)", s.cfg.SubscribeAddress, topics)
	return nil
}

// receiveLoop polls the SUB socket and dispatches inbound messages
func (s *Service) receiveLoop(socket *zmq4.Socket, poller *zmq4.Poller, deliver DeliveryFunc) {
	defer s.wg.Done()

	for s.isRunning() {
		sockets, err := poller.Poll(500 * time.Millisecond)
		if err != nil {
			if s.isRunning() {
				s.logger.Errorf("Error polling socket: %v", err)
			}
			continue
		}

		if len(sockets) == 0 {
			continue
		}

		frames, err := socket.RecvMessageBytes(0)
		if err != nil {
			if s.isRunning() {
				s.logger.Errorf("Error receiving message: %v", err)
			}
			continue
		}

		if len(frames) != 2 {
			s.logger.Warnf("Expected 2 frames (topic, envelope), got %d; dropping", len(frames))
			continue
		}

		topic := string(frames[0])
		env, err := ParseEnvelope(frames[1])
		if err != nil {
			s.logger.Warnf("Dropping message on topic '%s': %v", topic, err)
			continue
		}

		// The envelope's own topic wins over the transport frame; the frame is
		// only a subscription filter prefix.
		if envTopic := string(env.Topic()); envTopic != "" {
			topic = envTopic
		}

		payload := make([]byte, env.PayloadLength())
		copy(payload, env.PayloadBytes())

		deliver(topic, payload, env.TimestampNs())
	}
}

// StartPublisher binds the PUB socket
func (s *Service) StartPublisher() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pub != nil {
		return nil
	}
	if s.cfg.PublishBindAddress == "" {
		return fmt.Errorf("missing publish_bind_address in zeromq config")
	}

	socket, err := s.ctx.NewSocket(zmq4.PUB)
	if err != nil {
		return fmt.Errorf("failed to create PUB socket: %w", err)
	}

	if err := socket.Bind(s.cfg.PublishBindAddress); err != nil {
		socket.Close()
		return fmt.Errorf("failed to bind to %s: %w", s.cfg.PublishBindAddress, err)
	}

	if err := socket.SetLinger(0); err != nil {
		socket.Close()
		return fmt.Errorf("failed to set linger option: %w", err)
	}

	s.pub = socket
	s.logger.Infof("Publisher bound to %s", s.cfg.PublishBindAddress)
	return nil
}

// Publish sends an envelope with the given topic frame
func (s *Service) Publish(topic string, envelope []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.runningOrFresh() {
		return ErrServiceClosed
	}
	if s.pub == nil {
		return ErrNoPublisher
	}

	if _, err := s.pub.Send(topic, zmq4.SNDMORE); err != nil {
		return fmt.Errorf("failed to send topic frame: %w", err)
	}
	if _, err := s.pub.SendBytes(envelope, 0); err != nil {
		return fmt.Errorf("failed to send envelope: %w", err)
	}
	return nil
}

func (s *Service) isRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// runningOrFresh reports whether the service is usable: either the receive
// loop is running, or no subscriber was ever started (publisher-only use).
func (s *Service) runningOrFresh() bool {
	return s.running || s.sub == nil
}

// Stop halts the receive loop and releases all sockets
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.running && s.sub == nil && s.pub == nil {
		s.mu.Unlock()
		return
	}
	s.running = false
	if s.sub != nil {
		s.sub.Close()
		s.sub = nil
	}
	if s.pub != nil {
		s.pub.Close()
		s.pub = nil
	}
	s.mu.Unlock()

	s.wg.Wait()

	if s.ctx != nil {
		s.ctx.Term()
		s.ctx = nil
	}

	s.logger.Infof("ZeroMQ service stopped")
}
