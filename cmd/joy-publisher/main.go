package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/open-teleop/joynode/pkg/config"
	"github.com/open-teleop/joynode/pkg/flatbuffers/joynode/message"
	"github.com/open-teleop/joynode/pkg/input"
	customlog "github.com/open-teleop/joynode/pkg/log"
	"github.com/open-teleop/joynode/pkg/rosmsg"
	"github.com/open-teleop/joynode/pkg/zeromq"
)

// sampleSource produces one joystick snapshot per publish tick
type sampleSource interface {
	Sample() (input.State, string)
}

func main() {
	configPath := flag.String("config", "config/joynode.yaml", "Path to the configuration file")
	synthetic := flag.Bool("synthetic", false, "Publish a generated test pattern instead of reading a device")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := customlog.NewLogrusLogger(cfg.Logging.Level, cfg.Logging.LogPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg, logger, *synthetic); err != nil {
		logger.Errorf("joy-publisher failed: %v", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger customlog.Logger, synthetic bool) error {
	service, err := zeromq.NewService(cfg.ZeroMQ, logger)
	if err != nil {
		return err
	}
	defer service.Stop()

	if err := service.StartPublisher(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var source sampleSource
	if synthetic || cfg.Input.Device == "" {
		logger.Infof("Publishing synthetic joy pattern on topic '%s'", cfg.Input.Topic)
		source = &syntheticSource{start: time.Now()}
	} else {
		ds := &deviceSource{logger: logger, want: cfg.Input.Device}
		go ds.watch(ctx)
		source = ds
	}

	interval := time.Second / time.Duration(cfg.Input.RateHz)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Infof("Publishing joy samples at %d Hz", cfg.Input.RateHz)
	for {
		select {
		case <-ctx.Done():
			logger.Infof("Shutdown signal received")
			return nil
		case <-ticker.C:
			state, frameId := source.Sample()
			if state.Axes == nil && state.Buttons == nil {
				continue
			}
			if err := publishSample(service, cfg.Input.Topic, state, frameId); err != nil {
				if err == zeromq.ErrServiceClosed {
					return nil
				}
				logger.Warnf("Failed to publish joy sample: %v", err)
			}
		}
	}
}

func publishSample(service *zeromq.Service, topic string, state input.State, frameId string) error {
	now := time.Now()
	msg := rosmsg.Joy{
		Header: rosmsg.Header{
			Stamp: rosmsg.Time{
				Sec:     int32(now.Unix()),
				Nanosec: uint32(now.Nanosecond()),
			},
			FrameId: frameId,
		},
		Axes:    state.Axes,
		Buttons: state.Buttons,
	}

	payload, err := msg.SerializeCDR()
	if err != nil {
		return err
	}

	envelope := zeromq.BuildEnvelope(topic, message.ContentTypeROS2_CDR, now.UnixNano(), payload)
	return service.Publish(topic, envelope)
}

// deviceSource reads a physical joystick and survives replug. The watch loop
// tracks /dev/input and reopens the configured node whenever it appears.
type deviceSource struct {
	logger customlog.Logger
	want   string

	mu  sync.RWMutex
	dev *input.Device
}

func (s *deviceSource) Sample() (input.State, string) {
	s.mu.RLock()
	dev := s.dev
	s.mu.RUnlock()

	if dev == nil {
		return input.State{}, ""
	}
	return dev.State(), filepath.Base(s.want)
}

func (s *deviceSource) watch(ctx context.Context) {
	events := make(chan input.DeviceEvent, 8)
	notifier := input.NewNotifier(s.logger)

	go func() {
		if err := notifier.Watch(ctx, events); err != nil {
			s.logger.Errorf("Device watcher stopped: %v", err)
		}
		close(events)
	}()

	for ev := range events {
		if ev.Path != s.want {
			continue
		}
		if ev.Attached {
			s.attach(ctx, ev.Path)
		} else {
			s.logger.Warnf("Joystick %s detached", ev.Path)
		}
	}
}

func (s *deviceSource) attach(ctx context.Context, path string) {
	dev, err := input.OpenDevice(path, s.logger)
	if err != nil {
		s.logger.Errorf("Failed to open joystick %s: %v", path, err)
		return
	}

	s.mu.Lock()
	s.dev = dev
	s.mu.Unlock()

	go func() {
		if err := dev.Run(ctx); err != nil {
			s.logger.Warnf("Joystick %s reader stopped: %v", path, err)
		}
		s.mu.Lock()
		if s.dev == dev {
			s.dev = nil
		}
		s.mu.Unlock()
	}()
}

// syntheticSource generates a smooth test pattern: two sine axes a quarter
// period apart and two buttons toggling at 1 Hz and 2 Hz.
type syntheticSource struct {
	start time.Time
}

func (s *syntheticSource) Sample() (input.State, string) {
	t := time.Since(s.start).Seconds()
	return input.State{
		Axes: []float32{
			float32(math.Sin(t)),
			float32(math.Cos(t)),
		},
		Buttons: []int32{
			int32(t) % 2,
			int32(t*2) % 2,
		},
	}, "synthetic"
}
