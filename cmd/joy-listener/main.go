package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/open-teleop/joynode/domain/joy"
	"github.com/open-teleop/joynode/pkg/api"
	"github.com/open-teleop/joynode/pkg/config"
	customlog "github.com/open-teleop/joynode/pkg/log"
	"github.com/open-teleop/joynode/pkg/node"
	"github.com/open-teleop/joynode/pkg/rosmsg"
)

func main() {
	configPath := flag.String("config", "config/joynode.yaml", "Path to the configuration file")
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

	if err := run(cfg, logger); err != nil {
		logger.Errorf("joy-listener failed: %v", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger customlog.Logger) error {
	runtime, err := node.Init(cfg, logger)
	if err != nil {
		return err
	}
	defer runtime.Shutdown()

	n, err := runtime.CreateNode(cfg.Node.Name, cfg.Node.Namespace)
	if err != nil {
		return err
	}

	joySvc := joy.NewService(logger, os.Stdout)

	for _, subCfg := range cfg.Node.Subscriptions {
		if subCfg.MessageType != rosmsg.Joy_TypeName {
			logger.Warnf("Skipping subscription on '%s': unsupported message type %s", subCfg.Topic, subCfg.MessageType)
			continue
		}

		qos, err := node.QosFromConfig(subCfg)
		if err != nil {
			return err
		}

		_, err = n.CreateSubscription(subCfg.Topic, subCfg.MessageType, qos, func(data []byte) {
			var msg rosmsg.Joy
			if err := msg.DeserializeCDR(data); err != nil {
				logger.Warnf("Failed to deserialize joy message: %v", err)
				return
			}
			joySvc.HandleMessage(&msg, time.Now().UnixNano())
		})
		if err != nil {
			return err
		}
		logger.Infof("Subscribed to topic '%s' (%s)", subCfg.Topic, subCfg.MessageType)
	}

	if err := runtime.Start(); err != nil {
		return err
	}

	var app *fiber.App
	if cfg.Server.Enabled {
		app = newServer(cfg, logger, n, joySvc)
		go func() {
			addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
			logger.Infof("Introspection server listening on %s", addr)
			if err := app.Listen(addr); err != nil {
				logger.Errorf("Introspection server stopped: %v", err)
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Infof("Node '%s' spinning, press Ctrl-C to exit", n.FullName())
	if err := n.Spin(ctx); err != nil {
		return err
	}

	logger.Infof("Shutdown signal received")
	if app != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			logger.Warnf("Introspection server forced to shut down: %v", err)
		}
	}
	return nil
}

// newServer wires the introspection endpoints: node stats, the latest joy
// sample and a live sample stream over WebSocket.
func newServer(cfg *config.Config, logger customlog.Logger, n *node.Node, joySvc *joy.Service) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "joynode listener",
		DisableStartupMessage: true,
		ErrorHandler:          apiErrorHandler,
	})
	app.Use(recover.New())

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "online",
			"service": "joynode listener",
			"node":    n.FullName(),
		})
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy"})
	})

	apiRoutes := app.Group("/api")
	apiRoutes.Get("/node/stats", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"node":   n.FullName(),
			"topics": n.Registry().Stats(),
		})
	})
	apiRoutes.Get("/joy/state", joySvc.StateHandler)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/joy", websocket.New(func(conn *websocket.Conn) {
		api.JoyStreamHandler(conn, logger, joySvc)
	}))

	return app
}

func apiErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}
