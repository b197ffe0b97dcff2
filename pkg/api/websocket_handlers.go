package api

import (
	"errors"
	"syscall"

	"github.com/gofiber/contrib/websocket"

	"github.com/open-teleop/joynode/domain/joy"
	customlog "github.com/open-teleop/joynode/pkg/log"
)

// JoyStreamHandler pushes every decoded joy sample to a WebSocket client as
// JSON. The client is read-only; inbound frames are drained only to detect
// the close handshake.
func JoyStreamHandler(conn *websocket.Conn, logger customlog.Logger, svc *joy.Service) {
	logger.Infof("Joy stream WebSocket connected: %s", conn.RemoteAddr())

	samples := svc.Subscribe(16)
	defer svc.Unsubscribe(samples)

	// Reader goroutine: we never expect client frames, but ReadMessage is the
	// only way to notice the peer going away.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					logger.Errorf("Joy stream WS read error: %v", err)
				} else if err != websocket.ErrCloseSent && !errors.Is(err, syscall.EPIPE) && !errors.Is(err, syscall.ECONNRESET) {
					logger.Infof("Joy stream WS connection closed: %v", err)
				} else {
					logger.Infof("Joy stream WS connection closed normally.")
				}
				return
			}
		}
	}()

	for {
		select {
		case sample, ok := <-samples:
			if !ok {
				return
			}
			if err := conn.WriteJSON(sample); err != nil {
				logger.Infof("Joy stream WS write failed, dropping client: %v", err)
				return
			}
		case <-closed:
			return
		}
	}
}
