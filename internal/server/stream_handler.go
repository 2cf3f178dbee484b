package server

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/njnj03/homewatch/pkg/models"
)

// streamSendBuffer bounds how many events a slow client may fall behind
// before it is disconnected.
const streamSendBuffer = 64

// upgradeStream gates the stream route to websocket upgrade requests.
func (s *Server) upgradeStream(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// handleAlertStream forwards every event published on the bus to the
// connected client as its JSON envelope. The subscription is torn down when
// the client disconnects, so delivery stops deterministically.
func (s *Server) handleAlertStream(conn *websocket.Conn) {
	events := make(chan models.Event, streamSendBuffer)
	token := s.bus.Subscribe(func(evt models.Event) {
		select {
		case events <- evt:
		default:
			// Client is too far behind; drop the event. The next poll
			// resynchronizes it.
		}
	})
	defer s.bus.Unsubscribe(token)

	s.log.Debug("alert stream client connected", "remote", conn.RemoteAddr())

	// Drain reads so close frames are processed; the stream is send-only.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case evt := <-events:
			payload, err := json.Marshal(evt)
			if err != nil {
				s.log.Error("failed to marshal stream event", "error", err)
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				s.log.Debug("alert stream client write failed", "error", err)
				return
			}
		case <-done:
			s.log.Debug("alert stream client disconnected", "remote", conn.RemoteAddr())
			return
		}
	}
}
