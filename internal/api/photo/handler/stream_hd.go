package photoHandler

import (
	"context"
	"time"

	"github.com/gofiber/websocket/v2"
)

const (
	streamReadLimit   = 20 << 20
	streamReadTimeout = 60 * time.Second
	streamFrameBudget = 30 * time.Second
)

// handleStream classifies every binary frame a client sends and answers
// with one ClassificationResult per frame, in order.
func (h *PhotoHandler) handleStream(c *websocket.Conn) {
	h.log.Info("Photo stream client connected")
	defer h.log.Info("Photo stream client disconnected")

	c.SetReadLimit(streamReadLimit)
	c.SetPingHandler(func(data string) error {
		if err := c.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(5*time.Second)); err != nil {
			h.log.Errorf("Error sending pong: %v", err)
		}
		return nil
	})

	for {
		if err := c.SetReadDeadline(time.Now().Add(streamReadTimeout)); err != nil {
			h.log.Errorf("Error setting read deadline: %v", err)
			break
		}

		messageType, message, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Errorf("Photo stream error: %v", err)
			}
			break
		}

		if messageType != websocket.BinaryMessage {
			h.log.Warnf("Received unexpected message type: %d", messageType)
			if err := c.WriteJSON(map[string]string{"error": "expected a binary image frame"}); err != nil {
				break
			}
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), streamFrameBudget)
		result := h.photoService.Classify(ctx, message)
		cancel()

		if err := c.SetWriteDeadline(time.Now().Add(10 * time.Second)); err != nil {
			h.log.Errorf("Error setting write deadline: %v", err)
			break
		}

		if err := c.WriteJSON(result); err != nil {
			h.log.Errorf("Error writing JSON response: %v", err)
			break
		}
	}
}
