package live

import (
	"time"

	"github.com/gorilla/websocket"
	"github.com/yeremiapane/queueapp/utils"
)

const (
	writeWait = 10 * time.Second
	// sendBuffer is how many events may wait for a slow client.
	sendBuffer = 32
)

// ServeConn streams a restaurant's events to conn until the client goes away.
// It blocks, so handlers call it last.
func (h *Hub) ServeConn(conn *websocket.Conn, restaurantID string) {
	done := make(chan struct{})

	unsubscribe := h.SubscribeQueued(restaurantID, sendBuffer, func(msg Message) {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(msg); err != nil {
			utils.ErrorLogger.WithField("restaurant_id", restaurantID).Warnf("Error sending message to client: %v", err)
			// ends the read loop below
			conn.Close()
		}
	})
	defer func() {
		unsubscribe()
		conn.Close()
	}()

	utils.InfoLogger.WithField("restaurant_id", restaurantID).Info("Live client connected")

	// the read loop only detects disconnects
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
	<-done

	utils.InfoLogger.WithField("restaurant_id", restaurantID).Info("Live client disconnected")
}
