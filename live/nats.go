package live

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/yeremiapane/queueapp/utils"
)

const DefaultSubjectPrefix = "queueapp"

// NATSPublisher mirrors restaurant events to NATS subjects of the form
// <prefix>.<restaurant>.<event>.
type NATSPublisher struct {
	conn   *nats.Conn
	prefix string
}

func NewNATSPublisher(url, prefix string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url, nats.Name("queueapp"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return &NATSPublisher{conn: conn, prefix: prefix}, nil
}

func (p *NATSPublisher) Subject(restaurantID, event string) string {
	return Subject(p.prefix, restaurantID, event)
}

func Subject(prefix, restaurantID, event string) string {
	return fmt.Sprintf("%s.%s.%s", prefix, restaurantID, event)
}

func (p *NATSPublisher) Notify(restaurantID, event string, data interface{}) {
	payload, err := json.Marshal(Message{Event: event, RestaurantID: restaurantID, Data: data, SentAt: time.Now()})
	if err != nil {
		utils.ErrorLogger.Printf("Error marshaling message: %v", err)
		return
	}
	if err := p.conn.Publish(p.Subject(restaurantID, event), payload); err != nil {
		utils.ErrorLogger.WithField("restaurant_id", restaurantID).Warnf("NATS publish failed: %v", err)
	}
}

// Flush waits until the server has processed published messages.
func (p *NATSPublisher) Flush() error {
	return p.conn.Flush()
}

func (p *NATSPublisher) Close() error {
	p.conn.Close()
	return nil
}
