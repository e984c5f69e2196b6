package realtime

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

const subjectPrefix = "threadnest.notifications."

// Event is the payload pushed to a connected recipient.
type Event struct {
	Type     string     `json:"type"`
	ActorID  uuid.UUID  `json:"actor_id"`
	ThreadID *uuid.UUID `json:"thread_id,omitempty"`
	SentAt   time.Time  `json:"sent_at"`
}

// Publisher pushes live events toward the realtime edge.
type Publisher interface {
	Publish(recipientID uuid.UUID, event Event) error
}

// NATSPublisher publishes events on a per-recipient subject.
type NATSPublisher struct {
	conn *nats.Conn
}

func NewNATSPublisher(url string) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}
	return &NATSPublisher{conn: nc}, nil
}

func (p *NATSPublisher) Publish(recipientID uuid.UUID, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := p.conn.Publish(subjectPrefix+recipientID.String(), payload); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

func (p *NATSPublisher) Close() {
	p.conn.Drain()
}
