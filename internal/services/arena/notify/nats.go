package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go"

	"github.com/louisbranch/stakepot/internal/services/arena/domain/event"
)

// DefaultSubjectPrefix is the root of the NATS subject tree arena
// events publish under.
const DefaultSubjectPrefix = "arena.events"

type natsConn interface {
	Publish(subject string, data []byte) error
}

// NATSPublisher publishes event envelopes to a NATS subject derived
// from the event type: <prefix>.<type>, e.g. arena.events.match.created.
type NATSPublisher struct {
	conn   natsConn
	prefix string
}

// NewNATSPublisher wraps an established NATS connection.
func NewNATSPublisher(conn *nats.Conn, subjectPrefix string) *NATSPublisher {
	return newNATSPublisher(conn, subjectPrefix)
}

func newNATSPublisher(conn natsConn, subjectPrefix string) *NATSPublisher {
	prefix := strings.TrimSpace(subjectPrefix)
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return &NATSPublisher{conn: conn, prefix: prefix}
}

// Publish sends the event envelope to its subject.
func (p *NATSPublisher) Publish(ctx context.Context, evt event.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := json.Marshal(NewEnvelope(evt))
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	subject := p.prefix + "." + string(evt.Type)
	if err := p.conn.Publish(subject, payload); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	return nil
}

var _ Sink = (*NATSPublisher)(nil)
