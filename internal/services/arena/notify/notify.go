// Package notify fans arena journal events out to live feeds. Delivery
// is best-effort: a failing sink is logged and skipped, and never rolls
// back the operation that produced the event.
package notify

import (
	"context"
	"encoding/json"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/louisbranch/stakepot/internal/services/arena/domain/event"
)

// Envelope is the wire form of a journal event shared by all sinks.
type Envelope struct {
	Seq       int64           `json:"seq"`
	MatchID   uint64          `json:"match_id,omitempty"`
	Type      event.Type      `json:"type"`
	Actor     string          `json:"actor,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// NewEnvelope wraps a journal event for publication.
func NewEnvelope(evt event.Event) Envelope {
	return Envelope{
		Seq:       evt.Seq,
		MatchID:   evt.MatchID,
		Type:      evt.Type,
		Actor:     evt.Actor,
		Timestamp: evt.Timestamp,
		Payload:   json.RawMessage(evt.PayloadJSON),
	}
}

// Sink delivers one event to a feed.
type Sink interface {
	Publish(ctx context.Context, evt event.Event) error
}

// Fanout delivers each event to every sink, logging failures instead of
// propagating them.
type Fanout struct {
	sinks []Sink
}

// NewFanout builds a fanout over the given sinks. Nil sinks are
// skipped.
func NewFanout(sinks ...Sink) *Fanout {
	fanout := &Fanout{}
	for _, sink := range sinks {
		if sink != nil {
			fanout.sinks = append(fanout.sinks, sink)
		}
	}
	return fanout
}

// Publish sends the event to every sink.
func (f *Fanout) Publish(ctx context.Context, evt event.Event) {
	if f == nil {
		return
	}
	for _, sink := range f.sinks {
		if err := sink.Publish(ctx, evt); err != nil {
			log.WithFields(log.Fields{
				"seq":   evt.Seq,
				"type":  evt.Type,
				"match": evt.MatchID,
			}).Warnf("notify: sink failed: %v", err)
		}
	}
}
