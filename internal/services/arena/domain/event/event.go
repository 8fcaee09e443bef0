// Package event defines the immutable journal records the arena engine
// appends for every state change. The journal is the source of truth:
// replaying it from seq 1 rebuilds the full in-memory state.
package event

import (
	"encoding/json"
	"strings"
	"time"

	apperrors "github.com/louisbranch/stakepot/internal/platform/errors"
)

// Type identifies the kind of an arena event.
type Type string

// Match lifecycle events.
const (
	// TypeMatchCreated records the creation of a match, including the
	// creator's escrowed entry fee.
	TypeMatchCreated Type = "match.created"
	// TypeMatchPlayerJoined records a player joining a match, including
	// their escrowed entry fee.
	TypeMatchPlayerJoined Type = "match.player_joined"
	// TypeMatchStarted records a match activating with its question set.
	TypeMatchStarted Type = "match.started"
	// TypeMatchAnswerSubmitted records a player's answer to a question.
	TypeMatchAnswerSubmitted Type = "match.answer_submitted"
	// TypeMatchCompleted records scoring, winner selection, and the fee
	// moving to the treasury.
	TypeMatchCompleted Type = "match.completed"
	// TypeMatchCancelled records an administrative cancellation.
	TypeMatchCancelled Type = "match.cancelled"
)

// Escrow release events.
const (
	// TypeEscrowPrizeClaimed records a winner withdrawing their share.
	TypeEscrowPrizeClaimed Type = "escrow.prize_claimed"
	// TypeEscrowRefunded records an entry fee returning to a player.
	TypeEscrowRefunded Type = "escrow.refunded"
	// TypeEscrowReleaseReverted records a release undone because the
	// outbound token transfer failed after the journal recorded it.
	TypeEscrowReleaseReverted Type = "escrow.release_reverted"
)

// Administrative events.
const (
	// TypeAdminTokenAdded records a token joining the supported set.
	TypeAdminTokenAdded Type = "admin.token_added"
	// TypeAdminTokenRemoved records a token leaving the supported set.
	TypeAdminTokenRemoved Type = "admin.token_removed"
	// TypeAdminFeeUpdated records a change to the platform fee percent.
	TypeAdminFeeUpdated Type = "admin.fee_updated"
	// TypeAdminMatchLimitUpdated records a change to the per-player
	// concurrent match limit.
	TypeAdminMatchLimitUpdated Type = "admin.match_limit_updated"
	// TypeAdminPauseChanged records the engine pausing or resuming.
	TypeAdminPauseChanged Type = "admin.pause_changed"
)

// Event is one immutable journal record.
type Event struct {
	// Seq is the global sequence number, assigned by storage on append.
	Seq int64
	// MatchID is the match this event belongs to, zero for
	// administrative events.
	MatchID uint64
	// Type identifies the kind of event.
	Type Type
	// Actor is the identity that triggered the event.
	Actor string
	// Timestamp is when the event occurred.
	Timestamp time.Time
	// PayloadJSON holds event-specific data as JSON.
	PayloadJSON []byte
}

// IsValid reports whether the event type is usable.
func (t Type) IsValid() bool {
	return strings.TrimSpace(string(t)) != ""
}

// Domain returns the prefix of the event type ("match", "escrow",
// "admin"), used as a routing key by publishers.
func (t Type) Domain() string {
	for i, c := range t {
		if c == '.' {
			return string(t[:i])
		}
	}
	return string(t)
}

// New builds an event with its payload marshaled. Seq stays zero until
// storage assigns it.
func New(matchID uint64, typ Type, actor string, at time.Time, payload any) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, apperrors.Wrap(apperrors.CodeEventPayloadInvalid, "marshal event payload", err)
	}
	return Event{
		MatchID:     matchID,
		Type:        typ,
		Actor:       actor,
		Timestamp:   at,
		PayloadJSON: raw,
	}, nil
}

// Decode unmarshals the event payload into T.
func Decode[T any](e Event) (T, error) {
	var payload T
	if err := json.Unmarshal(e.PayloadJSON, &payload); err != nil {
		return payload, apperrors.WrapWithMetadata(apperrors.CodeEventPayloadInvalid, "unmarshal event payload", map[string]string{
			"Type": string(e.Type),
		}, err)
	}
	return payload, nil
}
