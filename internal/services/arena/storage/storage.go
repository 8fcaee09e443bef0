// Package storage defines persistence contracts for the arena event
// journal.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates a requested journal record is missing.
var ErrNotFound = errors.New("record not found")

// EventRecord stores one journal entry. Seq is assigned by the store
// on append and increases without gaps across all matches.
type EventRecord struct {
	Seq         int64
	MatchID     uint64
	Type        string
	Actor       string
	PayloadJSON []byte
	CreatedAt   time.Time
}

// JournalStore persists the arena event journal.
type JournalStore interface {
	// AppendEvent inserts one record and returns its assigned seq.
	AppendEvent(ctx context.Context, record EventRecord) (int64, error)
	// ListEventsPage returns up to pageSize records with seq greater
	// than afterSeq, in seq order.
	ListEventsPage(ctx context.Context, afterSeq int64, pageSize int) ([]EventRecord, error)
	// ListMatchEventsPage is ListEventsPage scoped to one match.
	ListMatchEventsPage(ctx context.Context, matchID uint64, afterSeq int64, pageSize int) ([]EventRecord, error)
	// LatestSeq returns the highest assigned seq, zero when empty.
	LatestSeq(ctx context.Context) (int64, error)
}
