package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/louisbranch/stakepot/internal/services/arena/storage"
)

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := Open(""); err == nil {
		t.Fatal("expected empty path error")
	}
}

func TestAppendEventAssignsIncreasingSeq(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	now := time.Date(2026, time.March, 14, 15, 0, 0, 0, time.UTC)

	first, err := store.AppendEvent(context.Background(), storage.EventRecord{
		MatchID:     1,
		Type:        "match.created",
		Actor:       "alice",
		PayloadJSON: []byte(`{"token":"QZT"}`),
		CreatedAt:   now,
	})
	if err != nil {
		t.Fatalf("append first event: %v", err)
	}
	second, err := store.AppendEvent(context.Background(), storage.EventRecord{
		MatchID:   1,
		Type:      "match.player_joined",
		Actor:     "bob",
		CreatedAt: now.Add(time.Minute),
	})
	if err != nil {
		t.Fatalf("append second event: %v", err)
	}

	if first != 1 || second != 2 {
		t.Fatalf("seqs = %d, %d, want 1, 2", first, second)
	}

	latest, err := store.LatestSeq(context.Background())
	if err != nil {
		t.Fatalf("latest seq: %v", err)
	}
	if latest != 2 {
		t.Fatalf("latest seq = %d, want 2", latest)
	}
}

func TestAppendEventRequiresType(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)

	if _, err := store.AppendEvent(context.Background(), storage.EventRecord{MatchID: 1, Actor: "alice"}); err == nil {
		t.Fatal("expected missing type error")
	}
}

func TestListEventsPageWalksJournalInOrder(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	now := time.Date(2026, time.March, 14, 15, 0, 0, 0, time.UTC)
	types := []string{"match.created", "match.player_joined", "match.started", "match.completed"}
	for i, eventType := range types {
		if _, err := store.AppendEvent(context.Background(), storage.EventRecord{
			MatchID:     1,
			Type:        eventType,
			Actor:       "alice",
			PayloadJSON: []byte(`{}`),
			CreatedAt:   now.Add(time.Duration(i) * time.Minute),
		}); err != nil {
			t.Fatalf("append %s: %v", eventType, err)
		}
	}

	firstPage, err := store.ListEventsPage(context.Background(), 0, 3)
	if err != nil {
		t.Fatalf("list first page: %v", err)
	}
	if len(firstPage) != 3 {
		t.Fatalf("first page size = %d, want 3", len(firstPage))
	}
	for i, record := range firstPage {
		if record.Type != types[i] {
			t.Fatalf("page[%d].Type = %q, want %q", i, record.Type, types[i])
		}
	}

	secondPage, err := store.ListEventsPage(context.Background(), firstPage[2].Seq, 3)
	if err != nil {
		t.Fatalf("list second page: %v", err)
	}
	if len(secondPage) != 1 || secondPage[0].Type != "match.completed" {
		t.Fatalf("second page = %+v", secondPage)
	}
}

func TestListMatchEventsPageFiltersByMatch(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	now := time.Date(2026, time.March, 14, 15, 0, 0, 0, time.UTC)
	for _, matchID := range []uint64{1, 2, 1, 2, 2} {
		if _, err := store.AppendEvent(context.Background(), storage.EventRecord{
			MatchID:   matchID,
			Type:      "match.answer_submitted",
			Actor:     "alice",
			CreatedAt: now,
		}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	records, err := store.ListMatchEventsPage(context.Background(), 2, 0, 10)
	if err != nil {
		t.Fatalf("list match events: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("match 2 events = %d, want 3", len(records))
	}
	for _, record := range records {
		if record.MatchID != 2 {
			t.Fatalf("record match id = %d, want 2", record.MatchID)
		}
	}
}

func TestAppendEventRoundTripsPayloadAndTimestamp(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	now := time.Date(2026, time.March, 14, 15, 0, 0, 0, time.UTC)
	payload := []byte(`{"player":"bob","amount":19}`)

	if _, err := store.AppendEvent(context.Background(), storage.EventRecord{
		MatchID:     9,
		Type:        "escrow.prize_claimed",
		Actor:       "bob",
		PayloadJSON: payload,
		CreatedAt:   now,
	}); err != nil {
		t.Fatalf("append: %v", err)
	}

	records, err := store.ListEventsPage(context.Background(), 0, 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("records = %d, want 1", len(records))
	}
	if string(records[0].PayloadJSON) != string(payload) {
		t.Fatalf("payload = %s, want %s", records[0].PayloadJSON, payload)
	}
	if !records[0].CreatedAt.Equal(now) {
		t.Fatalf("created_at = %v, want %v", records[0].CreatedAt, now)
	}
}

func openTempStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "arena.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}
