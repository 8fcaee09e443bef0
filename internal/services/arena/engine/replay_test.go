package engine

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	apperrors "github.com/louisbranch/stakepot/internal/platform/errors"
	"github.com/louisbranch/stakepot/internal/services/arena/storage"
)

// deadGateway fails every call. Rebuilding from the journal must never
// reach for the token gateway, so replay over a dead one has to work.
type deadGateway struct{}

var errDeadGateway = errors.New("gateway must not be called during replay")

func (deadGateway) BalanceOf(context.Context, string, string) (int64, error) {
	return 0, errDeadGateway
}

func (deadGateway) Allowance(context.Context, string, string) (int64, error) {
	return 0, errDeadGateway
}

func (deadGateway) TransferIn(context.Context, string, string, int64) error {
	return errDeadGateway
}

func (deadGateway) TransferOut(context.Context, string, string, int64) error {
	return errDeadGateway
}

// runArenaHistory drives one engine through a mixed history: an admin
// reconfiguration, a completed match with a failed and retried claim,
// and a cancelled match with one refund taken.
func runArenaHistory(t *testing.T, rig *testRig) (completed, cancelled uint64) {
	t.Helper()
	ctx := context.Background()

	if err := rig.engine.AddSupportedToken(ctx, admin(), "ABC"); err != nil {
		t.Fatalf("AddSupportedToken() error = %v", err)
	}
	if err := rig.engine.SetMaxMatchesPerPlayer(ctx, admin(), 5); err != nil {
		t.Fatalf("SetMaxMatchesPerPlayer() error = %v", err)
	}

	completed = rig.completeMatchWithAliceWinning(t)

	// One failed payout leaves a claim-and-revert pair in the journal
	// before the successful retry.
	rig.gateway.failTransferOut = true
	if _, err := rig.engine.ClaimPrize(ctx, player("alice"), completed); err == nil {
		t.Fatal("ClaimPrize() with failing gateway expected error")
	}
	rig.gateway.failTransferOut = false
	if _, err := rig.engine.ClaimPrize(ctx, player("alice"), completed); err != nil {
		t.Fatalf("ClaimPrize() retry error = %v", err)
	}

	cancelled = rig.createTwoPlayerMatch(t, 25)
	if _, err := rig.engine.CancelMatch(ctx, admin(), cancelled, "abandoned"); err != nil {
		t.Fatalf("CancelMatch() error = %v", err)
	}
	if _, err := rig.engine.RefundEntryFee(ctx, player("bob"), cancelled); err != nil {
		t.Fatalf("RefundEntryFee() error = %v", err)
	}

	if err := rig.engine.SetFeePercent(ctx, admin(), 2); err != nil {
		t.Fatalf("SetFeePercent() error = %v", err)
	}
	return completed, cancelled
}

func TestReplayRebuildsIdenticalState(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()

	completed, cancelled := runArenaHistory(t, rig)

	settings := DefaultSettings()
	settings.Tokens = []string{testToken}
	rebuilt, err := New(Options{
		Journal:  rig.journal,
		Gateway:  deadGateway{},
		Clock:    rig.clock.Now,
		Settings: settings,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := rebuilt.Replay(ctx); err != nil {
		t.Fatalf("Replay() error = %v", err)
	}

	if got, want := rebuilt.LastSeq(), rig.engine.LastSeq(); got != want {
		t.Fatalf("LastSeq = %d, want %d", got, want)
	}

	liveCfg, err := rig.engine.Config(ctx)
	if err != nil {
		t.Fatalf("Config() error = %v", err)
	}
	rebuiltCfg, err := rebuilt.Config(ctx)
	if err != nil {
		t.Fatalf("rebuilt Config() error = %v", err)
	}
	if !reflect.DeepEqual(rebuiltCfg, liveCfg) {
		t.Fatalf("config diverged:\nlive    %+v\nrebuilt %+v", liveCfg, rebuiltCfg)
	}

	for _, id := range []uint64{completed, cancelled} {
		live, err := rig.engine.MatchDetails(ctx, id)
		if err != nil {
			t.Fatalf("MatchDetails(%d) error = %v", id, err)
		}
		replayed, err := rebuilt.MatchDetails(ctx, id)
		if err != nil {
			t.Fatalf("rebuilt MatchDetails(%d) error = %v", id, err)
		}
		if !reflect.DeepEqual(replayed, live) {
			t.Fatalf("match %d diverged:\nlive    %+v\nrebuilt %+v", id, live, replayed)
		}
	}

	for _, name := range []string{"alice", "bob"} {
		live, err := rig.engine.PlayerStats(ctx, name)
		if err != nil {
			t.Fatalf("PlayerStats(%s) error = %v", name, err)
		}
		replayed, err := rebuilt.PlayerStats(ctx, name)
		if err != nil {
			t.Fatalf("rebuilt PlayerStats(%s) error = %v", name, err)
		}
		if !reflect.DeepEqual(replayed, live) {
			t.Fatalf("stats for %s diverged:\nlive    %+v\nrebuilt %+v", name, live, replayed)
		}
	}

	liveTreasury, err := rig.engine.TreasuryBalance(ctx, admin(), testToken)
	if err != nil {
		t.Fatalf("TreasuryBalance() error = %v", err)
	}
	rebuiltTreasury, err := rebuilt.TreasuryBalance(ctx, admin(), testToken)
	if err != nil {
		t.Fatalf("rebuilt TreasuryBalance() error = %v", err)
	}
	if rebuiltTreasury != liveTreasury {
		t.Fatalf("treasury = %d, want %d", rebuiltTreasury, liveTreasury)
	}
}

// A completed match keeps the fee percent it was settled at even when
// the configuration changed afterwards.
func TestReplayKeepsHistoricalFeePercent(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()

	completed, _ := runArenaHistory(t, rig)

	settings := DefaultSettings()
	settings.Tokens = []string{testToken}
	rebuilt, err := New(Options{
		Journal:  rig.journal,
		Gateway:  deadGateway{},
		Clock:    rig.clock.Now,
		Settings: settings,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := rebuilt.Replay(ctx); err != nil {
		t.Fatalf("Replay() error = %v", err)
	}

	view, err := rebuilt.MatchDetails(ctx, completed)
	if err != nil {
		t.Fatalf("MatchDetails() error = %v", err)
	}
	// Settled at the default 5% on a pool of 20 before the fee dropped
	// to 2%.
	if view.FeeAmount != 1 {
		t.Fatalf("FeeAmount = %d, want 1", view.FeeAmount)
	}
	cfg, err := rebuilt.Config(ctx)
	if err != nil {
		t.Fatalf("Config() error = %v", err)
	}
	if cfg.FeePercent != 2 {
		t.Fatalf("FeePercent = %d, want 2", cfg.FeePercent)
	}
}

// Replay starts after the last applied event, so running it again is a
// no-op rather than a double application.
func TestReplayIsIdempotent(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()

	completed, _ := runArenaHistory(t, rig)

	before, err := rig.engine.MatchDetails(ctx, completed)
	if err != nil {
		t.Fatalf("MatchDetails() error = %v", err)
	}
	seq := rig.engine.LastSeq()

	if err := rig.engine.Replay(ctx); err != nil {
		t.Fatalf("Replay() error = %v", err)
	}

	after, err := rig.engine.MatchDetails(ctx, completed)
	if err != nil {
		t.Fatalf("MatchDetails() error = %v", err)
	}
	if !reflect.DeepEqual(after, before) {
		t.Fatalf("state changed on idempotent replay:\nbefore %+v\nafter  %+v", before, after)
	}
	if rig.engine.LastSeq() != seq {
		t.Fatalf("LastSeq = %d, want %d", rig.engine.LastSeq(), seq)
	}
}

func TestReplayRejectsCorruptRecord(t *testing.T) {
	journal := &memJournal{}
	if _, err := journal.AppendEvent(context.Background(), storage.EventRecord{
		MatchID:     1,
		Type:        "match.created",
		Actor:       "alice",
		PayloadJSON: []byte("{not json"),
		CreatedAt:   time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC),
	}); err != nil {
		t.Fatalf("AppendEvent() error = %v", err)
	}

	eng, err := New(Options{Journal: journal, Gateway: deadGateway{}})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	err = eng.Replay(context.Background())
	if apperrors.CodeOf(err) != apperrors.CodeStorageFailure {
		t.Fatalf("Replay() error = %v, want storage failure", err)
	}
}
