// Package engine executes arena operations over the match registry,
// escrow ledger, and token gateway. It is the single writer: one
// state-changing call runs to completion, including its external token
// transfer, before the next begins. Every accepted mutation lands in
// the journal first and is then applied to memory, so replaying the
// journal rebuilds the exact same state.
package engine

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	apperrors "github.com/louisbranch/stakepot/internal/platform/errors"
	"github.com/louisbranch/stakepot/internal/services/arena/domain/event"
	"github.com/louisbranch/stakepot/internal/services/arena/domain/ledger"
	"github.com/louisbranch/stakepot/internal/services/arena/domain/match"
	"github.com/louisbranch/stakepot/internal/services/arena/domain/token"
	"github.com/louisbranch/stakepot/internal/services/arena/notify"
	"github.com/louisbranch/stakepot/internal/services/arena/storage"
)

var (
	// ErrEnginePaused is returned when a paused engine rejects a new
	// fund commitment.
	ErrEnginePaused = apperrors.New(apperrors.CodeEnginePaused, "engine is paused")
	// ErrAdminRequired is returned when a non-administrator calls an
	// administrative operation.
	ErrAdminRequired = apperrors.New(apperrors.CodeAdminRequired, "administrator role required")
	// ErrMatchNotFound is returned when no match exists for an id.
	ErrMatchNotFound = apperrors.New(apperrors.CodeNotFound, "match not found")
	// ErrTokenNotSupported is returned when a match names a token
	// outside the allow-list.
	ErrTokenNotSupported = apperrors.New(apperrors.CodeMatchTokenNotSupported, "token is not allow-listed")
	// ErrMatchLimitReached is returned when a player already sits in
	// the maximum number of open matches.
	ErrMatchLimitReached = apperrors.New(apperrors.CodePlayerMatchLimitReached, "player reached the concurrent match limit")
)

// Identity describes the authenticated caller of an engine operation.
type Identity struct {
	Subject string
	Admin   bool
}

// Settings carries the policy knobs the engine boots with. The fee
// percent, match limit, pause flag, and token allow-list can change at
// runtime through admin operations; those changes are journaled and win
// over Settings on replay.
type Settings struct {
	FeePercent          int
	MinEntryFee         int64
	MaxMatchesPerPlayer int
	// JoinWindow is how long a Waiting match accepts joins.
	JoinWindow time.Duration
	// QuestionWindow is the answer time granted per question.
	QuestionWindow time.Duration
	// OptionCount bounds valid answers to [0, OptionCount).
	OptionCount int
	// Tokens seeds the allow-list.
	Tokens []string
}

// DefaultSettings returns the engine defaults.
func DefaultSettings() Settings {
	return Settings{
		FeePercent:          match.DefaultFeePercent,
		MinEntryFee:         1,
		MaxMatchesPerPlayer: 10,
		JoinWindow:          10 * time.Minute,
		QuestionWindow:      30 * time.Second,
		OptionCount:         4,
	}
}

// Options assembles an engine.
type Options struct {
	Journal  storage.JournalStore
	Gateway  token.Gateway
	Notifier *notify.Fanout
	// Clock defaults to time.Now.
	Clock    func() time.Time
	Settings Settings
}

// Engine owns all arena state. Mutation happens under one mutex held
// across the whole operation, external transfer included.
type Engine struct {
	mu sync.Mutex

	journal  storage.JournalStore
	gateway  token.Gateway
	notifier *notify.Fanout
	clock    func() time.Time

	minEntryFee    int64
	joinWindow     time.Duration
	questionWindow time.Duration
	optionCount    int

	// Journaled state below; rebuilt by Replay.
	feePercent          int
	maxMatchesPerPlayer int
	paused              bool
	tokens              map[string]bool
	matches             map[uint64]*match.Match
	ledger              *ledger.Ledger
	stats               map[string]*match.PlayerStats
	lastMatchID         uint64
	lastSeq             int64
}

// New builds an engine from options. Call Replay before serving
// traffic so the journal state is loaded.
func New(opts Options) (*Engine, error) {
	if opts.Journal == nil {
		return nil, apperrors.New(apperrors.CodeStorageFailure, "journal store is required")
	}
	if opts.Gateway == nil {
		return nil, apperrors.New(apperrors.CodeFundsTransferFailed, "token gateway is required")
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}

	settings := opts.Settings
	if settings.MinEntryFee <= 0 {
		settings.MinEntryFee = 1
	}
	if settings.MaxMatchesPerPlayer <= 0 {
		settings.MaxMatchesPerPlayer = DefaultSettings().MaxMatchesPerPlayer
	}
	if settings.JoinWindow <= 0 {
		settings.JoinWindow = DefaultSettings().JoinWindow
	}
	if settings.QuestionWindow <= 0 {
		settings.QuestionWindow = DefaultSettings().QuestionWindow
	}
	if settings.OptionCount <= 0 {
		settings.OptionCount = DefaultSettings().OptionCount
	}
	if settings.FeePercent < 0 {
		settings.FeePercent = match.DefaultFeePercent
	}
	if settings.FeePercent > match.MaxFeePercent {
		settings.FeePercent = match.MaxFeePercent
	}

	tokens := make(map[string]bool, len(settings.Tokens))
	for _, t := range settings.Tokens {
		t = strings.TrimSpace(t)
		if t != "" {
			tokens[t] = true
		}
	}

	return &Engine{
		journal:             opts.Journal,
		gateway:             opts.Gateway,
		notifier:            opts.Notifier,
		clock:               clock,
		minEntryFee:         settings.MinEntryFee,
		joinWindow:          settings.JoinWindow,
		questionWindow:      settings.QuestionWindow,
		optionCount:         settings.OptionCount,
		feePercent:          settings.FeePercent,
		maxMatchesPerPlayer: settings.MaxMatchesPerPlayer,
		tokens:              tokens,
		matches:             make(map[uint64]*match.Match),
		ledger:              ledger.New(),
		stats:               make(map[string]*match.PlayerStats),
	}, nil
}

// requireCaller checks that the operation carries a caller identity.
func requireCaller(caller Identity) (string, error) {
	subject := strings.TrimSpace(caller.Subject)
	if subject == "" {
		return "", match.ErrEmptyPlayer
	}
	return subject, nil
}

// requireAdmin is the capability check run at the top of every
// administrative operation.
func requireAdmin(caller Identity) (string, error) {
	subject, err := requireCaller(caller)
	if err != nil {
		return "", err
	}
	if !caller.Admin {
		return "", ErrAdminRequired
	}
	return subject, nil
}

func (e *Engine) matchByID(id uint64) (*match.Match, error) {
	m, ok := e.matches[id]
	if !ok {
		return nil, apperrors.WithMetadata(apperrors.CodeNotFound, "match not found", map[string]string{
			"Match": strconv.FormatUint(id, 10),
		})
	}
	return m, nil
}

// openMemberships counts the Waiting and Active matches the player sits
// in, for the concurrent match limit.
func (e *Engine) openMemberships(player string) int {
	count := 0
	for _, m := range e.matches {
		if m.Status != match.StatusWaiting && m.Status != match.StatusActive {
			continue
		}
		if m.HasPlayer(player) {
			count++
		}
	}
	return count
}

func (e *Engine) statsFor(player string) *match.PlayerStats {
	s, ok := e.stats[player]
	if !ok {
		s = match.NewPlayerStats(player)
		e.stats[player] = s
	}
	return s
}

// commit appends the event to the journal, applies it to memory, and
// publishes it. The caller holds the engine mutex.
func (e *Engine) commit(ctx context.Context, evt event.Event) (event.Event, error) {
	seq, err := e.journal.AppendEvent(ctx, storage.EventRecord{
		MatchID:     evt.MatchID,
		Type:        string(evt.Type),
		Actor:       evt.Actor,
		PayloadJSON: evt.PayloadJSON,
		CreatedAt:   evt.Timestamp,
	})
	if err != nil {
		return evt, apperrors.Wrap(apperrors.CodeStorageFailure, "append journal event", err)
	}
	evt.Seq = seq

	if err := e.apply(evt); err != nil {
		return evt, apperrors.Wrap(apperrors.CodeStorageFailure, "apply journal event", err)
	}
	e.notifier.Publish(ctx, evt)
	return evt, nil
}

// gatewayError keeps domain codes from gateway implementations and
// wraps anything else as a transfer failure.
func gatewayError(err error) error {
	if apperrors.CodeOf(err) != apperrors.CodeUnknown {
		return err
	}
	return apperrors.Wrap(apperrors.CodeFundsTransferFailed, "token transfer failed", err)
}

// refundDeposit pushes a just-escrowed amount back to its owner after a
// journal append failed. Failure here strands funds in custody, which
// only an operator can resolve.
func (e *Engine) refundDeposit(ctx context.Context, tok, owner string, amount int64) {
	if err := e.gateway.TransferOut(ctx, tok, owner, amount); err != nil {
		log.WithFields(log.Fields{
			"token":  tok,
			"owner":  owner,
			"amount": amount,
		}).Errorf("engine: compensating transfer failed, funds stranded in custody: %v", err)
	}
}
