package engine

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/louisbranch/stakepot/internal/services/arena/domain/match"
	"github.com/louisbranch/stakepot/internal/services/arena/storage"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// MatchView is a point-in-time snapshot of one match. Raw answers are
// deliberately absent: submissions stay hidden until scores are
// published at completion.
type MatchView struct {
	ID         uint64   `json:"id"`
	Token      string   `json:"token"`
	EntryFee   int64    `json:"entry_fee"`
	MaxPlayers int      `json:"max_players"`
	Players    []string `json:"players"`
	Status     string   `json:"status"`
	PrizePool  int64    `json:"prize_pool"`

	Questions   []string `json:"questions,omitempty"`
	OptionCount int      `json:"option_count"`

	Scores         map[string]int `json:"scores,omitempty"`
	Winners        []string       `json:"winners,omitempty"`
	MaxScore       int            `json:"max_score,omitempty"`
	FeeAmount      int64          `json:"fee_amount,omitempty"`
	PerWinnerPrize int64          `json:"per_winner_prize,omitempty"`
	Remainder      int64          `json:"remainder,omitempty"`

	CreatedAt    time.Time `json:"created_at"`
	JoinDeadline time.Time `json:"join_deadline"`
	StartedAt    time.Time `json:"started_at,omitempty"`
	EndsAt       time.Time `json:"ends_at,omitempty"`
	EndedAt      time.Time `json:"ended_at,omitempty"`

	EscrowLocked  bool            `json:"escrow_locked"`
	Claims        map[string]bool `json:"claims,omitempty"`
	EscrowBalance int64           `json:"escrow_balance"`
}

// StatsView is a snapshot of one player's accumulated results.
type StatsView struct {
	Player          string           `json:"player"`
	Wins            int              `json:"wins"`
	MatchesPlayed   int              `json:"matches_played"`
	TotalEarnings   int64            `json:"total_earnings"`
	EarningsByToken map[string]int64 `json:"earnings_by_token,omitempty"`
}

// ConfigView is a snapshot of the engine policy knobs.
type ConfigView struct {
	FeePercent          int           `json:"fee_percent"`
	MinEntryFee         int64         `json:"min_entry_fee"`
	MaxMatchesPerPlayer int           `json:"max_matches_per_player"`
	JoinWindow          time.Duration `json:"join_window"`
	QuestionWindow      time.Duration `json:"question_window"`
	OptionCount         int           `json:"option_count"`
	Paused              bool          `json:"paused"`
	Tokens              []string      `json:"tokens"`
}

// matchView copies the match into a detached snapshot. The caller holds
// the engine mutex.
func (e *Engine) matchView(m *match.Match) MatchView {
	view := MatchView{
		ID:             m.ID,
		Token:          m.Token,
		EntryFee:       m.EntryFee,
		MaxPlayers:     m.MaxPlayers,
		Players:        append([]string(nil), m.Players...),
		Status:         m.Status.String(),
		PrizePool:      m.PrizePool,
		Questions:      append([]string(nil), m.Questions...),
		OptionCount:    m.OptionCount,
		Winners:        append([]string(nil), m.Winners...),
		MaxScore:       m.MaxScore,
		FeeAmount:      m.FeeAmount,
		PerWinnerPrize: m.PerWinnerPrize,
		Remainder:      m.Remainder,
		CreatedAt:      m.CreatedAt,
		JoinDeadline:   m.JoinDeadline,
		StartedAt:      m.StartedAt,
		EndsAt:         m.EndsAt,
		EndedAt:        m.EndedAt,
		EscrowLocked:   m.EscrowLocked,
		EscrowBalance:  e.ledger.Balance(m.ID, m.Token),
	}
	if len(m.Scores) > 0 {
		view.Scores = make(map[string]int, len(m.Scores))
		for player, score := range m.Scores {
			view.Scores[player] = score
		}
	}
	if len(m.Claims) > 0 {
		view.Claims = make(map[string]bool, len(m.Claims))
		for player, claimed := range m.Claims {
			view.Claims[player] = claimed
		}
	}
	return view
}

// MatchDetails returns a snapshot of one match.
func (e *Engine) MatchDetails(ctx context.Context, matchID uint64) (MatchView, error) {
	if err := ctx.Err(); err != nil {
		return MatchView{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	m, err := e.matchByID(matchID)
	if err != nil {
		return MatchView{}, err
	}
	return e.matchView(m), nil
}

// ListMatchesPage returns up to pageSize match snapshots with ID greater
// than afterID in ID order, optionally filtered by status.
func (e *Engine) ListMatchesPage(ctx context.Context, status *match.Status, afterID uint64, pageSize int) ([]MatchView, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	ids := make([]uint64, 0, len(e.matches))
	for id, m := range e.matches {
		if id <= afterID {
			continue
		}
		if status != nil && m.Status != *status {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	if len(ids) > pageSize {
		ids = ids[:pageSize]
	}

	views := make([]MatchView, 0, len(ids))
	for _, id := range ids {
		views = append(views, e.matchView(e.matches[id]))
	}
	return views, nil
}

// PlayerScore returns the player's recorded score for a match. Before
// completion every roster player scores zero.
func (e *Engine) PlayerScore(ctx context.Context, matchID uint64, player string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	m, err := e.matchByID(matchID)
	if err != nil {
		return 0, err
	}
	if !m.HasPlayer(player) {
		return 0, match.ErrPlayerNotInMatch
	}
	return m.Scores[player], nil
}

// EscrowBalance returns the custodied amount for one match in its token.
func (e *Engine) EscrowBalance(ctx context.Context, matchID uint64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	m, err := e.matchByID(matchID)
	if err != nil {
		return 0, err
	}
	return e.ledger.Balance(m.ID, m.Token), nil
}

// TreasuryBalance returns the accumulated platform fees for one token.
func (e *Engine) TreasuryBalance(ctx context.Context, caller Identity, tok string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if _, err := requireAdmin(caller); err != nil {
		return 0, err
	}
	tok, err := trimToken(tok)
	if err != nil {
		return 0, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	return e.ledger.TreasuryBalance(tok), nil
}

// PlayerStats returns the player's accumulated results. Players with no
// recorded prize claims report zeroes.
func (e *Engine) PlayerStats(ctx context.Context, player string) (StatsView, error) {
	if err := ctx.Err(); err != nil {
		return StatsView{}, err
	}
	player = strings.TrimSpace(player)
	if player == "" {
		return StatsView{}, match.ErrEmptyPlayer
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	view := StatsView{Player: player}
	s, ok := e.stats[player]
	if !ok {
		return view, nil
	}
	view.Wins = s.Wins
	view.MatchesPlayed = s.MatchesPlayed
	view.TotalEarnings = s.TotalEarnings
	if len(s.EarningsByToken) > 0 {
		view.EarningsByToken = make(map[string]int64, len(s.EarningsByToken))
		for t, amount := range s.EarningsByToken {
			view.EarningsByToken[t] = amount
		}
	}
	return view, nil
}

// SupportedTokens returns the allow-list in sorted order.
func (e *Engine) SupportedTokens(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	tokens := make([]string, 0, len(e.tokens))
	for t := range e.tokens {
		tokens = append(tokens, t)
	}
	sort.Strings(tokens)
	return tokens, nil
}

// Config returns the current policy knobs.
func (e *Engine) Config(ctx context.Context) (ConfigView, error) {
	if err := ctx.Err(); err != nil {
		return ConfigView{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	tokens := make([]string, 0, len(e.tokens))
	for t := range e.tokens {
		tokens = append(tokens, t)
	}
	sort.Strings(tokens)

	return ConfigView{
		FeePercent:          e.feePercent,
		MinEntryFee:         e.minEntryFee,
		MaxMatchesPerPlayer: e.maxMatchesPerPlayer,
		JoinWindow:          e.joinWindow,
		QuestionWindow:      e.questionWindow,
		OptionCount:         e.optionCount,
		Paused:              e.paused,
		Tokens:              tokens,
	}, nil
}

// Events returns a page of the journal.
func (e *Engine) Events(ctx context.Context, afterSeq int64, pageSize int) ([]storage.EventRecord, error) {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return e.journal.ListEventsPage(ctx, afterSeq, pageSize)
}

// MatchEvents returns a page of one match's journal entries.
func (e *Engine) MatchEvents(ctx context.Context, matchID uint64, afterSeq int64, pageSize int) ([]storage.EventRecord, error) {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return e.journal.ListMatchEventsPage(ctx, matchID, afterSeq, pageSize)
}

// LastSeq returns the journal position of the most recent applied event.
func (e *Engine) LastSeq() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastSeq
}
