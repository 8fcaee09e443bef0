// Package match holds the wagered-trivia match record: roster, lifecycle,
// answer storage, scoring, and prize distribution rules.
package match

import (
	"math"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/louisbranch/stakepot/internal/platform/errors"
)

const (
	// MinRosterSize is the smallest roster a match may be created with.
	MinRosterSize = 2
	// MaxRosterSize is the largest roster a match may be created with.
	MaxRosterSize = 4
	// MaxFeePercent caps the platform fee applied at distribution time.
	MaxFeePercent = 10
	// DefaultFeePercent is the platform fee used until an admin changes it.
	DefaultFeePercent = 5
)

var (
	// ErrEmptyPlayer indicates a missing player identity.
	ErrEmptyPlayer = apperrors.New(apperrors.CodePlayerIdentityEmpty, "player identity is required")
	// ErrEmptyToken indicates a missing token identifier.
	ErrEmptyToken = apperrors.New(apperrors.CodeTokenIdentifierEmpty, "token identifier is required")
	// ErrMatchFull indicates the roster already reached max players.
	ErrMatchFull = apperrors.New(apperrors.CodeMatchFull, "match roster is full")
	// ErrMatchNotFull indicates a start attempt before the roster filled.
	ErrMatchNotFull = apperrors.New(apperrors.CodeMatchNotFull, "match roster is not full")
	// ErrAlreadyJoined indicates the player is already on the roster.
	ErrAlreadyJoined = apperrors.New(apperrors.CodeMatchAlreadyJoined, "player already joined this match")
	// ErrJoinDeadlinePassed indicates the join window has closed.
	ErrJoinDeadlinePassed = apperrors.New(apperrors.CodeMatchJoinDeadlinePassed, "join deadline has passed")
	// ErrEscrowLocked indicates the match escrow was already locked.
	ErrEscrowLocked = apperrors.New(apperrors.CodeMatchEscrowLocked, "match escrow is locked")
	// ErrQuestionsEmpty indicates a start attempt without questions.
	ErrQuestionsEmpty = apperrors.New(apperrors.CodeMatchQuestionsEmpty, "question list is empty")
	// ErrQuestionDuplicate indicates a question id repeats in the set.
	ErrQuestionDuplicate = apperrors.New(apperrors.CodeMatchQuestionDuplicate, "question ids must be unique")
	// ErrMatchEnded indicates the answer window has closed.
	ErrMatchEnded = apperrors.New(apperrors.CodeMatchEnded, "answer window has closed")
	// ErrAnswerAlreadySubmitted indicates a second answer for the same question.
	ErrAnswerAlreadySubmitted = apperrors.New(apperrors.CodeAnswerAlreadySubmitted, "answer already recorded for this question")
	// ErrPlayerNotInMatch indicates the caller is not on the roster.
	ErrPlayerNotInMatch = apperrors.New(apperrors.CodePlayerNotInMatch, "player is not part of this match")
	// ErrPlayerNotWinner indicates a claim by a player outside the winner set.
	ErrPlayerNotWinner = apperrors.New(apperrors.CodePlayerNotWinner, "player is not in the winner set")
	// ErrClaimAlreadyProcessed indicates a second claim or refund attempt.
	ErrClaimAlreadyProcessed = apperrors.New(apperrors.CodeClaimAlreadyProcessed, "claim already processed for this player")
	// ErrMatchNotRefundable indicates a refund attempt before eligibility.
	ErrMatchNotRefundable = apperrors.New(apperrors.CodeMatchNotRefundable, "match is not refundable yet")
	// ErrInvalidStatusTransition indicates a disallowed lifecycle change.
	ErrInvalidStatusTransition = apperrors.New(apperrors.CodeMatchInvalidStatusTransition, "match status transition is not allowed")
)

// AnswerKey identifies one player's answer to one question.
type AnswerKey struct {
	Player   string
	Question string
}

// Match is one wagered trivia contest with a fixed token and entry fee.
// Mutation goes through the lifecycle methods only; the engine serializes
// calls, so the record itself carries no locking.
type Match struct {
	ID         uint64
	Token      string
	EntryFee   int64
	MaxPlayers int
	// Players is the ordered roster; Players[0] is the creator.
	Players []string
	Status  Status
	// PrizePool always equals EntryFee times the roster size.
	PrizePool int64
	// Questions is the ordered question set fixed at start.
	Questions []string
	// OptionCount bounds valid answers to [0, OptionCount).
	OptionCount int
	// Answers maps (player, question) to the chosen option. A missing key
	// means no answer was submitted.
	Answers map[AnswerKey]int
	// Scores, Winners, MaxScore, FeeAmount, PerWinnerPrize and Remainder are
	// written once, when the match completes.
	Scores         map[string]int
	Winners        []string
	MaxScore       int
	FeeAmount      int64
	PerWinnerPrize int64
	Remainder      int64
	CreatedAt      time.Time
	JoinDeadline   time.Time
	StartedAt      time.Time
	// EndsAt closes the answer window; zero until the match starts.
	EndsAt  time.Time
	EndedAt time.Time
	// EscrowLocked flips when the match starts and never clears.
	EscrowLocked bool
	// Claims holds the one-shot per-player claim flags (prize or refund).
	Claims map[string]bool
}

// CreateInput carries everything needed to open a match in Waiting status.
type CreateInput struct {
	ID          uint64
	Token       string
	EntryFee    int64
	MinEntryFee int64
	MaxPlayers  int
	Creator     string
	OptionCount int
	Now         time.Time
	JoinWindow  time.Duration
}

// Create validates the input and opens a match with the creator as player 1.
func Create(in CreateInput) (*Match, error) {
	token := strings.TrimSpace(in.Token)
	if token == "" {
		return nil, ErrEmptyToken
	}
	creator := strings.TrimSpace(in.Creator)
	if creator == "" {
		return nil, ErrEmptyPlayer
	}
	if in.MaxPlayers < MinRosterSize || in.MaxPlayers > MaxRosterSize {
		return nil, apperrors.WithMetadata(apperrors.CodeMatchInvalidMaxPlayers, "max players out of range", map[string]string{
			"Min": strconv.Itoa(MinRosterSize),
			"Max": strconv.Itoa(MaxRosterSize),
		})
	}
	if in.EntryFee <= 0 || in.EntryFee < in.MinEntryFee {
		return nil, apperrors.WithMetadata(apperrors.CodeMatchEntryFeeBelowMin, "entry fee below minimum", map[string]string{
			"Minimum": strconv.FormatInt(in.MinEntryFee, 10),
		})
	}
	// The fee computation multiplies the full pool by a percentage, so the
	// pool times 100 must stay inside int64.
	if in.EntryFee > math.MaxInt64/int64(in.MaxPlayers)/100 {
		return nil, apperrors.New(apperrors.CodeMatchEntryFeeOverflow, "entry fee too large")
	}

	return &Match{
		ID:           in.ID,
		Token:        token,
		EntryFee:     in.EntryFee,
		MaxPlayers:   in.MaxPlayers,
		Players:      []string{creator},
		Status:       StatusWaiting,
		PrizePool:    in.EntryFee,
		OptionCount:  in.OptionCount,
		Answers:      make(map[AnswerKey]int),
		Claims:       make(map[string]bool),
		CreatedAt:    in.Now,
		JoinDeadline: in.Now.Add(in.JoinWindow),
	}, nil
}

// CanAddPlayer reports whether AddPlayer would succeed right now. It
// never mutates the match.
func (m *Match) CanAddPlayer(player string, now time.Time) error {
	if m.Status != StatusWaiting {
		return statusDisallows(m.Status, "join")
	}
	if strings.TrimSpace(player) == "" {
		return ErrEmptyPlayer
	}
	if m.HasPlayer(player) {
		return ErrAlreadyJoined
	}
	if m.IsFull() {
		return ErrMatchFull
	}
	if now.After(m.JoinDeadline) {
		return ErrJoinDeadlinePassed
	}
	return nil
}

// AddPlayer appends a player to a Waiting roster and grows the prize pool.
func (m *Match) AddPlayer(player string, now time.Time) error {
	player = strings.TrimSpace(player)
	if err := m.CanAddPlayer(player, now); err != nil {
		return err
	}

	m.Players = append(m.Players, player)
	m.PrizePool += m.EntryFee
	return nil
}

// CanStart reports whether Start would succeed right now. It never
// mutates the match.
func (m *Match) CanStart(questionIDs []string) error {
	if m.Status != StatusWaiting {
		return statusDisallows(m.Status, "start")
	}
	if !m.IsFull() {
		return ErrMatchNotFull
	}
	if len(questionIDs) == 0 {
		return ErrQuestionsEmpty
	}
	seen := make(map[string]bool, len(questionIDs))
	for _, q := range questionIDs {
		if seen[q] {
			return ErrQuestionDuplicate
		}
		seen[q] = true
	}
	if m.EscrowLocked {
		return ErrEscrowLocked
	}
	if !isStatusTransitionAllowed(m.Status, StatusActive) {
		return transitionError(m.Status, StatusActive)
	}
	return nil
}

// Start transitions a full Waiting match to Active, fixes the question set
// and answer deadline, and locks the escrow.
func (m *Match) Start(questionIDs []string, now, endsAt time.Time) error {
	if err := m.CanStart(questionIDs); err != nil {
		return err
	}

	m.Questions = append([]string(nil), questionIDs...)
	m.StartedAt = now
	m.EndsAt = endsAt
	m.EscrowLocked = true
	m.Status = StatusActive
	return nil
}

// CanSubmitAnswer reports whether SubmitAnswer would succeed right now.
// It never mutates the match.
func (m *Match) CanSubmitAnswer(player, questionID string, answer int, now time.Time) error {
	if m.Status != StatusActive {
		return statusDisallows(m.Status, "submit answer")
	}
	if !m.HasPlayer(player) {
		return ErrPlayerNotInMatch
	}
	if !now.Before(m.EndsAt) {
		return ErrMatchEnded
	}
	if !m.hasQuestion(questionID) {
		return apperrors.WithMetadata(apperrors.CodeMatchUnknownQuestion, "question is not part of this match", map[string]string{
			"Question": questionID,
		})
	}
	if answer < 0 || answer >= m.OptionCount {
		return answerOutOfRange(m.OptionCount)
	}
	if _, exists := m.Answers[AnswerKey{Player: player, Question: questionID}]; exists {
		return ErrAnswerAlreadySubmitted
	}
	return nil
}

// SubmitAnswer records a first-time answer for (player, question).
func (m *Match) SubmitAnswer(player, questionID string, answer int, now time.Time) error {
	if err := m.CanSubmitAnswer(player, questionID, answer, now); err != nil {
		return err
	}

	m.Answers[AnswerKey{Player: player, Question: questionID}] = answer
	return nil
}

// CanComplete reports whether Complete would succeed right now. It
// never mutates the match.
func (m *Match) CanComplete(questionIDs []string, correctAnswers []int, feePercent int) error {
	if m.Status != StatusActive {
		return statusDisallows(m.Status, "end")
	}
	if len(questionIDs) != len(m.Questions) || len(correctAnswers) != len(m.Questions) {
		return apperrors.WithMetadata(apperrors.CodeMatchAnswerKeyMismatch, "answer key length mismatch", map[string]string{
			"Expected":  strconv.Itoa(len(m.Questions)),
			"Questions": strconv.Itoa(len(questionIDs)),
			"Answers":   strconv.Itoa(len(correctAnswers)),
		})
	}
	// The key must name the match's questions in their recorded order so
	// correctAnswers[j] grades Questions[j] and nothing else.
	for i, q := range questionIDs {
		if q != m.Questions[i] {
			return apperrors.WithMetadata(apperrors.CodeMatchAnswerKeyMismatch, "answer key question order mismatch", map[string]string{
				"Position": strconv.Itoa(i),
				"Expected": m.Questions[i],
				"Got":      q,
			})
		}
	}
	for _, answer := range correctAnswers {
		if answer < 0 || answer >= m.OptionCount {
			return answerOutOfRange(m.OptionCount)
		}
	}
	if feePercent < 0 || feePercent > MaxFeePercent {
		return apperrors.WithMetadata(apperrors.CodeFeePercentTooHigh, "fee percent out of range", map[string]string{
			"Max": strconv.Itoa(MaxFeePercent),
		})
	}
	if !isStatusTransitionAllowed(m.Status, StatusCompleted) {
		return transitionError(m.Status, StatusCompleted)
	}
	return nil
}

// Complete scores the match against the answer key, computes the prize
// distribution, and transitions to Completed.
func (m *Match) Complete(questionIDs []string, correctAnswers []int, feePercent int, now time.Time) (Outcome, error) {
	if err := m.CanComplete(questionIDs, correctAnswers, feePercent); err != nil {
		return Outcome{}, err
	}

	scores := Score(m.Players, m.Answers, questionIDs, correctAnswers)
	outcome := Distribute(m.Players, scores, m.PrizePool, feePercent)

	m.Scores = outcome.Scores
	m.Winners = outcome.Winners
	m.MaxScore = outcome.MaxScore
	m.FeeAmount = outcome.FeeAmount
	m.PerWinnerPrize = outcome.PerWinner
	m.Remainder = outcome.Remainder
	m.EndedAt = now
	m.Status = StatusCompleted
	return outcome, nil
}

// CanCancel reports whether Cancel would succeed right now. It never
// mutates the match.
func (m *Match) CanCancel() error {
	if !isStatusTransitionAllowed(m.Status, StatusCancelled) {
		return statusDisallows(m.Status, "cancel")
	}
	return nil
}

// Cancel transitions a Waiting or Active match to Cancelled. Funds stay in
// escrow until players pull refunds individually.
func (m *Match) Cancel(now time.Time) error {
	if err := m.CanCancel(); err != nil {
		return err
	}
	m.EndedAt = now
	m.Status = StatusCancelled
	return nil
}

// RefundEligibility reports whether the caller may pull a refund right now:
// the match is Cancelled, or still Waiting with an elapsed join deadline.
func (m *Match) RefundEligibility(now time.Time) error {
	switch m.Status {
	case StatusCancelled:
		return nil
	case StatusWaiting:
		if now.After(m.JoinDeadline) {
			return nil
		}
		return ErrMatchNotRefundable
	default:
		return statusDisallows(m.Status, "refund")
	}
}

// CanClaimPrize reports whether the player may pull their prize right
// now. It never mutates the match.
func (m *Match) CanClaimPrize(player string) error {
	if m.Status != StatusCompleted {
		return statusDisallows(m.Status, "claim prize")
	}
	if !m.HasPlayer(player) {
		return ErrPlayerNotInMatch
	}
	if !m.IsWinner(player) {
		return ErrPlayerNotWinner
	}
	if m.HasClaimed(player) {
		return ErrClaimAlreadyProcessed
	}
	return nil
}

// CanRefund reports whether the player may pull their entry fee back
// right now. It never mutates the match.
func (m *Match) CanRefund(player string, now time.Time) error {
	if err := m.RefundEligibility(now); err != nil {
		return err
	}
	if !m.HasPlayer(player) {
		return ErrPlayerNotInMatch
	}
	if m.HasClaimed(player) {
		return ErrClaimAlreadyProcessed
	}
	return nil
}

// MarkClaimed sets the one-shot claim flag for the player.
func (m *Match) MarkClaimed(player string) error {
	if m.Claims[player] {
		return ErrClaimAlreadyProcessed
	}
	m.Claims[player] = true
	return nil
}

// ClearClaim undoes a claim flag after a failed external transfer.
func (m *Match) ClearClaim(player string) {
	delete(m.Claims, player)
}

// HasClaimed reports whether the player's claim flag is set.
func (m *Match) HasClaimed(player string) bool {
	return m.Claims[player]
}

// HasPlayer reports whether the player is on the roster.
func (m *Match) HasPlayer(player string) bool {
	for _, p := range m.Players {
		if p == player {
			return true
		}
	}
	return false
}

// IsWinner reports whether the player is in the computed winner set.
func (m *Match) IsWinner(player string) bool {
	for _, w := range m.Winners {
		if w == player {
			return true
		}
	}
	return false
}

// IsFull reports whether the roster reached max players.
func (m *Match) IsFull() bool {
	return len(m.Players) >= m.MaxPlayers
}

// CurrentPlayers returns the roster size.
func (m *Match) CurrentPlayers() int {
	return len(m.Players)
}

func (m *Match) hasQuestion(questionID string) bool {
	for _, q := range m.Questions {
		if q == questionID {
			return true
		}
	}
	return false
}

func statusDisallows(s Status, operation string) *apperrors.Error {
	return apperrors.WithMetadata(apperrors.CodeMatchStatusDisallowsOp, "match status disallows operation", map[string]string{
		"Status":    s.String(),
		"Operation": operation,
	})
}

func transitionError(from, to Status) *apperrors.Error {
	return apperrors.WithMetadata(apperrors.CodeMatchInvalidStatusTransition, "match status transition is not allowed", map[string]string{
		"FromStatus": from.String(),
		"ToStatus":   to.String(),
	})
}

func answerOutOfRange(optionCount int) *apperrors.Error {
	return apperrors.WithMetadata(apperrors.CodeMatchAnswerOutOfRange, "answer outside option range", map[string]string{
		"Max": strconv.Itoa(optionCount - 1),
	})
}
