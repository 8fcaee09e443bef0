package engine

import (
	"context"
	"strconv"
	"time"

	apperrors "github.com/louisbranch/stakepot/internal/platform/errors"
	"github.com/louisbranch/stakepot/internal/services/arena/domain/event"
	"github.com/louisbranch/stakepot/internal/services/arena/domain/match"
)

// CreateMatchInput carries the caller-chosen match parameters.
type CreateMatchInput struct {
	Token      string
	EntryFee   int64
	MaxPlayers int
}

// CreateMatch escrows the creator's entry fee and opens a Waiting
// match with the creator as player 1.
func (e *Engine) CreateMatch(ctx context.Context, caller Identity, in CreateMatchInput) (MatchView, error) {
	subject, err := requireCaller(caller)
	if err != nil {
		return MatchView{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.paused {
		return MatchView{}, ErrEnginePaused
	}
	tok, err := e.requireSupportedToken(in.Token)
	if err != nil {
		return MatchView{}, err
	}
	if err := e.checkMatchLimit(subject); err != nil {
		return MatchView{}, err
	}

	now := e.clock()
	id := e.lastMatchID + 1
	// Run the full domain validation before any funds move.
	if _, err := match.Create(match.CreateInput{
		ID:          id,
		Token:       tok,
		EntryFee:    in.EntryFee,
		MinEntryFee: e.minEntryFee,
		MaxPlayers:  in.MaxPlayers,
		Creator:     subject,
		OptionCount: e.optionCount,
		Now:         now,
		JoinWindow:  e.joinWindow,
	}); err != nil {
		return MatchView{}, err
	}

	evt, err := event.New(id, event.TypeMatchCreated, subject, now, event.MatchCreated{
		Token:        tok,
		EntryFee:     in.EntryFee,
		MaxPlayers:   in.MaxPlayers,
		Creator:      subject,
		OptionCount:  e.optionCount,
		JoinDeadline: now.Add(e.joinWindow),
	})
	if err != nil {
		return MatchView{}, err
	}

	if err := e.gateway.TransferIn(ctx, tok, subject, in.EntryFee); err != nil {
		return MatchView{}, gatewayError(err)
	}
	if _, err := e.commit(ctx, evt); err != nil {
		e.refundDeposit(ctx, tok, subject, in.EntryFee)
		return MatchView{}, err
	}
	return e.matchView(e.matches[id]), nil
}

// JoinMatch escrows the caller's entry fee and appends them to the
// roster of a Waiting match.
func (e *Engine) JoinMatch(ctx context.Context, caller Identity, matchID uint64) (MatchView, error) {
	subject, err := requireCaller(caller)
	if err != nil {
		return MatchView{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.paused {
		return MatchView{}, ErrEnginePaused
	}
	m, err := e.matchByID(matchID)
	if err != nil {
		return MatchView{}, err
	}
	now := e.clock()
	if err := m.CanAddPlayer(subject, now); err != nil {
		return MatchView{}, err
	}
	if err := e.checkMatchLimit(subject); err != nil {
		return MatchView{}, err
	}

	evt, err := event.New(m.ID, event.TypeMatchPlayerJoined, subject, now, event.PlayerJoined{
		Player:   subject,
		EntryFee: m.EntryFee,
	})
	if err != nil {
		return MatchView{}, err
	}

	if err := e.gateway.TransferIn(ctx, m.Token, subject, m.EntryFee); err != nil {
		return MatchView{}, gatewayError(err)
	}
	if _, err := e.commit(ctx, evt); err != nil {
		e.refundDeposit(ctx, m.Token, subject, m.EntryFee)
		return MatchView{}, err
	}
	return e.matchView(m), nil
}

// StartMatch fixes the question set on a full Waiting match and
// transitions it to Active. Administrators only.
func (e *Engine) StartMatch(ctx context.Context, caller Identity, matchID uint64, questionIDs []string) (MatchView, error) {
	subject, err := requireAdmin(caller)
	if err != nil {
		return MatchView{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	m, err := e.matchByID(matchID)
	if err != nil {
		return MatchView{}, err
	}
	if err := m.CanStart(questionIDs); err != nil {
		return MatchView{}, err
	}

	now := e.clock()
	endsAt := now.Add(time.Duration(len(questionIDs)) * e.questionWindow)
	evt, err := event.New(m.ID, event.TypeMatchStarted, subject, now, event.MatchStarted{
		Questions: questionIDs,
		EndsAt:    endsAt,
	})
	if err != nil {
		return MatchView{}, err
	}
	if _, err := e.commit(ctx, evt); err != nil {
		return MatchView{}, err
	}
	return e.matchView(m), nil
}

// SubmitAnswer records a roster player's first answer to a question in
// an Active match.
func (e *Engine) SubmitAnswer(ctx context.Context, caller Identity, matchID uint64, questionID string, answer int) error {
	subject, err := requireCaller(caller)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	m, err := e.matchByID(matchID)
	if err != nil {
		return err
	}
	now := e.clock()
	if err := m.CanSubmitAnswer(subject, questionID, answer, now); err != nil {
		return err
	}

	evt, err := event.New(m.ID, event.TypeMatchAnswerSubmitted, subject, now, event.AnswerSubmitted{
		Player:   subject,
		Question: questionID,
		Answer:   answer,
	})
	if err != nil {
		return err
	}
	_, err = e.commit(ctx, evt)
	return err
}

// EndMatch scores an Active match against the answer key, computes the
// prize distribution, and transitions it to Completed. The platform fee
// moves to the treasury immediately; winners pull their shares
// individually afterwards. Administrators only.
func (e *Engine) EndMatch(ctx context.Context, caller Identity, matchID uint64, questionIDs []string, correctAnswers []int) (MatchView, error) {
	subject, err := requireAdmin(caller)
	if err != nil {
		return MatchView{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	m, err := e.matchByID(matchID)
	if err != nil {
		return MatchView{}, err
	}
	if err := m.CanComplete(questionIDs, correctAnswers, e.feePercent); err != nil {
		return MatchView{}, err
	}

	// Scoring and distribution are pure; compute the outcome for the
	// event payload, then let apply write it through Complete.
	scores := match.Score(m.Players, m.Answers, questionIDs, correctAnswers)
	outcome := match.Distribute(m.Players, scores, m.PrizePool, e.feePercent)

	now := e.clock()
	evt, err := event.New(m.ID, event.TypeMatchCompleted, subject, now, event.MatchCompleted{
		Questions:  questionIDs,
		AnswerKey:  correctAnswers,
		FeePercent: e.feePercent,
		Scores:     outcome.Scores,
		Winners:    outcome.Winners,
		MaxScore:   outcome.MaxScore,
		FeeAmount:  outcome.FeeAmount,
		PerWinner:  outcome.PerWinner,
		Remainder:  outcome.Remainder,
	})
	if err != nil {
		return MatchView{}, err
	}
	if _, err := e.commit(ctx, evt); err != nil {
		return MatchView{}, err
	}
	return e.matchView(m), nil
}

// CancelMatch is the administrative emergency path out of Waiting or
// Active. Funds stay in escrow; players pull refunds individually.
func (e *Engine) CancelMatch(ctx context.Context, caller Identity, matchID uint64, reason string) (MatchView, error) {
	subject, err := requireAdmin(caller)
	if err != nil {
		return MatchView{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	m, err := e.matchByID(matchID)
	if err != nil {
		return MatchView{}, err
	}
	if err := m.CanCancel(); err != nil {
		return MatchView{}, err
	}

	evt, err := event.New(m.ID, event.TypeMatchCancelled, subject, e.clock(), event.MatchCancelled{
		Reason: reason,
	})
	if err != nil {
		return MatchView{}, err
	}
	if _, err := e.commit(ctx, evt); err != nil {
		return MatchView{}, err
	}
	return e.matchView(m), nil
}

func (e *Engine) requireSupportedToken(tok string) (string, error) {
	trimmed, err := trimToken(tok)
	if err != nil {
		return "", err
	}
	if !e.tokens[trimmed] {
		return "", apperrors.WithMetadata(apperrors.CodeMatchTokenNotSupported, "token is not allow-listed", map[string]string{
			"Token": trimmed,
		})
	}
	return trimmed, nil
}

func (e *Engine) checkMatchLimit(player string) error {
	if e.openMemberships(player) >= e.maxMatchesPerPlayer {
		return apperrors.WithMetadata(apperrors.CodePlayerMatchLimitReached, "player reached the concurrent match limit", map[string]string{
			"Limit": strconv.Itoa(e.maxMatchesPerPlayer),
		})
	}
	return nil
}
