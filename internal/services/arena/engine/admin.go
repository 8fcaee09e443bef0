package engine

import (
	"context"
	"strconv"
	"strings"

	apperrors "github.com/louisbranch/stakepot/internal/platform/errors"
	"github.com/louisbranch/stakepot/internal/services/arena/domain/event"
	"github.com/louisbranch/stakepot/internal/services/arena/domain/match"
)

// AddSupportedToken puts a token on the allow-list. Adding a token that
// is already listed succeeds without journaling anything.
func (e *Engine) AddSupportedToken(ctx context.Context, caller Identity, tok string) error {
	subject, err := requireAdmin(caller)
	if err != nil {
		return err
	}
	trimmed, err := trimToken(tok)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.tokens[trimmed] {
		return nil
	}
	evt, err := event.New(0, event.TypeAdminTokenAdded, subject, e.clock(), event.TokenAdded{Token: trimmed})
	if err != nil {
		return err
	}
	_, err = e.commit(ctx, evt)
	return err
}

// RemoveSupportedToken takes a token off the allow-list. Matches
// already holding the token keep playing and releasing; only new
// matches are blocked.
func (e *Engine) RemoveSupportedToken(ctx context.Context, caller Identity, tok string) error {
	subject, err := requireAdmin(caller)
	if err != nil {
		return err
	}
	trimmed, err := trimToken(tok)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.tokens[trimmed] {
		return nil
	}
	evt, err := event.New(0, event.TypeAdminTokenRemoved, subject, e.clock(), event.TokenRemoved{Token: trimmed})
	if err != nil {
		return err
	}
	_, err = e.commit(ctx, evt)
	return err
}

// SetFeePercent changes the platform fee applied to matches completed
// from now on. Already-completed matches keep their recorded fee.
func (e *Engine) SetFeePercent(ctx context.Context, caller Identity, percent int) error {
	subject, err := requireAdmin(caller)
	if err != nil {
		return err
	}
	if percent < 0 || percent > match.MaxFeePercent {
		return apperrors.WithMetadata(apperrors.CodeFeePercentTooHigh, "fee percent out of range", map[string]string{
			"Max": strconv.Itoa(match.MaxFeePercent),
		})
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if percent == e.feePercent {
		return nil
	}
	evt, err := event.New(0, event.TypeAdminFeeUpdated, subject, e.clock(), event.FeeUpdated{Percent: percent})
	if err != nil {
		return err
	}
	_, err = e.commit(ctx, evt)
	return err
}

// SetMaxMatchesPerPlayer changes the concurrent open-match limit.
func (e *Engine) SetMaxMatchesPerPlayer(ctx context.Context, caller Identity, limit int) error {
	subject, err := requireAdmin(caller)
	if err != nil {
		return err
	}
	if limit <= 0 {
		return apperrors.New(apperrors.CodeMatchLimitInvalid, "match limit must be positive")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if limit == e.maxMatchesPerPlayer {
		return nil
	}
	evt, err := event.New(0, event.TypeAdminMatchLimitUpdated, subject, e.clock(), event.MatchLimitUpdated{Limit: limit})
	if err != nil {
		return err
	}
	_, err = e.commit(ctx, evt)
	return err
}

// Pause stops new fund commitments: createMatch and joinMatch reject
// until Unpause. Matches in flight keep playing and funds stay
// withdrawable.
func (e *Engine) Pause(ctx context.Context, caller Identity) error {
	return e.setPaused(ctx, caller, true)
}

// Unpause resumes new fund commitments.
func (e *Engine) Unpause(ctx context.Context, caller Identity) error {
	return e.setPaused(ctx, caller, false)
}

func (e *Engine) setPaused(ctx context.Context, caller Identity, paused bool) error {
	subject, err := requireAdmin(caller)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.paused == paused {
		return nil
	}
	evt, err := event.New(0, event.TypeAdminPauseChanged, subject, e.clock(), event.PauseChanged{Paused: paused})
	if err != nil {
		return err
	}
	_, err = e.commit(ctx, evt)
	return err
}

func trimToken(tok string) (string, error) {
	trimmed := strings.TrimSpace(tok)
	if trimmed == "" {
		return "", match.ErrEmptyToken
	}
	return trimmed, nil
}
