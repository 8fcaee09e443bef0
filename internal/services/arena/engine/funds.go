package engine

import (
	"context"

	log "github.com/sirupsen/logrus"

	apperrors "github.com/louisbranch/stakepot/internal/platform/errors"
	"github.com/louisbranch/stakepot/internal/services/arena/domain/event"
	"github.com/louisbranch/stakepot/internal/services/arena/domain/match"
)

// ClaimPrize pays one winner their share of a Completed match. The
// claim flag and escrow debit are finalized before the external
// transfer-out, so a re-entrant call observes the claim as already
// processed.
func (e *Engine) ClaimPrize(ctx context.Context, caller Identity, matchID uint64) (int64, error) {
	subject, err := requireCaller(caller)
	if err != nil {
		return 0, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	m, err := e.matchByID(matchID)
	if err != nil {
		return 0, err
	}
	if err := m.CanClaimPrize(subject); err != nil {
		return 0, err
	}

	amount := m.PerWinnerPrize
	if err := e.checkEscrowCovers(m, amount); err != nil {
		return 0, err
	}

	evt, err := event.New(m.ID, event.TypeEscrowPrizeClaimed, subject, e.clock(), event.PrizeClaimed{
		Player: subject,
		Token:  m.Token,
		Amount: amount,
	})
	if err != nil {
		return 0, err
	}
	if err := e.release(ctx, m, evt, subject, amount, event.CausePrizeClaim); err != nil {
		return 0, err
	}
	return amount, nil
}

// RefundEntryFee returns exactly the entry fee to a roster player of a
// Cancelled match, or of a Waiting match whose join deadline elapsed.
func (e *Engine) RefundEntryFee(ctx context.Context, caller Identity, matchID uint64) (int64, error) {
	subject, err := requireCaller(caller)
	if err != nil {
		return 0, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	m, err := e.matchByID(matchID)
	if err != nil {
		return 0, err
	}
	if err := m.CanRefund(subject, e.clock()); err != nil {
		return 0, err
	}

	amount := m.EntryFee
	if err := e.checkEscrowCovers(m, amount); err != nil {
		return 0, err
	}

	evt, err := event.New(m.ID, event.TypeEscrowRefunded, subject, e.clock(), event.Refunded{
		Player: subject,
		Token:  m.Token,
		Amount: amount,
	})
	if err != nil {
		return 0, err
	}
	if err := e.release(ctx, m, evt, subject, amount, event.CauseRefund); err != nil {
		return 0, err
	}
	return amount, nil
}

// release commits the release event (debiting escrow and setting the
// claim flag) and only then calls the external transfer-out. A failed
// transfer is compensated with a revert event that restores escrow,
// claim flag, and stats.
func (e *Engine) release(ctx context.Context, m *match.Match, evt event.Event, player string, amount int64, cause string) error {
	if _, err := e.commit(ctx, evt); err != nil {
		return err
	}
	if amount <= 0 {
		return nil
	}

	transferErr := e.gateway.TransferOut(ctx, m.Token, player, amount)
	if transferErr == nil {
		return nil
	}

	revert, err := event.New(m.ID, event.TypeEscrowReleaseReverted, player, e.clock(), event.ReleaseReverted{
		Player: player,
		Token:  m.Token,
		Amount: amount,
		Cause:  cause,
	})
	if err == nil {
		_, err = e.commit(ctx, revert)
	}
	if err != nil {
		// The journal now records a release that never paid out and
		// could not be reverted. Surface loudly; an operator has to
		// reconcile.
		log.WithFields(log.Fields{
			"match":  m.ID,
			"player": player,
			"amount": amount,
		}).Errorf("engine: release revert failed after transfer failure: %v", err)
	}
	return gatewayError(transferErr)
}

func (e *Engine) checkEscrowCovers(m *match.Match, amount int64) error {
	if amount <= 0 {
		return nil
	}
	if e.ledger.Balance(m.ID, m.Token) < amount {
		return apperrors.WithMetadata(apperrors.CodeEscrowInsufficient, "escrow balance too low", map[string]string{
			"Token": m.Token,
		})
	}
	return nil
}
