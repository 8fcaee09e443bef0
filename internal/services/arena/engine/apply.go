package engine

import (
	"fmt"

	"github.com/louisbranch/stakepot/internal/services/arena/domain/event"
	"github.com/louisbranch/stakepot/internal/services/arena/domain/match"
)

// apply writes one journal event into memory. Live commits and journal
// replay both come through here, so the two paths cannot diverge.
// Policy checks (allow-list, limits, minimum fee, pause) ran when the
// event was first accepted and are not repeated.
func (e *Engine) apply(evt event.Event) error {
	var err error
	switch evt.Type {
	case event.TypeMatchCreated:
		err = e.applyMatchCreated(evt)
	case event.TypeMatchPlayerJoined:
		err = e.applyPlayerJoined(evt)
	case event.TypeMatchStarted:
		err = e.applyMatchStarted(evt)
	case event.TypeMatchAnswerSubmitted:
		err = e.applyAnswerSubmitted(evt)
	case event.TypeMatchCompleted:
		err = e.applyMatchCompleted(evt)
	case event.TypeMatchCancelled:
		err = e.applyMatchCancelled(evt)
	case event.TypeEscrowPrizeClaimed:
		err = e.applyPrizeClaimed(evt)
	case event.TypeEscrowRefunded:
		err = e.applyRefunded(evt)
	case event.TypeEscrowReleaseReverted:
		err = e.applyReleaseReverted(evt)
	case event.TypeAdminTokenAdded:
		err = e.applyTokenAdded(evt)
	case event.TypeAdminTokenRemoved:
		err = e.applyTokenRemoved(evt)
	case event.TypeAdminFeeUpdated:
		err = e.applyFeeUpdated(evt)
	case event.TypeAdminMatchLimitUpdated:
		err = e.applyMatchLimitUpdated(evt)
	case event.TypeAdminPauseChanged:
		err = e.applyPauseChanged(evt)
	default:
		err = fmt.Errorf("unknown event type %q", evt.Type)
	}
	if err != nil {
		return fmt.Errorf("apply %s (seq %d): %w", evt.Type, evt.Seq, err)
	}
	e.lastSeq = evt.Seq
	return nil
}

func (e *Engine) applyMatchCreated(evt event.Event) error {
	payload, err := event.Decode[event.MatchCreated](evt)
	if err != nil {
		return err
	}
	m, err := match.Create(match.CreateInput{
		ID:       evt.MatchID,
		Token:    payload.Token,
		EntryFee: payload.EntryFee,
		// The configured minimum applied at acceptance time; rebuilding
		// must not re-judge old matches against today's policy.
		MinEntryFee: 0,
		MaxPlayers:  payload.MaxPlayers,
		Creator:     payload.Creator,
		OptionCount: payload.OptionCount,
		Now:         evt.Timestamp,
		JoinWindow:  payload.JoinDeadline.Sub(evt.Timestamp),
	})
	if err != nil {
		return err
	}
	e.matches[m.ID] = m
	if err := e.ledger.Deposit(m.ID, m.Token, payload.EntryFee); err != nil {
		return err
	}
	if m.ID > e.lastMatchID {
		e.lastMatchID = m.ID
	}
	return nil
}

func (e *Engine) applyPlayerJoined(evt event.Event) error {
	payload, err := event.Decode[event.PlayerJoined](evt)
	if err != nil {
		return err
	}
	m, err := e.matchByID(evt.MatchID)
	if err != nil {
		return err
	}
	if err := m.AddPlayer(payload.Player, evt.Timestamp); err != nil {
		return err
	}
	return e.ledger.Deposit(m.ID, m.Token, payload.EntryFee)
}

func (e *Engine) applyMatchStarted(evt event.Event) error {
	payload, err := event.Decode[event.MatchStarted](evt)
	if err != nil {
		return err
	}
	m, err := e.matchByID(evt.MatchID)
	if err != nil {
		return err
	}
	return m.Start(payload.Questions, evt.Timestamp, payload.EndsAt)
}

func (e *Engine) applyAnswerSubmitted(evt event.Event) error {
	payload, err := event.Decode[event.AnswerSubmitted](evt)
	if err != nil {
		return err
	}
	m, err := e.matchByID(evt.MatchID)
	if err != nil {
		return err
	}
	return m.SubmitAnswer(payload.Player, payload.Question, payload.Answer, evt.Timestamp)
}

func (e *Engine) applyMatchCompleted(evt event.Event) error {
	payload, err := event.Decode[event.MatchCompleted](evt)
	if err != nil {
		return err
	}
	m, err := e.matchByID(evt.MatchID)
	if err != nil {
		return err
	}
	outcome, err := m.Complete(payload.Questions, payload.AnswerKey, payload.FeePercent, evt.Timestamp)
	if err != nil {
		return err
	}
	if outcome.FeeAmount > 0 {
		return e.ledger.MoveToTreasury(m.ID, m.Token, outcome.FeeAmount)
	}
	return nil
}

func (e *Engine) applyMatchCancelled(evt event.Event) error {
	m, err := e.matchByID(evt.MatchID)
	if err != nil {
		return err
	}
	return m.Cancel(evt.Timestamp)
}

func (e *Engine) applyPrizeClaimed(evt event.Event) error {
	payload, err := event.Decode[event.PrizeClaimed](evt)
	if err != nil {
		return err
	}
	m, err := e.matchByID(evt.MatchID)
	if err != nil {
		return err
	}
	if err := m.MarkClaimed(payload.Player); err != nil {
		return err
	}
	if payload.Amount > 0 {
		if err := e.ledger.Release(m.ID, m.Token, payload.Amount); err != nil {
			return err
		}
	}
	e.statsFor(payload.Player).RecordPrize(payload.Token, payload.Amount)
	return nil
}

func (e *Engine) applyRefunded(evt event.Event) error {
	payload, err := event.Decode[event.Refunded](evt)
	if err != nil {
		return err
	}
	m, err := e.matchByID(evt.MatchID)
	if err != nil {
		return err
	}
	if err := m.MarkClaimed(payload.Player); err != nil {
		return err
	}
	// Refunds do not touch player stats; only prize claims do.
	return e.ledger.Release(m.ID, m.Token, payload.Amount)
}

func (e *Engine) applyReleaseReverted(evt event.Event) error {
	payload, err := event.Decode[event.ReleaseReverted](evt)
	if err != nil {
		return err
	}
	m, err := e.matchByID(evt.MatchID)
	if err != nil {
		return err
	}
	m.ClearClaim(payload.Player)
	if payload.Amount > 0 {
		if err := e.ledger.Deposit(m.ID, m.Token, payload.Amount); err != nil {
			return err
		}
	}
	if payload.Cause == event.CausePrizeClaim {
		e.statsFor(payload.Player).RevertPrize(payload.Token, payload.Amount)
	}
	return nil
}

func (e *Engine) applyTokenAdded(evt event.Event) error {
	payload, err := event.Decode[event.TokenAdded](evt)
	if err != nil {
		return err
	}
	e.tokens[payload.Token] = true
	return nil
}

func (e *Engine) applyTokenRemoved(evt event.Event) error {
	payload, err := event.Decode[event.TokenRemoved](evt)
	if err != nil {
		return err
	}
	delete(e.tokens, payload.Token)
	return nil
}

func (e *Engine) applyFeeUpdated(evt event.Event) error {
	payload, err := event.Decode[event.FeeUpdated](evt)
	if err != nil {
		return err
	}
	e.feePercent = payload.Percent
	return nil
}

func (e *Engine) applyMatchLimitUpdated(evt event.Event) error {
	payload, err := event.Decode[event.MatchLimitUpdated](evt)
	if err != nil {
		return err
	}
	e.maxMatchesPerPlayer = payload.Limit
	return nil
}

func (e *Engine) applyPauseChanged(evt event.Event) error {
	payload, err := event.Decode[event.PauseChanged](evt)
	if err != nil {
		return err
	}
	e.paused = payload.Paused
	return nil
}
