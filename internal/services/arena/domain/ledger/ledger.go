// Package ledger tracks custodied token amounts per match. It is the
// only component allowed to change how much a match holds; everything
// else reads balances through it. Amounts are integer base units.
package ledger

import (
	apperrors "github.com/louisbranch/stakepot/internal/platform/errors"
)

// ErrEscrowInsufficient is returned when a release would exceed the
// amount a match currently holds for a token.
var ErrEscrowInsufficient = apperrors.New(apperrors.CodeEscrowInsufficient, "escrow balance too low")

// ErrAmountNotPositive is returned when a ledger movement is requested
// with a zero or negative amount.
var ErrAmountNotPositive = apperrors.New(apperrors.CodeAmountNotPositive, "amount must be positive")

// Ledger holds escrow balances keyed by match and token, plus a
// per-token treasury bucket where collected fees accumulate. It does
// no locking of its own; the engine serializes all access.
type Ledger struct {
	balances map[uint64]map[string]int64
	treasury map[string]int64
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{
		balances: make(map[uint64]map[string]int64),
		treasury: make(map[string]int64),
	}
}

// Deposit credits amount to the match's escrow bucket for token.
func (l *Ledger) Deposit(matchID uint64, token string, amount int64) error {
	if amount <= 0 {
		return ErrAmountNotPositive
	}
	bucket, ok := l.balances[matchID]
	if !ok {
		bucket = make(map[string]int64)
		l.balances[matchID] = bucket
	}
	bucket[token] += amount
	return nil
}

// Release debits amount from the match's escrow bucket for token. The
// bucket must already hold at least that much.
func (l *Ledger) Release(matchID uint64, token string, amount int64) error {
	if amount <= 0 {
		return ErrAmountNotPositive
	}
	bucket := l.balances[matchID]
	if bucket[token] < amount {
		return apperrors.WithMetadata(apperrors.CodeEscrowInsufficient, "escrow balance too low", map[string]string{
			"Token": token,
		})
	}
	bucket[token] -= amount
	return nil
}

// MoveToTreasury shifts amount from the match's escrow bucket into the
// per-token treasury. Fees collected at match completion land here.
func (l *Ledger) MoveToTreasury(matchID uint64, token string, amount int64) error {
	if amount <= 0 {
		return ErrAmountNotPositive
	}
	if err := l.Release(matchID, token, amount); err != nil {
		return err
	}
	l.treasury[token] += amount
	return nil
}

// Balance reports how much the match currently holds for token.
func (l *Ledger) Balance(matchID uint64, token string) int64 {
	return l.balances[matchID][token]
}

// TreasuryBalance reports the accumulated fees for token.
func (l *Ledger) TreasuryBalance(token string) int64 {
	return l.treasury[token]
}
