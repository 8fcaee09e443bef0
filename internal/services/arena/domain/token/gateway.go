// Package token defines the boundary to external token systems. The
// engine owns no balances itself; every deposit and payout crosses a
// Gateway, and each call either fully succeeds or leaves balances
// untouched.
package token

import (
	"context"

	apperrors "github.com/louisbranch/stakepot/internal/platform/errors"
)

// ErrInsufficientBalance is returned when an account does not hold
// enough of a token to cover a transfer.
var ErrInsufficientBalance = apperrors.New(apperrors.CodeFundsInsufficientBalance, "token balance too low")

// ErrInsufficientAllowance is returned when an account has not
// approved the custodian for the requested amount.
var ErrInsufficientAllowance = apperrors.New(apperrors.CodeFundsInsufficientAllowance, "token allowance too low")

// ErrTransferFailed is returned when the token system rejects or
// cannot complete a transfer for reasons other than the caller's
// balance or allowance.
var ErrTransferFailed = apperrors.New(apperrors.CodeFundsTransferFailed, "token transfer failed")

// Gateway moves tokens between player accounts and the engine's
// custody. Implementations must be all-or-nothing per call.
type Gateway interface {
	// BalanceOf reports how much of token the account holds.
	BalanceOf(ctx context.Context, token, account string) (int64, error)

	// Allowance reports how much of token the owner has approved the
	// custodian to pull.
	Allowance(ctx context.Context, token, owner string) (int64, error)

	// TransferIn pulls amount of token from the owner's account into
	// custody, consuming allowance.
	TransferIn(ctx context.Context, token, owner string, amount int64) error

	// TransferOut pushes amount of token from custody to the account.
	TransferOut(ctx context.Context, token, account string, amount int64) error
}
