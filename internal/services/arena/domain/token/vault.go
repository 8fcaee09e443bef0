package token

import (
	"context"
	"sync"

	apperrors "github.com/louisbranch/stakepot/internal/platform/errors"
)

// Vault is an in-memory Gateway with custodial transfer semantics:
// pulling funds requires both balance and a standing approval, and
// both are debited together. It backs local deployments and tests.
type Vault struct {
	mu         sync.Mutex
	balances   map[string]map[string]int64
	allowances map[string]map[string]int64
	custody    map[string]int64
}

// NewVault returns an empty vault.
func NewVault() *Vault {
	return &Vault{
		balances:   make(map[string]map[string]int64),
		allowances: make(map[string]map[string]int64),
		custody:    make(map[string]int64),
	}
}

// Mint credits amount of token to the account.
func (v *Vault) Mint(token, account string, amount int64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.creditBalance(token, account, amount)
}

// Approve sets the amount of token the owner allows the vault to pull.
// It replaces any previous approval rather than adding to it.
func (v *Vault) Approve(token, owner string, amount int64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	byOwner, ok := v.allowances[token]
	if !ok {
		byOwner = make(map[string]int64)
		v.allowances[token] = byOwner
	}
	byOwner[owner] = amount
}

func (v *Vault) BalanceOf(ctx context.Context, token, account string) (int64, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.balances[token][account], nil
}

func (v *Vault) Allowance(ctx context.Context, token, owner string) (int64, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.allowances[token][owner], nil
}

func (v *Vault) TransferIn(ctx context.Context, token, owner string, amount int64) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.balances[token][owner] < amount {
		return apperrors.WithMetadata(apperrors.CodeFundsInsufficientBalance, "token balance too low", map[string]string{
			"Token": token,
		})
	}
	if v.allowances[token][owner] < amount {
		return apperrors.WithMetadata(apperrors.CodeFundsInsufficientAllowance, "token allowance too low", map[string]string{
			"Token": token,
		})
	}

	v.balances[token][owner] -= amount
	v.allowances[token][owner] -= amount
	v.custody[token] += amount
	return nil
}

func (v *Vault) TransferOut(ctx context.Context, token, account string, amount int64) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.custody[token] < amount {
		return apperrors.WithMetadata(apperrors.CodeFundsTransferFailed, "token transfer failed", map[string]string{
			"Token": token,
		})
	}

	v.custody[token] -= amount
	v.creditBalance(token, account, amount)
	return nil
}

// Custody reports how much of token the vault currently holds across
// all matches. Useful for conservation checks in tests.
func (v *Vault) Custody(token string) int64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.custody[token]
}

func (v *Vault) creditBalance(token, account string, amount int64) {
	byAccount, ok := v.balances[token]
	if !ok {
		byAccount = make(map[string]int64)
		v.balances[token] = byAccount
	}
	byAccount[account] += amount
}
