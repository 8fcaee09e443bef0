package ledger

import (
	"errors"
	"testing"
)

func TestDepositAndRelease(t *testing.T) {
	l := New()

	if err := l.Deposit(1, "QZT", 30); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if got := l.Balance(1, "QZT"); got != 30 {
		t.Fatalf("balance = %d, want 30", got)
	}

	if err := l.Release(1, "QZT", 19); err != nil {
		t.Fatalf("release: %v", err)
	}
	if got := l.Balance(1, "QZT"); got != 11 {
		t.Fatalf("balance after release = %d, want 11", got)
	}
}

func TestReleaseRejectsOverdraw(t *testing.T) {
	l := New()
	if err := l.Deposit(1, "QZT", 10); err != nil {
		t.Fatalf("deposit: %v", err)
	}

	err := l.Release(1, "QZT", 11)
	if !errors.Is(err, ErrEscrowInsufficient) {
		t.Fatalf("Release(overdraw) error = %v, want %v", err, ErrEscrowInsufficient)
	}
	if got := l.Balance(1, "QZT"); got != 10 {
		t.Fatalf("failed release mutated balance: %d", got)
	}
}

func TestBucketsAreIsolatedByMatchAndToken(t *testing.T) {
	l := New()
	if err := l.Deposit(1, "QZT", 10); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if err := l.Deposit(1, "GLD", 5); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if err := l.Deposit(2, "QZT", 7); err != nil {
		t.Fatalf("deposit: %v", err)
	}

	if err := l.Release(2, "QZT", 10); !errors.Is(err, ErrEscrowInsufficient) {
		t.Fatalf("release across matches = %v, want %v", err, ErrEscrowInsufficient)
	}
	if err := l.Release(1, "GLD", 6); !errors.Is(err, ErrEscrowInsufficient) {
		t.Fatalf("release across tokens = %v, want %v", err, ErrEscrowInsufficient)
	}
	if got := l.Balance(1, "QZT"); got != 10 {
		t.Fatalf("balance(1, QZT) = %d, want 10", got)
	}
}

func TestMoveToTreasury(t *testing.T) {
	l := New()
	if err := l.Deposit(1, "QZT", 40); err != nil {
		t.Fatalf("deposit: %v", err)
	}

	if err := l.MoveToTreasury(1, "QZT", 2); err != nil {
		t.Fatalf("move to treasury: %v", err)
	}
	if got := l.Balance(1, "QZT"); got != 38 {
		t.Fatalf("escrow after fee = %d, want 38", got)
	}
	if got := l.TreasuryBalance("QZT"); got != 2 {
		t.Fatalf("treasury = %d, want 2", got)
	}

	if err := l.MoveToTreasury(1, "QZT", 100); !errors.Is(err, ErrEscrowInsufficient) {
		t.Fatalf("MoveToTreasury(overdraw) error = %v, want %v", err, ErrEscrowInsufficient)
	}
	if got := l.TreasuryBalance("QZT"); got != 2 {
		t.Fatalf("failed move mutated treasury: %d", got)
	}
}

func TestMovementsRequirePositiveAmounts(t *testing.T) {
	l := New()

	if err := l.Deposit(1, "QZT", 0); !errors.Is(err, ErrAmountNotPositive) {
		t.Fatalf("Deposit(0) error = %v, want %v", err, ErrAmountNotPositive)
	}
	if err := l.Release(1, "QZT", -1); !errors.Is(err, ErrAmountNotPositive) {
		t.Fatalf("Release(-1) error = %v, want %v", err, ErrAmountNotPositive)
	}
}
