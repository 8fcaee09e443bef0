package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "github.com/louisbranch/stakepot/internal/platform/errors"
	"github.com/louisbranch/stakepot/internal/services/arena/domain/match"
	"github.com/louisbranch/stakepot/internal/services/arena/domain/token"
)

// Two players stake 10 each on five questions; the higher scorer takes
// the pool minus the platform cut, the loser gets nothing and has no
// refund path.
func TestSoleWinnerTakesPoolMinusFee(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()

	id := rig.createTwoPlayerMatch(t, 10)
	questions := []string{"q1", "q2", "q3", "q4", "q5"}
	if _, err := rig.engine.StartMatch(ctx, admin(), id, questions); err != nil {
		t.Fatalf("StartMatch() error = %v", err)
	}

	key := []int{0, 1, 2, 3, 0}
	for i, answer := range []int{0, 1, 2, 0, 1} { // 3 of 5 correct
		if err := rig.engine.SubmitAnswer(ctx, player("alice"), id, questions[i], answer); err != nil {
			t.Fatalf("SubmitAnswer(alice, %s) error = %v", questions[i], err)
		}
	}
	for i, answer := range []int{0, 1, 3, 2, 3} { // 2 of 5 correct
		if err := rig.engine.SubmitAnswer(ctx, player("bob"), id, questions[i], answer); err != nil {
			t.Fatalf("SubmitAnswer(bob, %s) error = %v", questions[i], err)
		}
	}

	view, err := rig.engine.EndMatch(ctx, admin(), id, questions, key)
	if err != nil {
		t.Fatalf("EndMatch() error = %v", err)
	}

	if view.Status != match.StatusCompleted.String() {
		t.Fatalf("Status = %q, want %q", view.Status, match.StatusCompleted)
	}
	if view.Scores["alice"] != 3 || view.Scores["bob"] != 2 {
		t.Fatalf("Scores = %v, want alice 3 bob 2", view.Scores)
	}
	if len(view.Winners) != 1 || view.Winners[0] != "alice" {
		t.Fatalf("Winners = %v, want [alice]", view.Winners)
	}
	// Pool 20 at the default 5%: fee 1, sole winner takes 19.
	if view.FeeAmount != 1 || view.PerWinnerPrize != 19 || view.Remainder != 0 {
		t.Fatalf("fee/per/remainder = %d/%d/%d, want 1/19/0", view.FeeAmount, view.PerWinnerPrize, view.Remainder)
	}

	amount, err := rig.engine.ClaimPrize(ctx, player("alice"), id)
	if err != nil {
		t.Fatalf("ClaimPrize() error = %v", err)
	}
	if amount != 19 {
		t.Fatalf("claimed = %d, want 19", amount)
	}
	balance, err := rig.vault.BalanceOf(ctx, testToken, "alice")
	if err != nil {
		t.Fatalf("BalanceOf() error = %v", err)
	}
	if balance != 1009 {
		t.Fatalf("alice balance = %d, want 1009", balance)
	}

	// The loser can neither claim nor refund a completed match.
	if _, err := rig.engine.ClaimPrize(ctx, player("bob"), id); !errors.Is(err, match.ErrPlayerNotWinner) {
		t.Fatalf("ClaimPrize(bob) error = %v, want %v", err, match.ErrPlayerNotWinner)
	}
	if _, err := rig.engine.RefundEntryFee(ctx, player("bob"), id); apperrors.CodeOf(err) != apperrors.CodeMatchStatusDisallowsOp {
		t.Fatalf("RefundEntryFee(bob) error = %v, want status rejection", err)
	}

	// Conservation: the fee sits in the treasury, escrow is empty.
	escrow, err := rig.engine.EscrowBalance(ctx, id)
	if err != nil {
		t.Fatalf("EscrowBalance() error = %v", err)
	}
	treasury, err := rig.engine.TreasuryBalance(ctx, admin(), testToken)
	if err != nil {
		t.Fatalf("TreasuryBalance() error = %v", err)
	}
	if escrow != 0 || treasury != 1 {
		t.Fatalf("escrow/treasury = %d/%d, want 0/1", escrow, treasury)
	}
	if custody := rig.vault.Custody(testToken); custody != escrow+treasury {
		t.Fatalf("custody = %d, want %d", custody, escrow+treasury)
	}
}

// Four players, two tied at the top: both take an equal integer share
// and the division dust stays in escrow with no release path.
func TestTiedWinnersSplitPoolAndDustStaysInEscrow(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()

	// 3% of the 40 pool is 1, leaving 39 for two winners: 19 each plus
	// a remainder of 1.
	if err := rig.engine.SetFeePercent(ctx, admin(), 3); err != nil {
		t.Fatalf("SetFeePercent() error = %v", err)
	}

	view, err := rig.engine.CreateMatch(ctx, player("alice"), CreateMatchInput{
		Token:      testToken,
		EntryFee:   10,
		MaxPlayers: 4,
	})
	if err != nil {
		t.Fatalf("CreateMatch() error = %v", err)
	}
	id := view.ID
	for _, name := range []string{"bob", "carol", "dave"} {
		if _, err := rig.engine.JoinMatch(ctx, player(name), id); err != nil {
			t.Fatalf("JoinMatch(%s) error = %v", name, err)
		}
	}

	questions := []string{"q1", "q2"}
	if _, err := rig.engine.StartMatch(ctx, admin(), id, questions); err != nil {
		t.Fatalf("StartMatch() error = %v", err)
	}

	key := []int{1, 1}
	answers := map[string][]int{
		"alice": {1, 1},
		"bob":   {1, 1},
		"carol": {1, 0},
		"dave":  {0, 0},
	}
	for name, choices := range answers {
		for i, answer := range choices {
			if err := rig.engine.SubmitAnswer(ctx, player(name), id, questions[i], answer); err != nil {
				t.Fatalf("SubmitAnswer(%s) error = %v", name, err)
			}
		}
	}

	completed, err := rig.engine.EndMatch(ctx, admin(), id, questions, key)
	if err != nil {
		t.Fatalf("EndMatch() error = %v", err)
	}
	if len(completed.Winners) != 2 {
		t.Fatalf("Winners = %v, want alice and bob", completed.Winners)
	}
	if completed.FeeAmount != 1 || completed.PerWinnerPrize != 19 || completed.Remainder != 1 {
		t.Fatalf("fee/per/remainder = %d/%d/%d, want 1/19/1", completed.FeeAmount, completed.PerWinnerPrize, completed.Remainder)
	}

	for _, winner := range []string{"alice", "bob"} {
		amount, err := rig.engine.ClaimPrize(ctx, player(winner), id)
		if err != nil {
			t.Fatalf("ClaimPrize(%s) error = %v", winner, err)
		}
		if amount != 19 {
			t.Fatalf("ClaimPrize(%s) = %d, want 19", winner, amount)
		}
	}

	// Both winners paid; the dust remains custodied forever.
	escrow, err := rig.engine.EscrowBalance(ctx, id)
	if err != nil {
		t.Fatalf("EscrowBalance() error = %v", err)
	}
	if escrow != 1 {
		t.Fatalf("escrow = %d, want the remainder 1", escrow)
	}
	if custody := rig.vault.Custody(testToken); custody != 2 { // remainder + fee
		t.Fatalf("custody = %d, want 2", custody)
	}
}

// A cancelled Waiting match refunds each player exactly the entry fee,
// once.
func TestCancelledMatchRefundsEachPlayerOnce(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()

	id := rig.createTwoPlayerMatch(t, 10)
	if _, err := rig.engine.CancelMatch(ctx, admin(), id, "weather"); err != nil {
		t.Fatalf("CancelMatch() error = %v", err)
	}

	for _, name := range []string{"alice", "bob"} {
		amount, err := rig.engine.RefundEntryFee(ctx, player(name), id)
		if err != nil {
			t.Fatalf("RefundEntryFee(%s) error = %v", name, err)
		}
		if amount != 10 {
			t.Fatalf("RefundEntryFee(%s) = %d, want 10", name, amount)
		}
		balance, err := rig.vault.BalanceOf(ctx, testToken, name)
		if err != nil {
			t.Fatalf("BalanceOf() error = %v", err)
		}
		if balance != 1000 {
			t.Fatalf("%s balance = %d, want 1000", name, balance)
		}
	}

	// The claim flag makes a second refund fail without moving funds.
	if _, err := rig.engine.RefundEntryFee(ctx, player("alice"), id); !errors.Is(err, match.ErrClaimAlreadyProcessed) {
		t.Fatalf("second RefundEntryFee() error = %v, want %v", err, match.ErrClaimAlreadyProcessed)
	}
	if custody := rig.vault.Custody(testToken); custody != 0 {
		t.Fatalf("custody = %d, want 0", custody)
	}

	// Refunds never count as wins or earnings.
	stats, err := rig.engine.PlayerStats(ctx, "alice")
	if err != nil {
		t.Fatalf("PlayerStats() error = %v", err)
	}
	if stats.Wins != 0 || stats.TotalEarnings != 0 {
		t.Fatalf("stats = %+v, want zeroes after refund", stats)
	}
}

// Joining a full match is rejected before any funds move.
func TestJoinFullMatchMovesNoFunds(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()

	id := rig.createTwoPlayerMatch(t, 10)

	_, err := rig.engine.JoinMatch(ctx, player("carol"), id)
	if !errors.Is(err, match.ErrMatchFull) {
		t.Fatalf("JoinMatch() error = %v, want %v", err, match.ErrMatchFull)
	}

	balance, err := rig.vault.BalanceOf(ctx, testToken, "carol")
	if err != nil {
		t.Fatalf("BalanceOf() error = %v", err)
	}
	if balance != 1000 {
		t.Fatalf("carol balance = %d, want 1000", balance)
	}
	if custody := rig.vault.Custody(testToken); custody != 20 {
		t.Fatalf("custody = %d, want 20", custody)
	}
}

// An answer key that does not match the recorded question count is
// rejected with no state change; a correct key still works afterwards.
func TestEndMatchRejectsShortAnswerKey(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()

	id := rig.createTwoPlayerMatch(t, 10)
	questions := rig.startMatch(t, id)

	_, err := rig.engine.EndMatch(ctx, admin(), id, questions, []int{0, 1})
	if apperrors.CodeOf(err) != apperrors.CodeMatchAnswerKeyMismatch {
		t.Fatalf("EndMatch() error = %v, want answer key mismatch", err)
	}

	view, err := rig.engine.MatchDetails(ctx, id)
	if err != nil {
		t.Fatalf("MatchDetails() error = %v", err)
	}
	if view.Status != match.StatusActive.String() {
		t.Fatalf("Status = %q, want %q", view.Status, match.StatusActive)
	}
	if view.Scores != nil {
		t.Fatalf("Scores = %v, want nil", view.Scores)
	}

	if _, err := rig.engine.EndMatch(ctx, admin(), id, questions, []int{0, 1, 2}); err != nil {
		t.Fatalf("EndMatch() with full key error = %v", err)
	}
}

// A second claim for the same player always fails without moving funds.
func TestClaimPrizeIsOneShot(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()

	id := rig.completeMatchWithAliceWinning(t)

	if _, err := rig.engine.ClaimPrize(ctx, player("alice"), id); err != nil {
		t.Fatalf("ClaimPrize() error = %v", err)
	}
	balance, err := rig.vault.BalanceOf(ctx, testToken, "alice")
	if err != nil {
		t.Fatalf("BalanceOf() error = %v", err)
	}

	if _, err := rig.engine.ClaimPrize(ctx, player("alice"), id); !errors.Is(err, match.ErrClaimAlreadyProcessed) {
		t.Fatalf("second ClaimPrize() error = %v, want %v", err, match.ErrClaimAlreadyProcessed)
	}
	after, err := rig.vault.BalanceOf(ctx, testToken, "alice")
	if err != nil {
		t.Fatalf("BalanceOf() error = %v", err)
	}
	if after != balance {
		t.Fatalf("balance moved from %d to %d on a rejected claim", balance, after)
	}
}

// completeMatchWithAliceWinning runs a 2-player match where alice
// answers the single question correctly and bob does not.
func (r *testRig) completeMatchWithAliceWinning(t *testing.T) uint64 {
	t.Helper()
	ctx := context.Background()

	id := r.createTwoPlayerMatch(t, 10)
	questions := []string{"q1"}
	if _, err := r.engine.StartMatch(ctx, admin(), id, questions); err != nil {
		t.Fatalf("StartMatch() error = %v", err)
	}
	if err := r.engine.SubmitAnswer(ctx, player("alice"), id, "q1", 2); err != nil {
		t.Fatalf("SubmitAnswer(alice) error = %v", err)
	}
	if err := r.engine.SubmitAnswer(ctx, player("bob"), id, "q1", 1); err != nil {
		t.Fatalf("SubmitAnswer(bob) error = %v", err)
	}
	if _, err := r.engine.EndMatch(ctx, admin(), id, questions, []int{2}); err != nil {
		t.Fatalf("EndMatch() error = %v", err)
	}
	return id
}

// A failed payout transfer rolls the claim back: flag cleared, escrow
// restored, stats reverted, and the claim can be retried.
func TestClaimPrizeRevertsOnTransferFailure(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()

	id := rig.completeMatchWithAliceWinning(t)
	escrowBefore, err := rig.engine.EscrowBalance(ctx, id)
	if err != nil {
		t.Fatalf("EscrowBalance() error = %v", err)
	}

	rig.gateway.failTransferOut = true
	_, err = rig.engine.ClaimPrize(ctx, player("alice"), id)
	if apperrors.CodeOf(err) != apperrors.CodeFundsTransferFailed {
		t.Fatalf("ClaimPrize() error = %v, want transfer failure", err)
	}

	escrowAfter, err := rig.engine.EscrowBalance(ctx, id)
	if err != nil {
		t.Fatalf("EscrowBalance() error = %v", err)
	}
	if escrowAfter != escrowBefore {
		t.Fatalf("escrow = %d after failed claim, want %d", escrowAfter, escrowBefore)
	}
	view, err := rig.engine.MatchDetails(ctx, id)
	if err != nil {
		t.Fatalf("MatchDetails() error = %v", err)
	}
	if view.Claims["alice"] {
		t.Fatal("claim flag still set after failed transfer")
	}
	stats, err := rig.engine.PlayerStats(ctx, "alice")
	if err != nil {
		t.Fatalf("PlayerStats() error = %v", err)
	}
	if stats.Wins != 0 || stats.TotalEarnings != 0 {
		t.Fatalf("stats = %+v, want reverted to zero", stats)
	}

	// Once the gateway recovers the claim goes through.
	rig.gateway.failTransferOut = false
	amount, err := rig.engine.ClaimPrize(ctx, player("alice"), id)
	if err != nil {
		t.Fatalf("retried ClaimPrize() error = %v", err)
	}
	if amount != 19 {
		t.Fatalf("claimed = %d, want 19", amount)
	}
	stats, err = rig.engine.PlayerStats(ctx, "alice")
	if err != nil {
		t.Fatalf("PlayerStats() error = %v", err)
	}
	if stats.Wins != 1 || stats.TotalEarnings != 19 || stats.EarningsByToken[testToken] != 19 {
		t.Fatalf("stats = %+v, want one win of 19", stats)
	}
}

// Stats move only when a prize claim succeeds, not at completion.
func TestStatsAccrueOnlyOnClaim(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()

	id := rig.completeMatchWithAliceWinning(t)

	stats, err := rig.engine.PlayerStats(ctx, "alice")
	if err != nil {
		t.Fatalf("PlayerStats() error = %v", err)
	}
	if stats.Wins != 0 || stats.MatchesPlayed != 0 {
		t.Fatalf("stats before claim = %+v, want zeroes", stats)
	}

	if _, err := rig.engine.ClaimPrize(ctx, player("alice"), id); err != nil {
		t.Fatalf("ClaimPrize() error = %v", err)
	}

	stats, err = rig.engine.PlayerStats(ctx, "alice")
	if err != nil {
		t.Fatalf("PlayerStats() error = %v", err)
	}
	if stats.Wins != 1 || stats.MatchesPlayed != 1 || stats.TotalEarnings != 19 {
		t.Fatalf("stats after claim = %+v, want one win of 19", stats)
	}

	// The losing player accrues nothing either way.
	lost, err := rig.engine.PlayerStats(ctx, "bob")
	if err != nil {
		t.Fatalf("PlayerStats() error = %v", err)
	}
	if lost.Wins != 0 || lost.MatchesPlayed != 0 || lost.TotalEarnings != 0 {
		t.Fatalf("loser stats = %+v, want zeroes", lost)
	}
}

// An unfilled Waiting match past its join deadline stays Waiting; the
// deadline only unlocks refunds, evaluated at call time.
func TestExpiredWaitingMatchAllowsRefundWithoutStatusChange(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()

	view, err := rig.engine.CreateMatch(ctx, player("alice"), CreateMatchInput{
		Token:      testToken,
		EntryFee:   10,
		MaxPlayers: 2,
	})
	if err != nil {
		t.Fatalf("CreateMatch() error = %v", err)
	}

	// Too early: the join window is still open.
	if _, err := rig.engine.RefundEntryFee(ctx, player("alice"), view.ID); !errors.Is(err, match.ErrMatchNotRefundable) {
		t.Fatalf("RefundEntryFee() error = %v, want %v", err, match.ErrMatchNotRefundable)
	}

	rig.clock.Advance(11 * time.Minute)

	amount, err := rig.engine.RefundEntryFee(ctx, player("alice"), view.ID)
	if err != nil {
		t.Fatalf("RefundEntryFee() after deadline error = %v", err)
	}
	if amount != 10 {
		t.Fatalf("refunded = %d, want 10", amount)
	}

	after, err := rig.engine.MatchDetails(ctx, view.ID)
	if err != nil {
		t.Fatalf("MatchDetails() error = %v", err)
	}
	if after.Status != match.StatusWaiting.String() {
		t.Fatalf("Status = %q, want still %q", after.Status, match.StatusWaiting)
	}
}

// Pausing blocks new fund commitments only; running matches finish and
// players can always pull their money out.
func TestPauseBlocksOnlyNewCommitments(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()

	id := rig.createTwoPlayerMatch(t, 10)

	if err := rig.engine.Pause(ctx, admin()); err != nil {
		t.Fatalf("Pause() error = %v", err)
	}

	_, err := rig.engine.CreateMatch(ctx, player("carol"), CreateMatchInput{
		Token:      testToken,
		EntryFee:   10,
		MaxPlayers: 2,
	})
	if !errors.Is(err, ErrEnginePaused) {
		t.Fatalf("CreateMatch() while paused error = %v, want %v", err, ErrEnginePaused)
	}

	// The running match still plays out and pays out while paused.
	questions := rig.startMatch(t, id)
	if err := rig.engine.SubmitAnswer(ctx, player("alice"), id, questions[0], 1); err != nil {
		t.Fatalf("SubmitAnswer() while paused error = %v", err)
	}
	if _, err := rig.engine.EndMatch(ctx, admin(), id, questions, []int{1, 0, 0}); err != nil {
		t.Fatalf("EndMatch() while paused error = %v", err)
	}
	if _, err := rig.engine.ClaimPrize(ctx, player("alice"), id); err != nil {
		t.Fatalf("ClaimPrize() while paused error = %v", err)
	}

	if err := rig.engine.Unpause(ctx, admin()); err != nil {
		t.Fatalf("Unpause() error = %v", err)
	}
	if _, err := rig.engine.CreateMatch(ctx, player("carol"), CreateMatchInput{
		Token:      testToken,
		EntryFee:   10,
		MaxPlayers: 2,
	}); err != nil {
		t.Fatalf("CreateMatch() after unpause error = %v", err)
	}
}

// Claiming keeps the vault conserved: custody always equals escrow plus
// treasury across the whole arena.
func TestCustodyConservationAcrossLifecycles(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()

	completed := rig.completeMatchWithAliceWinning(t)
	if _, err := rig.engine.ClaimPrize(ctx, player("alice"), completed); err != nil {
		t.Fatalf("ClaimPrize() error = %v", err)
	}

	cancelled := rig.createTwoPlayerMatch(t, 25)
	if _, err := rig.engine.CancelMatch(ctx, admin(), cancelled, ""); err != nil {
		t.Fatalf("CancelMatch() error = %v", err)
	}
	if _, err := rig.engine.RefundEntryFee(ctx, player("alice"), cancelled); err != nil {
		t.Fatalf("RefundEntryFee() error = %v", err)
	}

	var inLedger int64
	for _, id := range []uint64{completed, cancelled} {
		escrow, err := rig.engine.EscrowBalance(ctx, id)
		if err != nil {
			t.Fatalf("EscrowBalance(%d) error = %v", id, err)
		}
		inLedger += escrow
	}
	treasury, err := rig.engine.TreasuryBalance(ctx, admin(), testToken)
	if err != nil {
		t.Fatalf("TreasuryBalance() error = %v", err)
	}

	if custody := rig.vault.Custody(testToken); custody != inLedger+treasury {
		t.Fatalf("custody = %d, want escrow %d + treasury %d", custody, inLedger, treasury)
	}
}

// Refusing a claim when the gateway reports an unknown token error
// keeps domain codes intact.
func TestGatewayErrorsKeepTheirCodes(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()

	// dave approved only 5: transfer-in for a 10 fee fails with the
	// allowance code from the vault, not a generic transfer failure.
	rig.vault.Approve(testToken, "dave", 5)
	_, err := rig.engine.CreateMatch(ctx, player("dave"), CreateMatchInput{
		Token:      testToken,
		EntryFee:   10,
		MaxPlayers: 2,
	})
	if !errors.Is(err, token.ErrInsufficientAllowance) {
		t.Fatalf("CreateMatch() error = %v, want %v", err, token.ErrInsufficientAllowance)
	}
}
