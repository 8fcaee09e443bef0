package event

import "time"

// MatchCreated is the payload for TypeMatchCreated. The creator's
// entry fee is already in escrow when this event lands.
type MatchCreated struct {
	Token        string    `json:"token"`
	EntryFee     int64     `json:"entry_fee"`
	MaxPlayers   int       `json:"max_players"`
	Creator      string    `json:"creator"`
	OptionCount  int       `json:"option_count"`
	JoinDeadline time.Time `json:"join_deadline"`
}

// PlayerJoined is the payload for TypeMatchPlayerJoined.
type PlayerJoined struct {
	Player   string `json:"player"`
	EntryFee int64  `json:"entry_fee"`
}

// MatchStarted is the payload for TypeMatchStarted.
type MatchStarted struct {
	Questions []string  `json:"questions"`
	EndsAt    time.Time `json:"ends_at"`
}

// AnswerSubmitted is the payload for TypeMatchAnswerSubmitted.
type AnswerSubmitted struct {
	Player   string `json:"player"`
	Question string `json:"question"`
	Answer   int    `json:"answer"`
}

// MatchCompleted is the payload for TypeMatchCompleted. Questions,
// AnswerKey, and FeePercent are the scoring inputs; the rest are the
// computed results, carried for consumers that do not replay.
type MatchCompleted struct {
	Questions  []string       `json:"questions"`
	AnswerKey  []int          `json:"answer_key"`
	FeePercent int            `json:"fee_percent"`
	Scores     map[string]int `json:"scores"`
	Winners    []string       `json:"winners"`
	MaxScore   int            `json:"max_score"`
	FeeAmount  int64          `json:"fee_amount"`
	PerWinner  int64          `json:"per_winner"`
	Remainder  int64          `json:"remainder"`
}

// MatchCancelled is the payload for TypeMatchCancelled.
type MatchCancelled struct {
	Reason string `json:"reason,omitempty"`
}

// PrizeClaimed is the payload for TypeEscrowPrizeClaimed.
type PrizeClaimed struct {
	Player string `json:"player"`
	Token  string `json:"token"`
	Amount int64  `json:"amount"`
}

// Refunded is the payload for TypeEscrowRefunded.
type Refunded struct {
	Player string `json:"player"`
	Token  string `json:"token"`
	Amount int64  `json:"amount"`
}

// Causes a reverted release can carry.
const (
	// CausePrizeClaim marks a reverted prize payout.
	CausePrizeClaim = "prize_claim"
	// CauseRefund marks a reverted entry fee refund.
	CauseRefund = "refund"
)

// ReleaseReverted is the payload for TypeEscrowReleaseReverted. Cause
// names the release that failed, either CausePrizeClaim or CauseRefund.
type ReleaseReverted struct {
	Player string `json:"player"`
	Token  string `json:"token"`
	Amount int64  `json:"amount"`
	Cause  string `json:"cause"`
}

// TokenAdded is the payload for TypeAdminTokenAdded.
type TokenAdded struct {
	Token string `json:"token"`
}

// TokenRemoved is the payload for TypeAdminTokenRemoved.
type TokenRemoved struct {
	Token string `json:"token"`
}

// FeeUpdated is the payload for TypeAdminFeeUpdated.
type FeeUpdated struct {
	Percent int `json:"percent"`
}

// MatchLimitUpdated is the payload for TypeAdminMatchLimitUpdated.
type MatchLimitUpdated struct {
	Limit int `json:"limit"`
}

// PauseChanged is the payload for TypeAdminPauseChanged.
type PauseChanged struct {
	Paused bool `json:"paused"`
}
