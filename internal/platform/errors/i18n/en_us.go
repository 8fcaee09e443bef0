package i18n

// Error codes must match the codes defined in internal/platform/errors/codes.go.
// These are duplicated as strings to avoid an import cycle.
const (
	CodeMatchTokenNotSupported       = "MATCH_TOKEN_NOT_SUPPORTED"
	CodeMatchEntryFeeBelowMin        = "MATCH_ENTRY_FEE_BELOW_MINIMUM"
	CodeMatchInvalidMaxPlayers       = "MATCH_INVALID_MAX_PLAYERS"
	CodeMatchQuestionsEmpty          = "MATCH_QUESTIONS_EMPTY"
	CodeMatchQuestionDuplicate       = "MATCH_QUESTION_DUPLICATE"
	CodeMatchAnswerKeyMismatch       = "MATCH_ANSWER_KEY_MISMATCH"
	CodeMatchUnknownQuestion         = "MATCH_UNKNOWN_QUESTION"
	CodeMatchAnswerOutOfRange        = "MATCH_ANSWER_OUT_OF_RANGE"
	CodeMatchEntryFeeOverflow        = "MATCH_ENTRY_FEE_OVERFLOW"
	CodePlayerIdentityEmpty          = "PLAYER_IDENTITY_EMPTY"
	CodeTokenIdentifierEmpty         = "TOKEN_IDENTIFIER_EMPTY"
	CodeAmountNotPositive            = "AMOUNT_NOT_POSITIVE"
	CodeFeePercentTooHigh            = "FEE_PERCENT_TOO_HIGH"
	CodeMatchLimitInvalid            = "MATCH_LIMIT_INVALID"
	CodeRequestInvalid               = "REQUEST_INVALID"
	CodeMatchStatusDisallowsOp       = "MATCH_STATUS_DISALLOWS_OPERATION"
	CodeMatchInvalidStatusTransition = "MATCH_INVALID_STATUS_TRANSITION"
	CodeMatchFull                    = "MATCH_FULL"
	CodeMatchNotFull                 = "MATCH_NOT_FULL"
	CodeMatchEscrowLocked            = "MATCH_ESCROW_LOCKED"
	CodeMatchJoinDeadlinePassed      = "MATCH_JOIN_DEADLINE_PASSED"
	CodeMatchNotRefundable           = "MATCH_NOT_REFUNDABLE"
	CodeMatchAlreadyJoined           = "MATCH_ALREADY_JOINED"
	CodeMatchEnded                   = "MATCH_ENDED"
	CodeAnswerAlreadySubmitted       = "ANSWER_ALREADY_SUBMITTED"
	CodeClaimAlreadyProcessed        = "CLAIM_ALREADY_PROCESSED"
	CodeEnginePaused                 = "ENGINE_PAUSED"
	CodePlayerMatchLimitReached      = "PLAYER_MATCH_LIMIT_REACHED"
	CodeAdminRequired                = "ADMIN_REQUIRED"
	CodePlayerNotInMatch             = "PLAYER_NOT_IN_MATCH"
	CodePlayerNotWinner              = "PLAYER_NOT_WINNER"
	CodeGrantInvalid                 = "GRANT_INVALID"
	CodeGrantExpired                 = "GRANT_EXPIRED"
	CodeGrantMismatch                = "GRANT_MISMATCH"
	CodeFundsInsufficientBalance     = "FUNDS_INSUFFICIENT_BALANCE"
	CodeFundsInsufficientAllowance   = "FUNDS_INSUFFICIENT_ALLOWANCE"
	CodeEscrowInsufficient           = "ESCROW_INSUFFICIENT"
	CodeFundsTransferFailed          = "FUNDS_TRANSFER_FAILED"
	CodeNotFound                     = "NOT_FOUND"
	CodeStorageFailure               = "STORAGE_FAILURE"
	CodeEventPayloadInvalid          = "EVENT_PAYLOAD_INVALID"
)

var enUSCatalog = &Catalog{
	locale: "en-US",
	messages: map[Code]string{
		// Match validation errors
		CodeMatchTokenNotSupported: "Token {{.Token}} is not on the supported list",
		CodeMatchEntryFeeBelowMin:  "Entry fee is below the minimum of {{.Minimum}}",
		CodeMatchInvalidMaxPlayers: "Max players must be between {{.Min}} and {{.Max}}",
		CodeMatchQuestionsEmpty:    "A match needs at least one question",
		CodeMatchQuestionDuplicate: "Question ids in a match must be unique",
		CodeMatchAnswerKeyMismatch: "Answer key does not match the match's question set",
		CodeMatchUnknownQuestion:   "Question {{.Question}} is not part of this match",
		CodeMatchAnswerOutOfRange:  "Answer must be between 0 and {{.Max}}",
		CodeMatchEntryFeeOverflow:  "Entry fee times max players overflows the supported range",
		CodePlayerIdentityEmpty:    "Player identity cannot be empty",
		CodeTokenIdentifierEmpty:   "Token identifier cannot be empty",
		CodeAmountNotPositive:      "Amount must be greater than zero",
		CodeFeePercentTooHigh:      "Platform fee cannot exceed {{.Max}} percent",
		CodeMatchLimitInvalid:      "Per-player match limit must be at least 1",
		CodeRequestInvalid:         "The request could not be parsed",

		// Match state errors
		CodeMatchStatusDisallowsOp:       "Match status {{.Status}} does not allow {{.Operation}}",
		CodeMatchInvalidStatusTransition: "Cannot transition match from {{.FromStatus}} to {{.ToStatus}}",
		CodeMatchFull:                    "Match already has its maximum number of players",
		CodeMatchNotFull:                 "Match cannot start until the roster is full",
		CodeMatchEscrowLocked:            "Match escrow is already locked",
		CodeMatchJoinDeadlinePassed:      "The join window for this match has closed",
		CodeMatchNotRefundable:           "Match is not eligible for refunds",
		CodeMatchAlreadyJoined:           "Player is already in this match",
		CodeMatchEnded:                   "The answer window for this match has closed",
		CodeAnswerAlreadySubmitted:       "An answer was already recorded for this question",
		CodeClaimAlreadyProcessed:        "Funds for this match were already claimed",
		CodeEnginePaused:                 "The arena is paused",
		CodePlayerMatchLimitReached:      "Player already has {{.Limit}} open matches",

		// Authorization errors
		CodeAdminRequired:    "Administrator access is required",
		CodePlayerNotInMatch: "Caller is not a player in this match",
		CodePlayerNotWinner:  "Caller is not in this match's winner set",
		CodeGrantInvalid:     "Access grant is invalid",
		CodeGrantExpired:     "Access grant has expired",
		CodeGrantMismatch:    "Access grant {{.Field}} does not match",

		// Funds errors
		CodeFundsInsufficientBalance:   "Balance is insufficient to cover the entry fee",
		CodeFundsInsufficientAllowance: "Allowance is insufficient to cover the entry fee",
		CodeEscrowInsufficient:         "Escrowed funds are insufficient for this release",
		CodeFundsTransferFailed:        "The token transfer failed",

		// Storage errors
		CodeNotFound:            "The requested resource was not found",
		CodeStorageFailure:      "The journal is temporarily unavailable",
		CodeEventPayloadInvalid: "A journal record could not be decoded",
	},
}
