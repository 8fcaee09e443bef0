// Package errors provides structured error handling with i18n support.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Match validation errors
	CodeMatchTokenNotSupported   Code = "MATCH_TOKEN_NOT_SUPPORTED"
	CodeMatchEntryFeeBelowMin    Code = "MATCH_ENTRY_FEE_BELOW_MINIMUM"
	CodeMatchInvalidMaxPlayers   Code = "MATCH_INVALID_MAX_PLAYERS"
	CodeMatchQuestionsEmpty      Code = "MATCH_QUESTIONS_EMPTY"
	CodeMatchQuestionDuplicate   Code = "MATCH_QUESTION_DUPLICATE"
	CodeMatchAnswerKeyMismatch   Code = "MATCH_ANSWER_KEY_MISMATCH"
	CodeMatchUnknownQuestion     Code = "MATCH_UNKNOWN_QUESTION"
	CodeMatchAnswerOutOfRange    Code = "MATCH_ANSWER_OUT_OF_RANGE"
	CodeMatchEntryFeeOverflow    Code = "MATCH_ENTRY_FEE_OVERFLOW"
	CodePlayerIdentityEmpty      Code = "PLAYER_IDENTITY_EMPTY"
	CodeTokenIdentifierEmpty     Code = "TOKEN_IDENTIFIER_EMPTY"
	CodeAmountNotPositive        Code = "AMOUNT_NOT_POSITIVE"
	CodeFeePercentTooHigh        Code = "FEE_PERCENT_TOO_HIGH"
	CodeMatchLimitInvalid        Code = "MATCH_LIMIT_INVALID"
	CodeRequestInvalid           Code = "REQUEST_INVALID"

	// Match state errors
	CodeMatchStatusDisallowsOp      Code = "MATCH_STATUS_DISALLOWS_OPERATION"
	CodeMatchInvalidStatusTransition Code = "MATCH_INVALID_STATUS_TRANSITION"
	CodeMatchFull                   Code = "MATCH_FULL"
	CodeMatchNotFull                Code = "MATCH_NOT_FULL"
	CodeMatchEscrowLocked           Code = "MATCH_ESCROW_LOCKED"
	CodeMatchJoinDeadlinePassed     Code = "MATCH_JOIN_DEADLINE_PASSED"
	CodeMatchNotRefundable          Code = "MATCH_NOT_REFUNDABLE"
	CodeMatchAlreadyJoined          Code = "MATCH_ALREADY_JOINED"
	CodeMatchEnded                  Code = "MATCH_ENDED"
	CodeAnswerAlreadySubmitted      Code = "ANSWER_ALREADY_SUBMITTED"
	CodeClaimAlreadyProcessed       Code = "CLAIM_ALREADY_PROCESSED"
	CodeEnginePaused                Code = "ENGINE_PAUSED"
	CodePlayerMatchLimitReached     Code = "PLAYER_MATCH_LIMIT_REACHED"

	// Authorization errors
	CodeAdminRequired    Code = "ADMIN_REQUIRED"
	CodePlayerNotInMatch Code = "PLAYER_NOT_IN_MATCH"
	CodePlayerNotWinner  Code = "PLAYER_NOT_WINNER"
	CodeGrantInvalid     Code = "GRANT_INVALID"
	CodeGrantExpired     Code = "GRANT_EXPIRED"
	CodeGrantMismatch    Code = "GRANT_MISMATCH"

	// Funds errors
	CodeFundsInsufficientBalance   Code = "FUNDS_INSUFFICIENT_BALANCE"
	CodeFundsInsufficientAllowance Code = "FUNDS_INSUFFICIENT_ALLOWANCE"
	CodeEscrowInsufficient         Code = "ESCROW_INSUFFICIENT"
	CodeFundsTransferFailed        Code = "FUNDS_TRANSFER_FAILED"

	// Storage errors
	CodeNotFound            Code = "NOT_FOUND"
	CodeStorageFailure      Code = "STORAGE_FAILURE"
	CodeEventPayloadInvalid Code = "EVENT_PAYLOAD_INVALID"
)

// HTTPStatus maps domain codes to HTTP status codes.
func (c Code) HTTPStatus() int {
	switch c {
	// Bad request - validation failures, bad input
	case CodeMatchTokenNotSupported,
		CodeMatchEntryFeeBelowMin,
		CodeMatchInvalidMaxPlayers,
		CodeMatchQuestionsEmpty,
		CodeMatchQuestionDuplicate,
		CodeMatchAnswerKeyMismatch,
		CodeMatchUnknownQuestion,
		CodeMatchAnswerOutOfRange,
		CodeMatchEntryFeeOverflow,
		CodePlayerIdentityEmpty,
		CodeTokenIdentifierEmpty,
		CodeAmountNotPositive,
		CodeFeePercentTooHigh,
		CodeMatchLimitInvalid,
		CodeRequestInvalid:
		return http.StatusBadRequest

	// Conflict - state doesn't allow the operation
	case CodeMatchStatusDisallowsOp,
		CodeMatchInvalidStatusTransition,
		CodeMatchFull,
		CodeMatchNotFull,
		CodeMatchEscrowLocked,
		CodeMatchJoinDeadlinePassed,
		CodeMatchNotRefundable,
		CodeMatchAlreadyJoined,
		CodeMatchEnded,
		CodeAnswerAlreadySubmitted,
		CodeClaimAlreadyProcessed,
		CodeEnginePaused,
		CodePlayerMatchLimitReached,
		CodePlayerNotWinner:
		return http.StatusConflict

	// Unauthorized - missing or unusable credentials
	case CodeGrantInvalid,
		CodeGrantExpired,
		CodeGrantMismatch:
		return http.StatusUnauthorized

	// Forbidden - authenticated but not allowed
	case CodeAdminRequired,
		CodePlayerNotInMatch:
		return http.StatusForbidden

	// Payment required - caller funds do not cover the stake
	case CodeFundsInsufficientBalance,
		CodeFundsInsufficientAllowance,
		CodeEscrowInsufficient:
		return http.StatusPaymentRequired

	// Bad gateway - the external token interface failed mid-release
	case CodeFundsTransferFailed:
		return http.StatusBadGateway

	case CodeNotFound:
		return http.StatusNotFound

	default:
		return http.StatusInternalServerError
	}
}
