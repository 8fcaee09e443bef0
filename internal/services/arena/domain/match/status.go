package match

import "strings"

// Status describes the lifecycle of a match.
type Status int

const (
	// StatusUnspecified represents an invalid match status value.
	StatusUnspecified Status = iota
	// StatusWaiting indicates the match is open for players to join.
	StatusWaiting
	// StatusActive indicates the match has started and accepts answers.
	StatusActive
	// StatusCompleted indicates the match ended with a computed outcome.
	StatusCompleted
	// StatusCancelled indicates an administrator cancelled the match.
	StatusCancelled
	// StatusRefunded indicates every stake in the match was returned.
	//
	// The engine never sets this status on its own: a Waiting match past its
	// join deadline keeps StatusWaiting and refund eligibility is computed
	// lazily at call time. The value exists for reporting fidelity.
	StatusRefunded
)

// String returns the lowercase label for the status.
func (s Status) String() string {
	switch s {
	case StatusWaiting:
		return "waiting"
	case StatusActive:
		return "active"
	case StatusCompleted:
		return "completed"
	case StatusCancelled:
		return "cancelled"
	case StatusRefunded:
		return "refunded"
	default:
		return "unspecified"
	}
}

// ParseStatus maps a status label back to its enum value.
func ParseStatus(value string) (Status, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "waiting":
		return StatusWaiting, true
	case "active":
		return StatusActive, true
	case "completed":
		return StatusCompleted, true
	case "cancelled":
		return StatusCancelled, true
	case "refunded":
		return StatusRefunded, true
	default:
		return StatusUnspecified, false
	}
}

// isStatusTransitionAllowed enforces the one-directional match lifecycle.
func isStatusTransitionAllowed(from, to Status) bool {
	switch from {
	case StatusWaiting:
		return to == StatusActive || to == StatusCancelled
	case StatusActive:
		return to == StatusCompleted || to == StatusCancelled
	default:
		return false
	}
}

// IsStatusTransitionAllowed reports whether a status transition is permitted.
func IsStatusTransitionAllowed(from, to Status) bool {
	return isStatusTransitionAllowed(from, to)
}

// IsTerminal reports whether the status admits no further transitions.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusRefunded:
		return true
	default:
		return false
	}
}
