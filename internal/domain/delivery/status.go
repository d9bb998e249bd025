package delivery

import "fmt"

// Status is the delivery state of a single sample.
type Status string

const (
	// StatusNotDelivered is the initial state.
	StatusNotDelivered Status = "NOT_DELIVERED"
	// StatusInProgress marks a staging run currently working on the sample.
	StatusInProgress Status = "IN_PROGRESS"
	// StatusStaged means the sample sits fully assembled in the staging area.
	StatusStaged Status = "STAGED"
	// StatusDelivered means the sample has been handed off to the end user.
	StatusDelivered Status = "DELIVERED"
	// StatusFailed marks a staging run that aborted; a later run may retry.
	StatusFailed Status = "FAILED"
)

// ParseStatus converts a stored string to a Status.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusNotDelivered, StatusInProgress, StatusStaged, StatusDelivered, StatusFailed:
		return Status(s), nil
	default:
		return "", fmt.Errorf("unknown delivery status %q", s)
	}
}

// CanTransition reports whether moving from s to next is a legal lifecycle
// step. Re-deliveries always restart from IN_PROGRESS.
func (s Status) CanTransition(next Status) bool {
	switch s {
	case StatusNotDelivered, StatusFailed:
		return next == StatusInProgress
	case StatusInProgress:
		// IN_PROGRESS -> IN_PROGRESS is a forced takeover after a crashed run.
		return next == StatusStaged || next == StatusDelivered ||
			next == StatusFailed || next == StatusNotDelivered || next == StatusInProgress
	case StatusStaged:
		return next == StatusDelivered || next == StatusInProgress
	case StatusDelivered:
		return next == StatusInProgress
	default:
		return false
	}
}
