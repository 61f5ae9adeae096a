package domain

import "fmt"

// Status is the moderation state of a review. It is a closed enumeration:
// storage, transport, and validation all use the same three values, so an
// unknown status can only enter via a parse boundary, where it is rejected.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// StatusAll is the filter sentinel meaning "no status filter". It is never
// stored on a record.
const StatusAll = "all"

// ParseStatus converts a raw string into a Status.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusApproved, StatusRejected:
		return Status(s), nil
	default:
		return "", fmt.Errorf("unrecognized status %q", s)
	}
}

// Valid reports whether s is one of the three known states.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// ValidModerationTarget reports whether s is a legal target for a status
// transition. Approved and rejected are reachable from every state
// (including themselves, a no-op); pending is reserved for creation and is
// never a legal target.
func (s Status) ValidModerationTarget() bool {
	return s == StatusApproved || s == StatusRejected
}

// ParseModerationTarget converts a raw string into a moderation target
// status, rejecting pending and unknown values.
func ParseModerationTarget(s string) (Status, error) {
	status, err := ParseStatus(s)
	if err != nil {
		return "", err
	}
	if !status.ValidModerationTarget() {
		return "", fmt.Errorf("status %q is not a valid moderation target", s)
	}
	return status, nil
}
