package subscription

import "strings"

// Status is the subscription lifecycle state.
//
//	active <-> paused
//	active|paused|payment_failed -> cancelled   (terminal)
//	active -> payment_failed                    (renewal charge failed)
//	active -> completed                         (terminal)
//
// Only active subscriptions accept item/frequency/address/auto-renew
// mutations.
type Status string

const (
	StatusActive        Status = "active"
	StatusPaused        Status = "paused"
	StatusCancelled     Status = "cancelled"
	StatusPaymentFailed Status = "payment_failed"
	StatusCompleted     Status = "completed"
)

// NormalizeStatus lowercases and trims a raw status value.
func NormalizeStatus(s string) Status {
	return Status(strings.ToLower(strings.TrimSpace(s)))
}

// Terminal reports whether the state accepts no further transitions.
func (s Status) Terminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

// CanTransition reports whether from -> to is a legal lifecycle move.
func CanTransition(from, to Status) bool {
	if from == to {
		return false
	}
	switch to {
	case StatusPaused:
		return from == StatusActive
	case StatusActive:
		return from == StatusPaused
	case StatusCancelled:
		return !from.Terminal()
	case StatusPaymentFailed:
		return from == StatusActive
	case StatusCompleted:
		return from == StatusActive
	default:
		return false
	}
}
