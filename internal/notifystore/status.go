package notifystore

import (
	"github.com/nhle/storefront/internal/model"
)

// State is the coarse status of the store.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateError
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateError:
		return "error"
	default:
		return "idle"
	}
}

// Status is the outcome of the most recent operation. Err is set only in
// StateError.
type Status struct {
	State State
	Err   error
}

// Reason returns the error text, or "" when not in StateError.
func (s Status) Reason() string {
	if s.Err == nil {
		return ""
	}
	return s.Err.Error()
}

// Snapshot is a point-in-time copy of the store, safe to keep and read
// without locking.
type Snapshot struct {
	All    []model.Notification
	Unread []model.Notification
	Status Status
}

// UnreadCount returns the exact number of unread notifications.
func (s Snapshot) UnreadCount() int { return len(s.Unread) }
