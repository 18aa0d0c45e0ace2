package generator

import (
	"fmt"
	"time"
)

// Status is the lifecycle stage of one variant's slot.
type Status int

const (
	StatusIdle Status = iota
	StatusPending
	StatusDone
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusPending:
		return "pending"
	case StatusDone:
		return "done"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// MarshalText renders the status by name in JSON.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// SlotState is a read-only copy of one slot.
// Result is set only when done, Error only when failed.
type SlotState struct {
	ID        VariantID `json:"variant"`
	Variant   Variant   `json:"-"`
	Status    Status    `json:"status"`
	Result    string    `json:"result,omitempty"`
	Error     string    `json:"error,omitempty"`
	Epoch     uint64    `json:"epoch"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Snapshot is the slot table of a session at one point in time.
type Snapshot struct {
	Text  string      `json:"text"`
	Slots []SlotState `json:"slots"`
}

// Get returns the slot for id.
func (s Snapshot) Get(id VariantID) (SlotState, bool) {
	for _, sl := range s.Slots {
		if sl.ID == id {
			return sl, true
		}
	}
	return SlotState{}, false
}

// Pending reports whether any slot is still generating.
func (s Snapshot) Pending() bool {
	for _, sl := range s.Slots {
		if sl.Status == StatusPending {
			return true
		}
	}
	return false
}

// EventKind says what happened to a slot.
type EventKind int

const (
	EventStarted EventKind = iota
	EventDone
	EventFailed
	EventReset
)

func (k EventKind) String() string {
	switch k {
	case EventStarted:
		return "started"
	case EventDone:
		return "done"
	case EventFailed:
		return "failed"
	case EventReset:
		return "reset"
	default:
		return fmt.Sprintf("event(%d)", int(k))
	}
}

// Event reports a slot transition together with the slot's new state.
type Event struct {
	Kind EventKind
	Slot SlotState
}
