package attendance

import (
	"errors"
	"time"
)

// DateLayout is the server-normalized date stamp format.
const DateLayout = "2006-01-02"

// Action is a user-initiated attendance action.
type Action string

const (
	ActionArrival    Action = "arrival"
	ActionDeparture  Action = "departure"
	ActionBreakStart Action = "break_start"
	ActionBreakEnd   Action = "break_end"
)

// Valid returns true for a known action kind.
func (a Action) Valid() bool {
	switch a {
	case ActionArrival, ActionDeparture, ActionBreakStart, ActionBreakEnd:
		return true
	default:
		return false
	}
}

// DayRecord is one user's attendance for one date. It is created by the
// arrival action and mutated in place by the following actions of the same
// day; there is at most one record per (user, date).
type DayRecord struct {
	ID         string
	UserID     string
	LocationID string
	Date       string
	Arrival    *time.Time
	Departure  *time.Time
	BreakStart *time.Time
	BreakEnd   *time.Time
}

// BreakDuration derives the completed break length, zero while the break is
// open or absent.
func (r DayRecord) BreakDuration() time.Duration {
	if r.BreakStart == nil || r.BreakEnd == nil {
		return 0
	}
	return r.BreakEnd.Sub(*r.BreakStart)
}

// Validate checks the record's timestamp ordering invariants.
func (r DayRecord) Validate() error {
	if r.Arrival != nil && r.Departure != nil && !r.Arrival.Before(*r.Departure) {
		return errors.New("attendance: arrival must precede departure")
	}
	if r.BreakStart != nil && r.BreakEnd != nil && !r.BreakStart.Before(*r.BreakEnd) {
		return errors.New("attendance: break start must precede break end")
	}
	if r.BreakStart != nil && r.Arrival == nil {
		return errors.New("attendance: break without arrival")
	}
	return nil
}
