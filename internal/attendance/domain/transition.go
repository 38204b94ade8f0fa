package attendance

import "errors"

// State is the day record's position in the attendance lifecycle.
type State string

const (
	StateAbsent   State = "absent"
	StatePresent  State = "present"
	StateOnBreak  State = "on_break"
	StateDeparted State = "departed"
)

// Sequencing refusals. Each is user-correctable and never retried.
var (
	ErrAlreadyArrived    = errors.New("attendance: arrival already recorded today")
	ErrNotArrived        = errors.New("attendance: no arrival recorded today")
	ErrBreakAlreadyTaken = errors.New("attendance: break already taken today")
	ErrOnBreak           = errors.New("attendance: a break is already running")
	ErrNotOnBreak        = errors.New("attendance: no break is running")
	ErrAlreadyDeparted   = errors.New("attendance: departure already recorded today")
	ErrUnknownAction     = errors.New("attendance: unknown action")
)

// StateOf derives the lifecycle state from a day record. A nil record means
// the user has not arrived yet.
func StateOf(r *DayRecord) State {
	switch {
	case r == nil || r.Arrival == nil:
		return StateAbsent
	case r.Departure != nil:
		return StateDeparted
	case r.BreakStart != nil && r.BreakEnd == nil:
		return StateOnBreak
	default:
		return StatePresent
	}
}

// Plan validates action against the day's record and returns the ordered
// sub-actions to submit. A departure while a break is open plans the break
// end first, so one user action can expand into two submissions.
func Plan(r *DayRecord, action Action) ([]Action, error) {
	state := StateOf(r)

	switch action {
	case ActionArrival:
		if state != StateAbsent {
			return nil, ErrAlreadyArrived
		}
		return []Action{ActionArrival}, nil

	case ActionBreakStart:
		switch state {
		case StateAbsent:
			return nil, ErrNotArrived
		case StateOnBreak:
			return nil, ErrOnBreak
		case StateDeparted:
			return nil, ErrAlreadyDeparted
		}
		if r.BreakEnd != nil {
			return nil, ErrBreakAlreadyTaken
		}
		return []Action{ActionBreakStart}, nil

	case ActionBreakEnd:
		if state != StateOnBreak {
			return nil, ErrNotOnBreak
		}
		return []Action{ActionBreakEnd}, nil

	case ActionDeparture:
		switch state {
		case StateAbsent:
			return nil, ErrNotArrived
		case StateDeparted:
			return nil, ErrAlreadyDeparted
		case StateOnBreak:
			return []Action{ActionBreakEnd, ActionDeparture}, nil
		}
		return []Action{ActionDeparture}, nil

	default:
		return nil, ErrUnknownAction
	}
}

// IsRefusal reports whether err is one of the sequencing refusals.
func IsRefusal(err error) bool {
	for _, refusal := range []error{
		ErrAlreadyArrived, ErrNotArrived, ErrBreakAlreadyTaken,
		ErrOnBreak, ErrNotOnBreak, ErrAlreadyDeparted, ErrUnknownAction,
	} {
		if errors.Is(err, refusal) {
			return true
		}
	}
	return false
}
