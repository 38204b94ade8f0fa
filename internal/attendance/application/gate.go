// Package application implements the geofenced attendance gate: it decides
// whether a user-initiated attendance action is geographically and
// sequentially permitted, then submits it to the backend.
package application

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/google/uuid"

	attendance "github.com/saul00x/gestion3-sub000/internal/attendance/domain"
	"github.com/saul00x/gestion3-sub000/internal/erp"
	"github.com/saul00x/gestion3-sub000/internal/geo"
	"github.com/saul00x/gestion3-sub000/internal/location"
	"github.com/saul00x/gestion3-sub000/internal/observability/metrics"
	"github.com/saul00x/gestion3-sub000/internal/retry"
)

const (
	// DefaultRadiusMeters is the allowed clock-in radius when the operator
	// has not configured one.
	DefaultRadiusMeters = 100.0

	positionAttempts = 3
	positionDelay    = 2 * time.Second
)

// Outcome classifies a gate decision.
type Outcome string

const (
	OutcomeAccepted       Outcome = "accepted"
	OutcomeNoAssignment   Outcome = "no_assignment"
	OutcomeOutOfOrder     Outcome = "out_of_order"
	OutcomeTooFar         Outcome = "too_far"
	OutcomeLocationFailed Outcome = "location_failed"
)

// Decision is the user-facing result of one attendance action.
type Decision struct {
	Outcome        Outcome               `json:"outcome"`
	Message        string                `json:"message"`
	DistanceMeters int                   `json:"distance_meters,omitempty"`
	RadiusMeters   int                   `json:"radius_meters,omitempty"`
	Submitted      []attendance.Action   `json:"submitted,omitempty"`
	Record         *erp.AttendanceRecord `json:"record,omitempty"`
}

// Backend is the slice of the ERP client the gate needs.
type Backend interface {
	UserAssignment(ctx context.Context, userID string) (*erp.Assignment, error)
	TodayAttendance(ctx context.Context, userID, date string) (*erp.AttendanceRecord, error)
	SubmitAttendance(ctx context.Context, sub erp.AttendanceSubmission) (*erp.AttendanceRecord, error)
}

// Gate evaluates and submits attendance actions.
type Gate struct {
	backend  Backend
	provider location.Provider
	radius   func() float64
	clock    func() time.Time
	logger   *log.Logger

	attempts int
	delay    time.Duration
}

// Option configures a Gate.
type Option func(*Gate)

// WithClock overrides the gate clock.
func WithClock(clock func() time.Time) Option {
	return func(g *Gate) {
		if clock != nil {
			g.clock = clock
		}
	}
}

// WithRetry overrides the position retry policy.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(g *Gate) {
		if attempts > 0 {
			g.attempts = attempts
		}
		if delay >= 0 {
			g.delay = delay
		}
	}
}

// NewGate constructs a Gate. The radius function reads the operator-configured
// fence radius; it is consulted on every action so settings edits apply
// without a restart.
func NewGate(backend Backend, provider location.Provider, radius func() float64, logger *log.Logger, opts ...Option) (*Gate, error) {
	if backend == nil {
		return nil, errors.New("gate: nil backend")
	}
	if provider == nil {
		return nil, errors.New("gate: nil location provider")
	}
	if radius == nil {
		radius = func() float64 { return DefaultRadiusMeters }
	}
	g := &Gate{
		backend:  backend,
		provider: provider,
		radius:   radius,
		clock:    func() time.Time { return time.Now().UTC() },
		logger:   logger,
		attempts: positionAttempts,
		delay:    positionDelay,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// EvaluateAndSubmit runs the full gate sequence for one user action:
// assignment check, day-record sequencing, position acquisition with bounded
// retry, geofence check, then one POST per planned sub-action. Sequencing and
// geofence refusals come back as decisions, never as errors; an error means
// the backend itself failed.
func (g *Gate) EvaluateAndSubmit(ctx context.Context, userID string, action attendance.Action) (Decision, error) {
	if userID == "" {
		return Decision{}, errors.New("gate: empty user id")
	}
	if !action.Valid() {
		return g.decided(Decision{Outcome: OutcomeOutOfOrder, Message: "Unknown attendance action."}), nil
	}

	assignment, err := g.backend.UserAssignment(ctx, userID)
	if err != nil {
		return Decision{}, fmt.Errorf("gate: resolve assignment: %w", err)
	}
	if assignment == nil {
		return g.decided(Decision{
			Outcome: OutcomeNoAssignment,
			Message: "No store is assigned to you. Ask a manager before clocking in.",
		}), nil
	}

	date := g.clock().Format(attendance.DateLayout)
	record, err := g.backend.TodayAttendance(ctx, userID, date)
	if err != nil {
		return Decision{}, fmt.Errorf("gate: load day record: %w", err)
	}

	// Sequencing is checked before any position request: a refused action
	// must not cost the user a location wait.
	plan, err := attendance.Plan(dayRecord(record), action)
	if err != nil {
		if attendance.IsRefusal(err) {
			return g.decided(Decision{Outcome: OutcomeOutOfOrder, Message: refusalMessage(err)}), nil
		}
		return Decision{}, err
	}

	fix, err := g.acquirePosition(ctx)
	if err != nil {
		return g.decided(Decision{Outcome: OutcomeLocationFailed, Message: location.UserMessage(err)}), nil
	}

	radius := g.radius()
	if radius <= 0 {
		radius = DefaultRadiusMeters
	}
	distance := geo.Distance(fix.Position, assignment.Position())
	if distance > radius {
		return g.decided(Decision{
			Outcome:        OutcomeTooFar,
			Message:        fmt.Sprintf("You are %d m from %s; clock-in is allowed within %d m.", int(math.Round(distance)), assignment.LocationName, int(radius)),
			DistanceMeters: int(math.Round(distance)),
			RadiusMeters:   int(radius),
		}), nil
	}

	// The plan can hold two sub-actions (break end then departure). They are
	// submitted sequentially as separate POSTs, matching the backend's
	// one-action contract; the intermediate state is visible. See DESIGN.md.
	var last *erp.AttendanceRecord
	for _, sub := range plan {
		last, err = g.backend.SubmitAttendance(ctx, erp.AttendanceSubmission{
			UserID:         userID,
			LocationID:     assignment.LocationID,
			LocationName:   assignment.LocationName,
			Date:           date,
			Latitude:       fix.Position.Lat,
			Longitude:      fix.Position.Lon,
			Action:         string(sub),
			IdempotencyKey: uuid.NewString(),
		})
		if err != nil {
			return Decision{}, fmt.Errorf("gate: submit %s: %w", sub, err)
		}
	}

	if g.logger != nil {
		g.logger.Printf("attendance accepted: user=%s action=%s distance=%.0fm location=%s", userID, action, distance, assignment.LocationID)
	}
	return g.decided(Decision{
		Outcome:        OutcomeAccepted,
		Message:        acceptedMessage(action),
		DistanceMeters: int(math.Round(distance)),
		RadiusMeters:   int(radius),
		Submitted:      plan,
		Record:         last,
	}), nil
}

func (g *Gate) acquirePosition(ctx context.Context) (location.Fix, error) {
	var fix location.Fix
	err := retry.Do(ctx, g.attempts, g.delay, func(ctx context.Context) error {
		current, err := g.provider.Current(ctx, location.DefaultOptions())
		if err != nil {
			metrics.ObservePositionFailure()
			if location.IsTransient(err) {
				return retry.Transient(err)
			}
			return err
		}
		fix = current
		return nil
	})
	return fix, err
}

func dayRecord(record *erp.AttendanceRecord) *attendance.DayRecord {
	if record == nil {
		return nil
	}
	return &attendance.DayRecord{
		ID:         record.ID,
		UserID:     record.UserID,
		LocationID: record.LocationID,
		Date:       record.Date,
		Arrival:    record.Arrival,
		Departure:  record.Departure,
		BreakStart: record.BreakStart,
		BreakEnd:   record.BreakEnd,
	}
}

func (g *Gate) decided(d Decision) Decision {
	metrics.ObserveGateDecision(string(d.Outcome))
	return d
}

func refusalMessage(err error) string {
	switch {
	case errors.Is(err, attendance.ErrAlreadyArrived):
		return "Arrival is already recorded for today."
	case errors.Is(err, attendance.ErrNotArrived):
		return "Record your arrival first."
	case errors.Is(err, attendance.ErrBreakAlreadyTaken):
		return "Your break was already taken today."
	case errors.Is(err, attendance.ErrOnBreak):
		return "A break is already running."
	case errors.Is(err, attendance.ErrNotOnBreak):
		return "No break is running."
	case errors.Is(err, attendance.ErrAlreadyDeparted):
		return "Departure is already recorded for today."
	default:
		return "This action is not allowed right now."
	}
}

func acceptedMessage(action attendance.Action) string {
	switch action {
	case attendance.ActionArrival:
		return "Arrival recorded."
	case attendance.ActionDeparture:
		return "Departure recorded."
	case attendance.ActionBreakStart:
		return "Break started."
	case attendance.ActionBreakEnd:
		return "Break ended."
	default:
		return "Recorded."
	}
}
