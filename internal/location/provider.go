// Package location acquires the terminal's current position from a local
// location daemon, classifying failures the way the attendance gate needs
// them: unsupported, permission denied, unavailable, or timeout.
package location

import (
	"context"
	"errors"
	"time"

	"github.com/saul00x/gestion3-sub000/internal/geo"
)

var (
	// ErrUnsupported indicates no location capability is configured.
	ErrUnsupported = errors.New("location: not supported on this terminal")
	// ErrPermissionDenied indicates the location source refused access.
	ErrPermissionDenied = errors.New("location: permission denied")
	// ErrUnavailable indicates no usable fix could be produced.
	ErrUnavailable = errors.New("location: position unavailable")
	// ErrTimeout indicates the fix did not arrive within the allowed wait.
	ErrTimeout = errors.New("location: request timed out")
)

const (
	// DefaultTimeout bounds a single fix request.
	DefaultTimeout = 10 * time.Second
	// DefaultMaxFixAge is the oldest cached fix still considered current.
	DefaultMaxFixAge = 60 * time.Second
)

// Fix is a single position measurement.
type Fix struct {
	Position       geo.Position
	AccuracyMeters float64
	MeasuredAt     time.Time
}

// Options controls a single acquisition request.
type Options struct {
	HighAccuracy bool
	Timeout      time.Duration
	MaxFixAge    time.Duration
}

// DefaultOptions returns the options the attendance gate uses: highest
// accuracy, bounded wait, recent cached fixes accepted.
func DefaultOptions() Options {
	return Options{HighAccuracy: true, Timeout: DefaultTimeout, MaxFixAge: DefaultMaxFixAge}
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.MaxFixAge <= 0 {
		o.MaxFixAge = DefaultMaxFixAge
	}
	return o
}

// Provider produces the terminal's current position.
type Provider interface {
	Current(ctx context.Context, opts Options) (Fix, error)
}

// IsTransient reports whether err is one of the acquisition failures worth
// retrying. Permission and capability failures are permanent.
func IsTransient(err error) bool {
	return errors.Is(err, ErrUnavailable) || errors.Is(err, ErrTimeout)
}

// UserMessage maps an acquisition failure to user-facing status text.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrUnsupported):
		return "Location is not supported on this terminal."
	case errors.Is(err, ErrPermissionDenied):
		return "Location access is denied. Enable it in the terminal settings."
	case errors.Is(err, ErrTimeout):
		return "Locating timed out. Try again."
	case errors.Is(err, ErrUnavailable):
		return "Your position could not be determined. Try again."
	default:
		return "Location request failed."
	}
}
