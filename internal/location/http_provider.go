package location

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/saul00x/gestion3-sub000/internal/geo"
)

// HTTPProvider reads fixes from a local location daemon over HTTP.
type HTTPProvider struct {
	baseURL string
	client  *http.Client
	now     func() time.Time
}

type fixResponse struct {
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Accuracy   float64 `json:"accuracy"`
	MeasuredAt string  `json:"measured_at"`
}

// NewHTTPProvider constructs a provider against a daemon base URL.
func NewHTTPProvider(baseURL string) (*HTTPProvider, error) {
	if baseURL == "" {
		return nil, ErrUnsupported
	}
	return &HTTPProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{},
		now:     time.Now,
	}, nil
}

// Current requests a single fix, honoring the option timeout and rejecting
// fixes older than the accepted cached-fix age.
func (p *HTTPProvider) Current(ctx context.Context, opts Options) (Fix, error) {
	if p == nil || p.baseURL == "" {
		return Fix{}, ErrUnsupported
	}
	opts = opts.withDefaults()

	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	query := url.Values{}
	if opts.HighAccuracy {
		query.Set("high_accuracy", "1")
	}
	endpoint := p.baseURL + "/v1/fix"
	if encoded := query.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Fix{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return Fix{}, ErrTimeout
		}
		return Fix{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusUnauthorized:
		return Fix{}, ErrPermissionDenied
	case resp.StatusCode == http.StatusNotFound:
		return Fix{}, ErrUnsupported
	case resp.StatusCode != http.StatusOK:
		return Fix{}, fmt.Errorf("%w: daemon status %d", ErrUnavailable, resp.StatusCode)
	}

	var body fixResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Fix{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	measuredAt, err := time.Parse(time.RFC3339, body.MeasuredAt)
	if err != nil {
		return Fix{}, fmt.Errorf("%w: bad fix timestamp", ErrUnavailable)
	}
	if age := p.now().Sub(measuredAt); age > opts.MaxFixAge {
		return Fix{}, fmt.Errorf("%w: cached fix is %s old", ErrUnavailable, age.Truncate(time.Second))
	}

	return Fix{
		Position:       geo.Position{Lat: body.Latitude, Lon: body.Longitude},
		AccuracyMeters: body.Accuracy,
		MeasuredAt:     measuredAt,
	}, nil
}
