package location

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHTTPProviderReturnsFix(t *testing.T) {
	measured := time.Now().UTC().Add(-5 * time.Second)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/fix" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.URL.Query().Get("high_accuracy") != "1" {
			t.Errorf("expected high_accuracy=1, got %q", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"latitude":48.8566,"longitude":2.3522,"accuracy":8.5,"measured_at":"` +
			measured.Format(time.RFC3339) + `"}`))
	}))
	defer server.Close()

	provider, err := NewHTTPProvider(server.URL)
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	fix, err := provider.Current(context.Background(), DefaultOptions())
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if fix.Position.Lat != 48.8566 || fix.Position.Lon != 2.3522 {
		t.Fatalf("unexpected position %+v", fix.Position)
	}
	if fix.AccuracyMeters != 8.5 {
		t.Fatalf("unexpected accuracy %f", fix.AccuracyMeters)
	}
}

func TestHTTPProviderClassifiesPermissionDenied(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	provider, _ := NewHTTPProvider(server.URL)
	_, err := provider.Current(context.Background(), DefaultOptions())
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
	if IsTransient(err) {
		t.Fatal("permission denial must not be transient")
	}
}

func TestHTTPProviderRejectsStaleFix(t *testing.T) {
	stale := time.Now().UTC().Add(-5 * time.Minute)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"latitude":1,"longitude":2,"accuracy":5,"measured_at":"` +
			stale.Format(time.RFC3339) + `"}`))
	}))
	defer server.Close()

	provider, _ := NewHTTPProvider(server.URL)
	_, err := provider.Current(context.Background(), DefaultOptions())
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable for stale fix, got %v", err)
	}
	if !IsTransient(err) {
		t.Fatal("stale fix should be transient")
	}
}

func TestHTTPProviderTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	provider, _ := NewHTTPProvider(server.URL)
	_, err := provider.Current(context.Background(), Options{Timeout: 20 * time.Millisecond})
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if !IsTransient(err) {
		t.Fatal("timeout should be transient")
	}
}

func TestNewHTTPProviderWithoutBaseURL(t *testing.T) {
	if _, err := NewHTTPProvider(""); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestUserMessages(t *testing.T) {
	for _, err := range []error{ErrUnsupported, ErrPermissionDenied, ErrUnavailable, ErrTimeout} {
		if UserMessage(err) == "" {
			t.Fatalf("expected a message for %v", err)
		}
	}
	if UserMessage(ErrPermissionDenied) == UserMessage(ErrUnsupported) {
		t.Fatal("permission and capability failures must read differently")
	}
}
