package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/saul00x/gestion3-sub000/internal/attendance/application"
	attendance "github.com/saul00x/gestion3-sub000/internal/attendance/domain"
	"github.com/saul00x/gestion3-sub000/internal/auth"
	"github.com/saul00x/gestion3-sub000/internal/erp"
)

// Backend is the record lookup slice of the ERP client the handler needs.
type Backend interface {
	TodayAttendance(ctx context.Context, userID, date string) (*erp.AttendanceRecord, error)
}

// Handler provides the attendance endpoints of the terminal.
type Handler struct {
	gate    *application.Gate
	backend Backend
	clock   func() time.Time
}

// NewHandler constructs a handler.
func NewHandler(gate *application.Gate, backend Backend) (*Handler, error) {
	if gate == nil {
		return nil, errors.New("attendance handler: nil gate")
	}
	if backend == nil {
		return nil, errors.New("attendance handler: nil backend")
	}
	return &Handler{
		gate:    gate,
		backend: backend,
		clock:   func() time.Time { return time.Now().UTC() },
	}, nil
}

// ServeHTTP handles /api/attendance and subroutes.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/api/attendance":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleSubmit(w, r)
		return
	case r.URL.Path == "/api/attendance/today":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleToday(w, r)
		return
	}
	http.NotFound(w, r)
}

type submitRequest struct {
	Action string `json:"action"`
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	if userID == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	action := attendance.Action(req.Action)
	if !action.Valid() {
		http.Error(w, "unknown action", http.StatusBadRequest)
		return
	}

	decision, err := h.gate.EvaluateAndSubmit(r.Context(), userID, action)
	if err != nil {
		http.Error(w, "backend unavailable", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(decision)
}

func (h *Handler) handleToday(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	if userID == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	date := h.clock().Format(attendance.DateLayout)
	record, err := h.backend.TodayAttendance(r.Context(), userID, date)
	if err != nil {
		http.Error(w, "backend unavailable", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(struct {
		Date   string                `json:"date"`
		Record *erp.AttendanceRecord `json:"record"`
	}{Date: date, Record: record})
}
