package apihttp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/saul00x/gestion3-sub000/internal/catalog"
	"github.com/saul00x/gestion3-sub000/internal/erp"
	"github.com/saul00x/gestion3-sub000/internal/export"
	"github.com/saul00x/gestion3-sub000/internal/observability/metrics"
)

// AttendanceReader is the attendance history slice of the ERP client.
type AttendanceReader interface {
	ListAttendance(ctx context.Context, userID, from, to string) ([]erp.AttendanceRecord, error)
	ListUsers(ctx context.Context) ([]erp.User, error)
}

// ExportsHandler serves file downloads for the manager views.
type ExportsHandler struct {
	cache      *catalog.Cache
	attendance AttendanceReader
	clock      func() time.Time
}

// NewExportsHandler constructs an ExportsHandler.
func NewExportsHandler(cache *catalog.Cache, attendance AttendanceReader) (*ExportsHandler, error) {
	if cache == nil {
		return nil, errors.New("exports handler: nil cache")
	}
	if attendance == nil {
		return nil, errors.New("exports handler: nil attendance reader")
	}
	return &ExportsHandler{
		cache:      cache,
		attendance: attendance,
		clock:      func() time.Time { return time.Now().UTC() },
	}, nil
}

// ServeHTTP handles /api/exports/ downloads.
func (h *ExportsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	switch r.URL.Path {
	case "/api/exports/stocks.xlsx":
		h.handleStocks(w, r, "xlsx")
	case "/api/exports/stocks.csv":
		h.handleStocks(w, r, "csv")
	case "/api/exports/attendance.pdf":
		h.handleAttendance(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *ExportsHandler) handleStocks(w http.ResponseWriter, r *http.Request, format string) {
	started := h.clock()
	snapshot, err := h.cache.Data(r.Context())
	if err != nil {
		metrics.ObserveExport(format, err, h.clock().Sub(started))
		http.Error(w, "backend unavailable", http.StatusBadGateway)
		return
	}

	rows := export.StockRows(snapshot)
	var payload []byte
	var contentType, filename string
	switch format {
	case "xlsx":
		payload, err = export.BuildStockXLSX(rows, started)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		filename = "stocks.xlsx"
	case "csv":
		payload, err = export.BuildStockCSV(rows)
		contentType = "text/csv; charset=utf-8"
		filename = "stocks.csv"
	}
	metrics.ObserveExport(format, err, h.clock().Sub(started))
	if err != nil {
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	_, _ = w.Write(payload)
}

func (h *ExportsHandler) handleAttendance(w http.ResponseWriter, r *http.Request) {
	started := h.clock()
	userID := r.URL.Query().Get("utilisateur")
	if userID == "" {
		http.Error(w, "utilisateur is required", http.StatusBadRequest)
		return
	}
	from := r.URL.Query().Get("du")
	to := r.URL.Query().Get("au")

	records, err := h.attendance.ListAttendance(r.Context(), userID, from, to)
	if err != nil {
		metrics.ObserveExport("pdf", err, h.clock().Sub(started))
		http.Error(w, "backend unavailable", http.StatusBadGateway)
		return
	}

	name := userID
	if users, err := h.attendance.ListUsers(r.Context()); err == nil {
		for _, user := range users {
			if user.ID == userID {
				name = strings.TrimSpace(user.FirstName + " " + user.LastName)
				break
			}
		}
	}

	payload, err := export.BuildAttendancePDF(name, records, started)
	metrics.ObserveExport("pdf", err, h.clock().Sub(started))
	if err != nil {
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="attendance.pdf"`)
	_, _ = w.Write(payload)
}
