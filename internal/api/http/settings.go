package apihttp

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/saul00x/gestion3-sub000/internal/config"
)

// SettingsHandler serves the terminal settings blob.
type SettingsHandler struct {
	store *config.SettingsStore
}

// NewSettingsHandler constructs a SettingsHandler.
func NewSettingsHandler(store *config.SettingsStore) (*SettingsHandler, error) {
	if store == nil {
		return nil, errors.New("settings handler: nil store")
	}
	return &SettingsHandler{store: store}, nil
}

// ServeHTTP handles GET and PUT /api/settings.
func (h *SettingsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(h.store.Load())
	case http.MethodPut:
		var settings config.Settings
		if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
			http.Error(w, "invalid body", http.StatusBadRequest)
			return
		}
		if settings.GateRadiusMeters < 0 {
			http.Error(w, "gpsRadius must not be negative", http.StatusBadRequest)
			return
		}
		if err := h.store.Save(settings); err != nil {
			http.Error(w, "save failed", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(settings)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}
