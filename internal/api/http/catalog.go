// Package apihttp provides the HTTP endpoints of the terminal agent: catalog
// reads served from the cache, stock mutations proxied to the backend, file
// exports, the chatbot and messaging.
package apihttp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/saul00x/gestion3-sub000/internal/catalog"
	"github.com/saul00x/gestion3-sub000/internal/erp"
)

// StockWriter is the mutation slice of the ERP client.
type StockWriter interface {
	CreateStock(ctx context.Context, line erp.Stock) (*erp.Stock, error)
	UpdateStock(ctx context.Context, id string, update erp.StockUpdate) (*erp.Stock, error)
	DeleteStock(ctx context.Context, id string) error
}

// CatalogHandler serves catalog reads from the cache and writes stock
// mutations through to the backend.
type CatalogHandler struct {
	cache  *catalog.Cache
	writer StockWriter
}

// NewCatalogHandler constructs a CatalogHandler.
func NewCatalogHandler(cache *catalog.Cache, writer StockWriter) (*CatalogHandler, error) {
	if cache == nil {
		return nil, errors.New("catalog handler: nil cache")
	}
	if writer == nil {
		return nil, errors.New("catalog handler: nil stock writer")
	}
	return &CatalogHandler{cache: cache, writer: writer}, nil
}

// ServeHTTP handles /api/stocks, /api/produits and /api/magasins.
func (h *CatalogHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/api/stocks":
		switch r.Method {
		case http.MethodGet:
			h.handleList(w, r, func(s catalog.Snapshot) any { return s.Stocks })
		case http.MethodPost:
			h.handleCreate(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	case strings.HasPrefix(r.URL.Path, "/api/stocks/"):
		id := strings.TrimPrefix(r.URL.Path, "/api/stocks/")
		if id == "" || strings.Contains(id, "/") {
			http.NotFound(w, r)
			return
		}
		switch r.Method {
		case http.MethodPut:
			h.handleUpdate(w, r, id)
		case http.MethodDelete:
			h.handleDelete(w, r, id)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	case r.URL.Path == "/api/produits":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleList(w, r, func(s catalog.Snapshot) any { return s.Products })
		return
	case r.URL.Path == "/api/magasins":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleList(w, r, func(s catalog.Snapshot) any { return s.Stores })
		return
	}
	http.NotFound(w, r)
}

func (h *CatalogHandler) handleList(w http.ResponseWriter, r *http.Request, project func(catalog.Snapshot) any) {
	snapshot, err := h.cache.Data(r.Context())
	if err != nil {
		http.Error(w, "backend unavailable", http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(project(snapshot))
}

func (h *CatalogHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var line erp.Stock
	if err := json.NewDecoder(r.Body).Decode(&line); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	created, err := h.writer.CreateStock(r.Context(), line)
	if err != nil {
		writeBackendError(w, err)
		return
	}
	h.cache.Invalidate()
	h.cache.Prime(func(s *catalog.Snapshot) {
		s.Stocks = append(s.Stocks, *created)
	})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(created)
}

func (h *CatalogHandler) handleUpdate(w http.ResponseWriter, r *http.Request, id string) {
	var update erp.StockUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	updated, err := h.writer.UpdateStock(r.Context(), id, update)
	if err != nil {
		writeBackendError(w, err)
		return
	}
	h.cache.Invalidate()
	h.cache.Prime(func(s *catalog.Snapshot) {
		for i := range s.Stocks {
			if s.Stocks[i].ID == id {
				s.Stocks[i] = *updated
				return
			}
		}
	})
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(updated)
}

func (h *CatalogHandler) handleDelete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.writer.DeleteStock(r.Context(), id); err != nil {
		writeBackendError(w, err)
		return
	}
	h.cache.Invalidate()
	h.cache.Prime(func(s *catalog.Snapshot) {
		for i := range s.Stocks {
			if s.Stocks[i].ID == id {
				s.Stocks = append(s.Stocks[:i], s.Stocks[i+1:]...)
				return
			}
		}
	})
	w.WriteHeader(http.StatusNoContent)
}

func writeBackendError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, erp.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, erp.ErrUnauthorized):
		http.Error(w, "session expired", http.StatusUnauthorized)
	default:
		http.Error(w, "backend unavailable", http.StatusBadGateway)
	}
}
