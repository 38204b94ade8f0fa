package apihttp

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"net/http"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/saul00x/gestion3-sub000/internal/auth"
	"github.com/saul00x/gestion3-sub000/internal/erp"
)

// Messenger is the messaging slice of the ERP client.
type Messenger interface {
	ListMessages(ctx context.Context, userID string) ([]erp.Message, error)
	SendMessage(ctx context.Context, msg erp.OutboundMessage) (*erp.Message, error)
}

// MessagesHandler serves the user-to-user messaging endpoints.
type MessagesHandler struct {
	messenger Messenger
	entropy   *ulid.MonotonicEntropy
	clock     func() time.Time
}

// NewMessagesHandler constructs a MessagesHandler.
func NewMessagesHandler(messenger Messenger) (*MessagesHandler, error) {
	if messenger == nil {
		return nil, errors.New("messages handler: nil messenger")
	}
	return &MessagesHandler{
		messenger: messenger,
		entropy:   ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
		clock:     func() time.Time { return time.Now().UTC() },
	}, nil
}

// ServeHTTP handles /api/messages.
func (h *MessagesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/api/messages" {
		http.NotFound(w, r)
		return
	}
	switch r.Method {
	case http.MethodGet:
		h.handleList(w, r)
	case http.MethodPost:
		h.handleSend(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *MessagesHandler) handleList(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	if userID == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	messages, err := h.messenger.ListMessages(r.Context(), userID)
	if err != nil {
		writeBackendError(w, err)
		return
	}
	if messages == nil {
		messages = []erp.Message{}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(messages)
}

func (h *MessagesHandler) handleSend(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	if userID == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		RecipientID string `json:"destinataire"`
		Body        string `json:"contenu"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if req.RecipientID == "" || req.Body == "" {
		http.Error(w, "destinataire and contenu are required", http.StatusBadRequest)
		return
	}

	sent, err := h.messenger.SendMessage(r.Context(), erp.OutboundMessage{
		ID:          ulid.MustNew(ulid.Timestamp(h.clock()), h.entropy).String(),
		SenderID:    userID,
		RecipientID: req.RecipientID,
		Body:        req.Body,
	})
	if err != nil {
		writeBackendError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(sent)
}
