package apihttp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/saul00x/gestion3-sub000/internal/chatbot"
)

// Responder answers chatbot messages.
type Responder interface {
	Respond(ctx context.Context, text string) (chatbot.Reply, error)
}

// ChatbotHandler serves POST /api/chatbot.
type ChatbotHandler struct {
	bot Responder
}

// NewChatbotHandler constructs a ChatbotHandler.
func NewChatbotHandler(bot Responder) (*ChatbotHandler, error) {
	if bot == nil {
		return nil, errors.New("chatbot handler: nil responder")
	}
	return &ChatbotHandler{bot: bot}, nil
}

// ServeHTTP handles POST /api/chatbot.
func (h *ChatbotHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if req.Message == "" {
		http.Error(w, "message is required", http.StatusBadRequest)
		return
	}

	reply, err := h.bot.Respond(r.Context(), req.Message)
	if err != nil {
		http.Error(w, "backend unavailable", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(reply)
}
