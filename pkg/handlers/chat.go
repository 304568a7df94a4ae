package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/carbonlens/carbon-engine/pkg/services"
)

// ChatRequest is the request body for POST /api/chat.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse carries the assistant's reply.
type ChatResponse struct {
	Reply string `json:"reply"`
}

// ChatHandler handles the sustainability assistant endpoint.
type ChatHandler struct {
	service services.ChatService
	logger  *zap.Logger
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(service services.ChatService, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{service: service, logger: logger}
}

// RegisterRoutes registers the chat routes on the given mux.
func (h *ChatHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/chat", h.Chat)
}

// Chat handles POST /api/chat requests.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if strings.TrimSpace(req.Message) == "" {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Message is required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	reply, err := h.service.Reply(r.Context(), req.Message)
	if err != nil {
		h.logger.Error("Chat request failed", zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "chat_failure", "Failed to generate a reply"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, ChatResponse{Reply: reply}); err != nil {
		h.logger.Error("Failed to encode chat response", zap.Error(err))
	}
}
