package handlers

import (
	"context"
	"net/http"

	"github.com/upb/wellchat-api/middleware"
	"github.com/upb/wellchat-api/models"
	"github.com/upb/wellchat-api/services/chat"
	"github.com/upb/wellchat-api/utils"
	"go.uber.org/zap"
)

// ChatStarter opens conversations
type ChatStarter interface {
	Start(ctx context.Context, ownerID string, service models.ChatService, content string) (*chat.StartResult, error)
}

// ChatRequest is the body of POST /api/v1/chat
type ChatRequest struct {
	Service string `json:"service" validate:"required,oneof=vitaai execuwell"`
	Content string `json:"content" validate:"required,max=8000"`
}

// ChatResponse is returned after the conversation is created
type ChatResponse struct {
	ConversationID string `json:"conversationId"`
	Message        string `json:"message"`
}

// ChatHandler handles chat HTTP requests
type ChatHandler struct {
	chats  ChatStarter
	logger *zap.Logger
}

// NewChatHandler creates a new ChatHandler
func NewChatHandler(chats ChatStarter, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		chats:  chats,
		logger: logger,
	}
}

// HandleCreate handles POST /api/v1/chat
func (h *ChatHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		_ = utils.WriteUnauthorized(w, "")
		return
	}

	var req ChatRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	result, err := h.chats.Start(r.Context(), identity.ID, models.ChatService(req.Service), req.Content)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, ChatResponse{
		ConversationID: result.ConversationID.String(),
		Message:        result.Reply.Content,
	})
}
