package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/upb/wellchat-api/middleware"
	"github.com/upb/wellchat-api/models"
	"github.com/upb/wellchat-api/repositories"
	"github.com/upb/wellchat-api/services"
	"github.com/upb/wellchat-api/utils"
	"go.uber.org/zap"
)

// UserReader loads the stored record behind an identity
type UserReader interface {
	GetBySubject(ctx context.Context, subject string) (*models.User, error)
}

// MeResponse is the body of GET /api/v1/me
type MeResponse struct {
	ID           string          `json:"id"`
	Email        string          `json:"email,omitempty"`
	Role         models.UserRole `json:"role"`
	Subscription string          `json:"subscription,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// MeHandler serves the caller's own profile
type MeHandler struct {
	users  UserReader
	logger *zap.Logger
}

// NewMeHandler creates a new MeHandler
func NewMeHandler(users UserReader, logger *zap.Logger) *MeHandler {
	return &MeHandler{
		users:  users,
		logger: logger,
	}
}

// HandleMe handles GET /api/v1/me
func (h *MeHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		_ = utils.WriteUnauthorized(w, "")
		return
	}

	user, err := h.users.GetBySubject(r.Context(), identity.ID)
	if errors.Is(err, repositories.ErrNotFound) {
		HandleServiceError(w, services.ErrNotFound, h.logger)
		return
	}
	if err != nil {
		HandleServiceError(w, services.WrapInternal("failed to load user", err), h.logger)
		return
	}

	resp := MeResponse{
		ID:        user.SupabaseUserID,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	}
	if user.Email != nil {
		resp.Email = *user.Email
	}
	if user.Subscription != nil {
		resp.Subscription = *user.Subscription
	}
	_ = utils.WriteOK(w, resp)
}
