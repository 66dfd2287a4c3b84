package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/upb/wellchat-api/middleware"
	"github.com/upb/wellchat-api/models"
	"github.com/upb/wellchat-api/utils"
	"go.uber.org/zap"
)

// PersonalityService records and reviews personality test uploads
type PersonalityService interface {
	Submit(ctx context.Context, ownerID, testType, fileKey string) (*models.PersonalityResult, error)
	List(ctx context.Context, limit, offset int) ([]*models.PersonalityResult, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.PersonalityStatus) (*models.PersonalityResult, error)
}

// SubmitPersonalityRequest is the body of POST /api/v1/personality
type SubmitPersonalityRequest struct {
	TestType string `json:"testType" validate:"required,max=100"`
	FileKey  string `json:"fileKey" validate:"required,max=1024"`
}

// UpdatePersonalityRequest is the body of PUT /api/v1/admin/personality
type UpdatePersonalityRequest struct {
	ID     string `json:"id" validate:"required,uuid"`
	Status string `json:"status" validate:"required,oneof=RECEIVED PROCESSING COMPLETED REJECTED"`
}

// OKResponse acknowledges a write
type OKResponse struct {
	OK bool `json:"ok"`
}

// PersonalityHandler handles personality result HTTP requests
type PersonalityHandler struct {
	results PersonalityService
	logger  *zap.Logger
}

// NewPersonalityHandler creates a new PersonalityHandler
func NewPersonalityHandler(results PersonalityService, logger *zap.Logger) *PersonalityHandler {
	return &PersonalityHandler{
		results: results,
		logger:  logger,
	}
}

// HandleSubmit handles POST /api/v1/personality
func (h *PersonalityHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		_ = utils.WriteUnauthorized(w, "")
		return
	}

	var req SubmitPersonalityRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	if _, err := h.results.Submit(r.Context(), identity.ID, req.TestType, req.FileKey); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, OKResponse{OK: true})
}

// HandleList handles GET /api/v1/admin/personality
func (h *PersonalityHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		_ = utils.WriteBadRequest(w, "limit must be an integer", nil)
		return
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		_ = utils.WriteBadRequest(w, "offset must be an integer", nil)
		return
	}

	results, err := h.results.List(r.Context(), limit, offset)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteData(w, results)
}

// HandleUpdate handles PUT /api/v1/admin/personality
func (h *PersonalityHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req UpdatePersonalityRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	id, err := uuid.Parse(req.ID)
	if err != nil {
		_ = utils.WriteBadRequest(w, "id must be a valid UUID", nil)
		return
	}

	if _, err := h.results.UpdateStatus(r.Context(), id, models.PersonalityStatus(req.Status)); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, OKResponse{OK: true})
}

// queryInt reads an optional integer query parameter, zero when absent
func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
