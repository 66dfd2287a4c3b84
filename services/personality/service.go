package personality

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/upb/wellchat-api/models"
	"github.com/upb/wellchat-api/repositories"
	"github.com/upb/wellchat-api/services"
	"go.uber.org/zap"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 200
)

// Service records personality test uploads and their review status
type Service struct {
	results repositories.PersonalityRepository
	logger  *zap.Logger
}

// NewService creates a new personality service
func NewService(results repositories.PersonalityRepository, logger *zap.Logger) *Service {
	return &Service{
		results: results,
		logger:  logger,
	}
}

// Submit stores a RECEIVED result for an uploaded file
func (s *Service) Submit(ctx context.Context, ownerID, testType, fileKey string) (*models.PersonalityResult, error) {
	if testType == "" || fileKey == "" {
		return nil, services.NewDomainError(services.ErrorTypeValidation, "testType and fileKey are required", nil)
	}

	result := models.NewPersonalityResult(ownerID, testType, fileKey)
	if err := s.results.Create(ctx, result); err != nil {
		return nil, services.WrapInternal("failed to record personality result", err)
	}

	s.logger.Info("personality result received",
		zap.String("id", result.ID.String()),
		zap.String("owner_id", ownerID),
		zap.String("test_type", testType))
	return result, nil
}

// List returns results newest first. Out of range paging is clamped.
func (s *Service) List(ctx context.Context, limit, offset int) ([]*models.PersonalityResult, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	results, err := s.results.List(ctx, limit, offset)
	if err != nil {
		return nil, services.WrapInternal("failed to list personality results", err)
	}
	return results, nil
}

// UpdateStatus sets the review status of result id
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status models.PersonalityStatus) (*models.PersonalityResult, error) {
	if !status.Valid() {
		return nil, services.NewDomainError(services.ErrorTypeValidation,
			fmt.Sprintf("unknown status %q", status), nil).WithDetail("status", string(status))
	}

	result, err := s.results.UpdateStatus(ctx, id, status)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, services.NewDomainError(services.ErrorTypeNotFound, "personality result not found", err).
				WithDetail("id", id.String())
		}
		return nil, services.WrapInternal("failed to update personality result", err)
	}

	s.logger.Info("personality result status updated",
		zap.String("id", id.String()),
		zap.String("status", string(status)))
	return result, nil
}
