package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/upb/wellchat-api/models"
	"github.com/upb/wellchat-api/repositories"
	"go.uber.org/zap"
)

const personalityColumns = `id, owner_id, test_type, file_key, status, created_at, updated_at`

// PersonalityRepository implements the repositories.PersonalityRepository interface
type PersonalityRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewPersonalityRepository creates a new personality result repository
func NewPersonalityRepository(db *DB, logger *zap.Logger) repositories.PersonalityRepository {
	return &PersonalityRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new result
func (r *PersonalityRepository) Create(ctx context.Context, result *models.PersonalityResult) error {
	query := `
		INSERT INTO personality_results (` + personalityColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	ctx, cancel := r.db.queryContext(ctx)
	defer cancel()

	_, err := GetExecutor(ctx, r.db).ExecContext(ctx, query,
		result.ID,
		result.OwnerID,
		result.TestType,
		result.FileKey,
		result.Status,
		result.CreatedAt,
		result.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create personality result: %w", err)
	}

	r.logger.Debug("personality result created",
		zap.String("id", result.ID.String()),
		zap.String("owner_id", result.OwnerID))
	return nil
}

// List returns results newest first
func (r *PersonalityRepository) List(ctx context.Context, limit, offset int) ([]*models.PersonalityResult, error) {
	query := `
		SELECT ` + personalityColumns + `
		FROM personality_results
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	ctx, cancel := r.db.queryContext(ctx)
	defer cancel()

	rows, err := GetExecutor(ctx, r.db).QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list personality results: %w", err)
	}
	defer rows.Close()

	results := make([]*models.PersonalityResult, 0)
	for rows.Next() {
		result := &models.PersonalityResult{}
		if err := rows.Scan(
			&result.ID,
			&result.OwnerID,
			&result.TestType,
			&result.FileKey,
			&result.Status,
			&result.CreatedAt,
			&result.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan personality result: %w", err)
		}
		results = append(results, result)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating personality results: %w", err)
	}

	return results, nil
}

// UpdateStatus sets the review status of a result
func (r *PersonalityRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.PersonalityStatus) (*models.PersonalityResult, error) {
	query := `
		UPDATE personality_results
		SET status = $2, updated_at = $3
		WHERE id = $1
		RETURNING ` + personalityColumns

	ctx, cancel := r.db.queryContext(ctx)
	defer cancel()

	result := &models.PersonalityResult{}
	err := GetExecutor(ctx, r.db).QueryRowContext(ctx, query, id, status, time.Now().UTC()).Scan(
		&result.ID,
		&result.OwnerID,
		&result.TestType,
		&result.FileKey,
		&result.Status,
		&result.CreatedAt,
		&result.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("personality result %s: %w", id, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update personality result: %w", err)
	}

	r.logger.Debug("personality result status updated",
		zap.String("id", id.String()),
		zap.String("status", string(status)))
	return result, nil
}
