package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/upb/wellchat-api/models"
	"github.com/upb/wellchat-api/repositories"
	"go.uber.org/zap"
)

// uniqueViolation is the Postgres SQLSTATE for unique_violation
const uniqueViolation = "23505"

// IsUniqueViolation reports whether err is a Postgres unique constraint violation
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// UserRepository implements the repositories.UserRepository interface
type UserRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *DB, logger *zap.Logger) repositories.UserRepository {
	return &UserRepository{
		db:     db,
		logger: logger,
	}
}

const userColumns = `id, supabase_user_id, email, role, subscription, created_at, updated_at`

// GetBySubject retrieves a user by Supabase subject
func (r *UserRepository) GetBySubject(ctx context.Context, subject string) (*models.User, error) {
	query := `SELECT ` + userColumns + `
		FROM app_users
		WHERE supabase_user_id = $1`

	ctx, cancel := r.db.queryContext(ctx)
	defer cancel()

	user, err := scanUser(GetExecutor(ctx, r.db).QueryRowContext(ctx, query, subject))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", subject, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// UpsertBySubject inserts the user or, when the subject already exists,
// overwrites role and any non-null email. Subscription is only written on insert.
func (r *UserRepository) UpsertBySubject(ctx context.Context, subject string, params repositories.UpsertUserParams) (*models.User, error) {
	query := `
		INSERT INTO app_users (id, supabase_user_id, email, role, subscription, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (supabase_user_id) DO UPDATE
		SET email = COALESCE(EXCLUDED.email, app_users.email),
			role = EXCLUDED.role,
			updated_at = EXCLUDED.updated_at
		RETURNING ` + userColumns

	ctx, cancel := r.db.queryContext(ctx)
	defer cancel()

	now := time.Now().UTC()
	user, err := scanUser(GetExecutor(ctx, r.db).QueryRowContext(ctx, query,
		uuid.New(),
		subject,
		params.Email,
		params.Role,
		params.SubscriptionIfAbsent,
		now,
	))
	if err != nil {
		if IsUniqueViolation(err) {
			return nil, fmt.Errorf("failed to upsert user: %w: %w", repositories.ErrConflict, err)
		}
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}

	r.logger.Debug("user upserted",
		zap.String("id", user.ID.String()),
		zap.String("supabase_user_id", subject),
		zap.String("role", string(user.Role)))
	return user, nil
}

func scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	var email, subscription sql.NullString

	err := row.Scan(
		&user.ID,
		&user.SupabaseUserID,
		&email,
		&user.Role,
		&subscription,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if email.Valid {
		user.Email = &email.String
	}
	if subscription.Valid {
		user.Subscription = &subscription.String
	}
	return user, nil
}
