package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/upb/wellchat-api/models"
)

// ErrNotFound is returned when a lookup matches no row
var ErrNotFound = errors.New("record not found")

// ErrConflict is returned when a write loses a uniqueness race
var ErrConflict = errors.New("unique constraint conflict")

// TransactionManager manages database transactions
type TransactionManager interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) (Transaction, error)

	// InTransaction executes a function within a transaction
	// Automatically commits if function succeeds, rolls back on error
	InTransaction(ctx context.Context, fn func(ctx context.Context, tx Transaction) error) error
}

// Transaction represents a database transaction
type Transaction interface {
	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Context returns a context carrying the transaction; repositories
	// called with it run their statements inside the transaction
	Context() context.Context
}

// UpsertUserParams are the attributes written by UpsertBySubject.
// SubscriptionIfAbsent is only stored when the row is created.
type UpsertUserParams struct {
	Email                *string
	Role                 models.UserRole
	SubscriptionIfAbsent *string
}

// UserRepository handles local user records keyed by identity provider subject
type UserRepository interface {
	// GetBySubject retrieves a user by Supabase subject
	GetBySubject(ctx context.Context, subject string) (*models.User, error)

	// UpsertBySubject atomically creates the user or updates email and role
	UpsertBySubject(ctx context.Context, subject string, params UpsertUserParams) (*models.User, error)
}

// ChatRepository stores chat conversations and messages
type ChatRepository interface {
	// CreateConversation inserts a new conversation
	CreateConversation(ctx context.Context, conversation *models.ChatConversation) error

	// CreateMessage inserts a message into an existing conversation
	CreateMessage(ctx context.Context, message *models.ChatMessage) error
}

// PersonalityRepository stores personality test uploads
type PersonalityRepository interface {
	// Create inserts a new result
	Create(ctx context.Context, result *models.PersonalityResult) error

	// List returns results newest first
	List(ctx context.Context, limit, offset int) ([]*models.PersonalityResult, error)

	// UpdateStatus sets the review status, returning ErrNotFound for unknown IDs
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.PersonalityStatus) (*models.PersonalityResult, error)
}

// Repositories aggregates all repository interfaces
type Repositories struct {
	Users       UserRepository
	Chats       ChatRepository
	Personality PersonalityRepository
}
