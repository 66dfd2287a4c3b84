package postgres

import (
	"context"
	"fmt"

	"github.com/upb/wellchat-api/models"
	"github.com/upb/wellchat-api/repositories"
	"go.uber.org/zap"
)

// ChatRepository implements the repositories.ChatRepository interface
type ChatRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewChatRepository creates a new chat repository
func NewChatRepository(db *DB, logger *zap.Logger) repositories.ChatRepository {
	return &ChatRepository{
		db:     db,
		logger: logger,
	}
}

// CreateConversation inserts a new conversation
func (r *ChatRepository) CreateConversation(ctx context.Context, conversation *models.ChatConversation) error {
	query := `
		INSERT INTO chat_conversations (id, owner_id, service, title, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	ctx, cancel := r.db.queryContext(ctx)
	defer cancel()

	_, err := GetExecutor(ctx, r.db).ExecContext(ctx, query,
		conversation.ID,
		conversation.OwnerID,
		conversation.Service,
		conversation.Title,
		conversation.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create conversation: %w", err)
	}

	r.logger.Debug("conversation created", zap.String("id", conversation.ID.String()))
	return nil
}

// CreateMessage inserts a message into an existing conversation
func (r *ChatRepository) CreateMessage(ctx context.Context, message *models.ChatMessage) error {
	query := `
		INSERT INTO chat_messages (id, conversation_id, sender, kind, content, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	ctx, cancel := r.db.queryContext(ctx)
	defer cancel()

	_, err := GetExecutor(ctx, r.db).ExecContext(ctx, query,
		message.ID,
		message.ConversationID,
		message.Sender,
		message.Kind,
		message.Content,
		message.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}

	return nil
}
