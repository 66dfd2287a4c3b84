package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/upb/wellchat-api/models"
	"github.com/upb/wellchat-api/repositories"
	"github.com/upb/wellchat-api/services"
	"go.uber.org/zap"
)

// StubReply is the assistant's placeholder answer until a model is wired in
const StubReply = "[mvp-stub] Thank you!"

// StartResult is the outcome of opening a conversation
type StartResult struct {
	ConversationID uuid.UUID
	Reply          *models.ChatMessage
}

// Service opens chat conversations
type Service struct {
	chats  repositories.ChatRepository
	txMgr  repositories.TransactionManager
	logger *zap.Logger
}

// NewService creates a new chat service
func NewService(chats repositories.ChatRepository, txMgr repositories.TransactionManager, logger *zap.Logger) *Service {
	return &Service{
		chats:  chats,
		txMgr:  txMgr,
		logger: logger,
	}
}

// Start creates a conversation for ownerID holding the user's message and
// the assistant reply. All three rows are written in one transaction.
func (s *Service) Start(ctx context.Context, ownerID string, service models.ChatService, content string) (*StartResult, error) {
	if service != models.ServiceVitaAI && service != models.ServiceExecuWell {
		return nil, services.NewDomainError(services.ErrorTypeValidation,
			fmt.Sprintf("unknown service %q", service), nil).WithDetail("service", string(service))
	}
	if strings.TrimSpace(content) == "" {
		return nil, services.NewDomainError(services.ErrorTypeValidation, "content is required", nil)
	}

	result, err := services.WithTransactionResult(ctx, s.txMgr, func(ctx context.Context, _ repositories.Transaction) (*StartResult, error) {
		conversation := models.NewChatConversation(ownerID, service)
		if err := s.chats.CreateConversation(ctx, conversation); err != nil {
			return nil, err
		}
		if err := s.chats.CreateMessage(ctx, models.NewChatMessage(conversation.ID, models.SenderUser, content)); err != nil {
			return nil, err
		}
		reply := models.NewChatMessage(conversation.ID, models.SenderAssistant, StubReply)
		if err := s.chats.CreateMessage(ctx, reply); err != nil {
			return nil, err
		}
		return &StartResult{ConversationID: conversation.ID, Reply: reply}, nil
	})
	if err != nil {
		return nil, services.WrapInternal("failed to start conversation", err)
	}

	s.logger.Info("conversation started",
		zap.String("conversation_id", result.ConversationID.String()),
		zap.String("owner_id", ownerID),
		zap.String("service", string(service)))
	return result, nil
}
