package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ChatService names the product line a conversation belongs to
type ChatService string

const (
	ServiceVitaAI    ChatService = "vitaai"
	ServiceExecuWell ChatService = "execuwell"
)

// MessageSender identifies who wrote a chat message
type MessageSender string

const (
	SenderUser      MessageSender = "user"
	SenderAssistant MessageSender = "assistant"
)

// MessageKind is the payload kind of a chat message
type MessageKind string

const (
	KindText MessageKind = "text"
)

// ChatConversation groups the messages of one chat session
type ChatConversation struct {
	ID        uuid.UUID   `json:"id" db:"id"`
	OwnerID   string      `json:"owner_id" db:"owner_id"`
	Service   ChatService `json:"service" db:"service"`
	Title     string      `json:"title" db:"title"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"`
}

// TableName returns the table name for the ChatConversation model
func (ChatConversation) TableName() string {
	return "chat_conversations"
}

// NewChatConversation creates a conversation owned by the given subject
func NewChatConversation(ownerID string, service ChatService) *ChatConversation {
	return &ChatConversation{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Service:   service,
		Title:     fmt.Sprintf("New %s chat", service),
		CreatedAt: time.Now().UTC(),
	}
}

// ChatMessage is a single message within a conversation
type ChatMessage struct {
	ID             uuid.UUID     `json:"id" db:"id"`
	ConversationID uuid.UUID     `json:"conversation_id" db:"conversation_id"`
	Sender         MessageSender `json:"sender" db:"sender"`
	Kind           MessageKind   `json:"kind" db:"kind"`
	Content        string        `json:"content" db:"content"`
	CreatedAt      time.Time     `json:"created_at" db:"created_at"`
}

// TableName returns the table name for the ChatMessage model
func (ChatMessage) TableName() string {
	return "chat_messages"
}

// NewChatMessage creates a text message in a conversation
func NewChatMessage(conversationID uuid.UUID, sender MessageSender, content string) *ChatMessage {
	return &ChatMessage{
		ID:             uuid.New(),
		ConversationID: conversationID,
		Sender:         sender,
		Kind:           KindText,
		Content:        content,
		CreatedAt:      time.Now().UTC(),
	}
}
