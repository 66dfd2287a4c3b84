package models

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// User tests
func TestUser_TableName(t *testing.T) {
	assert.Equal(t, "app_users", User{}.TableName())
}

func TestUser_IsAdmin(t *testing.T) {
	assert.True(t, (&User{Role: RoleAdmin}).IsAdmin())
	assert.False(t, (&User{Role: RoleUser}).IsAdmin())
}

func TestUser_ToIdentity(t *testing.T) {
	t.Run("with email", func(t *testing.T) {
		email := "a@example.com"
		user := &User{ID: uuid.New(), SupabaseUserID: "sub-1", Email: &email, Role: RoleAdmin}

		id := user.ToIdentity()

		assert.Equal(t, "sub-1", id.ID)
		assert.Equal(t, "a@example.com", id.Email)
		assert.Equal(t, RoleAdmin, id.Role)
		assert.True(t, id.IsAdmin())
	})

	t.Run("without email", func(t *testing.T) {
		user := &User{SupabaseUserID: "sub-2", Role: RoleUser}

		id := user.ToIdentity()

		assert.Empty(t, id.Email)
		assert.False(t, id.IsAdmin())
	})
}

func TestIdentity_IsAdmin_Nil(t *testing.T) {
	var id *Identity
	assert.False(t, id.IsAdmin())
}

func TestIdentity_JSONOmitsEmptyEmail(t *testing.T) {
	data, err := json.Marshal(Identity{ID: "sub", Role: RoleUser})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"sub","role":"user"}`, string(data))
}

// Chat tests
func TestNewChatConversation(t *testing.T) {
	convo := NewChatConversation("sub-1", ServiceVitaAI)

	assert.NotEqual(t, uuid.Nil, convo.ID)
	assert.Equal(t, "sub-1", convo.OwnerID)
	assert.Equal(t, "New vitaai chat", convo.Title)
	assert.False(t, convo.CreatedAt.IsZero())
	assert.Equal(t, "chat_conversations", convo.TableName())
}

func TestNewChatMessage(t *testing.T) {
	convID := uuid.New()
	msg := NewChatMessage(convID, SenderAssistant, "hello")

	assert.NotEqual(t, uuid.Nil, msg.ID)
	assert.Equal(t, convID, msg.ConversationID)
	assert.Equal(t, SenderAssistant, msg.Sender)
	assert.Equal(t, KindText, msg.Kind)
	assert.Equal(t, "chat_messages", msg.TableName())
}

// Personality tests
func TestNewPersonalityResult(t *testing.T) {
	result := NewPersonalityResult("sub-1", "mbti", "uploads/abc.pdf")

	assert.NotEqual(t, uuid.Nil, result.ID)
	assert.Equal(t, PersonalityReceived, result.Status)
	assert.Equal(t, result.CreatedAt, result.UpdatedAt)
	assert.Equal(t, "personality_results", result.TableName())
}

func TestPersonalityStatus_Valid(t *testing.T) {
	for _, s := range []PersonalityStatus{PersonalityReceived, PersonalityProcessing, PersonalityCompleted, PersonalityRejected} {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, PersonalityStatus("DONE").Valid())
	assert.False(t, PersonalityStatus("").Valid())
}
