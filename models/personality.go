package models

import (
	"time"

	"github.com/google/uuid"
)

// PersonalityStatus tracks review progress of an uploaded personality test
type PersonalityStatus string

const (
	PersonalityReceived   PersonalityStatus = "RECEIVED"
	PersonalityProcessing PersonalityStatus = "PROCESSING"
	PersonalityCompleted  PersonalityStatus = "COMPLETED"
	PersonalityRejected   PersonalityStatus = "REJECTED"
)

// Valid reports whether s is one of the known statuses
func (s PersonalityStatus) Valid() bool {
	switch s {
	case PersonalityReceived, PersonalityProcessing, PersonalityCompleted, PersonalityRejected:
		return true
	}
	return false
}

// PersonalityResult references an uploaded personality test file
type PersonalityResult struct {
	ID        uuid.UUID         `json:"id" db:"id"`
	OwnerID   string            `json:"owner_id" db:"owner_id"`
	TestType  string            `json:"test_type" db:"test_type"`
	FileKey   string            `json:"file_key" db:"file_key"`
	Status    PersonalityStatus `json:"status" db:"status"`
	CreatedAt time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt time.Time         `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the PersonalityResult model
func (PersonalityResult) TableName() string {
	return "personality_results"
}

// NewPersonalityResult creates a result in the RECEIVED state
func NewPersonalityResult(ownerID, testType, fileKey string) *PersonalityResult {
	now := time.Now().UTC()
	return &PersonalityResult{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		TestType:  testType,
		FileKey:   fileKey,
		Status:    PersonalityReceived,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
