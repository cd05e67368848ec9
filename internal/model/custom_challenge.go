package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ChallengeStatus represents the review state of a custom challenge.
type ChallengeStatus string

const (
	ChallengeStatusPending  ChallengeStatus = "pending"
	ChallengeStatusApproved ChallengeStatus = "approved"
	ChallengeStatusRejected ChallengeStatus = "rejected"
)

// Valid reports whether s is one of the known statuses.
func (s ChallengeStatus) Valid() bool {
	switch s {
	case ChallengeStatusPending, ChallengeStatusApproved, ChallengeStatusRejected:
		return true
	}
	return false
}

// ChallengeStatuses lists every status in review order.
var ChallengeStatuses = []ChallengeStatus{ChallengeStatusPending, ChallengeStatusApproved, ChallengeStatusRejected}

// CustomChallenge is a user-submitted challenge that goes through review before it is playable.
// ReviewedBy, ReviewedAt and ReviewNotes are nil exactly while the challenge is pending.
type CustomChallenge struct {
	ID          string          `json:"id" gorm:"type:char(36);primaryKey"`
	Title       string          `json:"title" gorm:"size:255;not null"`
	Description string          `json:"description" gorm:"type:text;not null"`
	Category    string          `json:"category" gorm:"size:100;not null;index"`
	Flag        string          `json:"-" gorm:"size:255;not null"`
	Author      string          `json:"author" gorm:"size:255;not null;index"`
	Status      ChallengeStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	CreatedAt   time.Time       `json:"created_at" gorm:"index"`
	ReviewedBy  *string         `json:"reviewed_by,omitempty" gorm:"size:255"`
	ReviewedAt  *time.Time      `json:"reviewed_at,omitempty"`
	ReviewNotes *string         `json:"review_notes,omitempty" gorm:"type:text"`

	// Relations
	Files []ChallengeFile `json:"files,omitempty" gorm:"foreignKey:ChallengeID"`
}

// BeforeCreate sets UUID before creating the record.
func (c *CustomChallenge) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.Status == "" {
		c.Status = ChallengeStatusPending
	}
	return nil
}

// IsApproved reports whether the challenge is visible and playable.
func (c *CustomChallenge) IsApproved() bool {
	return c.Status == ChallengeStatusApproved
}
