package model

import "time"

// ChallengeFile is an uploaded asset owned by a custom challenge.
// Rows are written together with their challenge and never updated.
type ChallengeFile struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	ChallengeID      string    `json:"challenge_id" gorm:"type:char(36);not null;index"`
	StoredFilename   string    `json:"stored_filename" gorm:"size:255;not null;uniqueIndex"`
	OriginalFilename string    `json:"original_filename" gorm:"size:255;not null"`
	StoredPath       string    `json:"-" gorm:"size:1024;not null"`
	ContentType      string    `json:"content_type" gorm:"size:255"`
	Size             int64     `json:"size"`
	SHA256           string    `json:"sha256" gorm:"size:64"`
	CreatedAt        time.Time `json:"created_at"`
}
