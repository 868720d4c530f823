package model

import (
	"time"

	"github.com/google/uuid"
)

type Board struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string    `gorm:"size:100;not null"`
	Slug        string    `gorm:"size:120;index"`
	Description string    `gorm:"type:text"`
	Public      bool      `gorm:"not null"`
	OwnerID     uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedAt   time.Time `gorm:"index"`
	UpdatedAt   time.Time

	Owner   User   `gorm:"foreignKey:OwnerID"`
	Members []User `gorm:"many2many:board_members"`

	// FeedbackCount is filled by queries that select it.
	FeedbackCount int64 `gorm:"->;-:migration"`
}

// BoardMember is the join row between a board and one of its members.
type BoardMember struct {
	BoardID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// HasMember reports whether userID is among the loaded members.
func (b *Board) HasMember(userID uuid.UUID) bool {
	for _, m := range b.Members {
		if m.ID == userID {
			return true
		}
	}
	return false
}
