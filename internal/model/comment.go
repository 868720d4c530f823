package model

import (
	"time"

	"github.com/google/uuid"
)

type Comment struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	FeedbackID uuid.UUID `gorm:"type:uuid;not null;index"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index"`
	Text       string    `gorm:"type:text;not null"`
	CreatedAt  time.Time `gorm:"index"`
	UpdatedAt  time.Time

	User User `gorm:"foreignKey:UserID"`
}
