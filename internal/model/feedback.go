package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is the workflow state of a feedback item.
type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusRejected   Status = "rejected"
)

// Statuses lists every status in workflow order.
var Statuses = []Status{StatusOpen, StatusInProgress, StatusCompleted, StatusRejected}

func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

type Feedback struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Title       string    `gorm:"size:200;not null"`
	Description string    `gorm:"type:text;not null"`
	BoardID     uuid.UUID `gorm:"type:uuid;not null;index"`
	Status      Status    `gorm:"type:varchar(20);not null;default:open;index"`
	Tags        string    `gorm:"size:200"`
	CreatedBy   uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedAt   time.Time `gorm:"index"`
	UpdatedAt   time.Time

	Board    Board     `gorm:"foreignKey:BoardID;constraint:OnDelete:CASCADE"`
	Creator  User      `gorm:"foreignKey:CreatedBy"`
	Comments []Comment `gorm:"foreignKey:FeedbackID;constraint:OnDelete:CASCADE"`

	UpvoteCount  int64 `gorm:"->;-:migration"`
	CommentCount int64 `gorm:"->;-:migration"`
}

func (Feedback) TableName() string {
	return "feedback"
}

// TagList returns the trimmed, non-empty tags of the item.
func (f *Feedback) TagList() []string {
	return SplitTags(f.Tags)
}

// FeedbackUpvote records that a user upvoted a feedback item. The composite
// primary key keeps one upvote per user per item.
type FeedbackUpvote struct {
	FeedbackID uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID     uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`

	Feedback Feedback `gorm:"foreignKey:FeedbackID;constraint:OnDelete:CASCADE"`
}

// FeedbackStat is the projection of a feedback row used for analytics.
type FeedbackStat struct {
	Status    Status
	Tags      string
	CreatedAt time.Time
}

// SplitTags splits a comma-separated tag string, trimming whitespace and
// dropping empty tokens. Duplicates are kept.
func SplitTags(tags string) []string {
	if tags == "" {
		return nil
	}
	parts := strings.Split(tags, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
