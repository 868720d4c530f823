package handler

import (
	"time"

	"feedbackhub/internal/model"
	"feedbackhub/internal/summary"

	"github.com/google/uuid"
)

type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type BoardResponse struct {
	ID            uuid.UUID      `json:"id"`
	Name          string         `json:"name"`
	Slug          string         `json:"slug"`
	Description   string         `json:"description"`
	Public        bool           `json:"public"`
	Owner         UserResponse   `json:"owner"`
	Members       []UserResponse `json:"members"`
	FeedbackCount int64          `json:"feedback_count"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

type CommentResponse struct {
	ID         uuid.UUID    `json:"id"`
	FeedbackID uuid.UUID    `json:"feedback_id"`
	User       UserResponse `json:"user"`
	Text       string       `json:"text"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// FeedbackResponse nests the full board and creator representations.
type FeedbackResponse struct {
	ID           uuid.UUID         `json:"id"`
	Title        string            `json:"title"`
	Description  string            `json:"description"`
	Board        BoardResponse     `json:"board"`
	Status       model.Status      `json:"status"`
	Tags         string            `json:"tags"`
	TagsList     []string          `json:"tags_list"`
	CreatedBy    UserResponse      `json:"created_by"`
	UpvoteCount  int64             `json:"upvote_count"`
	CommentCount int64             `json:"comment_count"`
	IsUpvoted    bool              `json:"is_upvoted"`
	Comments     []CommentResponse `json:"comments,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

type UpvoteResponse struct {
	Upvoted     bool  `json:"upvoted"`
	UpvoteCount int64 `json:"upvote_count"`
}

type SummaryResponse struct {
	TotalFeedback      int                  `json:"total_feedback"`
	OpenFeedback       int                  `json:"open_feedback"`
	InProgressFeedback int                  `json:"in_progress_feedback"`
	CompletedFeedback  int                  `json:"completed_feedback"`
	RejectedFeedback   int                  `json:"rejected_feedback"`
	TopVotedFeedback   []FeedbackResponse   `json:"top_voted_feedback"`
	FeedbackTrends     map[string]int       `json:"feedback_trends"`
	StatusDistribution map[model.Status]int `json:"status_distribution"`
	TagDistribution    map[string]int       `json:"tag_distribution"`
}

func newUserResponse(u *model.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
	}
}

func newBoardResponse(b *model.Board) BoardResponse {
	members := make([]UserResponse, len(b.Members))
	for i := range b.Members {
		members[i] = newUserResponse(&b.Members[i])
	}
	return BoardResponse{
		ID:            b.ID,
		Name:          b.Name,
		Slug:          b.Slug,
		Description:   b.Description,
		Public:        b.Public,
		Owner:         newUserResponse(&b.Owner),
		Members:       members,
		FeedbackCount: b.FeedbackCount,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
}

func newCommentResponse(cm *model.Comment) CommentResponse {
	return CommentResponse{
		ID:         cm.ID,
		FeedbackID: cm.FeedbackID,
		User:       newUserResponse(&cm.User),
		Text:       cm.Text,
		CreatedAt:  cm.CreatedAt,
		UpdatedAt:  cm.UpdatedAt,
	}
}

func newFeedbackResponse(fb *model.Feedback, upvoted bool) FeedbackResponse {
	tags := fb.TagList()
	if tags == nil {
		tags = []string{}
	}
	resp := FeedbackResponse{
		ID:           fb.ID,
		Title:        fb.Title,
		Description:  fb.Description,
		Board:        newBoardResponse(&fb.Board),
		Status:       fb.Status,
		Tags:         fb.Tags,
		TagsList:     tags,
		CreatedBy:    newUserResponse(&fb.Creator),
		UpvoteCount:  fb.UpvoteCount,
		CommentCount: fb.CommentCount,
		IsUpvoted:    upvoted,
		CreatedAt:    fb.CreatedAt,
		UpdatedAt:    fb.UpdatedAt,
	}
	for i := range fb.Comments {
		resp.Comments = append(resp.Comments, newCommentResponse(&fb.Comments[i]))
	}
	return resp
}

func newSummaryResponse(s *summary.Summary, upvoted map[uuid.UUID]bool) SummaryResponse {
	top := make([]FeedbackResponse, len(s.Top))
	for i := range s.Top {
		top[i] = newFeedbackResponse(&s.Top[i], upvoted[s.Top[i].ID])
	}
	return SummaryResponse{
		TotalFeedback:      s.Total,
		OpenFeedback:       s.Open,
		InProgressFeedback: s.InProgress,
		CompletedFeedback:  s.Completed,
		RejectedFeedback:   s.Rejected,
		TopVotedFeedback:   top,
		FeedbackTrends:     s.TrendMap(),
		StatusDistribution: s.StatusDistribution,
		TagDistribution:    s.TagDistribution,
	}
}
