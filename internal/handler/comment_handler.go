package handler

import (
	"context"
	"errors"
	"net/http"

	"feedbackhub/internal/model"
	"feedbackhub/internal/policy"
	"feedbackhub/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CommentStore interface {
	Create(ctx context.Context, comment *model.Comment) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Comment, error)
	List(ctx context.Context, feedbackID *uuid.UUID) ([]model.Comment, error)
	Update(ctx context.Context, comment *model.Comment) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// FeedbackFinder loads a feedback item together with its board.
type FeedbackFinder interface {
	Find(ctx context.Context, id uuid.UUID) (*model.Feedback, error)
}

type CommentHandler struct {
	commentRepo CommentStore
	feedback    FeedbackFinder
	members     MembershipChecker
}

func NewCommentHandler(commentRepo CommentStore, feedback FeedbackFinder, members MembershipChecker) *CommentHandler {
	return &CommentHandler{
		commentRepo: commentRepo,
		feedback:    feedback,
		members:     members,
	}
}

type CreateCommentRequest struct {
	FeedbackID uuid.UUID `json:"feedback_id" binding:"required"`
	Text       string    `json:"text" binding:"required,min=5"`
}

type UpdateCommentRequest struct {
	Text string `json:"text" binding:"required,min=5"`
}

// List returns comments oldest first, optionally narrowed by feedback_id.
func (h *CommentHandler) List(c *gin.Context) {
	if _, ok := currentCaller(c); !ok {
		return
	}
	feedbackID, ok := queryID(c, "feedback_id")
	if !ok {
		return
	}

	comments, err := h.commentRepo.List(c.Request.Context(), feedbackID)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]CommentResponse, len(comments))
	for i := range comments {
		response[i] = newCommentResponse(&comments[i])
	}
	c.JSON(http.StatusOK, response)
}

func (h *CommentHandler) GetByID(c *gin.Context) {
	if _, ok := currentCaller(c); !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	comment, err := h.commentRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newCommentResponse(comment))
}

// Create comments on feedback whose board the caller can read.
func (h *CommentHandler) Create(c *gin.Context) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}

	var req CreateCommentRequest
	if !bindJSON(c, &req) {
		return
	}

	fb, err := h.feedback.Find(c.Request.Context(), req.FeedbackID)
	if errors.Is(err, repository.ErrFeedbackNotFound) {
		respondError(c, invalidField("feedback_id", "Feedback does not exist"))
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	if err := requireBoardAccess(c.Request.Context(), h.members, caller, &fb.Board); err != nil {
		respondError(c, err)
		return
	}

	comment := &model.Comment{
		ID:         uuid.New(),
		FeedbackID: fb.ID,
		UserID:     caller.ID,
		Text:       req.Text,
	}
	if err := h.commentRepo.Create(c.Request.Context(), comment); err != nil {
		respondError(c, err)
		return
	}

	h.respondWithComment(c, http.StatusCreated, comment.ID)
}

// Update is allowed to the author and to moderators and admins.
func (h *CommentHandler) Update(c *gin.Context) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req UpdateCommentRequest
	if !bindJSON(c, &req) {
		return
	}

	comment, err := h.commentRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := policy.Require(policy.CanWriteComment(caller, comment)); err != nil {
		respondError(c, err)
		return
	}

	comment.Text = req.Text
	if err := h.commentRepo.Update(c.Request.Context(), comment); err != nil {
		respondError(c, err)
		return
	}

	h.respondWithComment(c, http.StatusOK, comment.ID)
}

// Delete is allowed to the author and to moderators and admins.
func (h *CommentHandler) Delete(c *gin.Context) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	comment, err := h.commentRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := policy.Require(policy.CanWriteComment(caller, comment)); err != nil {
		respondError(c, err)
		return
	}

	if err := h.commentRepo.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CommentHandler) respondWithComment(c *gin.Context, status int, id uuid.UUID) {
	comment, err := h.commentRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(status, newCommentResponse(comment))
}
