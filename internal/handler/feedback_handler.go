package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"feedbackhub/internal/metrics"
	"feedbackhub/internal/model"
	"feedbackhub/internal/policy"
	"feedbackhub/internal/repository"
	"feedbackhub/internal/summary"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// FeedbackStore is the feedback persistence the feedback endpoints need.
type FeedbackStore interface {
	Create(ctx context.Context, fb *model.Feedback) error
	List(ctx context.Context, caller policy.Caller, filter repository.FeedbackFilter) ([]model.Feedback, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Feedback, error)
	Find(ctx context.Context, id uuid.UUID) (*model.Feedback, error)
	Update(ctx context.Context, fb *model.Feedback) error
	Delete(ctx context.Context, id uuid.UUID) error
	ToggleUpvote(ctx context.Context, feedbackID, userID uuid.UUID) (bool, int64, error)
	UpvotedBy(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]bool, error)
}

// BoardLookup loads boards and answers membership for access checks.
type BoardLookup interface {
	MembershipChecker
	GetByID(ctx context.Context, id uuid.UUID) (*model.Board, error)
}

// SummaryComputer produces the analytics for a caller.
type SummaryComputer interface {
	Compute(ctx context.Context, caller policy.Caller, days int) (*summary.Summary, error)
}

type FeedbackHandler struct {
	feedbackRepo FeedbackStore
	boards       BoardLookup
	summaries    SummaryComputer
	metrics      *metrics.Metrics
}

func NewFeedbackHandler(feedbackRepo FeedbackStore, boards BoardLookup, summaries SummaryComputer, m *metrics.Metrics) *FeedbackHandler {
	return &FeedbackHandler{
		feedbackRepo: feedbackRepo,
		boards:       boards,
		summaries:    summaries,
		metrics:      m,
	}
}

type CreateFeedbackRequest struct {
	Title       string    `json:"title" binding:"required,min=5,max=200"`
	Description string    `json:"description" binding:"required"`
	BoardID     uuid.UUID `json:"board_id" binding:"required"`
	Status      string    `json:"status" binding:"omitempty,feedback_status"`
	Tags        string    `json:"tags" binding:"max=200"`
}

type UpdateFeedbackRequest struct {
	Title       *string `json:"title" binding:"omitempty,min=5,max=200"`
	Description *string `json:"description" binding:"omitempty,min=1"`
	Status      *string `json:"status" binding:"omitempty,feedback_status"`
	Tags        *string `json:"tags" binding:"omitempty,max=200"`
}

// List returns the feedback the caller can see, filtered by the board_id,
// status, tags and search query parameters and sorted by ordering.
func (h *FeedbackHandler) List(c *gin.Context) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}

	filter, err := parseFeedbackFilter(c)
	if err != nil {
		respondError(c, err)
		return
	}

	items, err := h.feedbackRepo.List(c.Request.Context(), caller, filter)
	if err != nil {
		respondError(c, err)
		return
	}

	upvoted, err := h.upvotedBy(c.Request.Context(), caller, items)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]FeedbackResponse, len(items))
	for i := range items {
		response[i] = newFeedbackResponse(&items[i], upvoted[items[i].ID])
	}
	c.JSON(http.StatusOK, response)
}

func parseFeedbackFilter(c *gin.Context) (repository.FeedbackFilter, error) {
	var filter repository.FeedbackFilter

	boardID, err := uuid.Parse(c.Query("board_id"))
	switch {
	case c.Query("board_id") == "":
	case err != nil:
		return filter, invalidField("board_id", "Must be a valid UUID")
	default:
		filter.BoardID = &boardID
	}

	if raw := c.Query("status"); raw != "" {
		status := model.Status(raw)
		if !status.Valid() {
			return filter, invalidField("status", "Must be one of: "+statusNames())
		}
		filter.Status = status
	}

	filter.Tags = strings.TrimSpace(c.Query("tags"))
	filter.Search = strings.TrimSpace(c.Query("search"))

	ordering, err := repository.ParseOrdering(c.Query("ordering"))
	if err != nil {
		return filter, err
	}
	filter.Ordering = ordering

	return filter, nil
}

// GetByID returns one item with its comments.
func (h *FeedbackHandler) GetByID(c *gin.Context) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	fb, err := h.feedbackRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := requireBoardAccess(c.Request.Context(), h.boards, caller, &fb.Board); err != nil {
		respondError(c, err)
		return
	}

	h.respondWithFeedback(c, http.StatusOK, caller, fb.ID)
}

// Create posts feedback to a board the caller can read.
func (h *FeedbackHandler) Create(c *gin.Context) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}

	var req CreateFeedbackRequest
	if !bindJSON(c, &req) {
		return
	}

	board, err := h.boards.GetByID(c.Request.Context(), req.BoardID)
	if errors.Is(err, repository.ErrBoardNotFound) {
		respondError(c, invalidField("board_id", "Board does not exist"))
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	if err := requireBoardAccess(c.Request.Context(), h.boards, caller, board); err != nil {
		respondError(c, err)
		return
	}

	status := model.StatusOpen
	if req.Status != "" {
		status = model.Status(req.Status)
	}

	fb := &model.Feedback{
		ID:          uuid.New(),
		Title:       req.Title,
		Description: req.Description,
		BoardID:     board.ID,
		Status:      status,
		Tags:        req.Tags,
		CreatedBy:   caller.ID,
	}
	if err := h.feedbackRepo.Create(c.Request.Context(), fb); err != nil {
		respondError(c, err)
		return
	}

	h.respondWithFeedback(c, http.StatusCreated, caller, fb.ID)
}

// Update is allowed to the creator and to moderators and admins.
func (h *FeedbackHandler) Update(c *gin.Context) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req UpdateFeedbackRequest
	if !bindJSON(c, &req) {
		return
	}

	fb, err := h.feedbackRepo.Find(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := policy.Require(policy.CanWriteFeedback(caller, fb)); err != nil {
		respondError(c, err)
		return
	}

	if req.Title != nil {
		fb.Title = *req.Title
	}
	if req.Description != nil {
		fb.Description = *req.Description
	}
	if req.Status != nil {
		fb.Status = model.Status(*req.Status)
	}
	if req.Tags != nil {
		fb.Tags = *req.Tags
	}

	if err := h.feedbackRepo.Update(c.Request.Context(), fb); err != nil {
		respondError(c, err)
		return
	}

	h.respondWithFeedback(c, http.StatusOK, caller, fb.ID)
}

// Delete is allowed to the creator and to moderators and admins.
func (h *FeedbackHandler) Delete(c *gin.Context) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	fb, err := h.feedbackRepo.Find(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := policy.Require(policy.CanWriteFeedback(caller, fb)); err != nil {
		respondError(c, err)
		return
	}

	if err := h.feedbackRepo.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Upvote toggles the caller's upvote and reports the resulting state.
func (h *FeedbackHandler) Upvote(c *gin.Context) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	fb, err := h.feedbackRepo.Find(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := requireBoardAccess(c.Request.Context(), h.boards, caller, &fb.Board); err != nil {
		respondError(c, err)
		return
	}

	upvoted, count, err := h.feedbackRepo.ToggleUpvote(c.Request.Context(), id, caller.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	if h.metrics != nil {
		h.metrics.ObserveToggle(upvoted)
	}

	c.JSON(http.StatusOK, UpvoteResponse{Upvoted: upvoted, UpvoteCount: count})
}

// Summary reports counts, the top voted items, a daily trend over the last
// days days (default 30) and a tag histogram of the caller's visible feedback.
func (h *FeedbackHandler) Summary(c *gin.Context) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}

	days := summary.DefaultDays
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respondError(c, invalidField("days", "Must be an integer"))
			return
		}
		days = n
	}

	start := time.Now()
	s, err := h.summaries.Compute(c.Request.Context(), caller, days)
	if h.metrics != nil {
		h.metrics.ObserveSummary(start)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	upvoted, err := h.upvotedBy(c.Request.Context(), caller, s.Top)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newSummaryResponse(s, upvoted))
}

func (h *FeedbackHandler) respondWithFeedback(c *gin.Context, status int, caller policy.Caller, id uuid.UUID) {
	fb, err := h.feedbackRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	upvoted, err := h.feedbackRepo.UpvotedBy(c.Request.Context(), caller.ID, []uuid.UUID{fb.ID})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(status, newFeedbackResponse(fb, upvoted[fb.ID]))
}

func (h *FeedbackHandler) upvotedBy(ctx context.Context, caller policy.Caller, items []model.Feedback) (map[uuid.UUID]bool, error) {
	ids := make([]uuid.UUID, len(items))
	for i := range items {
		ids[i] = items[i].ID
	}
	return h.feedbackRepo.UpvotedBy(ctx, caller.ID, ids)
}
