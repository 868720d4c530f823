package handler

import (
	"context"
	"fmt"
	"net/http"

	"feedbackhub/internal/model"
	"feedbackhub/internal/policy"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

// BoardStore is the board persistence the board endpoints need.
type BoardStore interface {
	Create(ctx context.Context, board *model.Board, memberIDs []uuid.UUID) error
	List(ctx context.Context, caller policy.Caller) ([]model.Board, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Board, error)
	IsMember(ctx context.Context, boardID, userID uuid.UUID) (bool, error)
	Update(ctx context.Context, board *model.Board, memberIDs []uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// UserDirectory checks that referenced users exist.
type UserDirectory interface {
	ExistingIDs(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error)
}

type BoardHandler struct {
	boardRepo BoardStore
	users     UserDirectory
}

func NewBoardHandler(boardRepo BoardStore, users UserDirectory) *BoardHandler {
	return &BoardHandler{
		boardRepo: boardRepo,
		users:     users,
	}
}

type CreateBoardRequest struct {
	Name        string      `json:"name" binding:"required,min=3,max=100"`
	Description string      `json:"description"`
	Public      *bool       `json:"public"`
	MemberIDs   []uuid.UUID `json:"member_ids"`
}

type UpdateBoardRequest struct {
	Name        *string      `json:"name" binding:"omitempty,min=3,max=100"`
	Description *string      `json:"description"`
	Public      *bool        `json:"public"`
	MemberIDs   *[]uuid.UUID `json:"member_ids"`
}

// List returns the boards the caller can see.
func (h *BoardHandler) List(c *gin.Context) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}

	boards, err := h.boardRepo.List(c.Request.Context(), caller)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]BoardResponse, len(boards))
	for i := range boards {
		response[i] = newBoardResponse(&boards[i])
	}
	c.JSON(http.StatusOK, response)
}

// GetByID returns one board. A missing board is 404, an invisible one 403.
func (h *BoardHandler) GetByID(c *gin.Context) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	board, err := h.boardRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := requireBoardAccess(c.Request.Context(), h.boardRepo, caller, board); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newBoardResponse(board))
}

// Create makes the caller the owner of a new board. Boards are public unless
// public is false.
func (h *BoardHandler) Create(c *gin.Context) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}
	if err := policy.Require(policy.CanCreateBoard(caller)); err != nil {
		respondError(c, err)
		return
	}

	var req CreateBoardRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.checkMembers(c.Request.Context(), req.MemberIDs); err != nil {
		respondError(c, err)
		return
	}

	public := true
	if req.Public != nil {
		public = *req.Public
	}

	board := &model.Board{
		ID:          uuid.New(),
		Name:        req.Name,
		Slug:        slug.Make(req.Name),
		Description: req.Description,
		Public:      public,
		OwnerID:     caller.ID,
	}

	if err := h.boardRepo.Create(c.Request.Context(), board, req.MemberIDs); err != nil {
		respondError(c, err)
		return
	}

	created, err := h.boardRepo.GetByID(c.Request.Context(), board.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newBoardResponse(created))
}

// Update is admin only. member_ids, when present, replaces the member set.
func (h *BoardHandler) Update(c *gin.Context) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}
	if err := policy.Require(policy.CanUpdateBoard(caller)); err != nil {
		respondError(c, err)
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req UpdateBoardRequest
	if !bindJSON(c, &req) {
		return
	}

	board, err := h.boardRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	if req.Name != nil {
		board.Name = *req.Name
		board.Slug = slug.Make(*req.Name)
	}
	if req.Description != nil {
		board.Description = *req.Description
	}
	if req.Public != nil {
		board.Public = *req.Public
	}

	var memberIDs []uuid.UUID
	if req.MemberIDs != nil {
		memberIDs = *req.MemberIDs
		if memberIDs == nil {
			memberIDs = []uuid.UUID{}
		}
		if err := h.checkMembers(c.Request.Context(), memberIDs); err != nil {
			respondError(c, err)
			return
		}
	}

	if err := h.boardRepo.Update(c.Request.Context(), board, memberIDs); err != nil {
		respondError(c, err)
		return
	}

	updated, err := h.boardRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newBoardResponse(updated))
}

// Delete is admin only and removes the board's feedback with it.
func (h *BoardHandler) Delete(c *gin.Context) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}
	if err := policy.Require(policy.CanDeleteBoard(caller)); err != nil {
		respondError(c, err)
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.boardRepo.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *BoardHandler) checkMembers(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	existing, err := h.users.ExistingIDs(ctx, ids)
	if err != nil {
		return err
	}
	known := make(map[uuid.UUID]struct{}, len(existing))
	for _, id := range existing {
		known[id] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := known[id]; !ok {
			return invalidField("member_ids", fmt.Sprintf("Unknown user %s", id))
		}
	}
	return nil
}
