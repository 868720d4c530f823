package handler

import (
	"context"

	"feedbackhub/internal/middleware"
	"feedbackhub/internal/model"
	"feedbackhub/internal/policy"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// currentCaller returns the caller resolved by the auth middlewares, writing
// a 401 when there is none.
func currentCaller(c *gin.Context) (policy.Caller, bool) {
	caller, ok := middleware.CallerFrom(c)
	if !ok || !caller.Authenticated() {
		respondError(c, errUnauthenticated)
		return policy.Caller{}, false
	}
	return caller, true
}

func currentUser(c *gin.Context) (*model.User, bool) {
	v, ok := c.Get(middleware.UserKey)
	if !ok {
		respondError(c, errUnauthenticated)
		return nil, false
	}
	user, ok := v.(*model.User)
	if !ok {
		respondError(c, errUnauthenticated)
		return nil, false
	}
	return user, true
}

// pathID parses the :id route parameter.
func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, invalidField("id", "Must be a valid UUID"))
		return uuid.Nil, false
	}
	return id, true
}

// queryID parses an optional UUID query parameter.
func queryID(c *gin.Context, name string) (*uuid.UUID, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		respondError(c, invalidField(name, "Must be a valid UUID"))
		return nil, false
	}
	return &id, true
}

// MembershipChecker answers live board membership questions.
type MembershipChecker interface {
	IsMember(ctx context.Context, boardID, userID uuid.UUID) (bool, error)
}

// requireBoardAccess applies the board read policy, consulting membership
// only when visibility, role and ownership do not already decide it.
func requireBoardAccess(ctx context.Context, members MembershipChecker, caller policy.Caller, board *model.Board) error {
	if policy.CanReadBoard(caller, board, false) {
		return nil
	}
	if !caller.Authenticated() {
		return policy.ErrForbidden
	}
	isMember, err := members.IsMember(ctx, board.ID, caller.ID)
	if err != nil {
		return err
	}
	return policy.Require(policy.CanReadBoard(caller, board, isMember))
}
