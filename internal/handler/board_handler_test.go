package handler_test

import (
	"net/http"
	"testing"

	"feedbackhub/internal/handler"
	"feedbackhub/internal/model"
	"feedbackhub/internal/policy"
	"feedbackhub/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupBoardTest(caller *model.User) (*gin.Engine, *MockBoardRepository, *MockUserRepository) {
	r := newRouter(caller)
	boards := new(MockBoardRepository)
	users := new(MockUserRepository)
	boardHandler := handler.NewBoardHandler(boards, users)

	r.GET("/boards", boardHandler.List)
	r.POST("/boards", boardHandler.Create)
	r.GET("/boards/:id", boardHandler.GetByID)
	r.PUT("/boards/:id", boardHandler.Update)
	r.DELETE("/boards/:id", boardHandler.Delete)
	return r, boards, users
}

func privateBoard(owner *model.User) *model.Board {
	return &model.Board{
		ID:      uuid.New(),
		Name:    "Roadmap",
		Slug:    "roadmap",
		Public:  false,
		OwnerID: owner.ID,
		Owner:   *owner,
	}
}

func TestBoardGet_PrivateBoardNonMemberForbidden(t *testing.T) {
	alice := newUser("alice", model.RoleContributor)
	bob := newUser("bob", model.RoleContributor)
	board := privateBoard(alice)

	r, boards, _ := setupBoardTest(bob)
	boards.On("GetByID", mock.Anything, board.ID).Return(board, nil)
	boards.On("IsMember", mock.Anything, board.ID, bob.ID).Return(false, nil)

	resp := doJSON(r, "GET", "/boards/"+board.ID.String(), nil)

	assert.Equal(t, http.StatusForbidden, resp.Code)
	boards.AssertExpectations(t)
}

func TestBoardGet_PrivateBoardMemberAllowed(t *testing.T) {
	alice := newUser("alice", model.RoleContributor)
	bob := newUser("bob", model.RoleContributor)
	board := privateBoard(alice)
	board.Members = []model.User{*bob}

	r, boards, _ := setupBoardTest(bob)
	boards.On("GetByID", mock.Anything, board.ID).Return(board, nil)
	boards.On("IsMember", mock.Anything, board.ID, bob.ID).Return(true, nil)

	resp := doJSON(r, "GET", "/boards/"+board.ID.String(), nil)

	assert.Equal(t, http.StatusOK, resp.Code)
	var response handler.BoardResponse
	require.NoError(t, decode(resp, &response))
	assert.False(t, response.Public)
	require.Len(t, response.Members, 1)
	assert.Equal(t, bob.ID, response.Members[0].ID)
}

func TestBoardGet_OwnerAndModeratorSkipMembership(t *testing.T) {
	alice := newUser("alice", model.RoleContributor)
	mod := newUser("mod", model.RoleModerator)
	board := privateBoard(alice)

	for _, caller := range []*model.User{alice, mod} {
		r, boards, _ := setupBoardTest(caller)
		boards.On("GetByID", mock.Anything, board.ID).Return(board, nil)

		resp := doJSON(r, "GET", "/boards/"+board.ID.String(), nil)

		assert.Equal(t, http.StatusOK, resp.Code, caller.Username)
		boards.AssertNotCalled(t, "IsMember", mock.Anything, mock.Anything, mock.Anything)
	}
}

func TestBoardGet_NotFound(t *testing.T) {
	r, boards, _ := setupBoardTest(newUser("bob", model.RoleContributor))
	id := uuid.New()
	boards.On("GetByID", mock.Anything, id).Return(nil, repository.ErrBoardNotFound)

	resp := doJSON(r, "GET", "/boards/"+id.String(), nil)

	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Contains(t, resp.Body.String(), "Board not found")
}

func TestBoardGet_BadID(t *testing.T) {
	r, _, _ := setupBoardTest(newUser("bob", model.RoleContributor))

	resp := doJSON(r, "GET", "/boards/not-a-uuid", nil)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestBoardList_UsesCaller(t *testing.T) {
	bob := newUser("bob", model.RoleContributor)
	r, boards, _ := setupBoardTest(bob)

	boards.On("List", mock.Anything, policy.CallerFrom(bob)).Return([]model.Board{{ID: uuid.New(), Name: "Public", Public: true, FeedbackCount: 3}}, nil)

	resp := doJSON(r, "GET", "/boards", nil)

	assert.Equal(t, http.StatusOK, resp.Code)
	var response []handler.BoardResponse
	require.NoError(t, decode(resp, &response))
	require.Len(t, response, 1)
	assert.Equal(t, int64(3), response[0].FeedbackCount)
}

func TestBoardCreate_DefaultsToPublicWithSlug(t *testing.T) {
	alice := newUser("alice", model.RoleContributor)
	r, boards, _ := setupBoardTest(alice)

	boards.On("Create", mock.Anything, mock.MatchedBy(func(b *model.Board) bool {
		return b.Public && b.Slug == "mobile-app-ideas" && b.OwnerID == alice.ID
	}), []uuid.UUID(nil)).Return(nil)
	boards.On("GetByID", mock.Anything, mock.AnythingOfType("uuid.UUID")).Return(&model.Board{
		ID: uuid.New(), Name: "Mobile App Ideas", Slug: "mobile-app-ideas", Public: true, OwnerID: alice.ID, Owner: *alice,
	}, nil)

	resp := doJSON(r, "POST", "/boards", map[string]interface{}{"name": "Mobile App Ideas"})

	assert.Equal(t, http.StatusCreated, resp.Code)
	boards.AssertExpectations(t)
}

func TestBoardCreate_UnknownMember(t *testing.T) {
	alice := newUser("alice", model.RoleContributor)
	r, boards, users := setupBoardTest(alice)

	known, unknown := uuid.New(), uuid.New()
	users.On("ExistingIDs", mock.Anything, []uuid.UUID{known, unknown}).Return([]uuid.UUID{known}, nil)

	resp := doJSON(r, "POST", "/boards", map[string]interface{}{
		"name":       "Private",
		"public":     false,
		"member_ids": []string{known.String(), unknown.String()},
	})

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Body.String(), "member_ids")
	boards.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestBoardCreate_MissingName(t *testing.T) {
	r, _, _ := setupBoardTest(newUser("alice", model.RoleContributor))

	resp := doJSON(r, "POST", "/boards", map[string]interface{}{"description": "no name"})

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Body.String(), `"name"`)
}

func TestBoardUpdate_NonAdminForbidden(t *testing.T) {
	alice := newUser("alice", model.RoleContributor)
	mod := newUser("mod", model.RoleModerator)
	board := privateBoard(alice)

	// Even the owner cannot modify a board without the admin role.
	for _, caller := range []*model.User{alice, mod} {
		r, boards, _ := setupBoardTest(caller)

		resp := doJSON(r, "PUT", "/boards/"+board.ID.String(), map[string]interface{}{"name": "Renamed"})

		assert.Equal(t, http.StatusForbidden, resp.Code, caller.Username)
		boards.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	}
}

func TestBoardUpdate_AdminReplacesMembers(t *testing.T) {
	admin := newUser("root", model.RoleAdmin)
	alice := newUser("alice", model.RoleContributor)
	board := privateBoard(alice)
	member := uuid.New()

	r, boards, users := setupBoardTest(admin)
	boards.On("GetByID", mock.Anything, board.ID).Return(board, nil)
	users.On("ExistingIDs", mock.Anything, []uuid.UUID{member}).Return([]uuid.UUID{member}, nil)
	boards.On("Update", mock.Anything, mock.MatchedBy(func(b *model.Board) bool {
		return b.Name == "Renamed" && b.Slug == "renamed"
	}), []uuid.UUID{member}).Return(nil)

	resp := doJSON(r, "PUT", "/boards/"+board.ID.String(), map[string]interface{}{
		"name":       "Renamed",
		"member_ids": []string{member.String()},
	})

	assert.Equal(t, http.StatusOK, resp.Code)
	boards.AssertExpectations(t)
}

func TestBoardUpdate_OmittedMembersUnchanged(t *testing.T) {
	admin := newUser("root", model.RoleAdmin)
	board := privateBoard(newUser("alice", model.RoleContributor))

	r, boards, _ := setupBoardTest(admin)
	boards.On("GetByID", mock.Anything, board.ID).Return(board, nil)
	boards.On("Update", mock.Anything, mock.Anything, []uuid.UUID(nil)).Return(nil)

	resp := doJSON(r, "PUT", "/boards/"+board.ID.String(), map[string]interface{}{"public": true})

	assert.Equal(t, http.StatusOK, resp.Code)
	boards.AssertExpectations(t)
}

func TestBoardDelete(t *testing.T) {
	id := uuid.New()

	r, boards, _ := setupBoardTest(newUser("alice", model.RoleContributor))
	resp := doJSON(r, "DELETE", "/boards/"+id.String(), nil)
	assert.Equal(t, http.StatusForbidden, resp.Code)
	boards.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)

	r, boards, _ = setupBoardTest(newUser("root", model.RoleAdmin))
	boards.On("Delete", mock.Anything, id).Return(nil)
	resp = doJSON(r, "DELETE", "/boards/"+id.String(), nil)
	assert.Equal(t, http.StatusNoContent, resp.Code)
}

func TestBoardCreate_PrivateBoard(t *testing.T) {
	alice := newUser("alice", model.RoleContributor)
	r, boards, _ := setupBoardTest(alice)

	boards.On("Create", mock.Anything, mock.MatchedBy(func(b *model.Board) bool {
		return !b.Public && b.Name == "Private"
	}), []uuid.UUID(nil)).Return(nil)
	boards.On("GetByID", mock.Anything, mock.AnythingOfType("uuid.UUID")).Return(&model.Board{
		ID: uuid.New(), Name: "Private", Slug: "private", Public: false, OwnerID: alice.ID, Owner: *alice,
	}, nil)

	resp := doJSON(r, "POST", "/boards", map[string]interface{}{"name": "Private", "public": false})

	assert.Equal(t, http.StatusCreated, resp.Code)
	var body handler.BoardResponse
	require.NoError(t, decode(resp, &body))
	assert.False(t, body.Public)
	assert.Contains(t, resp.Body.String(), `"public":false`)
	boards.AssertExpectations(t)
}

func TestBoardName_TooShort(t *testing.T) {
	r, boards, _ := setupBoardTest(newUser("root", model.RoleAdmin))

	resp := doJSON(r, "POST", "/boards", map[string]interface{}{"name": "ab"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, fieldErrors(t, resp)["name"], "at least 3")

	resp = doJSON(r, "PUT", "/boards/"+uuid.NewString(), map[string]interface{}{"name": "ab"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, fieldErrors(t, resp)["name"], "at least 3")

	boards.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	boards.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}
