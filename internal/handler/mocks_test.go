package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"feedbackhub/internal/handler"
	"feedbackhub/internal/middleware"
	"feedbackhub/internal/model"
	"feedbackhub/internal/policy"
	"feedbackhub/internal/repository"
	"feedbackhub/internal/summary"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Мок репозитория пользователей
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	args := m.Called(ctx, username)
	user := args.Get(0)
	if user == nil {
		return nil, args.Error(1)
	}
	return user.(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	user := args.Get(0)
	if user == nil {
		return nil, args.Error(1)
	}
	return user.(*model.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	user := args.Get(0)
	if user == nil {
		return nil, args.Error(1)
	}
	return user.(*model.User), args.Error(1)
}

func (m *MockUserRepository) UpdateRole(ctx context.Context, id uuid.UUID, role model.Role) (*model.User, error) {
	args := m.Called(ctx, id, role)
	user := args.Get(0)
	if user == nil {
		return nil, args.Error(1)
	}
	return user.(*model.User), args.Error(1)
}

func (m *MockUserRepository) ExistingIDs(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

type MockRefreshTokens struct {
	mock.Mock
}

func (m *MockRefreshTokens) Issue(ctx context.Context, userID uuid.UUID) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

func (m *MockRefreshTokens) Rotate(ctx context.Context, token string) (uuid.UUID, string, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(uuid.UUID), args.String(1), args.Error(2)
}

func (m *MockRefreshTokens) Revoke(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

type MockBoardRepository struct {
	mock.Mock
}

func (m *MockBoardRepository) Create(ctx context.Context, board *model.Board, memberIDs []uuid.UUID) error {
	args := m.Called(ctx, board, memberIDs)
	return args.Error(0)
}

func (m *MockBoardRepository) List(ctx context.Context, caller policy.Caller) ([]model.Board, error) {
	args := m.Called(ctx, caller)
	return args.Get(0).([]model.Board), args.Error(1)
}

func (m *MockBoardRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Board, error) {
	args := m.Called(ctx, id)
	board := args.Get(0)
	if board == nil {
		return nil, args.Error(1)
	}
	return board.(*model.Board), args.Error(1)
}

func (m *MockBoardRepository) IsMember(ctx context.Context, boardID, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, boardID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockBoardRepository) Update(ctx context.Context, board *model.Board, memberIDs []uuid.UUID) error {
	args := m.Called(ctx, board, memberIDs)
	return args.Error(0)
}

func (m *MockBoardRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockFeedbackRepository struct {
	mock.Mock
}

func (m *MockFeedbackRepository) Create(ctx context.Context, fb *model.Feedback) error {
	args := m.Called(ctx, fb)
	return args.Error(0)
}

func (m *MockFeedbackRepository) List(ctx context.Context, caller policy.Caller, filter repository.FeedbackFilter) ([]model.Feedback, error) {
	args := m.Called(ctx, caller, filter)
	return args.Get(0).([]model.Feedback), args.Error(1)
}

func (m *MockFeedbackRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Feedback, error) {
	args := m.Called(ctx, id)
	fb := args.Get(0)
	if fb == nil {
		return nil, args.Error(1)
	}
	return fb.(*model.Feedback), args.Error(1)
}

func (m *MockFeedbackRepository) Find(ctx context.Context, id uuid.UUID) (*model.Feedback, error) {
	args := m.Called(ctx, id)
	fb := args.Get(0)
	if fb == nil {
		return nil, args.Error(1)
	}
	return fb.(*model.Feedback), args.Error(1)
}

func (m *MockFeedbackRepository) Update(ctx context.Context, fb *model.Feedback) error {
	args := m.Called(ctx, fb)
	return args.Error(0)
}

func (m *MockFeedbackRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockFeedbackRepository) ToggleUpvote(ctx context.Context, feedbackID, userID uuid.UUID) (bool, int64, error) {
	args := m.Called(ctx, feedbackID, userID)
	return args.Bool(0), args.Get(1).(int64), args.Error(2)
}

func (m *MockFeedbackRepository) UpvotedBy(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]bool, error) {
	args := m.Called(ctx, userID, ids)
	return args.Get(0).(map[uuid.UUID]bool), args.Error(1)
}

type MockSummaryComputer struct {
	mock.Mock
}

func (m *MockSummaryComputer) Compute(ctx context.Context, caller policy.Caller, days int) (*summary.Summary, error) {
	args := m.Called(ctx, caller, days)
	s := args.Get(0)
	if s == nil {
		return nil, args.Error(1)
	}
	return s.(*summary.Summary), args.Error(1)
}

type MockCommentRepository struct {
	mock.Mock
}

func (m *MockCommentRepository) Create(ctx context.Context, comment *model.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func (m *MockCommentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Comment, error) {
	args := m.Called(ctx, id)
	comment := args.Get(0)
	if comment == nil {
		return nil, args.Error(1)
	}
	return comment.(*model.Comment), args.Error(1)
}

func (m *MockCommentRepository) List(ctx context.Context, feedbackID *uuid.UUID) ([]model.Comment, error) {
	args := m.Called(ctx, feedbackID)
	return args.Get(0).([]model.Comment), args.Error(1)
}

func (m *MockCommentRepository) Update(ctx context.Context, comment *model.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func (m *MockCommentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func newUser(username string, role model.Role) *model.User {
	return &model.User{
		ID:       uuid.New(),
		Username: username,
		Email:    username + "@example.com",
		Role:     role,
	}
}

// newRouter returns a test engine whose requests run as user, or
// unauthenticated when user is nil.
func newRouter(user *model.User) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler.RegisterValidators()

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if user != nil {
			c.Set(middleware.UserIDKey, user.ID)
			c.Set(middleware.UserKey, user)
			c.Set(middleware.CallerKey, policy.CallerFrom(user))
		}
		c.Next()
	})
	return r
}

func doJSON(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func decode(resp *httptest.ResponseRecorder, v interface{}) error {
	return json.Unmarshal(resp.Body.Bytes(), v)
}

// fieldErrors decodes the per-field messages of a validation failure.
func fieldErrors(t *testing.T, resp *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body struct {
		Fields map[string]string `json:"fields"`
	}
	require.NoError(t, decode(resp, &body))
	return body.Fields
}
