package handler

import (
	"context"
	"net/http"
	"strings"

	"feedbackhub/internal/metrics"
	"feedbackhub/internal/model"
	"feedbackhub/internal/policy"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// UserStore is the user persistence the auth and user endpoints need.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role model.Role) (*model.User, error)
}

// TokenIssuer signs access tokens.
type TokenIssuer interface {
	GenerateToken(userID uuid.UUID) (string, error)
}

// RefreshTokens issues, rotates and revokes refresh tokens.
type RefreshTokens interface {
	Issue(ctx context.Context, userID uuid.UUID) (string, error)
	Rotate(ctx context.Context, token string) (uuid.UUID, string, error)
	Revoke(ctx context.Context, token string) error
}

type UserHandler struct {
	repo    UserStore
	tokens  TokenIssuer
	refresh RefreshTokens
	metrics *metrics.Metrics
}

func NewUserHandler(repo UserStore, tokens TokenIssuer, refresh RefreshTokens, m *metrics.Metrics) *UserHandler {
	return &UserHandler{repo: repo, tokens: tokens, refresh: refresh, metrics: m}
}

type RegisterRequest struct {
	Username        string `json:"username" binding:"required,max=150"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=8"`
	PasswordConfirm string `json:"password_confirm" binding:"required"`
	FirstName       string `json:"first_name" binding:"max=150"`
	LastName        string `json:"last_name" binding:"max=150"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type SetRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=admin moderator contributor"`
}

type AuthResponse struct {
	Token        string       `json:"token"`
	RefreshToken string       `json:"refresh_token"`
	User         UserResponse `json:"user"`
}

func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	if req.Password != req.PasswordConfirm {
		respondError(c, invalidField("password_confirm", "Passwords do not match"))
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	existing, err := h.repo.FindByUsername(c.Request.Context(), req.Username)
	if err != nil {
		respondError(c, err)
		return
	}
	if existing != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "User with this username already exists"})
		return
	}

	existing, err = h.repo.FindByEmail(c.Request.Context(), req.Email)
	if err != nil {
		respondError(c, err)
		return
	}
	if existing != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "User with this email already exists"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(c, err)
		return
	}

	user := &model.User{
		ID:             uuid.New(),
		Username:       req.Username,
		Email:          req.Email,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		HashedPassword: string(hash),
		Role:           model.RoleContributor,
	}

	if err := h.repo.Create(c.Request.Context(), user); err != nil {
		respondError(c, err)
		return
	}

	h.respondWithTokens(c, http.StatusCreated, user)
}

func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.repo.FindByUsername(c.Request.Context(), strings.TrimSpace(req.Username))
	if err != nil {
		respondError(c, err)
		return
	}
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	h.respondWithTokens(c, http.StatusOK, user)
}

// Refresh exchanges a refresh token for a new access token and a rotated
// refresh token. The old refresh token stops working.
func (h *UserHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if !bindJSON(c, &req) {
		return
	}

	userID, next, err := h.refresh.Rotate(c.Request.Context(), req.RefreshToken)
	h.observeRefresh(err == nil)
	if err != nil {
		respondError(c, err)
		return
	}

	user, err := h.repo.GetByID(c.Request.Context(), userID)
	if err != nil {
		_ = h.refresh.Revoke(c.Request.Context(), next)
		respondError(c, err)
		return
	}

	token, err := h.tokens.GenerateToken(user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, AuthResponse{
		Token:        token,
		RefreshToken: next,
		User:         newUserResponse(user),
	})
}

func (h *UserHandler) Logout(c *gin.Context) {
	var req RefreshRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.refresh.Revoke(c.Request.Context(), req.RefreshToken); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) Me(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, newUserResponse(user))
}

// SetRole changes another user's role. Admin only.
func (h *UserHandler) SetRole(c *gin.Context) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}
	if err := policy.Require(policy.CanManageRoles(caller)); err != nil {
		respondError(c, err)
		return
	}

	id, ok := pathID(c)
	if !ok {
		return
	}

	var req SetRoleRequest
	if !bindJSON(c, &req) {
		return
	}

	role, err := model.ParseRole(req.Role)
	if err != nil {
		respondError(c, invalidField("role", err.Error()))
		return
	}

	user, err := h.repo.UpdateRole(c.Request.Context(), id, role)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newUserResponse(user))
}

func (h *UserHandler) respondWithTokens(c *gin.Context, status int, user *model.User) {
	token, err := h.tokens.GenerateToken(user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	refresh, err := h.refresh.Issue(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(status, AuthResponse{
		Token:        token,
		RefreshToken: refresh,
		User:         newUserResponse(user),
	})
}

func (h *UserHandler) observeRefresh(ok bool) {
	if h.metrics != nil {
		h.metrics.ObserveRefresh(ok)
	}
}
