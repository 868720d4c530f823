package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"feedbackhub/internal/auth"
	"feedbackhub/internal/policy"
	"feedbackhub/internal/repository"
	"feedbackhub/internal/summary"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

var errUnauthenticated = errors.New("not authenticated")

// ValidationError carries per-field messages for a rejected request.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "validation failed"
}

func invalidField(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

var notFoundMessages = map[error]string{
	repository.ErrUserNotFound:     "User not found",
	repository.ErrBoardNotFound:    "Board not found",
	repository.ErrFeedbackNotFound: "Feedback not found",
	repository.ErrCommentNotFound:  "Comment not found",
}

// respondError writes the response for err. Anything unrecognized is
// attached to the context for the request logger and reported as 500.
func respondError(c *gin.Context, err error) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error(), "fields": verr.Fields})
		return
	}

	for sentinel, msg := range notFoundMessages {
		if errors.Is(err, sentinel) {
			c.JSON(http.StatusNotFound, gin.H{"error": msg})
			return
		}
	}

	switch {
	case errors.Is(err, repository.ErrInvalidOrdering):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   err.Error(),
			"allowed": repository.AllowedOrderings(),
		})
	case errors.Is(err, summary.ErrInvalidDays):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "validation failed",
			"fields": map[string]string{"days": err.Error()},
		})
	case errors.Is(err, policy.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not have permission to perform this action"})
	case errors.Is(err, repository.ErrUserExists):
		c.JSON(http.StatusConflict, gin.H{"error": "User already exists"})
	case errors.Is(err, errUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
	case errors.Is(err, auth.ErrInvalidRefreshToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired refresh token"})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// bindJSON decodes and validates the body into obj. On failure the 400 is
// already written.
func bindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		respondError(c, bindError(err))
		return false
	}
	return true
}

func bindError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fieldMessage(fe)
		}
		return &ValidationError{Fields: fields}
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return invalidField(typeErr.Field, "has the wrong type")
	}

	return invalidField("body", "malformed request body")
}
