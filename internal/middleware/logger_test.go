package middleware_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"feedbackhub/internal/middleware"
	"feedbackhub/internal/model"
	"feedbackhub/internal/policy"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)
	log.SetFormatter(&logrus.JSONFormatter{})

	caller := policy.Caller{ID: uuid.New(), Role: model.RoleModerator}

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.CallerKey, caller)
		c.Next()
	}, middleware.RequestLogger(log))
	r.GET("/feedback/:id", func(c *gin.Context) {
		_ = c.Error(errors.New("db timeout"))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	})

	req, _ := http.NewRequest("GET", "/feedback/"+uuid.NewString(), nil)
	r.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "/feedback/:id", entry["path"])
	assert.Equal(t, float64(500), entry["status"])
	assert.Equal(t, caller.ID.String(), entry["user_id"])
	assert.Equal(t, "moderator", entry["role"])
	assert.Contains(t, entry["errors"], "db timeout")
}
