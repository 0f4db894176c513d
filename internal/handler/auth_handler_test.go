package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/mergeed-api/internal/middleware"
	"github.com/noah-isme/mergeed-api/internal/models"
	"github.com/noah-isme/mergeed-api/internal/service"
)

func newAuthHandler() *AuthHandler {
	return NewAuthHandler(service.NewAuthService("test_secret", time.Hour, nil, nil))
}

func TestAuthHandlerLoginDerivesRoleFromDomain(t *testing.T) {
	handler := newAuthHandler()

	rec, c := postJSON(t, `{"email": "officer@diet.in", "password": "anything"}`)
	handler.Login(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	var token models.TokenResponse
	require.NoError(t, json.Unmarshal(envelope.Data, &token))
	assert.Equal(t, models.RoleDIET, token.Role)
	assert.Equal(t, "officer", token.UserID)
	assert.NotEmpty(t, token.AccessToken)
}

func TestAuthHandlerLoginRejectsBadEmail(t *testing.T) {
	handler := newAuthHandler()

	rec, c := postJSON(t, `{"email": "not-an-email", "password": "pw"}`)
	handler.Login(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthHandlerRegister(t *testing.T) {
	handler := newAuthHandler()

	rec, c := postJSON(t, `{"email": "new@school.in", "password": "secret1", "name": "New Teacher"}`)
	handler.Register(c)

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestAuthHandlerMeReadsClaimsFromContext(t *testing.T) {
	handler := newAuthHandler()

	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	c.Set(middleware.ContextUserKey, &models.Claims{UserID: "officer", Role: models.RoleDIET})

	handler.Me(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(envelope.Data, &body))
	assert.Equal(t, "officer", body["user_id"])
	assert.Equal(t, models.RoleDIET, body["role"])
}

func TestAuthHandlerMeWithoutClaims(t *testing.T) {
	handler := newAuthHandler()

	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/auth/me", nil)

	handler.Me(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
