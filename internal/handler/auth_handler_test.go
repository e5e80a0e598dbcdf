package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rowad-platform/merit-api/internal/middleware"
	"github.com/rowad-platform/merit-api/internal/models"
	appErrors "github.com/rowad-platform/merit-api/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeAuthService struct {
	registerResp *models.TokenResponse
	registerErr  error
	loginResp    *models.TokenResponse
	loginErr     error
	currentUser  *models.User
}

func (s *fakeAuthService) Register(context.Context, models.RegisterRequest) (*models.TokenResponse, error) {
	return s.registerResp, s.registerErr
}

func (s *fakeAuthService) Login(context.Context, models.LoginRequest) (*models.TokenResponse, error) {
	return s.loginResp, s.loginErr
}

func (s *fakeAuthService) CurrentUser(context.Context, *models.JWTClaims) (*models.User, error) {
	if s.currentUser == nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "user not found")
	}
	return s.currentUser, nil
}

func performJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthHandlerRegister(t *testing.T) {
	svc := &fakeAuthService{registerResp: &models.TokenResponse{
		AccessToken: "token",
		TokenType:   "bearer",
		User:        models.User{ID: "u1", Name: "admin", Role: models.RoleAdmin},
	}}
	router := gin.New()
	router.POST("/auth/register", NewAuthHandler(svc).Register)

	w := performJSON(t, router, http.MethodPost, "/auth/register", models.RegisterRequest{
		Name: "admin", Email: "admin@school.local", Password: "secret1", Role: "admin",
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"access_token":"token"`)
}

func TestAuthHandlerRegisterConflict(t *testing.T) {
	svc := &fakeAuthService{registerErr: appErrors.Clone(appErrors.ErrConflict, "name is already registered")}
	router := gin.New()
	router.POST("/auth/register", NewAuthHandler(svc).Register)

	w := performJSON(t, router, http.MethodPost, "/auth/register", models.RegisterRequest{Name: "admin"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "already registered")
}

func TestAuthHandlerRegisterBadBody(t *testing.T) {
	router := gin.New()
	router.POST("/auth/register", NewAuthHandler(&fakeAuthService{}).Register)

	req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewReader([]byte("{not json")))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandlerLoginInvalidCredentials(t *testing.T) {
	svc := &fakeAuthService{loginErr: appErrors.Clone(appErrors.ErrInvalidCredentials, "")}
	router := gin.New()
	router.POST("/auth/login", NewAuthHandler(svc).Login)

	w := performJSON(t, router, http.MethodPost, "/auth/login", models.LoginRequest{Username: "x", Password: "y"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandlerMe(t *testing.T) {
	svc := &fakeAuthService{currentUser: &models.User{ID: "u1", Name: "admin", Role: models.RoleAdmin}}
	router := gin.New()
	router.GET("/auth/me", func(c *gin.Context) {
		c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "u1", Role: models.RoleAdmin})
	}, NewAuthHandler(svc).Me)

	w := performJSON(t, router, http.MethodGet, "/auth/me", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"admin"`)
}

func TestAuthHandlerMeWithoutClaims(t *testing.T) {
	router := gin.New()
	router.GET("/auth/me", NewAuthHandler(&fakeAuthService{}).Me)

	w := performJSON(t, router, http.MethodGet, "/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
