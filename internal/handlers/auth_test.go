package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bitleap/linkauth/internal/handlers"
	"github.com/bitleap/linkauth/internal/models"
	"github.com/bitleap/linkauth/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockAuthService implements AuthServiceInterface with canned responses
type MockAuthService struct {
	registerAccount *models.Account
	registerErr     error
	authResult      *services.AuthResult
	authErr         error
	logoutErr       error
	lastSource      string
}

func (m *MockAuthService) Register(ctx context.Context, username, email, password string) (*models.Account, error) {
	return m.registerAccount, m.registerErr
}

func (m *MockAuthService) Authenticate(ctx context.Context, source, username, password string) (*services.AuthResult, error) {
	m.lastSource = source
	return m.authResult, m.authErr
}

func (m *MockAuthService) Logout(ctx context.Context, token string) error {
	return m.logoutErr
}

func testAccount() *models.Account {
	return &models.Account{
		ID:        1,
		Username:  "alice",
		Email:     "alice@example.com",
		IsActive:  true,
		CreatedAt: time.Now(),
	}
}

func doJSON(t *testing.T, handler http.HandlerFunc, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "203.0.113.7:51234"
	rec := httptest.NewRecorder()

	handler(rec, req)
	return rec
}

func TestAuthHandlerRegister_Success(t *testing.T) {
	svc := &MockAuthService{registerAccount: testAccount()}
	h := handlers.NewAuthHandler(svc, nil)

	rec := doJSON(t, h.Register, http.MethodPost, "/auth/register", handlers.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "Sekur3P@ss",
	})

	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp handlers.AccountResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "alice", resp.Username)
}

func TestAuthHandlerRegister_DuplicateUsername(t *testing.T) {
	svc := &MockAuthService{registerErr: models.ErrDuplicateUsername}
	h := handlers.NewAuthHandler(svc, nil)

	rec := doJSON(t, h.Register, http.MethodPost, "/auth/register", handlers.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "Sekur3P@ss",
	})

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAuthHandlerRegister_WeakPassword(t *testing.T) {
	svc := &MockAuthService{registerErr: models.ErrWeakPassword}
	h := handlers.NewAuthHandler(svc, nil)

	rec := doJSON(t, h.Register, http.MethodPost, "/auth/register", handlers.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "weak",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthHandlerRegister_InvalidBody(t *testing.T) {
	h := handlers.NewAuthHandler(&MockAuthService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	h.Register(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthHandlerRegister_MissingEmail(t *testing.T) {
	h := handlers.NewAuthHandler(&MockAuthService{}, nil)

	rec := doJSON(t, h.Register, http.MethodPost, "/auth/register", handlers.RegisterRequest{
		Username: "alice",
		Password: "Sekur3P@ss",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthHandlerLogin_Success(t *testing.T) {
	svc := &MockAuthService{authResult: &services.AuthResult{
		Token:   "signed-token",
		Account: testAccount(),
	}}
	h := handlers.NewAuthHandler(svc, nil)

	rec := doJSON(t, h.Login, http.MethodPost, "/auth/login", handlers.LoginRequest{
		Username: "alice",
		Password: "Sekur3P@ss",
	})

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp handlers.TokenResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "signed-token", resp.AccessToken)
	assert.Equal(t, "bearer", resp.TokenType)

	// Source passed to the service is the client IP, not ip:port
	assert.Equal(t, "203.0.113.7", svc.lastSource)
}

func TestAuthHandlerLogin_InvalidCredentials(t *testing.T) {
	svc := &MockAuthService{authErr: models.ErrInvalidCredentials}
	h := handlers.NewAuthHandler(svc, nil)

	rec := doJSON(t, h.Login, http.MethodPost, "/auth/login", handlers.LoginRequest{
		Username: "alice",
		Password: "Wr0ng@pass",
	})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthHandlerLogin_InactiveAccountLooksLikeBadCredentials(t *testing.T) {
	svc := &MockAuthService{authErr: models.ErrAccountInactive}
	h := handlers.NewAuthHandler(svc, nil)

	rec := doJSON(t, h.Login, http.MethodPost, "/auth/login", handlers.LoginRequest{
		Username: "alice",
		Password: "Sekur3P@ss",
	})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthHandlerLogin_RateLimited(t *testing.T) {
	svc := &MockAuthService{authErr: models.ErrRateLimited}
	h := handlers.NewAuthHandler(svc, nil)

	rec := doJSON(t, h.Login, http.MethodPost, "/auth/login", handlers.LoginRequest{
		Username: "alice",
		Password: "Sekur3P@ss",
	})

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestAuthHandlerLogout_MissingHeader(t *testing.T) {
	h := handlers.NewAuthHandler(&MockAuthService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	rec := httptest.NewRecorder()
	h.Logout(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthHandlerLogout_Success(t *testing.T) {
	h := handlers.NewAuthHandler(&MockAuthService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer some-token")
	rec := httptest.NewRecorder()
	h.Logout(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}
