package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/bitleap/linkauth/internal/auth"
	"github.com/bitleap/linkauth/internal/models"
	"github.com/bitleap/linkauth/internal/services"
	pkghttp "github.com/bitleap/linkauth/pkg/http"
)

// AuthServiceInterface defines the interface for auth business logic
type AuthServiceInterface interface {
	Register(ctx context.Context, username, email, password string) (*models.Account, error)
	Authenticate(ctx context.Context, source, username, password string) (*services.AuthResult, error)
	Logout(ctx context.Context, token string) error
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	service  AuthServiceInterface
	ipConfig *pkghttp.IPConfig
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(service AuthServiceInterface, ipConfig *pkghttp.IPConfig) *AuthHandler {
	return &AuthHandler{
		service:  service,
		ipConfig: ipConfig,
	}
}

// RegisterRequest represents the request body for registration
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// TokenResponse is returned on successful login
type TokenResponse struct {
	AccessToken string           `json:"access_token"`
	TokenType   string           `json:"token_type"`
	Account     *AccountResponse `json:"account"`
}

// AccountResponse represents an account in HTTP responses. The password
// hash never leaves the service.
type AccountResponse struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	IsActive  bool   `json:"is_active"`
	IsAdmin   bool   `json:"is_admin"`
	CreatedAt string `json:"created_at"`
}

func accountToResponse(account *models.Account) *AccountResponse {
	return &AccountResponse{
		ID:        account.ID,
		Username:  account.Username,
		Email:     account.Email,
		IsActive:  account.IsActive,
		IsAdmin:   account.IsAdmin,
		CreatedAt: account.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// Register handles account registration
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	account, err := h.service.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrDuplicateUsername):
			pkghttp.WriteConflict(w, "Username already taken")
		case errors.Is(err, models.ErrDuplicateEmail):
			pkghttp.WriteConflict(w, "Email already registered")
		case errors.Is(err, models.ErrWeakPassword):
			pkghttp.WriteBadRequest(w, "Password does not meet requirements")
		case errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteBadRequest(w, "Invalid request")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, accountToResponse(account))
}

// Login handles authentication and issues a bearer token
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	source := pkghttp.ExtractClientIP(r, h.ipConfig)

	result, err := h.service.Authenticate(r.Context(), source, req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrRateLimited):
			pkghttp.WriteTooManyRequests(w, "Too many failed login attempts. Please try again later.")
		case errors.Is(err, models.ErrInvalidCredentials),
			errors.Is(err, models.ErrAccountInactive):
			// Same response for every credential failure to prevent enumeration
			pkghttp.WriteUnauthorized(w, "Authentication failed")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, TokenResponse{
		AccessToken: result.Token,
		TokenType:   "bearer",
		Account:     accountToResponse(result.Account),
	})
}

// Logout revokes the presented bearer token
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		pkghttp.WriteUnauthorized(w, "missing authorization header")
		return
	}

	if err := h.service.Logout(r.Context(), token); err != nil {
		if errors.Is(err, models.ErrInvalidToken) {
			pkghttp.WriteUnauthorized(w, "Invalid token")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Me returns the account injected by the auth middleware
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	account := auth.AccountFromContext(r.Context())
	if account == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, accountToResponse(account))
}

func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}
