package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/bitleap/linkauth/internal/auth"
	"github.com/bitleap/linkauth/internal/models"
	"github.com/bitleap/linkauth/internal/repositories"
	pkghttp "github.com/bitleap/linkauth/pkg/http"
	"github.com/go-chi/chi/v5"
)

// AccountServiceInterface defines the interface for admin account management
type AccountServiceInterface interface {
	GetAccount(ctx context.Context, id int64) (*models.Account, error)
	ListAccounts(ctx context.Context, limit, offset int) ([]*models.Account, error)
	SetActive(ctx context.Context, actor *models.Account, id int64, active bool) (*models.Account, error)
	SetAdmin(ctx context.Context, actor *models.Account, id int64, admin bool) (*models.Account, error)
	DeleteAccount(ctx context.Context, actor *models.Account, id int64) error
	Stats(ctx context.Context) (*repositories.Stats, error)
}

// AccountHandler handles admin-scoped account management requests
type AccountHandler struct {
	service AccountServiceInterface
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(service AccountServiceInterface) *AccountHandler {
	return &AccountHandler{service: service}
}

// UpdateAccountRequest carries the admin-mutable flags. Pointers distinguish
// "not provided" from "set to false".
type UpdateAccountRequest struct {
	IsActive *bool `json:"is_active"`
	IsAdmin  *bool `json:"is_admin"`
}

// StatsResponse aggregates account counts
type StatsResponse struct {
	TotalAccounts    int64 `json:"total_accounts"`
	ActiveAccounts   int64 `json:"active_accounts"`
	InactiveAccounts int64 `json:"inactive_accounts"`
	AdminAccounts    int64 `json:"admin_accounts"`
}

// ListAccounts handles GET /admin/accounts
func (h *AccountHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	accounts, err := h.service.ListAccounts(r.Context(), limit, offset)
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	resp := make([]*AccountResponse, 0, len(accounts))
	for _, account := range accounts {
		resp = append(resp, accountToResponse(account))
	}

	pkghttp.WriteJSON(w, http.StatusOK, resp)
}

// GetAccount handles GET /admin/accounts/{id}
func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	id, err := accountID(r)
	if err != nil {
		pkghttp.WriteBadRequest(w, "Invalid account id")
		return
	}

	account, err := h.service.GetAccount(r.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Account not found")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, accountToResponse(account))
}

// UpdateAccount handles PATCH /admin/accounts/{id}
func (h *AccountHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	id, err := accountID(r)
	if err != nil {
		pkghttp.WriteBadRequest(w, "Invalid account id")
		return
	}

	var req UpdateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if req.IsActive == nil && req.IsAdmin == nil {
		pkghttp.WriteBadRequest(w, "Nothing to update")
		return
	}

	actor := auth.AccountFromContext(r.Context())
	var account *models.Account

	if req.IsActive != nil {
		account, err = h.service.SetActive(r.Context(), actor, id, *req.IsActive)
		if err != nil {
			writeAccountUpdateError(w, err)
			return
		}
	}

	if req.IsAdmin != nil {
		account, err = h.service.SetAdmin(r.Context(), actor, id, *req.IsAdmin)
		if err != nil {
			writeAccountUpdateError(w, err)
			return
		}
	}

	pkghttp.WriteJSON(w, http.StatusOK, accountToResponse(account))
}

// DeleteAccount handles DELETE /admin/accounts/{id}
func (h *AccountHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	id, err := accountID(r)
	if err != nil {
		pkghttp.WriteBadRequest(w, "Invalid account id")
		return
	}

	actor := auth.AccountFromContext(r.Context())

	if err := h.service.DeleteAccount(r.Context(), actor, id); err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteNotFound(w, "Account not found")
		case errors.Is(err, models.ErrForbidden):
			pkghttp.WriteForbidden(w, "Cannot delete own account")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Stats handles GET /admin/stats
func (h *AccountHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, StatsResponse{
		TotalAccounts:    stats.Total,
		ActiveAccounts:   stats.Active,
		InactiveAccounts: stats.Inactive,
		AdminAccounts:    stats.Admins,
	})
}

func accountID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func writeAccountUpdateError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		pkghttp.WriteNotFound(w, "Account not found")
	case errors.Is(err, models.ErrForbidden):
		pkghttp.WriteForbidden(w, "Cannot change own account flags")
	default:
		pkghttp.WriteInternalError(w, "Internal server error")
	}
}
