package auth

import (
	"github.com/bitleap/linkauth/internal/models"
)

// RequireAdmin passes the account through unchanged if it carries the admin
// flag, else returns ErrForbidden. Stateless; used to gate account
// management and metrics operations.
func RequireAdmin(account *models.Account) (*models.Account, error) {
	if account == nil {
		return nil, models.ErrForbidden
	}
	if !account.IsAdmin {
		return nil, models.ErrForbidden
	}
	return account, nil
}
