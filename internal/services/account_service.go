package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/bitleap/linkauth/internal/models"
	"github.com/bitleap/linkauth/internal/repositories"
	pkglogger "github.com/bitleap/linkauth/pkg/logger"
)

// AdminAccountRepository extends the auth-core view of the identity store
// with the management operations admins use
type AdminAccountRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Account, error)
	List(ctx context.Context, limit, offset int) ([]*models.Account, error)
	Update(ctx context.Context, id int64, account *models.Account) (*models.Account, error)
	Delete(ctx context.Context, id int64) error
	Stats(ctx context.Context) (*repositories.Stats, error)
}

// AccountService handles admin-scoped account management
type AccountService struct {
	repo   AdminAccountRepository
	logger *slog.Logger
	audit  *pkglogger.AuditLogger
}

// NewAccountService creates a new AccountService
func NewAccountService(repo AdminAccountRepository, logger *slog.Logger, audit *pkglogger.AuditLogger) *AccountService {
	return &AccountService{
		repo:   repo,
		logger: logger,
		audit:  audit,
	}
}

// GetAccount retrieves an account by ID
func (s *AccountService) GetAccount(ctx context.Context, id int64) (*models.Account, error) {
	account, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get account", slog.Int64("account_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return account, nil
}

// ListAccounts retrieves accounts with pagination
func (s *AccountService) ListAccounts(ctx context.Context, limit, offset int) ([]*models.Account, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	accounts, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		s.logger.Error("failed to list accounts", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return accounts, nil
}

// SetActive flips the active flag on an account. Deactivation invalidates
// the account's tokens at the next Authorize call.
func (s *AccountService) SetActive(ctx context.Context, actor *models.Account, id int64, active bool) (*models.Account, error) {
	account, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get account", slog.Int64("account_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	// An admin cannot deactivate themselves
	if actor != nil && actor.ID == id && !active {
		return nil, models.ErrForbidden
	}

	account.IsActive = active

	updated, err := s.repo.Update(ctx, id, account)
	if err != nil {
		s.logger.Error("failed to update account", slog.Int64("account_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	action := "account_deactivated"
	if active {
		action = "account_activated"
	}
	s.audit.LogAccountAction(action, id, "", map[string]string{
		"actor_id": formatID(actor),
	})

	return updated, nil
}

// SetAdmin grants or revokes the admin flag
func (s *AccountService) SetAdmin(ctx context.Context, actor *models.Account, id int64, admin bool) (*models.Account, error) {
	account, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get account", slog.Int64("account_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	// An admin cannot demote themselves; prevents locking everyone out
	if actor != nil && actor.ID == id && !admin {
		return nil, models.ErrForbidden
	}

	account.IsAdmin = admin

	updated, err := s.repo.Update(ctx, id, account)
	if err != nil {
		s.logger.Error("failed to update account", slog.Int64("account_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	action := "admin_revoked"
	if admin {
		action = "admin_granted"
	}
	s.audit.LogAccountAction(action, id, "", map[string]string{
		"actor_id": formatID(actor),
	})

	return updated, nil
}

// DeleteAccount removes an account and, via the FK cascade, its URLs
func (s *AccountService) DeleteAccount(ctx context.Context, actor *models.Account, id int64) error {
	if actor != nil && actor.ID == id {
		return models.ErrForbidden
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to delete account", slog.Int64("account_id", id), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.audit.LogAccountAction("account_deleted", id, "", map[string]string{
		"actor_id": formatID(actor),
	})

	return nil
}

// Stats returns aggregate account counts for the admin metrics endpoint
func (s *AccountService) Stats(ctx context.Context) (*repositories.Stats, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		s.logger.Error("failed to load account stats", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return stats, nil
}

func formatID(account *models.Account) string {
	if account == nil {
		return "system"
	}
	return account.Username
}
