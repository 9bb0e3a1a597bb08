package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/bitleap/linkauth/internal/auth"
	"github.com/bitleap/linkauth/internal/models"
	pkgauth "github.com/bitleap/linkauth/pkg/auth"
	pkglogger "github.com/bitleap/linkauth/pkg/logger"
)

// AccountRepository defines the identity-store operations the auth core needs
type AccountRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Account, error)
	GetByUsername(ctx context.Context, username string) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	Create(ctx context.Context, account *models.Account) (*models.Account, error)
}

// TokenRevocationRepository defines the interface for the jti blacklist
type TokenRevocationRepository interface {
	RevokeToken(ctx context.Context, jti string, accountID int64, expiresAt time.Time, reason string) error
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)
}

// AuthService composes the password hasher, lockout tracker, token service
// and identity store into the three operations the web layer calls:
// Register, Authenticate and Authorize.
type AuthService struct {
	repo        AccountRepository
	revokeRepo  TokenRevocationRepository
	tokens      *auth.TokenService
	lockout     *auth.LockoutTracker
	minPassword int
	logger      *slog.Logger
	audit       *pkglogger.AuditLogger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	repo AccountRepository,
	revokeRepo TokenRevocationRepository,
	tokens *auth.TokenService,
	lockout *auth.LockoutTracker,
	minPasswordLength int,
	logger *slog.Logger,
	audit *pkglogger.AuditLogger,
) *AuthService {
	return &AuthService{
		repo:        repo,
		revokeRepo:  revokeRepo,
		tokens:      tokens,
		lockout:     lockout,
		minPassword: minPasswordLength,
		logger:      logger,
		audit:       audit,
	}
}

// AuthResult is returned on successful authentication
type AuthResult struct {
	Token   string
	Account *models.Account
}

// Register creates a new account. Username and email are normalized to
// lowercase before the uniqueness checks so "Alice" and "alice" collide.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*models.Account, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	email = strings.ToLower(strings.TrimSpace(email))

	if username == "" || email == "" {
		return nil, models.ErrBadRequest
	}

	if err := pkgauth.ValidatePassword(password, s.minPassword); err != nil {
		s.logger.Info("registration rejected: weak password")
		return nil, models.ErrWeakPassword
	}

	if _, err := s.repo.GetByUsername(ctx, username); err == nil {
		s.logger.Info("registration rejected: username taken")
		return nil, models.ErrDuplicateUsername
	} else if !errors.Is(err, models.ErrNotFound) {
		s.logger.Error("failed to check username uniqueness", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		s.logger.Info("registration rejected: email taken")
		return nil, models.ErrDuplicateEmail
	} else if !errors.Is(err, models.ErrNotFound) {
		s.logger.Error("failed to check email uniqueness", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	hashedPassword, err := pkgauth.HashPassword(password)
	if err != nil {
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	account := &models.Account{
		Username:     username,
		Email:        email,
		PasswordHash: hashedPassword,
		IsActive:     true,
		IsAdmin:      false,
	}

	created, err := s.repo.Create(ctx, account)
	if err != nil {
		// A concurrent registration can still hit the unique index
		if errors.Is(err, models.ErrDuplicateUsername) || errors.Is(err, models.ErrDuplicateEmail) {
			return nil, err
		}
		s.logger.Error("failed to create account", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("account registered", slog.Int64("account_id", created.ID))
	s.audit.LogAccountAction("account_registered", created.ID, "", nil)

	return created, nil
}

// Authenticate verifies credentials from a source and issues a bearer token.
// A locked-out source is rejected before any hash work, so the response
// neither wastes CPU nor reveals whether the account exists. Unknown user
// and wrong password return the same ErrInvalidCredentials.
func (s *AuthService) Authenticate(ctx context.Context, source, username, password string) (*AuthResult, error) {
	username = strings.ToLower(strings.TrimSpace(username))

	if !s.lockout.CheckAllowed(source) {
		s.audit.LogAuthAttempt(pkglogger.AuditEvent{
			EventType:     "login_failed",
			Source:        source,
			FailureReason: "rate_limited",
			Success:       false,
		})
		return nil, models.ErrRateLimited
	}

	account, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.lockout.RecordFailure(source, username)
			s.audit.LogAuthAttempt(pkglogger.AuditEvent{
				EventType:     "login_failed",
				Source:        source,
				FailureReason: "invalid_credentials",
				Success:       false,
			})
			return nil, models.ErrInvalidCredentials
		}
		s.logger.Error("failed to get account by username", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if !pkgauth.VerifyPassword(account.PasswordHash, password) {
		s.lockout.RecordFailure(source, username)
		s.audit.LogAuthAttempt(pkglogger.AuditEvent{
			EventType:     "login_failed",
			AccountID:     account.ID,
			Source:        source,
			FailureReason: "invalid_credentials",
			Success:       false,
		})
		return nil, models.ErrInvalidCredentials
	}

	if !account.IsActive {
		s.audit.LogAuthAttempt(pkglogger.AuditEvent{
			EventType:     "login_failed",
			AccountID:     account.ID,
			Source:        source,
			FailureReason: "account_inactive",
			Success:       false,
		})
		return nil, models.ErrAccountInactive
	}

	s.lockout.Clear(source)

	token, err := s.tokens.Issue(account.Username, account.ID, 0)
	if err != nil {
		s.logger.Error("failed to issue token", slog.Int64("account_id", account.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.audit.LogAuthAttempt(pkglogger.AuditEvent{
		EventType: "login_success",
		AccountID: account.ID,
		Source:    source,
		Success:   true,
	})

	return &AuthResult{Token: token, Account: account}, nil
}

// Authorize resolves a bearer token to a live account. Tokens that verify
// but reference a revoked jti, a vanished account, or a deactivated account
// are rejected.
func (s *AuthService) Authorize(ctx context.Context, token string) (*models.Account, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, models.ErrInvalidToken
	}

	if claims.ID != "" {
		revoked, err := s.revokeRepo.IsTokenRevoked(ctx, claims.ID)
		if err != nil {
			// Fail open on blacklist lookup errors; signature and expiry
			// checks above still fail closed
			s.logger.Error("revocation check failed", slog.Any("error", err))
		} else if revoked {
			s.logger.Info("rejected revoked token", slog.Int64("account_id", claims.AccountID))
			return nil, models.ErrInvalidToken
		}
	}

	account, err := s.repo.GetByID(ctx, claims.AccountID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.logger.Info("token references missing account", slog.Int64("account_id", claims.AccountID))
			return nil, models.ErrInvalidToken
		}
		s.logger.Error("failed to load account for token", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if !account.IsActive {
		return nil, models.ErrAccountInactive
	}

	return account, nil
}

// Logout revokes the presented token by its jti until its natural expiry
func (s *AuthService) Logout(ctx context.Context, token string) error {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return models.ErrInvalidToken
	}

	expiresAt := time.Now().Add(time.Hour)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}

	if err := s.revokeRepo.RevokeToken(ctx, claims.ID, claims.AccountID, expiresAt, "logout"); err != nil {
		s.logger.Error("failed to revoke token", slog.String("jti", claims.ID), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.logger.Info("account logged out", slog.Int64("account_id", claims.AccountID))
	return nil
}
