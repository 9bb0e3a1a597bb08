package auth

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/bitleap/linkauth/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenService signs and verifies self-contained bearer tokens.
//
// Every verification failure collapses to models.ErrInvalidToken for the
// caller; the underlying cause is only logged, so responses never reveal
// whether a token was expired, tampered with, or simply malformed.
type TokenService struct {
	secret      []byte
	issuer      string
	tokenTTL    time.Duration
	maxTokenAge time.Duration
	logger      *slog.Logger
	now         func() time.Time
}

// NewTokenService creates a TokenService. tokenTTL is the default lifetime
// for issued tokens; maxTokenAge is the absolute ceiling on token age since
// issuance, enforced during verification regardless of the exp claim.
func NewTokenService(secret, issuer string, tokenTTL, maxTokenAge time.Duration, logger *slog.Logger) *TokenService {
	return &TokenService{
		secret:      []byte(secret),
		issuer:      issuer,
		tokenTTL:    tokenTTL,
		maxTokenAge: maxTokenAge,
		logger:      logger,
		now:         time.Now,
	}
}

// Issue creates a signed token for the given identity. A ttl of zero uses
// the configured default.
func (ts *TokenService) Issue(username string, accountID int64, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = ts.tokenTTL
	}

	now := ts.now()
	claims := &models.TokenClaims{
		Username:  username,
		AccountID: accountID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    ts.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(ts.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// Verify parses and validates a token string, returning its claims.
func (ts *TokenService) Verify(tokenString string) (*models.TokenClaims, error) {
	claims := &models.TokenClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return ts.secret, nil
	}, jwt.WithTimeFunc(ts.now))

	if err != nil {
		ts.logger.Info("token validation failed", slog.Any("error", err))
		return nil, models.ErrInvalidToken
	}

	if !token.Valid {
		return nil, models.ErrInvalidToken
	}

	if claims.Username == "" || claims.AccountID == 0 {
		ts.logger.Info("token rejected: missing identity claims")
		return nil, models.ErrInvalidToken
	}

	// Cap total age from issuance. A token minted with an abnormally long
	// TTL still dies at the ceiling.
	if claims.IssuedAt == nil {
		ts.logger.Info("token rejected: missing iat claim")
		return nil, models.ErrInvalidToken
	}
	if ts.now().After(claims.IssuedAt.Time.Add(ts.maxTokenAge)) {
		ts.logger.Info("token rejected: exceeded max age",
			slog.Int64("account_id", claims.AccountID),
			slog.Time("issued_at", claims.IssuedAt.Time))
		return nil, models.ErrInvalidToken
	}

	return claims, nil
}
