package repositories

import (
	"context"
	"time"

	"github.com/bitleap/linkauth/internal/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TokenRevocationRepository keeps the blacklist of revoked token ids. A
// revoked jti stays listed until the token's own expiry, after which the row
// is garbage and the cleanup task removes it.
type TokenRevocationRepository struct {
	pool *pgxpool.Pool
}

func NewTokenRevocationRepository(db *database.DB) *TokenRevocationRepository {
	return &TokenRevocationRepository{pool: db.Pool}
}

// RevokeToken adds a token to the revocation blacklist
func (r *TokenRevocationRepository) RevokeToken(ctx context.Context, jti string, accountID int64, expiresAt time.Time, reason string) error {
	query := `
		INSERT INTO revoked_tokens (id, jti, account_id, expires_at, reason, revoked_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (jti) DO NOTHING
	`

	id := uuid.New().String()
	_, err := r.pool.Exec(ctx, query, id, jti, accountID, expiresAt, reason)

	if err != nil {
		return database.MapPostgresError(err)
	}

	return nil
}

// IsTokenRevoked checks if a token is in the revocation blacklist
func (r *TokenRevocationRepository) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM revoked_tokens WHERE jti = $1)`

	var exists bool
	err := r.pool.QueryRow(ctx, query, jti).Scan(&exists)

	if err != nil {
		return false, database.MapPostgresError(err)
	}

	return exists, nil
}

// CleanupExpiredTokens removes blacklist rows for tokens that have expired
// on their own and returns the number of rows deleted
func (r *TokenRevocationRepository) CleanupExpiredTokens(ctx context.Context) (int64, error) {
	query := `DELETE FROM revoked_tokens WHERE expires_at < NOW()`

	result, err := r.pool.Exec(ctx, query)
	if err != nil {
		return 0, database.MapPostgresError(err)
	}

	return result.RowsAffected(), nil
}
