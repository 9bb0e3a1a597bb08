package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bitleap/linkauth/internal/database"
	"github.com/bitleap/linkauth/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AccountRepository persists accounts in the users table. Username and email
// are stored lowercase; lookups lowercase their input so comparisons stay
// case-insensitive even if a row predates normalization.
type AccountRepository struct {
	pool *pgxpool.Pool
}

func NewAccountRepository(db *database.DB) *AccountRepository {
	return &AccountRepository{pool: db.Pool}
}

const accountColumns = `id, username, email, password_hash, is_active, is_admin, created_at, updated_at`

// rowScanner covers both pgx.Row and pgx.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAccountRow(scanner rowScanner) (*models.Account, error) {
	var account models.Account

	err := scanner.Scan(
		&account.ID, &account.Username, &account.Email, &account.PasswordHash,
		&account.IsActive, &account.IsAdmin,
		&account.CreatedAt, &account.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &account, nil
}

func scanAccountRows(rows pgx.Rows) ([]*models.Account, error) {
	defer rows.Close()

	accounts := make([]*models.Account, 0)

	for rows.Next() {
		account, err := scanAccountRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return accounts, nil
}

func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM users WHERE id = $1`

	return scanAccountRow(r.pool.QueryRow(ctx, query, id))
}

func (r *AccountRepository) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM users WHERE LOWER(username) = $1`

	return scanAccountRow(r.pool.QueryRow(ctx, query, strings.ToLower(username)))
}

func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM users WHERE LOWER(email) = $1`

	return scanAccountRow(r.pool.QueryRow(ctx, query, strings.ToLower(email)))
}

func (r *AccountRepository) List(ctx context.Context, limit, offset int) ([]*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM users ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}

	return scanAccountRows(rows)
}

func (r *AccountRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	now := time.Now()
	account.CreatedAt = now
	account.UpdatedAt = now

	query := `
		INSERT INTO users (username, email, password_hash, is_active, is_admin, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + accountColumns

	return scanAccountRow(r.pool.QueryRow(ctx, query,
		account.Username, account.Email, account.PasswordHash,
		account.IsActive, account.IsAdmin,
		account.CreatedAt, account.UpdatedAt,
	))
}

func (r *AccountRepository) Update(ctx context.Context, id int64, account *models.Account) (*models.Account, error) {
	account.UpdatedAt = time.Now()

	query := `
		UPDATE users SET is_active = $1, is_admin = $2, updated_at = $3
		WHERE id = $4
		RETURNING ` + accountColumns

	return scanAccountRow(r.pool.QueryRow(ctx, query,
		account.IsActive, account.IsAdmin, account.UpdatedAt, id,
	))
}

// Delete removes an account. Owned url_mappings rows go with it via the
// ON DELETE CASCADE foreign key.
func (r *AccountRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM users WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return database.MapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

// Stats aggregates account counts for the admin metrics endpoint
type Stats struct {
	Total    int64
	Active   int64
	Admins   int64
	Inactive int64
}

func (r *AccountRepository) Stats(ctx context.Context) (*Stats, error) {
	query := `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE is_active),
		       COUNT(*) FILTER (WHERE is_admin)
		FROM users
	`

	var stats Stats
	if err := r.pool.QueryRow(ctx, query).Scan(&stats.Total, &stats.Active, &stats.Admins); err != nil {
		return nil, database.MapPostgresError(err)
	}
	stats.Inactive = stats.Total - stats.Active

	return &stats, nil
}
