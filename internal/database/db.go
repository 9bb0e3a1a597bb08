package database

import (
	"errors"

	"github.com/bitleap/linkauth/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// MapPostgresError translates driver errors into the sentinel errors the
// service layer switches on. Unique violations are mapped per constraint so
// a registration race still reports which field collided.
func MapPostgresError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return models.ErrNotFound
	}

	if pgErr, ok := err.(*pgconn.PgError); ok {
		switch pgErr.Code {
		case "23505": // unique_violation
			switch pgErr.ConstraintName {
			case "users_username_key":
				return models.ErrDuplicateUsername
			case "users_email_key":
				return models.ErrDuplicateEmail
			}
			return models.ErrDuplicateUsername
		case "23503": // foreign_key_violation
			return models.ErrBadRequest
		case "23502": // not_null_violation
			return models.ErrBadRequest
		}
	}

	return err
}
