package repository

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// pgCode returns the SQLSTATE carried by err, or "" for non-Postgres errors.
func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// MapError turns sql.ErrNoRows into notFound and a unique violation into
// duplicate. Anything else, nil included, passes through.
func MapError(err error, notFound, duplicate error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return notFound
	case pgCode(err) == pgerrcode.UniqueViolation:
		return duplicate
	}
	return err
}

// IsCheckViolation reports a row the schema refused: a CHECK constraint
// failure or text that does not parse as the column type.
func IsCheckViolation(err error) bool {
	switch pgCode(err) {
	case pgerrcode.CheckViolation, pgerrcode.InvalidTextRepresentation:
		return true
	}
	return false
}
