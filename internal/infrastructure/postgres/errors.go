package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

// sqlState extracts the SQLSTATE code from either driver's error type
func sqlState(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func isUniqueViolation(err error) bool {
	return sqlState(err) == codeUniqueViolation
}

func isForeignKeyViolation(err error) bool {
	return sqlState(err) == codeForeignKeyViolation
}

// nullJSON maps an empty payload to SQL NULL
func nullJSON(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}

// nullLimit maps a non-positive limit to SQL NULL, which Postgres treats as no limit
func nullLimit(limit int) any {
	if limit <= 0 {
		return nil
	}
	return limit
}
