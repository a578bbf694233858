package db

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

const (
	ReasonUniqueViolation  = "unique_violation"
	ReasonUndefinedTable   = "undefined_table"
	ReasonConnection       = "connection"
	ReasonDeadlineExceeded = "deadline_exceeded"
	ReasonCanceled         = "canceled"
	ReasonUnknown          = "unknown"
)

func IsDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	// PostgreSQL (error code 23505)
	if strings.Contains(err.Error(), "duplicate key value violates unique constraint") {
		return true
	}

	// MySQL (error code 1062)
	if strings.Contains(err.Error(), "Error 1062") {
		return true
	}

	// SQLite (error code 2067)
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return true
	}

	return false
}

// ErrorReason maps a storage error to a low-cardinality label for metrics and logs.
func ErrorReason(err error) string {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return ReasonDeadlineExceeded
	case errors.Is(err, context.Canceled):
		return ReasonCanceled
	case IsDuplicateKeyErr(err):
		return ReasonUniqueViolation
	}

	if code := sqlState(err); code != "" {
		switch {
		case code == "23505":
			return ReasonUniqueViolation
		case code == "42P01":
			return ReasonUndefinedTable
		case strings.HasPrefix(code, "08"):
			return ReasonConnection
		}
	}

	return ReasonUnknown
}

// gorm rides on pgx while golang-migrate rides on lib/pq.
func sqlState(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}
