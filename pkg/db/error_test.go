package db

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestErrorReason(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "deadline", err: fmt.Errorf("insert: %w", context.DeadlineExceeded), want: ReasonDeadlineExceeded},
		{name: "canceled", err: context.Canceled, want: ReasonCanceled},
		{name: "gorm duplicate", err: gorm.ErrDuplicatedKey, want: ReasonUniqueViolation},
		{name: "pgx undefined table", err: &pgconn.PgError{Code: "42P01"}, want: ReasonUndefinedTable},
		{name: "pgx connection", err: &pgconn.PgError{Code: "08006"}, want: ReasonConnection},
		{name: "pq unique", err: &pq.Error{Code: "23505"}, want: ReasonUniqueViolation},
		{name: "other", err: errors.New("boom"), want: ReasonUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ErrorReason(tc.err))
		})
	}
}

func TestDialectRejectsUnknownType(t *testing.T) {
	_, err := Dialect(Config{Type: "oracle"})
	assert.Error(t, err)
}
