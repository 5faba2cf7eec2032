package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestClassifyPgError(t *testing.T) {
	plain := errors.New("boom")

	cases := []struct {
		name string
		in   error
		want error
	}{
		{name: "no rows", in: pgx.ErrNoRows, want: ErrNotFound},
		{name: "wrapped no rows", in: fmt.Errorf("scan: %w", pgx.ErrNoRows), want: ErrNotFound},
		{name: "unique violation", in: &pgconn.PgError{Code: "23505"}, want: ErrConflict},
		{name: "connection failure", in: &pgconn.PgError{Code: "08006"}, want: ErrUnavailable},
		{name: "admin shutdown", in: &pgconn.PgError{Code: "57P01"}, want: ErrUnavailable},
		{name: "deadline", in: context.DeadlineExceeded, want: ErrUnavailable},
		{name: "unknown", in: plain, want: plain},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := classifyPgError(tc.in)
			if !errors.Is(got, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}

	if classifyPgError(nil) != nil {
		t.Fatalf("expected nil for nil error")
	}
	if err := classifyPgError(&pgconn.PgError{Code: "23503"}); errors.Is(err, ErrConflict) || errors.Is(err, ErrUnavailable) {
		t.Fatalf("foreign key violation must not be classified, got %v", err)
	}
}
