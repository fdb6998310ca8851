package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

func TestIsUniqueViolation(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		constraint string
		want       bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "pgx any", err: fmt.Errorf("wrap: %w", &pgconn.PgError{Code: "23505", ConstraintName: "orders_order_number_key"}), want: true},
		{name: "pgx constraint match", err: &pgconn.PgError{Code: "23505", ConstraintName: "orders_order_number_key"}, constraint: "orders_order_number_key", want: true},
		{name: "pgx other constraint", err: &pgconn.PgError{Code: "23505", ConstraintName: "variants_sku_key"}, constraint: "orders_order_number_key", want: false},
		{name: "pgx other code", err: &pgconn.PgError{Code: "23503"}, want: false},
		{name: "pq", err: &pq.Error{Code: "23505", Constraint: "variants_sku_key"}, constraint: "variants_sku_key", want: true},
		{name: "sqlite message", err: errors.New("UNIQUE constraint failed: orders.order_number"), constraint: "orders.order_number", want: true},
		{name: "unrelated", err: errors.New("connection refused"), want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsUniqueViolation(tc.err, tc.constraint); got != tc.want {
				t.Fatalf("IsUniqueViolation() = %v, want %v", got, tc.want)
			}
		})
	}
}
