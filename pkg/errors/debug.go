package errors

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

const maxChain = 10

// constraintHints explains schema constraints in commerce terms for operators.
var constraintHints = map[string]string{
	"variants_stock_non_negative":     "stock commit would drive a variant below zero",
	"idx_variants_sku":                "sku already used by another variant",
	"idx_products_slug":               "product slug already taken",
	"idx_orders_order_number":         "order number allocated twice",
	"orders_total_positive":           "order total must be positive",
	"orders_refund_within_total":      "refund exceeds the order total",
	"orders_pending_pair":             "gateway claim columns out of sync",
	"orders_fulfillment_status_valid": "unknown fulfillment status",
	"orders_payment_status_valid":     "unknown payment status",
	"order_items_tax_within_line":     "line tax exceeds the line total",
}

// ErrorDump is a log-friendly view of an error chain.
type ErrorDump struct {
	TopMessage   string
	Code         Code
	Chain        []string
	PGCode       string
	PGConstraint string
	PGTable      string
	PGDetail     string
	PGMessage    string
	Hint         string
}

// Dump flattens err, including joined errors, and pulls Postgres diagnostics
// from either pgx or lib/pq.
func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}
	d := ErrorDump{TopMessage: err.Error(), Code: CodeOf(err)}
	d.Chain = chain(err)

	var pgxErr *pgconn.PgError
	var pqErr *pq.Error
	switch {
	case errors.As(err, &pgxErr):
		d.PGCode, d.PGConstraint, d.PGTable = pgxErr.Code, pgxErr.ConstraintName, pgxErr.TableName
		d.PGDetail, d.PGMessage = pgxErr.Detail, pgxErr.Message
	case errors.As(err, &pqErr):
		d.PGCode, d.PGConstraint, d.PGTable = string(pqErr.Code), pqErr.Constraint, pqErr.Table
		d.PGDetail, d.PGMessage = pqErr.Detail, pqErr.Message
	}
	d.Hint = constraintHints[d.PGConstraint]
	return d
}

// Fields returns the non-empty parts of the dump keyed for structured logs.
func (d ErrorDump) Fields() map[string]any {
	fields := map[string]any{"error": d.TopMessage, "error_code": string(d.Code)}
	if len(d.Chain) > 1 {
		fields["error_chain"] = d.Chain
	}
	for key, value := range map[string]string{
		"pg_code":       d.PGCode,
		"pg_constraint": d.PGConstraint,
		"pg_table":      d.PGTable,
		"pg_detail":     d.PGDetail,
		"pg_message":    d.PGMessage,
		"pg_hint":       d.Hint,
	} {
		if value != "" {
			fields[key] = value
		}
	}
	return fields
}

func chain(err error) []string {
	var out []string
	queue := []error{err}
	for len(queue) > 0 && len(out) < maxChain {
		e := queue[0]
		queue = queue[1:]
		if e == nil {
			continue
		}
		out = append(out, fmt.Sprintf("%T: %v", e, e))
		switch u := e.(type) {
		case interface{ Unwrap() []error }:
			queue = append(queue, u.Unwrap()...)
		case interface{ Unwrap() error }:
			queue = append(queue, u.Unwrap())
		}
	}
	return out
}
