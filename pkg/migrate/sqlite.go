package migrate

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// sqliteSchema mirrors the goose migrations for the local sqlite mode, which
// cannot run the Postgres DDL.
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS products (
		id TEXT PRIMARY KEY,
		slug TEXT NOT NULL UNIQUE,
		title TEXT NOT NULL,
		price_minor INTEGER,
		currency TEXT NOT NULL DEFAULT 'SEK',
		published BOOLEAN NOT NULL DEFAULT false,
		canonical_image_url TEXT,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS variants (
		id TEXT PRIMARY KEY,
		product_id TEXT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
		sku TEXT NOT NULL UNIQUE,
		title TEXT NOT NULL,
		stock INTEGER NOT NULL DEFAULT 0,
		price_override_minor INTEGER,
		active BOOLEAN NOT NULL DEFAULT false,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS variant_images (
		id TEXT PRIMARY KEY,
		variant_id TEXT NOT NULL REFERENCES variants(id) ON DELETE CASCADE,
		role TEXT NOT NULL DEFAULT 'secondary',
		status TEXT NOT NULL DEFAULT 'pending',
		url TEXT NOT NULL,
		position INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id TEXT PRIMARY KEY,
		order_number INTEGER NOT NULL UNIQUE,
		fulfillment_status TEXT NOT NULL DEFAULT 'NEW',
		previous_fulfillment_status TEXT,
		payment_status TEXT NOT NULL DEFAULT 'AUTHORIZED',
		payment_provider TEXT NOT NULL,
		gateway_reference TEXT,
		currency TEXT NOT NULL,
		locale TEXT NOT NULL,
		customer_email TEXT NOT NULL,
		subtotal_minor INTEGER NOT NULL,
		shipping_minor INTEGER NOT NULL DEFAULT 0,
		discount_minor INTEGER NOT NULL DEFAULT 0,
		tax_minor INTEGER NOT NULL DEFAULT 0,
		total_minor INTEGER NOT NULL,
		refunded_minor INTEGER,
		shipping_carrier TEXT,
		tracking_number TEXT,
		shipped_at DATETIME,
		captured_at DATETIME,
		payment_cancelled_at DATETIME,
		refunded_at DATETIME,
		pending_transition TEXT,
		pending_since DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS order_items (
		id TEXT PRIMARY KEY,
		order_id TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		product_id TEXT NOT NULL,
		variant_id TEXT NOT NULL,
		sku TEXT NOT NULL,
		product_name TEXT NOT NULL,
		variant_name TEXT NOT NULL,
		quantity INTEGER NOT NULL,
		unit_price_minor INTEGER NOT NULL,
		line_total_minor INTEGER NOT NULL,
		tax_minor INTEGER NOT NULL,
		tax_rate_bp INTEGER NOT NULL,
		created_at DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS outbox_events (
		id TEXT PRIMARY KEY,
		event_type TEXT NOT NULL,
		aggregate_type TEXT NOT NULL,
		aggregate_id TEXT NOT NULL,
		payload BLOB NOT NULL,
		created_at DATETIME,
		published_at DATETIME
	)`,
}

// ApplySQLite creates the schema on a fresh sqlite database.
func ApplySQLite(ctx context.Context, conn *gorm.DB) error {
	for _, stmt := range sqliteSchema {
		if err := conn.WithContext(ctx).Exec(stmt).Error; err != nil {
			return fmt.Errorf("apply sqlite schema: %w", err)
		}
	}
	return nil
}
