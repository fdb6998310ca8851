package migrate_test

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/angelmondragon/threadline-backend/pkg/migrate"
)

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration file matches %s", pattern)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

func TestMigrationsDirIsValid(t *testing.T) {
	if err := migrate.Validate(migrate.Migrations()); err != nil {
		t.Fatalf("validate migrations: %v", err)
	}
}

func TestCatalogMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_catalog_tables.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS products",
		"CREATE TABLE IF NOT EXISTS variants",
		"CREATE TABLE IF NOT EXISTS variant_images",
		"CHECK (stock >= 0)",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_variants_sku",
		"FOREIGN KEY (variant_id) REFERENCES variants(id) ON DELETE CASCADE",
		"DROP TABLE IF EXISTS products",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestOrdersMigrationContainsStateColumns(t *testing.T) {
	content := readMigration(t, "*_create_orders_tables.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS orders",
		"CREATE TABLE IF NOT EXISTS order_items",
		"pending_transition text",
		"pending_since timestamptz",
		"CHECK ((pending_transition IS NULL) = (pending_since IS NULL))",
		"CHECK (total_minor > 0)",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_orders_order_number",
		"DROP TABLE IF EXISTS orders",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestCreateSQLMigrationProducesValidFile(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 10, 1, 8, 30, 0, 0, time.UTC)
	path, err := migrate.CreateSQLMigration(dir, "Add Order Notes!", now)
	if err != nil {
		t.Fatalf("create migration: %v", err)
	}
	if filepath.Base(path) != "20261001083000_add_order_notes.sql" {
		t.Fatalf("unexpected filename %s", path)
	}
	if err := migrate.Validate(os.DirFS(dir)); err != nil {
		t.Fatalf("generated migration does not validate: %v", err)
	}
	if _, err := migrate.CreateSQLMigration(dir, "   ", now); err == nil {
		t.Fatalf("expected blank name to be rejected")
	}
	if _, err := migrate.CreateSQLMigration(dir, "add order notes", now); err == nil {
		t.Fatalf("expected an existing migration to be kept")
	}
}

func TestValidateRejectsMalformedMigrations(t *testing.T) {
	cases := map[string]string{
		"20261001083000_no_down.sql":    "-- +goose Up\nSELECT 1;\n",
		"20261001083000_reversed.sql":   "-- +goose Down\nSELECT 1;\n-- +goose Up\nSELECT 1;\n",
		"20261001083000_unbalanced.sql": "-- +goose Up\n-- +goose StatementBegin\nSELECT 1;\n-- +goose Down\nSELECT 1;\n",
		"add_notes.sql":                 "-- +goose Up\n-- +goose Down\n",
	}
	for name, body := range cases {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("write fixture: %v", err)
		}
		if err := migrate.Validate(os.DirFS(dir)); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}
}

func TestEmbeddedMigrationsMatchSourceDir(t *testing.T) {
	embedded, err := fs.Glob(migrate.Migrations(), "*.sql")
	if err != nil {
		t.Fatalf("glob embedded: %v", err)
	}
	onDisk, err := filepath.Glob(filepath.Join("migrations", "*.sql"))
	if err != nil {
		t.Fatalf("glob dir: %v", err)
	}
	if len(embedded) == 0 || len(embedded) != len(onDisk) {
		t.Fatalf("embedded %d migrations, directory has %d", len(embedded), len(onDisk))
	}
}

func TestNewRunnerRequiresDB(t *testing.T) {
	if _, err := migrate.NewRunner(nil, nil, nil); err == nil {
		t.Fatal("expected missing db to be rejected")
	}
}
