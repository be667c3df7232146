package migrate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMigrationsDirIsValid(t *testing.T) {
	if err := ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations: %v", err)
	}
}

func TestOrdersMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_orders.sql")

	checks := []string{
		"CREATE TYPE order_status AS ENUM ('pending', 'confirmed', 'shipped', 'delivered', 'cancelled')",
		"CREATE TABLE IF NOT EXISTS orders",
		"CREATE TABLE IF NOT EXISTS order_items",
		"FOREIGN KEY (order_id) REFERENCES orders(order_id) ON DELETE CASCADE",
		"CHECK (quantity > 0)",
		"DROP TABLE IF EXISTS order_items",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestPaymentsMigrationHasUniquePaymentID(t *testing.T) {
	content := readMigration(t, "*_create_payments.sql")
	if !strings.Contains(content, "CONSTRAINT payments_payment_id_unique UNIQUE (payment_id)") {
		t.Fatalf("payments migration must declare payments_payment_id_unique")
	}
}

func TestValidateDirRejectsBadNames(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bad-name.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := ValidateDir(dir); err == nil {
		t.Fatalf("expected validation error for bad filename")
	}
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()
	path, err := CreateSQLMigration(dir, "Add Order Notes!")
	if err != nil {
		t.Fatalf("create migration: %v", err)
	}
	if !strings.HasSuffix(path, "_add_order_notes.sql") {
		t.Fatalf("unexpected file name %s", path)
	}
	if err := ValidateDir(dir); err != nil {
		t.Fatalf("created migration should validate: %v", err)
	}
	if _, err := CreateSQLMigration(dir, "!!!"); err == nil {
		t.Fatalf("expected error for empty sanitized name")
	}
}

func TestCreateSQLMigrationVersionsAfterLatest(t *testing.T) {
	dir := t.TempDir()
	future := "29991231235959_create_carts.sql"
	if err := os.WriteFile(filepath.Join(dir, future), []byte("-- +goose Up\n-- +goose Down\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	first, err := CreateSQLMigration(dir, "add_cart_notes")
	if err != nil {
		t.Fatalf("create migration: %v", err)
	}
	if filepath.Base(first) != "30000101000000_add_cart_notes.sql" {
		t.Fatalf("expected version after the latest file, got %s", filepath.Base(first))
	}
	second, err := CreateSQLMigration(dir, "add_cart_notes")
	if err != nil {
		t.Fatalf("create second migration: %v", err)
	}
	if filepath.Base(second) != "30000101000001_add_cart_notes.sql" {
		t.Fatalf("unexpected second version %s", filepath.Base(second))
	}
	if err := ValidateDir(dir); err != nil {
		t.Fatalf("created migrations should validate: %v", err)
	}
}

func TestCreateSQLMigrationTableSkeleton(t *testing.T) {
	dir := t.TempDir()
	path, err := CreateSQLMigration(dir, "Create Delivery Slots")
	if err != nil {
		t.Fatalf("create migration: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	content := string(data)
	for _, sub := range []string{
		"CREATE TABLE IF NOT EXISTS delivery_slots (",
		"DROP TABLE IF EXISTS delivery_slots;",
	} {
		if !strings.Contains(content, sub) {
			t.Errorf("missing %q in\n%s", sub, content)
		}
	}

	plain, err := CreateSQLMigration(dir, "add order notes")
	if err != nil {
		t.Fatalf("create migration: %v", err)
	}
	data, err = os.ReadFile(plain)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if strings.Contains(string(data), "CREATE TABLE") {
		t.Fatalf("non-table migration should be blank, got\n%s", data)
	}
}

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
