package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestOrdersMigrationContainsSchemas(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_orders_tables.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no orders migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS orders",
		"CREATE TABLE IF NOT EXISTS order_items",
		"CREATE TABLE IF NOT EXISTS order_reviews",
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_orders_order_number",
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_order_reviews_order_id",
		"CHECK (rating BETWEEN 1 AND 5)",
		"CHECK (quantity > 0)",
		"DROP TABLE IF EXISTS orders",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestWebhookEventsMigrationContainsUniqueKey(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_webhook_events.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no webhook events migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS webhook_events",
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_webhook_events_idempotency_key",
		"DROP TABLE IF EXISTS webhook_events",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}
