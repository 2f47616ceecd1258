// reset-bookings deletes all bookings (and related rows) and all accounts for a fresh test.
// Run from the repo root: go run cmd/reset-bookings/main.go
// Uses the same DB as the server (e.g. .env or DB_HOST=127.0.0.1 DB_PORT=5434 when DB runs in Docker).
package main

import (
	"context"
	"fmt"
	"log"

	"github.com/freshfold/laundryapi/internal/config"
	"github.com/freshfold/laundryapi/internal/repository/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer db.Close()

	ctx := context.Background()

	// Delete in order (children first)
	tables := []string{
		"idempotency_keys",
		"booking_events",
		"clothing_items",
		"bookings",
		"accounts",
	}
	for _, table := range tables {
		result, err := db.ExecContext(ctx, "DELETE FROM "+table)
		if err != nil {
			log.Fatalf("Failed to delete from %s: %v", table, err)
		}
		rows, _ := result.RowsAffected()
		fmt.Printf("Deleted %d row(s) from %s\n", rows, table)
	}
	fmt.Println("Done. You can create a new account with: go run cmd/create-account/main.go --name \"Test Customer\" --api-key \"test-api-key-2026\"")
}
