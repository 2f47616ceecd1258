package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/freshfold/laundryapi/internal/config"
	"github.com/freshfold/laundryapi/internal/domain"
	"github.com/freshfold/laundryapi/internal/repository/postgres"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	// Initialize database
	db, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	repos := postgres.NewRepositories(db, logger)

	fmt.Println("📋 Listing bookings in database:")

	bookings, err := repos.Booking.List(context.Background(), 100, 0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to query bookings: %v\n", err)
		os.Exit(1)
	}

	for i, booking := range bookings {
		raw := string(booking.Status)
		fmt.Printf("Booking #%d:\n", i+1)
		fmt.Printf("  ID: %s\n", booking.ID.String())
		fmt.Printf("  Customer ID: %s\n", booking.CustomerID.String())
		if booking.RiderID != nil {
			fmt.Printf("  Rider ID: %s\n", booking.RiderID.String())
		}
		fmt.Printf("  Status: %s (timeline %d, bucket %s)\n",
			raw, domain.TimelineIndex(raw), domain.FilterBucket(raw))
		fmt.Printf("  Pickup: %s %s\n", booking.PickupDate, booking.PickupTime)
		fmt.Printf("  Address: %s\n", booking.Address)
		if booking.TotalAmount != nil {
			fmt.Printf("  Total: %.2f\n", *booking.TotalAmount)
		}
		if booking.PaymentStatus != "" {
			fmt.Printf("  Payment Status: %s\n", booking.PaymentStatus)
		}
		fmt.Printf("  Created: %s\n", booking.CreatedAt.Format("2006-01-02 15:04:05"))
		fmt.Println()
	}

	if len(bookings) == 0 {
		fmt.Println("❌ No bookings found in database.")
		fmt.Println("\nTo test the API, you need to:")
		fmt.Println("1. Create a customer: go run cmd/create-account/main.go --name \"Test Customer\" --api-key \"test-api-key\"")
		fmt.Println("2. Create a booking via POST /v1/bookings")
		fmt.Println("3. Then list again")
	} else {
		fmt.Printf("✅ Found %d booking(s)\n", len(bookings))
	}
}
