package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/freshfold/laundryapi/internal/api/middleware"
	"github.com/freshfold/laundryapi/internal/config"
	"github.com/freshfold/laundryapi/internal/domain"
	"github.com/freshfold/laundryapi/internal/repository/postgres"
)

func main() {
	nameFlag := flag.String("name", "", "Account display name")
	phoneFlag := flag.String("phone", "", "Contact phone number")
	roleFlag := flag.String("role", "customer", "Account role: customer, rider or admin")
	apiKeyFlag := flag.String("api-key", "", "API key for this account (save it; it cannot be retrieved later)")
	notifyFlag := flag.String("notify-url", "", "Optional push-relay URL for status notifications")
	flag.Parse()

	name := strings.TrimSpace(*nameFlag)
	phone := strings.TrimSpace(*phoneFlag)
	// Trim so the stored hash matches what the server receives (AuthMiddleware trims the Bearer token)
	apiKey := strings.TrimSpace(*apiKeyFlag)
	notifyURL := strings.TrimSpace(*notifyFlag)

	if name == "" || apiKey == "" {
		fmt.Println("Usage:")
		fmt.Println("  go run cmd/create-account/main.go --name \"Account Name\" --api-key \"your-api-key\" [--role rider] [--phone \"+962...\"] [--notify-url \"https://...\"]")
		fmt.Println("Example: go run cmd/create-account/main.go --name \"Omar\" --role rider --api-key \"omar-rider-key-12345\"")
		os.Exit(1)
	}

	role := domain.Role(*roleFlag)
	if !role.IsValid() {
		fmt.Fprintf(os.Stderr, "Error: invalid role %q (expected customer, rider or admin)\n", *roleFlag)
		os.Exit(1)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	// Connect to database
	db, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	// Hash the API key (bcrypt for verification; SHA256 hex for fast lookup)
	apiKeyHash := middleware.HashAPIKey(apiKey)
	if apiKeyHash == "" {
		fmt.Fprintf(os.Stderr, "Failed to hash API key\n")
		os.Exit(1)
	}
	apiKeyLookup := middleware.APIKeyLookup(apiKey)

	// Create repositories
	repos := postgres.NewRepositories(db, logger)

	account := &domain.Account{
		Name:         name,
		Phone:        phone,
		Role:         role,
		APIKeyHash:   apiKeyHash,
		APIKeyLookup: apiKeyLookup,
		IsActive:     true,
	}
	if notifyURL != "" {
		account.NotifyURL = &notifyURL
	}

	err = repos.Account.Create(context.Background(), account)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create account: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ Account created successfully!\n\n")
	fmt.Printf("Account ID: %s\n", account.ID.String())
	fmt.Printf("Name: %s\n", account.Name)
	fmt.Printf("Role: %s\n", account.Role)
	if phone != "" {
		fmt.Printf("Phone: %s\n", phone)
	}
	fmt.Printf("API Key: %s\n", apiKey)
	fmt.Printf("\n⚠️  IMPORTANT: Save this API key securely! You won't be able to see it again.\n")
	fmt.Printf("\nUse this API key in the Authorization header:\n")
	fmt.Printf("Authorization: Bearer %s\n", apiKey)
}
