package postgres

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/freshfold/laundryapi/internal/domain"
	"github.com/freshfold/laundryapi/pkg/errors"
)

type accountRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *sql.DB, logger *zap.Logger) *accountRepository {
	return &accountRepository{
		db:     db,
		logger: logger,
	}
}

func apiKeyLookupHash(apiKey string) string {
	h := sha256.Sum256([]byte(apiKey))
	return hex.EncodeToString(h[:])
}

func (r *accountRepository) GetByAPIKey(ctx context.Context, apiKey string) (*domain.Account, error) {
	// Prefer direct lookup by api_key_lookup (SHA256 hex); then verify with bcrypt.
	lookupKey := apiKeyLookupHash(apiKey)
	queryByLookup := `
		SELECT id, name, phone, role, api_key_hash, notify_url, is_active, created_at, updated_at
		FROM accounts
		WHERE is_active = true AND api_key_lookup = $1
	`
	var account domain.Account
	var notifyURL sql.NullString
	err := r.db.QueryRowContext(ctx, queryByLookup, lookupKey).Scan(
		&account.ID,
		&account.Name,
		&account.Phone,
		&account.Role,
		&account.APIKeyHash,
		&notifyURL,
		&account.IsActive,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err == nil {
		if bcrypt.CompareHashAndPassword([]byte(account.APIKeyHash), []byte(apiKey)) == nil {
			if notifyURL.Valid {
				account.NotifyURL = &notifyURL.String
			}
			return &account, nil
		}
		r.logger.Debug("API key lookup found account but bcrypt verification failed", zap.String("account_id", account.ID.String()))
	} else if err != sql.ErrNoRows {
		r.logger.Debug("API key lookup query error (falling back to iterate)", zap.Error(err))
	}

	// No row or stale lookup column: fall back to iterating all active accounts
	query := `
		SELECT id, name, phone, role, api_key_hash, notify_url, is_active, created_at, updated_at
		FROM accounts
		WHERE is_active = true
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to query accounts", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		count++
		var a domain.Account
		var nu sql.NullString
		if err := rows.Scan(&a.ID, &a.Name, &a.Phone, &a.Role, &a.APIKeyHash, &nu, &a.IsActive, &a.CreatedAt, &a.UpdatedAt); err != nil {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(a.APIKeyHash), []byte(apiKey)) == nil {
			if nu.Valid {
				a.NotifyURL = &nu.String
			}
			return &a, nil
		}
	}

	r.logger.Info("API key did not match any account",
		zap.Int("active_accounts_checked", count),
		zap.Int("api_key_len", len(apiKey)))
	return nil, &errors.ErrUnauthorized{Message: "invalid API key"}
}

func (r *accountRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	query := `
		SELECT id, name, phone, role, api_key_hash, notify_url, is_active, created_at, updated_at
		FROM accounts
		WHERE id = $1
	`

	var account domain.Account
	var notifyURL sql.NullString

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&account.ID,
		&account.Name,
		&account.Phone,
		&account.Role,
		&account.APIKeyHash,
		&notifyURL,
		&account.IsActive,
		&account.CreatedAt,
		&account.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "account", ID: id.String()}
	}
	if err != nil {
		r.logger.Error("Failed to get account by ID", zap.Error(err))
		return nil, err
	}

	if notifyURL.Valid {
		account.NotifyURL = &notifyURL.String
	}

	return &account, nil
}

func (r *accountRepository) List(ctx context.Context, role domain.Role) ([]*domain.Account, error) {
	query := `
		SELECT id, name, phone, role, api_key_hash, notify_url, is_active, created_at, updated_at
		FROM accounts
		WHERE role = $1
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, role)
	if err != nil {
		r.logger.Error("Failed to list accounts", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var accounts []*domain.Account
	for rows.Next() {
		var a domain.Account
		var notifyURL sql.NullString
		if err := rows.Scan(&a.ID, &a.Name, &a.Phone, &a.Role, &a.APIKeyHash, &notifyURL, &a.IsActive, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		if notifyURL.Valid {
			a.NotifyURL = &notifyURL.String
		}
		accounts = append(accounts, &a)
	}

	return accounts, rows.Err()
}

func (r *accountRepository) Create(ctx context.Context, account *domain.Account) error {
	query := `
		INSERT INTO accounts (id, name, phone, role, api_key_hash, api_key_lookup, notify_url, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	now := time.Now()
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}
	if account.UpdatedAt.IsZero() {
		account.UpdatedAt = now
	}

	_, err := r.db.ExecContext(ctx, query,
		account.ID,
		account.Name,
		account.Phone,
		account.Role,
		account.APIKeyHash,
		account.APIKeyLookup,
		account.NotifyURL,
		account.IsActive,
		account.CreatedAt,
		account.UpdatedAt,
	)

	if err != nil {
		r.logger.Error("Failed to create account", zap.Error(err))
		return err
	}

	return nil
}

func (r *accountRepository) Update(ctx context.Context, account *domain.Account) error {
	query := `
		UPDATE accounts
		SET name = $2, phone = $3, notify_url = $4, is_active = $5, updated_at = $6
		WHERE id = $1
	`

	account.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		account.ID,
		account.Name,
		account.Phone,
		account.NotifyURL,
		account.IsActive,
		account.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to update account", zap.Error(err))
		return err
	}

	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return &errors.ErrNotFound{Resource: "account", ID: account.ID.String()}
	}

	return nil
}
