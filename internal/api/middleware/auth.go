package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/freshfold/laundryapi/internal/domain"
	"github.com/freshfold/laundryapi/internal/repository"
)

const AccountContextKey = "account"

// AuthMiddleware authenticates requests using API key
func AuthMiddleware(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			c.Abort()
			return
		}

		// Extract Bearer token
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			c.Abort()
			return
		}

		apiKey := strings.TrimSpace(parts[1])
		if apiKey == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing API key"})
			c.Abort()
			return
		}

		account, err := repos.Account.GetByAPIKey(c.Request.Context(), apiKey)
		if err != nil {
			logger.Warn("Failed to authenticate account", zap.Error(err))
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid API key"})
			c.Abort()
			return
		}

		if !account.IsActive {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "account is inactive"})
			c.Abort()
			return
		}

		// Store account in context
		c.Set(AccountContextKey, account)
		c.Next()
	}
}

// RequireRole rejects authenticated accounts that do not hold the given role.
// Admins pass every role gate.
func RequireRole(role domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		account, ok := GetAccountFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}
		if account.Role != role && account.Role != domain.RoleAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetAccountFromContext retrieves the account from the Gin context
func GetAccountFromContext(c *gin.Context) (*domain.Account, bool) {
	account, exists := c.Get(AccountContextKey)
	if !exists {
		return nil, false
	}

	a, ok := account.(*domain.Account)
	return a, ok
}

// HashAPIKey hashes an API key using bcrypt
func HashAPIKey(apiKey string) string {
	// Use a cost of 10 for API keys (faster than passwords)
	hash, err := bcrypt.GenerateFromPassword([]byte(apiKey), 10)
	if err != nil {
		// This should never happen, but handle it
		return ""
	}
	return string(hash)
}

// VerifyAPIKey verifies an API key against a hash
func VerifyAPIKey(apiKey, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(apiKey))
	return err == nil
}

// APIKeyLookup returns the SHA256 hex of an API key. It is stored alongside
// the bcrypt hash so authentication can find the account without iterating;
// the bcrypt hash remains the source of truth.
func APIKeyLookup(apiKey string) string {
	h := sha256.Sum256([]byte(apiKey))
	return hex.EncodeToString(h[:])
}
