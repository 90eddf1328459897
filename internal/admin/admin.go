package admin

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/playmatatu/nineball/internal/models"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrAccountNotFound means no operator is registered for the phone.
	ErrAccountNotFound = errors.New("admin account not found")
	// ErrInvalidToken means the phone exists but the token does not match.
	ErrInvalidToken = errors.New("invalid token")
)

// GetAdminAccount retrieves an admin account by phone
func GetAdminAccount(ctx context.Context, db *sqlx.DB, phone string) (*models.AdminAccount, error) {
	var acc models.AdminAccount
	err := db.GetContext(ctx, &acc, `SELECT phone, display_name, token_hash, roles, created_at, updated_at FROM admin_accounts WHERE phone=$1`, phone)
	if err != nil {
		return nil, err
	}
	return &acc, nil
}

// VerifyAdminToken checks if the provided token matches the stored hash
func VerifyAdminToken(hashedToken, plainToken string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedToken), []byte(plainToken))
	return err == nil
}

// HashToken bcrypts a plain operator token.
func HashToken(plainToken string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plainToken), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash token: %w", err)
	}
	return string(hashed), nil
}

// CreateAdminAccount creates or replaces an admin account (used for seeding)
func CreateAdminAccount(ctx context.Context, db *sqlx.DB, phone, displayName, plainToken string, roles []string) error {
	hashedToken, err := HashToken(plainToken)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO admin_accounts (phone, display_name, token_hash, roles, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (phone) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			token_hash = EXCLUDED.token_hash,
			roles = EXCLUDED.roles,
			updated_at = NOW()
	`, phone, displayName, hashedToken, pq.Array(roles))
	if err != nil {
		return fmt.Errorf("failed to upsert admin account: %w", err)
	}
	return nil
}

// ValidateAdminPhoneAndToken validates phone + token combination
func ValidateAdminPhoneAndToken(ctx context.Context, db *sqlx.DB, phone, token string) (*models.AdminAccount, error) {
	acc, err := GetAdminAccount(ctx, db, phone)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			slog.Warn("no admin account for phone", "component", "admin", "phone", phone)
			return nil, ErrAccountNotFound
		}
		slog.Error("admin lookup failed", "component", "admin", "error", err)
		return nil, fmt.Errorf("database error: %w", err)
	}

	if !VerifyAdminToken(acc.TokenHash, token) {
		slog.Warn("admin token verification failed", "component", "admin", "phone", phone)
		return nil, ErrInvalidToken
	}

	slog.Debug("admin token verified", "component", "admin", "phone", phone)
	return acc, nil
}
