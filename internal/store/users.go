package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"jobboard-engine/internal/domain"
)

// EnsureUser looks a user up by identity-provider subject and creates the
// row on first sight. Safe to call on every authenticated request.
func EnsureUser(ctx context.Context, db *sql.DB, u domain.User) (domain.User, error) {
	if u.AuthID == "" {
		return domain.User{}, errors.New("ensure user: auth id is required")
	}
	if u.Role == "" {
		u.Role = "jobseeker"
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := db.ExecContext(ctx, `
INSERT OR IGNORE INTO users(id, auth_id, name, email, role, profile_picture, created_at, updated_at)
VALUES(?,?,?,?,?,?,?,?);`,
		uuid.NewString(), u.AuthID, u.Name, u.Email, u.Role, u.ProfilePicture, now, now,
	); err != nil {
		return domain.User{}, fmt.Errorf("ensure user: %w", err)
	}

	return GetUserByAuthID(ctx, db, u.AuthID)
}

func GetUser(ctx context.Context, db *sql.DB, id string) (domain.User, error) {
	return getUserWhere(ctx, db, `id = ?`, id)
}

func GetUserByAuthID(ctx context.Context, db *sql.DB, authID string) (domain.User, error) {
	return getUserWhere(ctx, db, `auth_id = ?`, authID)
}

// EnsureServiceAccount provisions the fixed identity that owns ingested
// postings and returns it.
func EnsureServiceAccount(ctx context.Context, db *sql.DB) (domain.User, error) {
	return EnsureUser(ctx, db, domain.User{
		AuthID: domain.ServiceAccountAuthID,
		Name:   "Ingestion Service",
		Email:  "ingest@jobboard.local",
		Role:   "system",
	})
}

func getUserWhere(ctx context.Context, db *sql.DB, where string, arg any) (domain.User, error) {
	var u domain.User
	var createdStr, updatedStr string
	err := db.QueryRowContext(ctx, `
SELECT id, auth_id, name, email, role, profile_picture, created_at, updated_at
FROM users WHERE `+where+`;`, arg).Scan(
		&u.ID, &u.AuthID, &u.Name, &u.Email, &u.Role, &u.ProfilePicture, &createdStr, &updatedStr,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, ErrNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("get user: %w", err)
	}
	u.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
	u.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedStr)
	return u, nil
}
