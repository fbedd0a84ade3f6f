package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"holidaze/internal/database"
	"holidaze/internal/models"
)

type SessionRepository struct {
	db *database.DB
}

func NewSessionRepository(db *database.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Get returns ok=false for unknown or expired sessions
func (r *SessionRepository) Get(ctx context.Context, sessionID string) (models.Credentials, bool, error) {
	var creds models.Credentials
	query := `
		SELECT access_token, profile_name
		FROM sessions
		WHERE session_id = $1
		  AND (expires_at IS NULL OR expires_at > NOW())`

	err := r.db.QueryRowContext(ctx, query, sessionID).Scan(&creds.AccessToken, &creds.ProfileName)
	if err == sql.ErrNoRows {
		return models.Credentials{}, false, nil
	}
	if err != nil {
		return models.Credentials{}, false, fmt.Errorf("failed to load session: %w", err)
	}

	return creds, creds.Valid(), nil
}

// Upsert stores both credential fields in a single statement
func (r *SessionRepository) Upsert(ctx context.Context, sessionID string, creds models.Credentials, ttl time.Duration) error {
	var expiresAt sql.NullTime
	if ttl > 0 {
		expiresAt = sql.NullTime{Time: time.Now().Add(ttl), Valid: true}
	}

	query := `
		INSERT INTO sessions (session_id, access_token, profile_name, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (session_id) DO UPDATE
		SET access_token = EXCLUDED.access_token,
		    profile_name = EXCLUDED.profile_name,
		    expires_at = EXCLUDED.expires_at,
		    updated_at = NOW()`

	if _, err := r.db.ExecWithRetry(ctx, query, sessionID, creds.AccessToken, creds.ProfileName, expiresAt); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (r *SessionRepository) Delete(ctx context.Context, sessionID string) error {
	query := `DELETE FROM sessions WHERE session_id = $1`

	if _, err := r.db.ExecWithRetry(ctx, query, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteExpired purges sessions past their expiry and reports how many were removed
func (r *SessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	query := `DELETE FROM sessions WHERE expires_at IS NOT NULL AND expires_at <= NOW()`

	res, err := r.db.ExecWithRetry(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return res.RowsAffected()
}
