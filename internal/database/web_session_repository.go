package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrSessionNotFound is returned when a write targets a missing or expired session
var ErrSessionNotFound = errors.New("web session not found")

// WebSession is one browser session of the web front-end. The API token is
// stored sealed, never in plaintext.
type WebSession struct {
	ID          uuid.UUID      `db:"id"`
	UserID      sql.NullString `db:"user_id"`
	Role        sql.NullString `db:"role"`
	SealedToken sql.NullString `db:"sealed_token"`
	UserJSON    []byte         `db:"user_json"`
	DeviceType  string         `db:"device_type"`
	DeviceLabel string         `db:"device_label"`
	IPAddress   sql.NullString `db:"ip_address"`
	CreatedAt   time.Time      `db:"created_at"`
	LastSeenAt  time.Time      `db:"last_seen_at"`
	ExpiresAt   time.Time      `db:"expires_at"`
}

// SignedIn reports whether the session carries an API token
func (s *WebSession) SignedIn() bool {
	return s.SealedToken.Valid && s.SealedToken.String != ""
}

// WebSessionRepository handles web session database operations
type WebSessionRepository struct {
	db DB
}

// NewWebSessionRepository creates a new web session repository
func NewWebSessionRepository(db DB) *WebSessionRepository {
	return &WebSessionRepository{db: db}
}

const webSessionColumns = `
	id, user_id, role, sealed_token, user_json, device_type, device_label,
	ip_address, created_at, last_seen_at, expires_at`

// Create starts an anonymous session
func (r *WebSessionRepository) Create(ctx context.Context, s *WebSession) error {
	query := `
		INSERT INTO web_sessions (
			id, device_type, device_label, ip_address, created_at, last_seen_at, expires_at
		) VALUES ($1, $2, $3, $4, $5, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		s.ID,
		s.DeviceType,
		s.DeviceLabel,
		s.IPAddress,
		s.CreatedAt,
		s.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create web session: %w", err)
	}
	return nil
}

// GetActive returns an unexpired session, or nil when there is none
func (r *WebSessionRepository) GetActive(ctx context.Context, id uuid.UUID, now time.Time) (*WebSession, error) {
	var s WebSession
	query := `SELECT` + webSessionColumns + `
		FROM web_sessions
		WHERE id = $1 AND expires_at > $2
	`

	err := r.db.GetContext(ctx, &s, query, id, now)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get web session: %w", err)
	}
	return &s, nil
}

// ListForUser returns the user's unexpired signed-in sessions, newest first
func (r *WebSessionRepository) ListForUser(ctx context.Context, userID string, now time.Time) ([]WebSession, error) {
	sessions := []WebSession{}
	query := `SELECT` + webSessionColumns + `
		FROM web_sessions
		WHERE user_id = $1 AND sealed_token IS NOT NULL AND expires_at > $2
		ORDER BY last_seen_at DESC
	`

	if err := r.db.SelectContext(ctx, &sessions, query, userID, now); err != nil {
		return nil, fmt.Errorf("failed to list web sessions: %w", err)
	}
	return sessions, nil
}

// SaveAuth stores the sealed token and user of a signed-in session
func (r *WebSessionRepository) SaveAuth(ctx context.Context, id uuid.UUID, userID, role, sealedToken string, userJSON []byte) error {
	query := `
		UPDATE web_sessions
		SET user_id = $2, role = $3, sealed_token = $4, user_json = $5
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, id, nullString(userID), nullString(role), nullString(sealedToken), userJSON)
	if err != nil {
		return fmt.Errorf("failed to save web session auth: %w", err)
	}
	return requireRow(result)
}

// ClearAuth signs a session out while keeping the row for its toasts and cookie
func (r *WebSessionRepository) ClearAuth(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE web_sessions
		SET user_id = NULL, role = NULL, sealed_token = NULL, user_json = NULL
		WHERE id = $1
	`

	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to clear web session auth: %w", err)
	}
	return nil
}

// Touch records activity and slides the expiry forward
func (r *WebSessionRepository) Touch(ctx context.Context, id uuid.UUID, now, expiresAt time.Time) error {
	query := `
		UPDATE web_sessions
		SET last_seen_at = $2, expires_at = $3
		WHERE id = $1
	`

	if _, err := r.db.ExecContext(ctx, query, id, now, expiresAt); err != nil {
		return fmt.Errorf("failed to touch web session: %w", err)
	}
	return nil
}

// Delete removes a session
func (r *WebSessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM web_sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete web session: %w", err)
	}
	return nil
}

// DeleteExpired purges sessions past their expiry and returns how many went
func (r *WebSessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM web_sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired web sessions: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

func requireRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
