package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/models"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/session"
	"github.com/Kiran6976/Houserent-Frontend-sub000/pkg/sealer"
)

// SessionStorage persists one web session's auth state in PostgreSQL. It
// implements session.Storage.
type SessionStorage struct {
	repo   *WebSessionRepository
	sealer *sealer.Sealer
	id     uuid.UUID
	now    func() time.Time
}

// NewSessionStorage binds storage to the session row id
func NewSessionStorage(repo *WebSessionRepository, s *sealer.Sealer, id uuid.UUID) *SessionStorage {
	return &SessionStorage{repo: repo, sealer: s, id: id, now: time.Now}
}

var _ session.Storage = (*SessionStorage)(nil)

// Load returns the stored token and user, or an empty snapshot
func (s *SessionStorage) Load(ctx context.Context) (session.Snapshot, error) {
	row, err := s.repo.GetActive(ctx, s.id, s.now())
	if err != nil {
		return session.Snapshot{}, err
	}
	if row == nil || !row.SignedIn() {
		return session.Snapshot{}, nil
	}

	token, err := s.sealer.Open(row.SealedToken.String)
	if err != nil {
		return session.Snapshot{}, fmt.Errorf("failed to open session token: %w", err)
	}

	var user *models.User
	if len(row.UserJSON) > 0 {
		user = &models.User{}
		if err := json.Unmarshal(row.UserJSON, user); err != nil {
			return session.Snapshot{}, fmt.Errorf("failed to decode session user: %w", err)
		}
	}
	return session.Snapshot{Token: token, User: user}, nil
}

// Save seals the token and writes the snapshot
func (s *SessionStorage) Save(ctx context.Context, snap session.Snapshot) error {
	sealed, err := s.sealer.Seal(snap.Token)
	if err != nil {
		return fmt.Errorf("failed to seal session token: %w", err)
	}

	var userJSON []byte
	var userID, role string
	if snap.User != nil {
		userJSON, err = json.Marshal(snap.User)
		if err != nil {
			return fmt.Errorf("failed to encode session user: %w", err)
		}
		userID, role = snap.User.ID, string(snap.User.Role)
	}

	return s.repo.SaveAuth(ctx, s.id, userID, role, sealed, userJSON)
}

// Clear signs the session out
func (s *SessionStorage) Clear(ctx context.Context) error {
	return s.repo.ClearAuth(ctx, s.id)
}
