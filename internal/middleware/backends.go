package middleware

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/database"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/session"
	"github.com/Kiran6976/Houserent-Frontend-sub000/pkg/sealer"
)

// PostgresBackend keeps web sessions in the web_sessions table with API
// tokens sealed at rest
type PostgresBackend struct {
	repo   *database.WebSessionRepository
	sealer *sealer.Sealer
	now    func() time.Time
}

// NewPostgresBackend creates a backend over repo
func NewPostgresBackend(repo *database.WebSessionRepository, s *sealer.Sealer) *PostgresBackend {
	return &PostgresBackend{repo: repo, sealer: s, now: time.Now}
}

// Create implements SessionBackend
func (b *PostgresBackend) Create(ctx context.Context, meta DeviceMeta, expiresAt time.Time) (uuid.UUID, error) {
	now := b.now()
	row := &database.WebSession{
		ID:          uuid.New(),
		DeviceType:  meta.Device.DeviceType,
		DeviceLabel: meta.Device.Label(),
		IPAddress:   sql.NullString{String: meta.IP, Valid: meta.IP != ""},
		CreatedAt:   now,
		LastSeenAt:  now,
		ExpiresAt:   expiresAt,
	}
	if err := b.repo.Create(ctx, row); err != nil {
		return uuid.Nil, err
	}
	return row.ID, nil
}

// Active implements SessionBackend
func (b *PostgresBackend) Active(ctx context.Context, id uuid.UUID) (bool, error) {
	row, err := b.repo.GetActive(ctx, id, b.now())
	if err != nil {
		return false, err
	}
	return row != nil, nil
}

// Storage implements SessionBackend
func (b *PostgresBackend) Storage(id uuid.UUID) session.Storage {
	return database.NewSessionStorage(b.repo, b.sealer, id)
}

// Touch implements SessionBackend
func (b *PostgresBackend) Touch(ctx context.Context, id uuid.UUID, expiresAt time.Time) error {
	return b.repo.Touch(ctx, id, b.now(), expiresAt)
}

// ListForUser implements SessionBackend
func (b *PostgresBackend) ListForUser(ctx context.Context, userID string) ([]SessionInfo, error) {
	rows, err := b.repo.ListForUser(ctx, userID, b.now())
	if err != nil {
		return nil, err
	}

	out := make([]SessionInfo, 0, len(rows))
	for _, row := range rows {
		out = append(out, SessionInfo{
			ID:          row.ID.String(),
			DeviceType:  row.DeviceType,
			DeviceLabel: row.DeviceLabel,
			IPAddress:   row.IPAddress.String,
			CreatedAt:   row.CreatedAt,
			LastSeenAt:  row.LastSeenAt,
		})
	}
	return out, nil
}

// Delete implements SessionBackend
func (b *PostgresBackend) Delete(ctx context.Context, id uuid.UUID) error {
	return b.repo.Delete(ctx, id)
}

// MemoryBackend keeps web sessions in process memory. It backs tests and
// throwaway local runs.
type MemoryBackend struct {
	mu       sync.Mutex
	now      func() time.Time
	sessions map[uuid.UUID]*memorySession
}

type memorySession struct {
	info      SessionInfo
	expiresAt time.Time
	storage   *session.MemoryStorage
}

// NewMemoryBackend creates an empty in-memory backend
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{now: time.Now, sessions: make(map[uuid.UUID]*memorySession)}
}

// Create implements SessionBackend
func (b *MemoryBackend) Create(_ context.Context, meta DeviceMeta, expiresAt time.Time) (uuid.UUID, error) {
	id := uuid.New()
	now := b.now()

	b.mu.Lock()
	defer b.mu.Unlock()
	b.sessions[id] = &memorySession{
		info: SessionInfo{
			ID:          id.String(),
			DeviceType:  meta.Device.DeviceType,
			DeviceLabel: meta.Device.Label(),
			IPAddress:   meta.IP,
			CreatedAt:   now,
			LastSeenAt:  now,
		},
		expiresAt: expiresAt,
		storage:   session.NewMemoryStorage(session.Snapshot{}),
	}
	return id, nil
}

// Active implements SessionBackend
func (b *MemoryBackend) Active(_ context.Context, id uuid.UUID) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.sessions[id]
	return ok && s.expiresAt.After(b.now()), nil
}

// Storage implements SessionBackend. Storage of an unknown id is detached
// and forgets everything written to it.
func (b *MemoryBackend) Storage(id uuid.UUID) session.Storage {
	b.mu.Lock()
	defer b.mu.Unlock()
	if s, ok := b.sessions[id]; ok {
		return s.storage
	}
	return session.NewMemoryStorage(session.Snapshot{})
}

// Touch implements SessionBackend
func (b *MemoryBackend) Touch(_ context.Context, id uuid.UUID, expiresAt time.Time) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.sessions[id]
	if !ok {
		return database.ErrSessionNotFound
	}
	s.info.LastSeenAt = b.now()
	s.expiresAt = expiresAt
	return nil
}

// ListForUser implements SessionBackend
func (b *MemoryBackend) ListForUser(ctx context.Context, userID string) ([]SessionInfo, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []SessionInfo
	now := b.now()
	for _, s := range b.sessions {
		if !s.expiresAt.After(now) {
			continue
		}
		snap, _ := s.storage.Load(ctx)
		if snap.Token != "" && snap.User != nil && snap.User.ID == userID {
			out = append(out, s.info)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastSeenAt.After(out[j].LastSeenAt) })
	return out, nil
}

// Delete implements SessionBackend
func (b *MemoryBackend) Delete(_ context.Context, id uuid.UUID) error {
	b.mu.Lock()
	delete(b.sessions, id)
	b.mu.Unlock()
	return nil
}

// Len returns the number of sessions held
func (b *MemoryBackend) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.sessions)
}

// Expire moves a session's expiry into the past
func (b *MemoryBackend) Expire(id uuid.UUID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if s, ok := b.sessions[id]; ok {
		s.expiresAt = b.now().Add(-time.Second)
	}
}
