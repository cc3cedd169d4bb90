package session

import (
	"context"
	"sync"

	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/models"
)

// Snapshot is what the store persists
type Snapshot struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Empty reports whether there is nothing to restore
func (s Snapshot) Empty() bool {
	return s.Token == "" && s.User == nil
}

// Storage is the durable backing of a session. Load returns an empty
// snapshot when nothing was saved.
type Storage interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, snap Snapshot) error
	Clear(ctx context.Context) error
}

// MemoryStorage keeps the snapshot in memory
type MemoryStorage struct {
	mu    sync.Mutex
	snap  Snapshot
	saves int
}

// NewMemoryStorage creates storage preloaded with snap
func NewMemoryStorage(snap Snapshot) *MemoryStorage {
	return &MemoryStorage{snap: snap}
}

// Load implements Storage
func (m *MemoryStorage) Load(context.Context) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap, nil
}

// Save implements Storage
func (m *MemoryStorage) Save(_ context.Context, snap Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = snap
	m.saves++
	return nil
}

// Clear implements Storage
func (m *MemoryStorage) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = Snapshot{}
	m.saves++
	return nil
}

// Writes returns how many times the snapshot was written or cleared
func (m *MemoryStorage) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
