// Package localstore is the terminal client's durable key/value storage,
// an SQLite file under the state directory.
package localstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/session"
)

// FileName is the database file inside the state directory
const FileName = "homerent.db"

// Entry is one stored value
type Entry struct {
	Key       string `gorm:"column:entry_key;primaryKey;size:191"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

// TableName pins the table name
func (Entry) TableName() string { return "kv_entries" }

// Store is a key/value store on SQLite
type Store struct {
	db *gorm.DB
}

// Open opens (creating if needed) the store in dir
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create state dir: %w", err)
	}
	return OpenDSN(filepath.Join(dir, FileName))
}

// OpenDSN opens the store at an SQLite DSN such as ":memory:"
func OpenDSN(dsn string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate local store: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying connection
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Get returns the value for key and whether it exists
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	var e Entry
	err := s.db.WithContext(ctx).First(&e, "entry_key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return e.Value, true, nil
}

// Set writes value under key
func (s *Store) Set(ctx context.Context, key, value string) error {
	e := Entry{Key: key, Value: value, UpdatedAt: time.Now()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "entry_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&e).Error
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Missing keys are not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.db.WithContext(ctx).Delete(&Entry{}, "entry_key = ?", key).Error; err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// Keys for values the client keeps
const (
	KeyToken = "token"
	KeyUser  = "user"
)

// SessionStorage keeps the signed-in session in the store. It implements
// session.Storage.
type SessionStorage struct {
	store *Store
}

// NewSessionStorage wraps store as session storage
func NewSessionStorage(store *Store) *SessionStorage {
	return &SessionStorage{store: store}
}

var _ session.Storage = (*SessionStorage)(nil)

// Load restores the token and user
func (s *SessionStorage) Load(ctx context.Context) (session.Snapshot, error) {
	var snap session.Snapshot

	token, ok, err := s.store.Get(ctx, KeyToken)
	if err != nil || !ok {
		return snap, err
	}
	snap.Token = token

	raw, ok, err := s.store.Get(ctx, KeyUser)
	if err != nil {
		return session.Snapshot{}, err
	}
	if ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &snap.User); err != nil {
			// a corrupt cached user is dropped; FetchMe restores it
			snap.User = nil
		}
	}
	return snap, nil
}

// Save writes the token and user in one transaction
func (s *SessionStorage) Save(ctx context.Context, snap session.Snapshot) error {
	userJSON, err := json.Marshal(snap.User)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}
	return s.store.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txStore := &Store{db: tx}
		if err := txStore.Set(ctx, KeyToken, snap.Token); err != nil {
			return err
		}
		return txStore.Set(ctx, KeyUser, string(userJSON))
	})
}

// Clear removes the token and user
func (s *SessionStorage) Clear(ctx context.Context) error {
	return s.store.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Delete(&Entry{}, "entry_key IN ?", []string{KeyToken, KeyUser}).Error
	})
}
