// Package bolt provides a BBolt-backed key-value store for console session state.
package bolt

import (
	"context"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/99minutos/backoffice/internal/core/ports"
)

var sessionBucket = []byte("session")

// SessionStore implements ports.KeyValueStore on a single BBolt bucket.
type SessionStore struct {
	db *bbolt.DB
}

var _ ports.KeyValueStore = (*SessionStore)(nil)

// NewSessionStore returns a store backed by db, creating the bucket if needed.
func NewSessionStore(db *bbolt.DB) (*SessionStore, error) {
	err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(sessionBucket)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("creating session bucket: %w", err)
	}
	return &SessionStore{db: db}, nil
}

// Open opens (or creates) the database file at path. A second console on the
// same file fails after one second instead of blocking forever.
func Open(path string) (*SessionStore, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening bbolt db: %w", err)
	}
	s, err := NewSessionStore(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SessionStore) Close() error {
	return s.db.Close()
}

func (s *SessionStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	var out []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(sessionBucket).Get([]byte(key))
		if data != nil {
			// Bolt memory is only valid inside the transaction.
			out = append([]byte(nil), data...)
		}
		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("bolt get %s: %w", key, err)
	}
	return out, out != nil, nil
}

func (s *SessionStore) Put(_ context.Context, key string, value []byte) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(sessionBucket).Put([]byte(key), value)
	})
}

func (s *SessionStore) Delete(_ context.Context, key string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(sessionBucket).Delete([]byte(key))
	})
}

// Ping opens a read transaction; it fails once the database is closed.
func (s *SessionStore) Ping(context.Context) error {
	return s.db.View(func(*bbolt.Tx) error { return nil })
}
