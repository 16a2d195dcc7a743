// Package memory provides a thread-safe in-memory implementation of
// storage.TokenStore. Suitable for testing and single-process use cases.
package memory

import (
	"sync"

	"github.com/salesaice/aice-go/storage"
)

// Store is a thread-safe in-memory implementation of storage.TokenStore.
type Store struct {
	mu    sync.RWMutex
	token string
	set   bool
}

var _ storage.TokenStore = (*Store)(nil)

// NewStore creates a new empty in-memory Store.
func NewStore() *Store {
	return &Store{}
}

func (s *Store) Load() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.set {
		return "", storage.ErrNotFound
	}
	return s.token, nil
}

func (s *Store) Save(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.set = true
	return nil
}

func (s *Store) Delete() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.set = false
	return nil
}
