// Package bbolt provides a BBolt-backed token store.
package bbolt

import (
	"fmt"

	"github.com/salesaice/aice-go/storage"
	"go.etcd.io/bbolt"
)

var (
	bucketName = []byte("auth")
	tokenKey   = []byte("access_token")
)

// Store implements storage.TokenStore backed by a BBolt database.
type Store struct {
	db *bbolt.DB
}

var _ storage.TokenStore = (*Store)(nil)

// NewStore returns a TokenStore backed by the given BBolt database.
func NewStore(db *bbolt.DB) *Store {
	return &Store{db: db}
}

// NewStoreFromFile opens a BBolt database at the given path and returns a new Store.
func NewStoreFromFile(path string, options *bbolt.Options) (*Store, error) {
	db, err := bbolt.Open(path, 0600, options)
	if err != nil {
		return nil, fmt.Errorf("opening bbolt db: %w", err)
	}
	return NewStore(db), nil
}

// Close closes the underlying BBolt database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Load() (string, error) {
	var token string
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketName)
		if b == nil {
			return storage.ErrNotFound
		}
		data := b.Get(tokenKey)
		if data == nil {
			return storage.ErrNotFound
		}
		token = string(data)
		return nil
	})
	if err != nil {
		return "", err
	}
	return token, nil
}

func (s *Store) Save(token string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucketName)
		if err != nil {
			return err
		}
		return b.Put(tokenKey, []byte(token))
	})
}

func (s *Store) Delete() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketName)
		if b == nil {
			return nil
		}
		return b.Delete(tokenKey)
	})
}
