// Package badgerstore is a persist.Storage backed by an embedded Badger database.
package badgerstore

import (
	"github.com/dgraph-io/badger/v4"
	"github.com/jrsteele09/bell-client/persist"
	"github.com/pkg/errors"
)

const keyPrefix = "session/"

var _ persist.BatchStorage = (*Storage)(nil)

// Storage keeps session values in Badger under the "session/" prefix.
type Storage struct {
	db *badger.DB
}

// Open opens (or creates) the database in folder.
func Open(folder string) (*Storage, error) {
	return open(badger.DefaultOptions(folder))
}

// OpenInMemory opens a database that lives only as long as the process.
func OpenInMemory() (*Storage, error) {
	return open(badger.DefaultOptions("").WithInMemory(true))
}

func open(opts badger.Options) (*Storage, error) {
	db, err := badger.Open(opts.WithLogger(nil))
	if err != nil {
		return nil, errors.Wrap(err, "opening badger")
	}
	return &Storage{db: db}, nil
}

func (s *Storage) Get(key string) (string, bool, error) {
	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrapf(err, "reading %s", key)
	}
	return string(value), true, nil
}

func (s *Storage) Set(key, value string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPrefix+key), []byte(value))
	})
	return errors.Wrapf(err, "writing %s", key)
}

func (s *Storage) Delete(key string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(keyPrefix + key))
	})
	return errors.Wrapf(err, "deleting %s", key)
}

// Apply writes set and removes remove in one transaction.
func (s *Storage) Apply(set map[string]string, remove []string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		for _, key := range remove {
			if err := txn.Delete([]byte(keyPrefix + key)); err != nil {
				return err
			}
		}
		for key, value := range set {
			if err := txn.Set([]byte(keyPrefix+key), []byte(value)); err != nil {
				return err
			}
		}
		return nil
	})
	return errors.Wrap(err, "applying batch")
}

// Close flushes and closes the database.
func (s *Storage) Close() error {
	return s.db.Close()
}
