// Package persist keeps the session token and profile in durable local
// storage so a restarted client resumes the session.
package persist

import (
	"sync"
)

// Storage is a durable string key/value store.
type Storage interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
}

// BatchStorage applies several writes as one change, so a reader never
// sees half of them.
type BatchStorage interface {
	Storage
	Apply(set map[string]string, remove []string) error
}

var _ BatchStorage = (*MemoryStorage)(nil)

// MemoryStorage keeps values in process memory only.
type MemoryStorage struct {
	values map[string]string
	lock   sync.RWMutex
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		values: make(map[string]string),
	}
}

func (m *MemoryStorage) Get(key string) (string, bool, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryStorage) Set(key, value string) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.values[key] = value
	return nil
}

func (m *MemoryStorage) Delete(key string) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	delete(m.values, key)
	return nil
}

func (m *MemoryStorage) Apply(set map[string]string, remove []string) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	for _, key := range remove {
		delete(m.values, key)
	}
	for key, value := range set {
		m.values[key] = value
	}
	return nil
}
