package storage

import "sync"

type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]string)}
}

func (ms *MemoryStore) Get(key string) (string, bool, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	v, ok := ms.entries[key]
	return v, ok, nil
}

func (ms *MemoryStore) Set(key, value string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.entries[key] = value
	return nil
}

func (ms *MemoryStore) Delete(key string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	delete(ms.entries, key)
	return nil
}
