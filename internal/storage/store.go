package storage

import (
	"log"

	"github.com/PoluyanbIch/GoQuizBot/internal/config"
)

// KVStore is an opaque string key-value store. A missing key is reported
// with ok == false, never as an error.
type KVStore interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Delete(key string) error
}

// New picks a backend from the configuration: Postgres, Gist, file, memory.
func New(cfg *config.Config) (KVStore, error) {
	switch {
	case cfg.DatabaseURL != "":
		log.Println("Using Postgres store")
		ps, err := NewPostgresStore(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return ps, nil
	case cfg.GistID != "" && cfg.GithubToken != "":
		log.Println("Using Gist store")
		return NewGistStore(cfg.GistID, cfg.GithubToken), nil
	case cfg.DataFile != "":
		log.Printf("Using file store at %s", cfg.DataFile)
		return NewFileStore(cfg.DataFile), nil
	}

	// Fallback - in-memory (data is lost on restart)
	log.Println("Using in-memory store, progress will not survive a restart")
	return NewMemoryStore(), nil
}

type prefixedStore struct {
	inner  KVStore
	prefix string
}

// WithPrefix scopes every key of inner under prefix.
func WithPrefix(inner KVStore, prefix string) KVStore {
	return &prefixedStore{inner: inner, prefix: prefix}
}

func (p *prefixedStore) Get(key string) (string, bool, error) {
	return p.inner.Get(p.prefix + key)
}

func (p *prefixedStore) Set(key, value string) error {
	return p.inner.Set(p.prefix+key, value)
}

func (p *prefixedStore) Delete(key string) error {
	return p.inner.Delete(p.prefix + key)
}
