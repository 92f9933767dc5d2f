package service

import (
	"fmt"
	"sync"

	"github.com/PoluyanbIch/GoQuizBot/internal/storage"
)

// Profiles hands out the per-chat ledger and progress stores. Every chat is
// an isolated user whose keys live under "chat:<id>:". Ledgers are cached so
// all callers for one chat share the same mutex.
type Profiles struct {
	store   storage.KVStore
	mu      sync.Mutex
	ledgers map[int64]*KVLedger
}

func NewProfiles(store storage.KVStore) *Profiles {
	return &Profiles{
		store:   store,
		ledgers: make(map[int64]*KVLedger),
	}
}

func (p *Profiles) scoped(chatID int64) storage.KVStore {
	return storage.WithPrefix(p.store, fmt.Sprintf("chat:%d:", chatID))
}

func (p *Profiles) Ledger(chatID int64) *KVLedger {
	p.mu.Lock()
	defer p.mu.Unlock()

	l, ok := p.ledgers[chatID]
	if !ok {
		l = NewLedger(p.scoped(chatID))
		p.ledgers[chatID] = l
	}
	return l
}

func (p *Profiles) Progress(chatID int64) *KVProgress {
	return NewProgress(p.scoped(chatID))
}
