package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/PoluyanbIch/GoQuizBot/internal/storage"
)

const WrongQuestionsKey = "wrong-questions"

type WrongAnswerEntry struct {
	ID         int `json:"id"`
	WrongTimes int `json:"wrongTimes"`
}

type WrongAnswerLedger interface {
	Record(questionID int) error
	Remove(questionID int) error
	Clear() error
	List() []WrongAnswerEntry
	WrongTimes(questionID int) int
}

// KVLedger persists the whole ledger as one JSON snapshot. Every mutation is
// a read-modify-write of that snapshot under mu.
type KVLedger struct {
	store storage.KVStore
	key   string
	mu    sync.Mutex
}

func NewLedger(store storage.KVStore) *KVLedger {
	return &KVLedger{store: store, key: WrongQuestionsKey}
}

func (l *KVLedger) load() ([]WrongAnswerEntry, error) {
	raw, ok, err := l.store.Get(l.key)
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger: %w", err)
	}
	if !ok || raw == "" {
		return nil, nil
	}

	entries, err := decodeLedger([]byte(raw))
	if err != nil {
		log.Printf("Warning: wrong-answer ledger is malformed, treating it as empty: %v", err)
		return nil, nil
	}
	return entries, nil
}

// decodeLedger accepts [{"id":1,"wrongTimes":2}] as well as a bare list of
// ids like [1,5,1], where repeats count as extra wrong answers.
func decodeLedger(data []byte) ([]WrongAnswerEntry, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}

	var entries []WrongAnswerEntry
	index := make(map[int]int)

	for _, item := range items {
		item = bytes.TrimSpace(item)

		var e WrongAnswerEntry
		if len(item) > 0 && item[0] == '{' {
			if err := json.Unmarshal(item, &e); err != nil {
				log.Printf("Warning: skipping malformed ledger entry %s: %v", item, err)
				continue
			}
		} else {
			if err := json.Unmarshal(item, &e.ID); err != nil {
				log.Printf("Warning: skipping malformed ledger entry %s: %v", item, err)
				continue
			}
		}

		if e.ID <= 0 {
			continue
		}
		if e.WrongTimes < 1 {
			e.WrongTimes = 1
		}

		if i, ok := index[e.ID]; ok {
			entries[i].WrongTimes += e.WrongTimes
			continue
		}
		index[e.ID] = len(entries)
		entries = append(entries, e)
	}

	return entries, nil
}

func (l *KVLedger) save(entries []WrongAnswerEntry) error {
	if entries == nil {
		entries = []WrongAnswerEntry{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	if err := l.store.Set(l.key, string(data)); err != nil {
		return fmt.Errorf("failed to save ledger: %w", err)
	}
	return nil
}

func (l *KVLedger) Record(questionID int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries, err := l.load()
	if err != nil {
		return err
	}

	found := false
	for i := range entries {
		if entries[i].ID == questionID {
			entries[i].WrongTimes++
			found = true
			break
		}
	}
	if !found {
		entries = append(entries, WrongAnswerEntry{ID: questionID, WrongTimes: 1})
	}

	return l.save(entries)
}

func (l *KVLedger) Remove(questionID int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries, err := l.load()
	if err != nil {
		return err
	}

	kept := entries[:0]
	for _, e := range entries {
		if e.ID != questionID {
			kept = append(kept, e)
		}
	}
	if len(kept) == len(entries) {
		return nil
	}

	return l.save(kept)
}

func (l *KVLedger) Clear() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.store.Delete(l.key); err != nil {
		return fmt.Errorf("failed to clear ledger: %w", err)
	}
	return nil
}

func (l *KVLedger) List() []WrongAnswerEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries, err := l.load()
	if err != nil {
		log.Printf("Error loading ledger: %v", err)
		return nil
	}
	return entries
}

func (l *KVLedger) WrongTimes(questionID int) int {
	for _, e := range l.List() {
		if e.ID == questionID {
			return e.WrongTimes
		}
	}
	return 0
}
