package service

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/PoluyanbIch/GoQuizBot/internal/storage"
)

const (
	SequentialProgressKey = "sequential-progress"
	RandomProgressKey     = "random-progress"
	ReviewProgressKey     = "reviewProgress"
)

// ProgressStore remembers the last position per mode. Positions are advisory:
// Load never fails, it returns 0 when nothing usable is stored.
type ProgressStore interface {
	Load(mode Mode) int
	Save(mode Mode, position int) error
}

type KVProgress struct {
	store storage.KVStore
}

func NewProgress(store storage.KVStore) *KVProgress {
	return &KVProgress{store: store}
}

func progressKey(mode Mode) string {
	switch mode {
	case ModeSequential:
		return SequentialProgressKey
	case ModeRandom:
		return RandomProgressKey
	case ModeReview:
		return ReviewProgressKey
	}
	return string(mode) + "-progress"
}

func (p *KVProgress) Load(mode Mode) int {
	key := progressKey(mode)

	raw, ok, err := p.store.Get(key)
	if err != nil {
		log.Printf("Error loading %s: %v", key, err)
		return 0
	}
	if !ok {
		return 0
	}

	pos, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || pos < 0 {
		log.Printf("Warning: ignoring malformed %s value %q", key, raw)
		return 0
	}
	return pos
}

func (p *KVProgress) Save(mode Mode, position int) error {
	key := progressKey(mode)
	if err := p.store.Set(key, strconv.Itoa(position)); err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}
