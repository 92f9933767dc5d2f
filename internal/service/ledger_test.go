package service

import (
	"errors"
	"reflect"
	"testing"

	"github.com/PoluyanbIch/GoQuizBot/internal/storage"
)

// failingStore fails every call once armed.
type failingStore struct {
	*storage.MemoryStore
	failGet, failSet bool
}

var errStoreDown = errors.New("store down")

func (f *failingStore) Get(key string) (string, bool, error) {
	if f.failGet {
		return "", false, errStoreDown
	}
	return f.MemoryStore.Get(key)
}

func (f *failingStore) Set(key, value string) error {
	if f.failSet {
		return errStoreDown
	}
	return f.MemoryStore.Set(key, value)
}

func TestLedgerRecordAndList(t *testing.T) {
	ledger := NewLedger(storage.NewMemoryStore())

	if got := ledger.List(); len(got) != 0 {
		t.Fatalf("new ledger List() = %v", got)
	}

	for _, id := range []int{3, 1, 3} {
		if err := ledger.Record(id); err != nil {
			t.Fatalf("Record(%d): %v", id, err)
		}
	}

	want := []WrongAnswerEntry{{ID: 3, WrongTimes: 2}, {ID: 1, WrongTimes: 1}}
	if got := ledger.List(); !reflect.DeepEqual(got, want) {
		t.Fatalf("List() = %v, want %v", got, want)
	}
	if got := ledger.WrongTimes(3); got != 2 {
		t.Errorf("WrongTimes(3) = %d, want 2", got)
	}
	if got := ledger.WrongTimes(9); got != 0 {
		t.Errorf("WrongTimes(9) = %d, want 0", got)
	}
}

func TestLedgerPersistsAcrossInstances(t *testing.T) {
	store := storage.NewMemoryStore()

	if err := NewLedger(store).Record(5); err != nil {
		t.Fatal(err)
	}
	if err := NewLedger(store).Record(5); err != nil {
		t.Fatal(err)
	}

	if got := NewLedger(store).WrongTimes(5); got != 2 {
		t.Fatalf("WrongTimes(5) = %d across sessions, want 2", got)
	}

	raw, _, _ := store.Get(WrongQuestionsKey)
	if raw != `[{"id":5,"wrongTimes":2}]` {
		t.Fatalf("snapshot = %s", raw)
	}
}

func TestLedgerRemoveAndClear(t *testing.T) {
	ledger := NewLedger(storage.NewMemoryStore())
	for _, id := range []int{1, 2, 2} {
		ledger.Record(id)
	}

	if err := ledger.Remove(2); err != nil {
		t.Fatal(err)
	}
	if err := ledger.Remove(42); err != nil {
		t.Fatalf("Remove of absent id: %v", err)
	}
	if got := ledger.List(); !reflect.DeepEqual(got, []WrongAnswerEntry{{ID: 1, WrongTimes: 1}}) {
		t.Fatalf("List() after Remove = %v", got)
	}

	ledger.Record(2)
	if got := ledger.WrongTimes(2); got != 1 {
		t.Fatalf("WrongTimes after remove+record = %d, want 1", got)
	}

	if err := ledger.Clear(); err != nil {
		t.Fatal(err)
	}
	if got := ledger.List(); len(got) != 0 {
		t.Fatalf("List() after Clear = %v", got)
	}
}

func TestLedgerDecoding(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []WrongAnswerEntry
	}{
		{"garbage", "not json", nil},
		{"object instead of list", `{"id":1}`, nil},
		{"bare ids", `[2, 5, 2]`, []WrongAnswerEntry{{ID: 2, WrongTimes: 2}, {ID: 5, WrongTimes: 1}}},
		{"full legacy objects", `[{"id":4,"text":"t","options":["a"],"correctAnswer":"A","wrongTimes":3}]`, []WrongAnswerEntry{{ID: 4, WrongTimes: 3}}},
		{"zero count normalized", `[{"id":4,"wrongTimes":0}]`, []WrongAnswerEntry{{ID: 4, WrongTimes: 1}}},
		{"bad items skipped", `[{"id":"x"}, "y", -1, 6]`, []WrongAnswerEntry{{ID: 6, WrongTimes: 1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := storage.NewMemoryStore()
			store.Set(WrongQuestionsKey, tt.raw)

			got := NewLedger(store).List()
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("List() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLedgerMalformedSnapshotRecoversOnWrite(t *testing.T) {
	store := storage.NewMemoryStore()
	store.Set(WrongQuestionsKey, "{{{")

	ledger := NewLedger(store)
	if err := ledger.Record(1); err != nil {
		t.Fatal(err)
	}
	if got := ledger.List(); !reflect.DeepEqual(got, []WrongAnswerEntry{{ID: 1, WrongTimes: 1}}) {
		t.Fatalf("List() = %v", got)
	}
}

func TestLedgerStoreErrors(t *testing.T) {
	store := &failingStore{MemoryStore: storage.NewMemoryStore()}
	ledger := NewLedger(store)
	ledger.Record(1)

	store.failSet = true
	if err := ledger.Record(2); !errors.Is(err, errStoreDown) {
		t.Fatalf("Record error = %v, want errStoreDown", err)
	}

	store.failSet = false
	store.failGet = true
	if err := ledger.Record(3); !errors.Is(err, errStoreDown) {
		t.Fatalf("Record error = %v, want errStoreDown", err)
	}
	if got := ledger.List(); got != nil {
		t.Fatalf("List() with failing store = %v, want empty", got)
	}

	store.failGet = false
	if got := ledger.List(); !reflect.DeepEqual(got, []WrongAnswerEntry{{ID: 1, WrongTimes: 1}}) {
		t.Fatalf("read error must not clobber the snapshot, got %v", got)
	}
}

func TestProfilesIsolateChats(t *testing.T) {
	profiles := NewProfiles(storage.NewMemoryStore())

	profiles.Ledger(1).Record(7)
	if got := profiles.Ledger(2).List(); len(got) != 0 {
		t.Fatalf("chat 2 sees chat 1 ledger: %v", got)
	}
	if profiles.Ledger(1) != profiles.Ledger(1) {
		t.Fatal("Ledger must be cached per chat")
	}

	profiles.Progress(1).Save(ModeSequential, 4)
	if got := profiles.Progress(2).Load(ModeSequential); got != 0 {
		t.Fatalf("chat 2 progress = %d, want 0", got)
	}
	if got := profiles.Progress(1).Load(ModeSequential); got != 4 {
		t.Fatalf("chat 1 progress = %d, want 4", got)
	}
}

func TestProgressStore(t *testing.T) {
	store := storage.NewMemoryStore()
	progress := NewProgress(store)

	if got := progress.Load(ModeRandom); got != 0 {
		t.Fatalf("empty Load = %d", got)
	}

	if err := progress.Save(ModeReview, 3); err != nil {
		t.Fatal(err)
	}
	if raw, _, _ := store.Get(ReviewProgressKey); raw != "3" {
		t.Fatalf("stored %q under %s", raw, ReviewProgressKey)
	}
	if got := progress.Load(ModeReview); got != 3 {
		t.Fatalf("Load = %d, want 3", got)
	}

	for _, raw := range []string{"abc", "-2", ""} {
		store.Set(SequentialProgressKey, raw)
		if got := progress.Load(ModeSequential); got != 0 {
			t.Errorf("Load with %q = %d, want 0", raw, got)
		}
	}
}
