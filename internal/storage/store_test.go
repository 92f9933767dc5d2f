package storage

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/PoluyanbIch/GoQuizBot/internal/config"
)

func exerciseStore(t *testing.T, s KVStore) {
	t.Helper()

	if _, ok, err := s.Get("missing"); err != nil || ok {
		t.Fatalf("Get(missing) = ok %v, err %v; want absent", ok, err)
	}

	if err := s.Set("a", "1"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set("a", "2"); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	if err := s.Set("b", `[{"id":1}]`); err != nil {
		t.Fatalf("Set: %v", err)
	}

	if v, ok, err := s.Get("a"); err != nil || !ok || v != "2" {
		t.Fatalf("Get(a) = %q, %v, %v; want 2", v, ok, err)
	}
	if v, _, _ := s.Get("b"); v != `[{"id":1}]` {
		t.Fatalf("Get(b) = %q", v)
	}

	if err := s.Delete("a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete("a"); err != nil {
		t.Fatalf("Delete absent key: %v", err)
	}
	if _, ok, _ := s.Get("a"); ok {
		t.Fatal("a still present after Delete")
	}
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	exerciseStore(t, NewFileStore(path))

	reopened := NewFileStore(path)
	if v, ok, err := reopened.Get("b"); err != nil || !ok || v != `[{"id":1}]` {
		t.Fatalf("reopened Get(b) = %q, %v, %v", v, ok, err)
	}
}

func TestFileStoreCorruptedFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewFileStore(path)
	if _, ok, err := s.Get("a"); err != nil || ok {
		t.Fatalf("Get on corrupted file = ok %v, err %v", ok, err)
	}
	if err := s.Set("a", "1"); err != nil {
		t.Fatalf("Set on corrupted file: %v", err)
	}
	if v, _, _ := s.Get("a"); v != "1" {
		t.Fatalf("Get(a) = %q after rewrite", v)
	}
}

func TestWithPrefix(t *testing.T) {
	inner := NewMemoryStore()
	a := WithPrefix(inner, "chat:1:")
	b := WithPrefix(inner, "chat:2:")

	if err := a.Set("k", "from-a"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := b.Get("k"); ok {
		t.Fatal("prefixed stores must not share keys")
	}
	if v, ok, _ := inner.Get("chat:1:k"); !ok || v != "from-a" {
		t.Fatalf("inner key = %q, %v", v, ok)
	}
	exerciseStore(t, b)
}

// fakeGist serves the subset of the gists API the store uses.
type fakeGist struct {
	mu      sync.Mutex
	content string
	patches int
}

func (f *fakeGist) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if r.Header.Get("Authorization") != "token secret" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	switch r.Method {
	case http.MethodGet:
		json.NewEncoder(w).Encode(map[string]interface{}{
			"files": map[string]interface{}{
				"quiz-state.json": map[string]string{"content": f.content},
			},
		})
	case http.MethodPatch:
		body, _ := io.ReadAll(r.Body)
		var payload struct {
			Files map[string]struct {
				Content string `json:"content"`
			} `json:"files"`
		}
		if err := json.Unmarshal(body, &payload); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.content = payload.Files["quiz-state.json"].Content
		f.patches++
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newTestGistStore(t *testing.T, fake *fakeGist) *GistStore {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	gs := NewGistStore("abc123", "secret")
	gs.baseURL = srv.URL
	gs.client = srv.Client()
	return gs
}

func TestGistStore(t *testing.T) {
	fake := &fakeGist{}
	exerciseStore(t, newTestGistStore(t, fake))

	if fake.patches == 0 {
		t.Fatal("expected PATCH requests to the gist")
	}
}

func TestGistStoreErrors(t *testing.T) {
	gs := newTestGistStore(t, &fakeGist{})
	gs.githubToken = "wrong"

	if _, _, err := gs.Get("a"); err == nil {
		t.Fatal("expected error for unauthorized gist")
	}
	if err := gs.Set("a", "1"); err == nil {
		t.Fatal("expected error for unauthorized gist")
	}
}

func TestNewSelectsBackend(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Config
		want interface{}
	}{
		{"memory", config.Config{}, &MemoryStore{}},
		{"file", config.Config{DataFile: filepath.Join(t.TempDir(), "s.json")}, &FileStore{}},
		{"gist", config.Config{GistID: "id", GithubToken: "tok", DataFile: "ignored.json"}, &GistStore{}},
		{"gist needs token", config.Config{GistID: "id"}, &MemoryStore{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			s, err := New(&cfg)
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			switch tt.want.(type) {
			case *MemoryStore:
				if _, ok := s.(*MemoryStore); !ok {
					t.Fatalf("got %T, want *MemoryStore", s)
				}
			case *FileStore:
				if _, ok := s.(*FileStore); !ok {
					t.Fatalf("got %T, want *FileStore", s)
				}
			case *GistStore:
				if _, ok := s.(*GistStore); !ok {
					t.Fatalf("got %T, want *GistStore", s)
				}
			}
		})
	}
}
