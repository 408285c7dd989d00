package passwords

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alexandercyber0x0/Idea-Hub-1/internal/config"
	"github.com/alexandercyber0x0/Idea-Hub-1/internal/models"
	"github.com/hashicorp/vault/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func sampleRecord() *models.PasswordRecord {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return &models.PasswordRecord{
		PasswordHash: "aabb:ccdd",
		CreatedAt:    now,
		LastAccessed: now.Add(time.Hour),
	}
}

// exerciseStore runs the lifecycle every backend must honour.
func exerciseStore(t *testing.T, s PasswordStore) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Load(ctx)
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Delete(ctx), "deleting a missing record must succeed")

	rec := sampleRecord()
	require.NoError(t, s.Save(ctx, rec))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, rec.PasswordHash, got.PasswordHash)
	assert.True(t, rec.CreatedAt.Equal(got.CreatedAt))
	assert.True(t, rec.LastAccessed.Equal(got.LastAccessed))

	rec.PasswordHash = "eeff:0011"
	require.NoError(t, s.Save(ctx, rec))
	got, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "eeff:0011", got.PasswordHash)

	require.NoError(t, s.Delete(ctx))
	_, err = s.Load(ctx)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	rec := sampleRecord()
	require.NoError(t, s.Save(ctx, rec))
	rec.PasswordHash = "mutated"

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "aabb:ccdd", got.PasswordHash)
}

func TestFileStore(t *testing.T) {
	exerciseStore(t, NewFileStore(filepath.Join(t.TempDir(), "nested", "security.json")))
}

func TestFileStore_Layout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "security.json")
	s := NewFileStore(path)
	require.NoError(t, s.Save(context.Background(), sampleRecord()))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	dirInfo, err := os.Stat(filepath.Dir(path))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o700), dirInfo.Mode().Perm())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Contains(t, raw, "passwordHash")
	assert.Contains(t, raw, "createdAt")
	assert.Contains(t, raw, "lastAccessed")
	assert.Equal(t, "2025-03-01T12:00:00Z", raw["createdAt"])

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestFileStore_CorruptRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "security.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := NewFileStore(path).Load(context.Background())
	require.ErrorIs(t, err, ErrCorrupt)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestFileStore_ConcurrentSaveLoad(t *testing.T) {
	ctx := context.Background()
	s := NewFileStore(filepath.Join(t.TempDir(), "security.json"))
	require.NoError(t, s.Save(ctx, sampleRecord()))

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				_ = s.Save(ctx, sampleRecord())
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				rec, err := s.Load(ctx)
				if err != nil {
					t.Errorf("Load observed a torn record: %v", err)
					return
				}
				if rec.PasswordHash != "aabb:ccdd" {
					t.Errorf("unexpected hash %q", rec.PasswordHash)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestNewFileStore_DefaultPath(t *testing.T) {
	assert.Equal(t, DefaultFilePath, NewFileStore("").Path())
}

func TestBoltStore(t *testing.T) {
	s, err := OpenBoltStore(filepath.Join(t.TempDir(), "security.db"))
	require.NoError(t, err)
	defer s.Close()
	exerciseStore(t, s)
}

func TestBoltStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "security.db")
	s, err := OpenBoltStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Save(context.Background(), sampleRecord()))
	require.NoError(t, s.Close())

	s, err = OpenBoltStore(path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "aabb:ccdd", got.PasswordHash)
}

func TestKeyringStore(t *testing.T) {
	keyring.MockInit()
	exerciseStore(t, NewKeyringStore(""))
}

// fakeVault serves the subset of the KV v2 HTTP API the store uses.
func fakeVault(t *testing.T) *httptest.Server {
	t.Helper()
	var (
		mu     sync.Mutex
		record string
	)
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()

		switch {
		case r.URL.Path == "/v1/secret/data/idea-hub/security" && r.Method == http.MethodGet:
			if record == "" {
				w.WriteHeader(http.StatusNotFound)
				_, _ = io.WriteString(w, `{"errors":[]}`)
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"data": map[string]any{
					"data":     map[string]any{"record": record},
					"metadata": map[string]any{"version": 1},
				},
			})
		case r.URL.Path == "/v1/secret/data/idea-hub/security" && (r.Method == http.MethodPut || r.Method == http.MethodPost):
			var body struct {
				Data map[string]string `json:"data"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			record = body.Data["record"]
			_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{"version": 1}})
		case r.URL.Path == "/v1/secret/metadata/idea-hub/security" && r.Method == http.MethodDelete:
			record = ""
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Errorf("unexpected vault request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestVaultStore(t *testing.T) {
	srv := fakeVault(t)
	defer srv.Close()

	s, err := NewVaultStore(config.Store{VaultAddress: srv.URL, VaultToken: "test-token"})
	require.NoError(t, err)
	exerciseStore(t, s)
}

func TestVaultStore_Unavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"errors":["boom"]}`)
	}))
	defer srv.Close()

	vc := api.DefaultConfig()
	vc.Address = srv.URL
	vc.MaxRetries = 0
	client, err := api.NewClient(vc)
	require.NoError(t, err)

	s := newVaultStore(client, "", "")
	_, err = s.Load(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.True(t, strings.Contains(err.Error(), "Vault"))
}

func TestVaultStore_MalformedRecord(t *testing.T) {
	tests := []struct {
		name string
		data map[string]any
	}{
		{"record not a string", map[string]any{"record": 123}},
		{"record missing", map[string]any{"other": "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewEncoder(w).Encode(map[string]any{
					"data": map[string]any{
						"data":     tt.data,
						"metadata": map[string]any{"version": 1},
					},
				})
			}))
			defer srv.Close()

			s, err := NewVaultStore(config.Store{VaultAddress: srv.URL, VaultToken: "test-token"})
			require.NoError(t, err)

			_, err = s.Load(context.Background())
			require.ErrorIs(t, err, ErrCorrupt)
			assert.NotErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(config.Store{Path: filepath.Join(dir, "a.json")})
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)

	s, err = Open(config.Store{Backend: config.StoreMemory})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = Open(config.Store{Backend: config.StoreBolt, Path: filepath.Join(dir, "b.db")})
	require.NoError(t, err)
	assert.IsType(t, &BoltStore{}, s)
	require.NoError(t, s.(*BoltStore).Close())

	s, err = Open(config.Store{Backend: config.StoreKeyring})
	require.NoError(t, err)
	assert.IsType(t, &KeyringStore{}, s)

	_, err = Open(config.Store{Backend: "floppy"})
	assert.Error(t, err)
}
