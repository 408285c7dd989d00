package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alexandercyber0x0/Idea-Hub-1/internal/crypto"
	"github.com/alexandercyber0x0/Idea-Hub-1/internal/middleware"
	"github.com/alexandercyber0x0/Idea-Hub-1/internal/models"
	handler "github.com/alexandercyber0x0/Idea-Hub-1/internal/server/handler/http"
	"github.com/alexandercyber0x0/Idea-Hub-1/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// gateAuth is an Authenticator with a fixed password.
type gateAuth struct {
	password string
	setup    bool
}

func (a gateAuth) IsSetup(context.Context) bool { return a.setup }
func (a gateAuth) Verify(_ context.Context, pw string) bool { return pw == a.password }
func (a gateAuth) Touch(context.Context) {}
func (a gateAuth) NewSession(password string) *crypto.Session { return crypto.NewSession(password, nil) }

type fakeIdeas struct {
	list   func() ([]models.Idea, error)
	get    func(id string) (*models.Idea, error)
	create func(in service.NewIdea) (*models.Idea, error)
	update func(id string, p service.IdeaPatch) (*models.Idea, error)
	delete func(id string) error

	sessions []*crypto.Session
}

func (f *fakeIdeas) List(_ context.Context, s *crypto.Session) ([]models.Idea, error) {
	f.sessions = append(f.sessions, s)
	return f.list()
}
func (f *fakeIdeas) Get(_ context.Context, s *crypto.Session, id string) (*models.Idea, error) {
	f.sessions = append(f.sessions, s)
	return f.get(id)
}
func (f *fakeIdeas) Create(_ context.Context, s *crypto.Session, in service.NewIdea) (*models.Idea, error) {
	f.sessions = append(f.sessions, s)
	return f.create(in)
}
func (f *fakeIdeas) Update(_ context.Context, s *crypto.Session, id string, p service.IdeaPatch) (*models.Idea, error) {
	f.sessions = append(f.sessions, s)
	return f.update(id, p)
}
func (f *fakeIdeas) Delete(_ context.Context, id string) error { return f.delete(id) }

type fakeTools struct {
	get    func(id string) (*models.AITool, error)
	create func(in service.NewTool) (*models.AITool, error)
	update func(id string, p service.ToolPatch) (*models.AITool, error)
	delete func(id string) error
}

func (f *fakeTools) List(context.Context, *crypto.Session) ([]models.AITool, error) {
	return []models.AITool{}, nil
}
func (f *fakeTools) Get(_ context.Context, _ *crypto.Session, id string) (*models.AITool, error) {
	return f.get(id)
}
func (f *fakeTools) Create(_ context.Context, _ *crypto.Session, in service.NewTool) (*models.AITool, error) {
	return f.create(in)
}
func (f *fakeTools) Update(_ context.Context, _ *crypto.Session, id string, p service.ToolPatch) (*models.AITool, error) {
	return f.update(id, p)
}
func (f *fakeTools) Delete(_ context.Context, id string) error { return f.delete(id) }

type fakeAssist struct {
	transcribe func(chunks []string) (*service.Transcription, error)
	summarize  func(transcript, title string) (string, error)
}

func (f *fakeAssist) Transcribe(_ context.Context, chunks []string) (*service.Transcription, error) {
	return f.transcribe(chunks)
}
func (f *fakeAssist) Summarize(_ context.Context, transcript, title string) (string, error) {
	return f.summarize(transcript, title)
}

type fakeBackup struct {
	export func(password string) (*models.Backup, error)
	imp    func(password string, b *models.Backup) (*models.ImportResults, error)
}

func (f *fakeBackup) Export(_ context.Context, pw string) (*models.Backup, error) { return f.export(pw) }
func (f *fakeBackup) Import(_ context.Context, pw string, b *models.Backup) (*models.ImportResults, error) {
	return f.imp(pw, b)
}

type testServer struct {
	ideas   *fakeIdeas
	tools   *fakeTools
	assist  *fakeAssist
	backup  *fakeBackup
	limiter *middleware.RateLimiter
	router  http.Handler
}

func newTestServer(auth gateAuth) *testServer {
	ts := &testServer{
		ideas:   &fakeIdeas{},
		tools:   &fakeTools{},
		assist:  &fakeAssist{},
		backup:  &fakeBackup{},
		limiter: middleware.NewRateLimiter(),
	}
	log := zap.NewNop()
	ts.router = handler.NewRouter(
		&handler.AuthHandler{AuthService: &fakeAuthService{password: auth.password}, Limiter: ts.limiter, Log: log},
		&handler.IdeaHandler{IdeaService: ts.ideas, Log: log},
		&handler.ToolHandler{ToolService: ts.tools, Log: log},
		&handler.AssistHandler{AssistService: ts.assist, Log: log},
		&handler.BackupHandler{BackupService: ts.backup, Limiter: ts.limiter, Log: log},
		middleware.Gate(auth, ts.limiter, log),
		log,
	)
	return ts
}

func (ts *testServer) do(method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m), "body: %s", w.Body.String())
	return m
}

func TestRouter_GateAttachesSession(t *testing.T) {
	ts := newTestServer(gateAuth{password: "secret1", setup: true})
	ts.ideas.list = func() ([]models.Idea, error) { return []models.Idea{{ID: "i1", Title: "t"}}, nil }

	w := ts.do(http.MethodGet, "/api/ideas", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(http.MethodGet, "/api/ideas", "", map[string]string{middleware.HeaderEncryptionKey: "secret1"})
	require.Equal(t, http.StatusOK, w.Code)

	require.Len(t, ts.ideas.sessions, 2)
	assert.Nil(t, ts.ideas.sessions[0], "no header means no session")
	require.NotNil(t, ts.ideas.sessions[1])
	sealed, err := crypto.Seal("note", "secret1")
	require.NoError(t, err)
	got, err := ts.ideas.sessions[1].Open(context.Background(), sealed)
	require.NoError(t, err)
	assert.Equal(t, "note", got)

	var ideas []models.Idea
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ideas))
	assert.Equal(t, "i1", ideas[0].ID)
}

func TestRouter_GateRejectsAndBlocks(t *testing.T) {
	ts := newTestServer(gateAuth{password: "secret1", setup: true})
	ts.ideas.list = func() ([]models.Idea, error) { return nil, nil }
	wrong := map[string]string{middleware.HeaderEncryptionKey: "nope"}

	for i := 0; i < middleware.MaxFailures; i++ {
		w := ts.do(http.MethodGet, "/api/ideas", "", wrong)
		require.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Invalid password", decodeBody(t, w)["error"])
	}
	w := ts.do(http.MethodGet, "/api/ai-tools", "", map[string]string{middleware.HeaderEncryptionKey: "secret1"})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Empty(t, ts.ideas.sessions)
}

func TestRouter_GateBeforeSetup(t *testing.T) {
	ts := newTestServer(gateAuth{password: "secret1"})
	ts.ideas.list = func() ([]models.Idea, error) { return []models.Idea{}, nil }

	w := ts.do(http.MethodGet, "/api/ideas", "", map[string]string{middleware.HeaderEncryptionKey: "anything"})
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, ts.ideas.sessions, 1)
	assert.Nil(t, ts.ideas.sessions[0])
}

func TestRouter_Ideas(t *testing.T) {
	ts := newTestServer(gateAuth{})
	ts.ideas.get = func(id string) (*models.Idea, error) {
		if id == "i1" {
			return &models.Idea{ID: "i1", Title: "found"}, nil
		}
		return nil, service.ErrNotFound
	}
	ts.ideas.create = func(in service.NewIdea) (*models.Idea, error) {
		if strings.TrimSpace(in.Title) == "" {
			return nil, service.ErrTitleRequired
		}
		return &models.Idea{ID: "new", Title: in.Title}, nil
	}
	var patched service.IdeaPatch
	ts.ideas.update = func(id string, p service.IdeaPatch) (*models.Idea, error) {
		patched = p
		if p.Status.Value != nil && !models.IdeaStatus(*p.Status.Value).Valid() {
			return nil, service.ErrInvalidStatus
		}
		return &models.Idea{ID: id}, nil
	}
	ts.ideas.delete = func(id string) error {
		if id != "i1" {
			return service.ErrNotFound
		}
		return nil
	}

	w := ts.do(http.MethodGet, "/api/ideas/i1", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "found", decodeBody(t, w)["title"])

	w = ts.do(http.MethodGet, "/api/ideas/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Idea not found", decodeBody(t, w)["error"])

	w = ts.do(http.MethodPost, "/api/ideas", `{"title":"  "}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Title is required", decodeBody(t, w)["error"])

	w = ts.do(http.MethodPost, "/api/ideas", `{"title":"Podcast"}`, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Podcast", decodeBody(t, w)["title"])

	w = ts.do(http.MethodPut, "/api/ideas/i1", `{"status":"someday"}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid status", decodeBody(t, w)["error"])

	w = ts.do(http.MethodPut, "/api/ideas/i1", `{"summary":null}`, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, patched.Summary.Set)
	assert.Nil(t, patched.Summary.Value)
	assert.False(t, patched.Title.Set)

	w = ts.do(http.MethodDelete, "/api/ideas/i1", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decodeBody(t, w)["success"])

	w = ts.do(http.MethodDelete, "/api/ideas/zzz", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_IdeasServerError(t *testing.T) {
	ts := newTestServer(gateAuth{})
	ts.ideas.list = func() ([]models.Idea, error) { return nil, errors.New("db down") }

	w := ts.do(http.MethodGet, "/api/ideas", "", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Failed to fetch ideas", decodeBody(t, w)["error"])
}

func TestRouter_Tools(t *testing.T) {
	ts := newTestServer(gateAuth{})
	ts.tools.get = func(string) (*models.AITool, error) { return nil, service.ErrNotFound }
	ts.tools.create = func(in service.NewTool) (*models.AITool, error) {
		if in.Name == "" {
			return nil, service.ErrNameRequired
		}
		return &models.AITool{ID: "t1", Name: in.Name}, nil
	}
	ts.tools.update = func(id string, p service.ToolPatch) (*models.AITool, error) {
		return &models.AITool{ID: id, IsFavorite: p.IsFavorite.Value != nil && *p.IsFavorite.Value}, nil
	}
	ts.tools.delete = func(string) error { return errors.New("locked") }

	w := ts.do(http.MethodGet, "/api/ai-tools", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", strings.TrimSpace(w.Body.String()))

	w = ts.do(http.MethodGet, "/api/ai-tools/x", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Tool not found", decodeBody(t, w)["error"])

	w = ts.do(http.MethodPost, "/api/ai-tools", `{"notes":"n"}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Tool name is required", decodeBody(t, w)["error"])

	w = ts.do(http.MethodPost, "/api/ai-tools", `{"name":"Whisper"}`, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Whisper", decodeBody(t, w)["name"])

	w = ts.do(http.MethodPut, "/api/ai-tools/t1", `{"isFavorite":true}`, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decodeBody(t, w)["isFavorite"])

	w = ts.do(http.MethodDelete, "/api/ai-tools/t1", "", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Failed to delete AI tool", decodeBody(t, w)["error"])
}

func TestRouter_RejectsNonJSON(t *testing.T) {
	ts := newTestServer(gateAuth{})
	req := httptest.NewRequest(http.MethodPost, "/api/auth", strings.NewReader("action=setup"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
}

func TestRouter_Assist(t *testing.T) {
	ts := newTestServer(gateAuth{})
	ts.assist.transcribe = func(chunks []string) (*service.Transcription, error) {
		switch len(chunks) {
		case 0:
			return nil, service.ErrNoAudio
		case 1:
			return nil, service.ErrNoTranscription
		case 2:
			return nil, errors.New("upstream 502")
		}
		return &service.Transcription{Text: "hello world", ChunksProcessed: 3, TotalChunks: 3}, nil
	}
	ts.assist.summarize = func(transcript, title string) (string, error) {
		switch transcript {
		case "":
			return "", service.ErrTranscriptRequired
		case "silence":
			return "", service.ErrEmptySummary
		}
		return "summary of " + title, nil
	}

	tests := []struct {
		path, body string
		code       int
		key, want  string
	}{
		{"/api/transcribe", `{"audioChunks":[]}`, http.StatusBadRequest, "error", "Audio chunks are required"},
		{"/api/transcribe", `{"audioChunks":["a"]}`, http.StatusBadRequest, "error", "No transcription produced. The audio may be empty or unclear."},
		{"/api/transcribe", `{"audioChunks":["a","b"]}`, http.StatusInternalServerError, "error", "Transcription failed: upstream 502"},
		{"/api/transcribe", `{"audioChunks":["a","b","c"]}`, http.StatusOK, "transcription", "hello world"},
		{"/api/summarize", `{"transcript":""}`, http.StatusBadRequest, "error", "Transcript is required"},
		{"/api/summarize", `{"transcript":"silence"}`, http.StatusInternalServerError, "error", "Failed to generate summary"},
		{"/api/summarize", `{"transcript":"words","title":"Pod"}`, http.StatusOK, "summary", "summary of Pod"},
	}
	for _, tt := range tests {
		w := ts.do(http.MethodPost, tt.path, tt.body, nil)
		assert.Equal(t, tt.code, w.Code, "%s %s", tt.path, tt.body)
		assert.Equal(t, tt.want, decodeBody(t, w)[tt.key], "%s %s", tt.path, tt.body)
	}
}

func TestRouter_Export(t *testing.T) {
	ts := newTestServer(gateAuth{})
	ts.backup.export = func(pw string) (*models.Backup, error) {
		if pw != "secret1" {
			return nil, service.ErrWrongPassword
		}
		return &models.Backup{Version: models.BackupVersion, Data: "{}"}, nil
	}

	w := ts.do(http.MethodPost, "/api/export", `{"password":"secret1"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, models.BackupVersion, body["backup"].(map[string]any)["version"])

	for i := 0; i < middleware.MaxFailures; i++ {
		w = ts.do(http.MethodPost, "/api/export", `{"password":"bad"}`, nil)
		require.Equal(t, http.StatusUnauthorized, w.Code)
	}
	w = ts.do(http.MethodPost, "/api/export", `{"password":"secret1"}`, nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestRouter_Import(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    int
		wantErr string
	}{
		{"wrong password", service.ErrWrongPassword, http.StatusUnauthorized, "Invalid password"},
		{"invalid", service.ErrInvalidBackup, http.StatusBadRequest, "Invalid backup file"},
		{"corrupted", service.ErrCorruptedBackup, http.StatusBadRequest, "Corrupted backup file"},
		{"structure", service.ErrInvalidBackupStructure, http.StatusBadRequest, "Invalid backup structure"},
		{"requires setup", service.ErrRequiresSetup, http.StatusBadRequest, "Fresh install detected. Please set a password first."},
		{"storage", errors.New("disk"), http.StatusInternalServerError, "Failed to import data"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(gateAuth{})
			ts.backup.imp = func(string, *models.Backup) (*models.ImportResults, error) { return nil, tt.err }

			w := ts.do(http.MethodPost, "/api/import", `{"password":"p","backup":{"data":"x"}}`, nil)
			assert.Equal(t, tt.code, w.Code)
			body := decodeBody(t, w)
			assert.Equal(t, tt.wantErr, body["error"])
			if errors.Is(tt.err, service.ErrRequiresSetup) {
				assert.Equal(t, true, body["requiresSetup"])
			}
		})
	}

	ts := newTestServer(gateAuth{})
	var got *models.Backup
	ts.backup.imp = func(pw string, b *models.Backup) (*models.ImportResults, error) {
		got = b
		return &models.ImportResults{Ideas: models.ImportCount{Imported: 2, Skipped: 1}}, nil
	}
	w := ts.do(http.MethodPost, "/api/import", `{"password":"p","backup":{"version":"1.0","data":"{}"}}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, got)
	assert.Equal(t, "1.0", got.Version)
	body := decodeBody(t, w)
	assert.Equal(t, "Import completed", body["message"])
	assert.Equal(t, float64(2), body["results"].(map[string]any)["ideas"].(map[string]any)["imported"])
}

func TestRouter_AuthStatus(t *testing.T) {
	ts := newTestServer(gateAuth{})
	w := ts.do(http.MethodGet, "/api/auth", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decodeBody(t, w)["isSetup"])
}
