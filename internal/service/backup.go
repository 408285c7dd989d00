package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/alexandercyber0x0/Idea-Hub-1/internal/crypto"
	"github.com/alexandercyber0x0/Idea-Hub-1/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// isoMillis is the timestamp layout used inside backups.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

var (
	// ErrInvalidBackup is returned when an import carries no data.
	ErrInvalidBackup = errors.New("invalid backup file")
	// ErrCorruptedBackup is returned when the backup data is not valid JSON.
	ErrCorruptedBackup = errors.New("corrupted backup file")
	// ErrInvalidBackupStructure is returned when ideas or tools are missing.
	ErrInvalidBackupStructure = errors.New("invalid backup structure")
	// ErrRequiresSetup is returned when a protected backup is imported before
	// a password has been set up.
	ErrRequiresSetup = errors.New("fresh install detected, please set a password first")
)

// PasswordChecker is the part of AuthService the backup needs.
type PasswordChecker interface {
	IsSetup(ctx context.Context) bool
	Verify(ctx context.Context, password string) bool
}

// BackupService exports and imports every stored row. Rows travel exactly as
// stored, so sealed fields stay sealed under the password they were sealed
// with.
type BackupService struct {
	ideas IdeaRepository
	tools ToolRepository
	auth  PasswordChecker
	pool  *crypto.Pool
	log   *zap.Logger
	now   func() time.Time
}

// NewBackupService constructs a BackupService.
func NewBackupService(ideas IdeaRepository, tools ToolRepository, auth PasswordChecker, pool *crypto.Pool, log *zap.Logger) *BackupService {
	if log == nil {
		log = zap.NewNop()
	}
	return &BackupService{ideas: ideas, tools: tools, auth: auth, pool: pool, log: log, now: time.Now}
}

// Export returns a backup of all ideas and tools after checking password.
func (s *BackupService) Export(ctx context.Context, password string) (*models.Backup, error) {
	if !s.auth.Verify(ctx, password) {
		return nil, ErrWrongPassword
	}

	ideas, err := s.ideas.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list ideas: %w", err)
	}
	tools, err := s.tools.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tools: %w", err)
	}

	var (
		hash    string
		hashErr error
	)
	if err := s.pool.Do(ctx, func() { hash, hashErr = crypto.HashPassword(password) }); err != nil {
		return nil, err
	}
	if hashErr != nil {
		return nil, fmt.Errorf("hash password: %w", hashErr)
	}

	exportedAt := s.now().UTC().Format(isoMillis)
	data, err := json.Marshal(models.BackupPayload{
		Version:    models.BackupVersion,
		ExportedAt: exportedAt,
		Data:       &models.BackupData{Ideas: ideas, AITools: tools},
	})
	if err != nil {
		return nil, fmt.Errorf("encode backup: %w", err)
	}

	s.log.Info("backup exported", zap.Int("ideas", len(ideas)), zap.Int("tools", len(tools)))
	return &models.Backup{
		Version:      models.BackupVersion,
		ExportedAt:   exportedAt,
		Verification: crypto.HashSalt(hash),
		Data:         string(data),
	}, nil
}

// Import restores rows from a backup. Rows whose id already exists, and rows
// that fail to insert, are counted as skipped. On a fresh install a backup
// without a verification field is imported without a password check.
func (s *BackupService) Import(ctx context.Context, password string, backup *models.Backup) (*models.ImportResults, error) {
	if backup == nil || backup.Data == "" {
		return nil, ErrInvalidBackup
	}

	fresh := !s.auth.IsSetup(ctx)
	if !fresh && !s.auth.Verify(ctx, password) {
		return nil, ErrWrongPassword
	}

	var payload models.BackupPayload
	if err := json.Unmarshal([]byte(backup.Data), &payload); err != nil {
		return nil, ErrCorruptedBackup
	}
	if payload.Data == nil || payload.Data.Ideas == nil || payload.Data.AITools == nil {
		return nil, ErrInvalidBackupStructure
	}
	if fresh && backup.Verification != "" {
		return nil, ErrRequiresSetup
	}

	now := s.now().UTC()
	results := &models.ImportResults{}
	for i := range payload.Data.Ideas {
		idea := &payload.Data.Ideas[i]
		normaliseIdea(idea, now)
		s.importRow(ctx, &results.Ideas, "idea", idea.ID, s.ideas.Exists, func(ctx context.Context) error {
			return s.ideas.Create(ctx, idea)
		})
	}
	for i := range payload.Data.AITools {
		tool := &payload.Data.AITools[i]
		normaliseTool(tool, now)
		s.importRow(ctx, &results.AITools, "tool", tool.ID, s.tools.Exists, func(ctx context.Context) error {
			return s.tools.Create(ctx, tool)
		})
	}

	s.log.Info("backup imported",
		zap.Int("ideas_imported", results.Ideas.Imported),
		zap.Int("ideas_skipped", results.Ideas.Skipped),
		zap.Int("tools_imported", results.AITools.Imported),
		zap.Int("tools_skipped", results.AITools.Skipped))
	return results, nil
}

func (s *BackupService) importRow(ctx context.Context, count *models.ImportCount, kind, id string,
	exists func(context.Context, string) (bool, error), create func(context.Context) error) {
	found, err := exists(ctx, id)
	if err != nil {
		s.log.Warn("failed to check existing row", zap.String("kind", kind), zap.String("id", id), zap.Error(err))
		count.Skipped++
		return
	}
	if found {
		count.Skipped++
		return
	}
	if err := create(ctx); err != nil {
		s.log.Warn("failed to import row", zap.String("kind", kind), zap.String("id", id), zap.Error(err))
		count.Skipped++
		return
	}
	count.Imported++
}

// normaliseIdea fills what older or hand-edited backups may lack.
func normaliseIdea(idea *models.Idea, now time.Time) {
	if idea.ID == "" {
		idea.ID = uuid.NewString()
	}
	idea.Category = orDefault(idea.Category, models.DefaultCategory)
	idea.Priority = orDefault(idea.Priority, models.DefaultPriority)
	if !idea.Status.Valid() {
		idea.Status = models.StatusBank
	}
	idea.CreatedAt = orNow(idea.CreatedAt, now)
	idea.UpdatedAt = orNow(idea.UpdatedAt, now)
	for i := range idea.Subtasks {
		st := &idea.Subtasks[i]
		if st.ID == "" {
			st.ID = uuid.NewString()
		}
		st.IdeaID = idea.ID
		st.CreatedAt = orNow(st.CreatedAt, now)
	}
}

func normaliseTool(tool *models.AITool, now time.Time) {
	if tool.ID == "" {
		tool.ID = uuid.NewString()
	}
	tool.CreatedAt = orNow(tool.CreatedAt, now)
	tool.UpdatedAt = orNow(tool.UpdatedAt, now)
}

func orNow(t, now time.Time) time.Time {
	if t.IsZero() {
		return now
	}
	return t.UTC()
}
