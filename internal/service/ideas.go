package service

import (
	"context"
	"errors"
	"time"

	"github.com/alexandercyber0x0/Idea-Hub-1/internal/crypto"
	"github.com/alexandercyber0x0/Idea-Hub-1/internal/models"
	"github.com/alexandercyber0x0/Idea-Hub-1/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrNotFound is returned when the requested idea or tool does not exist.
	ErrNotFound = repository.ErrNotFound
	// ErrTitleRequired is returned when an idea is created without a title.
	ErrTitleRequired = errors.New("title is required")
	// ErrInvalidStatus is returned for a status outside bank, doing, done and archived.
	ErrInvalidStatus = errors.New("invalid status")
)

// IdeaRepository defines the persistence operations needed by the IdeaService.
type IdeaRepository interface {
	// List returns every idea with its subtasks, newest first.
	List(ctx context.Context) ([]models.Idea, error)
	// Get returns one idea or repository.ErrNotFound.
	Get(ctx context.Context, id string) (*models.Idea, error)
	// Exists reports whether an idea with the id is stored.
	Exists(ctx context.Context, id string) (bool, error)
	// Create stores the idea and its subtasks as given.
	Create(ctx context.Context, idea *models.Idea) error
	// Update overwrites the idea's columns; subtasks are left alone.
	Update(ctx context.Context, idea *models.Idea) error
	// Delete removes the idea and its subtasks.
	Delete(ctx context.Context, id string) error
}

// NewIdea is the body of a create request. Subtasks are plain titles.
type NewIdea struct {
	Title       string   `json:"title"`
	Description *string  `json:"description"`
	Category    string   `json:"category"`
	Status      string   `json:"status"`
	Priority    string   `json:"priority"`
	Color       *string  `json:"color"`
	Transcript  *string  `json:"transcript"`
	Summary     *string  `json:"summary"`
	ReelLinks   []string `json:"reelLinks"`
	Subtasks    []string `json:"subtasks"`
}

// IdeaPatch is the body of an update request. Only keys present in the JSON
// are applied; null clears a nullable field and is ignored for the others.
type IdeaPatch struct {
	Title       models.Optional[string]   `json:"title"`
	Description models.Optional[string]   `json:"description"`
	Category    models.Optional[string]   `json:"category"`
	Status      models.Optional[string]   `json:"status"`
	Priority    models.Optional[string]   `json:"priority"`
	Color       models.Optional[string]   `json:"color"`
	Transcript  models.Optional[string]   `json:"transcript"`
	Summary     models.Optional[string]   `json:"summary"`
	ReelLinks   models.Optional[[]string] `json:"reelLinks"`
}

// IdeaService implements idea management. Every method takes the request's
// key session; with a nil session data is stored and returned as is.
type IdeaService struct {
	repo IdeaRepository
	log  *zap.Logger
	now  func() time.Time
}

// NewIdeaService constructs an IdeaService with the provided IdeaRepository.
func NewIdeaService(repo IdeaRepository, log *zap.Logger) *IdeaService {
	if log == nil {
		log = zap.NewNop()
	}
	return &IdeaService{repo: repo, log: log, now: time.Now}
}

func ideaID(i *models.Idea) string { return i.ID }

// List returns every idea, decrypted when a session is given.
func (s *IdeaService) List(ctx context.Context, sess *crypto.Session) ([]models.Idea, error) {
	ideas, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	openEach(ctx, ideas, sess, s.log, ideaID)
	return ideas, nil
}

// Get returns one idea or ErrNotFound.
func (s *IdeaService) Get(ctx context.Context, sess *crypto.Session, id string) (*models.Idea, error) {
	idea, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	open(ctx, idea, sess, s.log, id)
	return idea, nil
}

// Create stores a new idea with defaults for category, status and priority.
// The returned idea holds the plaintext values.
func (s *IdeaService) Create(ctx context.Context, sess *crypto.Session, in NewIdea) (*models.Idea, error) {
	if in.Title == "" {
		return nil, ErrTitleRequired
	}
	status := models.IdeaStatus(orDefault(in.Status, string(models.StatusBank)))
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	reels, err := encodeList(in.ReelLinks)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	idea := models.Idea{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Description: models.StringPtr(models.Deref(in.Description)),
		Category:    orDefault(in.Category, models.DefaultCategory),
		Status:      status,
		Priority:    orDefault(in.Priority, models.DefaultPriority),
		Color:       models.StringPtr(models.Deref(in.Color)),
		Transcript:  models.StringPtr(models.Deref(in.Transcript)),
		Summary:     models.StringPtr(models.Deref(in.Summary)),
		ReelLinks:   reels,
		Subtasks:    make([]models.Subtask, 0, len(in.Subtasks)),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, title := range in.Subtasks {
		idea.Subtasks = append(idea.Subtasks, models.Subtask{
			ID:        uuid.NewString(),
			IdeaID:    idea.ID,
			Title:     title,
			CreatedAt: now,
		})
	}

	stored := idea
	if err := seal(ctx, &stored, sess); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, &stored); err != nil {
		return nil, err
	}
	return &idea, nil
}

// Update applies a partial update and bumps updatedAt. Patched sensitive
// fields, and any stored plaintext ones, are sealed when a session is given.
func (s *IdeaService) Update(ctx context.Context, sess *crypto.Session, id string, p IdeaPatch) (*models.Idea, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	idea := *existing
	if p.Title.Set && p.Title.Value != nil {
		if *p.Title.Value == "" {
			return nil, ErrTitleRequired
		}
		idea.Title = *p.Title.Value
	}
	if p.Status.Set && p.Status.Value != nil {
		status := models.IdeaStatus(*p.Status.Value)
		if !status.Valid() {
			return nil, ErrInvalidStatus
		}
		idea.Status = status
	}
	if p.Category.Set && p.Category.Value != nil {
		idea.Category = *p.Category.Value
	}
	if p.Priority.Set && p.Priority.Value != nil {
		idea.Priority = *p.Priority.Value
	}
	applyString(&idea.Description, p.Description)
	applyString(&idea.Color, p.Color)
	applyString(&idea.Transcript, p.Transcript)
	applyString(&idea.Summary, p.Summary)
	if p.ReelLinks.Set {
		var links []string
		if p.ReelLinks.Value != nil {
			links = *p.ReelLinks.Value
		}
		if idea.ReelLinks, err = encodeList(links); err != nil {
			return nil, err
		}
	}
	idea.UpdatedAt = s.now().UTC()

	stored := idea
	if err := seal(ctx, &stored, sess); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, &stored); err != nil {
		return nil, err
	}

	// Untouched fields are still sealed in idea.
	open(ctx, &idea, sess, s.log, id)
	return &idea, nil
}

// Delete removes an idea and its subtasks.
func (s *IdeaService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func applyString(dst **string, o models.Optional[string]) {
	if o.Set {
		*dst = models.StringPtr(models.Deref(o.Value))
	}
}
