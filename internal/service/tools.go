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

// ErrNameRequired is returned when a tool is created without a name.
var ErrNameRequired = errors.New("tool name is required")

// ToolRepository defines the persistence operations needed by the ToolService.
type ToolRepository interface {
	List(ctx context.Context) ([]models.AITool, error)
	Get(ctx context.Context, id string) (*models.AITool, error)
	Exists(ctx context.Context, id string) (bool, error)
	Create(ctx context.Context, tool *models.AITool) error
	Update(ctx context.Context, tool *models.AITool) error
	Delete(ctx context.Context, id string) error
}

// Researcher describes a tool from public sources.
type Researcher interface {
	Research(ctx context.Context, name string) (*models.ToolInfo, error)
}

// NewTool is the body of a create request.
type NewTool struct {
	Name     string  `json:"name"`
	ReelLink *string `json:"reelLink"`
	Notes    *string `json:"notes"`
}

// ToolPatch is the body of an update request; see IdeaPatch.
type ToolPatch struct {
	Name        models.Optional[string] `json:"name"`
	Description models.Optional[string] `json:"description"`
	ReelLink    models.Optional[string] `json:"reelLink"`
	Website     models.Optional[string] `json:"website"`
	Pricing     models.Optional[string] `json:"pricing"`
	UseCases    models.Optional[string] `json:"useCases"`
	Features    models.Optional[string] `json:"features"`
	Category    models.Optional[string] `json:"category"`
	LogoURL     models.Optional[string] `json:"logoUrl"`
	IsFavorite  models.Optional[bool]   `json:"isFavorite"`
	Notes       models.Optional[string] `json:"notes"`
}

// ToolService manages the curated AI tool list.
type ToolService struct {
	repo     ToolRepository
	research Researcher
	log      *zap.Logger
	now      func() time.Time
}

// NewToolService constructs a ToolService. research may be nil, in which
// case new tools carry only what the caller supplied.
func NewToolService(repo ToolRepository, research Researcher, log *zap.Logger) *ToolService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ToolService{repo: repo, research: research, log: log, now: time.Now}
}

func toolID(t *models.AITool) string { return t.ID }

// List returns every tool, decrypted when a session is given.
func (s *ToolService) List(ctx context.Context, sess *crypto.Session) ([]models.AITool, error) {
	tools, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	openEach(ctx, tools, sess, s.log, toolID)
	return tools, nil
}

// Get returns one tool or ErrNotFound.
func (s *ToolService) Get(ctx context.Context, sess *crypto.Session, id string) (*models.AITool, error) {
	tool, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	open(ctx, tool, sess, s.log, id)
	return tool, nil
}

func (s *ToolService) lookup(ctx context.Context, name string) *models.ToolInfo {
	fallback := &models.ToolInfo{UseCases: []string{}, Features: []string{}}
	if s.research == nil {
		return fallback
	}
	info, err := s.research.Research(ctx, name)
	if err != nil {
		s.log.Info("web research failed, using defaults", zap.String("tool", name), zap.Error(err))
		return fallback
	}
	return info
}

// Create researches the tool and stores it. Research failures never fail the
// request; the tool is stored with what is known.
func (s *ToolService) Create(ctx context.Context, sess *crypto.Session, in NewTool) (*models.AITool, error) {
	if in.Name == "" {
		return nil, ErrNameRequired
	}

	info := s.lookup(ctx, in.Name)
	useCases, err := encodeList(info.UseCases)
	if err != nil {
		return nil, err
	}
	features, err := encodeList(info.Features)
	if err != nil {
		return nil, err
	}

	description := models.Deref(info.Description)
	if description == "" {
		description = models.Deref(in.Notes)
	}

	now := s.now().UTC()
	tool := models.AITool{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Description: models.StringPtr(description),
		ReelLink:    models.StringPtr(models.Deref(in.ReelLink)),
		Website:     models.StringPtr(models.Deref(info.Website)),
		Pricing:     models.StringPtr(models.Deref(info.Pricing)),
		UseCases:    useCases,
		Features:    features,
		Category:    models.StringPtr(models.Deref(info.Category)),
		LogoURL:     models.StringPtr(models.Deref(info.LogoURL)),
		Notes:       models.StringPtr(models.Deref(in.Notes)),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	stored := tool
	if err := seal(ctx, &stored, sess); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, &stored); err != nil {
		return nil, err
	}
	return &tool, nil
}

// Update applies a partial update and bumps updatedAt.
func (s *ToolService) Update(ctx context.Context, sess *crypto.Session, id string, p ToolPatch) (*models.AITool, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	tool := *existing
	if p.Name.Set && p.Name.Value != nil {
		if *p.Name.Value == "" {
			return nil, ErrNameRequired
		}
		tool.Name = *p.Name.Value
	}
	if p.IsFavorite.Set && p.IsFavorite.Value != nil {
		tool.IsFavorite = *p.IsFavorite.Value
	}
	applyString(&tool.Description, p.Description)
	applyString(&tool.ReelLink, p.ReelLink)
	applyString(&tool.Website, p.Website)
	applyString(&tool.Pricing, p.Pricing)
	applyString(&tool.UseCases, p.UseCases)
	applyString(&tool.Features, p.Features)
	applyString(&tool.Category, p.Category)
	applyString(&tool.LogoURL, p.LogoURL)
	applyString(&tool.Notes, p.Notes)
	tool.UpdatedAt = s.now().UTC()

	stored := tool
	if err := seal(ctx, &stored, sess); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, &stored); err != nil {
		return nil, err
	}
	open(ctx, &tool, sess, s.log, id)
	return &tool, nil
}

// Delete removes a tool.
func (s *ToolService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func encodeList(items []string) (*string, error) {
	if items == nil {
		return nil, nil
	}
	b, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("encode list: %w", err)
	}
	s := string(b)
	return &s, nil
}
