package service

import (
	"context"
	"sync"

	"github.com/alexandercyber0x0/Idea-Hub-1/internal/models"
	"github.com/alexandercyber0x0/Idea-Hub-1/internal/repository"
)

// memIdeas is an in-memory IdeaRepository.
type memIdeas struct {
	mu        sync.Mutex
	rows      map[string]models.Idea
	order     []string
	CreateErr error
}

func newMemIdeas() *memIdeas { return &memIdeas{rows: map[string]models.Idea{}} }

func (m *memIdeas) List(context.Context) ([]models.Idea, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Idea{}
	for i := len(m.order) - 1; i >= 0; i-- {
		if idea, ok := m.rows[m.order[i]]; ok {
			out = append(out, idea)
		}
	}
	return out, nil
}

func (m *memIdeas) Get(_ context.Context, id string) (*models.Idea, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	idea, ok := m.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &idea, nil
}

func (m *memIdeas) Exists(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.rows[id]
	return ok, nil
}

func (m *memIdeas) Create(_ context.Context, idea *models.Idea) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[idea.ID] = *idea
	m.order = append(m.order, idea.ID)
	return nil
}

func (m *memIdeas) Update(_ context.Context, idea *models.Idea) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[idea.ID]; !ok {
		return repository.ErrNotFound
	}
	m.rows[idea.ID] = *idea
	return nil
}

func (m *memIdeas) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

// memTools is an in-memory ToolRepository.
type memTools struct {
	mu    sync.Mutex
	rows  map[string]models.AITool
	order []string
}

func newMemTools() *memTools { return &memTools{rows: map[string]models.AITool{}} }

func (m *memTools) List(context.Context) ([]models.AITool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.AITool{}
	for i := len(m.order) - 1; i >= 0; i-- {
		if tool, ok := m.rows[m.order[i]]; ok {
			out = append(out, tool)
		}
	}
	return out, nil
}

func (m *memTools) Get(_ context.Context, id string) (*models.AITool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tool, ok := m.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &tool, nil
}

func (m *memTools) Exists(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.rows[id]
	return ok, nil
}

func (m *memTools) Create(_ context.Context, tool *models.AITool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[tool.ID] = *tool
	m.order = append(m.order, tool.ID)
	return nil
}

func (m *memTools) Update(_ context.Context, tool *models.AITool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[tool.ID]; !ok {
		return repository.ErrNotFound
	}
	m.rows[tool.ID] = *tool
	return nil
}

func (m *memTools) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}
