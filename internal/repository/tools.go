package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexandercyber0x0/Idea-Hub-1/internal/models"
)

const toolColumns = `id, name, description, reel_link, website, pricing, use_cases, features, category, logo_url, is_favorite, notes, created_at, updated_at`

// ToolRepository stores AI tools.
type ToolRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewToolRepository creates a ToolRepository using the provided *sql.DB.
func NewToolRepository(db *sql.DB) *ToolRepository {
	return &ToolRepository{DB: db}
}

func scanTool(row rowScanner) (models.AITool, error) {
	var (
		t                                                        models.AITool
		desc, reel, site, pricing, uses, feats, cat, logo, notes sql.NullString
	)
	err := row.Scan(&t.ID, &t.Name, &desc, &reel, &site, &pricing, &uses, &feats, &cat, &logo,
		&t.IsFavorite, &notes, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return t, err
	}
	t.Description = fromNull(desc)
	t.ReelLink = fromNull(reel)
	t.Website = fromNull(site)
	t.Pricing = fromNull(pricing)
	t.UseCases = fromNull(uses)
	t.Features = fromNull(feats)
	t.Category = fromNull(cat)
	t.LogoURL = fromNull(logo)
	t.Notes = fromNull(notes)
	return t, nil
}

// List returns every tool, newest first.
func (r *ToolRepository) List(ctx context.Context) ([]models.AITool, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+toolColumns+` FROM ai_tools ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list tools: %w", err)
	}
	defer rows.Close()

	tools := []models.AITool{}
	for rows.Next() {
		t, err := scanTool(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		tools = append(tools, t)
	}
	return tools, rows.Err()
}

// Get returns one tool or ErrNotFound.
func (r *ToolRepository) Get(ctx context.Context, id string) (*models.AITool, error) {
	t, err := scanTool(r.DB.QueryRowContext(ctx, `SELECT `+toolColumns+` FROM ai_tools WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get tool: %w", err)
	}
	return &t, nil
}

// Exists reports whether a tool with id exists.
func (r *ToolRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM ai_tools WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

// Create inserts the tool exactly as given.
func (r *ToolRepository) Create(ctx context.Context, t *models.AITool) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO ai_tools (`+toolColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`, t.ID, t.Name, toNull(t.Description), toNull(t.ReelLink), toNull(t.Website), toNull(t.Pricing),
		toNull(t.UseCases), toNull(t.Features), toNull(t.Category), toNull(t.LogoURL),
		t.IsFavorite, toNull(t.Notes), t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert tool: %w", err)
	}
	return nil
}

// Update overwrites every column of an existing tool.
func (r *ToolRepository) Update(ctx context.Context, t *models.AITool) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE ai_tools SET
			name = $1, description = $2, reel_link = $3, website = $4, pricing = $5,
			use_cases = $6, features = $7, category = $8, logo_url = $9, is_favorite = $10,
			notes = $11, updated_at = $12
		WHERE id = $13
	`, t.Name, toNull(t.Description), toNull(t.ReelLink), toNull(t.Website), toNull(t.Pricing),
		toNull(t.UseCases), toNull(t.Features), toNull(t.Category), toNull(t.LogoURL),
		t.IsFavorite, toNull(t.Notes), t.UpdatedAt, t.ID)
	if err != nil {
		return fmt.Errorf("update tool: %w", err)
	}
	return expectOne(res)
}

// Delete removes a tool.
func (r *ToolRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM ai_tools WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete tool: %w", err)
	}
	return expectOne(res)
}
