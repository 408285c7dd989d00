// Package repository provides database/sql persistence for ideas, their
// subtasks and AI tools. Queries use $n placeholders, which both lib/pq and
// go-sqlite3 accept as long as each appears once and in order.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexandercyber0x0/Idea-Hub-1/internal/models"
)

// ErrNotFound is returned when a row with the requested id does not exist.
var ErrNotFound = errors.New("not found")

const ideaColumns = `id, title, description, category, status, priority, color, transcript, summary, reel_links, created_at, updated_at`

// IdeaRepository stores ideas and their subtasks.
type IdeaRepository struct {
	// DB is the database handle for executing queries and transactions.
	DB *sql.DB
}

// NewIdeaRepository creates an IdeaRepository using the provided *sql.DB.
func NewIdeaRepository(db *sql.DB) *IdeaRepository {
	return &IdeaRepository{DB: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIdea(row rowScanner) (models.Idea, error) {
	var (
		idea                                     models.Idea
		status                                   string
		desc, color, transcript, summary, reels sql.NullString
	)
	err := row.Scan(&idea.ID, &idea.Title, &desc, &idea.Category, &status, &idea.Priority,
		&color, &transcript, &summary, &reels, &idea.CreatedAt, &idea.UpdatedAt)
	if err != nil {
		return idea, err
	}
	idea.Status = models.IdeaStatus(status)
	idea.Description = fromNull(desc)
	idea.Color = fromNull(color)
	idea.Transcript = fromNull(transcript)
	idea.Summary = fromNull(summary)
	idea.ReelLinks = fromNull(reels)
	idea.Subtasks = []models.Subtask{}
	return idea, nil
}

// List returns every idea, newest first, with its subtasks.
func (r *IdeaRepository) List(ctx context.Context) ([]models.Idea, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+ideaColumns+` FROM ideas ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list ideas: %w", err)
	}
	ideas := []models.Idea{}
	index := map[string]int{}
	for rows.Next() {
		idea, err := scanIdea(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan: %w", err)
		}
		index[idea.ID] = len(ideas)
		ideas = append(ideas, idea)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("list ideas: %w", err)
	}
	// Release the connection before the second query.
	rows.Close()

	subtasks, err := r.querySubtasks(ctx, `SELECT id, idea_id, title, completed, created_at FROM subtasks ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	for _, st := range subtasks {
		if i, ok := index[st.IdeaID]; ok {
			ideas[i].Subtasks = append(ideas[i].Subtasks, st)
		}
	}
	return ideas, nil
}

// Get returns one idea with its subtasks, or ErrNotFound.
func (r *IdeaRepository) Get(ctx context.Context, id string) (*models.Idea, error) {
	idea, err := scanIdea(r.DB.QueryRowContext(ctx, `SELECT `+ideaColumns+` FROM ideas WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get idea: %w", err)
	}

	subtasks, err := r.querySubtasks(ctx,
		`SELECT id, idea_id, title, completed, created_at FROM subtasks WHERE idea_id = $1 ORDER BY created_at`, id)
	if err != nil {
		return nil, err
	}
	idea.Subtasks = append(idea.Subtasks, subtasks...)
	return &idea, nil
}

func (r *IdeaRepository) querySubtasks(ctx context.Context, query string, args ...any) ([]models.Subtask, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list subtasks: %w", err)
	}
	defer rows.Close()

	var subtasks []models.Subtask
	for rows.Next() {
		var st models.Subtask
		if err := rows.Scan(&st.ID, &st.IdeaID, &st.Title, &st.Completed, &st.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		subtasks = append(subtasks, st)
	}
	return subtasks, rows.Err()
}

// Exists reports whether an idea with id exists.
func (r *IdeaRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM ideas WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

// Create inserts the idea and its subtasks in one transaction. Every value is
// written as given, including ids and timestamps.
func (r *IdeaRepository) Create(ctx context.Context, idea *models.Idea) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO ideas (`+ideaColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, idea.ID, idea.Title, toNull(idea.Description), idea.Category, string(idea.Status), idea.Priority,
		toNull(idea.Color), toNull(idea.Transcript), toNull(idea.Summary), toNull(idea.ReelLinks),
		idea.CreatedAt, idea.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert idea: %w", err)
	}

	for _, st := range idea.Subtasks {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO subtasks (id, idea_id, title, completed, created_at)
			VALUES ($1, $2, $3, $4, $5)
		`, st.ID, idea.ID, st.Title, st.Completed, st.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert subtask: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Update overwrites every column of an existing idea. Subtasks are untouched.
func (r *IdeaRepository) Update(ctx context.Context, idea *models.Idea) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE ideas SET
			title = $1, description = $2, category = $3, status = $4, priority = $5,
			color = $6, transcript = $7, summary = $8, reel_links = $9, updated_at = $10
		WHERE id = $11
	`, idea.Title, toNull(idea.Description), idea.Category, string(idea.Status), idea.Priority,
		toNull(idea.Color), toNull(idea.Transcript), toNull(idea.Summary), toNull(idea.ReelLinks),
		idea.UpdatedAt, idea.ID)
	if err != nil {
		return fmt.Errorf("update idea: %w", err)
	}
	return expectOne(res)
}

// Delete removes an idea and its subtasks.
func (r *IdeaRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM subtasks WHERE idea_id = $1`, id); err != nil {
		return fmt.Errorf("delete subtasks: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM ideas WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete idea: %w", err)
	}
	if err := expectOne(res); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func toNull(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func fromNull(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
