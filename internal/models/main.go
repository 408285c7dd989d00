// Package models defines the core data structures for ideas, AI tools and
// the vault password record.
package models

import (
	"encoding/json"
	"time"
)

// PasswordRecord is the single persisted proof that a vault password was set.
// PasswordHash is salt_hex:hash_hex; the password itself is never stored.
type PasswordRecord struct {
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
	LastAccessed time.Time `json:"lastAccessed"`
}

// SecurityInfo is the public view of the password record (no hash).
type SecurityInfo struct {
	IsSetup      bool       `json:"isSetup"`
	CreatedAt    *time.Time `json:"createdAt,omitempty"`
	LastAccessed *time.Time `json:"lastAccessed,omitempty"`
}

// IdeaStatus is the board column an idea lives in.
type IdeaStatus string

const (
	StatusBank     IdeaStatus = "bank"
	StatusDoing    IdeaStatus = "doing"
	StatusDone     IdeaStatus = "done"
	StatusArchived IdeaStatus = "archived"
)

// Valid reports whether s is a known board column.
func (s IdeaStatus) Valid() bool {
	switch s {
	case StatusBank, StatusDoing, StatusDone, StatusArchived:
		return true
	}
	return false
}

const (
	DefaultCategory = "other"
	DefaultPriority = "medium"
)

// Idea is a captured idea. Fields tagged vault:"encrypt" are sealed at rest
// whenever the caller supplies the vault password.
type Idea struct {
	// ID is the unique identifier for the idea.
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description" vault:"encrypt"`
	Category    string     `json:"category"`
	Status      IdeaStatus `json:"status"`
	Priority    string     `json:"priority"`
	Color       *string    `json:"color"`
	Transcript  *string    `json:"transcript" vault:"encrypt"`
	Summary     *string    `json:"summary" vault:"encrypt"`
	// ReelLinks holds a JSON array of links, serialised before sealing.
	ReelLinks *string   `json:"reelLinks" vault:"encrypt"`
	Subtasks  []Subtask `json:"subtasks"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Subtask is a checklist item belonging to an idea.
type Subtask struct {
	ID        string    `json:"id"`
	IdeaID    string    `json:"ideaId"`
	Title     string    `json:"title"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"createdAt"`
}

// AITool is a curated AI tool, enriched by web research when created.
type AITool struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description" vault:"encrypt"`
	ReelLink    *string   `json:"reelLink"`
	Website     *string   `json:"website"`
	Pricing     *string   `json:"pricing"`
	UseCases    *string   `json:"useCases"`
	Features    *string   `json:"features"`
	Category    *string   `json:"category"`
	LogoURL     *string   `json:"logoUrl"`
	IsFavorite  bool      `json:"isFavorite"`
	Notes       *string   `json:"notes" vault:"encrypt"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ToolInfo is what web research returns about a tool.
type ToolInfo struct {
	Description *string  `json:"description"`
	Website     *string  `json:"website"`
	Pricing     *string  `json:"pricing"`
	UseCases    []string `json:"useCases"`
	Features    []string `json:"features"`
	Category    *string  `json:"category"`
	LogoURL     *string  `json:"logoUrl"`
}

// BackupVersion is the format version written by exports.
const BackupVersion = "1.0"

// Backup is the envelope returned by an export and accepted by an import.
// Data is the JSON encoding of a BackupPayload.
type Backup struct {
	Version      string `json:"version"`
	ExportedAt   string `json:"exportedAt"`
	Verification string `json:"verification,omitempty"`
	Data         string `json:"data"`
}

// BackupPayload is the decoded content of Backup.Data.
type BackupPayload struct {
	Version    string      `json:"version"`
	ExportedAt string      `json:"exportedAt"`
	Data       *BackupData `json:"data"`
}

// BackupData holds every stored row, exactly as persisted.
type BackupData struct {
	Ideas   []Idea   `json:"ideas"`
	AITools []AITool `json:"aiTools"`
}

// ImportCount tallies the outcome for one entity kind.
type ImportCount struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// ImportResults summarises an import.
type ImportResults struct {
	Ideas   ImportCount `json:"ideas"`
	AITools ImportCount `json:"aiTools"`
}

// StringPtr returns a pointer to s, or nil when s is empty.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns the pointed-to string or "".
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Optional distinguishes an absent JSON key (Set false) from an explicit
// null (Set true, Value nil) in partial updates.
type Optional[T any] struct {
	Set   bool
	Value *T
}

// UnmarshalJSON is only called when the key is present.
func (o *Optional[T]) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}
