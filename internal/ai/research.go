package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/alexandercyber0x0/Idea-Hub-1/internal/cache"
	"github.com/alexandercyber0x0/Idea-Hub-1/internal/models"
	"go.uber.org/zap"
)

const (
	searchResults  = 10
	contextResults = 5

	researchPrompt = `You are an AI tool researcher. Extract information about AI tools from search results.
Return ONLY valid JSON with this structure (no markdown, no code blocks):
{
  "description": "ONE concise sentence (max 15 words) describing what the tool does",
  "website": "Official website URL",
  "pricing": "Pricing model (free/freemium/paid/subscription with prices)",
  "useCases": ["use case 1", "use case 2"],
  "features": ["feature 1", "feature 2"],
  "category": "Category (e.g., Image Generation, Text AI, Video, Audio, etc.)",
  "logoUrl": "Logo URL if found or null"
}
IMPORTANT: Keep description to ONE short sentence max 15 words. If information is not found, use null for that field.`
)

var codeFence = regexp.MustCompile("```json\\n?|\\n?```")

// Searcher runs a web search.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]SearchResult, error)
}

// Completer runs a chat completion.
type Completer interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

// Cache stores research results by tool name.
type Cache interface {
	Get(ctx context.Context, name string) (*models.ToolInfo, error)
	Set(ctx context.Context, name string, info *models.ToolInfo) error
}

// Researcher looks a tool up on the web and asks the model to extract a
// structured description from the top results.
type Researcher struct {
	search Searcher
	llm    Completer
	cache  Cache
	log    *zap.Logger
}

// NewResearcher creates a Researcher. cache may be nil.
func NewResearcher(search Searcher, llm Completer, cache Cache, log *zap.Logger) *Researcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Researcher{search: search, llm: llm, cache: cache, log: log}
}

// Research returns what the web knows about the named tool. Cache failures
// are logged and never fail the lookup.
func (r *Researcher) Research(ctx context.Context, name string) (*models.ToolInfo, error) {
	if r.cache != nil {
		info, err := r.cache.Get(ctx, name)
		switch {
		case err == nil:
			return info, nil
		case !errors.Is(err, cache.ErrMiss):
			r.log.Warn("research cache read failed", zap.String("tool", name), zap.Error(err))
		}
	}

	results, err := r.search.Search(ctx, name+" AI tool pricing features use cases official website", searchResults)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	text, err := r.llm.Complete(ctx, []Message{
		{Role: "system", Content: researchPrompt},
		{Role: "user", Content: fmt.Sprintf("Tool Name: %s\n\nSearch Results:\n%s\n\nExtract the tool information.", name, searchContext(results))},
	})
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}

	info, err := ParseToolInfo(text)
	if err != nil {
		return nil, err
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, name, info); err != nil {
			r.log.Warn("research cache write failed", zap.String("tool", name), zap.Error(err))
		}
	}
	return info, nil
}

func searchContext(results []SearchResult) string {
	if len(results) > contextResults {
		results = results[:contextResults]
	}
	parts := make([]string, len(results))
	for i, res := range results {
		parts[i] = fmt.Sprintf("%d. %s\n%s\nURL: %s", i+1, res.Name, res.Snippet, res.URL)
	}
	return strings.Join(parts, "\n\n")
}

// ParseToolInfo decodes a model reply, tolerating markdown code fences.
func ParseToolInfo(text string) (*models.ToolInfo, error) {
	cleaned := strings.TrimSpace(codeFence.ReplaceAllString(text, ""))
	var info models.ToolInfo
	if err := json.Unmarshal([]byte(cleaned), &info); err != nil {
		return nil, fmt.Errorf("parse tool info: %w", err)
	}
	return &info, nil
}
