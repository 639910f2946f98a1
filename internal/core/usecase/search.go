package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/docvault-ai/docvault/internal/core/domain"
	"github.com/docvault-ai/docvault/internal/core/ports"
)

const (
	filenameWeight    = 2.0
	textWeight        = 1.0
	entityWeight      = 1.5
	entityMatchWeight = 0.5
	snippetRadius     = 50
)

// SearchUseCase scores candidate documents against a query: filename
// matches weigh 2.0, extracted-text matches 1.0 (with a snippet around the
// first hit), entity value matches 1.5, and an entity type/value filter
// match adds 0.5. Results are ordered by score descending and paginated.
type SearchUseCase struct {
	repo ports.DocumentRepository
}

func NewSearchUseCase(repo ports.DocumentRepository) *SearchUseCase {
	return &SearchUseCase{repo: repo}
}

func (uc *SearchUseCase) Search(ctx context.Context, query domain.SearchQuery) ([]domain.SearchHit, int, error) {
	if strings.TrimSpace(query.Text) == "" {
		return nil, 0, domain.WrapError(domain.ErrInvalidInput, "search", fmt.Errorf("query text is required"))
	}

	candidates, err := uc.repo.SearchCandidates(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("load search candidates: %w", err)
	}

	needle := strings.ToLower(query.Text)
	hits := make([]domain.SearchHit, 0, len(candidates))
	for i := range candidates {
		doc := &candidates[i]
		if hit, ok := scoreDocument(doc, needle, query); ok {
			hits = append(hits, hit)
		}
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })

	total := len(hits)
	page := query.Page
	if page < 1 {
		page = 1
	}
	pageSize := query.PageSize
	if pageSize < 1 {
		pageSize = 20
	}
	start := (page - 1) * pageSize
	if start >= total {
		return []domain.SearchHit{}, total, nil
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return hits[start:end], total, nil
}

func scoreDocument(doc *domain.Document, needle string, query domain.SearchQuery) (domain.SearchHit, bool) {
	var score float64
	var snippet string

	if strings.Contains(strings.ToLower(doc.Filename), needle) {
		score += filenameWeight
		snippet = doc.Filename
	}

	if idx := strings.Index(strings.ToLower(doc.ExtractedText), needle); idx >= 0 {
		score += textWeight
		snippet = textSnippet(doc.ExtractedText, idx, len(needle))
	}

	for _, entity := range doc.Entities {
		if strings.Contains(strings.ToLower(entity.Value), needle) {
			score += entityWeight
		}
		if query.EntityType != "" && entity.Type == query.EntityType {
			if query.EntityValue == "" || strings.Contains(strings.ToLower(entity.Value), strings.ToLower(query.EntityValue)) {
				score += entityMatchWeight
			}
		}
	}

	if score == 0 {
		return domain.SearchHit{}, false
	}
	if snippet == "" {
		snippet = doc.Filename
	}
	return domain.SearchHit{
		DocumentID:     doc.ID,
		Filename:       doc.Filename,
		Classification: doc.Classification,
		Snippet:        snippet,
		Score:          score,
		CreatedAt:      doc.CreatedAt,
	}, true
}

func textSnippet(text string, idx, matchLen int) string {
	start := idx - snippetRadius
	if start < 0 {
		start = 0
	}
	end := idx + matchLen + snippetRadius
	if end > len(text) {
		end = len(text)
	}
	// The radius is in bytes; snap the window to rune boundaries so a
	// multi-byte character at the edge is never split.
	for start > 0 && !utf8.RuneStart(text[start]) {
		start--
	}
	for end < len(text) && !utf8.RuneStart(text[end]) {
		end++
	}
	return "..." + text[start:end] + "..."
}
