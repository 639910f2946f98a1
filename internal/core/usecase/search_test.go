package usecase

import (
	"context"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/docvault-ai/docvault/internal/core/domain"
)

func searchCorpus() []domain.Document {
	now := time.Now().UTC()
	return []domain.Document{
		{
			ID:             "filename-hit",
			Filename:       "acme-invoice.pdf",
			Classification: "invoice",
			ExtractedText:  "nothing relevant",
			CreatedAt:      now,
		},
		{
			ID:             "text-hit",
			Filename:       "scan-0042.pdf",
			Classification: "invoice",
			ExtractedText:  strings.Repeat("padding ", 30) + "payment to acme due" + strings.Repeat(" padding", 30),
			CreatedAt:      now,
		},
		{
			ID:            "entity-hit",
			Filename:      "contract.pdf",
			ExtractedText: "terms and conditions",
			Entities:      []domain.Entity{{Type: domain.EntityOrganization, Value: "Acme Corp"}},
			CreatedAt:     now,
		},
		{
			ID:            "no-hit",
			Filename:      "letter.txt",
			ExtractedText: "dear sir or madam",
			CreatedAt:     now,
		},
	}
}

func TestSearchScoringAndOrder(t *testing.T) {
	repo := newFakeDocumentRepo()
	repo.candidates = searchCorpus()
	uc := NewSearchUseCase(repo)

	hits, total, err := uc.Search(context.Background(), domain.SearchQuery{Text: "acme"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if total != 3 {
		t.Fatalf("expected 3 scored documents, got %d", total)
	}

	// filename 2.0 > entity 1.5 > text 1.0
	wantOrder := []string{"filename-hit", "entity-hit", "text-hit"}
	for i, want := range wantOrder {
		if hits[i].DocumentID != want {
			t.Fatalf("position %d: got %s, want %s (hits %+v)", i, hits[i].DocumentID, want, hits)
		}
	}
	if hits[0].Score != 2.0 || hits[1].Score != 1.5 || hits[2].Score != 1.0 {
		t.Fatalf("unexpected scores: %v %v %v", hits[0].Score, hits[1].Score, hits[2].Score)
	}
}

func TestSearchSnippetSurroundsMatch(t *testing.T) {
	repo := newFakeDocumentRepo()
	repo.candidates = searchCorpus()
	uc := NewSearchUseCase(repo)

	hits, _, err := uc.Search(context.Background(), domain.SearchQuery{Text: "payment to acme"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) == 0 {
		t.Fatalf("expected a text hit")
	}
	snippet := hits[0].Snippet
	if !strings.Contains(snippet, "payment to acme") {
		t.Fatalf("snippet should contain the match, got %q", snippet)
	}
	if !strings.HasPrefix(snippet, "...") || !strings.HasSuffix(snippet, "...") {
		t.Fatalf("snippet should be ellipsized, got %q", snippet)
	}
}

func TestSearchSnippetKeepsRuneBoundaries(t *testing.T) {
	// Multi-byte characters on both sides of the snippet window.
	text := strings.Repeat("€", 41) + "invoice total" + strings.Repeat("€", 41)
	repo := newFakeDocumentRepo()
	repo.candidates = []domain.Document{{
		ID:            "doc-1",
		Filename:      "scan.pdf",
		ExtractedText: text,
		CreatedAt:     time.Now().UTC(),
	}}
	uc := NewSearchUseCase(repo)

	hits, _, err := uc.Search(context.Background(), domain.SearchQuery{Text: "invoice total"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("expected one hit, got %d", len(hits))
	}
	snippet := hits[0].Snippet
	if !utf8.ValidString(snippet) {
		t.Fatalf("snippet must not split a rune, got %q", snippet)
	}
	if !strings.Contains(snippet, "invoice total") {
		t.Fatalf("snippet should contain the match, got %q", snippet)
	}
}

func TestSearchEntityFilterBonus(t *testing.T) {
	repo := newFakeDocumentRepo()
	repo.candidates = searchCorpus()
	uc := NewSearchUseCase(repo)

	hits, _, err := uc.Search(context.Background(), domain.SearchQuery{
		Text:        "acme",
		EntityType:  domain.EntityOrganization,
		EntityValue: "acme corp",
	})
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	for _, hit := range hits {
		if hit.DocumentID == "entity-hit" {
			if hit.Score != 2.0 {
				t.Fatalf("entity filter should add 0.5 to the 1.5 entity score, got %v", hit.Score)
			}
			return
		}
	}
	t.Fatalf("entity-hit missing from results %+v", hits)
}

func TestSearchPagination(t *testing.T) {
	repo := newFakeDocumentRepo()
	repo.candidates = searchCorpus()
	uc := NewSearchUseCase(repo)

	page1, total, err := uc.Search(context.Background(), domain.SearchQuery{Text: "acme", Page: 1, PageSize: 2})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if total != 3 || len(page1) != 2 {
		t.Fatalf("page 1: total %d len %d", total, len(page1))
	}

	page2, _, err := uc.Search(context.Background(), domain.SearchQuery{Text: "acme", Page: 2, PageSize: 2})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(page2) != 1 {
		t.Fatalf("page 2 should hold the remainder, got %d", len(page2))
	}

	empty, _, err := uc.Search(context.Background(), domain.SearchQuery{Text: "acme", Page: 5, PageSize: 2})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("out-of-range page should be empty, got %d", len(empty))
	}
}

func TestSearchRequiresQueryText(t *testing.T) {
	uc := NewSearchUseCase(newFakeDocumentRepo())

	_, _, err := uc.Search(context.Background(), domain.SearchQuery{Text: "   "})
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input error, got %v", err)
	}
}
