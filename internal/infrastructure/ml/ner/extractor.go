package ner

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/jdkato/prose/v2"

	"github.com/docvault-ai/docvault/internal/core/domain"
)

const maxNERChars = 20000

var patternEntities = []struct {
	entityType domain.EntityType
	pattern    *regexp.Regexp
}{
	{domain.EntityEmail, regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)},
	{domain.EntityPhone, regexp.MustCompile(`\+?\d[\d\s().-]{7,14}\d`)},
	{domain.EntityMoney, regexp.MustCompile(`[$€£]\s?\d[\d,]*(?:\.\d{1,2})?|\b\d[\d,]*(?:\.\d{1,2})?\s?(?:USD|EUR|GBP)\b`)},
	{domain.EntityReference, regexp.MustCompile(`\b(?:INV|REF|PO|ORDER)[#\-]?\s*[A-Z0-9]{4,12}\b`)},
	{domain.EntityDate, regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b|\b\d{1,2}/\d{1,2}/\d{2,4}\b`)},
}

// Extractor combines statistical NER from prose with regex patterns
// for the structured entity types prose does not label.
type Extractor struct{}

func New() *Extractor {
	return &Extractor{}
}

func (e *Extractor) Extract(ctx context.Context, text string) ([]domain.Entity, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, nil
	}
	if len(trimmed) > maxNERChars {
		cut := maxNERChars
		// Back off to a rune boundary so the truncated tail stays
		// valid UTF-8 for the tokenizer.
		for cut > 0 && !utf8.RuneStart(trimmed[cut]) {
			cut--
		}
		trimmed = trimmed[:cut]
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var entities []domain.Entity

	doc, err := prose.NewDocument(trimmed, prose.WithSegmentation(false))
	if err != nil {
		return nil, fmt.Errorf("ner tokenize: %w", err)
	}
	for _, ent := range doc.Entities() {
		entityType, ok := proseLabel(ent.Label)
		if !ok {
			continue
		}
		entities = append(entities, domain.Entity{
			Type:  entityType,
			Value: strings.TrimSpace(ent.Text),
		})
	}

	for _, pe := range patternEntities {
		for _, match := range pe.pattern.FindAllString(trimmed, -1) {
			entities = append(entities, domain.Entity{
				Type:  pe.entityType,
				Value: strings.TrimSpace(match),
			})
		}
	}

	return dedupe(entities), nil
}

func proseLabel(label string) (domain.EntityType, bool) {
	switch label {
	case "PERSON":
		return domain.EntityPerson, true
	case "GPE", "LOC":
		return domain.EntityLocation, true
	case "ORG", "ORGANIZATION":
		return domain.EntityOrganization, true
	default:
		return "", false
	}
}

// dedupe drops repeated (type, value) pairs case-insensitively while
// keeping first-seen order.
func dedupe(entities []domain.Entity) []domain.Entity {
	seen := make(map[string]struct{}, len(entities))
	out := entities[:0]
	for _, entity := range entities {
		if entity.Value == "" {
			continue
		}
		key := string(entity.Type) + "\x00" + strings.ToLower(entity.Value)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, entity)
	}
	return out
}
