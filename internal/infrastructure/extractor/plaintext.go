package extractor

import (
	"context"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/docvault-ai/docvault/internal/core/domain"
)

// Plaintext passes text uploads through unchanged apart from dropping
// invalid UTF-8 sequences.
type Plaintext struct{}

func (p *Plaintext) Extract(_ context.Context, doc *domain.Document, data io.Reader) (string, error) {
	raw, err := io.ReadAll(data)
	if err != nil {
		return "", fmt.Errorf("read %q: %w", doc.Filename, err)
	}
	text := string(raw)
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, "")
	}
	return text, nil
}
