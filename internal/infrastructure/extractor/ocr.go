package extractor

import (
	"context"
	"fmt"
	"io"

	"github.com/otiai10/gosseract/v2"

	"github.com/docvault-ai/docvault/internal/core/domain"
)

// OCR recognizes text in image uploads through tesseract. A client is
// created per document because gosseract clients are not safe for
// concurrent use.
type OCR struct {
	languages []string
}

func NewOCR(languages []string) *OCR {
	if len(languages) == 0 {
		languages = []string{"eng"}
	}
	return &OCR{languages: languages}
}

func (o *OCR) Extract(ctx context.Context, doc *domain.Document, data io.Reader) (string, error) {
	raw, err := io.ReadAll(data)
	if err != nil {
		return "", fmt.Errorf("read %q: %w", doc.Filename, err)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(o.languages...); err != nil {
		return "", fmt.Errorf("ocr language setup: %w", err)
	}
	if err := client.SetImageFromBytes(raw); err != nil {
		return "", fmt.Errorf("ocr load image %q: %w", doc.Filename, err)
	}
	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("ocr %q: %w", doc.Filename, err)
	}
	return text, nil
}
