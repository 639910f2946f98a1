package extractor

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/docvault-ai/docvault/internal/core/domain"
)

// Composite routes a document to the extractor matching its mime type
// or filename extension. Unknown formats fall through to a UTF-8 sniff
// so unlabelled text uploads still produce content.
type Composite struct {
	plaintext   *Plaintext
	pdf         *PDF
	spreadsheet *Spreadsheet
	ocr         *OCR
}

func NewComposite(ocr *OCR) *Composite {
	return &Composite{
		plaintext:   &Plaintext{},
		pdf:         &PDF{},
		spreadsheet: &Spreadsheet{},
		ocr:         ocr,
	}
}

func (c *Composite) Extract(ctx context.Context, doc *domain.Document, data io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	switch format(doc) {
	case "text":
		return c.plaintext.Extract(ctx, doc, data)
	case "pdf":
		return c.pdf.Extract(ctx, doc, data)
	case "spreadsheet":
		return c.spreadsheet.Extract(ctx, doc, data)
	case "image":
		if c.ocr == nil {
			return "", fmt.Errorf("extract %q: image extraction is disabled", doc.Filename)
		}
		return c.ocr.Extract(ctx, doc, data)
	default:
		return sniffText(doc, data)
	}
}

func format(doc *domain.Document) string {
	mime := strings.ToLower(strings.TrimSpace(doc.MimeType))
	if idx := strings.IndexByte(mime, ';'); idx >= 0 {
		mime = strings.TrimSpace(mime[:idx])
	}

	switch {
	case mime == "application/pdf":
		return "pdf"
	case mime == "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":
		return "spreadsheet"
	case strings.HasPrefix(mime, "image/"):
		return "image"
	case strings.HasPrefix(mime, "text/"),
		mime == "application/json",
		mime == "application/xml":
		return "text"
	}

	switch strings.ToLower(filepath.Ext(doc.Filename)) {
	case ".pdf":
		return "pdf"
	case ".xlsx":
		return "spreadsheet"
	case ".png", ".jpg", ".jpeg", ".tif", ".tiff", ".bmp":
		return "image"
	case ".txt", ".md", ".csv", ".json", ".xml", ".log":
		return "text"
	}
	return ""
}

// sniffText accepts the payload as text only when it decodes as UTF-8
// without NUL bytes. Binary uploads with an unknown format are refused
// rather than stored as garbage text.
func sniffText(doc *domain.Document, data io.Reader) (string, error) {
	raw, err := io.ReadAll(data)
	if err != nil {
		return "", fmt.Errorf("read %q: %w", doc.Filename, err)
	}
	if !utf8.Valid(raw) || strings.ContainsRune(string(raw), '\x00') {
		return "", fmt.Errorf("extract %q: unsupported format %q", doc.Filename, doc.MimeType)
	}
	return string(raw), nil
}
