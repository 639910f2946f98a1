package extractor

import (
	"context"
	"strings"
	"testing"

	"github.com/docvault-ai/docvault/internal/core/domain"
)

func TestCompositeRoutesPlainText(t *testing.T) {
	composite := NewComposite(nil)
	doc := &domain.Document{Filename: "notes.txt", MimeType: "text/plain"}

	text, err := composite.Extract(context.Background(), doc, strings.NewReader("hello world"))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if text != "hello world" {
		t.Fatalf("got %q", text)
	}
}

func TestCompositeSniffsUnlabelledText(t *testing.T) {
	composite := NewComposite(nil)
	doc := &domain.Document{Filename: "data.unknown", MimeType: "application/octet-stream"}

	text, err := composite.Extract(context.Background(), doc, strings.NewReader("plain content after all"))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if text != "plain content after all" {
		t.Fatalf("got %q", text)
	}
}

func TestCompositeRejectsUnknownBinary(t *testing.T) {
	composite := NewComposite(nil)
	doc := &domain.Document{Filename: "blob.unknown", MimeType: "application/octet-stream"}

	_, err := composite.Extract(context.Background(), doc, strings.NewReader("\x00\x01\x02binary"))
	if err == nil {
		t.Fatalf("binary payload with unknown format should be rejected")
	}
}

func TestCompositeImageWithoutOCRFails(t *testing.T) {
	composite := NewComposite(nil)
	doc := &domain.Document{Filename: "scan.png", MimeType: "image/png"}

	_, err := composite.Extract(context.Background(), doc, strings.NewReader("png bytes"))
	if err == nil {
		t.Fatalf("image extraction without OCR should fail")
	}
}

func TestFormatDetection(t *testing.T) {
	cases := []struct {
		filename string
		mime     string
		want     string
	}{
		{"a.pdf", "application/pdf", "pdf"},
		{"a.bin", "application/pdf; charset=binary", "pdf"},
		{"report.xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "spreadsheet"},
		{"report.xlsx", "", "spreadsheet"},
		{"scan.jpeg", "", "image"},
		{"photo", "image/tiff", "image"},
		{"notes.md", "", "text"},
		{"payload.json", "application/json", "text"},
		{"mystery.dat", "application/octet-stream", ""},
	}
	for _, tc := range cases {
		doc := &domain.Document{Filename: tc.filename, MimeType: tc.mime}
		if got := format(doc); got != tc.want {
			t.Errorf("format(%q, %q) = %q, want %q", tc.filename, tc.mime, got, tc.want)
		}
	}
}

func TestPlaintextDropsInvalidUTF8(t *testing.T) {
	p := &Plaintext{}
	doc := &domain.Document{Filename: "notes.txt"}

	text, err := p.Extract(context.Background(), doc, strings.NewReader("ok\xff\xfe still ok"))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if strings.ContainsRune(text, '�') {
		t.Fatalf("invalid sequences should be dropped, not replaced: %q", text)
	}
	if !strings.Contains(text, "still ok") {
		t.Fatalf("valid content lost: %q", text)
	}
}
