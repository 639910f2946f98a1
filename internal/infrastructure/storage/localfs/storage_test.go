package localfs

import (
	"context"
	"io"
	"strings"
	"testing"
)

func TestSaveOpenDeleteRoundTrip(t *testing.T) {
	storage, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ctx := context.Background()

	if err := storage.Save(ctx, "doc-1_invoice.pdf", strings.NewReader("pdf bytes")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	reader, err := storage.Open(ctx, "doc-1_invoice.pdf")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	raw, err := io.ReadAll(reader)
	reader.Close()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(raw) != "pdf bytes" {
		t.Fatalf("round trip mismatch: %q", raw)
	}

	if err := storage.Delete(ctx, "doc-1_invoice.pdf"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := storage.Open(ctx, "doc-1_invoice.pdf"); err == nil {
		t.Fatalf("expected open to fail after delete")
	}
}

func TestDeleteMissingKeyIsNoop(t *testing.T) {
	storage, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := storage.Delete(context.Background(), "never-existed"); err != nil {
		t.Fatalf("deleting a missing key should be a no-op, got %v", err)
	}
}

func TestRejectsPathTraversalKeys(t *testing.T) {
	storage, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ctx := context.Background()

	for _, key := range []string{"../escape", "a/b", ".hidden", "  "} {
		if err := storage.Save(ctx, key, strings.NewReader("x")); err == nil {
			t.Errorf("Save(%q) should be rejected", key)
		}
		if _, err := storage.Open(ctx, key); err == nil {
			t.Errorf("Open(%q) should be rejected", key)
		}
	}
}

func TestSaveOverwritesExistingKey(t *testing.T) {
	storage, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ctx := context.Background()

	if err := storage.Save(ctx, "key", strings.NewReader("first")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := storage.Save(ctx, "key", strings.NewReader("second")); err != nil {
		t.Fatalf("second Save() error = %v", err)
	}

	reader, err := storage.Open(ctx, "key")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer reader.Close()
	raw, _ := io.ReadAll(reader)
	if string(raw) != "second" {
		t.Fatalf("expected overwrite, got %q", raw)
	}
}
