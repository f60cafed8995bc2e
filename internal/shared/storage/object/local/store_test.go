package local

import (
	"bytes"
	"context"
	"io"
	"os"
	"strings"
	"testing"
)

func TestSaveOpenDeleteRoundTrip(t *testing.T) {
	store := New(t.TempDir())
	ctx := context.Background()

	key, size, mimeType, err := store.Save(ctx, "user-1", "resume.pdf", bytes.NewReader([]byte("%PDF-1.4 test body")))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if size != int64(len("%PDF-1.4 test body")) {
		t.Fatalf("size = %d", size)
	}
	if mimeType == "" {
		t.Fatal("empty mime type")
	}
	if strings.Contains(key, "user-1") {
		t.Fatalf("storage key leaks raw user id: %s", key)
	}

	rc, err := store.Open(ctx, key)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()
	body, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(body) != "%PDF-1.4 test body" {
		t.Fatalf("body = %q", body)
	}

	if err := store.Delete(ctx, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Open(ctx, key); !os.IsNotExist(err) {
		t.Fatalf("want not-exist after delete, got %v", err)
	}
}

func TestSaveWithKeyPlacesObjectAtKey(t *testing.T) {
	store := New(t.TempDir())
	ctx := context.Background()

	n, err := store.SaveWithKey(ctx, "previews/abc.png", "image/png", bytes.NewReader([]byte("png-bytes")))
	if err != nil {
		t.Fatalf("SaveWithKey: %v", err)
	}
	if n != int64(len("png-bytes")) {
		t.Fatalf("written = %d", n)
	}

	rc, err := store.Open(ctx, "previews/abc.png")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	rc.Close()
}

func TestOpenRejectsTraversal(t *testing.T) {
	store := New(t.TempDir())

	if _, err := store.Open(context.Background(), "../etc/passwd"); err == nil {
		t.Fatal("want error for traversal key")
	}
	if err := store.Delete(context.Background(), "../etc/passwd"); err == nil {
		t.Fatal("want error for traversal key")
	}
}

func TestDeleteMissingObjectIsNoError(t *testing.T) {
	store := New(t.TempDir())

	if err := store.Delete(context.Background(), "nope/missing.pdf"); err != nil {
		t.Fatalf("Delete missing: %v", err)
	}
}
