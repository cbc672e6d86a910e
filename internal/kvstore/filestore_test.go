package kvstore

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFileStoreRoundTrip(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	payload := []byte(`{"prompt":"a red fox in the snow"}`)
	if err := store.Set("media_history", payload); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, ok, err := store.Get("media_history")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatal("expected key to exist")
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("round trip mismatch: got %q", got)
	}
}

func TestFileStoreMissingKey(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	_, ok, err := store.Get("nope")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Error("expected missing key")
	}
}

func TestFileStoreQuota(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir, 16)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	// Random-ish bytes do not compress below the 16-byte quota.
	big := make([]byte, 4096)
	for i := range big {
		big[i] = byte(i*31 + 7)
	}
	err = store.Set("history", big)
	if !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("expected ErrQuotaExceeded, got %v", err)
	}

	// A failed Set must not leave a partial file behind.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected empty dir after quota failure, found %d entries", len(entries))
	}
}

func TestFileStoreDelete(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	if err := store.Set("k", []byte("v")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := store.Delete("k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := store.Get("k"); ok {
		t.Error("key still present after delete")
	}
	// Deleting a missing key is not an error.
	if err := store.Delete("k"); err != nil {
		t.Errorf("second delete: %v", err)
	}
}

func TestFileStoreKeySanitization(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir, 0)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	if err := store.Set("../escape", []byte("x")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "..", "escape.gz")); err == nil {
		t.Fatal("key escaped the store directory")
	}
}
