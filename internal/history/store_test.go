package history

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/opensourcejay/cameo-go/internal/kvstore"
)

func record(id int64, prompt string) MediaRecord {
	return MediaRecord{
		ID:        id,
		Prompt:    prompt,
		Kind:      KindImage,
		URL:       "data:image/png;base64,eA==",
		CreatedAt: time.UnixMilli(id).UTC(),
	}
}

func alwaysConfirm() Confirmer {
	return ConfirmerFunc(func(string) bool { return true })
}

func storedRecords(t *testing.T, kv kvstore.Store) []MediaRecord {
	t.Helper()
	raw, ok, err := kv.Get("media_history")
	if err != nil {
		t.Fatalf("read stored history: %v", err)
	}
	if !ok {
		return nil
	}
	var out []MediaRecord
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("decode stored history: %v", err)
	}
	return out
}

func TestAddCapsAtFifty(t *testing.T) {
	kv := kvstore.NewMemStore()
	store := NewStore(kv)

	for i := int64(1); i <= 51; i++ {
		if err := store.Add(record(i, "p")); err != nil {
			t.Fatalf("Add %d: %v", i, err)
		}
	}

	got := store.List()
	if len(got) != 50 {
		t.Fatalf("expected 50 records, got %d", len(got))
	}
	// Newest first: 51 down to 2.
	if got[0].ID != 51 || got[49].ID != 2 {
		t.Errorf("unexpected order: first=%d last=%d", got[0].ID, got[49].ID)
	}
	seen := map[int64]bool{}
	for _, r := range got {
		if seen[r.ID] {
			t.Errorf("duplicate id %d", r.ID)
		}
		seen[r.ID] = true
	}
	if stored := storedRecords(t, kv); len(stored) != 50 {
		t.Errorf("expected 50 persisted records, got %d", len(stored))
	}
}

func TestQuotaDegradation(t *testing.T) {
	kv := kvstore.NewMemStore()
	store := NewStore(kv)
	for i := int64(1); i <= 49; i++ {
		if err := store.Add(record(i, "p")); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	// Reject full-window snapshots; accept 10 or fewer records.
	kv.SetHook = func(key string, value []byte) error {
		var recs []MediaRecord
		json.Unmarshal(value, &recs)
		if len(recs) > 10 {
			return kvstore.ErrQuotaExceeded
		}
		return nil
	}

	if err := store.Add(record(50, "p")); err != nil {
		t.Fatalf("Add under quota pressure: %v", err)
	}

	stored := storedRecords(t, kv)
	if len(stored) != 10 {
		t.Fatalf("expected 10-record tier, got %d", len(stored))
	}
	if stored[0].ID != 50 {
		t.Errorf("newest record missing from degraded snapshot, got %d", stored[0].ID)
	}
	// In-memory view matches the durable tier.
	if got := store.List(); len(got) != 10 {
		t.Errorf("in-memory window %d does not match stored tier 10", len(got))
	}
}

func TestQuotaDegradationToSingleRecord(t *testing.T) {
	kv := kvstore.NewMemStore()
	store := NewStore(kv)
	for i := int64(1); i <= 20; i++ {
		store.Add(record(i, "p"))
	}

	kv.SetHook = func(key string, value []byte) error {
		var recs []MediaRecord
		json.Unmarshal(value, &recs)
		if len(recs) > 1 {
			return kvstore.ErrQuotaExceeded
		}
		return nil
	}

	newest := record(21, "the one that fits")
	if err := store.Add(newest); err != nil {
		t.Fatalf("Add: %v", err)
	}

	stored := storedRecords(t, kv)
	if len(stored) != 1 {
		t.Fatalf("expected exactly 1 stored record, got %d", len(stored))
	}
	if stored[0].ID != 21 {
		t.Errorf("final tier must hold the newly added record, got id %d", stored[0].ID)
	}
	if got := store.List(); len(got) != 1 || got[0].ID != 21 {
		t.Errorf("in-memory window does not match stored tier: %+v", got)
	}
}

func TestQuotaExhaustedAtAllTiers(t *testing.T) {
	kv := kvstore.NewMemStore()
	store := NewStore(kv)
	kv.SetHook = func(string, []byte) error { return kvstore.ErrQuotaExceeded }

	if err := store.Add(record(1, "p")); err == nil {
		t.Fatal("expected error when every tier fails")
	}
}

func TestProgressPlaceholderNeverPersisted(t *testing.T) {
	kv := kvstore.NewMemStore()
	store := NewStore(kv)

	placeholder := record(100, "rendering...")
	placeholder.IsProgress = true
	if err := store.Add(placeholder); err != nil {
		t.Fatalf("Add placeholder: %v", err)
	}

	if stored := storedRecords(t, kv); len(stored) != 0 {
		t.Errorf("placeholder leaked into storage: %+v", stored)
	}
	if got := store.List(); len(got) != 1 || !got[0].IsProgress {
		t.Errorf("placeholder must be visible in memory: %+v", got)
	}

	// Terminal record replaces the placeholder in place, same ID.
	terminal := record(100, "rendering...")
	if err := store.Add(terminal); err != nil {
		t.Fatalf("Add terminal: %v", err)
	}
	got := store.List()
	if len(got) != 1 || got[0].IsProgress || got[0].ID != 100 {
		t.Errorf("expected in-place replacement: %+v", got)
	}
	if stored := storedRecords(t, kv); len(stored) != 1 || stored[0].ID != 100 {
		t.Errorf("terminal record not persisted: %+v", stored)
	}
}

func TestLoadRoundTrip(t *testing.T) {
	kv := kvstore.NewMemStore()
	store := NewStore(kv)

	added := []MediaRecord{record(1, "first"), record(2, "second")}
	for _, r := range added {
		if err := store.Add(r); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	placeholder := record(3, "pending")
	placeholder.IsProgress = true
	store.Add(placeholder)

	// Fresh store over the same kv, as after a restart.
	reloaded := NewStore(kv)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}

	got := reloaded.List()
	if len(got) != 2 {
		t.Fatalf("expected 2 records after reload, got %d", len(got))
	}
	// Field-for-field identical, newest first; no placeholders survive.
	if got[0] != added[1] || got[1] != added[0] {
		t.Errorf("reload mismatch:\n got %+v\nwant %+v", got, added)
	}
	for _, r := range got {
		if r.IsProgress {
			t.Error("progress placeholder survived reload")
		}
	}
}

func TestRemoveRequiresConfirmation(t *testing.T) {
	kv := kvstore.NewMemStore()
	store := NewStore(kv)
	store.Add(record(1, "keep me"))

	declined := ConfirmerFunc(func(string) bool { return false })
	if err := store.Remove(1, declined); err != ErrNotConfirmed {
		t.Fatalf("expected ErrNotConfirmed, got %v", err)
	}
	if len(store.List()) != 1 {
		t.Error("record removed without confirmation")
	}

	if err := store.Remove(1, alwaysConfirm()); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if len(store.List()) != 0 {
		t.Error("record not removed after confirmation")
	}
}

func TestClear(t *testing.T) {
	kv := kvstore.NewMemStore()
	store := NewStore(kv)
	store.Add(record(1, "a"))
	store.Add(record(2, "b"))

	if err := store.Clear(alwaysConfirm()); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if len(store.List()) != 0 {
		t.Error("history not cleared")
	}
	if _, ok, _ := kv.Get("media_history"); ok {
		t.Error("stored history not deleted")
	}
}
