// Package history keeps the ordered, size-bounded record of completed
// generations. Records live in memory, newest first, and every mutation
// persists a durable snapshot to the key-value store. When the store reports
// a capacity failure the snapshot degrades in tiers — full window, then 10
// records, then just the newest one — so history is never silently lost
// without at least attempting smaller snapshots.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/opensourcejay/cameo-go/internal/kvstore"
)

const storageKey = "media_history"

// Capacity tiers. MaxRecords bounds the in-memory window; the remaining
// tiers are persistence fallbacks under storage pressure.
var persistTiers = []int{MaxRecords, 10, 1}

const MaxRecords = 50

// MediaKind distinguishes image and video records.
type MediaKind string

const (
	KindImage MediaKind = "image"
	KindVideo MediaKind = "video"
)

// MediaRecord is one entry in the generation history. ID is the creation
// timestamp in unix milliseconds; a progress placeholder shares its ID with
// the terminal record that replaces it, keeping caller-side identity stable.
type MediaRecord struct {
	ID         int64     `json:"id"`
	Prompt     string    `json:"prompt"`
	Kind       MediaKind `json:"kind"`
	URL        string    `json:"url"`
	CreatedAt  time.Time `json:"createdAt"`
	IsProgress bool      `json:"isProgress,omitempty"`
}

// NewRecordID returns an ID for a record created now.
func NewRecordID() int64 {
	return time.Now().UnixMilli()
}

// Confirmer approves destructive operations. Injected by the caller; the
// store itself never prompts.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmerFunc adapts a function to the Confirmer interface.
type ConfirmerFunc func(prompt string) bool

func (f ConfirmerFunc) Confirm(prompt string) bool { return f(prompt) }

// ErrNotConfirmed is returned when the confirmer declines a destructive
// operation.
var ErrNotConfirmed = errors.New("history: operation not confirmed")

// Store is the bounded history collection.
type Store struct {
	kv      kvstore.Store
	records []MediaRecord // newest first
}

func NewStore(kv kvstore.Store) *Store {
	return &Store{kv: kv}
}

// Load restores history from the key-value store. Stray progress
// placeholders from an interrupted run are dropped.
func (s *Store) Load() error {
	raw, ok, err := s.kv.Get(storageKey)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}
	if !ok {
		s.records = nil
		return nil
	}

	var records []MediaRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		// A corrupt history blob is not worth failing startup over.
		log.Warn().Err(err).Msg("Stored history is unreadable, starting empty")
		s.records = nil
		return nil
	}

	s.records = s.records[:0]
	for _, r := range records {
		if r.IsProgress {
			continue
		}
		s.records = append(s.records, r)
	}
	if len(s.records) > MaxRecords {
		s.records = s.records[:MaxRecords]
	}
	return nil
}

// Add inserts record newest-first, replacing in place when a record with the
// same ID exists (the progress-placeholder handoff), then persists. The
// in-memory window is truncated to whatever tier was durably stored, so
// List() never claims more than survived persistence.
func (s *Store) Add(record MediaRecord) error {
	if idx := s.indexOf(record.ID); idx >= 0 {
		s.records[idx] = record
	} else {
		s.records = append([]MediaRecord{record}, s.records...)
	}
	if len(s.records) > MaxRecords {
		s.records = s.records[:MaxRecords]
	}

	// Progress placeholders are visible in memory but never persisted.
	if record.IsProgress {
		return nil
	}
	return s.persist(record)
}

// Remove deletes the record with id after confirmation.
func (s *Store) Remove(id int64, confirm Confirmer) error {
	if !confirm.Confirm("Delete this item?") {
		return ErrNotConfirmed
	}
	idx := s.indexOf(id)
	if idx < 0 {
		return nil
	}
	s.records = append(s.records[:idx], s.records[idx+1:]...)
	return s.persistSnapshot(s.persistable())
}

// Clear empties the history after confirmation.
func (s *Store) Clear(confirm Confirmer) error {
	if !confirm.Confirm("Clear all history? This cannot be undone.") {
		return ErrNotConfirmed
	}
	s.records = nil
	if err := s.kv.Delete(storageKey); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

// Discard drops an in-flight placeholder after a failed generation. Terminal
// records are caller-visible and go through Remove with confirmation.
func (s *Store) Discard(id int64) {
	idx := s.indexOf(id)
	if idx >= 0 && s.records[idx].IsProgress {
		s.records = append(s.records[:idx], s.records[idx+1:]...)
	}
}

// List returns the records newest first. The slice is a copy.
func (s *Store) List() []MediaRecord {
	out := make([]MediaRecord, len(s.records))
	copy(out, s.records)
	return out
}

func (s *Store) indexOf(id int64) int {
	for i, r := range s.records {
		if r.ID == id {
			return i
		}
	}
	return -1
}

// persistable returns the terminal records eligible for storage, newest
// first, already capped at the top tier.
func (s *Store) persistable() []MediaRecord {
	out := make([]MediaRecord, 0, len(s.records))
	for _, r := range s.records {
		if r.IsProgress {
			continue
		}
		out = append(out, r)
	}
	if len(out) > MaxRecords {
		out = out[:MaxRecords]
	}
	return out
}

// persist writes the snapshot through the degradation tiers. newest is the
// record that triggered the write; the final tier stores it alone.
func (s *Store) persist(newest MediaRecord) error {
	snapshot := s.persistable()

	var lastErr error
	for _, tier := range persistTiers {
		window := snapshot
		if len(window) > tier {
			window = window[:tier]
		}
		if tier == 1 {
			window = []MediaRecord{newest}
		}

		err := s.persistSnapshot(window)
		if err == nil {
			s.truncateTo(window)
			return nil
		}
		if !errors.Is(err, kvstore.ErrQuotaExceeded) {
			return err
		}
		log.Warn().Int("tier", tier).Msg("History snapshot exceeded storage quota, degrading")
		lastErr = err
	}
	return fmt.Errorf("persist history: %w", lastErr)
}

func (s *Store) persistSnapshot(window []MediaRecord) error {
	raw, err := json.Marshal(window)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	if err := s.kv.Set(storageKey, raw); err != nil {
		if errors.Is(err, kvstore.ErrQuotaExceeded) {
			return err
		}
		return fmt.Errorf("persist history: %w", err)
	}
	return nil
}

// truncateTo aligns the in-memory window with what was durably stored,
// keeping any in-memory progress placeholder at the front.
func (s *Store) truncateTo(stored []MediaRecord) {
	if len(stored) >= len(s.persistable()) {
		return
	}
	kept := make([]MediaRecord, 0, len(stored)+1)
	for _, r := range s.records {
		if r.IsProgress {
			kept = append(kept, r)
		}
	}
	kept = append(kept, stored...)
	s.records = kept
}
