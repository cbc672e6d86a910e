package kvstore

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/rs/zerolog/log"
)

// FileStore persists each key as a gzip-compressed file under a base
// directory. An optional quota bounds the on-disk (compressed) size of any
// single value; exceeding it returns ErrQuotaExceeded without touching the
// existing file.
type FileStore struct {
	dir   string
	quota int64 // max compressed bytes per value, 0 = unlimited
}

// NewFileStore creates the base directory if needed. quotaBytes of 0 disables
// the per-value cap.
func NewFileStore(dir string, quotaBytes int64) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &FileStore{dir: dir, quota: quotaBytes}, nil
}

// path maps a logical key to a file path. Keys are sanitized so a key can
// never escape the base directory.
func (s *FileStore) path(key string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_' || r == '.':
			return r
		}
		return '_'
	}, key)
	return filepath.Join(s.dir, safe+".gz")
}

func (s *FileStore) Get(key string) ([]byte, bool, error) {
	f, err := os.Open(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("open %s: %w", key, err)
	}
	defer f.Close()

	zr, err := gzip.NewReader(f)
	if err != nil {
		return nil, false, fmt.Errorf("decompress %s: %w", key, err)
	}
	defer zr.Close()

	data, err := io.ReadAll(zr)
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", key, err)
	}
	return data, true, nil
}

func (s *FileStore) Set(key string, value []byte) error {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(value); err != nil {
		return fmt.Errorf("compress %s: %w", key, err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("compress %s: %w", key, err)
	}

	if s.quota > 0 && int64(buf.Len()) > s.quota {
		log.Debug().
			Str("key", key).
			Int("compressedBytes", buf.Len()).
			Int64("quota", s.quota).
			Msg("Value exceeds store quota")
		return ErrQuotaExceeded
	}

	// Write-then-rename so a crash mid-write never corrupts the stored value.
	tmp := s.path(key) + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := os.Rename(tmp, s.path(key)); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("commit %s: %w", key, err)
	}
	return nil
}

func (s *FileStore) Delete(key string) error {
	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}
