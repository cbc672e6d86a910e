// Package kvstore provides the local key-value persistence layer backing
// credentials and generation history. Values are opaque byte slices; callers
// own serialization. Capacity failures are reported as ErrQuotaExceeded so
// callers can degrade rather than silently lose data.
package kvstore

import "errors"

// ErrQuotaExceeded is returned by Set when the value cannot be stored within
// the configured capacity. Callers are expected to retry with a smaller value.
var ErrQuotaExceeded = errors.New("kvstore: storage quota exceeded")

// Store is the persistence interface shared by credentials and history.
// Get returns (nil, false, nil) when the key does not exist.
type Store interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	Delete(key string) error
}
