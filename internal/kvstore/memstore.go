package kvstore

// MemStore is an in-memory Store for tests. SetHook, when non-nil, runs before
// each Set and may return an error (e.g. ErrQuotaExceeded) to simulate
// capacity failures.
type MemStore struct {
	values  map[string][]byte
	SetHook func(key string, value []byte) error
}

func NewMemStore() *MemStore {
	return &MemStore{values: map[string][]byte{}}
}

func (s *MemStore) Get(key string) ([]byte, bool, error) {
	v, ok := s.values[key]
	if !ok {
		return nil, false, nil
	}
	cp := make([]byte, len(v))
	copy(cp, v)
	return cp, true, nil
}

func (s *MemStore) Set(key string, value []byte) error {
	if s.SetHook != nil {
		if err := s.SetHook(key, value); err != nil {
			return err
		}
	}
	cp := make([]byte, len(value))
	copy(cp, value)
	s.values[key] = cp
	return nil
}

func (s *MemStore) Delete(key string) error {
	delete(s.values, key)
	return nil
}
