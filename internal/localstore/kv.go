package localstore

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrCorrupt means a stored value could not be decoded.
	ErrCorrupt = errors.New("local storage corrupted")
	// ErrQuotaExceeded means a write would overflow the backend's quota.
	ErrQuotaExceeded = errors.New("local storage quota exceeded")
)

// UpdateFunc receives the current value (ok=false when the key is absent)
// and returns the value to write back.
type UpdateFunc func(old []byte, ok bool) ([]byte, error)

// KV is a durable string-keyed value store.
// Update must apply fn atomically with respect to other writers of key.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Update(ctx context.Context, key string, fn UpdateFunc) error
}

// MemoryKV keeps values in process memory. Quota is the total value size
// in bytes; zero means unlimited.
type MemoryKV struct {
	mu     sync.Mutex
	values map[string][]byte
	Quota  int
}

// NewMemoryKV creates an empty in-memory backend.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{values: make(map[string][]byte)}
}

func (m *MemoryKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.values[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (m *MemoryKV) Update(_ context.Context, key string, fn UpdateFunc) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	old, ok := m.values[key]
	next, err := fn(old, ok)
	if err != nil {
		return err
	}
	if m.Quota > 0 {
		total := len(next)
		for k, v := range m.values {
			if k != key {
				total += len(v)
			}
		}
		if total > m.Quota {
			return ErrQuotaExceeded
		}
	}
	m.values[key] = next
	return nil
}

// Set writes raw bytes under key, bypassing any decoding (tests use it to
// simulate corruption).
func (m *MemoryKV) Set(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
}
