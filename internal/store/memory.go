package store

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryKV is an in-memory KV used by tests and the adapter test suite.
//
// MaxBytes, when non-zero, caps the total stored payload size; a Set that
// would exceed it fails with ErrQuotaExceeded without modifying the slot.
// FailNextSet makes the next Set return that error instead of writing;
// FailSetKey/FailSetErr fail every Set of one specific key. All exist to
// simulate the quota-exceeded failure mode at different points of a write.
//
// Thread-safety: all methods are safe for concurrent use via internal mutex,
// although the application itself is single-writer.
type MemoryKV struct {
	mu          sync.Mutex
	slots       map[string]string
	MaxBytes    int
	FailNextSet error
	FailSetKey  string
	FailSetErr  error
}

// NewMemoryKV creates an empty in-memory KV.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{slots: make(map[string]string)}
}

// Get returns the value stored under key, if any.
func (m *MemoryKV) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.slots[key]
	return v, ok, nil
}

// Set stores value under key, honoring the configured failure injections.
func (m *MemoryKV) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailNextSet != nil {
		err := m.FailNextSet
		m.FailNextSet = nil
		return err
	}
	if m.FailSetKey != "" && key == m.FailSetKey {
		return m.FailSetErr
	}

	if m.MaxBytes > 0 {
		total := len(value)
		for k, v := range m.slots {
			if k != key {
				total += len(v)
			}
		}
		if total > m.MaxBytes {
			return ErrQuotaExceeded
		}
	}

	m.slots[key] = value
	return nil
}

// Delete removes the key. Deleting a missing key is not an error.
func (m *MemoryKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.slots, key)
	return nil
}

// Keys returns all keys with the given prefix, sorted.
func (m *MemoryKV) Keys(_ context.Context, prefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var keys []string
	for k := range m.slots {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}
