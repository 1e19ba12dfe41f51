package cache

import (
	"errors"
	"log/slog"
	"sync"
)

var ErrNotFound = errors.New("key not found in cache")

// Memory memoizes values by key for the lifetime of the process. It is safe
// for concurrent use.
type Memory[K comparable, V any] struct {
	mu sync.RWMutex
	m  map[K]V
}

func NewMemory[K comparable, V any]() *Memory[K, V] {
	return &Memory[K, V]{
		m: make(map[K]V),
	}
}

func (m *Memory[K, V]) Set(k K, v V) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.m[k] = v
	slog.Debug("new cache entry", "key", k)
}

func (m *Memory[K, V]) Get(k K) (v V, err error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, found := m.m[k]
	if !found {
		return v, ErrNotFound
	}
	return v, nil
}

// GetOrSet returns the cached value of key or computes and stores it with
// valueFunc. Errors are returned as is and never cached.
func (m *Memory[K, V]) GetOrSet(key K, valueFunc func() (V, error)) (v V, err error) {
	v, err = m.Get(key)
	if err == nil {
		return v, nil
	}

	v, err = valueFunc()
	if err != nil {
		return v, err
	}

	m.Set(key, v)
	return v, nil
}

func (m *Memory[K, V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.m)
}
