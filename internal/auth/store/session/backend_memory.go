package session

import (
	"bytes"
	"context"
	"sync"
	"time"

	"abhaya/pkg/platform/sentinel"
)

// MemoryBackend keeps records in process memory. Expiry is left to the Store.
type MemoryBackend struct {
	mu   sync.Mutex
	data map[string][]byte
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: make(map[string][]byte)}
}

func (b *MemoryBackend) Load(_ context.Context, key string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	v, ok := b.data[key]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return bytes.Clone(v), nil
}

func (b *MemoryBackend) Update(_ context.Context, key string, _ time.Duration, fn UpdateFunc) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var current []byte
	if v, ok := b.data[key]; ok {
		current = bytes.Clone(v)
	}
	next, err := fn(current)
	if err != nil {
		return err
	}
	if next == nil {
		delete(b.data, key)
		return nil
	}
	b.data[key] = bytes.Clone(next)
	return nil
}

func (b *MemoryBackend) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.data, key)
	return nil
}

// Put writes raw bytes under key, bypassing record encoding.
func (b *MemoryBackend) Put(key string, raw []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data[key] = bytes.Clone(raw)
}
