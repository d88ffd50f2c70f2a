package cache

import (
	"context"
	"sync"
	"time"
)

var (
	_ Cache   = (*Memory)(nil)
	_ Counter = (*Memory)(nil)
)

type memoryEntry struct {
	value     []byte
	counter   int64
	expiresAt time.Time
}

// Memory is an in-process Cache for tests and single-node development. The
// clock is injectable so expiry behavior is testable without sleeping.
type Memory struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	now     func() time.Time
}

// NewMemory creates an in-process cache using the wall clock.
func NewMemory() *Memory {
	return NewMemoryWithClock(time.Now)
}

// NewMemoryWithClock creates an in-process cache with a custom clock.
func NewMemoryWithClock(now func() time.Time) *Memory {
	return &Memory{
		entries: make(map[string]*memoryEntry),
		now:     now,
	}
}

// live returns the entry at key if present and unexpired, pruning it
// otherwise. Callers hold mu.
func (m *Memory) live(key string) *memoryEntry {
	e, ok := m.entries[key]
	if !ok {
		return nil
	}
	if !e.expiresAt.IsZero() && !m.now().Before(e.expiresAt) {
		delete(m.entries, key)
		return nil
	}
	return e
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := m.live(key)
	if e == nil || e.value == nil {
		return nil, ErrMiss
	}
	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, nil
}

func (m *Memory) Put(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := make([]byte, len(value))
	copy(stored, value)
	m.entries[key] = &memoryEntry{value: stored, expiresAt: m.now().Add(ttl)}
	return nil
}

func (m *Memory) Refresh(_ context.Context, key string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e := m.live(key); e != nil {
		e.expiresAt = m.now().Add(ttl)
	}
	return nil
}

func (m *Memory) IncrBy(_ context.Context, key string, delta int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := m.live(key)
	if e == nil {
		e = &memoryEntry{}
		m.entries[key] = e
	}
	e.counter += delta
	return e.counter, nil
}

func (m *Memory) Expire(_ context.Context, key string, ttl time.Duration) error {
	return m.Refresh(context.Background(), key, ttl)
}
