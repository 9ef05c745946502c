package persist

import (
	"context"
	"sync"
)

// Memory keeps the snapshot in process memory.
//
// Thread-safety: all methods are safe for concurrent use via internal mutex.
type Memory struct {
	mu     sync.Mutex
	data   []byte
	saved  bool
	saves  int
	failOn error
}

// NewMemory creates an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{}
}

// Load returns a copy of the last saved blob.
func (m *Memory) Load(ctx context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.saved {
		return nil, ErrNoSnapshot
	}
	return append([]byte(nil), m.data...), nil
}

// Save stores a copy of data, or returns the injected failure.
func (m *Memory) Save(ctx context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failOn != nil {
		return m.failOn
	}
	m.data = append([]byte(nil), data...)
	m.saved = true
	m.saves++
	return nil
}

// Close is a no-op.
func (m *Memory) Close() error { return nil }

// FailSaves makes every subsequent Save return err. Pass nil to recover.
func (m *Memory) FailSaves(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failOn = err
}

// Saves returns the number of successful saves.
func (m *Memory) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
