package storage

import (
	"context"
	"errors"
	"sync"
)

// ErrWriteDisabled is returned by MemorySlot.Put after FailWrites(true)
var ErrWriteDisabled = errors.New("memory slot: writes disabled")

// MemorySlot keeps blobs in a map. Nothing survives the process.
type MemorySlot struct {
	mu         sync.RWMutex
	data       map[string][]byte
	writes     int
	failWrites bool
}

// NewMemorySlot creates an empty in-memory slot
func NewMemorySlot() *MemorySlot {
	return &MemorySlot{data: make(map[string][]byte)}
}

// Get returns a copy of the blob under key
func (s *MemorySlot) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.data[key]
	if !ok {
		return nil, ErrNoValue
	}
	return append([]byte(nil), data...), nil
}

// Put stores a copy of data under key
func (s *MemorySlot) Put(ctx context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failWrites {
		return ErrWriteDisabled
	}
	s.data[key] = append([]byte(nil), data...)
	s.writes++
	return nil
}

// Writes returns how many Puts succeeded
func (s *MemorySlot) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}

// FailWrites makes subsequent Puts fail (or succeed again)
func (s *MemorySlot) FailWrites(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWrites = fail
}

// Close closes the slot
func (s *MemorySlot) Close() error {
	return nil
}
