package syndication

import (
	"mediacontacts/internal/domain"
	"mediacontacts/internal/ports"
)

// MemoryStore is an in-memory FingerprintStore with optional capacity.
// When capacity is positive, inserting past it evicts the oldest-inserted
// fingerprint. Capacity 0 means unbounded.
//
// The store is not safe for concurrent use; a detector instance owns one
// store and batches must be serialized per detector.
type MemoryStore struct {
	capacity int
	entries  map[string]domain.Fingerprint
	order    []string
}

var _ ports.FingerprintStore = (*MemoryStore)(nil)

// NewMemoryStore builds a store capped at capacity fingerprints.
func NewMemoryStore(capacity int) *MemoryStore {
	return &MemoryStore{
		capacity: capacity,
		entries:  make(map[string]domain.Fingerprint),
	}
}

// Get returns the fingerprint stored under key.
func (s *MemoryStore) Get(key string) (domain.Fingerprint, bool) {
	fp, ok := s.entries[key]
	return fp, ok
}

// Put stores fp under key, evicting the oldest entry when over capacity.
func (s *MemoryStore) Put(key string, fp domain.Fingerprint) {
	if _, exists := s.entries[key]; !exists {
		s.order = append(s.order, key)
		if s.capacity > 0 && len(s.order) > s.capacity {
			oldest := s.order[0]
			s.order = s.order[1:]
			delete(s.entries, oldest)
		}
	}
	s.entries[key] = fp
}

// Clear drops every fingerprint.
func (s *MemoryStore) Clear() {
	s.entries = make(map[string]domain.Fingerprint)
	s.order = nil
}

// Len reports the number of stored fingerprints.
func (s *MemoryStore) Len() int {
	return len(s.entries)
}

// Range visits fingerprints in insertion order until fn returns false.
func (s *MemoryStore) Range(fn func(key string, fp domain.Fingerprint) bool) {
	for _, key := range s.order {
		fp, ok := s.entries[key]
		if !ok {
			continue
		}
		if !fn(key, fp) {
			return
		}
	}
}
