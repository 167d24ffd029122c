package index

import (
	"bytes"
	"sort"
	"sync"

	"github.com/occstore/engine/pkg/record"
)

// OrderedProvider is the ordered key/value contract the transactional
// core relies on to locate a record.Envelope by key, and to scan a key
// range, independent of how the index organizes keys internally.
type OrderedProvider interface {
	// Get returns the envelope for key, or nil if not present.
	Get(key []byte) *record.Envelope
	// Put installs env under key, replacing any prior envelope.
	Put(key []byte, env *record.Envelope)
	// Scan calls fn for every key in [start, end) in ascending order,
	// stopping early if fn returns false.
	Scan(start, end []byte, fn func(key []byte, env *record.Envelope) bool)
}

// SortedSlice is a single in-memory OrderedProvider backed by a
// sorted slice of entries, sufficient for tests and for a development
// engine that never needs production-scale indexing.
type SortedSlice struct {
	mu      sync.RWMutex
	entries []entry
}

type entry struct {
	key []byte
	env *record.Envelope
}

// NewSortedSlice constructs an empty provider.
func NewSortedSlice() *SortedSlice {
	return &SortedSlice{}
}

func (s *SortedSlice) search(key []byte) (int, bool) {
	i := sort.Search(len(s.entries), func(i int) bool {
		return bytes.Compare(s.entries[i].key, key) >= 0
	})
	found := i < len(s.entries) && bytes.Equal(s.entries[i].key, key)
	return i, found
}

// Get returns the envelope for key, or nil if absent.
func (s *SortedSlice) Get(key []byte) *record.Envelope {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, found := s.search(key)
	if !found {
		return nil
	}
	return s.entries[i].env
}

// Put installs env under key, inserting in sorted position or replacing
// an existing entry.
func (s *SortedSlice) Put(key []byte, env *record.Envelope) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, found := s.search(key)
	if found {
		s.entries[i].env = env
		return
	}
	s.entries = append(s.entries, entry{})
	copy(s.entries[i+1:], s.entries[i:])
	s.entries[i] = entry{key: append([]byte(nil), key...), env: env}
}

// Scan calls fn for every key in [start, end) in ascending order. A nil
// end means "to the end of the key space".
func (s *SortedSlice) Scan(start, end []byte, fn func(key []byte, env *record.Envelope) bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, _ := s.search(start)
	for ; i < len(s.entries); i++ {
		e := s.entries[i]
		if end != nil && bytes.Compare(e.key, end) >= 0 {
			return
		}
		if !fn(e.key, e.env) {
			return
		}
	}
}

var _ OrderedProvider = (*SortedSlice)(nil)
