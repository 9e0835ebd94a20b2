package results

import (
	"sort"
	"sync"

	"rgsearch/internal/domain"
)

// SortMode orders the records returned by Sorted
type SortMode int

const (
	SortByArrival SortMode = iota
	SortByPath
	SortByMatches
)

// Store is the in-memory result model of a search. It is safe for
// concurrent use, so sessions may feed it while a view reads it.
type Store struct {
	mu      sync.RWMutex
	order   []string
	records map[string]domain.MatchRecord
	matches int
}

// NewStore creates an empty result store
func NewStore() *Store {
	return &Store{
		records: make(map[string]domain.MatchRecord),
	}
}

// AddMatchingObject stores a record. A second record for the same file
// replaces the first but keeps its position.
func (s *Store) AddMatchingObject(record domain.MatchRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := record.File.Path
	if prev, ok := s.records[path]; ok {
		s.matches -= prev.MatchCount()
	} else {
		s.order = append(s.order, path)
	}
	s.records[path] = record
	s.matches += record.MatchCount()
}

func (s *Store) Get(path string) (domain.MatchRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[path]
	return r, ok
}

// Records returns a copy of all records in arrival order
func (s *Store) Records() []domain.MatchRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.MatchRecord, 0, len(s.order))
	for _, path := range s.order {
		result = append(result, s.records[path])
	}
	return result
}

// Sorted returns the records ordered by mode
func (s *Store) Sorted(mode SortMode) []domain.MatchRecord {
	records := s.Records()
	switch mode {
	case SortByPath:
		sort.SliceStable(records, func(i, j int) bool {
			return records[i].File.Path < records[j].File.Path
		})
	case SortByMatches:
		sort.SliceStable(records, func(i, j int) bool {
			return records[i].MatchCount() > records[j].MatchCount()
		})
	}
	return records
}

// Len returns the number of files with results
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// MatchCount returns the total number of highlighted occurrences
func (s *Store) MatchCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.matches
}

// Clear drops every record, as when a result tab is cleaned up
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = nil
	s.records = make(map[string]domain.MatchRecord)
	s.matches = 0
}
