package results

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rgsearch/internal/domain"
)

func record(path string, matches int) domain.MatchRecord {
	r := domain.MatchRecord{File: domain.FileHandle{Path: path}}
	for i := 0; i < matches; i++ {
		r.Details = append(r.Details, domain.LocationDetail{Line: i + 1, Column: 1})
	}
	return r
}

func paths(records []domain.MatchRecord) []string {
	var out []string
	for _, r := range records {
		out = append(out, r.File.Path)
	}
	return out
}

func TestStoreKeepsArrivalOrder(t *testing.T) {
	s := NewStore()
	s.AddMatchingObject(record("/b", 1))
	s.AddMatchingObject(record("/a", 3))
	s.AddMatchingObject(record("/c", 2))

	assert.Equal(t, []string{"/b", "/a", "/c"}, paths(s.Records()))
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, 6, s.MatchCount())

	r, ok := s.Get("/a")
	require.True(t, ok)
	assert.Equal(t, 3, r.MatchCount())
}

func TestStoreReplacesSameFile(t *testing.T) {
	s := NewStore()
	s.AddMatchingObject(record("/a", 1))
	s.AddMatchingObject(record("/b", 1))
	s.AddMatchingObject(record("/a", 4))

	assert.Equal(t, []string{"/a", "/b"}, paths(s.Records()))
	assert.Equal(t, 5, s.MatchCount())
}

func TestStoreSorted(t *testing.T) {
	s := NewStore()
	s.AddMatchingObject(record("/b", 1))
	s.AddMatchingObject(record("/a", 1))
	s.AddMatchingObject(record("/c", 2))

	assert.Equal(t, []string{"/a", "/b", "/c"}, paths(s.Sorted(SortByPath)))
	assert.Equal(t, []string{"/c", "/b", "/a"}, paths(s.Sorted(SortByMatches)))
	assert.Equal(t, []string{"/b", "/a", "/c"}, paths(s.Sorted(SortByArrival)))
}

func TestStoreClear(t *testing.T) {
	s := NewStore()
	s.AddMatchingObject(record("/a", 2))
	s.Clear()

	assert.Zero(t, s.Len())
	assert.Zero(t, s.MatchCount())
	assert.Empty(t, s.Records())
	_, ok := s.Get("/a")
	assert.False(t, ok)
}

func TestStoreConcurrentWriters(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				s.AddMatchingObject(record(fmt.Sprintf("/w%d/%d", w, i), 1))
				_ = s.Records()
			}
		}(w)
	}
	wg.Wait()

	assert.Equal(t, 200, s.Len())
	assert.Equal(t, 200, s.MatchCount())
}
