package search

import (
	"rgsearch/internal/domain"
	"rgsearch/internal/ripgrep"
)

// NewLocationDetail converts one submatch of a match event into a highlight
// location. Offsets stay in bytes, as rg reports them.
func NewLocationDetail(m ripgrep.Match, sm ripgrep.Submatch) domain.LocationDetail {
	return domain.LocationDetail{
		Line:        m.LineNumber,
		Column:      sm.Start + 1,
		MatchedText: sm.Text,
		StartOffset: m.AbsoluteOffset + int64(sm.Start),
		EndOffset:   m.AbsoluteOffset + int64(sm.End),
		MarkLength:  len(sm.Text),
		LineText:    m.LineText,
	}
}

// locationDetails builds one location per submatch, in reported order
func locationDetails(m ripgrep.Match) []domain.LocationDetail {
	details := make([]domain.LocationDetail, 0, len(m.Submatches))
	for _, sm := range m.Submatches {
		details = append(details, NewLocationDetail(m, sm))
	}
	return details
}
