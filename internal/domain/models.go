package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

// SearchSpecification describes one search request
type SearchSpecification struct {
	Term string

	CaseSensitive          bool
	WholeWord              bool
	Literal                bool
	UseRegex               bool
	UsePCRE                bool
	SearchInArchives       bool
	SearchGeneratedSources bool // also search hidden files and files excluded by .gitignore
	UseIgnoreList          bool

	FileNamePattern string   // single glob, used when IsGlobInclude is set or in files mode
	IsGlobInclude   bool
	Includes        []string // include globs, one --glob pair each

	Scope []string // root files and directories
}

// Clone returns a deep copy so a running session never shares slices with the caller
func (s SearchSpecification) Clone() SearchSpecification {
	c := s
	c.Includes = append([]string(nil), s.Includes...)
	c.Scope = append([]string(nil), s.Scope...)
	return c
}

// FilesMode reports whether the search lists file names instead of searching content
func (s SearchSpecification) FilesMode() bool {
	return s.Term == "" && s.FileNamePattern != ""
}

// Multiline reports whether the term spans several lines
func (s SearchSpecification) Multiline() bool {
	return strings.Contains(s.Term, "\n")
}

// FileHandle identifies a live file on disk
type FileHandle struct {
	Path    string // absolute, cleaned
	Name    string // base name
	Size    int64
	ModTime time.Time
}

// LocationDetail is one highlighted match occurrence
type LocationDetail struct {
	Line        int    // 1-based
	Column      int    // 1-based byte column within LineText
	MatchedText string
	StartOffset int64 // absolute byte offset into the file
	EndOffset   int64 // exclusive
	MarkLength  int   // highlight length in bytes
	LineText    string
}

// CharColumn converts the byte column to a 1-based rune column for display.
// Invalid UTF-8 counts one rune per byte.
func (d LocationDetail) CharColumn() int {
	col := d.Column - 1
	if col <= 0 {
		return 1
	}
	if col > len(d.LineText) {
		col = len(d.LineText)
	}
	return utf8.RuneCountInString(d.LineText[:col]) + 1
}

// MatchRecord is the aggregated result for one file
type MatchRecord struct {
	File     FileHandle
	Encoding string
	Details  []LocationDetail
}

// MatchCount returns the number of highlighted occurrences
func (r MatchRecord) MatchCount() int {
	return len(r.Details)
}

// Scope describes the roots a search ran against
type Scope struct {
	Description string
	Paths       []string
}
