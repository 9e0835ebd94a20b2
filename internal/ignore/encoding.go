package ignore

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// Persisted entry prefixes
const (
	PrefixPath    = "f: " // file or folder
	PrefixRegex   = "x: "
	PrefixPattern = "s: "
	prefixLen     = 3
)

// ErrDropped marks an entry that is silently left out when loading
var ErrDropped = errors.New("ignore entry dropped")

// StatFunc reports file information, os.Stat in production
type StatFunc func(path string) (os.FileInfo, error)

// ParseEntry decodes one persisted entry. Entries for paths that do not exist
// return ErrDropped.
func ParseEntry(entry string, stat StatFunc) (Rule, error) {
	if len(entry) < prefixLen {
		return Rule{}, fmt.Errorf("%w: unknown entry %q", ErrDropped, entry)
	}
	value := entry[prefixLen:]

	switch entry[:prefixLen] {
	case PrefixPattern:
		return Glob(value)

	case PrefixRegex:
		return Regex(value)

	case PrefixPath:
		if stat == nil {
			stat = os.Stat
		}
		// Matched against absolute file paths
		abs, err := filepath.Abs(value)
		if err != nil {
			return Rule{}, fmt.Errorf("%w: %s: %v", ErrDropped, value, err)
		}
		if _, err := stat(abs); err != nil {
			return Rule{}, fmt.Errorf("%w: %s: %v", ErrDropped, value, err)
		}
		// Regular files end up matching only themselves
		return DirectoryPrefix(abs), nil

	default:
		return Rule{}, fmt.Errorf("%w: unknown entry type %q", ErrDropped, entry)
	}
}

// LoadEntries decodes the persisted ignore list, keeping the entries' order.
// Invalid or stale entries are logged and left out.
func LoadEntries(entries []string, stat StatFunc) []Rule {
	rules := make([]Rule, 0, len(entries))
	for _, entry := range entries {
		r, err := ParseEntry(entry, stat)
		if err != nil {
			if !errors.Is(err, ErrDropped) {
				log.Printf("Skipping ignore list entry %q: %v", entry, err)
			}
			continue
		}
		rules = append(rules, r)
	}
	return rules
}

// String encodes the rule in its persisted form
func (r Rule) String() string {
	switch r.Kind {
	case KindGlob:
		return PrefixPattern + r.Pattern
	case KindRegex:
		return PrefixRegex + r.Pattern
	case KindDirectory:
		return PrefixPath + r.Pattern
	default:
		return ""
	}
}

// EncodeAll encodes rules for persistence
func EncodeAll(rules []Rule) []string {
	out := make([]string, 0, len(rules))
	for _, r := range rules {
		if s := r.String(); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Remove returns entries without the ones equal to target, ignoring
// surrounding whitespace
func Remove(entries []string, target string) ([]string, bool) {
	target = strings.TrimSpace(target)
	out := make([]string, 0, len(entries))
	removed := false
	for _, e := range entries {
		if strings.TrimSpace(e) == target {
			removed = true
			continue
		}
		out = append(out, e)
	}
	return out, removed
}
