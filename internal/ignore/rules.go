// Package ignore implements the user-defined ignore list applied on top of
// the search tool's own ignore handling.
package ignore

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Kind tags the variant held by a Rule
type Kind int

const (
	KindGlob      Kind = iota // file name pattern
	KindRegex                 // regular expression found anywhere in the full path
	KindDirectory             // the path itself or anything below it
)

func (k Kind) String() string {
	switch k {
	case KindGlob:
		return "glob"
	case KindRegex:
		return "regex"
	case KindDirectory:
		return "directory"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Rule is one ignore criterion
type Rule struct {
	Kind    Kind
	Pattern string

	globs []string       // KindGlob: the comma-separated alternatives
	re    *regexp.Regexp // KindRegex
}

// Glob creates a rule matching the file's base name. A comma-separated list
// such as "*.class, *.jar" matches any of its alternatives; commas inside
// braces belong to the glob, as in "*.{class,jar}".
func Glob(pattern string) (Rule, error) {
	var globs []string
	for _, p := range splitAlternatives(pattern) {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !doublestar.ValidatePattern(p) {
			return Rule{}, fmt.Errorf("invalid glob pattern %q", p)
		}
		globs = append(globs, p)
	}
	if len(globs) == 0 {
		return Rule{}, fmt.Errorf("empty glob pattern")
	}
	return Rule{Kind: KindGlob, Pattern: pattern, globs: globs}, nil
}

// splitAlternatives splits on commas outside braces
func splitAlternatives(pattern string) []string {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(pattern); i++ {
		switch pattern[i] {
		case '\\':
			i++
		case '{':
			depth++
		case '}':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				parts = append(parts, pattern[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, pattern[start:])
}

// Regex creates a rule searching the full path
func Regex(pattern string) (Rule, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Rule{}, fmt.Errorf("invalid regular expression %q: %w", pattern, err)
	}
	return Rule{Kind: KindRegex, Pattern: pattern, re: re}, nil
}

// DirectoryPrefix creates a rule matching path and everything nested under it
func DirectoryPrefix(path string) Rule {
	return Rule{Kind: KindDirectory, Pattern: filepath.Clean(path)}
}

// Matches reports whether the rule excludes path
func (r Rule) Matches(path string) bool {
	switch r.Kind {
	case KindGlob:
		name := filepath.Base(path)
		for _, g := range r.globs {
			if ok, err := doublestar.Match(g, name); err == nil && ok {
				return true
			}
		}
		return false

	case KindRegex:
		return r.re != nil && r.re.MatchString(path)

	case KindDirectory:
		return isWithin(r.Pattern, filepath.Clean(path))

	default:
		return false
	}
}

func isWithin(dir, path string) bool {
	if path == dir {
		return true
	}
	prefix := dir
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	return strings.HasPrefix(path, prefix)
}

// Evaluator answers whether a file is ignored by any of its rules
type Evaluator struct {
	rules []Rule
}

// NewEvaluator creates an evaluator over rules
func NewEvaluator(rules ...Rule) *Evaluator {
	return &Evaluator{rules: append([]Rule(nil), rules...)}
}

// IsIgnored reports whether any rule matches path
func (e *Evaluator) IsIgnored(path string) bool {
	if e == nil {
		return false
	}
	for _, r := range e.rules {
		if r.Matches(path) {
			return true
		}
	}
	return false
}

// Rules returns a copy of the evaluator's rules
func (e *Evaluator) Rules() []Rule {
	if e == nil {
		return nil
	}
	return append([]Rule(nil), e.rules...)
}

// Len returns the number of rules
func (e *Evaluator) Len() int {
	if e == nil {
		return 0
	}
	return len(e.rules)
}
