package ripgrep

import (
	"strings"

	"rgsearch/internal/domain"
)

// Flags passed to rg
const (
	flagFiles         = "--files"
	flagFixedStrings  = "--fixed-strings"
	flagRegexp        = "--regexp"
	flagSearchZip     = "--search-zip"
	flagCaseSensitive = "--case-sensitive"
	flagIgnoreCase    = "--ignore-case"
	flagWordRegexp    = "--word-regexp"
	flagGlob          = "--glob"
	flagJSON          = "--json"
	flagNoIgnore      = "--no-ignore"
	flagHidden        = "--hidden"
	flagEngine        = "--engine"
	enginePCRE2       = "pcre2"
	flagMultiline     = "--multiline"
)

// Build turns a search specification into rg arguments (without the binary).
// The same specification always yields the same arguments.
func Build(spec domain.SearchSpecification) []string {
	args := make([]string, 0, 8+2*len(spec.Includes)+len(spec.Scope))

	if spec.FilesMode() {
		args = append(args, flagFiles)
	} else {
		if spec.Literal {
			args = append(args, flagFixedStrings)
		}
		// A leading dash would otherwise be parsed as a flag
		if (spec.UseRegex && !spec.Literal) || strings.HasPrefix(spec.Term, "-") {
			args = append(args, flagRegexp)
		}
		args = append(args, spec.Term)
	}

	if spec.SearchInArchives {
		args = append(args, flagSearchZip)
	}

	if spec.CaseSensitive {
		args = append(args, flagCaseSensitive)
	} else {
		args = append(args, flagIgnoreCase)
	}

	if spec.WholeWord {
		args = append(args, flagWordRegexp)
	}

	if spec.IsGlobInclude {
		if spec.FileNamePattern != "" {
			args = append(args, flagGlob, spec.FileNamePattern)
		}
	} else {
		for _, include := range spec.Includes {
			args = append(args, flagGlob, include)
		}
	}

	args = append(args, flagJSON)

	if spec.SearchGeneratedSources {
		args = append(args, flagNoIgnore, flagHidden)
	}

	if spec.UsePCRE {
		args = append(args, flagEngine, enginePCRE2)
	}

	if spec.Multiline() {
		args = append(args, flagMultiline)
	}

	args = append(args, spec.Scope...)
	return args
}
