package scopes

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"rgsearch/internal/discovery"
	"rgsearch/internal/domain"
)

// ErrEmptyScope is returned when a scope yields no search roots
var ErrEmptyScope = errors.New("scope has no search roots")

// ScopeProvider yields the root paths a search runs against
type ScopeProvider interface {
	Roots(ctx context.Context) ([]string, error)
	Description() string
}

// Paths is a literal list of roots
type Paths []string

func (p Paths) Roots(context.Context) ([]string, error) {
	roots := make([]string, 0, len(p))
	for _, path := range p {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
		}
		roots = append(roots, abs)
	}
	return roots, nil
}

func (p Paths) Description() string {
	return strings.Join(p, ", ")
}

// Named is a scope saved under a name
type Named struct {
	Manager ScopeManager
	Name    string
}

func (n Named) Roots(context.Context) ([]string, error) {
	paths, ok := n.Manager.Get(n.Name)
	if !ok {
		return nil, fmt.Errorf("scope %s does not exist", n.Name)
	}
	return paths, nil
}

func (n Named) Description() string {
	return "scope " + n.Name
}

// Last repeats the scope of the previous search
type Last struct {
	Manager ScopeManager
}

func (l Last) Roots(context.Context) ([]string, error) {
	scope, ok := l.Manager.Last()
	if !ok {
		return nil, fmt.Errorf("no previous search scope")
	}
	return scope.Paths, nil
}

func (l Last) Description() string {
	if scope, ok := l.Manager.Last(); ok {
		return scope.Description
	}
	return "last scope"
}

// Projects searches every project root found under Dir
type Projects struct {
	Discovery discovery.DiscoveryService
	Dir       string
}

func (p Projects) Roots(ctx context.Context) ([]string, error) {
	return p.Discovery.Discover(ctx, []string{p.Dir})
}

func (p Projects) Description() string {
	return "projects under " + p.Dir
}

const (
	lastScope      = "last"
	projectsPrefix = "projects:"
	namedPrefix    = "@"
)

// Parse selects a provider for a --scope value. "last" repeats the previous
// scope, "@name" uses a saved scope, "projects:<dir>" discovers project roots;
// an empty value searches paths (the working directory when paths is empty).
func Parse(value string, paths []string, manager ScopeManager, disco discovery.DiscoveryService) (ScopeProvider, error) {
	switch {
	case value == "":
		if len(paths) == 0 {
			return Paths{"."}, nil
		}
		return Paths(paths), nil
	case value == lastScope:
		return Last{Manager: manager}, nil
	case strings.HasPrefix(value, namedPrefix):
		name := strings.TrimPrefix(value, namedPrefix)
		if name == "" {
			return nil, fmt.Errorf("scope name is empty")
		}
		return Named{Manager: manager, Name: name}, nil
	case strings.HasPrefix(value, projectsPrefix):
		dir := strings.TrimPrefix(value, projectsPrefix)
		if dir == "" {
			dir = "."
		}
		return Projects{Discovery: disco, Dir: dir}, nil
	default:
		return nil, fmt.Errorf("unknown scope %q (want last, @name or projects:<dir>)", value)
	}
}

// Resolve evaluates a provider into a concrete scope. Repeated roots and roots
// nested under another root are left out so no file is searched twice.
func Resolve(ctx context.Context, p ScopeProvider) (domain.Scope, error) {
	roots, err := p.Roots(ctx)
	if err != nil {
		return domain.Scope{}, err
	}
	roots = pruneNested(roots)
	if len(roots) == 0 {
		return domain.Scope{}, fmt.Errorf("%s: %w", p.Description(), ErrEmptyScope)
	}
	return domain.Scope{Description: p.Description(), Paths: roots}, nil
}

func pruneNested(roots []string) []string {
	kept := make([]string, 0, len(roots))
	for i, root := range roots {
		clean := filepath.Clean(root)
		covered := false
		for j, other := range roots {
			if i == j {
				continue
			}
			o := filepath.Clean(other)
			if (o == clean && j < i) || (o != clean && within(clean, o)) {
				covered = true
				break
			}
		}
		if !covered {
			kept = append(kept, root)
		}
	}
	return kept
}

// within reports whether path lies below dir
func within(path, dir string) bool {
	prefix := dir
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	return strings.HasPrefix(path, prefix)
}
