package discovery

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"rgsearch/internal/eventbus"
)

// DefaultMaxDepth bounds how far below a root project markers are looked for
const DefaultMaxDepth = 5

// projectMarkers are directory entries that make their parent a project root
var projectMarkers = map[string]bool{
	".git": true,
	".hg":  true,
	".svn": true,
}

// skipDirs are never descended into
var skipDirs = map[string]bool{
	"node_modules":  true,
	"vendor":        true,
	"dist":          true,
	"build":         true,
	"target":        true,
	"__pycache__":   true,
	".gradle":       true,
	".pytest_cache": true,
	".tox":          true,
	"venv":          true,
	".venv":         true,
}

// DiscoveryService finds project roots below a set of directories
type DiscoveryService interface {
	Discover(ctx context.Context, roots []string) ([]string, error)
}

type discoveryService struct {
	bus      eventbus.EventBus
	maxDepth int
}

// NewDiscoveryService creates a discovery service; bus may be nil
func NewDiscoveryService(bus eventbus.EventBus) DiscoveryService {
	return &discoveryService{bus: bus, maxDepth: DefaultMaxDepth}
}

// Discover walks every root concurrently and returns the sorted project roots
// found. A root that is itself a project is returned as is.
func (ds *discoveryService) Discover(ctx context.Context, roots []string) ([]string, error) {
	var (
		mu    sync.Mutex
		found = make(map[string]bool)
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, root := range roots {
		g.Go(func() error {
			return ds.scanDirectory(gctx, root, func(project string) {
				mu.Lock()
				defer mu.Unlock()
				if found[project] {
					return
				}
				found[project] = true
				if ds.bus != nil {
					ds.bus.Publish(eventbus.ProjectDiscoveredEvent{Path: project})
				}
			})
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	projects := make([]string, 0, len(found))
	for p := range found {
		projects = append(projects, p)
	}
	sort.Strings(projects)
	log.Printf("Discovered %d projects under %v", len(projects), roots)
	return projects, nil
}

func (ds *discoveryService) scanDirectory(ctx context.Context, root string, report func(string)) error {
	root, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", root, err)
	}

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			if path == root {
				return err
			}
			log.Printf("Error walking path %s: %v", path, err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}

		name := d.Name()
		if projectMarkers[name] {
			report(filepath.Dir(path))
			return fs.SkipDir
		}
		if path == root {
			return nil
		}

		relPath, _ := filepath.Rel(root, path)
		if strings.Count(relPath, string(filepath.Separator)) >= ds.maxDepth {
			return fs.SkipDir
		}
		if skipDirs[name] || strings.HasPrefix(name, ".") {
			return fs.SkipDir
		}
		return nil
	})

	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("failed to scan %s: %w", root, err)
	}
	return err
}
