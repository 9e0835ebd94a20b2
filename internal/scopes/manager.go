package scopes

import (
	"fmt"
	"path/filepath"
	"sort"
	"sync"

	"rgsearch/internal/domain"
	"rgsearch/internal/eventbus"
)

// ScopeManager keeps the named scopes and the last used scope
type ScopeManager interface {
	Save(name string, paths []string) error
	Remove(name string) error
	Get(name string) ([]string, bool)
	Names() []string
	All() map[string][]string
	Last() (domain.Scope, bool)
	SetLast(scope domain.Scope)
}

// scopeManager is the concrete implementation
type scopeManager struct {
	bus eventbus.EventBus

	mu     sync.RWMutex
	scopes map[string][]string
	last   *domain.Scope
}

// NewScopeManager creates a manager seeded from config; bus may be nil
func NewScopeManager(bus eventbus.EventBus, initial map[string][]string, last *domain.Scope) ScopeManager {
	sm := &scopeManager{
		bus:    bus,
		scopes: make(map[string][]string, len(initial)),
	}
	for name, paths := range initial {
		sm.scopes[name] = append([]string(nil), paths...)
	}
	if last != nil {
		l := copyScope(*last)
		sm.last = &l
	}
	return sm
}

// Save creates or replaces a named scope. Paths are stored absolute.
func (sm *scopeManager) Save(name string, paths []string) error {
	if name == "" {
		return fmt.Errorf("scope name is empty")
	}
	if len(paths) == 0 {
		return fmt.Errorf("scope %s has no paths", name)
	}

	abs := make([]string, 0, len(paths))
	for _, p := range paths {
		a, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", p, err)
		}
		abs = append(abs, a)
	}

	sm.mu.Lock()
	sm.scopes[name] = abs
	sm.mu.Unlock()

	sm.publish(eventbus.ScopeSavedEvent{Name: name, Paths: append([]string(nil), abs...)})
	return nil
}

// Remove deletes a named scope
func (sm *scopeManager) Remove(name string) error {
	sm.mu.Lock()
	if _, exists := sm.scopes[name]; !exists {
		sm.mu.Unlock()
		return fmt.Errorf("scope %s does not exist", name)
	}
	delete(sm.scopes, name)
	sm.mu.Unlock()

	sm.publish(eventbus.ScopeRemovedEvent{Name: name})
	return nil
}

func (sm *scopeManager) Get(name string) ([]string, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	paths, ok := sm.scopes[name]
	if !ok {
		return nil, false
	}
	return append([]string(nil), paths...), true
}

// Names returns the scope names sorted
func (sm *scopeManager) Names() []string {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	names := make([]string, 0, len(sm.scopes))
	for name := range sm.scopes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns a deep copy of every named scope
func (sm *scopeManager) All() map[string][]string {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.snapshotLocked()
}

func (sm *scopeManager) Last() (domain.Scope, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	if sm.last == nil {
		return domain.Scope{}, false
	}
	return copyScope(*sm.last), true
}

// SetLast records the scope of the search that just ran
func (sm *scopeManager) SetLast(scope domain.Scope) {
	sm.mu.Lock()
	l := copyScope(scope)
	sm.last = &l
	sm.mu.Unlock()

	sm.publish(nil)
}

// publish sends event (if any) followed by a config change carrying the
// full state, so a single subscriber can persist it
func (sm *scopeManager) publish(event eventbus.DomainEvent) {
	if sm.bus == nil {
		return
	}
	if event != nil {
		sm.bus.Publish(event)
	}

	sm.mu.RLock()
	changed := eventbus.ConfigChangedEvent{Scopes: sm.snapshotLocked()}
	if sm.last != nil {
		l := copyScope(*sm.last)
		changed.LastScope = &l
	}
	sm.mu.RUnlock()

	sm.bus.Publish(changed)
}

func (sm *scopeManager) snapshotLocked() map[string][]string {
	result := make(map[string][]string, len(sm.scopes))
	for name, paths := range sm.scopes {
		result[name] = append([]string(nil), paths...)
	}
	return result
}

func copyScope(s domain.Scope) domain.Scope {
	return domain.Scope{Description: s.Description, Paths: append([]string(nil), s.Paths...)}
}
