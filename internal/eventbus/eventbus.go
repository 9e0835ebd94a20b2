package eventbus

import (
	"log"
	"runtime/debug"
	"sync"

	"rgsearch/internal/domain"
)

// Re-export domain types for convenience
type DomainEvent = domain.DomainEvent
type EventType = domain.EventType

// Event type constants
const (
	EventSearchStarted       = domain.EventSearchStarted
	EventFileMatchingStarted = domain.EventFileMatchingStarted
	EventMatchRecordAdded    = domain.EventMatchRecordAdded
	EventSearchError         = domain.EventSearchError
	EventSearchFinished      = domain.EventSearchFinished
	EventScopeSaved          = domain.EventScopeSaved
	EventScopeRemoved        = domain.EventScopeRemoved
	EventProjectDiscovered   = domain.EventProjectDiscovered
	EventConfigChanged       = domain.EventConfigChanged
)

// Re-export domain event types
type SearchStartedEvent = domain.SearchStartedEvent
type FileMatchingStartedEvent = domain.FileMatchingStartedEvent
type MatchRecordAddedEvent = domain.MatchRecordAddedEvent
type SearchErrorEvent = domain.SearchErrorEvent
type SearchFinishedEvent = domain.SearchFinishedEvent
type ScopeSavedEvent = domain.ScopeSavedEvent
type ScopeRemovedEvent = domain.ScopeRemovedEvent
type ProjectDiscoveredEvent = domain.ProjectDiscoveredEvent
type ConfigChangedEvent = domain.ConfigChangedEvent

// EventHandler is a function that handles domain events
type EventHandler func(DomainEvent)

// EventBus is the interface for the event bus
type EventBus interface {
	Publish(event DomainEvent)
	Subscribe(eventType EventType, handler EventHandler) func()
	Close()
}

type subscription struct {
	id      uint64
	handler EventHandler
}

// bus is the concrete implementation of EventBus.
// Handlers run one at a time on the dispatcher goroutine, in publish order.
type bus struct {
	mu        sync.RWMutex
	handlers  map[EventType][]subscription
	nextID    uint64
	eventChan chan DomainEvent
	wg        sync.WaitGroup
	quit      chan struct{}
	closeOnce sync.Once
}

// New creates a new event bus
func New() EventBus {
	b := &bus{
		handlers:  make(map[EventType][]subscription),
		eventChan: make(chan DomainEvent, 1000),
		quit:      make(chan struct{}),
	}

	// Start the event dispatcher
	b.wg.Add(1)
	go b.dispatch()

	return b
}

// Publish queues an event for all subscribers. It blocks while the queue is
// full and drops the event once the bus is closed.
func (b *bus) Publish(event DomainEvent) {
	// Skip logging for high-frequency events
	switch event.Type() {
	case EventFileMatchingStarted, EventMatchRecordAdded:
	default:
		log.Printf("EventBus: Publishing event %s", event.Type())
	}

	select {
	case <-b.quit:
		log.Printf("EventBus: closed, dropping event: %v", event.Type())
		return
	default:
	}

	select {
	case b.eventChan <- event:
	case <-b.quit:
		log.Printf("EventBus: closed, dropping event: %v", event.Type())
	}
}

// Subscribe subscribes to events of a specific type
// Returns an unsubscribe function. Handlers are looked up at delivery, so
// unsubscribing also drops events still queued for the handler.
func (b *bus) Subscribe(eventType EventType, handler EventHandler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.handlers[eventType] = append(b.handlers[eventType], subscription{id: id, handler: handler})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		subs := b.handlers[eventType]
		for i, s := range subs {
			if s.id == id {
				b.handlers[eventType] = append(subs[:i:i], subs[i+1:]...)
				break
			}
		}
	}
}

// Close delivers every queued event and stops the dispatcher
func (b *bus) Close() {
	b.closeOnce.Do(func() {
		close(b.quit)
	})
	b.wg.Wait()
}

// dispatch handles event distribution to subscribers
func (b *bus) dispatch() {
	defer b.wg.Done()

	for {
		select {
		case event := <-b.eventChan:
			b.deliver(event)

		case <-b.quit:
			// Drain remaining events
			for {
				select {
				case event := <-b.eventChan:
					b.deliver(event)
				default:
					return
				}
			}
		}
	}
}

func (b *bus) deliver(event DomainEvent) {
	b.mu.RLock()
	subs := make([]subscription, len(b.handlers[event.Type()]))
	copy(subs, b.handlers[event.Type()])
	b.mu.RUnlock()

	for _, s := range subs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("Event handler panic for %s: %v\nStack: %s", event.Type(), r, debug.Stack())
				}
			}()
			s.handler(event)
		}()
	}
}
