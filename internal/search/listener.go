package search

import (
	"log"

	"rgsearch/internal/domain"
	"rgsearch/internal/eventbus"
)

// Listener receives progress notifications from a session's worker
type Listener interface {
	SearchStarted()
	FileMatchingStarted(path string)
	GeneralError(err error)
}

// ResultSink receives completed match records. Within one session calls are
// sequential; a sink shared by sessions must be safe for concurrent use.
type ResultSink interface {
	AddMatchingObject(record domain.MatchRecord)
}

// BusListener republishes session callbacks as domain events
type BusListener struct {
	bus  eventbus.EventBus
	spec domain.SearchSpecification
}

// NewBusListener creates a listener publishing to bus
func NewBusListener(bus eventbus.EventBus, spec domain.SearchSpecification) *BusListener {
	return &BusListener{bus: bus, spec: spec}
}

func (l *BusListener) SearchStarted() {
	l.bus.Publish(eventbus.SearchStartedEvent{Term: l.spec.Term, Scope: l.spec.Scope})
}

func (l *BusListener) FileMatchingStarted(path string) {
	l.bus.Publish(eventbus.FileMatchingStartedEvent{Path: path})
}

func (l *BusListener) GeneralError(err error) {
	l.bus.Publish(eventbus.SearchErrorEvent{Message: err.Error(), Err: err})
}

// AddMatchingObject lets the bus listener double as a sink
func (l *BusListener) AddMatchingObject(record domain.MatchRecord) {
	l.bus.Publish(eventbus.MatchRecordAddedEvent{Record: record})
}

// LogListener logs every callback before forwarding it
type LogListener struct {
	Next Listener
}

func (l LogListener) SearchStarted() {
	log.Printf("Search started")
	if l.Next != nil {
		l.Next.SearchStarted()
	}
}

func (l LogListener) FileMatchingStarted(path string) {
	if l.Next != nil {
		l.Next.FileMatchingStarted(path)
	}
}

func (l LogListener) GeneralError(err error) {
	log.Printf("Search error: %v", err)
	if l.Next != nil {
		l.Next.GeneralError(err)
	}
}

// Sinks fans a record out to several sinks in order
type Sinks []ResultSink

func (s Sinks) AddMatchingObject(record domain.MatchRecord) {
	for _, sink := range s {
		sink.AddMatchingObject(record)
	}
}
