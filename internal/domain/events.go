package domain

// EventType represents the type of domain event
type EventType string

// Event types
const (
	EventSearchStarted       EventType = "SearchStarted"
	EventFileMatchingStarted EventType = "FileMatchingStarted"
	EventMatchRecordAdded    EventType = "MatchRecordAdded"
	EventSearchError         EventType = "SearchError"
	EventSearchFinished      EventType = "SearchFinished"
	EventScopeSaved          EventType = "ScopeSaved"
	EventScopeRemoved        EventType = "ScopeRemoved"
	EventProjectDiscovered   EventType = "ProjectDiscovered"
	EventConfigChanged       EventType = "ConfigChanged"
)

// DomainEvent is the interface for all domain events
type DomainEvent interface {
	Type() EventType
}

// SearchStartedEvent is emitted when the search tool has been launched
type SearchStartedEvent struct {
	Term  string
	Scope []string
}

func (e SearchStartedEvent) Type() EventType { return EventSearchStarted }

// FileMatchingStartedEvent is emitted when the tool begins reporting a file
type FileMatchingStartedEvent struct {
	Path string
}

func (e FileMatchingStartedEvent) Type() EventType { return EventFileMatchingStarted }

// MatchRecordAddedEvent carries a completed record
type MatchRecordAddedEvent struct {
	Record MatchRecord
}

func (e MatchRecordAddedEvent) Type() EventType { return EventMatchRecordAdded }

// SearchErrorEvent is emitted for every error reported by a session
type SearchErrorEvent struct {
	Message string
	Err     error
}

func (e SearchErrorEvent) Type() EventType { return EventSearchError }

// SearchFinishedEvent is emitted once a session reaches a terminal state
type SearchFinishedEvent struct {
	State string
	Err   error
}

func (e SearchFinishedEvent) Type() EventType { return EventSearchFinished }

// ScopeSavedEvent is emitted when a named scope is created or replaced
type ScopeSavedEvent struct {
	Name  string
	Paths []string
}

func (e ScopeSavedEvent) Type() EventType { return EventScopeSaved }

// ScopeRemovedEvent is emitted when a named scope is deleted
type ScopeRemovedEvent struct {
	Name string
}

func (e ScopeRemovedEvent) Type() EventType { return EventScopeRemoved }

// ProjectDiscoveredEvent is emitted for each project root found during discovery
type ProjectDiscoveredEvent struct {
	Path string
}

func (e ProjectDiscoveredEvent) Type() EventType { return EventProjectDiscovered }

// ConfigChangedEvent is emitted when configuration needs to be saved
type ConfigChangedEvent struct {
	Scopes    map[string][]string // current named scopes
	LastScope *Scope
}

func (e ConfigChangedEvent) Type() EventType { return EventConfigChanged }
