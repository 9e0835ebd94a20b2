package ui

import (
	"time"

	"rgsearch/internal/eventbus"
)

// EventMsg wraps a domain event for the UI
type EventMsg struct {
	Event eventbus.DomainEvent
}

// tickMsg is sent on a timer to refresh elapsed time
type tickMsg time.Time
