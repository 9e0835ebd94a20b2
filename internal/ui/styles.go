package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles contains all the style definitions for the UI
type Styles struct {
	Path       lipgloss.Style
	LineNumber lipgloss.Style
	Match      lipgloss.Style
	Dim        lipgloss.Style
	Status     lipgloss.Style
	Error      lipgloss.Style
	Success    lipgloss.Style
	Warning    lipgloss.Style
	Spinner    lipgloss.Style
}

// NewStyles creates a new Styles instance with default values
func NewStyles() *Styles {
	return &Styles{
		Path:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99")),
		LineNumber: lipgloss.NewStyle().Foreground(lipgloss.Color("78")), // green
		Match:      lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true),
		Dim:        lipgloss.NewStyle().Faint(true),
		Status:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Error:      lipgloss.NewStyle().Foreground(lipgloss.Color("203")), // red
		Success:    lipgloss.NewStyle().Foreground(lipgloss.Color("78")),
		Warning:    lipgloss.NewStyle().Foreground(lipgloss.Color("214")), // yellow
		Spinner:    lipgloss.NewStyle().Foreground(lipgloss.Color("33")),
	}
}
