package search

import (
	"fmt"

	"rgsearch/internal/ripgrep"
)

// Re-exported so callers can errors.As against this package alone
type (
	LaunchError = ripgrep.LaunchError
	ParseError  = ripgrep.ParseError
)

// ProtocolError means events arrived out of begin → match* → end order
type ProtocolError struct {
	Line   string
	Reason string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("protocol violation: %s (line %q)", e.Reason, e.Line)
}

// IOError is a failure reading the subprocess output
type IOError struct {
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("failed to read search output: %v", e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// FileResolutionError means a reported path does not resolve to a live file.
// The session keeps going; the file produces no record.
type FileResolutionError struct {
	Path string
	Err  error
}

func (e *FileResolutionError) Error() string {
	return fmt.Sprintf("cannot resolve %s: %v", e.Path, e.Err)
}

func (e *FileResolutionError) Unwrap() error { return e.Err }
