package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"sync/atomic"

	"rgsearch/internal/domain"
	"rgsearch/internal/ignore"
	"rgsearch/internal/ripgrep"
)

// State is the lifecycle state of a session
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateCompleted
	StateTerminated
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateRunning:
		return "Running"
	case StateCompleted:
		return "Completed"
	case StateTerminated:
		return "Terminated"
	case StateFailed:
		return "Failed"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Terminal reports whether no further transitions are possible
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateTerminated || s == StateFailed
}

// ErrNotIdle is returned when Start is called twice or after Terminate
var ErrNotIdle = errors.New("session already started or terminated")

// Process is the running search tool as seen by a session
type Process interface {
	ReadLine() (string, error)
	Terminate()
	Wait() error
}

// Launcher starts the search tool
type Launcher interface {
	Launch(ctx context.Context, args []string) (Process, error)
}

// LaunchFunc adapts a function to Launcher
type LaunchFunc func(ctx context.Context, args []string) (Process, error)

func (f LaunchFunc) Launch(ctx context.Context, args []string) (Process, error) {
	return f(ctx, args)
}

// FromRunner launches processes with a ripgrep runner
func FromRunner(r *ripgrep.Runner) Launcher {
	return LaunchFunc(func(ctx context.Context, args []string) (Process, error) {
		p, err := r.Start(ctx, args)
		if err != nil {
			return nil, err
		}
		return p, nil
	})
}

// Stats summarizes what a session processed
type Stats struct {
	Lines       int
	Files       int // records delivered
	Matches     int // location details delivered
	Ignored     int
	Unresolved  int
	ParseErrors int
}

// Option configures a Session
type Option func(*Session)

// WithResolver overrides the filesystem resolver
func WithResolver(r FileResolver) Option {
	return func(s *Session) { s.resolver = r }
}

// WithIgnoreList sets the evaluator applied when UseIgnoreList is set
func WithIgnoreList(e *ignore.Evaluator) Option {
	return func(s *Session) { s.ignore = e }
}

// Session runs one search: it drives the tool, correlates its events into
// match records and hands them to a sink.
type Session struct {
	spec     domain.SearchSpecification
	args     []string
	launcher Launcher
	resolver FileResolver
	ignore   *ignore.Evaluator

	cancelled atomic.Bool
	done      chan struct{}

	mu    sync.Mutex
	state State
	proc  Process
	err   error
	stats Stats
}

// NewSession prepares a session; nothing runs until Start
func NewSession(spec domain.SearchSpecification, launcher Launcher, opts ...Option) *Session {
	spec = spec.Clone()
	s := &Session{
		spec:     spec,
		args:     ripgrep.Build(spec),
		launcher: launcher,
		resolver: OSResolver{},
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Args returns the argument vector the session launches with
func (s *Session) Args() []string {
	return append([]string(nil), s.args...)
}

// Spec returns the session's specification
func (s *Session) Spec() domain.SearchSpecification {
	return s.spec.Clone()
}

// Start launches the worker and returns without waiting for output.
// listener and sink are called from the worker goroutine only.
func (s *Session) Start(ctx context.Context, listener Listener, sink ResultSink) error {
	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return ErrNotIdle
	}
	s.state = StateRunning
	s.mu.Unlock()

	log.Printf("Session starting: %v", s.args)
	go s.run(ctx, listener, sink)
	return nil
}

// Terminate cancels the session. Setting the flag and killing the process
// happen under one lock so no output is read after cancellation is visible.
func (s *Session) Terminate() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Terminal() || s.cancelled.Load() {
		return
	}
	s.cancelled.Store(true)

	switch {
	case s.state == StateIdle:
		s.state = StateTerminated
		close(s.done)
	case s.proc != nil:
		s.proc.Terminate()
	}
}

// IsTerminated reports whether cancellation was requested
func (s *Session) IsTerminated() bool {
	return s.cancelled.Load()
}

// Done is closed once the session reaches a terminal state
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Wait blocks until the session ends and returns its final state
func (s *Session) Wait() State {
	<-s.done
	return s.State()
}

// State returns the current state
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err returns the fatal error of a failed session
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Stats returns the counters of a finished session
func (s *Session) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

func (s *Session) run(ctx context.Context, listener Listener, sink ResultSink) {
	defer close(s.done)

	stop := context.AfterFunc(ctx, s.Terminate)
	defer stop()

	proc, err := s.launcher.Launch(ctx, s.args)
	if err != nil {
		s.fail(listener, err, Stats{})
		return
	}

	s.mu.Lock()
	if s.cancelled.Load() {
		s.mu.Unlock()
		proc.Terminate()
		_ = proc.Wait()
		s.finish(StateTerminated, nil, Stats{})
		return
	}
	s.proc = proc
	s.mu.Unlock()

	listener.SearchStarted()

	w := worker{session: s, listener: listener, sink: sink}
	state, err := w.loop(proc)

	if err != nil {
		proc.Terminate()
		_ = proc.Wait()
		s.fail(listener, err, w.stats)
		return
	}

	if state == StateCompleted {
		if err := proc.Wait(); err != nil {
			// Details reached the listener through the merged output
			listener.GeneralError(err)
		}
	} else {
		_ = proc.Wait()
	}
	s.finish(state, nil, w.stats)
}

func (s *Session) fail(listener Listener, err error, stats Stats) {
	listener.GeneralError(err)
	s.finish(StateFailed, err, stats)
}

func (s *Session) finish(state State, err error, stats Stats) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	s.err = err
	s.stats = stats
	s.proc = nil
	log.Printf("Session finished: %s (files=%d matches=%d parse_errors=%d)",
		state, stats.Files, stats.Matches, stats.ParseErrors)
}

// fileState is the correlation context carried from one event to the next:
// the file currently between its begin and end, and its accumulated record.
type fileState struct {
	open     bool
	path     string // as reported by the tool
	resolved bool
	ignored  bool
	record   domain.MatchRecord
}

type worker struct {
	session  *Session
	listener Listener
	sink     ResultSink
	stats    Stats
}

// loop reads until EOF, cancellation or a fatal error
func (w *worker) loop(proc Process) (State, error) {
	filesMode := w.session.spec.FilesMode()
	var st fileState

	for {
		line, err := proc.ReadLine()
		if err != nil {
			if w.session.cancelled.Load() {
				return StateTerminated, nil
			}
			if errors.Is(err, io.EOF) {
				if st.open {
					w.listener.GeneralError(&ProtocolError{Reason: fmt.Sprintf("output ended before end of %s", st.path)})
				}
				return StateCompleted, nil
			}
			return StateFailed, &IOError{Err: err}
		}
		// A line read while Terminate ran is never dispatched
		if w.session.cancelled.Load() {
			return StateTerminated, nil
		}
		w.stats.Lines++

		if filesMode {
			w.listPath(line)
		} else {
			st, err = w.step(st, line)
			if err != nil {
				return StateFailed, err
			}
		}

		// An open record is dropped here, never delivered
		if w.session.cancelled.Load() {
			return StateTerminated, nil
		}
	}
}

// step applies one output line to the correlation state
func (w *worker) step(st fileState, line string) (fileState, error) {
	ev, err := ripgrep.ParseEvent(line)
	if err != nil {
		w.stats.ParseErrors++
		w.listener.GeneralError(err)
		return st, nil
	}

	switch ev := ev.(type) {
	case ripgrep.Begin:
		if st.open {
			return st, &ProtocolError{Line: line, Reason: fmt.Sprintf("begin of %s while %s is open", ev.Path, st.path)}
		}
		return w.begin(ev.Path), nil

	case ripgrep.Match:
		if !st.open || ev.Path != st.path {
			return st, &ProtocolError{Line: line, Reason: fmt.Sprintf("match for %s without an open record", ev.Path)}
		}
		if st.resolved {
			st.record.Details = append(st.record.Details, locationDetails(ev)...)
		}
		return st, nil

	case ripgrep.End:
		if !st.open || ev.Path != st.path {
			return st, &ProtocolError{Line: line, Reason: fmt.Sprintf("end of %s without an open record", ev.Path)}
		}
		if st.resolved && !st.ignored {
			w.deliver(st.record)
		}
		return fileState{}, nil

	default:
		return st, nil
	}
}

func (w *worker) begin(path string) fileState {
	handle, encoding, err := w.session.resolver.Resolve(path)
	if err != nil {
		w.stats.Unresolved++
		w.listener.GeneralError(&FileResolutionError{Path: path, Err: err})
		return fileState{open: true, path: path}
	}

	w.listener.FileMatchingStarted(path)
	ignored := w.isIgnored(handle.Path)
	return fileState{
		open:     true,
		path:     path,
		resolved: true,
		ignored:  ignored,
		record:   domain.MatchRecord{File: handle, Encoding: encoding},
	}
}

// listPath handles one line of --files output
func (w *worker) listPath(line string) {
	if line == "" {
		return
	}
	handle, encoding, err := w.session.resolver.Resolve(line)
	if err != nil {
		w.stats.Unresolved++
		w.listener.GeneralError(&FileResolutionError{Path: line, Err: err})
		return
	}
	w.listener.FileMatchingStarted(line)
	if w.isIgnored(handle.Path) {
		return
	}
	w.deliver(domain.MatchRecord{File: handle, Encoding: encoding})
}

func (w *worker) isIgnored(path string) bool {
	if !w.session.spec.UseIgnoreList || !w.session.ignore.IsIgnored(path) {
		return false
	}
	w.stats.Ignored++
	return true
}

func (w *worker) deliver(record domain.MatchRecord) {
	w.stats.Files++
	w.stats.Matches += len(record.Details)
	w.sink.AddMatchingObject(record)
}
