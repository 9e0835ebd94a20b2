package ripgrep

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"strings"
	"sync"
	"sync/atomic"
)

// LaunchError means the subprocess could not be started
type LaunchError struct {
	Binary string
	Err    error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("failed to launch %s: %v", e.Binary, e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }

// Runner starts rg processes from a resolved binary
type Runner struct {
	binary Binary
	dir    string
}

// NewRunner creates a runner for the given binary
func NewRunner(binary Binary) *Runner {
	return &Runner{binary: binary}
}

// WithDir sets the working directory of spawned processes
func (r *Runner) WithDir(dir string) *Runner {
	r.dir = dir
	return r
}

// Binary returns the executable the runner spawns
func (r *Runner) Binary() Binary {
	return r.binary
}

// Process is a running rg instance with stdout and stderr merged into one stream
type Process struct {
	cmd        *exec.Cmd
	pipe       *os.File
	reader     *bufio.Reader
	terminated atomic.Bool
	killOnce   sync.Once
	waitOnce   sync.Once
	waitErr    error
}

// Start launches the binary with args. Arguments are passed as discrete
// tokens; no shell is involved.
func (r *Runner) Start(ctx context.Context, args []string) (*Process, error) {
	if r.binary.Path == "" {
		return nil, &LaunchError{Binary: "rg", Err: ErrBinaryNotFound}
	}

	pr, pw, err := os.Pipe()
	if err != nil {
		return nil, &LaunchError{Binary: r.binary.Path, Err: fmt.Errorf("failed to create output pipe: %w", err)}
	}

	cmd := exec.CommandContext(ctx, r.binary.Path, args...)
	cmd.Dir = r.dir
	cmd.Stdout = pw
	cmd.Stderr = pw

	log.Printf("Launching %s %s", r.binary.Path, strings.Join(args, " "))
	if err := cmd.Start(); err != nil {
		pr.Close()
		pw.Close()
		return nil, &LaunchError{Binary: r.binary.Path, Err: err}
	}

	// The child holds its own copy of the write end; EOF arrives when it exits
	pw.Close()

	return &Process{
		cmd:    cmd,
		pipe:   pr,
		reader: bufio.NewReaderSize(pr, 64*1024),
	}, nil
}

// ReadLine blocks for the next output line, without its line terminator.
// It returns io.EOF once the output is exhausted.
func (p *Process) ReadLine() (string, error) {
	line, err := p.reader.ReadString('\n')
	if err != nil {
		if p.terminated.Load() && !errors.Is(err, io.EOF) {
			// Reads racing with Terminate see a closed pipe
			err = io.EOF
		}
		if line != "" && errors.Is(err, io.EOF) {
			return trimEOL(line), nil
		}
		return "", err
	}
	return trimEOL(line), nil
}

// Terminate kills the process and releases a pending ReadLine.
// It is idempotent and safe to call concurrently with ReadLine.
func (p *Process) Terminate() {
	p.killOnce.Do(func() {
		p.terminated.Store(true)
		if p.cmd.Process != nil {
			if err := p.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
				log.Printf("Failed to kill rg process %d: %v", p.cmd.Process.Pid, err)
			}
		}
		// Grandchildren (e.g. decompressors for --search-zip) may still hold the pipe
		p.pipe.Close()
	})
}

// Terminated reports whether Terminate was called
func (p *Process) Terminated() bool {
	return p.terminated.Load()
}

// Wait reaps the process. Exit status 1 (nothing matched) is not an error,
// and neither is the kill signal after Terminate.
func (p *Process) Wait() error {
	p.waitOnce.Do(func() {
		err := p.cmd.Wait()
		p.pipe.Close()
		if err == nil || p.terminated.Load() {
			return
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return
		}
		p.waitErr = fmt.Errorf("rg exited: %w", err)
	})
	return p.waitErr
}

func trimEOL(line string) string {
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r")
}
