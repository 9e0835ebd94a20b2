package ripgrep

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
)

var (
	// ErrUnsupportedPlatform is returned when no bundled binary variant exists for the running OS
	ErrUnsupportedPlatform = errors.New("no ripgrep binary variant for this platform")
	// ErrBinaryNotFound is returned when the expected binary is missing on disk
	ErrBinaryNotFound = errors.New("ripgrep binary not found")
)

// Binary is a resolved ripgrep executable
type Binary struct {
	Path    string
	Variant string // linux, windows, mac, or "custom" for an explicitly configured path
}

// variants maps GOOS to the bundled binary directory and file name
var variants = map[string]struct {
	dir  string
	name string
}{
	"linux":   {dir: "linux", name: "rg"},
	"windows": {dir: "windows", name: "rg.exe"},
	"darwin":  {dir: "mac", name: "rg"},
}

// ResolveBinary locates the bundled binary for the running platform under dir.
// It is meant to run once at startup; the result is passed to the Runner.
func ResolveBinary(dir string) (Binary, error) {
	return resolveFor(runtime.GOOS, dir)
}

func resolveFor(goos, dir string) (Binary, error) {
	v, ok := variants[goos]
	if !ok {
		return Binary{}, fmt.Errorf("%w: %s", ErrUnsupportedPlatform, goos)
	}

	path := filepath.Join(dir, v.dir, v.name)
	if err := ensureExecutable(path, goos); err != nil {
		return Binary{}, err
	}

	log.Printf("Resolved ripgrep binary %s (%s)", path, v.dir)
	return Binary{Path: path, Variant: v.dir}, nil
}

// BinaryFromPath validates an explicitly configured binary
func BinaryFromPath(path string) (Binary, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Binary{}, fmt.Errorf("failed to resolve binary path %q: %w", path, err)
	}
	if err := ensureExecutable(abs, runtime.GOOS); err != nil {
		return Binary{}, err
	}
	return Binary{Path: abs, Variant: "custom"}, nil
}

func ensureExecutable(path, goos string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrBinaryNotFound, path)
		}
		return fmt.Errorf("failed to stat ripgrep binary: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrBinaryNotFound, path)
	}

	// Bundled binaries can lose their exec bit when unpacked
	if goos != "windows" && info.Mode().Perm()&0o100 == 0 {
		if err := os.Chmod(path, info.Mode().Perm()|0o700); err != nil {
			return fmt.Errorf("failed to mark %s executable: %w", path, err)
		}
	}
	return nil
}
