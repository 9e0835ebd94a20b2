package search

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"rgsearch/internal/domain"
)

// DefaultEncoding is assumed when a file carries no byte order mark
const DefaultEncoding = "UTF-8"

// FileResolver maps a reported path to a live file
type FileResolver interface {
	Resolve(path string) (domain.FileHandle, string, error)
}

// OSResolver resolves paths against the local filesystem
type OSResolver struct {
	// Dir resolves relative paths; empty means the process working directory
	Dir string
}

// Resolve stats path and sniffs its text encoding
func (r OSResolver) Resolve(path string) (domain.FileHandle, string, error) {
	if !filepath.IsAbs(path) && r.Dir != "" {
		path = filepath.Join(r.Dir, path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return domain.FileHandle{}, "", err
	}

	info, err := os.Stat(abs)
	if err != nil {
		return domain.FileHandle{}, "", err
	}
	if !info.Mode().IsRegular() {
		return domain.FileHandle{}, "", fmt.Errorf("%s is not a regular file", abs)
	}

	handle := domain.FileHandle{
		Path:    abs,
		Name:    info.Name(),
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}
	return handle, sniffEncoding(abs), nil
}

var boms = []struct {
	mark     []byte
	encoding string
}{
	{[]byte{0xEF, 0xBB, 0xBF}, "UTF-8"},
	{[]byte{0xFF, 0xFE, 0x00, 0x00}, "UTF-32LE"},
	{[]byte{0x00, 0x00, 0xFE, 0xFF}, "UTF-32BE"},
	{[]byte{0xFF, 0xFE}, "UTF-16LE"},
	{[]byte{0xFE, 0xFF}, "UTF-16BE"},
}

func sniffEncoding(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return DefaultEncoding
	}
	defer f.Close()

	head := make([]byte, 4)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF {
		return DefaultEncoding
	}
	head = head[:n]
	for _, b := range boms {
		if bytes.HasPrefix(head, b.mark) {
			return b.encoding
		}
	}
	return DefaultEncoding
}
