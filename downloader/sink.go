package downloader

import (
	"fmt"
	"io"
	"os"
)

// Sink receives chunk bytes in strict append order. The engine borrows the
// sink, it never owns it; Size is consulted when validating a resume.
type Sink interface {
	io.Writer
	Size() int64
}

// FileSink appends to a local file.
type FileSink struct {
	f    *os.File
	size int64
}

// OpenFileSink opens path for appending, creating it when absent.
func OpenFileSink(path string) (*FileSink, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open sink: %w", err)
	}
	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("stat sink: %w", err)
	}
	return &FileSink{f: f, size: fi.Size()}, nil
}

func (s *FileSink) Write(p []byte) (int, error) {
	n, err := s.f.Write(p)
	s.size += int64(n)
	return n, err
}

// Size returns the current file length.
func (s *FileSink) Size() int64 { return s.size }

// Close closes the underlying file.
func (s *FileSink) Close() error { return s.f.Close() }
