// Package sink keeps copies of raw responses for later inspection.
package sink

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Sink stores a named piece of content and returns where it went.
type Sink interface {
	Dump(name, content string) (string, error)
}

// Nop discards everything.
type Nop struct{}

func (Nop) Dump(string, string) (string, error) { return "", nil }

// Dir writes each dump to a timestamped file in Path.
type Dir struct {
	Path string
	// Now defaults to time.Now.
	Now func() time.Time
}

// Dump writes content to <Path>/coder_<name>_<timestamp>.txt.
func (d Dir) Dump(name, content string) (string, error) {
	now := time.Now
	if d.Now != nil {
		now = d.Now
	}
	if err := os.MkdirAll(d.Path, 0o755); err != nil {
		return "", fmt.Errorf("failed to create dump directory: %w", err)
	}
	file := filepath.Join(d.Path, fmt.Sprintf("coder_%s_%s.txt", name, now().Format("20060102_150405")))
	if err := os.WriteFile(file, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("failed to write dump: %w", err)
	}
	return file, nil
}

// New returns a Dir sink for a non-empty dir and Nop otherwise.
func New(dir string) Sink {
	if dir == "" {
		return Nop{}
	}
	return Dir{Path: dir}
}
