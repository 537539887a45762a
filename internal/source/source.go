package source

import (
	"fmt"
	"io"
	"os"

	"github.com/atotto/clipboard"
)

// Origin names where a response was read from.
type Origin string

const (
	FromFile      Origin = "file"
	FromStdin     Origin = "stdin"
	FromClipboard Origin = "clipboard"
)

// SourceProvider determines and retrieves the model response.
type SourceProvider struct {
	path      string
	stdin     *os.File
	clipboard func() (string, error)
}

// New creates a SourceProvider. A non-empty path takes priority over stdin
// and the clipboard.
func New(path string) *SourceProvider {
	return &SourceProvider{
		path:      path,
		stdin:     os.Stdin,
		clipboard: clipboard.ReadAll,
	}
}

// GetContent reads the response from the configured file, from stdin when
// it is piped, or from the clipboard.
func (sp *SourceProvider) GetContent() (string, Origin, error) {
	if sp.path != "" {
		data, err := os.ReadFile(sp.path)
		if err != nil {
			return "", FromFile, fmt.Errorf("failed to read response file: %w", err)
		}
		return string(data), FromFile, nil
	}

	if sp.isPiped() {
		content, err := io.ReadAll(sp.stdin)
		if err != nil {
			return "", FromStdin, fmt.Errorf("failed to read from stdin: %w", err)
		}
		return string(content), FromStdin, nil
	}

	content, err := sp.clipboard()
	if err != nil {
		return "", FromClipboard, fmt.Errorf("failed to read from clipboard: %w", err)
	}
	return content, FromClipboard, nil
}

func (sp *SourceProvider) isPiped() bool {
	if sp.stdin == nil {
		return false
	}
	stat, err := sp.stdin.Stat()
	if err != nil {
		return false
	}
	return stat.Mode()&os.ModeCharDevice == 0
}
