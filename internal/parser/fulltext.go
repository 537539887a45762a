package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/sokinpui/coder.go/internal/lines"
	"github.com/sokinpui/coder.go/model"
)

// Marker formats for full-content blocks. Each takes the absolute path.
const (
	BeginMarkerFormat = "--- BEGIN_OF_FILE: %s ---"
	EndMarkerFormat   = "--- END_OF_FILE: %s ---"
)

var (
	beginMarkerRegex = regexp.MustCompile(`^\s*--- (?:BEGIN_OF_FILE|Start of File): (.+?) ---\s*$`)
	endMarkerRegex   = regexp.MustCompile(`^\s*--- (?:END_OF_FILE|End of File): (.+?) ---\s*$`)
)

// FormatBlock wraps content in full-content markers for path.
func FormatBlock(path, content string) string {
	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return fmt.Sprintf(BeginMarkerFormat, path) + "\n" + content + fmt.Sprintf(EndMarkerFormat, path) + "\n"
}

func extractFullContent(ex *Extraction, response string, known map[string]bool) {
	var (
		open  bool
		path  string
		start string
		body  []lines.Line
	)

	for i, l := range lines.Split(response) {
		loc := fmt.Sprintf("response line %d", i+1)

		if m := beginMarkerRegex.FindStringSubmatch(l.Text); m != nil {
			if open {
				ex.warn(model.CodeUnterminated, path, start, "block has no END marker before the next BEGIN; discarded")
			}
			open, path, start, body = true, strings.TrimSpace(m[1]), loc, nil
			continue
		}

		m := endMarkerRegex.FindStringSubmatch(l.Text)
		if !open {
			if m != nil {
				ex.warn(model.CodeMarkerMismatch, strings.TrimSpace(m[1]), loc, "END marker without a matching BEGIN; ignored")
			}
			continue
		}
		if m == nil {
			body = append(body, l)
			continue
		}

		open = false
		if endPath := strings.TrimSpace(m[1]); endPath != path {
			ex.warn(model.CodeMarkerMismatch, path, loc, "END marker names %q; block discarded", endPath)
			continue
		}
		if !known[path] {
			ex.reject(path, start)
			continue
		}
		ex.accept(model.EditUnit{Path: path, Kind: model.FullContent, Payload: lines.Join(body)}, start)
	}

	if open {
		ex.warn(model.CodeUnterminated, path, start, "block has no END marker; discarded")
	}
}
