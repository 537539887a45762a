package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/sokinpui/coder.go/internal/lines"
	"github.com/sokinpui/coder.go/model"
)

var (
	oldHeaderRegex = regexp.MustCompile(`^--- a/(.+)$`)
	newHeaderRegex = regexp.MustCompile(`^\+\+\+ b/(.+)$`)
)

// headerPath strips a trailing timestamp and surrounding whitespace from a
// diff header path.
func headerPath(raw string) string {
	if i := strings.IndexByte(raw, '\t'); i >= 0 {
		raw = raw[:i]
	}
	return strings.TrimSpace(raw)
}

func extractUnifiedDiff(ex *Extraction, response string, known map[string]bool) {
	var (
		collecting bool
		discarding bool
		path       string
		start      string
		body       []lines.Line
		preamble   int
	)

	flush := func() {
		if collecting {
			ex.accept(model.EditUnit{Path: path, Kind: model.UnifiedDiff, Payload: lines.Join(body)}, start)
		}
		collecting, discarding, body = false, false, nil
	}

	ls := lines.Split(response)
	for i := 0; i < len(ls); i++ {
		text := ls[i].Text
		if isFence(text) {
			// A fence is never a diff line; it closes any open block so prose
			// after it is not read as hunk body.
			flush()
			continue
		}

		if m := oldHeaderRegex.FindStringSubmatch(text); m != nil {
			var n []string
			if i+1 < len(ls) {
				n = newHeaderRegex.FindStringSubmatch(ls[i+1].Text)
			}
			// An unpaired "--- a/" inside an open block is a removed line.
			if n != nil || (!collecting && !discarding) {
				flush()
				loc := fmt.Sprintf("response line %d", i+1)
				oldPath := headerPath(m[1])
				if n == nil {
					ex.warn(model.CodeHeaderMismatch, oldPath, loc, "\"--- a/\" header is not followed by \"+++ b/\"")
				} else {
					i++
					if newPath := headerPath(n[1]); newPath != oldPath {
						ex.warn(model.CodeHeaderMismatch, oldPath, loc, "\"+++ b/\" names %q; using the \"--- a/\" path", newPath)
					}
				}

				if !known[oldPath] {
					ex.reject(oldPath, loc)
					discarding = true
					continue
				}
				collecting, path, start = true, oldPath, loc
				continue
			}
		}

		switch {
		case collecting:
			body = append(body, ls[i])
		case discarding:
		default:
			if strings.TrimSpace(text) != "" {
				preamble++
			}
		}
	}
	flush()

	if preamble > 0 {
		ex.warn(model.CodeUnparsedPreamble, "", "", "%d line(s) outside any diff block were ignored", preamble)
	}
}
