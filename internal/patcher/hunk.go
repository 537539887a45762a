package patcher

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/sokinpui/coder.go/internal/lines"
	"github.com/sokinpui/coder.go/model"
)

// OpKind is the role of one hunk body line.
type OpKind int

const (
	Context OpKind = iota
	Add
	Remove
)

// Op is one body line of a hunk.
type Op struct {
	Kind OpKind
	Line lines.Line
}

// Hunk is one "@@" section of a unified diff. OldStart and NewStart are
// 1-based, as written in the header.
type Hunk struct {
	OldStart int
	OldCount int
	NewStart int
	NewCount int
	Ops      []Op
	// Source is the 1-based payload line holding the header.
	Source int
}

// hunkHeaderRegex matches "@@ -a[,b] +c[,d] @@" with an optional section name.
var hunkHeaderRegex = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@`)

// ParseHunkHeader parses a hunk header line. Omitted counts default to 1.
func ParseHunkHeader(line string) (Hunk, error) {
	m := hunkHeaderRegex.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return Hunk{}, fmt.Errorf("malformed hunk header %q", line)
	}
	h := Hunk{OldCount: 1, NewCount: 1}
	h.OldStart, _ = strconv.Atoi(m[1])
	if m[2] != "" {
		h.OldCount, _ = strconv.Atoi(m[2])
	}
	h.NewStart, _ = strconv.Atoi(m[3])
	if m[4] != "" {
		h.NewCount, _ = strconv.Atoi(m[4])
	}
	return h, nil
}

// ParseDiff reads the hunks of a single-file diff payload. File header lines
// before the first hunk are skipped. Nothing here fails: unreadable input is
// reported as warnings and dropped.
func ParseDiff(path, payload string) ([]Hunk, []model.Diagnostic) {
	var (
		hunks    []Hunk
		diags    []model.Diagnostic
		cur      = -1
		skipping bool
		stray    int
	)

	for i, l := range lines.Split(payload) {
		text := l.Text
		loc := fmt.Sprintf("diff line %d", i+1)

		if strings.HasPrefix(text, "@@") {
			h, err := ParseHunkHeader(text)
			if err != nil {
				diags = append(diags, model.Warnf(model.CodeMalformedHunk, path, loc, "%v; skipping its body", err))
				cur, skipping = -1, true
				continue
			}
			h.Source = i + 1
			hunks = append(hunks, h)
			cur, skipping = len(hunks)-1, false
			continue
		}
		if skipping {
			continue
		}
		if cur < 0 {
			if strings.HasPrefix(text, "--- ") || strings.HasPrefix(text, "+++ ") || strings.TrimSpace(text) == "" {
				continue
			}
			stray++
			continue
		}

		h := &hunks[cur]
		switch {
		case strings.HasPrefix(text, `\`):
			// "\ No newline at end of file"
			if n := len(h.Ops); n > 0 {
				h.Ops[n-1].Line.EOL = false
			}
		case text == "":
			h.Ops = append(h.Ops, Op{Kind: Context, Line: lines.New("")})
		case text[0] == '+':
			h.Ops = append(h.Ops, Op{Kind: Add, Line: lines.New(text[1:])})
		case text[0] == '-':
			h.Ops = append(h.Ops, Op{Kind: Remove, Line: lines.New(text[1:])})
		case text[0] == ' ':
			h.Ops = append(h.Ops, Op{Kind: Context, Line: lines.New(text[1:])})
		default:
			diags = append(diags, model.Warnf(model.CodeMalformedHunk, path, loc, "unexpected line in hunk body %q; ignored", truncate(text, 60)))
		}
	}

	if stray > 0 {
		diags = append(diags, model.Warnf(model.CodeMalformedHunk, path, "", "ignored %d line(s) before the first hunk header", stray))
	}
	for i := range hunks {
		trimTrailingBlankContext(&hunks[i])
	}
	return hunks, diags
}

// trimTrailingBlankContext drops blank context lines at the end of a hunk
// that exceed its declared old count. They are separators between file
// diffs, not part of the hunk.
func trimTrailingBlankContext(h *Hunk) {
	old := h.oldLen()
	for n := len(h.Ops); n > 0 && old > h.OldCount; n = len(h.Ops) {
		last := h.Ops[n-1]
		if last.Kind != Context || last.Line.Text != "" {
			return
		}
		h.Ops = h.Ops[:n-1]
		old--
	}
}

// oldLen counts the original lines a hunk consumes.
func (h Hunk) oldLen() int {
	n := 0
	for _, op := range h.Ops {
		if op.Kind != Add {
			n++
		}
	}
	return n
}

// newLen counts the lines a hunk produces.
func (h Hunk) newLen() int {
	n := 0
	for _, op := range h.Ops {
		if op.Kind != Remove {
			n++
		}
	}
	return n
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
