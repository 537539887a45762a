package patcher

import (
	"fmt"
	"sort"

	"github.com/sokinpui/coder.go/internal/lines"
	"github.com/sokinpui/coder.go/model"
)

// Options tune how leniently diffs are applied.
type Options struct {
	// MaxMismatches abandons a file once more than this many context or
	// removal lines disagree with the original. Zero means no limit.
	MaxMismatches int
	// Relocate re-anchors hunks whose declared start does not match the
	// original but whose lines are found elsewhere in it.
	Relocate bool
	// Strict applies diffs with an exact patcher; any mismatch skips the file.
	Strict bool
	// KeepFinalNewline appends a newline to full-content payloads when the
	// original file ended with one.
	KeepFinalNewline bool
}

// Apply applies a single-file diff payload to original. On any Error
// diagnostic it returns original unchanged.
func Apply(path, original, payload string, opts Options) (string, []model.Diagnostic) {
	if opts.Strict {
		return applyStrict(path, original, payload)
	}

	hunks, diags := ParseDiff(path, payload)
	if len(hunks) == 0 {
		diags = append(diags, model.Errorf(model.CodeMalformedHunk, path, "", "diff contains no hunks"))
		return original, diags
	}

	src := lines.Split(original)
	if opts.Relocate {
		var moved []model.Diagnostic
		hunks, moved = Relocate(path, src, hunks)
		diags = append(diags, moved...)
	}

	out, applied := ApplyHunks(path, src, hunks, opts)
	diags = append(diags, applied...)
	if model.HasErrors(applied) {
		return original, diags
	}
	return lines.Join(out), diags
}

// ApplyHunks applies hunks to original with a forward-only cursor. Context and
// removal mismatches are warnings and the cursor still advances; a hunk that
// starts past the end of the file is an error and yields no output.
func ApplyHunks(path string, original []lines.Line, hunks []Hunk, opts Options) ([]lines.Line, []model.Diagnostic) {
	sorted := make([]Hunk, len(hunks))
	copy(sorted, hunks)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].OldStart < sorted[j].OldStart })

	var (
		diags      []model.Diagnostic
		out        = make([]lines.Line, 0, len(original))
		c          int
		mismatches int
	)

	for _, h := range sorted {
		hunkLoc := fmt.Sprintf("hunk @@ -%d,%d", h.OldStart, h.OldCount)

		if h.OldStart-1 > len(original) {
			diags = append(diags, model.Errorf(model.CodeHunkBounds, path, hunkLoc,
				"hunk starts at line %d but the original has only %d line(s)", h.OldStart, len(original)))
			return nil, diags
		}
		target := h.OldStart - 1
		if h.OldCount == 0 {
			// Pure insertions name the line they follow.
			target = min(h.OldStart, len(original))
		}
		if target < 0 {
			target = 0
		}
		if target < c {
			mismatches++
			diags = append(diags, model.Warnf(model.CodeContentMismatch, path, hunkLoc,
				"hunk overlaps the previous one; applying at original line %d", c+1))
		}
		for ; c < target; c++ {
			out = push(out, original[c])
		}

		for _, op := range h.Ops {
			switch op.Kind {
			case Add:
				out = push(out, op.Line)
			case Remove:
				if c < len(original) && original[c].Equal(op.Line) {
					c++
					continue
				}
				mismatches++
				diags = append(diags, model.Warnf(model.CodeContentMismatch, path, originalLoc(c),
					"removal mismatch: diff removes %q, original has %s", truncate(op.Line.Text, 60), describe(original, c)))
				if c < len(original) {
					c++
				}
			case Context:
				if c < len(original) && original[c].Equal(op.Line) {
					out = push(out, original[c])
					c++
					continue
				}
				mismatches++
				diags = append(diags, model.Warnf(model.CodeContentMismatch, path, originalLoc(c),
					"context mismatch: diff expects %q, original has %s", truncate(op.Line.Text, 60), describe(original, c)))
				out = push(out, op.Line)
				if c < len(original) {
					c++
				}
			}
		}
	}
	for ; c < len(original); c++ {
		out = push(out, original[c])
	}

	if opts.MaxMismatches > 0 && mismatches > opts.MaxMismatches {
		diags = append(diags, model.Errorf(model.CodeMismatchLimit, path, "",
			"%d mismatched line(s) exceed the limit of %d", mismatches, opts.MaxMismatches))
		return nil, diags
	}
	return out, diags
}

// push appends l, first terminating a previous line that had no newline.
func push(out []lines.Line, l lines.Line) []lines.Line {
	if n := len(out); n > 0 && !out[n-1].EOL {
		out[n-1].EOL = true
	}
	return append(out, l)
}

func originalLoc(c int) string {
	return fmt.Sprintf("original line %d", c+1)
}

func describe(original []lines.Line, c int) string {
	if c >= len(original) {
		return "end of file"
	}
	return fmt.Sprintf("%q", truncate(original[c].Text, 60))
}
