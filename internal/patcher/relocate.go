package patcher

import (
	"fmt"
	"strings"

	"github.com/sokinpui/coder.go/internal/lines"
	"github.com/sokinpui/coder.go/model"
)

// targetBlock builds the search pattern for a hunk: the text of its context
// and removed lines, which must exist in the original. Blank lines are left
// out so the match survives whitespace-only drift.
func targetBlock(h Hunk) (block []string, leadingBlank int) {
	seenText := false
	for _, op := range h.Ops {
		if op.Kind == Add {
			continue
		}
		if strings.TrimSpace(op.Line.Text) == "" {
			if !seenText {
				leadingBlank++
			}
			continue
		}
		seenText = true
		block = append(block, op.Line.Text)
	}
	return block, leadingBlank
}

// normalizeLineForMatching trims a line and collapses internal whitespace.
func normalizeLineForMatching(line string) string {
	return strings.Join(strings.Fields(line), " ")
}

// matchBlock returns every 1-based original line number where block starts,
// comparing whitespace-normalized text and skipping blank source lines.
func matchBlock(source, block []string) []int {
	if len(block) == 0 {
		return nil
	}

	normalizedBlock := make([]string, len(block))
	for i, line := range block {
		normalizedBlock[i] = normalizeLineForMatching(line)
	}

	var filteredSource []string
	var originalLineNumbers []int
	for i, line := range source {
		normalizedLine := normalizeLineForMatching(line)
		if normalizedLine != "" {
			filteredSource = append(filteredSource, normalizedLine)
			originalLineNumbers = append(originalLineNumbers, i+1)
		}
	}

	var starts []int
	for i := 0; i <= len(filteredSource)-len(normalizedBlock); i++ {
		match := true
		for j := range normalizedBlock {
			if filteredSource[i+j] != normalizedBlock[j] {
				match = false
				break
			}
		}
		if match {
			starts = append(starts, originalLineNumbers[i])
		}
	}
	return starts
}

// matchesAt reports whether the hunk's context and removed lines match the
// original exactly at its declared start.
func matchesAt(original []lines.Line, h Hunk) bool {
	c := h.OldStart - 1
	if c < 0 {
		c = 0
	}
	for _, op := range h.Ops {
		if op.Kind == Add {
			continue
		}
		if c >= len(original) || !original[c].Equal(op.Line) {
			return false
		}
		c++
	}
	return true
}

// Relocate moves each hunk whose lines do not match at the declared start to
// the nearest place in the original where they do. Hunks that cannot be found
// are left as declared.
func Relocate(path string, original []lines.Line, hunks []Hunk) ([]Hunk, []model.Diagnostic) {
	source := lines.Texts(original)
	out := make([]Hunk, len(hunks))
	var diags []model.Diagnostic

	for i, h := range hunks {
		out[i] = h
		if h.oldLen() == 0 || matchesAt(original, h) {
			continue
		}
		block, leadingBlank := targetBlock(h)
		starts := matchBlock(source, block)
		if len(starts) == 0 {
			continue
		}
		best := nearest(starts, h.OldStart)
		if best-leadingBlank >= 1 {
			best -= leadingBlank
		}
		if best == h.OldStart {
			continue
		}
		diags = append(diags, model.Warnf(model.CodeRelocated, path, fmt.Sprintf("hunk @@ -%d,%d", h.OldStart, h.OldCount),
			"hunk moved from line %d to line %d", h.OldStart, best))
		out[i].OldStart = best
	}
	return out, diags
}

func nearest(candidates []int, want int) int {
	best := candidates[0]
	for _, c := range candidates[1:] {
		if abs(c-want) < abs(best-want) {
			best = c
		}
	}
	return best
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func buildHunkHeader(oldStart, oldLines, newStart, newLines int) string {
	return fmt.Sprintf("@@ -%d,%d +%d,%d @@\n", oldStart, oldLines, newStart, newLines)
}

// FormatDiff renders hunks as a unified diff for path, recomputing every
// header from the hunk bodies.
func FormatDiff(path string, hunks []Hunk) string {
	var b strings.Builder
	fmt.Fprintf(&b, "--- a/%s\n", path)
	fmt.Fprintf(&b, "+++ b/%s\n", path)

	lineDiffOffset := 0
	for _, h := range hunks {
		oldLines, newLines := h.oldLen(), h.newLen()
		newStart := h.OldStart + lineDiffOffset
		b.WriteString(buildHunkHeader(h.OldStart, oldLines, newStart, newLines))
		for _, op := range h.Ops {
			switch op.Kind {
			case Add:
				b.WriteByte('+')
			case Remove:
				b.WriteByte('-')
			default:
				b.WriteByte(' ')
			}
			b.WriteString(op.Line.Text)
			b.WriteByte('\n')
			if !op.Line.EOL {
				b.WriteString("\\ No newline at end of file\n")
			}
		}
		lineDiffOffset += newLines - oldLines
	}
	return b.String()
}

// CorrectDiff relocates the hunks of payload against original and returns
// the diff with corrected headers.
func CorrectDiff(path, original, payload string) (string, []model.Diagnostic) {
	hunks, diags := ParseDiff(path, payload)
	if len(hunks) == 0 {
		return "", append(diags, model.Errorf(model.CodeMalformedHunk, path, "", "diff contains no hunks"))
	}
	hunks, moved := Relocate(path, lines.Split(original), hunks)
	return FormatDiff(path, hunks), append(diags, moved...)
}
