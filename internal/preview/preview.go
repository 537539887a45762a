// Package preview renders a colored line diff of a pending change, used by
// dry runs.
package preview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// Op is the role of a line in a preview.
type Op int

const (
	Equal Op = iota
	Insert
	Delete
)

// Line is one line of a line-level diff, without its newline.
type Line struct {
	Op   Op
	Text string
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	insertStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("78"))
	deleteStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("197"))
	faintStyle  = lipgloss.NewStyle().Faint(true)
)

// Lines diffs before and after line by line.
func Lines(before, after string) []Line {
	dmp := diffmatchpatch.New()
	a, b, index := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), index)

	var out []Line
	for _, d := range diffs {
		op := Equal
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			op = Insert
		case diffmatchpatch.DiffDelete:
			op = Delete
		}
		text := strings.TrimSuffix(d.Text, "\n")
		for _, l := range strings.Split(text, "\n") {
			out = append(out, Line{Op: op, Text: l})
		}
	}
	return out
}

// Stats counts inserted and deleted lines.
func Stats(lines []Line) (added, removed int) {
	for _, l := range lines {
		switch l.Op {
		case Insert:
			added++
		case Delete:
			removed++
		}
	}
	return added, removed
}

// Render shows the changed lines of path with up to context unchanged lines
// around each change. Runs of skipped lines are collapsed to "...".
func Render(path, before, after string, context int) string {
	lines := Lines(before, after)
	added, removed := Stats(lines)

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%s (+%d -%d)", path, added, removed)))
	b.WriteString("\n")
	if added == 0 && removed == 0 {
		b.WriteString(faintStyle.Render("  no changes"))
		b.WriteString("\n")
		return b.String()
	}

	keep := visible(lines, context)
	skipping := false
	for i, l := range lines {
		if !keep[i] {
			if !skipping {
				b.WriteString(faintStyle.Render("  ..."))
				b.WriteString("\n")
			}
			skipping = true
			continue
		}
		skipping = false
		switch l.Op {
		case Insert:
			b.WriteString(insertStyle.Render("+ " + l.Text))
		case Delete:
			b.WriteString(deleteStyle.Render("- " + l.Text))
		default:
			b.WriteString("  " + l.Text)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func visible(lines []Line, context int) []bool {
	keep := make([]bool, len(lines))
	for i, l := range lines {
		if l.Op == Equal {
			continue
		}
		for j := max(0, i-context); j <= min(len(lines)-1, i+context); j++ {
			keep[j] = true
		}
	}
	return keep
}
