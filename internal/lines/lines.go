// Package lines splits text into newline-aware lines and joins them back.
//
// Split normalizes "\r\n" to "\n" before splitting, so CRLF input is not
// restored by Join. For "\n"-only text, Join(Split(t)) == t.
package lines

import "strings"

// Line is one line of text. EOL is false only for a final line that has no
// trailing newline.
type Line struct {
	Text string
	EOL  bool
}

// New returns a newline-terminated line.
func New(text string) Line {
	return Line{Text: text, EOL: true}
}

// String returns the line including its newline, if any.
func (l Line) String() string {
	if l.EOL {
		return l.Text + "\n"
	}
	return l.Text
}

// Equal compares line text only. A missing final newline does not make two
// lines differ for patch matching.
func (l Line) Equal(other Line) bool {
	return l.Text == other.Text
}

// Normalize converts CRLF line endings to LF.
func Normalize(text string) string {
	return strings.ReplaceAll(text, "\r\n", "\n")
}

// Split converts text into lines. The empty string yields no lines.
func Split(text string) []Line {
	text = Normalize(text)
	if text == "" {
		return nil
	}
	parts := strings.Split(text, "\n")
	last := len(parts) - 1
	out := make([]Line, 0, len(parts))
	for i, p := range parts {
		if i == last {
			if p != "" {
				out = append(out, Line{Text: p})
			}
			break
		}
		out = append(out, Line{Text: p, EOL: true})
	}
	return out
}

// Join is the inverse of Split.
func Join(ls []Line) string {
	var b strings.Builder
	for _, l := range ls {
		b.WriteString(l.Text)
		if l.EOL {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// Texts returns the text of every line, without newlines.
func Texts(ls []Line) []string {
	out := make([]string, len(ls))
	for i, l := range ls {
		out[i] = l.Text
	}
	return out
}
