package parser

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// isFence reports whether a response line opens or closes a fenced block.
func isFence(line string) bool {
	return strings.HasPrefix(line, "```") || strings.HasPrefix(line, "~~~")
}

// fencedContent returns the raw text inside a fenced code block.
func fencedContent(node *ast.FencedCodeBlock, source []byte) string {
	var content bytes.Buffer
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		content.Write(line.Value(source))
	}
	return content.String()
}

// UnwrapFence returns the content of response when the whole response is a
// single fenced code block, and response unchanged otherwise.
func UnwrapFence(response string) string {
	trimmed := strings.TrimSpace(response)
	if !isFence(trimmed) {
		return response
	}

	source := []byte(trimmed)
	root := goldmark.DefaultParser().Parse(text.NewReader(source))
	if root.ChildCount() != 1 {
		return response
	}
	fenced, ok := root.FirstChild().(*ast.FencedCodeBlock)
	if !ok {
		return response
	}
	return fencedContent(fenced, source)
}
