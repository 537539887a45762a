package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sokinpui/coder.go/model"
)

const (
	pathA = "/repo/a.go"
	pathB = "/repo/b.go"
	pathC = "/repo/c.go"
)

var known = []string{pathA, pathB}

func codes(diags []model.Diagnostic) []string {
	out := make([]string, len(diags))
	for i, d := range diags {
		out[i] = d.Code
	}
	return out
}

func TestExtractFullContent(t *testing.T) {
	response := "Sure, here you go.\n\n" +
		FormatBlock(pathA, "package a\n\nvar A = 1\n") +
		"\n" +
		FormatBlock(pathB, "package b\n")

	ex := Extract(response, model.FullContent, known)
	assert.Empty(t, ex.Diagnostics)
	require.Len(t, ex.Units, 2)
	assert.Equal(t, model.EditUnit{Path: pathA, Kind: model.FullContent, Payload: "package a\n\nvar A = 1\n"}, ex.Units[pathA])
	assert.Equal(t, "package b\n", ex.Units[pathB].Payload)
}

func TestExtractFullContentUnknownPath(t *testing.T) {
	response := FormatBlock(pathA, "a") + FormatBlock(pathC, "c") + FormatBlock(pathB, "b")

	ex := Extract(response, model.FullContent, known)
	require.Len(t, ex.Units, 2)
	assert.NotContains(t, ex.Units, pathC)
	require.Len(t, ex.Diagnostics, 1)
	d := ex.Diagnostics[0]
	assert.Equal(t, model.CodeCorrespondence, d.Code)
	assert.Equal(t, model.Warning, d.Severity)
	assert.Equal(t, pathC, d.Path)
}

func TestExtractFullContentDuplicateLastWins(t *testing.T) {
	response := FormatBlock(pathA, "first") + FormatBlock(pathA, "second")

	ex := Extract(response, model.FullContent, known)
	assert.Equal(t, "second\n", ex.Units[pathA].Payload)
	assert.Equal(t, []string{model.CodeDuplicate}, codes(ex.Diagnostics))
}

func TestExtractFullContentMismatchedEnd(t *testing.T) {
	response := "--- BEGIN_OF_FILE: /repo/a.go ---\nx\n--- END_OF_FILE: /repo/b.go ---\n" + FormatBlock(pathB, "b")

	ex := Extract(response, model.FullContent, known)
	assert.NotContains(t, ex.Units, pathA)
	assert.Contains(t, ex.Units, pathB)
	assert.Equal(t, []string{model.CodeMarkerMismatch}, codes(ex.Diagnostics))
}

func TestExtractFullContentUnterminated(t *testing.T) {
	response := "--- BEGIN_OF_FILE: /repo/a.go ---\nx\n" + FormatBlock(pathB, "b") + "--- BEGIN_OF_FILE: /repo/a.go ---\ny\n"

	ex := Extract(response, model.FullContent, known)
	assert.NotContains(t, ex.Units, pathA)
	assert.Equal(t, "b\n", ex.Units[pathB].Payload)
	assert.Equal(t, []string{model.CodeUnterminated, model.CodeUnterminated}, codes(ex.Diagnostics))
}

func TestExtractFullContentEndWithoutTrailingNewline(t *testing.T) {
	response := "--- BEGIN_OF_FILE: /repo/a.go ---\npackage a\n--- END_OF_FILE: /repo/a.go ---"

	ex := Extract(response, model.FullContent, known)
	assert.Equal(t, "package a\n", ex.Units[pathA].Payload)
}

func TestExtractFullContentPathIsExact(t *testing.T) {
	response := FormatBlock("/repo/A.go", "x") + FormatBlock("/repo/a.go/", "x")

	ex := Extract(response, model.FullContent, known)
	assert.Empty(t, ex.Units)
	assert.Equal(t, []string{model.CodeCorrespondence, model.CodeCorrespondence, model.CodeStructural}, codes(ex.Diagnostics))
	assert.Contains(t, ex.Diagnostics[2].Message, "no blocks matched known files")
}

func TestExtractNoBlocks(t *testing.T) {
	ex := Extract("I could not find anything to change.", model.FullContent, known)
	assert.Empty(t, ex.Units)
	require.Len(t, ex.Diagnostics, 1)
	assert.Equal(t, model.Error, ex.Diagnostics[0].Severity)
	assert.Equal(t, "no valid blocks found", ex.Diagnostics[0].Message)
}

func TestExtractEmptyResponse(t *testing.T) {
	ex := Extract("  \n\n", model.UnifiedDiff, known)
	require.Len(t, ex.Diagnostics, 1)
	assert.Equal(t, model.CodeStructural, ex.Diagnostics[0].Code)
}

func TestExtractUnwrapsFencedResponse(t *testing.T) {
	response := "```\n" + FormatBlock(pathA, "package a") + "```\n"

	ex := Extract(response, model.FullContent, known)
	assert.Empty(t, ex.Diagnostics)
	assert.Equal(t, "package a\n", ex.Units[pathA].Payload)
}

func TestExtractNormalizesCRLF(t *testing.T) {
	response := "--- BEGIN_OF_FILE: /repo/a.go ---\r\nx\r\n--- END_OF_FILE: /repo/a.go ---\r\n"

	ex := Extract(response, model.FullContent, known)
	assert.Equal(t, "x\n", ex.Units[pathA].Payload)
}

func TestDetectKind(t *testing.T) {
	kind, ok := DetectKind(FormatBlock(pathA, "x"))
	assert.True(t, ok)
	assert.Equal(t, model.FullContent, kind)

	kind, ok = DetectKind("--- a/x\n+++ b/x\n@@ -1 +1 @@\n-a\n+b\n")
	assert.True(t, ok)
	assert.Equal(t, model.UnifiedDiff, kind)

	_, ok = DetectKind("hello")
	assert.False(t, ok)
}
