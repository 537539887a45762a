package patcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sokinpui/coder.go/internal/lines"
	"github.com/sokinpui/coder.go/model"
)

func TestParseHunkHeader(t *testing.T) {
	tests := []struct {
		line string
		want Hunk
	}{
		{"@@ -1,3 +1,4 @@", Hunk{OldStart: 1, OldCount: 3, NewStart: 1, NewCount: 4}},
		{"@@ -5 +5 @@", Hunk{OldStart: 5, OldCount: 1, NewStart: 5, NewCount: 1}},
		{"@@ -0,0 +1,2 @@", Hunk{OldStart: 0, OldCount: 0, NewStart: 1, NewCount: 2}},
		{"@@ -10,2 +12,3 @@ func main() {", Hunk{OldStart: 10, OldCount: 2, NewStart: 12, NewCount: 3}},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := ParseHunkHeader(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseHunkHeaderMalformed(t *testing.T) {
	for _, line := range []string{"@@", "@@ -a,b +c,d @@", "@@ 1,2 1,2 @@"} {
		_, err := ParseHunkHeader(line)
		assert.Error(t, err, line)
	}
}

func TestParseDiff(t *testing.T) {
	payload := "--- a/x\n+++ b/x\n@@ -1,3 +1,3 @@\n a\n-b\n+B\n c\n"
	hunks, diags := ParseDiff("/x", payload)
	require.Empty(t, diags)
	require.Len(t, hunks, 1)
	assert.Equal(t, []Op{
		{Kind: Context, Line: lines.New("a")},
		{Kind: Remove, Line: lines.New("b")},
		{Kind: Add, Line: lines.New("B")},
		{Kind: Context, Line: lines.New("c")},
	}, hunks[0].Ops)
	assert.Equal(t, 3, hunks[0].Source)
}

func TestParseDiffNoNewlineMarker(t *testing.T) {
	payload := "@@ -1 +1 @@\n-a\n\\ No newline at end of file\n+b\n\\ No newline at end of file\n"
	hunks, diags := ParseDiff("/x", payload)
	require.Empty(t, diags)
	require.Len(t, hunks, 1)
	assert.False(t, hunks[0].Ops[0].Line.EOL)
	assert.False(t, hunks[0].Ops[1].Line.EOL)
}

func TestParseDiffBlankLineIsContext(t *testing.T) {
	payload := "@@ -1,3 +1,3 @@\n a\n\n-c\n+C\n"
	hunks, _ := ParseDiff("/x", payload)
	require.Len(t, hunks, 1)
	assert.Equal(t, Op{Kind: Context, Line: lines.New("")}, hunks[0].Ops[1])
}

func TestParseDiffTrimsTrailingSeparators(t *testing.T) {
	payload := "@@ -1,2 +1,2 @@\n a\n-b\n+B\n\n\n"
	hunks, _ := ParseDiff("/x", payload)
	require.Len(t, hunks, 1)
	assert.Len(t, hunks[0].Ops, 3)
}

func TestParseDiffMalformedHeaderSkipsBody(t *testing.T) {
	payload := "@@ bogus @@\n-a\n+b\n@@ -2,1 +2,1 @@\n-x\n+y\n"
	hunks, diags := ParseDiff("/x", payload)
	require.Len(t, hunks, 1)
	assert.Equal(t, 2, hunks[0].OldStart)
	require.Len(t, diags, 1)
	assert.Equal(t, model.CodeMalformedHunk, diags[0].Code)
	assert.Equal(t, model.Warning, diags[0].Severity)
}

func TestParseDiffStrayLines(t *testing.T) {
	payload := "Here is the change:\n@@ -1 +1 @@\n-a\n+b\n?? what\n"
	hunks, diags := ParseDiff("/x", payload)
	require.Len(t, hunks, 1)
	assert.Len(t, hunks[0].Ops, 2)
	require.Len(t, diags, 2)
	for _, d := range diags {
		assert.Equal(t, model.CodeMalformedHunk, d.Code)
	}
}
