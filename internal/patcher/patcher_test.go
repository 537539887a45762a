package patcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sokinpui/coder.go/model"
)

func TestPatchFullContent(t *testing.T) {
	records := []model.FileRecord{
		{Path: "/a.go", Original: "package a\n"},
		{Path: "/b.go", Original: "package b"},
	}
	units := map[string]model.EditUnit{
		"/a.go": {Path: "/a.go", Kind: model.FullContent, Payload: "\n\npackage a\n\nvar X = 1\n\n"},
		"/b.go": {Path: "/b.go", Kind: model.FullContent, Payload: "  package b2  \n"},
	}

	outcomes, diags := Patch(records, units, Options{})
	assert.Empty(t, diags)
	require.Len(t, outcomes, 2)
	assert.Equal(t, model.Modified, outcomes[0].Kind)
	assert.Equal(t, "package a\n\nvar X = 1", outcomes[0].Content)
	assert.Equal(t, model.Modified, outcomes[1].Kind)
	assert.Equal(t, "package b2", outcomes[1].Content)
}

func TestPatchUnchangedIsNotAnError(t *testing.T) {
	records := []model.FileRecord{{Path: "/a", Original: "x\n"}}

	outcomes, diags := Patch(records, nil, Options{})
	require.Len(t, outcomes, 1)
	assert.Equal(t, model.Unchanged, outcomes[0].Kind)
	assert.Equal(t, "x\n", outcomes[0].Content)
	assert.False(t, model.HasErrors(diags))
	require.Len(t, diags, 1)
	assert.Equal(t, model.CodeMissingEdit, diags[0].Code)
}

func TestPatchDiffSkippedOnError(t *testing.T) {
	records := []model.FileRecord{{Path: "/a", Original: "a\nb\n"}}
	units := map[string]model.EditUnit{
		"/a": {Path: "/a", Kind: model.UnifiedDiff, Payload: "@@ -7,1 +7,1 @@\n-q\n+r\n"},
	}

	outcomes, diags := Patch(records, units, Options{})
	require.Len(t, outcomes, 1)
	o := outcomes[0]
	assert.Equal(t, model.Skipped, o.Kind)
	assert.Equal(t, "a\nb\n", o.Content)
	assert.NotEmpty(t, o.Reason)
	require.NotNil(t, model.FirstError(diags))
	assert.Equal(t, model.CodeHunkBounds, model.FirstError(diags).Code)
}

func TestPatchDiffWarningsDoNotBlock(t *testing.T) {
	records := []model.FileRecord{{Path: "/a", Original: "a\nx\nc\n"}}
	units := map[string]model.EditUnit{
		"/a": {Path: "/a", Kind: model.UnifiedDiff, Payload: "@@ -1,3 +1,3 @@\n a\n-b\n+B\n c\n"},
	}

	outcomes, diags := Patch(records, units, Options{})
	require.Len(t, outcomes, 1)
	assert.Equal(t, model.Modified, outcomes[0].Kind)
	assert.Equal(t, "a\nB\nc\n", outcomes[0].Content)
	require.Len(t, outcomes[0].Diagnostics, 1)
	assert.Len(t, diags, 1)
}

func TestPatchPreservesInputOrder(t *testing.T) {
	records := []model.FileRecord{{Path: "/z"}, {Path: "/a"}, {Path: "/m"}}
	outcomes, _ := Patch(records, nil, Options{})
	require.Len(t, outcomes, 3)
	assert.Equal(t, "/z", outcomes[0].Path)
	assert.Equal(t, "/a", outcomes[1].Path)
	assert.Equal(t, "/m", outcomes[2].Path)
}

func TestDedupeRecords(t *testing.T) {
	records := []model.FileRecord{
		{Path: "/a", Original: "1"},
		{Path: "/b", Original: "b"},
		{Path: "/a", Original: "2"},
		{Path: "/b", Original: "b"},
	}
	out, diags := DedupeRecords(records)
	assert.Equal(t, []model.FileRecord{{Path: "/a", Original: "2"}, {Path: "/b", Original: "b"}}, out)
	require.Len(t, diags, 1)
	assert.Equal(t, model.CodeDuplicateRecord, diags[0].Code)
	assert.Equal(t, "/a", diags[0].Path)
}

func TestTrimPayload(t *testing.T) {
	assert.Equal(t, "x", TrimPayload("\n x \n\n"))
	assert.Equal(t, "a\n  b", TrimPayload("a\n  b\n"))
	assert.Equal(t, "", TrimPayload(" \n "))
}

func TestPatchFullContentIsBlockInterior(t *testing.T) {
	records := []model.FileRecord{{Path: "/a", Original: "old\n"}}
	units := map[string]model.EditUnit{"/a": {Path: "/a", Kind: model.FullContent, Payload: "\n  new\n\n"}}

	outcomes, _ := Patch(records, units, Options{})
	require.Len(t, outcomes, 1)
	assert.Equal(t, model.Modified, outcomes[0].Kind)
	assert.Equal(t, "new", outcomes[0].Content)

	outcomes, _ = Patch(records, units, Options{KeepFinalNewline: true})
	assert.Equal(t, "new\n", outcomes[0].Content)

	records[0].Original = "old"
	outcomes, _ = Patch(records, units, Options{KeepFinalNewline: true})
	assert.Equal(t, "new", outcomes[0].Content)
}
