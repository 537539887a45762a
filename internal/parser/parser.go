package parser

import (
	"regexp"
	"strings"

	"github.com/sokinpui/coder.go/internal/lines"
	"github.com/sokinpui/coder.go/model"
)

// Extraction is the result of scanning one response.
type Extraction struct {
	// Units maps a known path to the edit intended for it.
	Units map[string]model.EditUnit
	// Diagnostics in the order they were found.
	Diagnostics []model.Diagnostic
	// Blocks counts well-formed blocks, including ones for unknown paths.
	Blocks int
}

var (
	anyBeginMarkerRegex = regexp.MustCompile(`(?m)^\s*--- (?:BEGIN_OF_FILE|Start of File): `)
	anyDiffHeaderRegex  = regexp.MustCompile(`(?m)^--- a/`)
	anyHunkHeaderRegex  = regexp.MustCompile(`(?m)^@@ -\d`)
)

// DetectKind guesses which protocol a response uses.
func DetectKind(response string) (model.EditKind, bool) {
	switch {
	case anyBeginMarkerRegex.MatchString(response):
		return model.FullContent, true
	case anyDiffHeaderRegex.MatchString(response) && anyHunkHeaderRegex.MatchString(response):
		return model.UnifiedDiff, true
	default:
		return 0, false
	}
}

// Extract splits response into per-file edit units for the given protocol.
// Only paths in known are accepted; everything else becomes a diagnostic.
func Extract(response string, kind model.EditKind, known []string) Extraction {
	ex := Extraction{Units: make(map[string]model.EditUnit)}

	response = lines.Normalize(response)
	if strings.TrimSpace(response) == "" {
		ex.Diagnostics = append(ex.Diagnostics, model.Errorf(model.CodeStructural, "", "", "response is empty"))
		return ex
	}
	response = UnwrapFence(response)

	knownSet := make(map[string]bool, len(known))
	for _, p := range known {
		knownSet[p] = true
	}

	switch kind {
	case model.FullContent:
		extractFullContent(&ex, response, knownSet)
	case model.UnifiedDiff:
		extractUnifiedDiff(&ex, response, knownSet)
	default:
		ex.Diagnostics = append(ex.Diagnostics, model.Errorf(model.CodeStructural, "", "", "unsupported protocol %v", kind))
		return ex
	}

	switch {
	case ex.Blocks == 0:
		ex.Diagnostics = append(ex.Diagnostics, model.Errorf(model.CodeStructural, "", "", "no valid blocks found"))
	case len(ex.Units) == 0:
		ex.Diagnostics = append(ex.Diagnostics, model.Errorf(model.CodeStructural, "", "", "no blocks matched known files"))
	}
	return ex
}

func (ex *Extraction) warn(code, path, loc, format string, a ...any) {
	ex.Diagnostics = append(ex.Diagnostics, model.Warnf(code, path, loc, format, a...))
}

// reject records a well-formed block whose path is not a known file.
func (ex *Extraction) reject(path, loc string) {
	ex.Blocks++
	ex.warn(model.CodeCorrespondence, path, loc, "block for a file that was not sent; discarded")
}

// accept stores a well-formed block for a known path; the last one wins.
func (ex *Extraction) accept(unit model.EditUnit, loc string) {
	ex.Blocks++
	if _, dup := ex.Units[unit.Path]; dup {
		ex.warn(model.CodeDuplicate, unit.Path, loc, "more than one block for this file; using the last one")
	}
	ex.Units[unit.Path] = unit
}
