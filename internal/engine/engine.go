// Package engine runs the full pipeline over one response: extract edit
// units, patch every known file and summarize the batch. It does no I/O.
package engine

import (
	"github.com/sokinpui/coder.go/internal/parser"
	"github.com/sokinpui/coder.go/internal/patcher"
	"github.com/sokinpui/coder.go/internal/report"
	"github.com/sokinpui/coder.go/model"
)

// Options select the protocol and patch policy.
type Options struct {
	// Kind is the protocol the response is read with.
	Kind model.EditKind
	// AutoDetect overrides Kind when the response shows which protocol it uses.
	AutoDetect bool
	Patch      patcher.Options
}

// Run applies response to records. It never fails: every problem is in the
// returned diagnostics and outcomes.
func Run(records []model.FileRecord, response string, opts Options) model.BatchResult {
	kind := opts.Kind
	if opts.AutoDetect {
		if detected, ok := parser.DetectKind(response); ok {
			kind = detected
		}
	}

	known := make([]string, len(records))
	for i, r := range records {
		known[i] = r.Path
	}

	ex := parser.Extract(response, kind, known)
	outcomes, patchDiags := patcher.Patch(records, ex.Units, opts.Patch)

	diags := make([]model.Diagnostic, 0, len(ex.Diagnostics)+len(patchDiags))
	diags = append(diags, ex.Diagnostics...)
	diags = append(diags, patchDiags...)
	return report.Summarize(outcomes, diags)
}
