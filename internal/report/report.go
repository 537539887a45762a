// Package report turns per-file outcomes into a batch verdict.
package report

import (
	"github.com/sokinpui/coder.go/model"
)

// Summarize counts outcomes and decides the batch status.
//
//   - Failed: extraction produced no usable edit (a structural error).
//   - Complete: every file had an edit and every edit ended Modified.
//   - Partial: anything else.
func Summarize(outcomes []model.Outcome, diags []model.Diagnostic) model.BatchResult {
	r := model.BatchResult{Outcomes: outcomes, Diagnostics: diags}
	recount(&r)
	return r
}

// MarkWriteFailed records that persisting path failed and recomputes the
// status. It returns false when path has no Modified outcome.
func MarkWriteFailed(r *model.BatchResult, path string, err error) bool {
	for i := range r.Outcomes {
		o := &r.Outcomes[i]
		if o.Path != path || o.Kind != model.Modified {
			continue
		}
		d := model.Errorf(model.CodeWrite, path, "", "failed to write file: %v", err)
		o.Kind = model.WriteFailed
		o.Reason = d.Message
		o.Diagnostics = append(o.Diagnostics, d)
		r.Diagnostics = append(r.Diagnostics, d)
		recount(r)
		return true
	}
	return false
}

// Failures returns the outcomes that did not end Modified or Unchanged.
func Failures(r *model.BatchResult) []model.Outcome {
	var out []model.Outcome
	for _, o := range r.Outcomes {
		if o.Kind == model.Skipped || o.Kind == model.WriteFailed {
			out = append(out, o)
		}
	}
	return out
}

// Modified returns the outcomes that carry new content to persist.
func Modified(r *model.BatchResult) []model.Outcome {
	var out []model.Outcome
	for _, o := range r.Outcomes {
		if o.Kind == model.Modified {
			out = append(out, o)
		}
	}
	return out
}

func recount(r *model.BatchResult) {
	r.Modified, r.Unchanged, r.Skipped, r.WriteFailed = 0, 0, 0, 0
	for _, o := range r.Outcomes {
		switch o.Kind {
		case model.Modified:
			r.Modified++
		case model.Unchanged:
			r.Unchanged++
		case model.Skipped:
			r.Skipped++
		case model.WriteFailed:
			r.WriteFailed++
		}
	}
	r.Status = status(r)
}

func status(r *model.BatchResult) model.Status {
	for _, d := range r.Diagnostics {
		if d.Severity == model.Error && d.Code == model.CodeStructural {
			return model.Failed
		}
	}
	if r.Skipped > 0 || r.WriteFailed > 0 || r.Unchanged > 0 {
		return model.Partial
	}
	return model.Complete
}
