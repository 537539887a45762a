package patcher

import (
	"strings"

	"github.com/sokinpui/coder.go/model"
)

// DedupeRecords keeps one record per path. The last record wins but keeps
// the position of the first; differing content is reported as a warning.
func DedupeRecords(records []model.FileRecord) ([]model.FileRecord, []model.Diagnostic) {
	var diags []model.Diagnostic
	index := make(map[string]int, len(records))
	out := make([]model.FileRecord, 0, len(records))

	for _, r := range records {
		i, seen := index[r.Path]
		if !seen {
			index[r.Path] = len(out)
			out = append(out, r)
			continue
		}
		if out[i].Original != r.Original {
			diags = append(diags, model.Warnf(model.CodeDuplicateRecord, r.Path, "",
				"file listed more than once with different content; using the last one"))
		}
		out[i] = r
	}
	return out, diags
}

// Patch decides the outcome of every record, in input order. Records without
// an edit unit stay Unchanged; diffs that produce any Error are Skipped.
func Patch(records []model.FileRecord, units map[string]model.EditUnit, opts Options) ([]model.Outcome, []model.Diagnostic) {
	records, diags := DedupeRecords(records)
	outcomes := make([]model.Outcome, 0, len(records))

	for _, r := range records {
		unit, ok := units[r.Path]
		if !ok {
			d := model.Warnf(model.CodeMissingEdit, r.Path, "", "no edit block in response; file left unchanged")
			diags = append(diags, d)
			outcomes = append(outcomes, model.Outcome{
				Path:        r.Path,
				Kind:        model.Unchanged,
				Content:     r.Original,
				Reason:      d.Message,
				Diagnostics: []model.Diagnostic{d},
			})
			continue
		}

		o := patchOne(r, unit, opts)
		diags = append(diags, o.Diagnostics...)
		outcomes = append(outcomes, o)
	}
	return outcomes, diags
}

func patchOne(r model.FileRecord, unit model.EditUnit, opts Options) model.Outcome {
	o := model.Outcome{Path: r.Path, EditKind: unit.Kind, HasEdit: true}

	switch unit.Kind {
	case model.FullContent:
		o.Kind = model.Modified
		o.Content = TrimPayload(unit.Payload)
		if opts.KeepFinalNewline && o.Content != "" && strings.HasSuffix(r.Original, "\n") {
			o.Content += "\n"
		}
	case model.UnifiedDiff:
		content, diags := Apply(r.Path, r.Original, unit.Payload, opts)
		o.Diagnostics = diags
		if first := model.FirstError(diags); first != nil {
			o.Kind = model.Skipped
			o.Content = r.Original
			o.Reason = first.Message
			return o
		}
		o.Kind = model.Modified
		o.Content = content
	default:
		d := model.Errorf(model.CodeStructural, r.Path, "", "unsupported edit kind %v", unit.Kind)
		o.Kind = model.Skipped
		o.Content = r.Original
		o.Reason = d.Message
		o.Diagnostics = []model.Diagnostic{d}
	}
	return o
}

// TrimPayload trims surrounding whitespace from a full-content payload. It is
// applied exactly once; the result is the new file content.
func TrimPayload(payload string) string {
	return strings.TrimSpace(payload)
}
