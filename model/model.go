package model

import "fmt"

// FileRecord is one input file: its absolute path and the content the model saw.
type FileRecord struct {
	Path     string
	Original string
}

// EditKind tells which wire protocol produced an EditUnit.
type EditKind int

const (
	// FullContent units carry the complete new content of a file.
	FullContent EditKind = iota
	// UnifiedDiff units carry the hunks of a unified diff for a file.
	UnifiedDiff
)

func (k EditKind) String() string {
	switch k {
	case FullContent:
		return "full"
	case UnifiedDiff:
		return "diff"
	default:
		return fmt.Sprintf("EditKind(%d)", int(k))
	}
}

// ParseEditKind maps the protocol names used on the command line and in
// config files to an EditKind.
func ParseEditKind(s string) (EditKind, error) {
	switch s {
	case "full", "fulltext", "full-content":
		return FullContent, nil
	case "diff", "udiff", "unified-diff":
		return UnifiedDiff, nil
	default:
		return 0, fmt.Errorf("unknown protocol %q", s)
	}
}

// EditUnit is the change intended for one file, regardless of encoding.
type EditUnit struct {
	Path    string
	Kind    EditKind
	Payload string
}

// Severity of a Diagnostic.
type Severity int

const (
	Warning Severity = iota
	Error
)

func (s Severity) String() string {
	if s == Error {
		return "error"
	}
	return "warning"
}

// Diagnostic codes.
const (
	CodeStructural       = "structural"
	CodeCorrespondence   = "correspondence"
	CodeDuplicate        = "duplicate"
	CodeHunkBounds       = "hunk-bounds"
	CodeContentMismatch  = "content-mismatch"
	CodeMissingEdit      = "missing-edit"
	CodeUnparsedPreamble = "unparsed-preamble"
	CodeMalformedHunk    = "malformed-hunk"
	CodeUnterminated     = "unterminated-block"
	CodeMarkerMismatch   = "marker-mismatch"
	CodeHeaderMismatch   = "header-mismatch"
	CodeMismatchLimit    = "mismatch-limit"
	CodeDuplicateRecord  = "duplicate-record"
	CodeStrictApply      = "strict-apply"
	CodeRelocated        = "relocated"
	CodeWrite            = "write"
)

// Diagnostic records something unexpected found while parsing or patching.
// Location is a free-form hint such as "response line 12" or "original line 3".
type Diagnostic struct {
	Severity Severity
	Code     string
	Message  string
	Path     string
	Location string
}

func (d Diagnostic) String() string {
	s := d.Severity.String() + " [" + d.Code + "]"
	if d.Path != "" {
		s += " " + d.Path
	}
	if d.Location != "" {
		s += " (" + d.Location + ")"
	}
	return s + ": " + d.Message
}

// Warnf builds a Warning diagnostic.
func Warnf(code, path, location, format string, a ...any) Diagnostic {
	return Diagnostic{Severity: Warning, Code: code, Path: path, Location: location, Message: fmt.Sprintf(format, a...)}
}

// Errorf builds an Error diagnostic.
func Errorf(code, path, location, format string, a ...any) Diagnostic {
	return Diagnostic{Severity: Error, Code: code, Path: path, Location: location, Message: fmt.Sprintf(format, a...)}
}

// HasErrors reports whether any diagnostic has Error severity.
func HasErrors(diags []Diagnostic) bool {
	return FirstError(diags) != nil
}

// FirstError returns the first Error diagnostic, or nil.
func FirstError(diags []Diagnostic) *Diagnostic {
	for i := range diags {
		if diags[i].Severity == Error {
			return &diags[i]
		}
	}
	return nil
}

// OutcomeKind classifies what happened to one file.
type OutcomeKind int

const (
	Unchanged OutcomeKind = iota
	Modified
	Skipped
	WriteFailed
)

func (k OutcomeKind) String() string {
	switch k {
	case Unchanged:
		return "unchanged"
	case Modified:
		return "modified"
	case Skipped:
		return "skipped"
	case WriteFailed:
		return "write-failed"
	default:
		return fmt.Sprintf("OutcomeKind(%d)", int(k))
	}
}

// Outcome is the per-file result of a batch. Content holds the new text for
// Modified outcomes and the untouched original otherwise.
type Outcome struct {
	Path        string
	Kind        OutcomeKind
	EditKind    EditKind
	HasEdit     bool
	Content     string
	Reason      string
	Diagnostics []Diagnostic
}

// Status is the overall verdict for a batch.
type Status int

const (
	Complete Status = iota
	Partial
	Failed
)

func (s Status) String() string {
	switch s {
	case Complete:
		return "complete"
	case Partial:
		return "partial"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// BatchResult aggregates the outcomes of one engine invocation.
type BatchResult struct {
	Status      Status
	Outcomes    []Outcome
	Diagnostics []Diagnostic
	Modified    int
	Unchanged   int
	Skipped     int
	WriteFailed int
}

// Outcome returns the outcome for path, if any.
func (r *BatchResult) Outcome(path string) (Outcome, bool) {
	for _, o := range r.Outcomes {
		if o.Path == path {
			return o, true
		}
	}
	return Outcome{}, false
}

// Summary holds the results of a CLI operation for display.
type Summary struct {
	Result  *BatchResult
	Written []string
	Failed  []string
	Message string
}
