package coder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"strings"

	"github.com/rs/zerolog"

	"github.com/sokinpui/coder.go/cli"
	"github.com/sokinpui/coder.go/internal/engine"
	"github.com/sokinpui/coder.go/internal/fs"
	"github.com/sokinpui/coder.go/internal/nvim"
	"github.com/sokinpui/coder.go/internal/parser"
	"github.com/sokinpui/coder.go/internal/patcher"
	"github.com/sokinpui/coder.go/internal/preview"
	"github.com/sokinpui/coder.go/internal/report"
	"github.com/sokinpui/coder.go/internal/sink"
	"github.com/sokinpui/coder.go/internal/source"
	"github.com/sokinpui/coder.go/internal/state"
	"github.com/sokinpui/coder.go/model"
)

// previewContext is the number of unchanged lines shown around a change.
const previewContext = 3

// ProgressUpdate is a callback function to report progress.
type ProgressUpdate func(current, total int)

// bufferWriter is the part of the Neovim manager used by --buffer.
type bufferWriter interface {
	WriteBuffers(outcomes []model.Outcome, save bool, progressCb func(int)) ([]string, map[string]error)
	SelfStarted() bool
	Close()
}

func openNvim() (bufferWriter, error) {
	m, err := nvim.New()
	if err != nil {
		return nil, err
	}
	return m, nil
}

// App orchestrates the entire application logic.
type App struct {
	cfg              *cli.Config
	logger           zerolog.Logger
	sourceProvider   *source.SourceProvider
	sink             sink.Sink
	out              io.Writer
	stateRoot        string
	openBuffers      func() (bufferWriter, error)
	progressCallback ProgressUpdate
}

// DetailedError enhances a standard error with a stack trace.
type DetailedError struct {
	Err   error
	Stack []byte
}

func (e *DetailedError) Error() string {
	return e.Err.Error()
}

func (e *DetailedError) Unwrap() error {
	return e.Err
}

// New creates a new App instance.
func New(cfg *cli.Config, logger zerolog.Logger) (*App, error) {
	if _, err := engineOptions(libraryConfig(cfg)); err != nil {
		return nil, err
	}
	return &App{
		cfg:            cfg,
		logger:         logger,
		sourceProvider: source.New(cfg.Response),
		sink:           sink.New(cfg.DumpDir),
		out:            os.Stdout,
		openBuffers:    openNvim,
	}, nil
}

// SetProgressCallback sets a function to be called for progress updates.
func (a *App) SetProgressCallback(cb ProgressUpdate) {
	a.progressCallback = cb
}

// Execute runs the mode selected by the flags.
func (a *App) Execute(ctx context.Context) (summary model.Summary, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &DetailedError{
				Err:   fmt.Errorf("internal panic: %v", r),
				Stack: debug.Stack(),
			}
		}
	}()

	switch {
	case a.cfg.Revert:
		return a.revertLastOperation()
	case a.cfg.Redo:
		return a.redoLastOperation()
	case a.cfg.OutputDiffFix:
		return a.fixAndPrintDiffs(ctx)
	default:
		return a.processContent(ctx)
	}
}

// ExitCode maps an Execute result to the process exit status.
func ExitCode(summary model.Summary, err error) int {
	if err != nil {
		return 1
	}
	if summary.Result == nil {
		return 0
	}
	switch summary.Result.Status {
	case model.Complete:
		return 0
	case model.Partial:
		return 2
	default:
		return 1
	}
}

// processContent reads the inputs, runs the engine and persists the result.
func (a *App) processContent(ctx context.Context) (model.Summary, error) {
	records, err := a.loadRecords(ctx)
	if err != nil {
		return model.Summary{}, err
	}
	content, err := a.readResponse()
	if err != nil {
		return model.Summary{}, err
	}

	opts, _ := engineOptions(libraryConfig(a.cfg))
	result := engine.Run(records, content, opts)
	a.logResult(&result)

	if a.cfg.DryRun {
		a.printPreviews(records, &result)
		return model.Summary{Result: &result, Message: "Dry run: nothing was written."}, nil
	}
	if result.Status == model.Failed {
		return model.Summary{Result: &result, Message: "No usable edits in the response."}, nil
	}
	if a.cfg.Buffer {
		return a.writeBuffers(records, &result)
	}
	return a.writeFiles(records, &result), nil
}

func (a *App) loadRecords(ctx context.Context) ([]model.FileRecord, error) {
	paths := append([]string(nil), a.cfg.Files...)
	if a.cfg.FileList != "" {
		listed, err := fs.ReadFileList(a.cfg.FileList)
		if err != nil {
			return nil, err
		}
		paths = append(paths, listed...)
	}
	if len(paths) == 0 {
		return nil, errors.New("no input files: pass paths as arguments or use --file-list")
	}

	valid, missing := fs.ResolvePaths(paths)
	for _, p := range missing {
		a.logger.Warn().Str("path", p).Msg("not found or not a regular file, skipping")
	}
	if len(valid) == 0 {
		return nil, errors.New("none of the input files exist")
	}

	records, err := fs.LoadRecords(ctx, valid)
	if err != nil {
		return nil, fmt.Errorf("failed to load input files: %w", err)
	}
	a.logger.Info().Int("files", len(records)).Msg("loaded input files")
	return records, nil
}

func (a *App) readResponse() (string, error) {
	content, origin, err := a.sourceProvider.GetContent()
	if err != nil {
		return "", err
	}
	a.logger.Info().Str("source", string(origin)).Int("bytes", len(content)).Msg("read response")

	if path, err := a.sink.Dump("response", content); err != nil {
		a.logger.Warn().Err(err).Msg("failed to dump response")
	} else if path != "" {
		a.logger.Debug().Str("path", path).Msg("dumped response")
	}
	return content, nil
}

func (a *App) logResult(r *model.BatchResult) {
	for _, d := range r.Diagnostics {
		ev := a.logger.Warn()
		if d.Severity == model.Error {
			ev = a.logger.Error()
		}
		ev.Str("code", d.Code).Str("path", d.Path).Str("location", d.Location).Msg(d.Message)
	}
	a.logger.Info().
		Stringer("status", r.Status).
		Int("modified", r.Modified).
		Int("unchanged", r.Unchanged).
		Int("skipped", r.Skipped).
		Msg("batch finished")
}

func (a *App) printPreviews(records []model.FileRecord, r *model.BatchResult) {
	originals := make(map[string]string, len(records))
	for _, rec := range records {
		originals[rec.Path] = rec.Original
	}
	for _, o := range report.Modified(r) {
		path := fs.Relativize([]string{o.Path})[0]
		fmt.Fprint(a.out, preview.Render(path, originals[o.Path], o.Content, previewContext))
	}
}

// writeFiles persists every Modified outcome and records the run in the
// history so it can be reverted.
func (a *App) writeFiles(records []model.FileRecord, r *model.BatchResult) model.Summary {
	originals := make(map[string]string, len(records))
	for _, rec := range records {
		originals[rec.Path] = rec.Original
	}

	modified := report.Modified(r)
	a.progress(0, len(modified))

	var written []string
	var changes []state.Change
	for i, o := range modified {
		if err := fs.WriteFile(o.Path, o.Content); err != nil {
			a.logger.Error().Err(err).Str("path", o.Path).Msg("write failed")
			report.MarkWriteFailed(r, o.Path, err)
		} else {
			written = append(written, o.Path)
			changes = append(changes, state.Change{Path: o.Path, Before: originals[o.Path], After: o.Content})
		}
		a.progress(i+1, len(modified))
	}

	if len(changes) > 0 {
		if err := a.recordHistory(changes); err != nil {
			a.logger.Warn().Err(err).Msg("revert will not be available for this operation")
		}
	}

	var failed []string
	for _, o := range report.Failures(r) {
		failed = append(failed, o.Path)
	}
	return model.Summary{Result: r, Written: written, Failed: failed}
}

func (a *App) recordHistory(changes []state.Change) error {
	m, err := state.New(a.stateRoot)
	if err != nil {
		return err
	}
	return m.Record(changes)
}

// writeBuffers loads Modified outcomes into Neovim buffers. A running editor
// keeps them unsaved. A temporary headless instance loses its buffers on
// exit, so there they are saved and recorded in the history like a file
// write.
func (a *App) writeBuffers(records []model.FileRecord, r *model.BatchResult) (model.Summary, error) {
	manager, err := a.openBuffers()
	if err != nil {
		return model.Summary{}, err
	}
	defer manager.Close()

	save := manager.SelfStarted()
	if save {
		a.logger.Info().Msg("no running Neovim found, saving buffers from a temporary instance")
	}

	modified := report.Modified(r)
	a.progress(0, len(modified))
	updated, failed := manager.WriteBuffers(modified, save, func(n int) {
		a.progress(n, len(modified))
	})
	for path, err := range failed {
		report.MarkWriteFailed(r, path, err)
	}

	var failedPaths []string
	for _, o := range report.Failures(r) {
		failedPaths = append(failedPaths, o.Path)
	}
	summary := model.Summary{
		Result:  r,
		Written: updated,
		Failed:  failedPaths,
		Message: "Buffers updated in Neovim; changes are not saved and cannot be reverted.",
	}
	if !save {
		return summary, nil
	}

	summary.Message = "No running Neovim found; buffers were saved to disk."
	originals := make(map[string]string, len(records))
	for _, rec := range records {
		originals[rec.Path] = rec.Original
	}
	var changes []state.Change
	for _, path := range updated {
		o, _ := r.Outcome(path)
		changes = append(changes, state.Change{Path: path, Before: originals[path], After: o.Content})
	}
	if len(changes) > 0 {
		if err := a.recordHistory(changes); err != nil {
			a.logger.Warn().Err(err).Msg("revert will not be available for this operation")
		}
	}
	return summary, nil
}

// fixAndPrintDiffs prints every diff in the response with its hunks moved
// to where they match and their headers recomputed.
func (a *App) fixAndPrintDiffs(ctx context.Context) (model.Summary, error) {
	records, err := a.loadRecords(ctx)
	if err != nil {
		return model.Summary{}, err
	}
	content, err := a.readResponse()
	if err != nil {
		return model.Summary{}, err
	}

	known := make([]string, len(records))
	for i, r := range records {
		known[i] = r.Path
	}
	ex := parser.Extract(content, model.UnifiedDiff, known)
	for _, d := range ex.Diagnostics {
		a.logger.Warn().Str("code", d.Code).Str("path", d.Path).Msg(d.Message)
	}

	for _, r := range records {
		unit, ok := ex.Units[r.Path]
		if !ok {
			continue
		}
		corrected, diags := patcher.CorrectDiff(r.Path, r.Original, unit.Payload)
		for _, d := range diags {
			a.logger.Warn().Str("code", d.Code).Str("path", d.Path).Msg(d.Message)
		}
		if model.HasErrors(diags) {
			continue
		}
		fmt.Fprint(a.out, corrected)
	}
	return model.Summary{}, nil
}

func (a *App) revertLastOperation() (model.Summary, error) {
	m, err := state.New(a.stateRoot)
	if err != nil {
		return model.Summary{}, fmt.Errorf("failed to initialize state manager: %w", err)
	}
	res, err := m.Revert()
	if errors.Is(err, state.ErrNothingToRevert) {
		return model.Summary{Message: "No operation to revert."}, nil
	}
	if err != nil {
		return model.Summary{}, err
	}
	return historySummary("Reverted last operation.", res), nil
}

func (a *App) redoLastOperation() (model.Summary, error) {
	m, err := state.New(a.stateRoot)
	if err != nil {
		return model.Summary{}, fmt.Errorf("failed to initialize state manager: %w", err)
	}
	res, err := m.Redo()
	if errors.Is(err, state.ErrNothingToRedo) {
		return model.Summary{Message: "No operation to redo."}, nil
	}
	if err != nil {
		return model.Summary{}, err
	}
	return historySummary("Redid last reverted operation.", res), nil
}

func historySummary(msg string, res state.Result) model.Summary {
	if len(res.Failed) > 0 {
		msg += fmt.Sprintf(" %d file(s) changed since and were left alone: %s",
			len(res.Failed), strings.Join(fs.Relativize(res.Failed), ", "))
	}
	return model.Summary{Written: res.Done, Failed: res.Failed, Message: msg}
}

func (a *App) progress(current, total int) {
	if a.progressCallback != nil {
		a.progressCallback(current, total)
	}
}

func libraryConfig(cfg *cli.Config) Config {
	return Config{
		Protocol:         cfg.Protocol,
		Strict:           cfg.Strict,
		Relocate:         cfg.Relocate,
		MaxMismatches:    cfg.MaxMismatches,
		KeepFinalNewline: cfg.KeepNewline,
	}
}
