package coder

import (
	"sort"

	"github.com/sokinpui/coder.go/internal/engine"
	"github.com/sokinpui/coder.go/internal/patcher"
	"github.com/sokinpui/coder.go/model"
)

// Config for using coder as a library.
type Config struct {
	// Protocol is "auto" or a name accepted by model.ParseEditKind. Empty
	// means auto.
	Protocol string
	// Strict applies diffs with exact matching; any mismatch skips the file.
	Strict bool
	// Relocate moves hunks to where their lines actually appear.
	Relocate bool
	// MaxMismatches skips a file once this many lines mismatched. 0 disables.
	MaxMismatches int
	// KeepFinalNewline ends full-content results with a newline when the
	// original ended with one. Off by default: the block interior is used
	// exactly as trimmed.
	KeepFinalNewline bool
}

// Apply patches files, a map from absolute path to current content, with a
// model response. Nothing is written; the new content is in the outcomes.
// The only error is an unknown protocol.
func Apply(files map[string]string, response string, config Config) (model.BatchResult, error) {
	opts, err := engineOptions(config)
	if err != nil {
		return model.BatchResult{}, err
	}

	paths := make([]string, 0, len(files))
	for p := range files {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	records := make([]model.FileRecord, len(paths))
	for i, p := range paths {
		records[i] = model.FileRecord{Path: p, Original: files[p]}
	}
	return engine.Run(records, response, opts), nil
}

func engineOptions(config Config) (engine.Options, error) {
	opts := engine.Options{
		Kind: model.UnifiedDiff,
		Patch: patcher.Options{
			Strict:           config.Strict,
			Relocate:         config.Relocate,
			MaxMismatches:    config.MaxMismatches,
			KeepFinalNewline: config.KeepFinalNewline,
		},
	}
	if config.Protocol == "" || config.Protocol == "auto" {
		opts.AutoDetect = true
		return opts, nil
	}
	kind, err := model.ParseEditKind(config.Protocol)
	if err != nil {
		return engine.Options{}, err
	}
	opts.Kind = kind
	return opts, nil
}
