package cli

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/sokinpui/coder.go/internal/config"
)

// Config holds all the command-line flag values, merged over the config
// file.
type Config struct {
	Files         []string
	FileList      string
	Response      string
	Protocol      string
	DryRun        bool
	Buffer        bool
	Strict        bool
	MaxMismatches int
	Relocate      bool
	KeepNewline   bool
	OutputDiffFix bool
	Revert        bool
	Redo          bool
	NoTUI         bool
	DumpDir       string
	ConfigPath    string
	Log           config.Log
}

// ParseFlags defines and parses command-line flags using pflag.
func ParseFlags() (*Config, error) {
	return Parse(pflag.CommandLine, os.Args[1:])
}

// Parse registers the flags on fs and parses args. Flags left unset take
// their value from the config file.
func Parse(fs *pflag.FlagSet, args []string) (*Config, error) {
	cfg := &Config{}

	fs.StringVarP(&cfg.FileList, "file-list", "f", "", "File with one input path per line.")
	fs.StringVar(&cfg.Response, "response", "", "Read the response from this file instead of stdin or the clipboard.")
	fs.StringVarP(&cfg.Protocol, "protocol", "p", "auto", "Edit protocol of the response: auto, full (fulltext, full-content) or diff (udiff, unified-diff).")
	fs.BoolVarP(&cfg.DryRun, "dry-run", "n", false, "Preview the changes without writing anything.")
	fs.BoolVarP(&cfg.Buffer, "buffer", "b", false, "Update buffers in Neovim without saving them to disk.")
	fs.BoolVar(&cfg.Strict, "strict", false, "Apply diffs strictly; any mismatch skips the file.")
	fs.IntVar(&cfg.MaxMismatches, "max-mismatches", 0, "Skip a file after this many mismatched lines (0 means no limit).")
	fs.BoolVar(&cfg.Relocate, "relocate", false, "Move hunks to where their lines actually are before applying.")
	fs.BoolVar(&cfg.KeepNewline, "keep-final-newline", false, "End full-content results with a newline when the original file had one.")
	fs.BoolVarP(&cfg.OutputDiffFix, "output-diff-fix", "o", false, "Print the diffs with corrected start and count.")
	fs.BoolVar(&cfg.NoTUI, "no-tui", false, "Disable the spinner and print plain output.")
	fs.StringVar(&cfg.DumpDir, "dump-dir", "", "Save a copy of every response in this directory.")
	fs.StringVar(&cfg.Log.Level, "log-level", "warn", "Log level: trace, debug, info, warn or error.")
	fs.StringVar(&cfg.Log.File, "log-file", "", "Also write logs to this rotating file.")
	fs.StringVarP(&cfg.ConfigPath, "config", "c", "", "Config file (default $"+config.EnvConfigPath+" or ./"+config.DefaultFileName+").")

	// Mutually exclusive history group
	fs.BoolVarP(&cfg.Revert, "revert", "r", false, "Revert the last operation.")
	fs.BoolVarP(&cfg.Redo, "redo", "R", false, "Redo the last reverted operation.")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: coder [flags] [files...]")
		fmt.Fprintln(os.Stderr, "\nApply a model response (full-content blocks or unified diffs) to the given files.")
		fmt.Fprintln(os.Stderr, "\nExample: pbpaste | coder -f files.txt")
		fmt.Fprintln(os.Stderr, "\nFlags:")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	cfg.Files = fs.Args()

	if cfg.Revert && cfg.Redo {
		return nil, fmt.Errorf("--revert and --redo are mutually exclusive")
	}

	file, err := config.Load(cfg.ConfigPath)
	if err != nil {
		return nil, err
	}
	cfg.merge(fs, file)

	if err := config.Validate(cfg.asFile()); err != nil {
		return nil, err
	}
	return cfg, nil
}

// merge copies config file values into every flag the user did not set.
func (c *Config) merge(fs *pflag.FlagSet, f *config.File) {
	set := func(name string) bool { return fs.Changed(name) }

	if !set("protocol") {
		c.Protocol = f.Protocol
	}
	if !set("buffer") {
		c.Buffer = f.Buffer
	}
	if !set("strict") {
		c.Strict = f.Strict
	}
	if !set("relocate") {
		c.Relocate = f.Relocate
	}
	if !set("max-mismatches") {
		c.MaxMismatches = f.MaxMismatches
	}
	if !set("keep-final-newline") {
		c.KeepNewline = f.KeepFinalNewline
	}
	if !set("no-tui") {
		c.NoTUI = f.NoTUI
	}
	if !set("dump-dir") {
		c.DumpDir = f.DumpDir
	}
	if !set("log-level") {
		c.Log.Level = f.Log.Level
	}
	if !set("log-file") {
		c.Log.File = f.Log.File
	}
	c.Log.MaxSizeMB = f.Log.MaxSizeMB
	c.Log.MaxBackups = f.Log.MaxBackups
}

func (c *Config) asFile() *config.File {
	return &config.File{
		Protocol:         c.Protocol,
		Buffer:           c.Buffer,
		Strict:           c.Strict,
		Relocate:         c.Relocate,
		MaxMismatches:    c.MaxMismatches,
		KeepFinalNewline: c.KeepNewline,
		NoTUI:            c.NoTUI,
		DumpDir:          c.DumpDir,
		Log:              c.Log,
	}
}
