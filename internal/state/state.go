package state

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sokinpui/coder.go/internal/fs"
)

const (
	stateDirName  = ".coder"
	stateFileName = "state.coder"
	BackupDir     = "backup"
)

// ActionModify is the only action the history records.
const ActionModify = "modify"

// Operation is one file rewrite. Hashes name blobs in the backup directory.
type Operation struct {
	Path       string
	Action     string
	BeforeHash string
	AfterHash  string
}

// HistoryEntry represents one complete run of the tool.
type HistoryEntry struct {
	Timestamp  int64
	Operations []Operation
}

// State represents the entire state file.
type State struct {
	History      []HistoryEntry
	CurrentIndex int
}

// Change is a successful write to record.
type Change struct {
	Path   string
	Before string
	After  string
}

// Result lists the files a revert or redo touched.
type Result struct {
	Done   []string
	Failed []string
}

// ErrNothingToRevert and ErrNothingToRedo report an empty history direction.
var (
	ErrNothingToRevert = errors.New("no operation to revert")
	ErrNothingToRedo   = errors.New("no operation to redo")
)

// Manager handles the lifecycle of the state file.
type Manager struct {
	statePath string
	state     *State
	StateDir  string
	now       func() time.Time
}

// findGitRoot finds the root of the git repository.
func findGitRoot() (string, error) {
	cmd := exec.Command("git", "rev-parse", "--show-toplevel")
	output, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(output)), nil
}

// New loads the state under rootDir. An empty rootDir means the enclosing
// git repository, or the working directory outside one.
func New(rootDir string) (*Manager, error) {
	if rootDir == "" {
		var err error
		rootDir, err = findGitRoot()
		if err != nil {
			rootDir, err = os.Getwd()
			if err != nil {
				return nil, fmt.Errorf("could not get current working directory: %w", err)
			}
		}
	}

	stateDir := filepath.Join(rootDir, stateDirName)
	if err := os.MkdirAll(filepath.Join(stateDir, BackupDir), 0o755); err != nil {
		return nil, fmt.Errorf("could not create state directory: %w", err)
	}
	m := &Manager{
		statePath: filepath.Join(stateDir, stateFileName),
		StateDir:  stateDir,
		now:       time.Now,
	}
	if err := m.load(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Manager) load() error {
	m.state = &State{CurrentIndex: -1}
	data, err := os.ReadFile(m.statePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("could not read state file: %w", err)
	}

	content := strings.ReplaceAll(string(data), "\r\n", "\n")
	blocks := strings.Split(content, "\n\n")
	if strings.TrimSpace(blocks[0]) == "" {
		return nil
	}

	index, err := strconv.Atoi(strings.TrimSpace(blocks[0]))
	if err != nil {
		return fmt.Errorf("invalid state file: could not parse current index: %w", err)
	}
	m.state.CurrentIndex = index

	for _, block := range blocks[1:] {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		lines := strings.Split(block, "\n")

		ts, err := strconv.ParseInt(lines[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid state file: could not parse timestamp from '%s': %w", lines[0], err)
		}

		entry := HistoryEntry{Timestamp: ts}
		opLines := lines[1:]
		if len(opLines)%4 != 0 {
			return fmt.Errorf("invalid state file: incomplete operation record")
		}
		for i := 0; i < len(opLines); i += 4 {
			entry.Operations = append(entry.Operations, Operation{
				Action:     opLines[i],
				Path:       opLines[i+1],
				BeforeHash: opLines[i+2],
				AfterHash:  opLines[i+3],
			})
		}
		m.state.History = append(m.state.History, entry)
	}

	if m.state.CurrentIndex >= len(m.state.History) || m.state.CurrentIndex < -1 {
		return fmt.Errorf("invalid state file: index %d out of range", m.state.CurrentIndex)
	}
	return nil
}

func (m *Manager) save() error {
	blocks := []string{strconv.Itoa(m.state.CurrentIndex)}

	for _, entry := range m.state.History {
		opLines := []string{strconv.FormatInt(entry.Timestamp, 10)}
		for _, op := range entry.Operations {
			opLines = append(opLines, op.Action, op.Path, op.BeforeHash, op.AfterHash)
		}
		blocks = append(blocks, strings.Join(opLines, "\n"))
	}

	if err := fs.WriteFile(m.statePath, strings.Join(blocks, "\n\n")+"\n"); err != nil {
		return fmt.Errorf("could not save state file: %w", err)
	}
	return nil
}

// Record stores the contents on both sides of each change and appends them
// as one history entry, discarding anything that could still be redone.
func (m *Manager) Record(changes []Change) error {
	if len(changes) == 0 {
		return nil
	}

	ops := make([]Operation, 0, len(changes))
	for _, c := range changes {
		before, err := m.storeBlob(c.Before)
		if err != nil {
			return err
		}
		after, err := m.storeBlob(c.After)
		if err != nil {
			return err
		}
		ops = append(ops, Operation{Path: c.Path, Action: ActionModify, BeforeHash: before, AfterHash: after})
	}
	sort.Slice(ops, func(i, j int) bool {
		return ops[i].Path < ops[j].Path
	})

	if m.state.CurrentIndex < len(m.state.History)-1 {
		m.state.History = m.state.History[:m.state.CurrentIndex+1]
	}
	m.state.History = append(m.state.History, HistoryEntry{
		Timestamp:  m.now().UTC().Unix(),
		Operations: ops,
	})
	m.state.CurrentIndex++
	return m.save()
}

// Revert restores the files of the current entry to their previous content.
// A file edited since it was written is left alone and reported as failed.
func (m *Manager) Revert() (Result, error) {
	if m.state.CurrentIndex < 0 {
		return Result{}, ErrNothingToRevert
	}
	entry := m.state.History[m.state.CurrentIndex]
	res := m.restore(entry.Operations, func(op Operation) (string, string) {
		return op.AfterHash, op.BeforeHash
	})
	m.state.CurrentIndex--
	return res, m.save()
}

// Redo re-applies the entry after the current one.
func (m *Manager) Redo() (Result, error) {
	next := m.state.CurrentIndex + 1
	if next >= len(m.state.History) {
		return Result{}, ErrNothingToRedo
	}
	entry := m.state.History[next]
	res := m.restore(entry.Operations, func(op Operation) (string, string) {
		return op.BeforeHash, op.AfterHash
	})
	m.state.CurrentIndex = next
	return res, m.save()
}

// History returns a copy of the recorded entries and the current index.
func (m *Manager) History() ([]HistoryEntry, int) {
	out := make([]HistoryEntry, len(m.state.History))
	copy(out, m.state.History)
	return out, m.state.CurrentIndex
}

func (m *Manager) restore(ops []Operation, hashes func(Operation) (expect, target string)) Result {
	var res Result
	for _, op := range ops {
		expect, target := hashes(op)
		if err := m.restoreOne(op.Path, expect, target); err != nil {
			res.Failed = append(res.Failed, op.Path)
			continue
		}
		res.Done = append(res.Done, op.Path)
	}
	return res
}

func (m *Manager) restoreOne(path, expect, target string) error {
	current, err := fs.GetFileSHA256(path)
	if err != nil {
		return err
	}
	if current != expect {
		return fmt.Errorf("'%s' changed since it was written", path)
	}
	content, err := os.ReadFile(m.blobPath(target))
	if err != nil {
		return fmt.Errorf("missing backup for '%s': %w", path, err)
	}
	return fs.WriteFile(path, string(content))
}

func (m *Manager) storeBlob(content string) (string, error) {
	hash := fs.HashString(content)
	path := m.blobPath(hash)
	if _, err := os.Stat(path); err == nil {
		return hash, nil
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("could not write backup: %w", err)
	}
	return hash, nil
}

func (m *Manager) blobPath(hash string) string {
	return filepath.Join(m.StateDir, BackupDir, hash)
}
