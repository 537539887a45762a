package nvim

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/neovim/go-client/nvim"

	"github.com/sokinpui/coder.go/model"
)

const undoDir = "~/.local/state/nvim/undo/"

// Manager handles the connection and interaction with a Neovim instance.
type Manager struct {
	nvim          *nvim.Nvim
	isSelfStarted bool
	cmd           *exec.Cmd
	socketPath    string
}

// New connects to the Neovim named by $NVIM or $NVIM_LISTEN_ADDRESS, or
// starts a temporary headless one.
func New() (*Manager, error) {
	for _, env := range []string{"NVIM", "NVIM_LISTEN_ADDRESS"} {
		if addr := os.Getenv(env); addr != "" {
			if v, err := nvim.Dial(addr); err == nil {
				return &Manager{nvim: v}, nil
			}
		}
	}

	tmpDir, err := os.MkdirTemp("", "coder-nvim-")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir for nvim: %w", err)
	}
	socketPath := filepath.Join(tmpDir, "nvim.sock")

	cmd := exec.Command("nvim", "--headless", "--clean", "--listen", socketPath)
	if err := cmd.Start(); err != nil {
		os.RemoveAll(tmpDir)
		return nil, fmt.Errorf("failed to start headless nvim: %w. Is 'nvim' in your PATH?", err)
	}

	for i := 0; i < 20; i++ {
		if _, err := os.Stat(socketPath); err == nil {
			break
		}
		time.Sleep(50 * time.Millisecond)
	}

	v, err := nvim.Dial(socketPath)
	if err != nil {
		cmd.Process.Kill()
		cmd.Wait()
		os.RemoveAll(tmpDir)
		return nil, fmt.Errorf("failed to connect to headless nvim: %w", err)
	}

	m := &Manager{
		nvim:          v,
		isSelfStarted: true,
		cmd:           cmd,
		socketPath:    socketPath,
	}
	if err := m.configureTempInstance(); err != nil {
		m.Close()
		return nil, err
	}
	return m, nil
}

// configureTempInstance sets up undofile so edits can be undone in a later
// editor session.
func (m *Manager) configureTempInstance() error {
	home, _ := os.UserHomeDir()
	expandedUndoDir := strings.Replace(undoDir, "~", home, 1)
	if err := os.MkdirAll(expandedUndoDir, 0o755); err != nil {
		return fmt.Errorf("failed to create undo dir: %w", err)
	}

	b := m.nvim.NewBatch()
	b.Command("set undofile")
	b.Command(fmt.Sprintf("set undodir=%s", expandedUndoDir))
	b.Command("set noswapfile")
	if err := b.Execute(); err != nil {
		return fmt.Errorf("failed to configure nvim: %w", err)
	}
	return nil
}

// SelfStarted reports whether the instance is a temporary headless one. Its
// buffers vanish on Close, so edits only survive if they are saved.
func (m *Manager) SelfStarted() bool {
	return m.isSelfStarted
}

// Close disconnects from Neovim and cleans up if it was self-started.
func (m *Manager) Close() {
	if m.nvim != nil {
		m.nvim.Close()
	}
	if m.isSelfStarted && m.cmd != nil && m.cmd.Process != nil {
		if err := m.cmd.Process.Kill(); err == nil {
			m.cmd.Wait()
			os.RemoveAll(filepath.Dir(m.socketPath))
		}
	}
}

// WriteBuffers loads each Modified outcome into its buffer. When save is set
// the buffers are written to disk. failed maps paths to the error that
// stopped them.
func (m *Manager) WriteBuffers(outcomes []model.Outcome, save bool, progressCb func(int)) (updated []string, failed map[string]error) {
	failed = make(map[string]error)
	for i, o := range outcomes {
		if err := m.updateBuffer(o.Path, o.Content, save); err != nil {
			failed[o.Path] = err
		} else {
			updated = append(updated, o.Path)
		}
		if progressCb != nil {
			progressCb(i + 1)
		}
	}
	return updated, failed
}

func (m *Manager) updateBuffer(filePath, content string, save bool) error {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return err
	}

	b := m.nvim.NewBatch()
	b.Command(fmt.Sprintf("edit %s", escapePath(absPath)))
	b.SetBufferLines(0, 0, -1, true, toBufferLines(content))
	if !strings.HasSuffix(content, "\n") {
		b.Command("setlocal nofixendofline noendofline")
	}
	if save {
		b.Command("write!")
	}
	if err := b.Execute(); err != nil {
		return fmt.Errorf("nvim failed on '%s': %w", filePath, err)
	}
	return nil
}

// toBufferLines splits content the way Neovim stores it: one entry per line
// with the final newline implied.
func toBufferLines(content string) [][]byte {
	content = strings.TrimSuffix(content, "\n")
	parts := strings.Split(content, "\n")
	out := make([][]byte, len(parts))
	for i, s := range parts {
		out[i] = []byte(s)
	}
	return out
}

func escapePath(p string) string {
	return strings.NewReplacer(" ", `\ `, "%", `\%`, "#", `\#`).Replace(p)
}
