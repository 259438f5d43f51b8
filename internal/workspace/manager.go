// Package workspace owns the lifecycle of per-request scratch directories.
// Each validation request extracts its archive into a freshly created,
// uniquely named directory that is removed when the request finishes,
// regardless of how the pipeline exits.
package workspace

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

// Manager creates scratch workspaces under a common base directory.
type Manager struct {
	baseDir string
	log     *slog.Logger
}

// NewManager creates a workspace manager rooted at baseDir.
func NewManager(baseDir string, logger *slog.Logger) (*Manager, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("creating workspace base directory: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{baseDir: baseDir, log: logger}, nil
}

// Create makes a new uniquely named workspace directory.
func (m *Manager) Create() (*Workspace, error) {
	path := filepath.Join(m.baseDir, "extract_"+uuid.New().String())
	if err := os.Mkdir(path, 0755); err != nil {
		return nil, fmt.Errorf("creating workspace: %w", err)
	}
	return &Workspace{path: path, log: m.log}, nil
}

// Workspace is one exclusively owned scratch directory.
type Workspace struct {
	path string
	log  *slog.Logger
	once sync.Once
}

// Path returns the workspace root directory.
func (w *Workspace) Path() string {
	return w.path
}

// Cleanup removes the workspace and everything in it. It runs at most once;
// a deletion failure is logged and swallowed because a leaked scratch
// directory must never fail the request it belonged to.
func (w *Workspace) Cleanup() {
	w.once.Do(func() {
		if err := os.RemoveAll(w.path); err != nil {
			w.log.Warn("workspace.cleanup_failed", "path", w.path, "error", err)
		}
	})
}
