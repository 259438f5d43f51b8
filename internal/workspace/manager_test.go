package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerCreate(t *testing.T) {
	base := t.TempDir()
	m, err := NewManager(base, nil)
	require.NoError(t, err)

	ws1, err := m.Create()
	require.NoError(t, err)
	ws2, err := m.Create()
	require.NoError(t, err)

	assert.NotEqual(t, ws1.Path(), ws2.Path())

	for _, ws := range []*Workspace{ws1, ws2} {
		info, err := os.Stat(ws.Path())
		require.NoError(t, err)
		assert.True(t, info.IsDir())
		assert.Equal(t, base, filepath.Dir(ws.Path()))
	}
}

func TestManagerCreatesBaseDir(t *testing.T) {
	base := filepath.Join(t.TempDir(), "nested", "workspaces")
	_, err := NewManager(base, nil)
	require.NoError(t, err)

	info, err := os.Stat(base)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestWorkspaceCleanup(t *testing.T) {
	m, err := NewManager(t.TempDir(), nil)
	require.NoError(t, err)

	ws, err := m.Create()
	require.NoError(t, err)

	// Populate with nested content
	sub := filepath.Join(ws.Path(), "pkg")
	require.NoError(t, os.MkdirAll(sub, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "a.py"), []byte("x"), 0644))

	ws.Cleanup()

	_, statErr := os.Stat(ws.Path())
	assert.True(t, os.IsNotExist(statErr))
}

func TestWorkspaceCleanupIdempotent(t *testing.T) {
	m, err := NewManager(t.TempDir(), nil)
	require.NoError(t, err)

	ws, err := m.Create()
	require.NoError(t, err)

	ws.Cleanup()
	// Second call must be a no-op, not a panic or double delete
	ws.Cleanup()

	_, statErr := os.Stat(ws.Path())
	assert.True(t, os.IsNotExist(statErr))
}
