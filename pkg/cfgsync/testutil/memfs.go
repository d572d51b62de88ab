package testutil

import (
	"testing"

	"github.com/arthur-debert/cfgsync/pkg/cfgsync/filesystem"
)

// Roots used by in-memory fixtures.
const (
	MemHome   = "/home/alice"
	MemBackup = "/sync/Mackup"
)

// MemFSTestHelper is the in-memory counterpart of RealFSTestHelper.
type MemFSTestHelper struct {
	t   *testing.T
	ops *filesystem.BillyFileOps
}

// NewMemFSTestHelper returns a helper over an empty memory filesystem
// with MemHome and MemBackup created.
func NewMemFSTestHelper(t *testing.T) *MemFSTestHelper {
	t.Helper()
	h := &MemFSTestHelper{t: t, ops: filesystem.NewMemFileOps()}
	h.Mkdir(MemHome)
	h.Mkdir(MemBackup)
	return h
}

// Ops returns the in-memory file operations.
func (h *MemFSTestHelper) Ops() *filesystem.BillyFileOps {
	return h.ops
}

// WriteFile writes content at path, creating parent directories.
func (h *MemFSTestHelper) WriteFile(path, content string) {
	h.t.Helper()
	writeFile(h.t, h.ops, path, content)
}

// ReadFile returns the content at path.
func (h *MemFSTestHelper) ReadFile(path string) string {
	h.t.Helper()
	return readFile(h.t, h.ops, path)
}

// Mkdir creates path and its parents.
func (h *MemFSTestHelper) Mkdir(path string) {
	h.t.Helper()
	if err := h.ops.Filesystem().MkdirAll(path, 0o755); err != nil {
		h.t.Fatalf("Failed to create directory %s: %v", path, err)
	}
}

// Symlink creates a symlink at linkPath pointing to target.
func (h *MemFSTestHelper) Symlink(target, linkPath string) {
	h.t.Helper()
	if err := h.ops.Filesystem().Symlink(target, linkPath); err != nil {
		h.t.Fatalf("Failed to create symlink %s -> %s: %v", linkPath, target, err)
	}
}
