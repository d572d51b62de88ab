package testutil

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/go-git/go-billy/v5/util"
	"golang.org/x/sys/unix"

	"github.com/arthur-debert/cfgsync/pkg/cfgsync/filesystem"
)

// RealFSTestHelper lays out a home directory and a backup root inside a
// temporary directory on the real filesystem.
// This helper is Unix-only (Linux/macOS).
type RealFSTestHelper struct {
	t       *testing.T
	tempDir string
	ops     *filesystem.BillyFileOps
}

// NewRealFSTestHelper creates the helper. Tests are skipped on Windows.
func NewRealFSTestHelper(t *testing.T) *RealFSTestHelper {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("cfgsync real filesystem tests need a Unix host")
	}

	h := &RealFSTestHelper{
		t:       t,
		tempDir: t.TempDir(),
		ops:     filesystem.NewOSFileOps(),
	}
	h.Mkdir(h.Home())
	h.Mkdir(h.Backup())
	return h
}

// Ops returns file operations on the host filesystem.
func (h *RealFSTestHelper) Ops() *filesystem.BillyFileOps {
	return h.ops
}

// Home returns the absolute home directory.
func (h *RealFSTestHelper) Home() string {
	return filepath.Join(h.tempDir, "home")
}

// Backup returns the absolute backup root.
func (h *RealFSTestHelper) Backup() string {
	return filepath.Join(h.tempDir, "backup")
}

// WriteFile writes content at path, creating parent directories.
func (h *RealFSTestHelper) WriteFile(path, content string) {
	h.t.Helper()
	writeFile(h.t, h.ops, path, content)
}

// ReadFile returns the content at path.
func (h *RealFSTestHelper) ReadFile(path string) string {
	h.t.Helper()
	return readFile(h.t, h.ops, path)
}

// Mkdir creates path and its parents.
func (h *RealFSTestHelper) Mkdir(path string) {
	h.t.Helper()
	if err := h.ops.Filesystem().MkdirAll(path, 0o755); err != nil {
		h.t.Fatalf("Failed to create directory %s: %v", path, err)
	}
}

// Symlink creates a symlink at linkPath pointing to target.
func (h *RealFSTestHelper) Symlink(target, linkPath string) {
	h.t.Helper()
	if err := h.ops.Filesystem().Symlink(target, linkPath); err != nil {
		h.t.Fatalf("Failed to create symlink %s -> %s: %v", linkPath, target, err)
	}
}

// MakeFifo creates a named pipe at path.
func (h *RealFSTestHelper) MakeFifo(path string) {
	h.t.Helper()
	h.Mkdir(filepath.Dir(path))
	if err := unix.Mkfifo(path, 0o600); err != nil {
		h.t.Fatalf("Failed to create fifo %s: %v", path, err)
	}
}

func writeFile(t *testing.T, ops *filesystem.BillyFileOps, path, content string) {
	t.Helper()
	fsys := ops.Filesystem()
	if err := fsys.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("Failed to create parent of %s: %v", path, err)
	}
	if err := util.WriteFile(fsys, path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
}

func readFile(t *testing.T, ops *filesystem.BillyFileOps, path string) string {
	t.Helper()
	data, err := util.ReadFile(ops.Filesystem(), path)
	if err != nil {
		t.Fatalf("Failed to read %s: %v", path, err)
	}
	return string(data)
}
