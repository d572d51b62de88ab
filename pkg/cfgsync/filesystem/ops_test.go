package filesystem_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/cfgsync/pkg/cfgsync"
	"github.com/arthur-debert/cfgsync/pkg/cfgsync/filesystem"
	"github.com/arthur-debert/cfgsync/pkg/cfgsync/testutil"
)

func TestPredicates(t *testing.T) {
	h := testutil.NewMemFSTestHelper(t)
	ops := h.Ops()

	file := testutil.MemHome + "/.gitconfig"
	dir := testutil.MemHome + "/.vim"
	link := testutil.MemHome + "/.vimrc"
	broken := testutil.MemHome + "/.zshrc"
	missing := testutil.MemHome + "/.bashrc"

	h.WriteFile(file, "[user]\n")
	h.Mkdir(dir)
	h.Symlink(file, link)
	h.Symlink(testutil.MemHome+"/nowhere", broken)

	testCases := []struct {
		path                            string
		isFile, isDir, isSymlink, exist bool
	}{
		{file, true, false, false, true},
		{dir, false, true, false, true},
		{link, true, false, true, true},
		{broken, false, false, true, true},
		{missing, false, false, false, false},
	}

	for _, tc := range testCases {
		t.Run(filepath.Base(tc.path), func(t *testing.T) {
			assert.Equal(t, tc.isFile, ops.IsFile(tc.path), "IsFile")
			assert.Equal(t, tc.isDir, ops.IsDir(tc.path), "IsDir")
			assert.Equal(t, tc.isSymlink, ops.IsSymlink(tc.path), "IsSymlink")
			assert.Equal(t, tc.exist, ops.Exists(tc.path), "Exists")
		})
	}
}

func TestCopyFileCreatesParents(t *testing.T) {
	h := testutil.NewMemFSTestHelper(t)
	src := testutil.MemHome + "/.config/app/settings.json"
	dst := testutil.MemBackup + "/.config/app/settings.json"
	h.WriteFile(src, `{"theme":"dark"}`)

	require.NoError(t, h.Ops().Copy(src, dst))

	assert.Equal(t, `{"theme":"dark"}`, h.ReadFile(dst))
	assert.Equal(t, `{"theme":"dark"}`, h.ReadFile(src), "source must be left in place")
}

func TestCopyDirectoryTree(t *testing.T) {
	h := testutil.NewMemFSTestHelper(t)
	src := testutil.MemHome + "/.vim"
	dst := testutil.MemBackup + "/.vim"
	h.WriteFile(src+"/vimrc", "set nu")
	h.WriteFile(src+"/colors/dark.vim", "hi Normal")
	h.Mkdir(src + "/empty")

	require.NoError(t, h.Ops().Copy(src, dst))

	assert.Equal(t, "set nu", h.ReadFile(dst+"/vimrc"))
	assert.Equal(t, "hi Normal", h.ReadFile(dst+"/colors/dark.vim"))
	assert.True(t, h.Ops().IsDir(dst+"/empty"))
}

func TestCopyReplacesDestination(t *testing.T) {
	h := testutil.NewMemFSTestHelper(t)
	src := testutil.MemBackup + "/.gitconfig"
	dst := testutil.MemHome + "/.gitconfig"
	target := testutil.MemHome + "/real-gitconfig"
	h.WriteFile(src, "from backup")
	h.WriteFile(target, "untouched")
	h.Symlink(target, dst)

	require.NoError(t, h.Ops().Copy(src, dst))

	assert.False(t, h.Ops().IsSymlink(dst), "symlink at destination must be replaced")
	assert.Equal(t, "from backup", h.ReadFile(dst))
	assert.Equal(t, "untouched", h.ReadFile(target), "copy must not write through a symlink")
}

func TestCopyMissingSource(t *testing.T) {
	h := testutil.NewMemFSTestHelper(t)
	err := h.Ops().Copy(testutil.MemHome+"/missing", testutil.MemBackup+"/missing")
	require.Error(t, err)
	assert.False(t, h.Ops().Exists(testutil.MemBackup+"/missing"))
}

func TestDelete(t *testing.T) {
	h := testutil.NewMemFSTestHelper(t)
	ops := h.Ops()

	dir := testutil.MemBackup + "/.vim"
	h.WriteFile(dir+"/colors/dark.vim", "hi Normal")
	require.NoError(t, ops.Delete(dir))
	assert.False(t, ops.Exists(dir))

	target := testutil.MemHome + "/target"
	link := testutil.MemBackup + "/link"
	h.WriteFile(target, "keep me")
	h.Symlink(target, link)
	require.NoError(t, ops.Delete(link))
	assert.False(t, ops.Exists(link))
	assert.Equal(t, "keep me", h.ReadFile(target), "deleting a link must keep its target")

	require.NoError(t, ops.Delete(testutil.MemBackup+"/never-existed"))
}

func TestRealFSCopyNormalizesModes(t *testing.T) {
	h := testutil.NewRealFSTestHelper(t)
	src := filepath.Join(h.Home(), ".ssh")
	dst := filepath.Join(h.Backup(), ".ssh")
	h.WriteFile(filepath.Join(src, "config"), "Host *")

	require.NoError(t, h.Ops().Copy(src, dst))
	assert.Equal(t, "Host *", h.ReadFile(filepath.Join(dst, "config")))

	if _, ok := h.Ops().Filesystem().(interface {
		Chmod(string, os.FileMode) error
	}); !ok {
		t.Skip("filesystem does not support chmod")
	}

	dirInfo, err := h.Ops().Filesystem().Stat(dst)
	require.NoError(t, err)
	fileInfo, err := h.Ops().Filesystem().Stat(filepath.Join(dst, "config"))
	require.NoError(t, err)
	assert.Equal(t, filesystem.DirMode, dirInfo.Mode().Perm())
	assert.Equal(t, filesystem.FileMode, fileInfo.Mode().Perm())
}

func TestRealFSCopyRejectsFifo(t *testing.T) {
	h := testutil.NewRealFSTestHelper(t)
	src := filepath.Join(h.Home(), "pipe")
	h.MakeFifo(src)

	err := h.Ops().Copy(src, filepath.Join(h.Backup(), "pipe"))
	require.Error(t, err)
	var unsupported *cfgsync.UnsupportedEntryError
	require.True(t, errors.As(err, &unsupported))
	assert.Equal(t, src, unsupported.Path)
	assert.False(t, h.Ops().Exists(filepath.Join(h.Backup(), "pipe")))
}

func TestRealFSBrokenSymlink(t *testing.T) {
	h := testutil.NewRealFSTestHelper(t)
	link := filepath.Join(h.Home(), ".zshrc")
	h.Symlink(filepath.Join(h.Home(), "gone"), link)

	ops := h.Ops()
	assert.True(t, ops.Exists(link))
	assert.True(t, ops.IsSymlink(link))
	assert.False(t, ops.IsFile(link))
	assert.False(t, ops.IsDir(link))

	require.NoError(t, ops.Delete(link))
	assert.False(t, ops.Exists(link))
}

type clearLog struct {
	paths []string
}

func (c *clearLog) clear(path string) {
	c.paths = append(c.paths, path)
}

func TestAttrClearerRunsBeforeDeleteAndChmod(t *testing.T) {
	h := testutil.NewMemFSTestHelper(t)
	log := &clearLog{}
	ops := filesystem.New(h.Ops().Filesystem(), filesystem.WithAttrClearer(log.clear))

	dir := testutil.MemBackup + "/.vim"
	h.WriteFile(dir+"/colors/dark.vim", "hi Normal")
	require.NoError(t, ops.Delete(dir))
	assert.Equal(t, []string{dir}, log.paths, "one recursive clear per deleted tree")

	log.paths = nil
	target := testutil.MemHome + "/target"
	link := testutil.MemBackup + "/link"
	h.WriteFile(target, "keep me")
	h.Symlink(target, link)
	require.NoError(t, ops.Delete(link))
	require.NoError(t, ops.Delete(testutil.MemBackup+"/never-existed"))
	assert.Empty(t, log.paths, "symlinks and missing paths are not cleared")

	src := testutil.MemHome + "/.gitconfig"
	dst := testutil.MemBackup + "/.gitconfig"
	h.WriteFile(src, "[user]")
	require.NoError(t, ops.Copy(src, dst))
	assert.Equal(t, []string{dst}, log.paths, "a fresh copy is cleared before its modes are set")

	log.paths = nil
	require.NoError(t, ops.Copy(src, dst))
	assert.Equal(t, []string{dst, dst}, log.paths, "replacing clears the old entry, then the new one")
}
