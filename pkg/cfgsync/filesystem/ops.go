package filesystem

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"

	"github.com/cockroachdb/errors"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"

	"github.com/arthur-debert/cfgsync/pkg/cfgsync"
)

const (
	// FileMode is applied to every copied file.
	FileMode fs.FileMode = 0o600
	// DirMode is applied to every copied directory.
	DirMode fs.FileMode = 0o700

	parentMode fs.FileMode = 0o755
)

// BillyFileOps implements file inspection, copy and delete on top of a
// go-billy filesystem. Paths are absolute.
type BillyFileOps struct {
	fs         billy.Filesystem
	clearAttrs AttrClearer
}

// Option configures a BillyFileOps.
type Option func(*BillyFileOps)

// WithAttrClearer runs clear on a tree before it is removed or its
// modes are normalised. Symlinks are never passed to it.
func WithAttrClearer(fn AttrClearer) Option {
	return func(o *BillyFileOps) { o.clearAttrs = fn }
}

// New wraps an existing billy filesystem.
func New(fsys billy.Filesystem, opts ...Option) *BillyFileOps {
	o := &BillyFileOps{fs: fsys}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// NewOSFileOps returns file operations on the host filesystem. ACLs and
// immutable flags are cleared with the host tools before deletes and
// chmods.
func NewOSFileOps() *BillyFileOps {
	return New(osfs.New(string(filepath.Separator)), WithAttrClearer(HostAttrClearer(runtime.GOOS)))
}

// NewMemFileOps returns file operations on an empty in-memory filesystem.
func NewMemFileOps() *BillyFileOps {
	return New(memfs.New())
}

// Filesystem exposes the underlying billy filesystem.
func (o *BillyFileOps) Filesystem() billy.Filesystem {
	return o.fs
}

// IsFile reports whether path resolves to a regular file.
func (o *BillyFileOps) IsFile(path string) bool {
	info, err := o.fs.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// IsDir reports whether path resolves to a directory.
func (o *BillyFileOps) IsDir(path string) bool {
	info, err := o.fs.Stat(path)
	return err == nil && info.IsDir()
}

// IsSymlink reports whether path itself is a symlink, broken or not.
func (o *BillyFileOps) IsSymlink(path string) bool {
	info, err := o.fs.Lstat(path)
	return err == nil && info.Mode()&fs.ModeSymlink != 0
}

// Exists reports whether anything is at path, including a broken symlink.
func (o *BillyFileOps) Exists(path string) bool {
	_, err := o.fs.Lstat(path)
	return err == nil
}

// Copy copies a file or a directory tree from src to dst, creating the
// parents of dst. Whatever is at dst is removed first. Symlinks inside
// src are followed. Copied entries get FileMode or DirMode. A source that
// is neither a file nor a directory fails with *cfgsync.UnsupportedEntryError.
// A failed copy removes the partial destination.
func (o *BillyFileOps) Copy(src, dst string) error {
	info, err := o.fs.Stat(src)
	if err != nil {
		return errors.Wrapf(err, "stat %s", src)
	}
	if !info.Mode().IsRegular() && !info.IsDir() {
		return errors.Wrap(&cfgsync.UnsupportedEntryError{Path: src}, "copy")
	}

	if err := o.fs.MkdirAll(filepath.Dir(dst), parentMode); err != nil {
		return errors.Wrapf(err, "create parent of %s", dst)
	}
	if err := o.Delete(dst); err != nil {
		return err
	}

	if info.IsDir() {
		err = o.copyDir(src, dst)
	} else {
		err = o.copyFile(src, dst)
	}
	if err != nil {
		_ = o.Delete(dst)
		return err
	}
	o.clear(dst)
	return o.normalizeMode(dst)
}

// Delete removes a file, a symlink (not its target) or a directory tree.
// A missing path is not an error.
func (o *BillyFileOps) Delete(path string) error {
	o.clear(path)
	return o.remove(path)
}

func (o *BillyFileOps) remove(path string) error {
	info, err := o.fs.Lstat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, "lstat %s", path)
	}
	if info.IsDir() {
		return o.removeTree(path)
	}
	if err := o.fs.Remove(path); err != nil {
		return errors.Wrapf(err, "remove %s", path)
	}
	return nil
}

func (o *BillyFileOps) copyFile(src, dst string) error {
	in, err := o.fs.Open(src)
	if err != nil {
		return errors.Wrapf(err, "open %s", src)
	}
	defer func() { _ = in.Close() }()

	out, err := o.fs.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, FileMode)
	if err != nil {
		return errors.Wrapf(err, "create %s", dst)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return errors.Wrapf(err, "copy %s to %s", src, dst)
	}
	if err := out.Close(); err != nil {
		return errors.Wrapf(err, "close %s", dst)
	}
	return nil
}

func (o *BillyFileOps) copyDir(src, dst string) error {
	if err := o.fs.MkdirAll(dst, DirMode); err != nil {
		return errors.Wrapf(err, "create %s", dst)
	}
	entries, err := o.fs.ReadDir(src)
	if err != nil {
		return errors.Wrapf(err, "read %s", src)
	}
	for _, entry := range entries {
		from := o.fs.Join(src, entry.Name())
		to := o.fs.Join(dst, entry.Name())

		info, err := o.fs.Stat(from)
		if err != nil {
			return errors.Wrapf(err, "stat %s", from)
		}
		switch {
		case info.IsDir():
			err = o.copyDir(from, to)
		case info.Mode().IsRegular():
			err = o.copyFile(from, to)
		default:
			err = errors.Wrap(&cfgsync.UnsupportedEntryError{Path: from}, "copy")
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (o *BillyFileOps) removeTree(path string) error {
	entries, err := o.fs.ReadDir(path)
	if err != nil {
		return errors.Wrapf(err, "read %s", path)
	}
	for _, entry := range entries {
		if err := o.remove(o.fs.Join(path, entry.Name())); err != nil {
			return err
		}
	}
	if err := o.fs.Remove(path); err != nil {
		return errors.Wrapf(err, "remove %s", path)
	}
	return nil
}

// clear runs the attribute clearer on path unless it is missing or a
// symlink, whose target must be left alone.
func (o *BillyFileOps) clear(path string) {
	if o.clearAttrs == nil {
		return
	}
	info, err := o.fs.Lstat(path)
	if err != nil || info.Mode()&fs.ModeSymlink != 0 {
		return
	}
	o.clearAttrs(path)
}

type chmoder interface {
	Chmod(name string, mode os.FileMode) error
}

// normalizeMode sets FileMode on files and DirMode on directories under
// root. Filesystems without chmod support are left alone.
func (o *BillyFileOps) normalizeMode(root string) error {
	ch, ok := o.fs.(chmoder)
	if !ok {
		return nil
	}
	info, err := o.fs.Lstat(root)
	if err != nil {
		return errors.Wrapf(err, "lstat %s", root)
	}
	if !info.IsDir() {
		return chmod(ch, root, FileMode)
	}
	if err := chmod(ch, root, DirMode); err != nil {
		return err
	}
	entries, err := o.fs.ReadDir(root)
	if err != nil {
		return errors.Wrapf(err, "read %s", root)
	}
	for _, entry := range entries {
		if err := o.normalizeMode(o.fs.Join(root, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

func chmod(ch chmoder, path string, mode fs.FileMode) error {
	err := ch.Chmod(path, mode)
	if err == nil || errors.Is(err, billy.ErrNotSupported) {
		return nil
	}
	return errors.Wrapf(err, "chmod %s", path)
}
