// Package paths maps file-set entries onto the home directory and the
// backup root.
package paths

import (
	"path/filepath"
	"runtime"
	"strings"

	"github.com/cockroachdb/errors"
)

// macOSLibrary is only meaningful on macOS.
const macOSLibrary = "Library"

// Resolver computes home and backup paths from configured roots.
type Resolver struct {
	home       string
	backupRoot string
	goos       string
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithPlatform overrides the host platform used by CanSync.
func WithPlatform(goos string) Option {
	return func(r *Resolver) { r.goos = goos }
}

// New returns a resolver for the given home directory and backup root.
// Both must be absolute.
func New(home, backupRoot string, opts ...Option) (*Resolver, error) {
	if !filepath.IsAbs(home) {
		return nil, errors.Newf("home directory must be an absolute path: %q", home)
	}
	if !filepath.IsAbs(backupRoot) {
		return nil, errors.Newf("backup root must be an absolute path: %q", backupRoot)
	}
	r := &Resolver{
		home:       filepath.Clean(home),
		backupRoot: filepath.Clean(backupRoot),
		goos:       runtime.GOOS,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Home returns the configured home directory.
func (r *Resolver) Home() string { return r.home }

// BackupRoot returns the configured backup root.
func (r *Resolver) BackupRoot() string { return r.backupRoot }

// Resolve returns the home and backup paths for filename.
func (r *Resolver) Resolve(filename string) (homePath, backupPath string) {
	return filepath.Join(r.home, filename), filepath.Join(r.backupRoot, filename)
}

// CanSync reports whether filename should be synced on this platform.
// Nothing under ~/Library/ is synced on Linux.
func (r *Resolver) CanSync(filename string) bool {
	if r.goos != "linux" {
		return true
	}
	full := filepath.Join(r.home, filename)
	library := filepath.Join(r.home, macOSLibrary) + string(filepath.Separator)
	return !strings.HasPrefix(full, library)
}
