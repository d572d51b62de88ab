// Package cfgsync backs up application configuration files from a home
// directory into a synchronised backup folder and restores them back.
//
// A Planner owns one application's file set. For every file it resolves
// the home and backup locations, inspects what is on disk right now and
// performs at most one copy (preceded by a delete when replacing an
// existing backup). The filesystem is the only state: nothing records
// what was backed up before.
package cfgsync

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// FileOps is the filesystem surface the planner needs. IsFile and IsDir
// follow symlinks; IsSymlink and Exists do not, so Exists is true for a
// broken link.
type FileOps interface {
	IsFile(path string) bool
	IsDir(path string) bool
	IsSymlink(path string) bool
	Exists(path string) bool
	Copy(src, dst string) error
	Delete(path string) error
}

// Resolver maps a file-set entry to its home and backup locations.
type Resolver interface {
	Resolve(filename string) (homePath, backupPath string)
	// CanSync reports whether filename makes sense on the host platform.
	CanSync(filename string) bool
}

// Confirmer asks the operator a yes/no question.
type Confirmer interface {
	Confirm(question string) (bool, error)
}

// Option configures a Planner.
type Option func(*Planner)

// WithDryRun suppresses every mutation. Status lines are still printed.
func WithDryRun(dryRun bool) Option {
	return func(p *Planner) { p.dryRun = dryRun }
}

// WithVerbose prints full paths and the reason a file was skipped.
func WithVerbose(verbose bool) Option {
	return func(p *Planner) { p.verbose = verbose }
}

// WithOutput sets where status lines are written.
func WithOutput(w io.Writer) Option {
	return func(p *Planner) { p.out = w }
}

// WithLogger sets the diagnostics logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(p *Planner) { p.logger = logger }
}

// Planner runs backup and restore over one application's file set.
type Planner struct {
	files     []string
	ops       FileOps
	resolver  Resolver
	confirmer Confirmer
	dryRun    bool
	verbose   bool
	out       io.Writer
	logger    zerolog.Logger
}

// NewPlanner validates the file set and returns a planner that processes
// it in OrderFiles order.
func NewPlanner(files []string, ops FileOps, resolver Resolver, confirmer Confirmer, opts ...Option) (*Planner, error) {
	if ops == nil || resolver == nil || confirmer == nil {
		return nil, errors.New("planner requires file operations, a resolver and a confirmer")
	}
	ordered, err := OrderFiles(files)
	if err != nil {
		return nil, err
	}
	p := &Planner{
		files:     ordered,
		ops:       ops,
		resolver:  resolver,
		confirmer: confirmer,
		out:       io.Discard,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Files returns the file set in the order it is processed.
func (p *Planner) Files() []string {
	files := make([]string, len(p.files))
	copy(files, p.files)
	return files
}

// Backup copies every file that exists in the home directory and is not
// in the backup yet. The first error aborts the run.
func (p *Planner) Backup(ctx context.Context) error {
	for _, filename := range p.files {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.backupFile(filename); err != nil {
			return err
		}
	}
	return nil
}

// Restore copies every backed up file supported on this platform into the
// home directory, asking before replacing anything already there. An entry
// nested in one restored earlier in the run already arrived with it and is
// skipped.
func (p *Planner) Restore(ctx context.Context) error {
	var restored []string
	for _, filename := range p.files {
		if err := ctx.Err(); err != nil {
			return err
		}
		if ancestor, ok := nestedIn(filename, restored); ok {
			p.logger.Debug().Str("path", filename).Str("action", "skip").Str("restored_with", ancestor).Msg("already restored with its ancestor")
			continue
		}
		copied, err := p.restoreFile(filename)
		if err != nil {
			return err
		}
		if copied {
			restored = append(restored, filename)
		}
	}
	return nil
}

func nestedIn(filename string, roots []string) (string, bool) {
	for _, root := range roots {
		if strings.HasPrefix(filename, root+string(filepath.Separator)) {
			return root, true
		}
	}
	return "", false
}

// Uninstall always fails with ErrUnimplemented.
func (p *Planner) Uninstall(ctx context.Context) error {
	return errors.Wrap(ErrUnimplemented, "uninstall")
}

func (p *Planner) backupFile(filename string) error {
	home, backup := p.resolver.Resolve(filename)
	log := p.logger.With().Str("path", filename).Str("home", home).Str("backup", backup).Logger()

	homeExists := p.ops.IsFile(home) || p.ops.IsDir(home)
	backupExists := p.ops.IsFile(backup) || p.ops.IsDir(backup)

	if !homeExists || backupExists {
		log.Debug().Str("action", "skip").Bool("home_exists", homeExists).Bool("backup_exists", backupExists).Msg("nothing to back up")
		if p.verbose {
			switch Inspect(p.ops, home) {
			case StateAbsent:
				p.printf("Doing nothing\n  %s\n  does not exist\n", home)
			case StateBrokenSymlink:
				p.printf("Doing nothing\n  %s\n  is a broken link, you might want to fix it.\n", home)
			default:
				p.printf("Doing nothing\n  %s\n  is already backed up to\n  %s\n", home, backup)
			}
		}
		return nil
	}

	if p.verbose {
		p.printf("Backing up\n  %s\n  to\n  %s ...\n", home, backup)
	} else {
		p.printf("Backing up %s ...\n", filename)
	}

	if p.dryRun {
		log.Debug().Str("action", "backup").Bool("dry_run", true).Msg("skipping mutation")
		return nil
	}

	// Something that is neither a file nor a directory may still sit at
	// the backup path: a broken link, or a special file.
	if p.ops.Exists(backup) {
		kind, err := Classify(p.ops, backup)
		if err != nil {
			return err
		}
		question := fmt.Sprintf("A %s named %s already exists in the backup.\nAre you sure that you want to replace it ?", kind, backup)
		ok, err := p.confirmer.Confirm(question)
		if err != nil {
			return errors.Wrapf(err, "confirming replacement of %s", backup)
		}
		if !ok {
			log.Info().Str("action", "keep").Str("kind", kind.String()).Msg("replacement declined")
			return nil
		}
		if err := p.delete(log, backup); err != nil {
			return err
		}
	}
	return p.copy(log, home, backup)
}

// restoreFile reports whether filename was copied, or would have been in
// a dry run.
func (p *Planner) restoreFile(filename string) (bool, error) {
	home, backup := p.resolver.Resolve(filename)
	log := p.logger.With().Str("path", filename).Str("home", home).Str("backup", backup).Logger()

	backupExists := p.ops.IsFile(backup) || p.ops.IsDir(backup)
	supported := p.resolver.CanSync(filename)

	if !backupExists || !supported {
		log.Debug().Str("action", "skip").Bool("backup_exists", backupExists).Bool("supported", supported).Msg("nothing to restore")
		if p.verbose {
			switch Inspect(p.ops, home) {
			case StateAbsent:
				p.printf("Doing nothing\n  %s\n  does not exist\n", backup)
			case StateBrokenSymlink:
				p.printf("Doing nothing\n  %s\n  is a broken link, you might want to fix it.\n", home)
			default:
				p.printf("Doing nothing\n  %s\n  already linked by\n  %s\n", backup, home)
			}
		}
		return false, nil
	}

	if p.verbose {
		p.printf("Restoring\n  linking %s\n  to      %s ...\n", home, backup)
	} else {
		p.printf("Restoring %s ...\n", filename)
	}

	if p.dryRun {
		log.Debug().Str("action", "restore").Bool("dry_run", true).Msg("skipping mutation")
		return true, nil
	}

	if p.ops.Exists(home) {
		kind, err := Classify(p.ops, home)
		if err != nil {
			return false, err
		}
		question := fmt.Sprintf("You already have a %s named %s in your home.\nDo you want to replace it with your backup ?", kind, filename)
		ok, err := p.confirmer.Confirm(question)
		if err != nil {
			return false, errors.Wrapf(err, "confirming replacement of %s", home)
		}
		if !ok {
			log.Info().Str("action", "keep").Str("kind", kind.String()).Msg("replacement declined")
			return false, nil
		}
	}
	if err := p.copy(log, backup, home); err != nil {
		return false, err
	}
	return true, nil
}

func (p *Planner) copy(log zerolog.Logger, src, dst string) error {
	if err := p.ops.Copy(src, dst); err != nil {
		return newActionError("copy", src, err)
	}
	log.Info().Str("action", "copy").Str("src", src).Str("dst", dst).Msg("copied")
	return nil
}

func (p *Planner) delete(log zerolog.Logger, path string) error {
	if err := p.ops.Delete(path); err != nil {
		return newActionError("delete", path, err)
	}
	log.Info().Str("action", "delete").Str("target", path).Msg("deleted")
	return nil
}

func (p *Planner) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(p.out, format, args...)
}
