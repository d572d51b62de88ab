package main

import (
	"io"

	"github.com/arthur-debert/cfgsync/pkg/cfgsync"
	"github.com/arthur-debert/cfgsync/pkg/cfgsync/config"
	"github.com/arthur-debert/cfgsync/pkg/cfgsync/filesystem"
	"github.com/arthur-debert/cfgsync/pkg/cfgsync/paths"
	"github.com/arthur-debert/cfgsync/pkg/cfgsync/prompt"
	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sys/unix"
)

const backupRootMode = 0o700

// environment is everything a run needs, built from configuration.
type environment struct {
	cfg        *config.Config
	logger     zerolog.Logger
	apps       []config.Application
	backupRoot string
	resolver   *paths.Resolver
	ops        *filesystem.BillyFileOps
	confirmer  cfgsync.Confirmer
	out        io.Writer
}

func newEnvironment(cmd *cobra.Command, v *viper.Viper, cfgFile string) (*environment, error) {
	cfg, err := config.Load(v, cfgFile)
	if err != nil {
		return nil, err
	}

	level, err := cfgsync.LogLevelFromString(cfg.LogLevel)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid log level %q", cfg.LogLevel)
	}
	logger := cfgsync.NewLogger(cmd.ErrOrStderr(), level)
	if unix.Geteuid() == 0 {
		logger.Warn().Msg("running as the superuser; files will be owned by root")
	}

	catalog, err := config.LoadCatalog(cfg.ApplicationsDir)
	if err != nil {
		return nil, err
	}
	apps, err := catalog.Select(cfg.ApplicationsToSync, cfg.ApplicationsToIgnore)
	if err != nil {
		return nil, err
	}

	backupRoot, err := cfg.BackupRoot()
	if err != nil {
		return nil, err
	}
	resolver, err := paths.New(cfg.Home, backupRoot)
	if err != nil {
		return nil, err
	}

	logger.Debug().
		Str("home", cfg.Home).
		Str("engine", string(cfg.Storage.Engine)).
		Str("backup_root", backupRoot).
		Int("applications", len(apps)).
		Msg("configuration loaded")

	return &environment{
		cfg:        cfg,
		logger:     logger,
		apps:       apps,
		backupRoot: backupRoot,
		resolver:   resolver,
		ops:        filesystem.NewOSFileOps(),
		confirmer:  prompt.NewLineConfirmer(cmd.InOrStdin(), cmd.OutOrStdout()),
		out:        cmd.OutOrStdout(),
	}, nil
}

// prepare checks the backup root before any application runs. Backup
// creates it; restore requires it.
func (e *environment) prepare(act action) error {
	switch act {
	case actionBackup:
		if e.ops.IsDir(e.backupRoot) || e.cfg.DryRun {
			return nil
		}
		if err := e.ops.Filesystem().MkdirAll(e.backupRoot, backupRootMode); err != nil {
			return errors.Wrapf(err, "creating backup folder %s", e.backupRoot)
		}
		e.logger.Info().Str("backup_root", e.backupRoot).Msg("created backup folder")
	case actionRestore:
		if !e.ops.IsDir(e.backupRoot) {
			return errors.WithHint(
				errors.Newf("unable to find the backup folder %s", e.backupRoot),
				"run `cfgsync backup` on a machine that has your settings first")
		}
	}
	return nil
}

func (e *environment) plannerOptions() []cfgsync.Option {
	return []cfgsync.Option{
		cfgsync.WithDryRun(e.cfg.DryRun),
		cfgsync.WithVerbose(e.cfg.Verbose),
		cfgsync.WithOutput(e.out),
		cfgsync.WithLogger(e.logger),
	}
}
