package main

import (
	"github.com/arthur-debert/cfgsync/pkg/cfgsync"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type action string

const (
	actionBackup    action = "backup"
	actionRestore   action = "restore"
	actionUninstall action = "uninstall"
)

func newBackupCommand(v *viper.Viper, cfgFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "backup",
		Short: "Copy your application settings into the backup folder",
		Long: `Copy the configuration files of every selected application from your
home directory into the backup folder. Files already in the backup are
left alone.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction(cmd, v, *cfgFile, actionBackup)
		},
	}
}

func newRestoreCommand(v *viper.Viper, cfgFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "restore",
		Short: "Copy your backed up settings into your home directory",
		Long: `Copy the configuration files of every selected application from the
backup folder into your home directory, asking before replacing anything
that is already there.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction(cmd, v, *cfgFile, actionRestore)
		},
	}
}

func newUninstallCommand(v *viper.Viper, cfgFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "uninstall",
		Short: "Put your settings back in place of the synced copies (not implemented)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction(cmd, v, *cfgFile, actionUninstall)
		},
	}
}

// runAction runs one mode over every selected application, in id order.
// The first error aborts the run.
func runAction(cmd *cobra.Command, v *viper.Viper, cfgFile string, act action) error {
	env, err := newEnvironment(cmd, v, cfgFile)
	if err != nil {
		return err
	}
	if err := env.prepare(act); err != nil {
		return err
	}

	ctx := cmd.Context()
	for _, app := range env.apps {
		planner, err := cfgsync.NewPlanner(app.Files, env.ops, env.resolver, env.confirmer, env.plannerOptions()...)
		if err != nil {
			return errors.Wrapf(err, "application %s", app.Name)
		}

		env.logger.Debug().Str("app", app.ID).Str("action", string(act)).Int("files", len(app.Files)).Msg("processing application")

		switch act {
		case actionBackup:
			err = planner.Backup(ctx)
		case actionRestore:
			err = planner.Restore(ctx)
		case actionUninstall:
			err = planner.Uninstall(ctx)
		}
		if err != nil {
			return errors.Wrapf(err, "%s %s", act, app.Name)
		}
	}
	return nil
}
