package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// flagKeys maps persistent flag names to configuration keys.
var flagKeys = map[string]string{
	"dry-run":   "dry_run",
	"verbose":   "verbose",
	"log-level": "log_level",
}

func newRootCommand(v *viper.Viper) *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "cfgsync",
		Short: "Keep application settings in sync",
		Long: `cfgsync backs up application configuration files from your home
directory into a synchronised folder (Dropbox, Google Drive or any
directory) and restores them on another machine.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.cfgsync.yaml)")
	flags.BoolP("dry-run", "n", false, "show what would be done without changing anything")
	flags.BoolP("verbose", "v", false, "print full paths and why files are skipped")
	flags.String("log-level", "warn", "log level (trace, debug, info, warn, error)")

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return bindFlags(cmd.Flags(), v)
	}

	cmd.AddCommand(newBackupCommand(v, &cfgFile))
	cmd.AddCommand(newRestoreCommand(v, &cfgFile))
	cmd.AddCommand(newUninstallCommand(v, &cfgFile))
	cmd.AddCommand(newListCommand(v, &cfgFile))
	cmd.AddCommand(newVersionCommand())

	return cmd
}

func bindFlags(flags *pflag.FlagSet, v *viper.Viper) error {
	for name, key := range flagKeys {
		f := flags.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return errors.Wrapf(err, "binding --%s", name)
		}
	}
	return nil
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Long:  `Print the version number of cfgsync`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "cfgsync version %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCommand(viper.New())
	if err := cmd.ExecuteContext(ctx); err != nil {
		printError(cmd, err)
		stop()
		os.Exit(1)
	}
}

func printError(cmd *cobra.Command, err error) {
	fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
	if hint := errors.FlattenHints(err); hint != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Hint: %s\n", hint)
	}
}
