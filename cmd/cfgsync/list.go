package main

import (
	"fmt"

	"github.com/arthur-debert/cfgsync/pkg/cfgsync/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newListCommand(v *viper.Viper, cfgFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the supported applications",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v, *cfgFile)
			if err != nil {
				return err
			}
			catalog, err := config.LoadCatalog(cfg.ApplicationsDir)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Supported applications:")
			for _, id := range catalog.IDs() {
				fmt.Fprintf(out, " - %s\n", id)
			}
			fmt.Fprintf(out, "\n%d applications supported in cfgsync %s\n", len(catalog), version)
			return nil
		},
	}
}
