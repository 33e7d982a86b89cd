package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"budget-api/internal/config"
	"budget-api/internal/migrations"
	"budget-api/internal/storage/sqlstore"
)

func newMigrateCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			cfg.DB.Migrate = true

			store, err := sqlstore.New(cfg.DB)
			if err != nil {
				return err
			}
			defer store.Close()

			version, err := migrations.Version(store.DB(), store.Driver())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s schema at version %d\n", store.Driver(), version)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", config.Path(), "Path to the YAML config")
	return cmd
}
