package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "budgetctl",
		Short:         "Budget API maintenance tool",
		Long:          "Run database migrations, price items offline and prepare admin credentials.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.AddCommand(newMigrateCmd(), newCalcCmd(), newHashPasswordCmd())
	return root
}
