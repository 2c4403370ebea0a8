package main

import (
	"github.com/parishdesk/parish_backend/config"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// rootOptions holds global flags for all commands.
type rootOptions struct {
	// connect is swapped in tests to hand out a sqlite database.
	connect func() (*gorm.DB, error)
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{
		connect: func() (*gorm.DB, error) { return config.ConnectDatabaseWithRetry(), nil },
	}
	return newRootCommandWith(opts)
}

func newRootCommandWith(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "parishctl",
		Short:         "Operational tasks for the parish backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newMigrateCommand(opts))
	cmd.AddCommand(newSeedAdminCommand(opts))
	cmd.AddCommand(newBalanceCommand(opts))
	cmd.AddCommand(newKardexExportCommand(opts))
	return cmd
}
