package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/parishdesk/parish_backend/models"
	"github.com/parishdesk/parish_backend/models/reports"
	"github.com/parishdesk/parish_backend/utils"
	"github.com/spf13/cobra"
)

func newMigrateCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update tables and seed the catalogs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := opts.connect()
			if err != nil {
				return err
			}
			if err := models.MigrateTable(db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}

func newSeedAdminCommand(opts *rootOptions) *cobra.Command {
	var username, name, password string
	cmd := &cobra.Command{
		Use:   "seed-admin",
		Short: "Create the admin user, or reset its password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv("ADMIN_PASSWORD")
			}
			if strings.TrimSpace(password) == "" {
				return errors.New("--password or ADMIN_PASSWORD is required")
			}
			db, err := opts.connect()
			if err != nil {
				return err
			}
			user, err := models.SeedAdmin(cmd.Context(), db, username, name, password)
			if err != nil {
				return fmt.Errorf("seed admin: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "admin user ready: id=%d username=%s\n", user.ID, user.Username)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "parishAdmin", "admin username")
	cmd.Flags().StringVar(&name, "name", "Parish Admin", "display name")
	cmd.Flags().StringVar(&password, "password", "", "admin password (defaults to $ADMIN_PASSWORD)")
	return cmd
}

func newBalanceCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "balance",
		Short: "Print the global and per-account balances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := opts.connect()
			if err != nil {
				return err
			}
			global, err := reports.GetGlobalBalance(cmd.Context(), db)
			if err != nil {
				return err
			}
			accounts, err := reports.GetAccountBalances(cmd.Context(), db)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ACCOUNT\tINFLOW\tOUTFLOW\tBALANCE\tMOVEMENTS")
			for _, a := range accounts {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", a.AccountName,
					a.TotalInflow.StringFixed(2), a.TotalOutflow.StringFixed(2), a.Balance.StringFixed(2), a.Movements)
			}
			fmt.Fprintf(w, "TOTAL\t\t\t%s\t\n", global.Balance.StringFixed(2))
			return w.Flush()
		},
	}
}

func newKardexExportCommand(opts *rootOptions) *cobra.Command {
	var account, out, dateFrom, dateTo string
	cmd := &cobra.Command{
		Use:   "kardex-export",
		Short: "Write the kardex with running balances to an xlsx file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := reports.KardexFilter{AccountName: utils.NilIfEmpty(strings.TrimSpace(account))}
			var err error
			if filter.DateFrom, err = utils.ParseDateParam(dateFrom); err != nil {
				return fmt.Errorf("--from: %w", err)
			}
			if filter.DateTo, err = utils.ParseDateParam(dateTo); err != nil {
				return fmt.Errorf("--to: %w", err)
			}

			db, err := opts.connect()
			if err != nil {
				return err
			}
			entries, err := reports.GetKardex(cmd.Context(), db, filter)
			if err != nil {
				return err
			}
			if err := reports.SaveKardexExcel(out, entries); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d rows to %s\n", len(entries), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&account, "account", "", "only this account (default all)")
	cmd.Flags().StringVar(&out, "out", "kardex.xlsx", "output file")
	cmd.Flags().StringVar(&dateFrom, "from", "", "first day, YYYY-MM-DD or RFC3339")
	cmd.Flags().StringVar(&dateTo, "to", "", "last instant, YYYY-MM-DD or RFC3339")
	return cmd
}
