// Copyright (c) 2026 Blog Team
// Blog - REST blog back end
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/toeirei/blog/internal/db"
	"github.com/toeirei/blog/internal/i18n"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			defer func() { _ = st.Close() }()
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("cli.migrate_done"))
			return nil
		},
	}
}

func newDBMaintainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db-maintain",
		Short: "Run database maintenance (VACUUM/OPTIMIZE) for the configured DB",
		Long:  `Runs engine-specific maintenance tasks (VACUUM, OPTIMIZE TABLE, PRAGMA optimize).`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			skipIntegrity, _ := cmd.Flags().GetBool("skip-integrity")
			timeoutSec, _ := cmd.Flags().GetInt("timeout")
			if skipIntegrity {
				fmt.Fprintln(cmd.OutOrStdout(), i18n.T("cli.maintain_skip_integrity"))
			}
			opts := db.MaintenanceOptions{
				SkipIntegrity: skipIntegrity,
				Timeout:       time.Duration(timeoutSec) * time.Second,
			}
			if err := db.RunDBMaintenance(cmd.Context(), appConfig.Database.Type, appConfig.Database.Dsn, opts); err != nil {
				return fmt.Errorf("maintenance failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("cli.maintain_done"))
			return nil
		},
	}
	cmd.Flags().Bool("skip-integrity", false, "Skip integrity_check (SQLite) during maintenance")
	cmd.Flags().Int("timeout", 0, "Timeout in seconds for maintenance (0 uses the default of two minutes)")
	return cmd
}
