package cli

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strconv"

	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for database/sql
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"

	"github.com/pkordes/trip-planner/internal/config"
	"github.com/pkordes/trip-planner/migrations"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply or inspect database migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		provider, closeDB, err := newMigrator()
		if err != nil {
			return err
		}
		defer closeDB()

		results, err := provider.Up(cmd.Context())
		if err != nil {
			return fmt.Errorf("migrate up: %w", err)
		}
		out := cmd.OutOrStdout()
		if len(results) == 0 {
			printSuccess(out, "database is up to date")
			return nil
		}
		for _, r := range results {
			printSuccess(out, fmt.Sprintf("applied %s (%s)", filepath.Base(r.Source.Path), r.Duration.Round(1e6)))
		}
		return nil
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the most recent migration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		provider, closeDB, err := newMigrator()
		if err != nil {
			return err
		}
		defer closeDB()

		r, err := provider.Down(cmd.Context())
		if err != nil {
			return fmt.Errorf("migrate down: %w", err)
		}
		printSuccess(cmd.OutOrStdout(), "rolled back "+filepath.Base(r.Source.Path))
		return nil
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which migrations are applied",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		provider, closeDB, err := newMigrator()
		if err != nil {
			return err
		}
		defer closeDB()

		statuses, err := provider.Status(cmd.Context())
		if err != nil {
			return fmt.Errorf("migrate status: %w", err)
		}
		rows := make([][]string, 0, len(statuses))
		for _, s := range statuses {
			applied := ""
			if !s.AppliedAt.IsZero() {
				applied = s.AppliedAt.Format("2006-01-02 15:04:05")
			}
			rows = append(rows, []string{
				strconv.FormatInt(s.Source.Version, 10),
				filepath.Base(s.Source.Path),
				string(s.State),
				applied,
			})
		}
		printTable(cmd.OutOrStdout(), []string{"VERSION", "FILE", "STATE", "APPLIED AT"}, rows)
		return nil
	},
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateStatusCmd)
}

// newMigrator opens DATABASE_URL and returns a goose provider over the
// embedded migrations. The returned func closes the database.
func newMigrator() (*goose.Provider, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("create goose provider: %w", err)
	}
	return provider, func() { _ = db.Close() }, nil
}
