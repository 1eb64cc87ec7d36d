package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/online_cafe/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMigrate(cmd.Context(), loadConfig().DatabaseURL, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(ctx context.Context, dsn string, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	gdb, err := db.OpenAndMigrate(ctx, dsn, db.Options{})
	if err != nil {
		return err
	}
	defer db.Close(gdb)

	fmt.Fprintln(out, "Database schema is up to date")
	return nil
}
