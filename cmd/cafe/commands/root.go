package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/online_cafe/internal/config"
)

var dbURL string

var rootCmd = &cobra.Command{
	Use:   "cafe",
	Short: "Cafe shop web service",
	Long: `cafe serves the cafe shop: catalog, phone registration, cart, checkout,
order tracking and the admin reports.

Configuration comes from the environment (and a .env file when present).`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbURL, "db", "", "Database URL or SQLite file (overrides DATABASE_URL)")
}

// withFlags applies the --db override on top of the environment.
func withFlags(cfg config.Config) config.Config {
	if dbURL != "" {
		cfg.DatabaseURL = dbURL
	}
	return cfg
}

func loadConfig() config.Config {
	return withFlags(config.Load())
}
