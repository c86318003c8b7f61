package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizarcade/internal/config"
	"github.com/abhisek/quizarcade/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "quizarcade",
	Short: "Play quiz documents as mini-games",
	Long:  "Quiz Arcade turns the questions in a quiz document into a sequence of sandboxed mini-games.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlay(cmd)
	},
	SilenceUsage: true,
}

// Execute runs the CLI. Interrupts cancel the command context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Database path (sqlite) or DSN (overrides QUIZARCADE_DB and QUIZARCADE_DB_DSN)")
	rootCmd.PersistentFlags().String("driver", "", "Database driver: sqlite or postgres (overrides QUIZARCADE_DB_DRIVER)")
	rootCmd.PersistentFlags().String("addr", "", "HTTP listen address (overrides QUIZARCADE_HTTP_ADDR)")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(sessionCmd)
	rootCmd.AddCommand(templatesCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDB returns the driver and DSN, in priority order: flags, then
// QUIZARCADE_DB_DRIVER / QUIZARCADE_DB_DSN, then the default SQLite path.
func resolveDB(cmd *cobra.Command, cfg *config.Config) (store.Driver, string, error) {
	name := cfg.DB.Driver
	if d, _ := cmd.Flags().GetString("driver"); d != "" {
		name = d
	}
	driver, err := store.ParseDriver(name)
	if err != nil {
		return "", "", err
	}

	dsn, _ := cmd.Flags().GetString("db")
	if dsn == "" {
		dsn = cfg.DB.DSN
	}
	if dsn != "" {
		if driver == store.DriverSQLite {
			return driver, dsn, store.EnsureDir(dsn)
		}
		return driver, dsn, nil
	}
	if driver == store.DriverPostgres {
		return "", "", errPostgresDSN
	}
	p, err := store.DefaultDBPath()
	return driver, p, err
}

// resolveAddr returns the HTTP listen address.
func resolveAddr(cmd *cobra.Command, cfg *config.Config) string {
	if a, _ := cmd.Flags().GetString("addr"); a != "" {
		return a
	}
	return cfg.HTTP.Addr
}
