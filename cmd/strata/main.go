// Package main provides the strata CLI, a small roster manager over the
// strata persistence base. It exists both as a working sample and as a
// smoke surface for the store engine.
package main

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/strata/internal/roster"
	"github.com/mesh-intelligence/strata/pkg/store"
	"github.com/mesh-intelligence/strata/pkg/types"
)

const version = "0.1.0"

var (
	// configFile is set by the --config flag.
	configFile string

	// jsonOutput is set by the --json flag.
	jsonOutput bool

	// db and app are the global handles, initialized on startup.
	db  *sql.DB
	app *roster.Store
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "strata",
	Short: "Strata is a roster store over a relational backend",
	Long: `Strata manages soft-deletable teams and their tasks on top of a
relational backend (SQLite by default, Postgres via config). It is the
reference front end for the strata persistence packages.`,
	PersistentPreRunE: initStore,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeStore()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default: .strata/config.yaml or ~/.strata/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(teamCmd)
	rootCmd.AddCommand(taskCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("strata v" + version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the roster tables",
	Long:  `Init creates the roster tables in the configured backend if they do not exist.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := roster.Migrate(cmd.Context(), db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		fmt.Println("Roster initialized successfully")
		return nil
	},
}

// initStore loads config, opens the backend, and builds the roster store.
func initStore(cmd *cobra.Command, args []string) error {
	// Version needs no backend.
	if cmd.Name() == "version" {
		return nil
	}

	cfg, err := loadConfig(configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	storeCfg := types.Config{
		Backend: cfg.GetString(cfgKeyBackend),
		DSN:     cfg.GetString(cfgKeyDSN),
	}
	if storeCfg.Backend == types.BackendSQLite {
		if err := ensureSQLiteDir(storeCfg.DSN); err != nil {
			return fmt.Errorf("create data dir: %w", err)
		}
	}
	db, err = store.Open(storeCfg)
	if err != nil {
		return fmt.Errorf("open backend: %w", err)
	}

	dialect, err := store.DialectFor(storeCfg.Backend)
	if err != nil {
		return err
	}
	app, err = roster.New(dialect, nil, nil)
	if err != nil {
		return fmt.Errorf("build store: %w", err)
	}
	return nil
}

// closeStore releases the backend handle.
func closeStore() error {
	if db != nil {
		return db.Close()
	}
	return nil
}
