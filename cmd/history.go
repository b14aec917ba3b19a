package cmd

import (
	"fmt"

	"github.com/huangsam/asmstats/internal/contract"
	"github.com/huangsam/asmstats/internal/iocache"
	"github.com/huangsam/asmstats/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// historyBackendConfig reads and validates the history backend settings.
// An empty backend means tracking is disabled.
func historyBackendConfig() (schema.DatabaseBackend, string, error) {
	if err := loadConfigFile(); err != nil {
		return "", "", err
	}

	backendStr := viper.GetString("history-backend")
	connStr := viper.GetString("history-db-connect")

	backend := schema.NoneBackend
	if backendStr != "" {
		backend = schema.DatabaseBackend(backendStr)
	}
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return "", "", err
	}
	return backend, connStr, nil
}

// historySetup loads minimal configuration needed for history operations.
func historySetup() error {
	backend, connStr, err := historyBackendConfig()
	if err != nil {
		return err
	}

	// Initialize stores with the loaded config (no response cache for history commands)
	if err := iocache.InitStores(schema.NoneBackend, "", backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize history: %w", err)
	}

	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")
	return nil
}

// historySetupWrapper wraps historySetup to provide PreRunE for history commands.
func historySetupWrapper(_ *cobra.Command, _ []string) error {
	return historySetup()
}

// historyMigrateSetup loads minimal configuration needed for migrate operations.
// It does NOT open the store, so migrations can run on a fresh database.
func historyMigrateSetup(_ *cobra.Command, _ []string) error {
	backend, connStr, err := historyBackendConfig()
	if err != nil {
		return err
	}

	// For SQLite backend with empty connection string, use default path
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = contract.GetHistoryDBFilePath()
	}

	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = connStr
	return nil
}

// historyCmd focused on query history management.
//
// Note: History subcommands use minimal initialization (historySetup) instead of
// the full sharedSetup used by lookup commands.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage query history tracking and exports",
	Long: `Manage the record of past query cycles.

When --history-backend is set, asmstats stores for every table or busco run:
- Run metadata (timestamp, queries, limit, duration, matches found)
- A snapshot of each returned assembly (N50s, length, GC, coverage, BUSCO)

This lets you follow how assemblies of interest change between NCBI releases.

Supported backends: SQLite, MySQL, PostgreSQL, or None (disabled, default)

Subcommands:
  status  - Show history tracking statistics
  export  - Export data to Parquet for analytics
  clear   - Remove all tracking data
  migrate - Run database schema migrations

Examples:
  # Check tracking status
  asmstats history status --history-backend sqlite

  # Export for analysis in pandas/DuckDB
  asmstats history export --history-backend sqlite --output-file history`,
}

// historyClearCmd clears the history data.
var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all query history",
	Long: `Delete all stored query runs and assembly snapshots.

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  # Export before clearing
  asmstats history export --output-file backup
  asmstats history clear`,
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ClearHistory(cfg.HistoryBackend, contract.GetHistoryDBFilePath(), cfg.HistoryDBConnect); err != nil {
			contract.LogFatal("Failed to clear history", err)
		}
		fmt.Println("History cleared successfully.")
	},
}

// historyStatusCmd shows history status.
var historyStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display history tracking statistics and connection details",
	Long: `Show detailed information about query history tracking.

Displays:
- Backend type and connection status
- Total number of query runs stored
- Last and oldest run timestamps
- Distinct assemblies seen across all runs
- Row counts per table

Examples:
  # Check history tracking status
  asmstats history status --history-backend sqlite`,
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store := iocache.Manager.GetHistoryStore()
		if store == nil {
			fmt.Println("History Backend: none (tracking disabled)")
			return
		}
		status, err := store.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get history status", err)
		}
		iocache.PrintHistoryStatus(status)
	},
}

// historyExportCmd exports history data to Parquet files.
var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export query history to Parquet for BI tools and analytics",
	Long: `Export all stored query history to Parquet format.

Writes two files next to --output-file:
- <output-file>.query_runs.parquet - metadata about each query cycle
- <output-file>.assembly_snapshots.parquet - per-assembly statistics of each run

Requires: --output-file parameter

Examples:
  # Export all data
  asmstats history export --output-file asm-history

  # Use with DuckDB
  duckdb -c "SELECT * FROM read_parquet('asm-history.assembly_snapshots.parquet') LIMIT 10"`,
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ExecuteHistoryExport(cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export history", err)
		}
	},
}

// historyMigrateCmd runs database migrations for the history store.
var historyMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the query history store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  asmstats history migrate --history-backend sqlite

  # Migrate to specific version
  asmstats history migrate --target-version 1

  # Rollback to the initial state
  asmstats history migrate --target-version 0`,
	PreRunE: historyMigrateSetup,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := iocache.MigrateHistory(cfg.HistoryBackend, cfg.HistoryDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
