// Package cmd defines the command-line interface for asmstats.
package cmd

import (
	"github.com/huangsam/asmstats/internal/contract"
	"github.com/huangsam/asmstats/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(tableCmd)
	rootCmd.AddCommand(buscoCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(mcpCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)

	// Add the history subcommands to the parent history command
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyStatusCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().StringArray("accession", nil, "Assembly accession to look up (repeatable)")
	rootCmd.PersistentFlags().String("accession-file", "", "File with one accession per line ('-' for stdin)")
	rootCmd.PersistentFlags().StringArray("taxon", nil, "Taxon name or NCBI taxonomy ID to look up (repeatable)")
	rootCmd.PersistentFlags().String("taxon-file", "", "File with one taxon per line ('-' for stdin)")
	rootCmd.PersistentFlags().IntP("limit", "l", contract.DefaultResultLimit, "Maximum number of assemblies to fetch")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or markdown or html or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("api-base-url", schema.DefaultAPIBaseURL, "NCBI Datasets API base URL")
	rootCmd.PersistentFlags().String("api-key", "", "NCBI API key (prefer ASMSTATS_API_KEY)")
	rootCmd.PersistentFlags().String("api-timeout", contract.DefaultAPITimeout.String(), "Timeout for each API request")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.SQLiteBackend), "Response cache backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("cache-ttl", contract.DefaultCacheTTL.String(), "How long cached API responses stay fresh")
	rootCmd.PersistentFlags().String("history-backend", "", "Query history backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("history-db-connect", "", "Database connection string for query history")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().Bool("verbose", false, "Enable debug logging on stderr")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of tableCmd to Viper
	tableCmd.Flags().String("sort", "", "Comma-separated sort keys, '-' prefix for descending (default: assemblyLevel,speciesName)")
	tableCmd.Flags().Bool("highlight", true, "Highlight the best value of each contiguity column")
	if err := viper.BindPFlags(tableCmd.Flags()); err != nil {
		contract.LogFatal("Error binding table flags", err)
	}

	// Bind all flags of buscoCmd to Viper
	buscoCmd.Flags().String("busco-scale", string(schema.RecordScale), "Bar scaling: record (own total) or global (largest total)")
	buscoCmd.Flags().Int("bar-width", contract.DefaultBarWidth, "Number of cells in a full BUSCO bar")
	if err := viper.BindPFlags(buscoCmd.Flags()); err != nil {
		contract.LogFatal("Error binding busco flags", err)
	}

	// Bind all flags of historyMigrateCmd to Viper
	historyMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(historyMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding history migrate flags", err)
	}
}
