package contract

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/huangsam/asmstats/schema"
)

// Default values for configuration.
const (
	DefaultResultLimit = 20
	MaxResultLimit     = 1000
	DefaultBarWidth    = 50
	DefaultAPITimeout  = 20 * time.Second
	DefaultCacheTTL    = 24 * time.Hour
)

// Config holds the runtime configuration for a query cycle.
// This struct remains the "final, validated" config.
type Config struct {
	PrimaryQuery   string // newline-delimited accessions
	SecondaryQuery string // newline-delimited taxa

	ResultLimit int
	Output      schema.OutputMode
	OutputFile  string
	SortKeys    []schema.SortKey
	Highlight   bool
	BuscoScale  schema.BuscoScale
	BarWidth    int
	Width       int // Terminal width override (0 = auto-detect)

	APIBaseURL string
	APIKey     string // Please use env var as this is plaintext
	APITimeout time.Duration

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext
	CacheTTL       time.Duration

	HistoryBackend   schema.DatabaseBackend
	HistoryDBConnect string // Please use env var as this is plaintext

	UseColors bool // Enable colored labels in table output
	Verbose   bool // Enable debug logging
}

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Query inputs ---
	Accession     []string `mapstructure:"accession"`
	AccessionFile string   `mapstructure:"accession-file"`
	Taxon         []string `mapstructure:"taxon"`
	TaxonFile     string   `mapstructure:"taxon-file"`

	// --- Fields from rootCmd.PersistentFlags() ---
	Limit            int    `mapstructure:"limit"`
	Output           string `mapstructure:"output"`
	OutputFile       string `mapstructure:"output-file"`
	Sort             string `mapstructure:"sort"`
	Highlight        bool   `mapstructure:"highlight"`
	BuscoScale       string `mapstructure:"busco-scale"`
	BarWidth         int    `mapstructure:"bar-width"`
	Width            int    `mapstructure:"width"`
	APIBaseURL       string `mapstructure:"api-base-url"`
	APIKey           string `mapstructure:"api-key"`
	APITimeout       string `mapstructure:"api-timeout"`
	CacheBackend     string `mapstructure:"cache-backend"`
	CacheDBConnect   string `mapstructure:"cache-db-connect"`
	CacheTTL         string `mapstructure:"cache-ttl"`
	HistoryBackend   string `mapstructure:"history-backend"`
	HistoryDBConnect string `mapstructure:"history-db-connect"`
	Color            string `mapstructure:"color"`
	Verbose          bool   `mapstructure:"verbose"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.SortKeys != nil {
		clone.SortKeys = slices.Clone(c.SortKeys)
	}
	return &clone
}

// WithQuery returns a copy of the Config that targets a different query.
func (c *Config) WithQuery(primary, secondary string) *Config {
	clone := c.Clone()
	clone.PrimaryQuery = primary
	clone.SecondaryQuery = secondary
	return clone
}

// ProcessAndValidate performs all complex parsing and validation on the raw inputs
// and updates the final Config struct. stdin backs list files named "-".
func ProcessAndValidate(cfg *Config, input *ConfigRawInput, stdin io.Reader) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processQueryInputs(cfg, input, stdin); err != nil {
		return err
	}
	if err := processAPISettings(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	return nil
}

// validateSimpleInputs processes and validates all non-query fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Highlight = input.Highlight
	cfg.Width = input.Width
	cfg.Verbose = input.Verbose

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Limit <= 0 || input.Limit > MaxResultLimit {
		return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", MaxResultLimit, input.Limit)
	}
	cfg.ResultLimit = input.Limit

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, markdown, html, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return errors.New("--output-file is required for parquet output")
	}

	cfg.BuscoScale = schema.BuscoScale(strings.ToLower(input.BuscoScale))
	if cfg.BuscoScale == "" {
		cfg.BuscoScale = schema.RecordScale
	}
	if _, ok := schema.ValidBuscoScales[cfg.BuscoScale]; !ok {
		return fmt.Errorf("invalid busco scale '%s'. must be record, global", input.BuscoScale)
	}

	cfg.BarWidth = input.BarWidth
	if cfg.BarWidth <= 0 {
		cfg.BarWidth = DefaultBarWidth
	}

	keys, err := ParseSortKeys(input.Sort)
	if err != nil {
		return err
	}
	cfg.SortKeys = keys
	return nil
}

// processQueryInputs joins repeated flags and list files into the two query texts.
func processQueryInputs(cfg *Config, input *ConfigRawInput, stdin io.Reader) error {
	if input.AccessionFile == "-" && input.TaxonFile == "-" {
		return errors.New("accession-file and taxon-file cannot both read from stdin")
	}
	primary, err := collectQueryLines(input.Accession, input.AccessionFile, stdin)
	if err != nil {
		return fmt.Errorf("failed to read accessions: %w", err)
	}
	secondary, err := collectQueryLines(input.Taxon, input.TaxonFile, stdin)
	if err != nil {
		return fmt.Errorf("failed to read taxa: %w", err)
	}
	cfg.PrimaryQuery = primary
	cfg.SecondaryQuery = secondary
	return nil
}

// processAPISettings validates the metadata API endpoint and timeouts.
func processAPISettings(cfg *Config, input *ConfigRawInput) error {
	cfg.APIBaseURL = strings.TrimRight(strings.TrimSpace(input.APIBaseURL), "/")
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = schema.DefaultAPIBaseURL
	}
	if !strings.HasPrefix(cfg.APIBaseURL, "http://") && !strings.HasPrefix(cfg.APIBaseURL, "https://") {
		return fmt.Errorf("api-base-url must start with http:// or https:// (received %q)", input.APIBaseURL)
	}
	cfg.APIKey = input.APIKey

	timeout, err := parseDurationOr(input.APITimeout, DefaultAPITimeout)
	if err != nil {
		return fmt.Errorf("invalid --api-timeout value: %w", err)
	}
	cfg.APITimeout = timeout

	ttl, err := parseDurationOr(input.CacheTTL, DefaultCacheTTL)
	if err != nil {
		return fmt.Errorf("invalid --cache-ttl value: %w", err)
	}
	cfg.CacheTTL = ttl
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfigs validates cache and history backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return err
	}

	cfg.HistoryBackend = schema.DatabaseBackend(strings.ToLower(input.HistoryBackend))
	if cfg.HistoryBackend == "" {
		return nil
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.HistoryBackend]; !ok {
		return fmt.Errorf("invalid history backend '%s'. must be sqlite, mysql, postgresql, none", input.HistoryBackend)
	}
	cfg.HistoryDBConnect = input.HistoryDBConnect
	if err := ValidateDatabaseConnectionString(cfg.HistoryBackend, cfg.HistoryDBConnect); err != nil {
		return err
	}

	// Cache and history must not share one SQLite file since clearing one deletes it
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.HistoryBackend == schema.SQLiteBackend {
		cachePath := cfg.CacheDBConnect
		if cachePath == "" {
			cachePath = GetCacheDBFilePath()
		}
		historyPath := cfg.HistoryDBConnect
		if historyPath == "" {
			historyPath = GetHistoryDBFilePath()
		}
		if filepath.Clean(cachePath) == filepath.Clean(historyPath) {
			return fmt.Errorf("cache and history storage must use different SQLite database files. Both resolve to %q", cachePath)
		}
	}
	return nil
}

// ParseSortKeys parses a comma-separated field list. A leading '-' sorts descending.
// An empty string yields the default ordering.
func ParseSortKeys(s string) ([]schema.SortKey, error) {
	if strings.TrimSpace(s) == "" {
		return slices.Clone(schema.DefaultSortKeys), nil
	}
	var keys []schema.SortKey
	for part := range strings.SplitSeq(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key := schema.SortKey{}
		if name, ok := strings.CutPrefix(part, "-"); ok {
			key.Desc = true
			part = name
		}
		key.Field = schema.StatField(part)
		if _, ok := schema.SortableFields[key.Field]; !ok {
			return nil, fmt.Errorf("invalid sort field '%s'", part)
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// collectQueryLines merges flag values and an optional list file into newline-delimited text.
func collectQueryLines(values []string, listFile string, stdin io.Reader) (string, error) {
	lines := slices.Clone(values)
	if listFile != "" {
		var data []byte
		var err error
		if listFile == "-" {
			if stdin == nil {
				return "", errors.New("stdin is not available")
			}
			data, err = io.ReadAll(stdin)
		} else {
			data, err = os.ReadFile(listFile)
		}
		if err != nil {
			return "", err
		}
		if text := strings.TrimRight(string(data), "\r\n"); text != "" {
			lines = append(lines, text)
		}
	}
	return strings.Join(lines, "\n"), nil
}

// parseDurationOr parses a Go duration string, returning fallback for empty input.
func parseDurationOr(s string, fallback time.Duration) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration must be positive (received %s)", s)
	}
	return d, nil
}

// ProcessProfilingConfig enables profiling when a file prefix is given.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}
