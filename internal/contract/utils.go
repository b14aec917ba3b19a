package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/huangsam/asmstats/schema"
)

// NotAvailable is rendered wherever a value is missing.
const NotAvailable = "n/a"

// NoDataLabel is rendered for BUSCO bars without an annotation.
const NoDataLabel = "No Data"

// Color variables for console output.
var (
	BestColor       = color.New(color.FgGreen, color.Bold)    // BestColor marks the best value of a column.
	WarnColor       = color.New(color.FgYellow, color.Bold)   // WarnColor marks non-fatal warnings.
	SingleCopyColor = color.New(color.FgHiCyan)               // SingleCopyColor matches the light blue CS segment.
	DuplicatedColor = color.New(color.FgBlue)                 // DuplicatedColor matches the dark blue CD segment.
	FragmentedColor = color.New(color.FgYellow)               // FragmentedColor matches the yellow F segment.
	MissingColor    = color.New(color.FgRed)                  // MissingColor matches the red M segment.
	NoDataColor     = color.New(color.FgHiBlack, color.Faint) // NoDataColor dims placeholder rows.
)

// SetColorsEnabled toggles ANSI colors for every color helper.
func SetColorsEnabled(enabled bool) {
	color.NoColor = !enabled
}

// FormatInteger renders a whole number with thousands separators, or n/a when absent.
func FormatInteger(v schema.Value) string {
	n, ok := v.Integer()
	if !ok {
		return NotAvailable
	}
	return humanize.Comma(n)
}

// FormatDecimal renders a number as the source supplied it, or n/a when absent.
func FormatDecimal(v schema.Value) string {
	if _, ok := v.Number(); !ok {
		return NotAvailable
	}
	return v.String()
}

// FormatText renders a text value, or n/a when absent or empty.
func FormatText(v schema.Value) string {
	s, ok := v.Text()
	if !ok || strings.TrimSpace(s) == "" {
		return NotAvailable
	}
	return s
}

// FormatCoverage renders coverage as an integer, or n/a when undefined.
func FormatCoverage(coverage *int64) string {
	if coverage == nil {
		return NotAvailable
	}
	return humanize.Comma(*coverage)
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. It returns os.Stdout for an empty path.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetCacheDBFilePath returns the path to the SQLite DB file for the response cache.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".asmstats_cache.db"
	}
	return filepath.Join(homeDir, ".asmstats_cache.db")
}

// GetHistoryDBFilePath returns the path to the SQLite DB file for query history.
func GetHistoryDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".asmstats_history.db"
	}
	return filepath.Join(homeDir, ".asmstats_history.db")
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
