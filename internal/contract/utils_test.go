package contract

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/huangsam/asmstats/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFormatters(t *testing.T) {
	tests := []struct {
		name     string
		format   func(schema.Value) string
		input    schema.Value
		expected string
	}{
		{"integer with separators", FormatInteger, schema.ValueOf(json.Number("3099734149")), "3,099,734,149"},
		{"integer from string", FormatInteger, schema.ValueOf("57879411"), "57,879,411"},
		{"integer absent", FormatInteger, schema.NoData, NotAvailable},
		{"integer zero", FormatInteger, schema.ValueOf(json.Number("0")), "0"},
		{"decimal", FormatDecimal, schema.ValueOf(json.Number("41.5")), "41.5"},
		{"decimal absent", FormatDecimal, schema.NoData, NotAvailable},
		{"decimal non-numeric", FormatDecimal, schema.ValueOf("high"), NotAvailable},
		{"text", FormatText, schema.ValueOf("Homo sapiens"), "Homo sapiens"},
		{"text blank", FormatText, schema.ValueOf("  "), NotAvailable},
		{"text absent", FormatText, schema.NoData, NotAvailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.format(tt.input))
		})
	}
}

func TestFormatCoverage(t *testing.T) {
	assert.Equal(t, NotAvailable, FormatCoverage(nil))
	cov := int64(1200)
	assert.Equal(t, "1,200", FormatCoverage(&cov))
}

func TestSelectOutputFile(t *testing.T) {
	t.Run("empty path returns stdout", func(t *testing.T) {
		file, err := SelectOutputFile("")
		require.NoError(t, err)
		assert.Equal(t, os.Stdout, file)
	})

	t.Run("valid path creates file", func(t *testing.T) {
		tempFile := filepath.Join(t.TempDir(), "test_output.txt")

		file, err := SelectOutputFile(tempFile)
		require.NoError(t, err)
		assert.NotNil(t, file)
		_ = file.Close()

		_, err = os.Stat(tempFile)
		assert.NoError(t, err)
	})
}

func TestParseBoolString(t *testing.T) {
	tests := []struct {
		input   string
		want    bool
		wantErr bool
	}{
		{"yes", true, false},
		{"TRUE", true, false},
		{"1", true, false},
		{"no", false, false},
		{"False", false, false},
		{"0", false, false},
		{"maybe", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseBoolString(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDBFilePaths(t *testing.T) {
	assert.Contains(t, GetCacheDBFilePath(), ".asmstats_cache.db")
	assert.Contains(t, GetHistoryDBFilePath(), ".asmstats_history.db")
	assert.NotEqual(t, GetCacheDBFilePath(), GetHistoryDBFilePath())
}

func TestLogger(t *testing.T) {
	assert.NotNil(t, Logger())

	l := zap.NewExample()
	SetLogger(l)
	assert.Same(t, l, Logger())

	SetLogger(nil)
	assert.NotNil(t, Logger())

	built, err := NewLogger(true)
	require.NoError(t, err)
	assert.True(t, built.Core().Enabled(zap.DebugLevel))

	quiet, err := NewLogger(false)
	require.NoError(t, err)
	assert.False(t, quiet.Core().Enabled(zap.InfoLevel))
}
