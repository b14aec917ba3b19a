//go:build basic

package integration

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableJSON(t *testing.T) {
	srv := newDatasetsServer(t)
	home := t.TempDir()
	env := []string{"ASMSTATS_API_BASE_URL=" + srv.URL}

	out, err := runAsmstats(t, home, env,
		"table", "GCF_000001405.40", "--taxon", "Danio rerio", "--limit", "2", "--output", "json")
	require.NoError(t, err)

	start := strings.Index(out, "{")
	require.GreaterOrEqual(t, start, 0, "expected a JSON document in %q", out)
	var doc struct {
		TotalFound int  `json:"total_found"`
		Truncated  bool `json:"truncated"`
		Assemblies []struct {
			Accession string   `json:"accession"`
			Coverage  *int64   `json:"coverage"`
			Best      []string `json:"best"`
		} `json:"assemblies"`
	}
	require.NoError(t, json.NewDecoder(strings.NewReader(out[start:])).Decode(&doc))

	assert.Equal(t, 43, doc.TotalFound)
	assert.True(t, doc.Truncated)
	require.Len(t, doc.Assemblies, 2)
	assert.Equal(t, "GCF_000001405.40", doc.Assemblies[0].Accession)
	require.NotNil(t, doc.Assemblies[0].Coverage)
	assert.Equal(t, int64(35), *doc.Assemblies[0].Coverage)
	assert.Contains(t, doc.Assemblies[0].Best, "contigN50")
	assert.Contains(t, out, "Found 43 matching assemblies")
}

func TestResponseCacheAvoidsRefetch(t *testing.T) {
	srv := newDatasetsServer(t)
	home := t.TempDir()
	env := []string{"ASMSTATS_API_BASE_URL=" + srv.URL}

	_, err := runAsmstats(t, home, env, "table", "GCF_000001405.40")
	require.NoError(t, err)
	first := srv.requests.Load()

	_, err = runAsmstats(t, home, env, "table", "GCF_000001405.40")
	require.NoError(t, err)
	assert.Equal(t, first, srv.requests.Load(), "second run should be served from the SQLite cache")

	out, err := runAsmstats(t, home, env, "cache", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "sqlite")

	_, err = runAsmstats(t, home, env, "cache", "clear")
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(home, ".asmstats_cache.db"))
	assert.True(t, os.IsNotExist(err))
}

func TestBuscoCSV(t *testing.T) {
	srv := newDatasetsServer(t)
	home := t.TempDir()
	env := []string{"ASMSTATS_API_BASE_URL=" + srv.URL, "ASMSTATS_CACHE_BACKEND=none"}
	outFile := filepath.Join(home, "busco.csv")

	_, err := runAsmstats(t, home, env, "busco", "GCF_000001405.40", "--output", "csv", "--output-file", outFile)
	require.NoError(t, err)

	f, err := os.Open(outFile)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"GCF_000001405.40", "primates_odb10", "4.1.4", "13780", "13504", "138", "69", "69", "13780"}, rows[1])
}

func TestHistoryLifecycle(t *testing.T) {
	srv := newDatasetsServer(t)
	home := t.TempDir()
	env := []string{
		"ASMSTATS_API_BASE_URL=" + srv.URL,
		"ASMSTATS_CACHE_BACKEND=none",
		"ASMSTATS_HISTORY_BACKEND=sqlite",
	}

	_, err := runAsmstats(t, home, env, "history", "migrate")
	require.NoError(t, err)

	_, err = runAsmstats(t, home, env, "table", "GCF_000001405.40", "--output", "csv")
	require.NoError(t, err)
	_, err = runAsmstats(t, home, env, "busco", "--taxon", "9606", "--output", "json")
	require.NoError(t, err)

	out, err := runAsmstats(t, home, env, "history", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Total Runs: 2")
	assert.Contains(t, out, "Distinct Assemblies: 2")

	exportBase := filepath.Join(home, "history")
	_, err = runAsmstats(t, home, env, "history", "export", "--output-file", exportBase)
	require.NoError(t, err)
	assert.FileExists(t, exportBase+".query_runs.parquet")
	assert.FileExists(t, exportBase+".assembly_snapshots.parquet")

	_, err = runAsmstats(t, home, env, "history", "clear")
	require.NoError(t, err)
}

func TestUpstreamErrorExitsNonZero(t *testing.T) {
	home := t.TempDir()
	env := []string{"ASMSTATS_API_BASE_URL=http://127.0.0.1:1", "ASMSTATS_CACHE_BACKEND=none", "ASMSTATS_API_TIMEOUT=200ms"}

	_, err := runAsmstats(t, home, env, "table", "GCF_000001405.40")
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, err := runAsmstats(t, t.TempDir(), nil, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "asmstats CLI")
}
