package parquet

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/asmstats/schema"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll[T any](t *testing.T, path string) []T {
	t.Helper()
	rows, err := ReadRows[T](path)
	require.NoError(t, err, "Should be able to read output file")
	return rows
}

func TestStructTags(t *testing.T) {
	tests := []struct {
		name    string
		schema  *parquet.Schema
		columns []string
	}{
		{"AssemblyRecord", parquet.SchemaOf(new(AssemblyRecord)), []string{
			"accession", "species_name", "assembly_type", "assembly_level", "coverage", "gc_percent",
			"contig_count", "contig_n50", "contig_l50", "scaffold_count", "scaffold_n50", "scaffold_l50",
			"total_length", "ungapped_length", "busco_lineage", "busco_version", "busco_complete",
			"busco_single_copy", "busco_duplicated", "busco_fragmented", "busco_missing", "busco_total",
		}},
		{"QueryRun", parquet.SchemaOf(new(QueryRun)), []string{
			"run_id", "run_uuid", "started_at", "ended_at", "duration_ms", "primary_query",
			"secondary_query", "result_limit", "total_found", "fetched", "truncated",
		}},
		{"AssemblySnapshot", parquet.SchemaOf(new(AssemblySnapshot)), []string{
			"run_id", "accession", "species_name", "assembly_level", "contig_n50", "scaffold_n50",
			"total_length", "gc_percent", "coverage", "busco_lineage", "busco_complete", "busco_total",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NotNil(t, tt.schema)
			for _, colName := range tt.columns {
				col, ok := tt.schema.Lookup(colName)
				require.True(t, ok, "Column %s should exist in schema", colName)
				require.NotNil(t, col, "Column %s should not be nil", colName)
			}
		})
	}
}

func TestConvertStatRecords(t *testing.T) {
	cov := int64(35)
	records := []schema.AssemblyStatRecord{
		{
			Accession:     "GCF_000001405.40",
			SpeciesName:   schema.ValueOf("Homo sapiens"),
			AssemblyLevel: schema.ValueOf("Chromosome"),
			Coverage:      &cov,
			GC:            schema.ValueOf(json.Number("41")),
			ContigN50:     schema.ValueOf(json.Number("57879411")),
			TotalLength:   schema.ValueOf("3099734149"),
			Busco: schema.BuscoSummary{
				Lineage:    "primates_odb10",
				Complete:   schema.ValueOf(json.Number("0.95")),
				TotalCount: schema.ValueOf("1066"),
			},
		},
		{Accession: "GCA_000001635.9", Busco: schema.EmptyBusco()},
	}

	got := ConvertStatRecords(records)
	require.Len(t, got, 2)

	first := got[0]
	assert.Equal(t, "GCF_000001405.40", first.Accession)
	require.NotNil(t, first.SpeciesName)
	assert.Equal(t, "Homo sapiens", *first.SpeciesName)
	assert.Nil(t, first.AssemblyType)
	require.NotNil(t, first.TotalLength)
	assert.Equal(t, int64(3099734149), *first.TotalLength)
	require.NotNil(t, first.GCPercent)
	assert.InDelta(t, 41.0, *first.GCPercent, 1e-9)
	require.NotNil(t, first.BuscoTotal)
	assert.Equal(t, int64(1066), *first.BuscoTotal)
	assert.Nil(t, first.BuscoVersion)

	second := got[1]
	assert.Nil(t, second.SpeciesName)
	assert.Nil(t, second.Coverage)
	assert.Nil(t, second.BuscoLineage)
	assert.Nil(t, second.BuscoComplete)
}

func TestWriteAssemblyRecordsParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "assemblies.parquet")
	name := "Danio rerio"
	n50 := int64(1000)
	data := []AssemblyRecord{
		{Accession: "GCF_1", SpeciesName: &name, ContigN50: &n50},
		{Accession: "GCF_2"},
	}

	require.NoError(t, WriteAssemblyRecordsParquet(data, outputPath))

	got := readAll[AssemblyRecord](t, outputPath)
	require.Len(t, got, 2)
	assert.Equal(t, "GCF_1", got[0].Accession)
	require.NotNil(t, got[0].SpeciesName)
	assert.Equal(t, name, *got[0].SpeciesName)
	assert.Equal(t, n50, *got[0].ContigN50)
	assert.Nil(t, got[1].SpeciesName)
	assert.Nil(t, got[1].ContigN50)
}

func TestWriteRowsToWriter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRows(&buf, []AssemblyRecord{{Accession: "GCF_1"}}))
	assert.Equal(t, "PAR1", buf.String()[:4], "Parquet output starts with the magic bytes")
}

func TestWriteQueryRunsParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "runs.parquet")

	start := time.UnixMilli(1_700_000_000_000)
	endMs := start.Add(2 * time.Second).UnixMilli()
	duration := int64(2000)
	total, fetched := int32(43), int32(20)
	truncated := true

	records := []schema.QueryRunRecord{
		{
			RunID:          1,
			RunUUID:        "0b6c9e7e-3f4f-4a55-9b76-1d7b0f6b2f7a",
			StartedAtMs:    start.UnixMilli(),
			EndedAtMs:      &endMs,
			DurationMs:     &duration,
			PrimaryQuery:   "GCF_1",
			SecondaryQuery: "Danio rerio",
			ResultLimit:    20,
			TotalFound:     &total,
			Fetched:        &fetched,
			Truncated:      &truncated,
		},
		{
			RunID:        2,
			RunUUID:      "5f0e2d1c-8a7b-4c3d-9e8f-0a1b2c3d4e5f",
			StartedAtMs:  start.Add(time.Minute).UnixMilli(),
			PrimaryQuery: "GCF_2",
			ResultLimit:  20,
		},
	}

	data := ConvertQueryRunRecords(records)
	require.NoError(t, WriteQueryRunsParquet(data, outputPath))

	got := readAll[QueryRun](t, outputPath)
	require.Len(t, got, 2)

	assert.Equal(t, int64(1), got[0].RunID)
	assert.WithinDuration(t, start, got[0].StartedAt, time.Millisecond)
	require.NotNil(t, got[0].EndedAt)
	assert.WithinDuration(t, time.UnixMilli(endMs), *got[0].EndedAt, time.Millisecond)
	require.NotNil(t, got[0].Truncated)
	assert.True(t, *got[0].Truncated)
	assert.Equal(t, int32(43), *got[0].TotalFound)

	// A run that never finished keeps its nullable fields empty
	assert.Nil(t, got[1].EndedAt)
	assert.Nil(t, got[1].DurationMs)
	assert.Nil(t, got[1].Truncated)
}

func TestWriteAssemblySnapshotsParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "snapshots.parquet")
	level := "Chromosome"
	complete := 0.95

	data := ConvertAssemblySnapshotRecords([]schema.AssemblySnapshotRecord{
		{RunID: 1, Accession: "GCF_1", AssemblyLevel: &level, BuscoComplete: &complete},
		{RunID: 1, Accession: "GCF_2"},
	})
	require.NoError(t, WriteAssemblySnapshotsParquet(data, outputPath))

	got := readAll[AssemblySnapshot](t, outputPath)
	require.Len(t, got, 2)
	assert.Equal(t, level, *got[0].AssemblyLevel)
	assert.InDelta(t, complete, *got[0].BuscoComplete, 1e-9)
	assert.Nil(t, got[1].AssemblyLevel)
}

func TestWriteParquet_EmptyData(t *testing.T) {
	tmpDir := t.TempDir()

	runsPath := filepath.Join(tmpDir, "empty_runs.parquet")
	require.NoError(t, WriteQueryRunsParquet([]QueryRun{}, runsPath))
	assert.Empty(t, readAll[QueryRun](t, runsPath))

	snapsPath := filepath.Join(tmpDir, "empty_snapshots.parquet")
	require.NoError(t, WriteAssemblySnapshotsParquet(nil, snapsPath))
	info, err := os.Stat(snapsPath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0), "Even empty output carries a footer")
}

func TestWriteParquet_InvalidPath(t *testing.T) {
	invalid := filepath.Join(t.TempDir(), "missing", "dir", "out.parquet")
	assert.Error(t, WriteQueryRunsParquet(nil, invalid))
	assert.Error(t, WriteAssemblySnapshotsParquet(nil, invalid))
	assert.Error(t, WriteAssemblyRecordsParquet(nil, invalid))
}

func TestReadExportFiles(t *testing.T) {
	tmpDir := t.TempDir()
	runsPath := filepath.Join(tmpDir, "history.query_runs.parquet")
	snapsPath := filepath.Join(tmpDir, "history.assembly_snapshots.parquet")

	found := int32(12)
	require.NoError(t, WriteQueryRunsParquet(ConvertQueryRunRecords([]schema.QueryRunRecord{
		{RunID: 3, RunUUID: "run-3", StartedAtMs: 1700000000000, PrimaryQuery: "GCF_1", ResultLimit: 20, TotalFound: &found},
	}), runsPath))
	require.NoError(t, WriteAssemblySnapshotsParquet(ConvertAssemblySnapshotRecords([]schema.AssemblySnapshotRecord{
		{RunID: 3, Accession: "GCF_1"},
		{RunID: 3, Accession: "GCA_2"},
	}), snapsPath))

	runs, err := ReadQueryRunsFile(runsPath)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "run-3", runs[0].RunUUID)
	assert.Equal(t, int32(12), *runs[0].TotalFound)

	snaps, err := ReadAssemblySnapshotsFile(snapsPath)
	require.NoError(t, err)
	assert.Equal(t, []string{"GCF_1", "GCA_2"}, []string{snaps[0].Accession, snaps[1].Accession})
}

func TestReadRows_Errors(t *testing.T) {
	_, err := ReadQueryRunsFile(filepath.Join(t.TempDir(), "absent.parquet"))
	assert.Error(t, err)

	notParquet := filepath.Join(t.TempDir(), "plain.txt")
	require.NoError(t, os.WriteFile(notParquet, []byte("accession\nGCF_1\n"), 0o644))
	assert.NotPanics(t, func() {
		_, err = ReadAssemblySnapshotsFile(notParquet)
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open parquet file")

	// A valid file cut short loses its footer.
	valid := filepath.Join(t.TempDir(), "runs.parquet")
	require.NoError(t, WriteQueryRunsParquet([]QueryRun{{RunID: 1, RunUUID: "run-1"}}, valid))
	data, err := os.ReadFile(valid)
	require.NoError(t, err)
	truncated := filepath.Join(t.TempDir(), "truncated.parquet")
	require.NoError(t, os.WriteFile(truncated, data[:len(data)/2], 0o644))
	assert.NotPanics(t, func() {
		_, err = ReadQueryRunsFile(truncated)
	})
	assert.Error(t, err)
}
