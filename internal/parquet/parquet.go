// Package parquet provides data structures and functions for exporting assembly
// statistics and query history to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/huangsam/asmstats/schema"
	"github.com/parquet-go/parquet-go"
)

// AssemblyRecord is one row of the assembly comparison table.
type AssemblyRecord struct {
	Accession      string   `parquet:"accession,snappy"`
	SpeciesName    *string  `parquet:"species_name,optional,snappy"`
	AssemblyType   *string  `parquet:"assembly_type,optional,snappy"`
	AssemblyLevel  *string  `parquet:"assembly_level,optional,snappy"`
	Coverage       *int64   `parquet:"coverage,optional,snappy"`
	GCPercent      *float64 `parquet:"gc_percent,optional,snappy"`
	ContigCount    *int64   `parquet:"contig_count,optional,snappy"`
	ContigN50      *int64   `parquet:"contig_n50,optional,snappy"`
	ContigL50      *int64   `parquet:"contig_l50,optional,snappy"`
	ScaffoldCount  *int64   `parquet:"scaffold_count,optional,snappy"`
	ScaffoldN50    *int64   `parquet:"scaffold_n50,optional,snappy"`
	ScaffoldL50    *int64   `parquet:"scaffold_l50,optional,snappy"`
	TotalLength    *int64   `parquet:"total_length,optional,snappy"`
	UngappedLength *int64   `parquet:"ungapped_length,optional,snappy"`

	// BUSCO proportions are kept as reported (0-1), not as derived counts
	BuscoLineage    *string  `parquet:"busco_lineage,optional,snappy"`
	BuscoVersion    *string  `parquet:"busco_version,optional,snappy"`
	BuscoComplete   *float64 `parquet:"busco_complete,optional,snappy"`
	BuscoSingleCopy *float64 `parquet:"busco_single_copy,optional,snappy"`
	BuscoDuplicated *float64 `parquet:"busco_duplicated,optional,snappy"`
	BuscoFragmented *float64 `parquet:"busco_fragmented,optional,snappy"`
	BuscoMissing    *float64 `parquet:"busco_missing,optional,snappy"`
	BuscoTotal      *int64   `parquet:"busco_total,optional,snappy"`
}

// QueryRun represents a single query cycle with its outcome.
// This struct maps to the asmstats_query_runs database table.
type QueryRun struct {
	// RunID is the unique identifier for this query run
	RunID int64 `parquet:"run_id,snappy"`

	// RunUUID is the globally unique run identifier
	RunUUID string `parquet:"run_uuid,snappy"`

	// StartedAt is when the query began
	StartedAt time.Time `parquet:"started_at,snappy"`

	// EndedAt is when the query committed (nullable when the run failed)
	EndedAt *time.Time `parquet:"ended_at,optional,snappy"`

	// DurationMs is the duration of the run in milliseconds (nullable)
	DurationMs *int64 `parquet:"duration_ms,optional,snappy"`

	// PrimaryQuery holds the accession lookup input
	PrimaryQuery string `parquet:"primary_query,snappy"`

	// SecondaryQuery holds the taxon lookup input
	SecondaryQuery string `parquet:"secondary_query,snappy"`

	// ResultLimit is the fetch cap in effect
	ResultLimit int32 `parquet:"result_limit,snappy"`

	TotalFound *int32 `parquet:"total_found,optional,snappy"`
	Fetched    *int32 `parquet:"fetched,optional,snappy"`
	Truncated  *bool  `parquet:"truncated,optional,snappy"`
}

// AssemblySnapshot is the stored summary of one assembly returned by a run.
// This struct maps to the asmstats_assembly_snapshots database table.
type AssemblySnapshot struct {
	RunID         int64    `parquet:"run_id,snappy"`
	Accession     string   `parquet:"accession,snappy"`
	SpeciesName   *string  `parquet:"species_name,optional,snappy"`
	AssemblyLevel *string  `parquet:"assembly_level,optional,snappy"`
	ContigN50     *int64   `parquet:"contig_n50,optional,snappy"`
	ScaffoldN50   *int64   `parquet:"scaffold_n50,optional,snappy"`
	TotalLength   *int64   `parquet:"total_length,optional,snappy"`
	GCPercent     *float64 `parquet:"gc_percent,optional,snappy"`
	Coverage      *int64   `parquet:"coverage,optional,snappy"`
	BuscoLineage  *string  `parquet:"busco_lineage,optional,snappy"`
	BuscoComplete *float64 `parquet:"busco_complete,optional,snappy"`
	BuscoTotal    *int64   `parquet:"busco_total,optional,snappy"`
}

// WriteRows writes rows to w using the schema inferred from T's struct tags.
func WriteRows[T any](w io.Writer, rows []T) error {
	writer := parquet.NewGenericWriter[T](w)
	if _, err := writer.Write(rows); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// writeFile creates outputPath and writes rows into it.
func writeFile[T any](rows []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()
	return WriteRows(file, rows)
}

// WriteAssemblyRecordsParquet writes assembly rows to a Parquet file.
func WriteAssemblyRecordsParquet(data []AssemblyRecord, outputPath string) error {
	return writeFile(data, outputPath)
}

// WriteQueryRunsParquet writes query runs to a Parquet file.
func WriteQueryRunsParquet(data []QueryRun, outputPath string) error {
	return writeFile(data, outputPath)
}

// WriteAssemblySnapshotsParquet writes assembly snapshots to a Parquet file.
func WriteAssemblySnapshotsParquet(data []AssemblySnapshot, outputPath string) error {
	return writeFile(data, outputPath)
}

// ReadRows reads every row of a Parquet file into T.
func ReadRows[T any](inputPath string) ([]T, error) {
	file, err := os.Open(inputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer func() { _ = file.Close() }()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat parquet file: %w", err)
	}
	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}

	reader := parquet.NewGenericReader[T](pf)
	defer func() { _ = reader.Close() }()

	rows := make([]T, reader.NumRows())
	n, err := reader.Read(rows)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read parquet rows: %w", err)
	}
	return rows[:n], nil
}

// ReadQueryRunsFile reads an exported query runs file.
func ReadQueryRunsFile(inputPath string) ([]QueryRun, error) {
	return ReadRows[QueryRun](inputPath)
}

// ReadAssemblySnapshotsFile reads an exported assembly snapshots file.
func ReadAssemblySnapshotsFile(inputPath string) ([]AssemblySnapshot, error) {
	return ReadRows[AssemblySnapshot](inputPath)
}

// ConvertStatRecords converts table rows to AssemblyRecord for Parquet output.
func ConvertStatRecords(records []schema.AssemblyStatRecord) []AssemblyRecord {
	result := make([]AssemblyRecord, len(records))
	for i, r := range records {
		result[i] = AssemblyRecord{
			Accession:       r.Accession,
			SpeciesName:     r.SpeciesName.TextPtr(),
			AssemblyType:    r.AssemblyType.TextPtr(),
			AssemblyLevel:   r.AssemblyLevel.TextPtr(),
			Coverage:        r.Coverage,
			GCPercent:       r.GC.NumberPtr(),
			ContigCount:     r.ContigCount.IntegerPtr(),
			ContigN50:       r.ContigN50.IntegerPtr(),
			ContigL50:       r.ContigL50.IntegerPtr(),
			ScaffoldCount:   r.ScaffoldCount.IntegerPtr(),
			ScaffoldN50:     r.ScaffoldN50.IntegerPtr(),
			ScaffoldL50:     r.ScaffoldL50.IntegerPtr(),
			TotalLength:     r.TotalLength.IntegerPtr(),
			UngappedLength:  r.UngappedLength.IntegerPtr(),
			BuscoLineage:    nonEmpty(r.Busco.Lineage),
			BuscoVersion:    nonEmpty(r.Busco.Version),
			BuscoComplete:   r.Busco.Complete.NumberPtr(),
			BuscoSingleCopy: r.Busco.SingleCopy.NumberPtr(),
			BuscoDuplicated: r.Busco.Duplicated.NumberPtr(),
			BuscoFragmented: r.Busco.Fragmented.NumberPtr(),
			BuscoMissing:    r.Busco.Missing.NumberPtr(),
			BuscoTotal:      r.Busco.TotalCount.IntegerPtr(),
		}
	}
	return result
}

// ConvertQueryRunRecords converts schema.QueryRunRecord to QueryRun for Parquet export.
func ConvertQueryRunRecords(records []schema.QueryRunRecord) []QueryRun {
	result := make([]QueryRun, len(records))
	for i, record := range records {
		var endedAt *time.Time
		if record.EndedAtMs != nil {
			t := time.UnixMilli(*record.EndedAtMs)
			endedAt = &t
		}
		result[i] = QueryRun{
			RunID:          record.RunID,
			RunUUID:        record.RunUUID,
			StartedAt:      record.StartedAt(),
			EndedAt:        endedAt,
			DurationMs:     record.DurationMs,
			PrimaryQuery:   record.PrimaryQuery,
			SecondaryQuery: record.SecondaryQuery,
			ResultLimit:    record.ResultLimit,
			TotalFound:     record.TotalFound,
			Fetched:        record.Fetched,
			Truncated:      record.Truncated,
		}
	}
	return result
}

// ConvertAssemblySnapshotRecords converts schema.AssemblySnapshotRecord to AssemblySnapshot for Parquet export.
func ConvertAssemblySnapshotRecords(records []schema.AssemblySnapshotRecord) []AssemblySnapshot {
	result := make([]AssemblySnapshot, len(records))
	for i, record := range records {
		result[i] = AssemblySnapshot{
			RunID:         record.RunID,
			Accession:     record.Accession,
			SpeciesName:   record.SpeciesName,
			AssemblyLevel: record.AssemblyLevel,
			ContigN50:     record.ContigN50,
			ScaffoldN50:   record.ScaffoldN50,
			TotalLength:   record.TotalLength,
			GCPercent:     record.GCPercent,
			Coverage:      record.Coverage,
			BuscoLineage:  record.BuscoLineage,
			BuscoComplete: record.BuscoComplete,
			BuscoTotal:    record.BuscoTotal,
		}
	}
	return result
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
