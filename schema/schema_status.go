package schema

import "time"

// CacheStatus represents the status of the response cache store.
type CacheStatus struct {
	Backend         string    `json:"backend"`
	Connected       bool      `json:"connected"`
	TotalEntries    int       `json:"total_entries"`
	LastEntryTime   time.Time `json:"last_entry_time"`
	OldestEntryTime time.Time `json:"oldest_entry_time"`
	TableSizeBytes  int64     `json:"table_size_bytes"`
}

// HistoryStatus represents the status of the query history store.
type HistoryStatus struct {
	Backend         string           `json:"backend"`
	Connected       bool             `json:"connected"`
	TotalRuns       int              `json:"total_runs"`
	LastRunID       int64            `json:"last_run_id"`
	LastRunTime     time.Time        `json:"last_run_time"`
	OldestRunTime   time.Time        `json:"oldest_run_time"`
	TotalAssemblies int              `json:"total_assemblies"`
	TableSizes      map[string]int64 `json:"table_sizes"`
}

// QueryRunRecord represents a row from the asmstats_query_runs table.
type QueryRunRecord struct {
	RunID          int64  `db:"run_id"`
	RunUUID        string `db:"run_uuid"`
	StartedAtMs    int64  `db:"started_at_ms"`
	EndedAtMs      *int64 `db:"ended_at_ms"`
	DurationMs     *int64 `db:"duration_ms"`
	PrimaryQuery   string `db:"primary_query"`
	SecondaryQuery string `db:"secondary_query"`
	ResultLimit    int32  `db:"result_limit"`
	TotalFound     *int32 `db:"total_found"`
	Fetched        *int32 `db:"fetched"`
	Truncated      *bool  `db:"truncated"`
}

// AssemblySnapshotRecord represents a row from the asmstats_assembly_snapshots table.
type AssemblySnapshotRecord struct {
	RunID         int64    `db:"run_id"`
	Accession     string   `db:"accession"`
	SpeciesName   *string  `db:"species_name"`
	AssemblyLevel *string  `db:"assembly_level"`
	ContigN50     *int64   `db:"contig_n50"`
	ScaffoldN50   *int64   `db:"scaffold_n50"`
	TotalLength   *int64   `db:"total_length"`
	GCPercent     *float64 `db:"gc_percent"`
	Coverage      *int64   `db:"coverage"`
	BuscoLineage  *string  `db:"busco_lineage"`
	BuscoComplete *float64 `db:"busco_complete"`
	BuscoTotal    *int64   `db:"busco_total"`
}

// StartedAt returns the run start time.
func (r QueryRunRecord) StartedAt() time.Time {
	return time.UnixMilli(r.StartedAtMs)
}
