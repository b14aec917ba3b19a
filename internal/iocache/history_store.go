package iocache

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/asmstats/internal/contract"
	"github.com/huangsam/asmstats/schema"
	"github.com/jmoiron/sqlx"
)

// Table names for query history.
const (
	queryRunsTable         = "asmstats_query_runs"
	assemblySnapshotsTable = "asmstats_assembly_snapshots"
)

// historyTables lists the history tables in creation order.
var historyTables = []string{queryRunsTable, assemblySnapshotsTable}

// HistoryStoreImpl implements the HistoryStore interface.
type HistoryStoreImpl struct {
	db      *sqlx.DB
	backend schema.DatabaseBackend
	connStr string
}

var _ contract.HistoryStore = &HistoryStoreImpl{} // Compile-time check

// NewHistoryStore creates a new HistoryStore with the specified backend,
// applying any pending migrations first.
func NewHistoryStore(backend schema.DatabaseBackend, connStr string) (contract.HistoryStore, error) {
	if backend == schema.NoneBackend {
		// No-op store for disabled tracking
		return &HistoryStoreImpl{backend: backend}, nil
	}

	driverName, err := driverFor(backend)
	if err != nil {
		return nil, err
	}
	if err := ensureHistorySchema(backend, connStr); err != nil {
		return nil, err
	}

	db, err := openDatabase(backend, connStr, GetHistoryDBFilePath())
	if err != nil {
		return nil, err
	}
	return &HistoryStoreImpl{
		db:      sqlx.NewDb(db, driverName),
		backend: backend,
		connStr: connStr,
	}, nil
}

// BeginRun inserts a new query run and returns its ID.
func (hs *HistoryStoreImpl) BeginRun(startTime time.Time, primaryQuery, secondaryQuery string, limit int) (int64, error) {
	if hs.db == nil {
		return 0, nil
	}

	query := hs.db.Rebind(fmt.Sprintf(`INSERT INTO %s (run_uuid, started_at_ms, primary_query, secondary_query, result_limit) VALUES (?, ?, ?, ?, ?)`,
		quoteTableName(queryRunsTable, hs.backend)))
	args := []any{uuid.NewString(), startTime.UnixMilli(), primaryQuery, secondaryQuery, limit}

	if hs.backend == schema.PostgreSQLBackend {
		var runID int64
		if err := hs.db.QueryRowx(query+" RETURNING run_id", args...).Scan(&runID); err != nil {
			return 0, fmt.Errorf("failed to insert query run: %w", err)
		}
		return runID, nil
	}

	res, err := hs.db.Exec(query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to insert query run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get query run ID: %w", err)
	}
	return runID, nil
}

// EndRun records how the query run finished.
func (hs *HistoryStoreImpl) EndRun(runID int64, endTime time.Time, outcome schema.QueryOutcome) error {
	if hs.db == nil {
		return nil
	}

	endMs := endTime.UnixMilli()
	query := hs.db.Rebind(fmt.Sprintf(`UPDATE %s SET ended_at_ms = ?, duration_ms = ? - started_at_ms, total_found = ?, fetched = ?, truncated = ? WHERE run_id = ?`,
		quoteTableName(queryRunsTable, hs.backend)))
	res, err := hs.db.Exec(query, endMs, endMs, outcome.TotalFound, outcome.Stats.Len(), outcome.Truncated, runID)
	if err != nil {
		return fmt.Errorf("failed to update query run %d: %w", runID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("query run %d not found", runID)
	}
	return nil
}

// RecordAssembly stores one assembly returned by the run.
func (hs *HistoryStoreImpl) RecordAssembly(runID int64, rec schema.AssemblyStatRecord) error {
	if hs.db == nil {
		return nil
	}

	query := fmt.Sprintf(`INSERT INTO %s (run_id, accession, species_name, assembly_level, contig_n50, scaffold_n50, total_length, gc_percent, coverage, busco_lineage, busco_complete, busco_total)
		VALUES (:run_id, :accession, :species_name, :assembly_level, :contig_n50, :scaffold_n50, :total_length, :gc_percent, :coverage, :busco_lineage, :busco_complete, :busco_total)`,
		quoteTableName(assemblySnapshotsTable, hs.backend))
	if _, err := hs.db.NamedExec(query, snapshotOf(runID, rec)); err != nil {
		return fmt.Errorf("failed to record assembly %s: %w", rec.Accession, err)
	}
	return nil
}

// snapshotOf flattens a record into its stored columns. Absent values stay NULL.
func snapshotOf(runID int64, rec schema.AssemblyStatRecord) schema.AssemblySnapshotRecord {
	snap := schema.AssemblySnapshotRecord{
		RunID:         runID,
		Accession:     rec.Accession,
		SpeciesName:   rec.SpeciesName.TextPtr(),
		AssemblyLevel: rec.AssemblyLevel.TextPtr(),
		ContigN50:     rec.ContigN50.IntegerPtr(),
		ScaffoldN50:   rec.ScaffoldN50.IntegerPtr(),
		TotalLength:   rec.TotalLength.IntegerPtr(),
		GCPercent:     rec.GC.NumberPtr(),
		Coverage:      rec.Coverage,
		BuscoComplete: rec.Busco.Complete.NumberPtr(),
		BuscoTotal:    rec.Busco.TotalCount.IntegerPtr(),
	}
	if rec.Busco.Lineage != "" {
		lineage := rec.Busco.Lineage
		snap.BuscoLineage = &lineage
	}
	return snap
}

// Close closes the underlying DB connection.
func (hs *HistoryStoreImpl) Close() error {
	if hs.db != nil {
		return hs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the history store.
func (hs *HistoryStoreImpl) GetStatus() (schema.HistoryStatus, error) {
	status := schema.HistoryStatus{
		Backend:    string(hs.backend),
		Connected:  hs.db != nil,
		TableSizes: make(map[string]int64),
	}
	if hs.db == nil {
		return status, nil
	}

	runs := quoteTableName(queryRunsTable, hs.backend)
	if err := hs.db.Get(&status.TotalRuns, fmt.Sprintf("SELECT COUNT(*) FROM %s", runs)); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		var last struct {
			RunID       int64 `db:"run_id"`
			StartedAtMs int64 `db:"started_at_ms"`
		}
		if err := hs.db.Get(&last, fmt.Sprintf("SELECT run_id, started_at_ms FROM %s ORDER BY run_id DESC LIMIT 1", runs)); err != nil {
			return status, fmt.Errorf("failed to get last run: %w", err)
		}
		status.LastRunID = last.RunID
		status.LastRunTime = time.UnixMilli(last.StartedAtMs)

		var oldestMs int64
		if err := hs.db.Get(&oldestMs, fmt.Sprintf("SELECT MIN(started_at_ms) FROM %s", runs)); err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		status.OldestRunTime = time.UnixMilli(oldestMs)
	}

	snapshots := quoteTableName(assemblySnapshotsTable, hs.backend)
	if err := hs.db.Get(&status.TotalAssemblies, fmt.Sprintf("SELECT COUNT(DISTINCT accession) FROM %s", snapshots)); err != nil {
		return status, fmt.Errorf("failed to get total assemblies: %w", err)
	}

	for _, table := range historyTables {
		var count int
		if err := hs.db.Get(&count, fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, hs.backend))); err != nil {
			return status, fmt.Errorf("failed to count rows in %s: %w", table, err)
		}
		status.TableSizes[table] = int64(count)
	}
	return status, nil
}

// GetAllRuns retrieves every query run ordered by ID.
func (hs *HistoryStoreImpl) GetAllRuns() ([]schema.QueryRunRecord, error) {
	if hs.db == nil {
		return nil, nil
	}
	var records []schema.QueryRunRecord
	query := fmt.Sprintf(`SELECT run_id, run_uuid, started_at_ms, ended_at_ms, duration_ms, primary_query, secondary_query, result_limit, total_found, fetched, truncated
		FROM %s ORDER BY run_id`, quoteTableName(queryRunsTable, hs.backend))
	if err := hs.db.Select(&records, query); err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	return records, nil
}

// GetAllSnapshots retrieves every assembly snapshot ordered by run and accession.
func (hs *HistoryStoreImpl) GetAllSnapshots() ([]schema.AssemblySnapshotRecord, error) {
	if hs.db == nil {
		return nil, nil
	}
	var records []schema.AssemblySnapshotRecord
	query := fmt.Sprintf(`SELECT run_id, accession, species_name, assembly_level, contig_n50, scaffold_n50, total_length, gc_percent, coverage, busco_lineage, busco_complete, busco_total
		FROM %s ORDER BY run_id, accession`, quoteTableName(assemblySnapshotsTable, hs.backend))
	if err := hs.db.Select(&records, query); err != nil {
		return nil, fmt.Errorf("failed to query assembly snapshots: %w", err)
	}
	return records, nil
}
