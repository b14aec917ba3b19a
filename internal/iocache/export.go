package iocache

import (
	"errors"
	"fmt"

	"github.com/huangsam/asmstats/internal/contract"
	"github.com/huangsam/asmstats/internal/parquet"
)

// ExecuteHistoryExport exports the global history store to Parquet files.
func ExecuteHistoryExport(outputFile string) error {
	return exportHistory(Manager.GetHistoryStore(), outputFile)
}

// exportHistory writes outputFile.query_runs.parquet and
// outputFile.assembly_snapshots.parquet from the store.
func exportHistory(store contract.HistoryStore, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("history tracking is disabled; set --history-backend to export")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get history status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no query history found to export")
	}

	fmt.Printf("Exporting data from %s backend...\n", status.Backend)
	fmt.Printf("Total query runs: %d\n", status.TotalRuns)
	fmt.Printf("Total assembly snapshots: %d\n", status.TableSizes[assemblySnapshotsTable])

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve query runs: %w", err)
	}
	snapshots, err := store.GetAllSnapshots()
	if err != nil {
		return fmt.Errorf("failed to retrieve assembly snapshots: %w", err)
	}

	parquetRuns := parquet.ConvertQueryRunRecords(runs)
	runsFile := outputFile + ".query_runs.parquet"
	if err := parquet.WriteQueryRunsParquet(parquetRuns, runsFile); err != nil {
		return fmt.Errorf("failed to write query runs: %w", err)
	}
	fmt.Printf("Exported %d query runs to: %s\n", len(parquetRuns), runsFile)

	parquetSnapshots := parquet.ConvertAssemblySnapshotRecords(snapshots)
	snapshotsFile := outputFile + ".assembly_snapshots.parquet"
	if err := parquet.WriteAssemblySnapshotsParquet(parquetSnapshots, snapshotsFile); err != nil {
		return fmt.Errorf("failed to write assembly snapshots: %w", err)
	}
	fmt.Printf("Exported %d assembly snapshots to: %s\n", len(parquetSnapshots), snapshotsFile)

	fmt.Println("\nExport complete! The Parquet files can be read with DuckDB, Pandas (via pyarrow) or Apache Arrow.")
	return nil
}
