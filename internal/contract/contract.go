// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/huangsam/asmstats/schema"
)

// ReportSource defines the metadata lookups a query cycle depends on.
// This allows the merge logic to be tested without reaching the network.
type ReportSource interface {
	// ByAccession looks up assemblies by accession identifier, returning at most pageSize reports.
	ByAccession(ctx context.Context, accessions []string, pageSize int) (schema.LookupResult, error)

	// ByTaxon looks up assemblies by taxon name or identifier, returning at most pageSize reports.
	ByTaxon(ctx context.Context, taxa []string, pageSize int) (schema.LookupResult, error)
}

// CacheManager defines the interface for managing cache stores.
// This allows the cache layer to be mocked for testing.
type CacheManager interface {
	GetResponseStore() CacheStore
	GetHistoryStore() HistoryStore
}

// CacheStore defines the interface for cache data storage.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// HistoryStore defines the interface for tracking query cycles and the assemblies they returned.
type HistoryStore interface {
	// BeginRun creates a new query run and returns its unique ID
	BeginRun(startTime time.Time, primaryQuery, secondaryQuery string, limit int) (int64, error)

	// EndRun updates the query run with completion data
	EndRun(runID int64, endTime time.Time, outcome schema.QueryOutcome) error

	// RecordAssembly stores a snapshot of one assembly returned by the run
	RecordAssembly(runID int64, rec schema.AssemblyStatRecord) error

	// GetStatus returns status information about the history store
	GetStatus() (schema.HistoryStatus, error)

	// GetAllRuns returns every stored query run ordered by ID
	GetAllRuns() ([]schema.QueryRunRecord, error)

	// GetAllSnapshots returns every stored assembly snapshot ordered by run and accession
	GetAllSnapshots() ([]schema.AssemblySnapshotRecord, error)

	// Close closes the underlying connection
	Close() error
}
