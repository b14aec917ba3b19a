package core

import (
	"context"
	"fmt"
	"time"

	"github.com/huangsam/asmstats/internal/contract"
	"github.com/huangsam/asmstats/schema"
	"go.uber.org/zap"
)

// RunQueryCycle merges both lookups, normalizes the reports and commits the
// outcome to the session. A failed lookup leaves the session untouched.
// A cycle overtaken by a newer one returns its outcome marked Superseded
// together with ErrStaleCycle.
// When a history store is configured a successful merge is recorded there;
// failed cycles leave no run behind. Tracking failures are warnings only.
func RunQueryCycle(ctx context.Context, session *Session, src contract.ReportSource, cfg *contract.Config, mgr contract.CacheManager) (schema.QueryOutcome, error) {
	cycle := session.Begin()
	log := contract.Logger().With(zap.Uint64("cycle", cycle))
	log.Debug("query cycle started", zap.Int("limit", cfg.ResultLimit))
	started := time.Now()

	merged, err := MergeQueries(ctx, src, cfg.PrimaryQuery, cfg.SecondaryQuery, cfg.ResultLimit)
	if err != nil {
		log.Debug("query cycle failed", zap.Error(err))
		return schema.QueryOutcome{}, err
	}

	outcome := schema.QueryOutcome{
		Cycle:          cycle,
		Stats:          NormalizeReports(merged.Reports),
		PrimaryCount:   merged.PrimaryCount,
		SecondaryCount: merged.SecondaryCount,
		TotalFound:     merged.TotalFound(),
		Limit:          merged.Limit,
		Truncated:      merged.Truncated(),
	}

	endHistory(mgr, beginHistory(mgr, cfg, started), outcome)

	if err := session.Commit(cycle, outcome); err != nil {
		log.Debug("query cycle discarded", zap.Uint64("latest", session.Latest()))
		outcome.Superseded = true
		return outcome, err
	}
	log.Debug("query cycle committed", zap.Int("records", outcome.Stats.Len()), zap.Bool("truncated", outcome.Truncated))
	return outcome, nil
}

// TruncationWarning describes how many matches were left out of a truncated outcome.
func TruncationWarning(outcome schema.QueryOutcome) string {
	return fmt.Sprintf("Found %d matching assemblies; only the first %d are shown. Narrow the query to see the rest.",
		outcome.TotalFound, outcome.Limit)
}

// beginHistory opens a history run, returning 0 when tracking is off or fails.
func beginHistory(mgr contract.CacheManager, cfg *contract.Config, started time.Time) int64 {
	if mgr == nil {
		return 0
	}
	store := mgr.GetHistoryStore()
	if store == nil {
		return 0
	}
	runID, err := store.BeginRun(started, cfg.PrimaryQuery, cfg.SecondaryQuery, cfg.ResultLimit)
	if err != nil {
		contract.LogWarn("History tracking initialization failed", err)
		return 0
	}
	return runID
}

// endHistory records the returned assemblies and closes the run.
func endHistory(mgr contract.CacheManager, runID int64, outcome schema.QueryOutcome) {
	if runID == 0 {
		return
	}
	store := mgr.GetHistoryStore()
	for _, rec := range outcome.Stats.Records() {
		if err := store.RecordAssembly(runID, rec); err != nil {
			contract.LogWarn(fmt.Sprintf("History tracking failed for %s", rec.Accession), err)
		}
	}
	if err := store.EndRun(runID, time.Now(), outcome); err != nil {
		contract.LogWarn("Failed to finalize history tracking", err)
	}
}
