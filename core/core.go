// Package core has core logic for merging lookups, normalizing assembly reports and deriving BUSCO counts.
package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/huangsam/asmstats/internal/contract"
	"github.com/huangsam/asmstats/internal/outwriter"
	"github.com/huangsam/asmstats/schema"
)

// ExecutorFunc defines the function signature for executing different output modes.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, src contract.ReportSource, mgr contract.CacheManager) error

// ExecuteStatTable runs a query cycle and prints the assembly comparison table.
// It serves as the main entry point for the 'table' command.
func ExecuteStatTable(ctx context.Context, cfg *contract.Config, src contract.ReportSource, mgr contract.CacheManager) error {
	start := time.Now()
	records, best, outcome, err := GetStatTableResults(ctx, cfg, src, mgr)
	if err != nil {
		return err
	}
	return outwriter.PrintStatTable(records, best, outcome, cfg, time.Since(start))
}

// ExecuteBuscoChart runs a query cycle and prints the BUSCO completeness breakdown.
// It serves as the main entry point for the 'busco' command.
func ExecuteBuscoChart(ctx context.Context, cfg *contract.Config, src contract.ReportSource, mgr contract.CacheManager) error {
	start := time.Now()
	chart, outcome, err := GetBuscoChartResults(ctx, cfg, src, mgr)
	if err != nil {
		return err
	}
	return outwriter.PrintBuscoChart(chart, outcome, cfg, time.Since(start))
}

// GetStatTableResults runs a query cycle and returns the sorted records with
// the best value of each highlighted column. best is nil unless cfg.Highlight is set.
// A superseded cycle still returns its results alongside ErrStaleCycle.
func GetStatTableResults(ctx context.Context, cfg *contract.Config, src contract.ReportSource, mgr contract.CacheManager) ([]schema.AssemblyStatRecord, schema.BestValues, schema.QueryOutcome, error) {
	outcome, err := RunQueryCycle(ctx, sessionFrom(ctx), src, cfg, mgr)
	if err != nil && !errors.Is(err, ErrStaleCycle) {
		return nil, nil, schema.QueryOutcome{}, err
	}
	reportTruncation(ctx, outcome)

	records := SortRecords(outcome.Stats.Records(), cfg.SortKeys)
	var best schema.BestValues
	if cfg.Highlight {
		best = FindBestValues(records)
	}
	return records, best, outcome, err
}

// GetBuscoChartResults runs a query cycle and derives the BUSCO chart from it.
func GetBuscoChartResults(ctx context.Context, cfg *contract.Config, src contract.ReportSource, mgr contract.CacheManager) (schema.BuscoChart, schema.QueryOutcome, error) {
	outcome, err := RunQueryCycle(ctx, sessionFrom(ctx), src, cfg, mgr)
	if err != nil && !errors.Is(err, ErrStaleCycle) {
		return schema.BuscoChart{}, schema.QueryOutcome{}, err
	}
	reportTruncation(ctx, outcome)
	return BuildBuscoChart(outcome.Stats, cfg.BuscoScale), outcome, err
}

// reportTruncation warns on stderr when the fetch cap hid matching assemblies.
func reportTruncation(ctx context.Context, outcome schema.QueryOutcome) {
	if !outcome.Truncated || shouldSuppressHeader(ctx) {
		return
	}
	_, _ = contract.WarnColor.Fprint(os.Stderr, "Warn ")
	_, _ = fmt.Fprintln(os.Stderr, TruncationWarning(outcome))
}
