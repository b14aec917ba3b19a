package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/huangsam/asmstats/internal/contract"
	"github.com/huangsam/asmstats/schema"
	"go.uber.org/zap"
)

// Lookup names used in errors and logs.
const (
	AccessionLookup = "accession"
	TaxonLookup     = "taxon"
)

// ErrEmptyQuery is returned when neither query input carries an identifier.
var ErrEmptyQuery = errors.New("no accession or taxon query was provided")

// UpstreamError reports a lookup that the metadata service answered with a failure status.
type UpstreamError struct {
	Lookup string
	Status string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s lookup failed: %s", e.Lookup, e.Status)
}

// MergeResult is the combined output of the primary and secondary lookups.
type MergeResult struct {
	Reports        []schema.RawReport
	PrimaryCount   int // total_count reported by the accession lookup
	SecondaryCount int // total_count reported by the taxon lookup
	Limit          int
}

// TotalFound is the number of matching assemblies across both lookups.
func (m *MergeResult) TotalFound() int {
	return m.PrimaryCount + m.SecondaryCount
}

// Truncated reports whether more assemblies matched than were fetched.
func (m *MergeResult) Truncated() bool {
	return m.TotalFound() > m.Limit
}

// SplitIdentifiers splits newline-delimited query text into trimmed, non-empty tokens.
func SplitIdentifiers(text string) []string {
	var out []string
	for line := range strings.SplitSeq(text, "\n") {
		if token := strings.TrimSpace(line); token != "" {
			out = append(out, token)
		}
	}
	return out
}

// MergeQueries runs the accession lookup and then, while the result cap has room,
// the taxon lookup. Reports are returned primary first. Any failed lookup aborts
// the merge without a partial result.
func MergeQueries(ctx context.Context, src contract.ReportSource, primaryText, secondaryText string, limit int) (*MergeResult, error) {
	primary := SplitIdentifiers(primaryText)
	secondary := SplitIdentifiers(secondaryText)
	if len(primary) == 0 && len(secondary) == 0 {
		return nil, ErrEmptyQuery
	}
	if limit <= 0 {
		limit = contract.DefaultResultLimit
	}

	log := contract.Logger()
	result := &MergeResult{Limit: limit}

	if len(primary) > 0 {
		res, err := src.ByAccession(ctx, primary, limit)
		if err != nil {
			return nil, fmt.Errorf("%s lookup failed: %w", AccessionLookup, err)
		}
		if !res.Success {
			return nil, &UpstreamError{Lookup: AccessionLookup, Status: res.StatusText}
		}
		result.PrimaryCount = res.TotalCount
		result.Reports = append(result.Reports, res.Reports...)
		log.Debug("accession lookup done", zap.Int("identifiers", len(primary)), zap.Int("total_count", res.TotalCount), zap.Int("reports", len(res.Reports)))
	}

	if len(secondary) > 0 && result.PrimaryCount < limit {
		res, err := src.ByTaxon(ctx, secondary, limit-result.PrimaryCount)
		if err != nil {
			return nil, fmt.Errorf("%s lookup failed: %w", TaxonLookup, err)
		}
		if !res.Success {
			return nil, &UpstreamError{Lookup: TaxonLookup, Status: res.StatusText}
		}
		result.SecondaryCount = res.TotalCount
		result.Reports = append(result.Reports, res.Reports...)
		log.Debug("taxon lookup done", zap.Int("identifiers", len(secondary)), zap.Int("total_count", res.TotalCount), zap.Int("reports", len(res.Reports)))
	} else if len(secondary) > 0 {
		log.Debug("taxon lookup skipped, accession results fill the cap", zap.Int("limit", limit))
	}

	return result, nil
}
