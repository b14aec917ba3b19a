package core

import (
	"math"

	"github.com/huangsam/asmstats/schema"
)

// DeriveBusco converts BUSCO proportions into gene counts, rounding half up.
// Without a numeric total every count stays underived. The single-copy share
// falls back to the complete share when single_copy is missing.
func DeriveBusco(b schema.BuscoSummary) schema.BuscoCounts {
	total, ok := b.TotalCount.Number()
	if !ok {
		return schema.BuscoCounts{}
	}
	single := b.SingleCopy
	if !single.Present() {
		single = b.Complete
	}
	return schema.BuscoCounts{
		SingleCopy: scaledCount(single, total),
		Duplicated: scaledCount(b.Duplicated, total),
		Fragmented: scaledCount(b.Fragmented, total),
		Missing:    scaledCount(b.Missing, total),
	}
}

// BuscoTotal returns the numeric total count of a summary, if it has one.
func BuscoTotal(b schema.BuscoSummary) *int64 {
	total, ok := b.TotalCount.Number()
	if !ok {
		return nil
	}
	n := roundHalfUp(total)
	return &n
}

// BuscoAxisMax returns the largest numeric total across the set, or nil when none has one.
func BuscoAxisMax(set *schema.StatSet) *int64 {
	var best *int64
	for _, rec := range set.Records() {
		total := BuscoTotal(rec.Busco)
		if total == nil {
			continue
		}
		if best == nil || *total > *best {
			best = total
		}
	}
	return best
}

// BuildBuscoChart lays out one bar per record in set order.
// RecordScale sizes each bar by its own total; GlobalScale sizes every bar by the axis maximum.
func BuildBuscoChart(set *schema.StatSet, scale schema.BuscoScale) schema.BuscoChart {
	if scale == "" {
		scale = schema.RecordScale
	}
	axisMax := BuscoAxisMax(set)
	chart := schema.BuscoChart{Scale: scale, AxisMax: axisMax}
	for _, rec := range set.Records() {
		row := schema.BuscoRow{
			Accession: rec.Accession,
			Lineage:   rec.Busco.Lineage,
			Version:   rec.Busco.Version,
			Total:     BuscoTotal(rec.Busco),
			Counts:    DeriveBusco(rec.Busco),
		}
		if scale == schema.GlobalScale {
			row.ScaleMax = axisMax
		} else {
			row.ScaleMax = row.Total
		}
		chart.Rows = append(chart.Rows, row)
	}
	return chart
}

// scaledCount multiplies a proportion by the total, or returns nil for a non-numeric proportion.
func scaledCount(proportion schema.Value, total float64) *int64 {
	p, ok := proportion.Number()
	if !ok {
		return nil
	}
	n := roundHalfUp(p * total)
	return &n
}

func roundHalfUp(x float64) int64 {
	return int64(math.Floor(x + 0.5))
}
