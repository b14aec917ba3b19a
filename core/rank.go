package core

import (
	"cmp"
	"slices"
	"strings"

	"github.com/huangsam/asmstats/schema"
)

// assemblyLevelRank orders assembly levels from most to least contiguous.
var assemblyLevelRank = map[string]int{
	"complete genome": 0,
	"chromosome":      1,
	"scaffold":        2,
	"contig":          3,
}

// SortRecords returns a copy of records ordered by keys. Absent values sort
// last in either direction and ties keep their input order.
func SortRecords(records []schema.AssemblyStatRecord, keys []schema.SortKey) []schema.AssemblyStatRecord {
	sorted := slices.Clone(records)
	if len(keys) == 0 {
		return sorted
	}
	slices.SortStableFunc(sorted, func(a, b schema.AssemblyStatRecord) int {
		for _, key := range keys {
			if c := compareField(key, a.Field(key.Field), b.Field(key.Field)); c != 0 {
				return c
			}
		}
		return 0
	})
	return sorted
}

// compareField compares two column values under one sort key.
func compareField(key schema.SortKey, a, b schema.Value) int {
	aok, bok := a.Present(), b.Present()
	switch {
	case !aok && !bok:
		return 0
	case !aok:
		return 1
	case !bok:
		return -1
	}

	var c int
	if key.Field == schema.FieldAssemblyLevel {
		c = compareLevel(a.String(), b.String())
	} else if an, ok := a.Number(); ok {
		if bn, ok := b.Number(); ok {
			c = cmp.Compare(an, bn)
		} else {
			c = -1 // numbers before text
		}
	} else if _, ok := b.Number(); ok {
		c = 1
	} else {
		c = strings.Compare(strings.ToLower(a.String()), strings.ToLower(b.String()))
	}
	if key.Desc {
		return -c
	}
	return c
}

func compareLevel(a, b string) int {
	ar, aok := assemblyLevelRank[strings.ToLower(a)]
	br, bok := assemblyLevelRank[strings.ToLower(b)]
	switch {
	case aok && bok:
		return cmp.Compare(ar, br)
	case aok:
		return -1
	case bok:
		return 1
	default:
		return strings.Compare(strings.ToLower(a), strings.ToLower(b))
	}
}

// FindBestValues picks the winning value of each highlighted column:
// the maximum for HigherIsBetter columns and the minimum for LowerIsBetter ones.
// Columns without any numeric value have no entry.
func FindBestValues(records []schema.AssemblyStatRecord) schema.BestValues {
	best := schema.BestValues{}
	for _, f := range schema.HigherIsBetter {
		collectBest(best, records, f, func(cand, cur float64) bool { return cand > cur })
	}
	for _, f := range schema.LowerIsBetter {
		collectBest(best, records, f, func(cand, cur float64) bool { return cand < cur })
	}
	return best
}

func collectBest(best schema.BestValues, records []schema.AssemblyStatRecord, f schema.StatField, better func(cand, cur float64) bool) {
	for _, rec := range records {
		n, ok := rec.Field(f).Number()
		if !ok {
			continue
		}
		if cur, seen := best[f]; !seen || better(n, cur) {
			best[f] = n
		}
	}
}
