package schema

// BuscoSummary holds the gene-completeness proportions of one assembly.
type BuscoSummary struct {
	Lineage    string `json:"busco_lineage"`
	Version    string `json:"busco_ver"`
	Complete   Value  `json:"complete"`
	SingleCopy Value  `json:"single_copy"`
	Duplicated Value  `json:"duplicated"`
	Fragmented Value  `json:"fragmented"`
	Missing    Value  `json:"missing"`
	TotalCount Value  `json:"total_count"`
}

// EmptyBusco is the placeholder used when an assembly carries no BUSCO annotation.
func EmptyBusco() BuscoSummary {
	return BuscoSummary{
		Complete:   NoData,
		SingleCopy: NoData,
		Duplicated: NoData,
		Fragmented: NoData,
		Missing:    NoData,
		TotalCount: NoData,
	}
}

// IsEmpty reports whether the summary is the no-annotation placeholder.
func (b BuscoSummary) IsEmpty() bool {
	if b.Lineage != "" || b.Version != "" {
		return false
	}
	for _, v := range []Value{b.Complete, b.SingleCopy, b.Duplicated, b.Fragmented, b.Missing, b.TotalCount} {
		if v.Present() {
			return false
		}
	}
	return true
}

// AssemblyStatRecord is the flat per-assembly row shared by every renderer.
type AssemblyStatRecord struct {
	Accession      string       `json:"accession"`
	SpeciesName    Value        `json:"speciesName"`
	AssemblyType   Value        `json:"assemblyType"`
	AssemblyLevel  Value        `json:"assemblyLevel"`
	Coverage       *int64       `json:"coverage"`
	GC             Value        `json:"gc"`
	ContigCount    Value        `json:"contigCount"`
	ContigN50      Value        `json:"contigN50"`
	ContigL50      Value        `json:"contigL50"`
	ScaffoldCount  Value        `json:"scaffoldCount"`
	ScaffoldN50    Value        `json:"scaffoldN50"`
	ScaffoldL50    Value        `json:"scaffoldL50"`
	TotalLength    Value        `json:"totalLength"`
	UngappedLength Value        `json:"ungappedLength"`
	Busco          BuscoSummary `json:"busco"`
}

// StatSet maps accession to record while remembering first-seen order.
type StatSet struct {
	keys    []string
	records map[string]AssemblyStatRecord
}

// NewStatSet returns an empty StatSet.
func NewStatSet() *StatSet {
	return &StatSet{records: make(map[string]AssemblyStatRecord)}
}

// Put stores the record. A repeated accession replaces the whole earlier record
// but keeps its original position.
func (s *StatSet) Put(rec AssemblyStatRecord) {
	if _, ok := s.records[rec.Accession]; !ok {
		s.keys = append(s.keys, rec.Accession)
	}
	s.records[rec.Accession] = rec
}

// Get returns the record for an accession.
func (s *StatSet) Get(accession string) (AssemblyStatRecord, bool) {
	rec, ok := s.records[accession]
	return rec, ok
}

// Len returns the number of distinct accessions.
func (s *StatSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.keys)
}

// Keys returns accessions in first-seen order.
func (s *StatSet) Keys() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.keys))
	copy(out, s.keys)
	return out
}

// Records returns the records in first-seen order.
func (s *StatSet) Records() []AssemblyStatRecord {
	if s == nil {
		return nil
	}
	out := make([]AssemblyStatRecord, 0, len(s.keys))
	for _, k := range s.keys {
		out = append(out, s.records[k])
	}
	return out
}

// BuscoCounts are the derived gene counts for one assembly.
// Each count is nil when it could not be derived.
type BuscoCounts struct {
	SingleCopy *int64 `json:"single_copy"`
	Duplicated *int64 `json:"duplicated"`
	Fragmented *int64 `json:"fragmented"`
	Missing    *int64 `json:"missing"`
}

// HasData reports whether any count was derived.
func (c BuscoCounts) HasData() bool {
	return c.SingleCopy != nil || c.Duplicated != nil || c.Fragmented != nil || c.Missing != nil
}

// BuscoRow is one bar of the completeness chart.
type BuscoRow struct {
	Accession string      `json:"accession"`
	Lineage   string      `json:"busco_lineage"`
	Version   string      `json:"busco_ver"`
	Total     *int64      `json:"total_count"`
	Counts    BuscoCounts `json:"counts"`
	ScaleMax  *int64      `json:"scale_max"`
}

// BuscoChart is the completeness chart across all assemblies of a query cycle.
type BuscoChart struct {
	Scale   BuscoScale `json:"scale"`
	AxisMax *int64     `json:"axis_max"`
	Rows    []BuscoRow `json:"rows"`
}

// QueryOutcome is the committed result of one query cycle.
type QueryOutcome struct {
	Cycle          uint64   `json:"cycle"`
	Stats          *StatSet `json:"-"`
	PrimaryCount   int      `json:"primary_count"`
	SecondaryCount int      `json:"secondary_count"`
	TotalFound     int      `json:"total_found"`
	Limit          int      `json:"limit"`
	Truncated      bool     `json:"truncated"`
	// Superseded marks an outcome whose cycle lost to a newer one and was not committed.
	Superseded bool `json:"superseded,omitempty"`
}

// SortKey orders the comparison table by one field.
type SortKey struct {
	Field StatField `json:"field"`
	Desc  bool      `json:"desc"`
}

// DefaultSortKeys orders by assembly level, then species name.
var DefaultSortKeys = []SortKey{
	{Field: FieldAssemblyLevel},
	{Field: FieldSpeciesName},
}

// BestValues holds the winning value of each highlighted column.
type BestValues map[StatField]float64

// IsBest reports whether v is the winning value of the column.
func (b BestValues) IsBest(f StatField, v Value) bool {
	best, ok := b[f]
	if !ok {
		return false
	}
	n, ok := v.Number()
	return ok && n == best
}
