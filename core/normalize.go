package core

import (
	"github.com/huangsam/asmstats/schema"
)

// NormalizeReports flattens reports into a StatSet keyed by accession.
// A later report with a repeated accession replaces the earlier one.
func NormalizeReports(reports []schema.RawReport) *schema.StatSet {
	set := schema.NewStatSet()
	for _, r := range reports {
		set.Put(NormalizeReport(r))
	}
	return set
}

// NormalizeReport extracts the flat statistics of one report. Missing paths
// become NoData; only coverage is parsed.
func NormalizeReport(r schema.RawReport) schema.AssemblyStatRecord {
	return schema.AssemblyStatRecord{
		Accession:      r.Path("accession").String(),
		SpeciesName:    r.Path("organism", "organism_name"),
		AssemblyType:   r.Path("assembly_info", "assembly_type"),
		AssemblyLevel:  r.Path("assembly_info", "assembly_level"),
		Coverage:       ParseCoverage(r.Path("assembly_stats", "genome_coverage")),
		GC:             r.Path("assembly_stats", "gc_percent"),
		ContigCount:    r.Path("assembly_stats", "number_of_contigs"),
		ContigN50:      r.Path("assembly_stats", "contig_n50"),
		ContigL50:      r.Path("assembly_stats", "contig_l50"),
		ScaffoldCount:  r.Path("assembly_stats", "number_of_scaffolds"),
		ScaffoldN50:    r.Path("assembly_stats", "scaffold_n50"),
		ScaffoldL50:    r.Path("assembly_stats", "scaffold_l50"),
		TotalLength:    r.Path("assembly_stats", "total_sequence_length"),
		UngappedLength: r.Path("assembly_stats", "total_ungapped_length"),
		Busco:          extractBusco(r),
	}
}

// ParseCoverage reads the leading integer of a coverage value such as "35.7x".
// It returns nil when coverage is absent or has no leading digits.
func ParseCoverage(v schema.Value) *int64 {
	n, ok := v.Integer()
	if !ok {
		return nil
	}
	return &n
}

// extractBusco returns the BUSCO annotation as supplied, or the empty placeholder.
func extractBusco(r schema.RawReport) schema.BuscoSummary {
	obj, ok := r.Object("annotation_info", "busco")
	if !ok {
		return schema.EmptyBusco()
	}
	return schema.BuscoSummary{
		Lineage:    schema.ValueOf(obj["busco_lineage"]).String(),
		Version:    schema.ValueOf(obj["busco_ver"]).String(),
		Complete:   schema.ValueOf(obj["complete"]),
		SingleCopy: schema.ValueOf(obj["single_copy"]),
		Duplicated: schema.ValueOf(obj["duplicated"]),
		Fragmented: schema.ValueOf(obj["fragmented"]),
		Missing:    schema.ValueOf(obj["missing"]),
		TotalCount: schema.ValueOf(obj["total_count"]),
	}
}
