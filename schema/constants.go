package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for caching and history.
	DatabaseBackend string

	// BuscoScale represents how BUSCO bars are scaled.
	BuscoScale string

	// StatField names a column of the comparison table.
	StatField string
)

// All output modes supported.
const (
	TextOut     OutputMode = "text" // default
	CSVOut      OutputMode = "csv"
	JSONOut     OutputMode = "json"
	MarkdownOut OutputMode = "markdown"
	HTMLOut     OutputMode = "html"
	ParquetOut  OutputMode = "parquet"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// BUSCO scaling modes.
const (
	RecordScale BuscoScale = "record" // default
	GlobalScale BuscoScale = "global"
)

// Comparison table fields, named as they appear in JSON output.
const (
	FieldAccession      StatField = "accession"
	FieldSpeciesName    StatField = "speciesName"
	FieldAssemblyType   StatField = "assemblyType"
	FieldAssemblyLevel  StatField = "assemblyLevel"
	FieldCoverage       StatField = "coverage"
	FieldGC             StatField = "gc"
	FieldContigCount    StatField = "contigCount"
	FieldContigN50      StatField = "contigN50"
	FieldContigL50      StatField = "contigL50"
	FieldScaffoldCount  StatField = "scaffoldCount"
	FieldScaffoldN50    StatField = "scaffoldN50"
	FieldScaffoldL50    StatField = "scaffoldL50"
	FieldTotalLength    StatField = "totalLength"
	FieldUngappedLength StatField = "ungappedLength"
)

// NCBI endpoints.
const (
	DefaultAPIBaseURL   = "https://api.ncbi.nlm.nih.gov/datasets/v2alpha"
	GenomePageURLPrefix = "https://www.ncbi.nlm.nih.gov/datasets/genome/"
)

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	TextOut:     {},
	CSVOut:      {},
	JSONOut:     {},
	MarkdownOut: {},
	HTMLOut:     {},
	ParquetOut:  {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidBuscoScales lists all valid BUSCO scaling modes.
var ValidBuscoScales = map[BuscoScale]struct{}{
	RecordScale: {},
	GlobalScale: {},
}

// SortableFields lists every field the comparison table can be sorted by.
var SortableFields = map[StatField]struct{}{
	FieldAccession:      {},
	FieldSpeciesName:    {},
	FieldAssemblyType:   {},
	FieldAssemblyLevel:  {},
	FieldCoverage:       {},
	FieldGC:             {},
	FieldContigCount:    {},
	FieldContigN50:      {},
	FieldContigL50:      {},
	FieldScaffoldCount:  {},
	FieldScaffoldN50:    {},
	FieldScaffoldL50:    {},
	FieldTotalLength:    {},
	FieldUngappedLength: {},
}

// HigherIsBetter and LowerIsBetter drive best-value highlighting.
var (
	HigherIsBetter = []StatField{FieldContigN50, FieldCoverage, FieldScaffoldN50}
	LowerIsBetter  = []StatField{FieldContigL50, FieldContigCount, FieldScaffoldL50, FieldScaffoldCount}
)

// GenomePageURL returns the NCBI genome page for an accession.
func GenomePageURL(accession string) string {
	return GenomePageURLPrefix + accession
}
