package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/huangsam/asmstats/internal/contract"
	"github.com/huangsam/asmstats/internal/parquet"
	"github.com/huangsam/asmstats/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// statColumn is one column of the comparison table.
type statColumn struct {
	header string
	field  schema.StatField
	format func(schema.Value) string
}

// statColumns lists the comparison table in display order.
var statColumns = []statColumn{
	{"Accession", schema.FieldAccession, contract.FormatText},
	{"Species", schema.FieldSpeciesName, contract.FormatText},
	{"Level", schema.FieldAssemblyLevel, contract.FormatText},
	{"Contig N50", schema.FieldContigN50, contract.FormatInteger},
	{"Contig L50", schema.FieldContigL50, contract.FormatInteger},
	{"Contig Count", schema.FieldContigCount, contract.FormatInteger},
	{"Total Length", schema.FieldTotalLength, contract.FormatInteger},
	{"GC %", schema.FieldGC, contract.FormatDecimal},
	{"Coverage", schema.FieldCoverage, formatCoverageValue},
	{"Scaffold N50", schema.FieldScaffoldN50, contract.FormatInteger},
	{"Scaffold L50", schema.FieldScaffoldL50, contract.FormatInteger},
	{"Scaffold Count", schema.FieldScaffoldCount, contract.FormatInteger},
}

// csvFields lists every record field in CSV column order.
var csvFields = []schema.StatField{
	schema.FieldAccession,
	schema.FieldSpeciesName,
	schema.FieldAssemblyType,
	schema.FieldAssemblyLevel,
	schema.FieldContigN50,
	schema.FieldContigL50,
	schema.FieldContigCount,
	schema.FieldTotalLength,
	schema.FieldUngappedLength,
	schema.FieldGC,
	schema.FieldCoverage,
	schema.FieldScaffoldN50,
	schema.FieldScaffoldL50,
	schema.FieldScaffoldCount,
}

func formatCoverageValue(v schema.Value) string {
	n, ok := v.Integer()
	if !ok {
		return contract.NotAvailable
	}
	return contract.FormatCoverage(&n)
}

// PrintStatTable outputs the comparison table, dispatching based on the output format configured.
func PrintStatTable(records []schema.AssemblyStatRecord, best schema.BestValues, outcome schema.QueryOutcome, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeStatJSON(w, records, best, outcome)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeStatCSV(w, records)
		}, "Wrote CSV")
	case schema.MarkdownOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			_, err := io.WriteString(w, statMarkdown(records, best, outcome))
			return err
		}, "Wrote Markdown")
	case schema.HTMLOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeHTMLDocument(w, "Assembly statistics", statMarkdown(records, best, outcome))
		}, "Wrote HTML")
	case schema.ParquetOut:
		if cfg.OutputFile == "" {
			return errParquetNeedsFile
		}
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return parquet.WriteRows(w, parquet.ConvertStatRecords(records))
		}, "Wrote Parquet")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeStatTable(w, records, best, outcome, cfg, duration)
		}, "Wrote table")
	}
}

// writeStatTable generates and writes the human-readable table.
func writeStatTable(w io.Writer, records []schema.AssemblyStatRecord, best schema.BestValues, outcome schema.QueryOutcome, cfg *contract.Config, duration time.Duration) error {
	table := tablewriter.NewWriter(w)

	headers := make([]string, len(statColumns))
	for i, col := range statColumns {
		headers[i] = col.header
	}
	table.Header(headers)

	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Header.Formatting.AutoFormat = tw.Off
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	data := make([][]string, 0, len(records))
	for _, r := range records {
		row := make([]string, len(statColumns))
		for i, col := range statColumns {
			v := r.Field(col.field)
			cell := col.format(v)
			if best.IsBest(col.field, v) {
				cell = contract.BestColor.Sprint(cell)
			}
			row[i] = cell
		}
		data = append(data, row)
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Showing %d of %s matching assemblies (limit %d)\n",
		len(records), humanize.Comma(int64(outcome.TotalFound)), outcome.Limit); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Query completed in %v. Cache backend: %s\n", duration.Round(time.Millisecond), cfg.CacheBackend); err != nil {
		return err
	}
	return nil
}

// writeStatCSV writes raw field values; absent values are empty cells.
func writeStatCSV(w io.Writer, records []schema.AssemblyStatRecord) error {
	header := make([]string, 0, len(csvFields)+8)
	for _, f := range csvFields {
		header = append(header, string(f))
	}
	header = append(header, "buscoLineage", "buscoVersion", "buscoComplete", "buscoSingleCopy",
		"buscoDuplicated", "buscoFragmented", "buscoMissing", "buscoTotal")

	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, r := range records {
			row := make([]string, 0, len(header))
			for _, f := range csvFields {
				row = append(row, r.Field(f).String())
			}
			b := r.Busco
			row = append(row, b.Lineage, b.Version, b.Complete.String(), b.SingleCopy.String(),
				b.Duplicated.String(), b.Fragmented.String(), b.Missing.String(), b.TotalCount.String())
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
		return nil
	})
}

// AssemblyEntry adds rank, link and highlighted columns to a record.
type AssemblyEntry struct {
	Rank int    `json:"rank"`
	URL  string `json:"url"`
	schema.AssemblyStatRecord
	Best []schema.StatField `json:"best,omitempty"`
}

// StatTableDocument is the JSON document for the comparison table.
type StatTableDocument struct {
	Cycle      uint64          `json:"cycle"`
	TotalFound int             `json:"total_found"`
	Limit      int             `json:"limit"`
	Truncated  bool            `json:"truncated"`
	Superseded bool            `json:"superseded,omitempty"`
	Assemblies []AssemblyEntry `json:"assemblies"`
}

// NewStatTableDocument builds the JSON document for the comparison table.
func NewStatTableDocument(records []schema.AssemblyStatRecord, best schema.BestValues, outcome schema.QueryOutcome) StatTableDocument {
	out := StatTableDocument{
		Cycle:      outcome.Cycle,
		TotalFound: outcome.TotalFound,
		Limit:      outcome.Limit,
		Truncated:  outcome.Truncated,
		Superseded: outcome.Superseded,
		Assemblies: make([]AssemblyEntry, len(records)),
	}
	for i, r := range records {
		var bestFields []schema.StatField
		for _, col := range statColumns {
			if best.IsBest(col.field, r.Field(col.field)) {
				bestFields = append(bestFields, col.field)
			}
		}
		out.Assemblies[i] = AssemblyEntry{
			Rank:               i + 1,
			URL:                schema.GenomePageURL(r.Accession),
			AssemblyStatRecord: r,
			Best:               bestFields,
		}
	}
	return out
}

func writeStatJSON(w io.Writer, records []schema.AssemblyStatRecord, best schema.BestValues, outcome schema.QueryOutcome) error {
	return writeJSON(w, NewStatTableDocument(records, best, outcome))
}

// statMarkdown renders the comparison table as GFM with linked accessions.
func statMarkdown(records []schema.AssemblyStatRecord, best schema.BestValues, outcome schema.QueryOutcome) string {
	headers := make([]string, len(statColumns))
	for i, col := range statColumns {
		headers[i] = col.header
	}
	table := newMarkdownTable(headers...)

	for _, r := range records {
		row := make([]string, len(statColumns))
		for i, col := range statColumns {
			v := r.Field(col.field)
			cell := escapeMarkdownCell(col.format(v))
			if col.field == schema.FieldAccession {
				cell = accessionLink(r.Accession)
			}
			if best.IsBest(col.field, v) {
				cell = bold(cell)
			}
			row[i] = cell
		}
		table.row(row...)
	}

	summary := "_Showing " + strconv.Itoa(len(records)) + " of " + humanize.Comma(int64(outcome.TotalFound)) + " matching assemblies._\n"
	return table.String() + "\n" + summary
}
