package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/huangsam/asmstats/internal/contract"
	"github.com/huangsam/asmstats/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// buscoSegment is one stacked part of a BUSCO bar.
type buscoSegment struct {
	name  string
	glyph string
	color *color.Color
	count func(schema.BuscoCounts) *int64
}

// buscoSegments lists bar segments from left to right.
var buscoSegments = []buscoSegment{
	{"Complete (single copy)", "█", contract.SingleCopyColor, func(c schema.BuscoCounts) *int64 { return c.SingleCopy }},
	{"Complete (duplicated)", "▓", contract.DuplicatedColor, func(c schema.BuscoCounts) *int64 { return c.Duplicated }},
	{"Fragmented", "▒", contract.FragmentedColor, func(c schema.BuscoCounts) *int64 { return c.Fragmented }},
	{"Missing", "░", contract.MissingColor, func(c schema.BuscoCounts) *int64 { return c.Missing }},
}

// PrintBuscoChart outputs the BUSCO completeness breakdown, dispatching based on the output format configured.
func PrintBuscoChart(chart schema.BuscoChart, outcome schema.QueryOutcome, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, NewBuscoDocument(chart, outcome))
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeBuscoCSV(w, chart)
		}, "Wrote CSV")
	case schema.MarkdownOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			_, err := io.WriteString(w, buscoMarkdown(chart))
			return err
		}, "Wrote Markdown")
	case schema.HTMLOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeHTMLDocument(w, "BUSCO completeness", buscoMarkdown(chart))
		}, "Wrote HTML")
	case schema.ParquetOut:
		return fmt.Errorf("parquet output is not available for the BUSCO chart; use csv or json")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeBuscoBars(w, chart, outcome, GetBarWidth(cfg), duration)
		}, "Wrote chart")
	}
}

// segmentWidths sizes each segment against scaleMax so a full bar spans width cells.
// It returns nil when the bar has no usable scale.
func segmentWidths(counts schema.BuscoCounts, scaleMax *int64, width int) []int {
	if scaleMax == nil || *scaleMax <= 0 || width <= 0 || !counts.HasData() {
		return nil
	}
	widths := make([]int, len(buscoSegments))
	used := 0
	for i, seg := range buscoSegments {
		n := seg.count(counts)
		if n == nil || *n <= 0 {
			continue
		}
		cells := int(math.Floor(float64(*n)/float64(*scaleMax)*float64(width) + 0.5))
		cells = min(cells, width-used)
		widths[i] = cells
		used += cells
	}
	return widths
}

// renderBar draws one bar padded to width cells.
func renderBar(counts schema.BuscoCounts, scaleMax *int64, width int) string {
	widths := segmentWidths(counts, scaleMax, width)
	if widths == nil {
		return contract.NoDataColor.Sprint(contract.NoDataLabel)
	}
	var sb strings.Builder
	used := 0
	for i, seg := range buscoSegments {
		if widths[i] == 0 {
			continue
		}
		sb.WriteString(seg.color.Sprint(strings.Repeat(seg.glyph, widths[i])))
		used += widths[i]
	}
	sb.WriteString(strings.Repeat(" ", width-used))
	return "[" + sb.String() + "]"
}

// formatCount renders a derived count with separators, or n/a.
func formatCount(n *int64) string {
	if n == nil {
		return contract.NotAvailable
	}
	return humanize.Comma(*n)
}

// rowFooter summarizes a bar's counts, total and BUSCO version.
func rowFooter(row schema.BuscoRow) string {
	parts := []string{
		"S:" + formatCount(row.Counts.SingleCopy),
		"D:" + formatCount(row.Counts.Duplicated),
		"F:" + formatCount(row.Counts.Fragmented),
		"M:" + formatCount(row.Counts.Missing),
		"n=" + formatCount(row.Total),
	}
	if row.Version != "" {
		parts = append(parts, "BUSCO "+row.Version)
	}
	return strings.Join(parts, "  ")
}

// writeBuscoLegend prints the segment legend as a small table.
func writeBuscoLegend(w io.Writer) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Segment", "Meaning"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Header.Formatting.AutoFormat = tw.Off
		cfg.Row.Alignment.Global = tw.AlignLeft
	})
	data := make([][]string, 0, len(buscoSegments))
	for _, seg := range buscoSegments {
		data = append(data, []string{seg.color.Sprint(strings.Repeat(seg.glyph, 3)), seg.name})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// writeBuscoBars writes the human-readable stacked bar chart.
func writeBuscoBars(w io.Writer, chart schema.BuscoChart, outcome schema.QueryOutcome, width int, duration time.Duration) error {
	if err := writeBuscoLegend(w); err != nil {
		return err
	}
	for _, row := range chart.Rows {
		title := row.Accession
		if row.Lineage != "" {
			title += "  " + row.Lineage
		}
		if _, err := fmt.Fprintf(w, "\n%s\n  %s\n", title, renderBar(row.Counts, row.ScaleMax, width)); err != nil {
			return err
		}
		if row.Counts.HasData() {
			if _, err := fmt.Fprintf(w, "  %s\n", rowFooter(row)); err != nil {
				return err
			}
		}
	}
	scale := "per-record totals"
	if chart.Scale == schema.GlobalScale {
		scale = "largest total (" + formatCount(chart.AxisMax) + ")"
	}
	if _, err := fmt.Fprintf(w, "\nShowing %d of %s matching assemblies, bars scaled to %s\n",
		len(chart.Rows), humanize.Comma(int64(outcome.TotalFound)), scale); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Query completed in %v\n", duration.Round(time.Millisecond))
	return err
}

// BuscoDocument is the JSON document for the BUSCO chart.
type BuscoDocument struct {
	Cycle      uint64 `json:"cycle"`
	TotalFound int    `json:"total_found"`
	Limit      int    `json:"limit"`
	Truncated  bool   `json:"truncated"`
	Superseded bool   `json:"superseded,omitempty"`
	schema.BuscoChart
}

// NewBuscoDocument wraps a chart with the outcome it was built from.
func NewBuscoDocument(chart schema.BuscoChart, outcome schema.QueryOutcome) BuscoDocument {
	if chart.Rows == nil {
		chart.Rows = []schema.BuscoRow{}
	}
	return BuscoDocument{
		Cycle:      outcome.Cycle,
		TotalFound: outcome.TotalFound,
		Limit:      outcome.Limit,
		Truncated:  outcome.Truncated,
		Superseded: outcome.Superseded,
		BuscoChart: chart,
	}
}

func optionalInt(n *int64) string {
	if n == nil {
		return ""
	}
	return strconv.FormatInt(*n, 10)
}

// writeBuscoCSV writes the derived counts; underivable counts are empty cells.
func writeBuscoCSV(w io.Writer, chart schema.BuscoChart) error {
	header := []string{"accession", "busco_lineage", "busco_ver", "total_count",
		"single_copy", "duplicated", "fragmented", "missing", "scale_max"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, row := range chart.Rows {
			rec := []string{
				row.Accession,
				row.Lineage,
				row.Version,
				optionalInt(row.Total),
				optionalInt(row.Counts.SingleCopy),
				optionalInt(row.Counts.Duplicated),
				optionalInt(row.Counts.Fragmented),
				optionalInt(row.Counts.Missing),
				optionalInt(row.ScaleMax),
			}
			if err := cw.Write(rec); err != nil {
				return fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
		return nil
	})
}

// buscoMarkdown renders the derived counts as GFM with linked accessions.
func buscoMarkdown(chart schema.BuscoChart) string {
	table := newMarkdownTable("Accession", "Lineage", "Single Copy", "Duplicated", "Fragmented", "Missing", "Total", "Version")
	for _, row := range chart.Rows {
		if !row.Counts.HasData() {
			table.row(accessionLink(row.Accession), escapeMarkdownCell(row.Lineage),
				"_"+contract.NoDataLabel+"_", "", "", "", formatCount(row.Total), escapeMarkdownCell(row.Version))
			continue
		}
		table.row(
			accessionLink(row.Accession),
			escapeMarkdownCell(row.Lineage),
			formatCount(row.Counts.SingleCopy),
			formatCount(row.Counts.Duplicated),
			formatCount(row.Counts.Fragmented),
			formatCount(row.Counts.Missing),
			formatCount(row.Total),
			escapeMarkdownCell(row.Version),
		)
	}
	return table.String()
}
