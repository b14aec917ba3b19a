package outwriter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/huangsam/asmstats/internal/contract"
	"github.com/huangsam/asmstats/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func i64(n int64) *int64 { return &n }

func fixtureChart(scale schema.BuscoScale) schema.BuscoChart {
	chart := schema.BuscoChart{
		Scale: scale,
		Rows: []schema.BuscoRow{
			{
				Accession: "GCF_000001405.40",
				Lineage:   "primates_odb10",
				Version:   "4.1.4",
				Total:     i64(1066),
				Counts: schema.BuscoCounts{
					SingleCopy: i64(1013),
					Duplicated: i64(21),
					Fragmented: i64(21),
					Missing:    i64(11),
				},
				ScaleMax: i64(1066),
			},
			{Accession: "GCA_000001635.9"},
		},
	}
	if scale == schema.GlobalScale {
		chart.AxisMax = i64(1066)
	}
	return chart
}

func TestSegmentWidths(t *testing.T) {
	tests := []struct {
		name   string
		counts schema.BuscoCounts
		scale  *int64
		width  int
		want   []int
	}{
		{
			name:   "rounded and clipped to the width",
			counts: schema.BuscoCounts{SingleCopy: i64(1013), Duplicated: i64(21), Fragmented: i64(21), Missing: i64(11)},
			scale:  i64(1066),
			width:  50,
			want:   []int{48, 1, 1, 0},
		},
		{
			name:   "shorter than a shared axis",
			counts: schema.BuscoCounts{SingleCopy: i64(400), Duplicated: i64(50), Fragmented: i64(25), Missing: i64(25)},
			scale:  i64(1000),
			width:  40,
			want:   []int{16, 2, 1, 1},
		},
		{
			name:   "missing counts take no cells",
			counts: schema.BuscoCounts{SingleCopy: i64(10)},
			scale:  i64(20),
			width:  10,
			want:   []int{5, 0, 0, 0},
		},
		{"no scale", schema.BuscoCounts{SingleCopy: i64(10)}, nil, 10, nil},
		{"zero scale", schema.BuscoCounts{SingleCopy: i64(10)}, i64(0), 10, nil},
		{"no data", schema.BuscoCounts{}, i64(10), 10, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := segmentWidths(tt.counts, tt.scale, tt.width)
			assert.Equal(t, tt.want, got)
			sum := 0
			for _, n := range got {
				sum += n
			}
			assert.LessOrEqual(t, sum, tt.width)
		})
	}
}

func TestRenderBar(t *testing.T) {
	counts := schema.BuscoCounts{SingleCopy: i64(5), Missing: i64(5)}
	bar := renderBar(counts, i64(20), 10)

	require.True(t, strings.HasPrefix(bar, "[") && strings.HasSuffix(bar, "]"))
	inner := strings.TrimSuffix(strings.TrimPrefix(bar, "["), "]")
	assert.Equal(t, 10, utf8.RuneCountInString(inner))
	assert.Equal(t, "███░░░    ", inner)

	assert.Equal(t, contract.NoDataLabel, renderBar(schema.BuscoCounts{}, i64(20), 10))
}

func TestRowFooter(t *testing.T) {
	row := fixtureChart(schema.RecordScale).Rows[0]
	assert.Equal(t, "S:1,013  D:21  F:21  M:11  n=1,066  BUSCO 4.1.4", rowFooter(row))

	row.Version = ""
	row.Counts.Missing = nil
	assert.Equal(t, "S:1,013  D:21  F:21  M:n/a  n=1,066", rowFooter(row))
}

func TestWriteBuscoBars(t *testing.T) {
	var buf bytes.Buffer
	outcome := schema.QueryOutcome{TotalFound: 2, Limit: 20}
	require.NoError(t, writeBuscoBars(&buf, fixtureChart(schema.GlobalScale), outcome, 40, 250*time.Millisecond))

	out := buf.String()
	assert.Contains(t, out, "Segment")
	assert.Contains(t, out, "Complete (single copy)")
	assert.Contains(t, out, "GCF_000001405.40  primates_odb10")
	assert.Contains(t, out, "BUSCO 4.1.4")
	assert.Contains(t, out, "GCA_000001635.9\n  "+contract.NoDataLabel)
	assert.Contains(t, out, "Showing 2 of 2 matching assemblies, bars scaled to largest total (1,066)")
	assert.Contains(t, out, "Query completed in 250ms")

	buf.Reset()
	require.NoError(t, writeBuscoBars(&buf, fixtureChart(schema.RecordScale), outcome, 40, time.Second))
	assert.Contains(t, buf.String(), "bars scaled to per-record totals")
}

func TestWriteBuscoCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeBuscoCSV(&buf, fixtureChart(schema.RecordScale)))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"accession", "busco_lineage", "busco_ver", "total_count",
		"single_copy", "duplicated", "fragmented", "missing", "scale_max"}, rows[0])
	assert.Equal(t, []string{"GCF_000001405.40", "primates_odb10", "4.1.4", "1066", "1013", "21", "21", "11", "1066"}, rows[1])
	assert.Equal(t, []string{"GCA_000001635.9", "", "", "", "", "", "", "", ""}, rows[2])
}

func TestNewBuscoDocument(t *testing.T) {
	outcome := schema.QueryOutcome{Cycle: 7, TotalFound: 2, Limit: 20}

	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, NewBuscoDocument(fixtureChart(schema.GlobalScale), outcome)))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, float64(7), decoded["cycle"])
	assert.Equal(t, "global", decoded["scale"])
	assert.Equal(t, float64(1066), decoded["axis_max"])
	rows := decoded["rows"].([]any)
	require.Len(t, rows, 2)
	counts := rows[0].(map[string]any)["counts"].(map[string]any)
	assert.Equal(t, float64(1013), counts["single_copy"])
	assert.Nil(t, rows[1].(map[string]any)["total_count"])

	empty := NewBuscoDocument(schema.BuscoChart{Scale: schema.RecordScale}, outcome)
	assert.NotNil(t, empty.Rows)
	assert.Empty(t, empty.Rows)
}

func TestBuscoMarkdown(t *testing.T) {
	md := buscoMarkdown(fixtureChart(schema.RecordScale))

	assert.Contains(t, md, "| Accession | Lineage | Single Copy |")
	assert.Contains(t, md, "| [GCF_000001405.40](https://www.ncbi.nlm.nih.gov/datasets/genome/GCF_000001405.40) | primates_odb10 | 1,013 | 21 | 21 | 11 | 1,066 | 4.1.4 |")
	assert.Contains(t, md, "_No Data_")
}

func TestPrintBuscoChartParquetUnsupported(t *testing.T) {
	cfg := &contract.Config{Output: schema.ParquetOut, OutputFile: "ignored.parquet"}
	err := PrintBuscoChart(fixtureChart(schema.RecordScale), schema.QueryOutcome{}, cfg, 0)
	assert.ErrorContains(t, err, "parquet output is not available")
}
