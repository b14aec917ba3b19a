package core

import (
	"encoding/json"
	"testing"

	"github.com/huangsam/asmstats/schema"
	"github.com/stretchr/testify/assert"
)

func accessions(records []schema.AssemblyStatRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Accession
	}
	return out
}

func rankFixture() []schema.AssemblyStatRecord {
	cov := int64(30)
	return []schema.AssemblyStatRecord{
		{Accession: "A", SpeciesName: schema.ValueOf("Mus musculus"), AssemblyLevel: schema.ValueOf("Contig"), ContigN50: num("500"), ContigL50: num("40")},
		{Accession: "B", SpeciesName: schema.ValueOf("homo sapiens"), AssemblyLevel: schema.ValueOf("Chromosome"), ContigN50: num("9000"), ContigL50: num("12"), Coverage: &cov},
		{Accession: "C", SpeciesName: schema.ValueOf("Danio rerio"), AssemblyLevel: schema.ValueOf("Complete Genome")},
		{Accession: "D", SpeciesName: schema.ValueOf("Gallus gallus"), AssemblyLevel: schema.ValueOf("Chromosome"), ContigN50: num("9000"), ContigL50: num("20")},
	}
}

func TestSortRecords(t *testing.T) {
	records := rankFixture()

	tests := []struct {
		name string
		keys []schema.SortKey
		want []string
	}{
		{"default order", schema.DefaultSortKeys, []string{"C", "D", "B", "A"}},
		{"numeric ascending, absent last", []schema.SortKey{{Field: schema.FieldContigN50}}, []string{"A", "B", "D", "C"}},
		{"numeric descending, absent last", []schema.SortKey{{Field: schema.FieldContigN50, Desc: true}}, []string{"B", "D", "A", "C"}},
		{"tie broken by second key", []schema.SortKey{{Field: schema.FieldContigN50, Desc: true}, {Field: schema.FieldContigL50, Desc: true}}, []string{"D", "B", "A", "C"}},
		{"case-insensitive text", []schema.SortKey{{Field: schema.FieldSpeciesName}}, []string{"C", "D", "B", "A"}},
		{"no keys keeps input order", nil, []string{"A", "B", "C", "D"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, accessions(SortRecords(records, tt.keys)))
		})
	}

	// The input slice is left untouched.
	assert.Equal(t, []string{"A", "B", "C", "D"}, accessions(records))
}

func TestFindBestValues(t *testing.T) {
	best := FindBestValues(rankFixture())

	assert.Equal(t, 9000.0, best[schema.FieldContigN50])
	assert.Equal(t, 12.0, best[schema.FieldContigL50])
	assert.Equal(t, 30.0, best[schema.FieldCoverage])
	_, ok := best[schema.FieldScaffoldN50]
	assert.False(t, ok, "columns without numbers have no best value")

	// Ties highlight every record holding the winning value.
	assert.True(t, best.IsBest(schema.FieldContigN50, schema.ValueOf(json.Number("9000"))))
	assert.False(t, best.IsBest(schema.FieldContigN50, num("500")))
	assert.False(t, best.IsBest(schema.FieldGC, num("41")))
}

func TestFindBestValuesEmpty(t *testing.T) {
	assert.Empty(t, FindBestValues(nil))
}
