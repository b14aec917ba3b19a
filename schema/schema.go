// Package schema has the models shared by every part of asmstats.
package schema

// Field returns the value of a table column for this record.
// Coverage is exposed as a Value so callers can treat every column alike.
func (r AssemblyStatRecord) Field(f StatField) Value {
	switch f {
	case FieldAccession:
		return ValueOf(r.Accession)
	case FieldSpeciesName:
		return r.SpeciesName
	case FieldAssemblyType:
		return r.AssemblyType
	case FieldAssemblyLevel:
		return r.AssemblyLevel
	case FieldCoverage:
		if r.Coverage == nil {
			return NoData
		}
		return ValueOf(*r.Coverage)
	case FieldGC:
		return r.GC
	case FieldContigCount:
		return r.ContigCount
	case FieldContigN50:
		return r.ContigN50
	case FieldContigL50:
		return r.ContigL50
	case FieldScaffoldCount:
		return r.ScaffoldCount
	case FieldScaffoldN50:
		return r.ScaffoldN50
	case FieldScaffoldL50:
		return r.ScaffoldL50
	case FieldTotalLength:
		return r.TotalLength
	case FieldUngappedLength:
		return r.UngappedLength
	default:
		return NoData
	}
}
