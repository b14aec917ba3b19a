package cmd

import (
	"github.com/huangsam/asmstats/core"
	"github.com/huangsam/asmstats/internal/contract"
	"github.com/spf13/cobra"
)

// tableCmd compares assembly statistics side by side.
var tableCmd = &cobra.Command{
	Use:   "table [accession...]",
	Short: "Compare contiguity statistics of genome assemblies.",
	Long: `Look up assemblies by accession and/or taxon and print one row per assembly.

Accessions are fetched first; taxon matches fill the remaining --limit budget.
Columns include contig and scaffold N50/L50/count, total length, GC content and
sequencing coverage. The best value of each contiguity column is highlighted.

Examples:
  # Compare the human and mouse reference assemblies
  asmstats table GCF_000001405.40 GCF_000001635.27

  # Fill up to 50 rows with zebrafish assemblies, longest contigs first
  asmstats table --taxon "Danio rerio" --limit 50 --sort -contigN50

  # Read accessions from a file and export to CSV
  asmstats table --accession-file ids.txt --output csv --output-file stats.csv`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteStatTable(rootCtx, cfg, source, cacheManager); err != nil {
			contract.LogFatal("Cannot build assembly table", err)
		}
	},
}
