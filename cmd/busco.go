package cmd

import (
	"github.com/huangsam/asmstats/core"
	"github.com/huangsam/asmstats/internal/contract"
	"github.com/spf13/cobra"
)

// buscoCmd charts BUSCO completeness per assembly.
var buscoCmd = &cobra.Command{
	Use:   "busco [accession...]",
	Short: "Chart BUSCO gene completeness of genome assemblies.",
	Long: `Derive BUSCO gene counts from the reported proportions and draw one stacked bar per assembly.

Segments are complete single-copy, complete duplicated, fragmented and missing.
With --busco-scale record each bar spans its own total; with global every bar is
drawn against the largest total in the result.

Examples:
  # BUSCO breakdown for two primates
  asmstats busco GCF_000001405.40 GCF_028858775.2

  # Compare all fish assemblies on a shared axis
  asmstats busco --taxon Actinopteri --busco-scale global

  # Export derived counts as JSON
  asmstats busco --taxon 9606 --output json`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteBuscoChart(rootCtx, cfg, source, cacheManager); err != nil {
			contract.LogFatal("Cannot build BUSCO chart", err)
		}
	},
}
