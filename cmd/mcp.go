package cmd

import (
	"github.com/huangsam/asmstats/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the asmstats MCP server",
	Long: `Launch an MCP server on stdio that lets AI agents look up genome assemblies.

Tools:
  get_assembly_stats  - contiguity comparison table as JSON
  get_busco_breakdown - derived BUSCO counts as JSON

Flags such as --api-key, --cache-backend and --history-backend apply to every tool call.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// No query is required up front; each tool call supplies its own.
		return sharedSetup(rootCtx, cmd, args)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, source, cacheManager, version)
	},
}
