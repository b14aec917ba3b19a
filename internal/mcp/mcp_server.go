// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/asmstats/core"
	"github.com/huangsam/asmstats/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// supersededNote explains the shared-session rule to tool callers.
const supersededNote = "Calls share one session: when a newer call starts before this one finishes, " +
	"this call still returns its results but marks them with \"superseded\": true."

// NewMCPServer initializes and configures the asmstats MCP server without starting it.
// Every tool call runs a query cycle through one shared session.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, src contract.ReportSource, mgr contract.CacheManager, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"asmstats Assembly Statistics Server",
		version,
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		src:     src,
		mgr:     mgr,
		session: core.NewSession(),
	}

	// --- 1. Tool: get_assembly_stats ---
	s.AddTool(mcp.NewTool("get_assembly_stats",
		mcp.WithDescription("Look up genome assemblies in NCBI Datasets and compare their contiguity statistics. "+supersededNote),
		mcp.WithString("accessions", mcp.Description("Newline-separated assembly accessions (e.g. GCF_000001405.40).")),
		mcp.WithString("taxa", mcp.Description("Newline-separated taxon names or NCBI taxonomy IDs.")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of assemblies to fetch across both lookups.")),
		mcp.WithString("sort", mcp.Description("Comma-separated sort keys, prefix '-' for descending (e.g. '-contigN50,speciesName').")),
	), h.handleGetAssemblyStats)

	// --- 2. Tool: get_busco_breakdown ---
	s.AddTool(mcp.NewTool("get_busco_breakdown",
		mcp.WithDescription("Derive BUSCO gene-completeness counts for genome assemblies. "+supersededNote),
		mcp.WithString("accessions", mcp.Description("Newline-separated assembly accessions.")),
		mcp.WithString("taxa", mcp.Description("Newline-separated taxon names or NCBI taxonomy IDs.")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of assemblies to fetch across both lookups.")),
		mcp.WithString("scale", mcp.Description("Bar scaling: per-record totals or the largest total. Defaults to 'record'."), mcp.Enum("record", "global")),
	), h.handleGetBuscoBreakdown)

	return s
}

// StartMCPServer starts the asmstats MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, src contract.ReportSource, mgr contract.CacheManager, version string) error {
	s := NewMCPServer(baseCfg, src, mgr, version)
	return server.ServeStdio(s)
}
