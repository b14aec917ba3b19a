package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/huangsam/asmstats/core"
	"github.com/huangsam/asmstats/internal/contract"
	"github.com/huangsam/asmstats/internal/outwriter"
	"github.com/huangsam/asmstats/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	src     contract.ReportSource
	mgr     contract.CacheManager
	session *core.Session
}

// queryConfig applies the query arguments shared by every tool to a copy of the base config.
func (h *toolHandler) queryConfig(request mcp.CallToolRequest) (*contract.Config, error) {
	cfg := h.baseCfg.WithQuery(request.GetString("accessions", ""), request.GetString("taxa", ""))
	if l := request.GetInt("limit", 0); l != 0 {
		if l < 1 || l > contract.MaxResultLimit {
			return nil, fmt.Errorf("limit must be between 1 and %d", contract.MaxResultLimit)
		}
		cfg.ResultLimit = l
	}
	if cfg.ResultLimit <= 0 {
		cfg.ResultLimit = contract.DefaultResultLimit
	}
	return cfg, nil
}

// runContext shares the session across tool calls and keeps stderr quiet.
func (h *toolHandler) runContext(ctx context.Context) context.Context {
	return core.WithSession(core.WithSuppressHeader(ctx), h.session)
}

func (h *toolHandler) handleGetAssemblyStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.queryConfig(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid query parameters: %v", err)), nil
	}
	if s := request.GetString("sort", ""); s != "" {
		keys, err := contract.ParseSortKeys(s)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid query parameters: %v", err)), nil
		}
		cfg.SortKeys = keys
	}
	cfg.Highlight = true

	records, best, outcome, err := core.GetStatTableResults(h.runContext(ctx), cfg, h.src, h.mgr)
	if err != nil && !errors.Is(err, core.ErrStaleCycle) {
		return mcp.NewToolResultError(fmt.Sprintf("lookup failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(outwriter.NewStatTableDocument(records, best, outcome), "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetBuscoBreakdown(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.queryConfig(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid query parameters: %v", err)), nil
	}
	if s := request.GetString("scale", ""); s != "" {
		scale := schema.BuscoScale(s)
		if _, ok := schema.ValidBuscoScales[scale]; !ok {
			return mcp.NewToolResultError(fmt.Sprintf("invalid query parameters: unknown scale %q", s)), nil
		}
		cfg.BuscoScale = scale
	}

	chart, outcome, err := core.GetBuscoChartResults(h.runContext(ctx), cfg, h.src, h.mgr)
	if err != nil && !errors.Is(err, core.ErrStaleCycle) {
		return mcp.NewToolResultError(fmt.Sprintf("lookup failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(outwriter.NewBuscoDocument(chart, outcome), "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
