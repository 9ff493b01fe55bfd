package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ecerdem/stokbot/internal/intent"
	"github.com/ecerdem/stokbot/internal/stock"
	"github.com/ecerdem/stokbot/internal/storage"
)

// MCPDeps holds dependencies for the MCP tool server.
type MCPDeps struct {
	Engine intent.Engine
}

// NewMCPServer creates an MCP server exposing the inventory analytics as
// tools, so external assistants can query stock state directly.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"stokbot",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions("stokbot — hotel inventory analytics: critical stock, category listings, and item lookups."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("critical_stock",
			mcp.WithDescription("List items whose current stock is below the critical level, with per-item status."),
		),
		mcpCriticalStock(deps),
	)

	s.AddTool(
		mcp.NewTool("stock_overview",
			mcp.WithDescription("Overall inventory statistics: totals, category distribution, top units."),
		),
		mcpStockOverview(deps),
	)

	s.AddTool(
		mcp.NewTool("item_lookup",
			mcp.WithDescription("Look up a single inventory item by its numeric code."),
			mcp.WithNumber("code", mcp.Description("Item code"), mcp.Required()),
		),
		mcpItemLookup(deps),
	)

	s.AddTool(
		mcp.NewTool("category_items",
			mcp.WithDescription("List items in one of the fixed inventory categories."),
			mcp.WithString("category", mcp.Description("Category label, e.g. \"Et Ürünleri\""), mcp.Required()),
		),
		mcpCategoryItems(deps),
	)

	return s
}

func mcpCriticalStock(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		items, err := deps.Engine.CriticalItems(ctx)
		if err != nil {
			return mcpError(fmt.Sprintf("critical stock fetch failed: %v", err)), nil
		}

		type criticalRow struct {
			stock.CriticalItem
			Status stock.Status `json:"durum"`
		}
		rows := make([]criticalRow, len(items))
		for i, it := range items {
			rows[i] = criticalRow{
				CriticalItem: it,
				Status:       stock.StockStatus(it.CurrentStock, it.CriticalLevel),
			}
		}

		b, err := json.Marshal(rows)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal results: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpStockOverview(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		stats, err := deps.Engine.OverallStats(ctx)
		if err != nil {
			return mcpError(fmt.Sprintf("stats fetch failed: %v", err)), nil
		}

		b, err := json.Marshal(stats)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal stats: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpItemLookup(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		code, err := req.RequireInt("code")
		if err != nil {
			return mcpError("code is required"), nil
		}

		item, found, err := deps.Engine.ItemByCode(ctx, code)
		if err != nil {
			return mcpError(fmt.Sprintf("item lookup failed: %v", err)), nil
		}
		if !found {
			return mcpText(fmt.Sprintf("item %d not found", code)), nil
		}

		b, err := json.Marshal(item)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal item: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpCategoryItems(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		category, err := req.RequireString("category")
		if err != nil {
			return mcpError("category is required"), nil
		}

		matched := ""
		for _, c := range storage.Categories {
			if strings.EqualFold(c, category) {
				matched = c
				break
			}
		}
		if matched == "" {
			return mcpError(fmt.Sprintf("unknown category %q; valid: %s", category, strings.Join(storage.Categories, ", "))), nil
		}

		items, err := deps.Engine.ItemsByCategory(ctx, matched)
		if err != nil {
			return mcpError(fmt.Sprintf("category fetch failed: %v", err)), nil
		}

		b, err := json.Marshal(items)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal items: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
