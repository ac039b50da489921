// tiercards-mcp exposes the card snapshot to MCP clients over stdio.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/use-agent/tiercards/cache"
	"github.com/use-agent/tiercards/config"
	"github.com/use-agent/tiercards/models"
	"github.com/use-agent/tiercards/report"
)

func main() {
	cfg := config.Load()
	cc := cache.New(cfg.Output.SnapshotPath)

	s := server.NewMCPServer(
		"tiercards",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	listCardsTool := mcp.NewTool("list_cards",
		mcp.WithDescription("List cards from the tier-list snapshot in snapshot order (grouped by category, best tier and score first). Returns a JSON array."),
		mcp.WithString("category",
			mcp.Description("Only cards from this category, e.g. 'Корпорации' or 'CEO'"),
		),
		mcp.WithString("tier",
			mcp.Description("Only cards of this tier"),
			mcp.Enum("S", "A", "B", "C", "D", "F", "unknown"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of cards to return (default: all)"),
		),
	)
	s.AddTool(listCardsTool, handleListCards(cc))

	cardStatsTool := mcp.NewTool("card_stats",
		mcp.WithDescription("Summarize the snapshot: cards per tier, cards per category and the top cards by score, as Markdown tables."),
		mcp.WithNumber("top",
			mcp.Description(fmt.Sprintf("Number of top cards to list (default: %d)", cfg.Output.TopN)),
		),
	)
	s.AddTool(cardStatsTool, handleCardStats(cc, cfg.Output.TopN))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func handleListCards(cc *cache.Cache) server.ToolHandlerFunc {
	return func(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		q := models.CardsQuery{
			Category: request.GetString("category", ""),
			Tier:     request.GetString("tier", ""),
			Limit:    request.GetInt("limit", 0),
		}
		if q.Limit < 0 {
			return mcp.NewToolResultError("limit must not be negative"), nil
		}
		if q.Tier != "" && !strings.EqualFold(q.Tier, "unknown") {
			if _, ok := models.ParseTier(q.Tier); !ok {
				return mcp.NewToolResultError(fmt.Sprintf("unknown tier %q", q.Tier)), nil
			}
		}

		records, err := cc.Records()
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		data, err := json.MarshalIndent(q.Filter(records), "", "  ")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to encode cards: %v", err)), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	}
}

func handleCardStats(cc *cache.Cache, defaultTop int) server.ToolHandlerFunc {
	return func(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		top := request.GetInt("top", defaultTop)
		if top < 0 {
			return mcp.NewToolResultError("top must not be negative"), nil
		}

		records, err := cc.Records()
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "Snapshot: %s (%d cards)\n\n", cc.Path(), len(records))
		if err := report.Render(&sb, report.Summarize(records, top), report.Markdown); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to render stats: %v", err)), nil
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}
