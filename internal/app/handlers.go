package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/marketctx/internal/common"
	"github.com/bobmcallan/marketctx/internal/interfaces"
	"github.com/bobmcallan/marketctx/internal/models"
	"github.com/bobmcallan/marketctx/internal/services/marketctx"
)

// Tool argument defaults and bounds
const (
	defaultUniverseLimit = 20
	maxUniverseLimit     = 200
	defaultToolNewsLimit = 5
	maxToolNewsLimit     = 20
	toolNewsCacheHours   = 24
	toolNewsRetention    = 30
)

// toolSymbol accepts cashtag input ("$msft") from agents.
func toolSymbol(raw, exchange string) string {
	return common.NormalizeSymbol(strings.TrimPrefix(strings.TrimSpace(raw), "$"), exchange)
}

// handleGetStockContext implements the get_stock_context tool
func handleGetStockContext(svc interfaces.ContextService, exchange string, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		symbol := toolSymbol(request.GetString("symbol", ""), exchange)
		if symbol == "" {
			return textResult("No symbol provided."), nil
		}

		text, err := svc.PriceContext(ctx, symbol, marketctx.DefaultLookbackDays)
		if err != nil {
			logger.Warn().Err(err).Str("symbol", symbol).Msg("get_stock_context failed")
			return errorResult(fmt.Sprintf("[STOCK_DATA] Stock data unavailable for %s.", symbol)), nil
		}
		return textResult(text), nil
	}
}

// handleGetUniverseTop implements the get_universe_top tool
func handleGetUniverseTop(svc interfaces.ContextService, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		limit := common.ClampInt(request.GetInt("limit", defaultUniverseLimit), 1, maxUniverseLimit)

		text, err := svc.UniverseTopContext(ctx, limit)
		if err != nil {
			logger.Warn().Err(err).Int("limit", limit).Msg("get_universe_top failed")
			return errorResult("[UNIVERSE_TOP] Universe data unavailable."), nil
		}
		return textResult(text), nil
	}
}

// handleGetStockNews implements the get_stock_news tool
func handleGetStockNews(newsSvc interfaces.NewsService, ctxSvc interfaces.ContextService, exchange string, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		symbol := toolSymbol(request.GetString("symbol", ""), exchange)
		if symbol == "" {
			return textResult("No symbol provided."), nil
		}

		from, err := common.ParseDate(request.GetString("from_date", ""))
		if err != nil {
			return errorResult(err.Error()), nil
		}
		to, err := common.ParseDate(request.GetString("to_date", ""))
		if err != nil {
			return errorResult(err.Error()), nil
		}

		items, err := newsSvc.GetNews(ctx, models.NewsRequest{
			Symbol:          symbol,
			Limit:           common.ClampInt(request.GetInt("limit", defaultToolNewsLimit), 1, maxToolNewsLimit),
			From:            from,
			To:              to,
			CacheHours:      toolNewsCacheHours,
			RetentionDays:   toolNewsRetention,
			DefaultExchange: exchange,
		})
		if err != nil {
			logger.Warn().Err(err).Str("symbol", symbol).Msg("get_stock_news failed")
			if common.IsUpstream(err) {
				return textResult(fmt.Sprintf("[STOCK_NEWS] News unavailable for %s. Error: %v", symbol, err)), nil
			}
			return textResult(fmt.Sprintf("[STOCK_NEWS] News unavailable for %s.", symbol)), nil
		}

		return textResult(ctxSvc.NewsContext(symbol, items)), nil
	}
}

// handleGetAutoContext implements the get_auto_context tool
func handleGetAutoContext(svc interfaces.ContextService, exchange string, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text, err := request.RequireString("text")
		if err != nil {
			return errorResult("Error: text parameter is required"), nil
		}
		defaultExchange := request.GetString("default_exchange", "")
		if strings.TrimSpace(defaultExchange) == "" {
			defaultExchange = exchange
		}

		out, err := svc.AutoContext(ctx, text, defaultExchange)
		if err != nil {
			logger.Warn().Err(err).Msg("get_auto_context failed")
			return errorResult("Market context unavailable."), nil
		}
		if strings.TrimSpace(out) == "" {
			return textResult("No market context detected."), nil
		}
		return textResult(out), nil
	}
}

// textResult creates a successful text result
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

// errorResult creates an error result
func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(message),
		},
		IsError: true,
	}
}
