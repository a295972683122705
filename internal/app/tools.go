package app

import "github.com/mark3labs/mcp-go/mcp"

func createGetStockContextTool() mcp.Tool {
	return mcp.NewTool("get_stock_context",
		mcp.WithDescription("Get recent daily prices and returns for a stock as a [STOCK_DATA] context block. Reads stored data only; run a sync first."),
		mcp.WithString("symbol",
			mcp.Required(),
			mcp.Description("Ticker, with or without exchange suffix (e.g. 'AAPL', 'AAPL.US', '$msft')"),
		),
	)
}

func createGetUniverseTopTool() mcp.Tool {
	return mcp.NewTool("get_universe_top",
		mcp.WithDescription("Get the largest stored universe entries by market capitalization as a [UNIVERSE_TOP] context block."),
		mcp.WithNumber("limit",
			mcp.Description("Number of entries (1-200, default 20)"),
		),
	)
}

func createGetStockNewsTool() mcp.Tool {
	return mcp.NewTool("get_stock_news",
		mcp.WithDescription("Get recent news for a stock as a [STOCK_NEWS] context block. Served from cache when fresh, otherwise fetched from EODHD."),
		mcp.WithString("symbol",
			mcp.Required(),
			mcp.Description("Ticker, with or without exchange suffix"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Number of stories (1-20, default 5)"),
		),
		mcp.WithString("from_date",
			mcp.Description("Start date YYYY-MM-DD. Setting a range bypasses the cache."),
		),
		mcp.WithString("to_date",
			mcp.Description("End date YYYY-MM-DD. Setting a range bypasses the cache."),
		),
	)
}

func createGetAutoContextTool() mcp.Tool {
	return mcp.NewTool("get_auto_context",
		mcp.WithDescription("Detect tickers or a 'top N' request in free text and return the matching context blocks."),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("User message to scan"),
		),
		mcp.WithString("default_exchange",
			mcp.Description("Exchange suffix for bare tickers (defaults to the configured exchange)"),
		),
	)
}
