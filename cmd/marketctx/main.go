// Package main is the marketctx CLI entry point.
//
// Usage:
//
//	marketctx serve
//	marketctx sync top --limit 50
//	marketctx sync symbols AAPL MSFT.US
//	marketctx purge-news
package main

import (
	"os"

	"github.com/bobmcallan/marketctx/cmd/marketctx/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
