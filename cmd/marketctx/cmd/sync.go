package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/bobmcallan/marketctx/internal/common"
	"github.com/bobmcallan/marketctx/internal/models"
)

var (
	topExchange      string
	symbolsExchange  string
	bulkExchange     string
	syncLimit        int
	syncMinMarketCap int64
	syncFrom         string
	syncTo           string
	syncPeriod       string
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync market data from EODHD",
	Long: `One-shot syncs from EODHD into SurrealDB. Results are printed as JSON.

Examples:
  marketctx sync top --exchange us --limit 50
  marketctx sync symbols AAPL MSFT.US --from 2025-01-01
  marketctx sync bulk --exchange US AAPL.US MSFT.US`,
}

var syncTopCmd = &cobra.Command{
	Use:   "top",
	Short: "Sync the top symbols of an exchange by market cap",
	RunE:  runSyncTop,
}

var syncSymbolsCmd = &cobra.Command{
	Use:   "symbols SYMBOL...",
	Short: "Sync the daily series of explicit symbols",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSyncSymbols,
}

var syncBulkCmd = &cobra.Command{
	Use:   "bulk [SYMBOL...]",
	Short: "Merge the exchange-wide latest trading day",
	RunE:  runSyncBulk,
}

func init() {
	for _, c := range []*cobra.Command{syncTopCmd, syncSymbolsCmd} {
		c.Flags().StringVar(&syncFrom, "from", "", "start date YYYY-MM-DD")
		c.Flags().StringVar(&syncTo, "to", "", "end date YYYY-MM-DD")
		c.Flags().StringVar(&syncPeriod, "period", "d", "d (daily), w (weekly), m (monthly)")
	}
	syncTopCmd.Flags().StringVar(&topExchange, "exchange", "us", "screener exchange filter")
	syncTopCmd.Flags().IntVar(&syncLimit, "limit", 20, "number of symbols (1-200)")
	syncTopCmd.Flags().Int64Var(&syncMinMarketCap, "min-market-cap", 0, "minimum market cap, 0 for none")
	syncSymbolsCmd.Flags().StringVar(&symbolsExchange, "exchange", "", "default exchange for bare tickers")
	syncBulkCmd.Flags().StringVar(&bulkExchange, "exchange", "US", "exchange code")

	syncCmd.AddCommand(syncTopCmd)
	syncCmd.AddCommand(syncSymbolsCmd)
	syncCmd.AddCommand(syncBulkCmd)
}

func runSyncTop(cmd *cobra.Command, args []string) error {
	if syncLimit < 1 || syncLimit > 200 {
		return fmt.Errorf("--limit must be between 1 and 200")
	}
	from, to, err := parseRange()
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	req := models.SyncTopRequest{
		Exchange: topExchange,
		Limit:    syncLimit,
		From:     from,
		To:       to,
		Period:   syncPeriod,
	}
	if syncMinMarketCap > 0 {
		req.MinMarketCap = &syncMinMarketCap
	}

	result, err := a.SyncService.SyncTop(cmd.Context(), req)
	if err != nil {
		return err
	}
	return printJSON(result)
}

func runSyncSymbols(cmd *cobra.Command, args []string) error {
	from, to, err := parseRange()
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	exchange := symbolsExchange
	if exchange == "" {
		exchange = a.DefaultExchange()
	}

	result, err := a.SyncService.SyncSymbols(cmd.Context(), models.SyncSymbolsRequest{
		Symbols:         args,
		DefaultExchange: exchange,
		From:            from,
		To:              to,
		Period:          syncPeriod,
	})
	if err != nil {
		return err
	}
	return printJSON(result)
}

func runSyncBulk(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	n, err := a.SyncService.SyncBulkLastDay(cmd.Context(), bulkExchange, args)
	if err != nil {
		return err
	}
	return printJSON(map[string]int{"upserted": n})
}

func parseRange() (from, to time.Time, err error) {
	if from, err = common.ParseDate(syncFrom); err != nil {
		return
	}
	to, err = common.ParseDate(syncTo)
	return
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
