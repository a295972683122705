package cmd

import (
	"github.com/spf13/cobra"

	"github.com/bobmcallan/marketctx/internal/app"
)

var purgeRetentionDays int

var purgeNewsCmd = &cobra.Command{
	Use:   "purge-news",
	Short: "Delete cached news past the retention window",
	RunE:  runPurgeNews,
}

func init() {
	purgeNewsCmd.Flags().IntVar(&purgeRetentionDays, "retention-days", 0, "override news.retention_days")
}

func runPurgeNews(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	days := a.Config.News.RetentionDays
	if purgeRetentionDays > 0 {
		days = purgeRetentionDays
	}

	n, err := app.PurgeNews(cmd.Context(), a.Storage.NewsStore(), days, a.Logger)
	if err != nil {
		return err
	}
	return printJSON(map[string]int{"deleted": n})
}
