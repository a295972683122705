// Package cmd holds the marketctx CLI commands.
package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/bobmcallan/marketctx/internal/app"
)

var (
	cfgFile string
	envFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "marketctx",
	Short: "Market data sync and context service",
	Long: `marketctx syncs EODHD market data into SurrealDB and renders it as
context blocks for agents over REST and MCP.

Commands:
    serve         REST API, MCP endpoint and background scheduler
    sync          One-shot top, symbols and bulk syncs
    purge-news    Delete cached news past the retention window
    version       Print version information
`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initEnv()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $MARKETCTX_CONFIG, then marketctx.toml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before config")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(purgeNewsCmd)
	rootCmd.AddCommand(versionCmd)
}

// initEnv loads the dotenv file. A missing file is not an error.
func initEnv() error {
	if envFile == "" {
		return nil
	}
	if err := godotenv.Load(envFile); err != nil {
		if os.IsNotExist(err) {
			if verbose {
				fmt.Fprintf(os.Stderr, "Warning: %s not found, using environment variables\n", envFile)
			}
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", envFile, err)
	}
	return nil
}

// newApp builds the App from the --config flag.
func newApp() (*app.App, error) {
	a, err := app.NewApp(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize app: %w", err)
	}
	if verbose {
		a.Logger.Debug().Msg("Verbose output enabled")
	}
	return a, nil
}
