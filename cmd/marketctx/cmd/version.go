package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bobmcallan/marketctx/internal/common"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		common.LoadVersionFromFile()
		fmt.Fprintln(cmd.OutOrStdout(), common.CurrentBuild())
	},
}
