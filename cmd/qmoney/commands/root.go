package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "qmoney",
	Short: "qmoney - 포트폴리오 연환산 수익률 계산기",
	Long: `qmoney CLI

Computes annualized returns for a portfolio of trades against a common end
date, using Tiingo or Alpha Vantage daily prices.

Usage:
  go run ./cmd/qmoney [command]

Examples:
  go run ./cmd/qmoney compute --trades trades.json --end-date 2020-01-01
  go run ./cmd/qmoney closing --trades trades.json --end-date 2020-01-01
  go run ./cmd/qmoney symbols --trades trades.json
  go run ./cmd/qmoney api
  go run ./cmd/qmoney schedule start`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}
