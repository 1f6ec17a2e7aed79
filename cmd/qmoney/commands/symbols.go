package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/qmoney/internal/trades"
)

// symbolsCmd lists the symbols of a trades file
var symbolsCmd = &cobra.Command{
	Use:   "symbols",
	Short: "거래 파일의 종목 목록",
	Long: `Prints the symbols of a trades file in file order. No quotes are fetched.

Example:
  go run ./cmd/qmoney symbols --trades trades.json`,
	RunE: runSymbols,
}

var symbolsTrades string

func init() {
	rootCmd.AddCommand(symbolsCmd)

	symbolsCmd.Flags().StringVar(&symbolsTrades, "trades", "", "trades file (.json, .yaml)")
	symbolsCmd.MarkFlagRequired("trades")
}

func runSymbols(cmd *cobra.Command, args []string) error {
	list, err := trades.Load(symbolsTrades)
	if err != nil {
		return err
	}

	for _, symbol := range trades.Symbols(list) {
		fmt.Fprintln(cmd.OutOrStdout(), symbol)
	}
	return nil
}
