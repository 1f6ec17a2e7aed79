package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/qmoney/internal/contracts"
	"github.com/wonny/qmoney/internal/portfolio"
	"github.com/wonny/qmoney/internal/trades"
)

// closingCmd ranks trade symbols by closing price
var closingCmd = &cobra.Command{
	Use:   "closing",
	Short: "종가 기준 종목 정렬",
	Long: `Prints the trades' symbols ordered by closing price on the end date,
lowest first. Any failed fetch or a purchase date after the end date
aborts the command.

Example:
  go run ./cmd/qmoney closing --trades trades.json --end-date 2019-12-12`,
	RunE: runClosing,
}

var (
	closingTrades   string
	closingEndDate  string
	closingProvider string
)

func init() {
	rootCmd.AddCommand(closingCmd)

	closingCmd.Flags().StringVar(&closingTrades, "trades", "", "trades file (.json, .yaml)")
	closingCmd.Flags().StringVar(&closingEndDate, "end-date", "", "end date (YYYY-MM-DD)")
	closingCmd.Flags().StringVar(&closingProvider, "provider", "", "quote provider: tiingo|alphavantage (default QUOTE_PROVIDER)")
	closingCmd.MarkFlagRequired("trades")
	closingCmd.MarkFlagRequired("end-date")
}

func runClosing(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	list, err := trades.Load(closingTrades)
	if err != nil {
		return err
	}

	endDate, err := contracts.ParseDate(closingEndDate)
	if err != nil {
		return err
	}

	a, err := newApp(ctx, appOptions{provider: closingProvider})
	if err != nil {
		return err
	}
	defer a.Close()

	prices, err := portfolio.RankByClosingPrice(ctx, a.quotes, list, endDate)
	if err != nil {
		return err
	}

	printClosingPrices(cmd.OutOrStdout(), prices)
	return nil
}
