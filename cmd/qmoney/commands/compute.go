package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/qmoney/internal/contracts"
	"github.com/wonny/qmoney/internal/trades"
)

// computeCmd represents the compute command
var computeCmd = &cobra.Command{
	Use:   "compute",
	Short: "연환산 수익률 계산",
	Long: `Computes the annualized return of every trade in a trades file against
one end date and prints them best first.

Trades that fail (no data, provider error, bad date range) are listed
separately; they never stop the batch. Ctrl+C or --timeout cancels the
whole batch and nothing is printed.

Example:
  go run ./cmd/qmoney compute --trades trades.json --end-date 2020-01-01
  go run ./cmd/qmoney compute --trades trades.json --end-date 2020-01-01 --provider alphavantage --workers 8
  go run ./cmd/qmoney compute --trades trades.json --end-date 2020-01-01 --save`,
	RunE: runCompute,
}

var (
	computeTrades   string
	computeEndDate  string
	computeProvider string
	computeWorkers  int
	computeTimeout  time.Duration
	computeSave     bool
	computeJSON     bool
)

func init() {
	rootCmd.AddCommand(computeCmd)

	computeCmd.Flags().StringVar(&computeTrades, "trades", "", "trades file (.json, .yaml)")
	computeCmd.Flags().StringVar(&computeEndDate, "end-date", "", "end date (YYYY-MM-DD)")
	computeCmd.Flags().StringVar(&computeProvider, "provider", "", "quote provider: tiingo|alphavantage (default QUOTE_PROVIDER)")
	computeCmd.Flags().IntVar(&computeWorkers, "workers", 0, "concurrent workers (default ENGINE_WORKERS)")
	computeCmd.Flags().DurationVar(&computeTimeout, "timeout", 0, "batch timeout (default ENGINE_BATCH_TIMEOUT)")
	computeCmd.Flags().BoolVar(&computeSave, "save", false, "store run history and latest snapshot")
	computeCmd.Flags().BoolVar(&computeJSON, "json", false, "print the report as JSON")
	computeCmd.MarkFlagRequired("trades")
	computeCmd.MarkFlagRequired("end-date")
}

func runCompute(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	list, err := trades.Load(computeTrades)
	if err != nil {
		return err
	}

	endDate, err := contracts.ParseDate(computeEndDate)
	if err != nil {
		return err
	}

	a, err := newApp(ctx, appOptions{
		provider:     computeProvider,
		batchTimeout: computeTimeout,
		persistence:  computeSave,
	})
	if err != nil {
		return err
	}
	defer a.Close()

	workers := computeWorkers
	if workers == 0 {
		workers = a.cfg.Engine.Workers
	}

	report, err := a.engine.Run(ctx, list, endDate, workers)
	if err != nil {
		return fmt.Errorf("compute returns: %w", err)
	}

	out := cmd.OutOrStdout()
	if computeJSON {
		if err := printJSON(out, report); err != nil {
			return err
		}
	} else {
		printReport(out, report)
	}

	if computeSave {
		runID, err := a.publisher.Publish(ctx, report)
		if err != nil {
			return err
		}
		if !computeJSON {
			fmt.Fprintf(out, "✅ Saved run #%d\n", runID)
		}
	}

	return nil
}
