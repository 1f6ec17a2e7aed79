package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"text/tabwriter"

	"github.com/wonny/qmoney/internal/contracts"
	"github.com/wonny/qmoney/internal/portfolio"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

const (
	doubleSeparator = "═══════════════════════════════════════════════════════════"
	singleSeparator = "───────────────────────────────────────────────────────────"
)

// printHeader prints a titled box header with key/value lines
func printHeader(w io.Writer, title string, kv [][2]string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, doubleSeparator)
	fmt.Fprintf(w, "  %s\n", title)
	fmt.Fprintln(w, singleSeparator)
	for _, pair := range kv {
		fmt.Fprintf(w, "  %-10s: %s\n", pair[0], pair[1])
	}
	fmt.Fprintln(w, singleSeparator)
}

// formatPercent renders a ratio as a percentage, "n/a" for NaN or Inf
func formatPercent(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	return fmt.Sprintf("%.2f%%", v*100)
}

// printReport prints results then failures as aligned tables
func printReport(w io.Writer, report *contracts.Report) {
	printHeader(w, "Annualized Returns", [][2]string{
		{"End Date", report.EndDate.Format(contracts.DateLayout)},
		{"Provider", report.Provider},
		{"Trades", fmt.Sprintf("%d (%d ok, %d failed)", report.TradeCount(), len(report.Results), len(report.Failures))},
	})

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tSYMBOL\tANNUALIZED\tTOTAL")
	for i, r := range report.Results {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i+1, r.Symbol, formatPercent(r.AnnualizedReturn), formatPercent(r.TotalReturn))
	}
	tw.Flush()

	if len(report.Failures) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Failures:")
		tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, f := range report.Failures {
			fmt.Fprintf(tw, "   • %s\t%s\t%s\n", f.Symbol, f.Kind, f.Message)
		}
		tw.Flush()
	}
	fmt.Fprintln(w, doubleSeparator)
}

// printClosingPrices prints the closing-price ranking
func printClosingPrices(w io.Writer, prices []portfolio.ClosingPrice) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tSYMBOL\tDATE\tCLOSE")
	for i, p := range prices {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%.2f\n", i+1, p.Symbol, p.Date.Format(contracts.DateLayout), p.Close)
	}
	tw.Flush()
}

// printJSON writes v as indented JSON
func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
