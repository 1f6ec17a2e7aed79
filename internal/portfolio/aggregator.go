package portfolio

import (
	"math"
	"sort"

	"github.com/wonny/qmoney/internal/contracts"
)

// Aggregate splits outcomes into results and failures and orders both.
// Results: annualized return descending, then symbol ascending; NaN returns go last.
// Failures: symbol ascending, then kind, then message.
// The order depends only on the outcome values, never on arrival order.
func Aggregate(outcomes []contracts.Outcome) ([]contracts.AnnualizedReturn, []contracts.TaskFailure) {
	results := make([]contracts.AnnualizedReturn, 0, len(outcomes))
	failures := make([]contracts.TaskFailure, 0)

	for _, o := range outcomes {
		switch {
		case o.Result != nil:
			results = append(results, *o.Result)
		case o.Failure != nil:
			failures = append(failures, *o.Failure)
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return returnLess(results[i], results[j])
	})

	sort.SliceStable(failures, func(i, j int) bool {
		a, b := failures[i], failures[j]
		if a.Symbol != b.Symbol {
			return a.Symbol < b.Symbol
		}
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		return a.Message < b.Message
	})

	return results, failures
}

func returnLess(a, b contracts.AnnualizedReturn) bool {
	aNaN, bNaN := math.IsNaN(a.AnnualizedReturn), math.IsNaN(b.AnnualizedReturn)
	if aNaN != bNaN {
		return bNaN
	}
	if !aNaN && a.AnnualizedReturn != b.AnnualizedReturn {
		return a.AnnualizedReturn > b.AnnualizedReturn
	}
	if a.Symbol != b.Symbol {
		return a.Symbol < b.Symbol
	}
	// duplicate symbols: keep the order total
	return a.TotalReturn > b.TotalReturn
}
