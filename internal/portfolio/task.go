package portfolio

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/wonny/qmoney/internal/contracts"
	"github.com/wonny/qmoney/internal/quotes"
)

// returnTask computes the outcome of one trade
type returnTask struct {
	trade   contracts.Trade
	endDate time.Time
	quotes  quotes.Service
}

// run always yields exactly one outcome; errors and panics become TaskFailure values
func (t returnTask) run(ctx context.Context) (outcome contracts.Outcome) {
	symbol := t.trade.Symbol

	defer func() {
		if r := recover(); r != nil {
			outcome = contracts.Failed(symbol, contracts.FailureServiceError, fmt.Sprintf("panic: %v", r))
		}
	}()

	if err := t.trade.Validate(); err != nil {
		return contracts.Failed(symbol, contracts.FailureInvalidDateRange, err.Error())
	}

	purchaseDate := contracts.TruncateDate(t.trade.PurchaseDate)
	if t.endDate.Before(purchaseDate) {
		return contracts.Failed(symbol, contracts.FailureInvalidDateRange, fmt.Sprintf(
			"end date %s is before purchase date %s",
			t.endDate.Format(contracts.DateLayout), purchaseDate.Format(contracts.DateLayout)))
	}

	candles, err := t.quotes.GetQuote(ctx, symbol, purchaseDate, t.endDate)
	if err != nil {
		return contracts.Failed(symbol, contracts.FailureServiceError, serviceMessage(t.quotes.Name(), symbol, err))
	}
	if len(candles) == 0 {
		return contracts.Failed(symbol, contracts.FailureNoData, fmt.Sprintf(
			"no candles between %s and %s",
			purchaseDate.Format(contracts.DateLayout), t.endDate.Format(contracts.DateLayout)))
	}

	sorted := make([]contracts.Candle, len(candles))
	copy(sorted, candles)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	buyPrice := sorted[0].Open
	sellPrice := sorted[len(sorted)-1].Close

	// 음수 가격은 계산 전에 차단 (math.Pow 정의역)
	if buyPrice <= 0 || sellPrice < 0 {
		return contracts.Failed(symbol, contracts.FailureInvalidDateRange, fmt.Sprintf(
			"prices out of domain: buy=%g sell=%g", buyPrice, sellPrice))
	}

	result, err := CalculateAnnualizedReturn(symbol, purchaseDate, t.endDate, buyPrice, sellPrice)
	if err != nil {
		return contracts.Failed(symbol, contracts.FailureInvalidDateRange, err.Error())
	}

	return contracts.Succeeded(result)
}

// serviceMessage avoids repeating the provider prefix when err is already a ServiceError
func serviceMessage(provider, symbol string, err error) string {
	var svcErr *quotes.ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.Error()
	}
	return (&quotes.ServiceError{Provider: provider, Symbol: symbol, Err: err}).Error()
}
