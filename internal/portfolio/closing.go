package portfolio

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/wonny/qmoney/internal/contracts"
	"github.com/wonny/qmoney/internal/quotes"
)

// ClosingPrice is a symbol's close on the last candle at or before the end date
type ClosingPrice struct {
	Symbol string    `json:"symbol"`
	Date   time.Time `json:"date"`
	Close  float64   `json:"close"`
}

// RankByClosingPrice orders the trades' symbols by closing price ascending, ties by symbol.
// Unlike the engine it is all-or-nothing: any bad date range, fetch error or
// empty series aborts the ranking.
func RankByClosingPrice(ctx context.Context, svc quotes.Service, trades []contracts.Trade, endDate time.Time) ([]ClosingPrice, error) {
	endDate = contracts.TruncateDate(endDate)
	prices := make([]ClosingPrice, 0, len(trades))

	for _, trade := range trades {
		if err := trade.Validate(); err != nil {
			return nil, err
		}

		purchaseDate := contracts.TruncateDate(trade.PurchaseDate)
		if purchaseDate.After(endDate) {
			return nil, fmt.Errorf("%s: %w: purchase date %s is after end date %s", trade.Symbol, ErrInvalidDateRange,
				purchaseDate.Format(contracts.DateLayout), endDate.Format(contracts.DateLayout))
		}

		candles, err := svc.GetQuote(ctx, trade.Symbol, purchaseDate, endDate)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", trade.Symbol, err)
		}

		last, ok := latestCandle(candles)
		if !ok {
			return nil, fmt.Errorf("%s: %w", trade.Symbol, ErrNoData)
		}

		prices = append(prices, ClosingPrice{Symbol: trade.Symbol, Date: last.Date, Close: last.Close})
	}

	sort.SliceStable(prices, func(i, j int) bool {
		if prices[i].Close != prices[j].Close {
			return prices[i].Close < prices[j].Close
		}
		return prices[i].Symbol < prices[j].Symbol
	})

	return prices, nil
}

func latestCandle(candles []contracts.Candle) (contracts.Candle, bool) {
	if len(candles) == 0 {
		return contracts.Candle{}, false
	}

	last := candles[0]
	for _, c := range candles[1:] {
		if c.Date.After(last.Date) {
			last = c
		}
	}
	return last, true
}
