package portfolio

import (
	"context"
	"sync"
	"time"

	"github.com/wonny/qmoney/internal/contracts"
)

// fakeQuotes serves canned candles per symbol and counts calls
type fakeQuotes struct {
	mu      sync.Mutex
	candles map[string][]contracts.Candle
	errs    map[string]error
	panics  map[string]bool
	calls   map[string]int

	// delay blocks each call; honourCtx makes the block end early on cancellation
	delay     time.Duration
	honourCtx bool
}

func newFakeQuotes() *fakeQuotes {
	return &fakeQuotes{
		candles:   make(map[string][]contracts.Candle),
		errs:      make(map[string]error),
		panics:    make(map[string]bool),
		calls:     make(map[string]int),
		honourCtx: true,
	}
}

func (f *fakeQuotes) Name() string { return "fake" }

func (f *fakeQuotes) GetQuote(ctx context.Context, symbol string, from, to time.Time) ([]contracts.Candle, error) {
	f.mu.Lock()
	f.calls[symbol]++
	candles, err, shouldPanic := f.candles[symbol], f.errs[symbol], f.panics[symbol]
	f.mu.Unlock()

	if f.delay > 0 {
		if f.honourCtx {
			select {
			case <-time.After(f.delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		} else {
			time.Sleep(f.delay)
		}
	}

	if shouldPanic {
		panic("provider exploded")
	}
	if err != nil {
		return nil, err
	}
	return candles, nil
}

func (f *fakeQuotes) callCount(symbol string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[symbol]
}

func (f *fakeQuotes) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.calls {
		total += n
	}
	return total
}

// withSeries registers a two-candle series buying at buy and selling at sell
func (f *fakeQuotes) withSeries(symbol string, from, to time.Time, buy, sell float64) *fakeQuotes {
	f.candles[symbol] = []contracts.Candle{
		{Date: from, Open: buy, Close: buy, High: buy, Low: buy},
		{Date: to, Open: sell, Close: sell, High: sell, Low: sell},
	}
	return f
}
