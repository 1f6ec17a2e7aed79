package portfolio

import "errors"

var (
	// ErrInvalidDateRange covers degenerate dates or prices for a single trade
	ErrInvalidDateRange = errors.New("invalid date range")
	// ErrInvalidWorkers is returned for a worker count below one
	ErrInvalidWorkers = errors.New("number of workers must be at least 1")
	// ErrBatchCancelled is returned when the batch context ends before every trade finished.
	// It wraps the context error, so errors.Is(err, context.DeadlineExceeded) also works.
	ErrBatchCancelled = errors.New("batch cancelled")
	// ErrNoData is returned by RankByClosingPrice when a symbol has no candles
	ErrNoData = errors.New("no quote data")
)
