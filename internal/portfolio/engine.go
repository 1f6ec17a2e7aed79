package portfolio

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/wonny/qmoney/internal/contracts"
	"github.com/wonny/qmoney/internal/quotes"
	"github.com/wonny/qmoney/pkg/logger"
)

// EngineConfig holds batch limits
type EngineConfig struct {
	// BatchTimeout bounds a whole batch on top of the caller's context (0 = none)
	BatchTimeout time.Duration
	// ShutdownGrace is how long a cancelled batch waits for workers before abandoning them
	ShutdownGrace time.Duration
}

// Engine computes annualized returns for a batch of trades with a fixed worker pool
// ⭐ SSOT: 수익률 배치 계산은 이 엔진에서만
type Engine struct {
	quotes quotes.Service
	cfg    EngineConfig
	logger *logger.Logger
	now    func() time.Time
}

// NewEngine creates a new Engine
func NewEngine(svc quotes.Service, cfg EngineConfig, log *logger.Logger) *Engine {
	return &Engine{
		quotes: svc,
		cfg:    cfg,
		logger: log.WithField("module", "engine"),
		now:    time.Now,
	}
}

// Result is the complete outcome of a batch
type Result struct {
	Results  []contracts.AnnualizedReturn
	Failures []contracts.TaskFailure
}

// ComputeAnnualizedReturns runs one task per trade on at most numWorkers goroutines.
// It returns either every outcome, ordered by Aggregate, or ErrBatchCancelled.
// A failing trade never affects its siblings.
func (e *Engine) ComputeAnnualizedReturns(ctx context.Context, trades []contracts.Trade, endDate time.Time, numWorkers int) (*Result, error) {
	if numWorkers < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidWorkers, numWorkers)
	}

	if e.cfg.BatchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.BatchTimeout)
		defer cancel()
	}

	endDate = contracts.TruncateDate(endDate)
	workers := numWorkers
	if workers > len(trades) {
		workers = len(trades)
	}

	startTime := time.Now()
	e.logger.WithFields(map[string]interface{}{
		"trades":   len(trades),
		"end_date": endDate.Format(contracts.DateLayout),
		"workers":  workers,
		"provider": e.quotes.Name(),
	}).Info("Starting return computation")

	// 1. Queue every task up front; workers stop pulling once ctx is done
	taskCh := make(chan returnTask, len(trades))
	for _, trade := range trades {
		taskCh <- returnTask{trade: trade, endDate: endDate, quotes: e.quotes}
	}
	close(taskCh)

	// 2. Start workers; resultCh is sized so a worker never blocks on send
	resultCh := make(chan contracts.Outcome, len(trades))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			e.worker(ctx, workerID, taskCh, resultCh)
		}(i)
	}

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	// 3. Collect
	outcomes, err := e.collect(ctx, resultCh, len(trades))
	if err != nil {
		e.logger.WithError(err).WithFields(map[string]interface{}{
			"completed": len(outcomes),
			"trades":    len(trades),
			"duration":  time.Since(startTime),
		}).Error("Return computation cancelled")
		return nil, err
	}

	results, failures := Aggregate(outcomes)

	e.logger.WithFields(map[string]interface{}{
		"success":  len(results),
		"failed":   len(failures),
		"duration": time.Since(startTime),
	}).Info("Return computation completed")

	return &Result{Results: results, Failures: failures}, nil
}

// Run computes a batch and stamps it as a Report
func (e *Engine) Run(ctx context.Context, trades []contracts.Trade, endDate time.Time, numWorkers int) (*contracts.Report, error) {
	res, err := e.ComputeAnnualizedReturns(ctx, trades, endDate, numWorkers)
	if err != nil {
		return nil, err
	}

	return &contracts.Report{
		EndDate:     contracts.TruncateDate(endDate),
		Provider:    e.quotes.Name(),
		Results:     res.Results,
		Failures:    res.Failures,
		GeneratedAt: e.now().UTC(),
	}, nil
}

// worker runs tasks until the queue is empty or ctx is done
func (e *Engine) worker(ctx context.Context, workerID int, taskCh <-chan returnTask, resultCh chan<- contracts.Outcome) {
	for task := range taskCh {
		select {
		case <-ctx.Done():
			return
		default:
		}

		outcome := task.run(ctx)
		if outcome.Failure != nil && ctx.Err() == nil {
			e.logger.WithFields(map[string]interface{}{
				"worker": workerID,
				"symbol": outcome.Failure.Symbol,
				"kind":   outcome.Failure.Kind.String(),
				"reason": outcome.Failure.Message,
			}).Warn("Trade failed")
		}

		resultCh <- outcome
	}
}

// collect drains resultCh until it is closed. If ctx ends first, the batch is
// discarded and workers get ShutdownGrace to exit.
func (e *Engine) collect(ctx context.Context, resultCh <-chan contracts.Outcome, expected int) ([]contracts.Outcome, error) {
	outcomes := make([]contracts.Outcome, 0, expected)

	for {
		select {
		case outcome, ok := <-resultCh:
			if !ok {
				// tasks that saw a cancelled ctx may have failed because of it
				if ctx.Err() != nil || len(outcomes) != expected {
					return outcomes, e.cancelled(ctx)
				}
				return outcomes, nil
			}
			outcomes = append(outcomes, outcome)

		case <-ctx.Done():
			if !e.awaitWorkers(resultCh) {
				e.logger.WithField("grace", e.cfg.ShutdownGrace).
					Warn("Workers still running after shutdown grace, abandoning them")
			}
			return outcomes, e.cancelled(ctx)
		}
	}
}

// awaitWorkers waits up to ShutdownGrace for resultCh to close
func (e *Engine) awaitWorkers(resultCh <-chan contracts.Outcome) bool {
	if e.cfg.ShutdownGrace <= 0 {
		return false
	}

	timer := time.NewTimer(e.cfg.ShutdownGrace)
	defer timer.Stop()

	for {
		select {
		case _, ok := <-resultCh:
			if !ok {
				return true
			}
		case <-timer.C:
			return false
		}
	}
}

func (e *Engine) cancelled(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrBatchCancelled, err)
	}
	return ErrBatchCancelled
}
