package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wonny/qmoney/internal/contracts"
	"github.com/wonny/qmoney/internal/portfolio"
	"github.com/wonny/qmoney/internal/reports"
	"github.com/wonny/qmoney/internal/trades"
	"github.com/wonny/qmoney/pkg/logger"
)

// ReturnsJob recomputes the configured portfolio with today as end date
// and publishes the report
type ReturnsJob struct {
	engine     *portfolio.Engine
	publisher  *reports.Publisher
	tradesFile string
	workers    int
	schedule   string
	logger     *logger.Logger
	now        func() time.Time
}

// NewReturnsJob creates a new returns job
func NewReturnsJob(
	engine *portfolio.Engine,
	publisher *reports.Publisher,
	tradesFile string,
	workers int,
	schedule string,
	log *logger.Logger,
) *ReturnsJob {
	return &ReturnsJob{
		engine:     engine,
		publisher:  publisher,
		tradesFile: tradesFile,
		workers:    workers,
		schedule:   schedule,
		logger:     log.WithField("job", "returns"),
		now:        time.Now,
	}
}

// Name returns the job name
func (j *ReturnsJob) Name() string {
	return "returns"
}

// Schedule returns the cron schedule
func (j *ReturnsJob) Schedule() string {
	return j.schedule
}

// Run executes the recompute
func (j *ReturnsJob) Run(ctx context.Context) error {
	if j.publisher == nil {
		return errors.New("returns job has no report publisher")
	}

	list, err := trades.Load(j.tradesFile)
	if err != nil {
		return fmt.Errorf("load trades: %w", err)
	}

	endDate := contracts.TruncateDate(j.now().UTC())

	report, err := j.engine.Run(ctx, list, endDate, j.workers)
	if err != nil {
		return fmt.Errorf("compute returns: %w", err)
	}

	runID, err := j.publisher.Publish(ctx, report)
	if err != nil {
		return fmt.Errorf("publish report: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"run_id":   runID,
		"trades":   len(list),
		"failures": len(report.Failures),
	}).Info("Scheduled returns computed")

	return nil
}
