package reports

import (
	"context"
	"fmt"

	"github.com/wonny/qmoney/internal/contracts"
	"github.com/wonny/qmoney/pkg/logger"
)

// RunRecorder persists a finished report as run history (history.Repository)
type RunRecorder interface {
	SaveRun(ctx context.Context, report *contracts.Report) (int64, error)
}

// Publisher fans a finished report out to run history and the latest snapshot.
// Either sink may be absent.
type Publisher struct {
	store   *Store
	history RunRecorder
	logger  *logger.Logger
}

// NewPublisher creates a publisher; pass nil for a sink that is not configured
func NewPublisher(store *Store, history RunRecorder, log *logger.Logger) *Publisher {
	return &Publisher{
		store:   store,
		history: history,
		logger:  log.WithField("module", "publisher"),
	}
}

// Publish stores the report. runID is 0 when history is not configured.
func (p *Publisher) Publish(ctx context.Context, report *contracts.Report) (int64, error) {
	var runID int64

	if p.history != nil {
		id, err := p.history.SaveRun(ctx, report)
		if err != nil {
			return 0, fmt.Errorf("save run history: %w", err)
		}
		runID = id
	}

	if p.store != nil {
		if err := p.store.SaveLatest(ctx, report); err != nil {
			return runID, err
		}
	}

	p.logger.WithFields(map[string]interface{}{
		"run_id":   runID,
		"results":  len(report.Results),
		"failures": len(report.Failures),
		"end_date": report.EndDate.Format(contracts.DateLayout),
	}).Info("Report published")

	return runID, nil
}
