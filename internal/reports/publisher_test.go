package reports

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/qmoney/internal/contracts"
	"github.com/wonny/qmoney/pkg/logger"
	"github.com/wonny/qmoney/pkg/redis"
)

type fakeRecorder struct {
	saved []*contracts.Report
	err   error
}

func (f *fakeRecorder) SaveRun(ctx context.Context, report *contracts.Report) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.saved = append(f.saved, report)
	return int64(len(f.saved)), nil
}

func TestPublisher_Publish(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	report := sampleReport()
	data, _ := json.Marshal(report)
	mock.ExpectSet("qmoney:report:latest", data, SnapshotTTL).SetVal("OK")

	recorder := &fakeRecorder{}
	p := NewPublisher(NewStore(redis.Wrap(rdb)), recorder, logger.Nop())

	runID, err := p.Publish(context.Background(), report)
	require.NoError(t, err)
	assert.Equal(t, int64(1), runID)
	assert.Len(t, recorder.saved, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPublisher_HistoryFailureSkipsSnapshot(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	p := NewPublisher(NewStore(redis.Wrap(rdb)), &fakeRecorder{err: errors.New("db down")}, logger.Nop())

	_, err := p.Publish(context.Background(), sampleReport())
	assert.Error(t, err)
	// no redis call was expected
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPublisher_NoSinks(t *testing.T) {
	p := NewPublisher(nil, nil, logger.Nop())

	runID, err := p.Publish(context.Background(), sampleReport())
	require.NoError(t, err)
	assert.Zero(t, runID)
}
