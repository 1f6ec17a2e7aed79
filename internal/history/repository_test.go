package history

import (
	"context"
	"math"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/qmoney/internal/contracts"
	"github.com/wonny/qmoney/pkg/config"
	"github.com/wonny/qmoney/pkg/database"
)

func TestNullableFloat(t *testing.T) {
	assert.Nil(t, nullableFloat(math.NaN()))
	assert.Nil(t, nullableFloat(math.Inf(1)))
	require.NotNil(t, nullableFloat(0.25))
	assert.Equal(t, 0.25, *nullableFloat(0.25))

	assert.True(t, math.IsNaN(floatOrNaN(nil)))
}

func TestRepository_SaveAndGetRun(t *testing.T) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	db, err := database.New(ctx, &config.Config{Database: config.DatabaseConfig{URL: url}})
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Migrate(ctx, Schema...))

	repo := NewRepository(db.Pool)
	report := &contracts.Report{
		EndDate:  contracts.Date(2020, 1, 1),
		Provider: "tiingo",
		Results: []contracts.AnnualizedReturn{
			{Symbol: "MSFT", AnnualizedReturn: 0.5, TotalReturn: 0.5},
			{Symbol: "AAPL", AnnualizedReturn: 0.3, TotalReturn: 0.3},
		},
		Failures: []contracts.TaskFailure{
			{Symbol: "XYZ", Kind: contracts.FailureServiceError, Message: "404"},
		},
		GeneratedAt: time.Now().UTC().Truncate(time.Microsecond),
	}

	id, err := repo.SaveRun(ctx, report)
	require.NoError(t, err)
	assert.Positive(t, id)

	got, err := repo.GetRun(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, report.Results, got.Results)
	assert.Equal(t, report.Failures, got.Failures)
	assert.Equal(t, "tiingo", got.Provider)

	runs, err := repo.ListRuns(ctx, 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, id, runs[0].ID)
	assert.Equal(t, 2, runs[0].ResultCount)
	assert.Equal(t, 1, runs[0].FailureCount)

	_, err = repo.GetRun(ctx, -1)
	assert.ErrorIs(t, err, ErrRunNotFound)
}
