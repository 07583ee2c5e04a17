package task

import (
	"context"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func TestInstrumentCountsOutcomes(t *testing.T) {
	boom := errors.New("boom")
	failing := Instrument(asynq.HandlerFunc(func(context.Context, *asynq.Task) error { return boom }))
	passing := Instrument(asynq.HandlerFunc(func(context.Context, *asynq.Task) error { return nil }))

	failed := testutil.ToFloat64(tasksProcessed.WithLabelValues("test:instrument", "failed"))
	succeeded := testutil.ToFloat64(tasksProcessed.WithLabelValues("test:instrument", "succeeded"))

	task := asynq.NewTask("test:instrument", nil)
	require.ErrorIs(t, failing.ProcessTask(context.Background(), task), boom)
	require.NoError(t, passing.ProcessTask(context.Background(), task))
	require.NoError(t, passing.ProcessTask(context.Background(), task))

	require.Equal(t, failed+1, testutil.ToFloat64(tasksProcessed.WithLabelValues("test:instrument", "failed")))
	require.Equal(t, succeeded+2, testutil.ToFloat64(tasksProcessed.WithLabelValues("test:instrument", "succeeded")))
}
