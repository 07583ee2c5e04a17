package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"eventreward/pkg/taskname"
)

type enqueuerMock struct {
	EnqueueFn func(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

func (m *enqueuerMock) Enqueue(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	return m.EnqueueFn(ctx, task, opts...)
}

func TestScheduler_Enqueue(t *testing.T) {
	var types []string
	s := &Scheduler{
		interval: time.Minute,
		enqueuer: &enqueuerMock{EnqueueFn: func(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
			types = append(types, task.Type())
			return &asynq.TaskInfo{ID: "task-1"}, nil
		}},
	}

	s.enqueue(context.Background())
	require.Equal(t, []string{taskname.EventExpire}, types)
}

func TestScheduler_EnqueueSwallowsErrors(t *testing.T) {
	calls := 0
	s := &Scheduler{
		interval: time.Minute,
		enqueuer: &enqueuerMock{EnqueueFn: func(context.Context, *asynq.Task, ...asynq.Option) (*asynq.TaskInfo, error) {
			calls++
			if calls == 1 {
				return nil, asynq.ErrDuplicateTask
			}
			return nil, errors.New("redis down")
		}},
	}

	require.NotPanics(t, func() {
		s.enqueue(context.Background())
		s.enqueue(context.Background())
	})
	require.Equal(t, 2, calls)
}

func TestScheduler_RunStopsOnCancel(t *testing.T) {
	enqueued := make(chan struct{}, 1)
	s := &Scheduler{
		interval: time.Hour,
		enqueuer: &enqueuerMock{EnqueueFn: func(context.Context, *asynq.Task, ...asynq.Option) (*asynq.TaskInfo, error) {
			select {
			case enqueued <- struct{}{}:
			default:
			}
			return &asynq.TaskInfo{ID: "task-1"}, nil
		}},
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.run(ctx)
		close(done)
	}()

	<-enqueued
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}
