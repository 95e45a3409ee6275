package task

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFuncTask(t *testing.T) {
	called := false
	task := NewFuncTask(TypeQuiz, func(ctx context.Context) error {
		called = true
		return nil
	})

	assert.Equal(t, TypeQuiz, task.Type())
	assert.NotEqual(t, task.ID(), NewFuncTask(TypeQuiz, nil).ID())
	require.NoError(t, task.Execute(context.Background()))
	assert.True(t, called)
}

func TestTaskQueue(t *testing.T) {
	q := NewTaskQueue(2, setupTestLogger())
	noop := func(context.Context) error { return nil }

	require.NoError(t, q.Enqueue(NewFuncTask("a", noop)))
	require.NoError(t, q.Enqueue(NewFuncTask("b", noop)))
	assert.Equal(t, 2, q.Len())

	err := q.Enqueue(NewFuncTask("c", noop))
	assert.ErrorIs(t, err, ErrQueueFull)

	q.Close()
	q.Close()
	assert.ErrorIs(t, q.Enqueue(NewFuncTask("d", noop)), ErrQueueClosed)

	var types []string
	for task := range q.GetChannel() {
		types = append(types, task.Type())
	}
	assert.Equal(t, []string{"a", "b"}, types)
}

func TestWorkerPool_ExecutesTasks(t *testing.T) {
	ch := make(chan Task, 10)
	pool := NewWorkerPool(ch, WorkerPoolConfig{WorkerCount: 3}, setupTestLogger())

	var mu sync.Mutex
	var failed []error
	pool.SetErrorHandler(func(task Task, err error) {
		mu.Lock()
		defer mu.Unlock()
		failed = append(failed, err)
	})
	pool.Start()

	var count atomic.Int32
	for i := 0; i < 5; i++ {
		ch <- NewFuncTask("ok", func(context.Context) error {
			count.Add(1)
			return nil
		})
	}
	ch <- NewFuncTask("fail", func(context.Context) error { return errors.New("boom") })
	ch <- NewFuncTask("panic", func(context.Context) error { panic("bad task") })
	close(ch)
	pool.Stop()

	assert.Equal(t, int32(5), count.Load())
	require.Len(t, failed, 2)
	assert.Contains(t, failed[0].Error()+failed[1].Error(), "boom")
	assert.Contains(t, failed[0].Error()+failed[1].Error(), "task panicked")
}

func TestWorkerPool_DefaultsWorkerCount(t *testing.T) {
	pool := NewWorkerPool(make(chan Task), WorkerPoolConfig{WorkerCount: -2}, setupTestLogger())
	assert.Equal(t, 1, pool.workerCount)
}

func TestWorkerPool_TaskTimeout(t *testing.T) {
	ch := make(chan Task, 1)
	pool := NewWorkerPool(ch, WorkerPoolConfig{WorkerCount: 1, TaskTimeout: 10 * time.Millisecond}, setupTestLogger())
	pool.Start()

	errCh := make(chan error, 1)
	ch <- NewFuncTask("slow", func(ctx context.Context) error {
		<-ctx.Done()
		errCh <- ctx.Err()
		return nil
	})
	close(ch)

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	case <-time.After(time.Second):
		t.Fatal("task context was not cancelled by timeout")
	}
	pool.Stop()
}

func TestTaskRunner(t *testing.T) {
	t.Run("rejects before start", func(t *testing.T) {
		r, err := NewTaskRunner(DefaultTaskRunnerConfig(), setupTestLogger())
		require.NoError(t, err)
		err = r.Submit(context.Background(), NewFuncTask("x", func(context.Context) error { return nil }))
		assert.ErrorIs(t, err, ErrRunnerNotStarted)
	})

	t.Run("runs submitted tasks", func(t *testing.T) {
		r, err := NewTaskRunner(TaskRunnerConfig{WorkerCount: 2, QueueSize: 10}, setupTestLogger())
		require.NoError(t, err)
		require.NoError(t, r.Start())

		var wg sync.WaitGroup
		var count atomic.Int32
		for i := 0; i < 4; i++ {
			wg.Add(1)
			require.NoError(t, r.Submit(context.Background(), NewFuncTask("x", func(context.Context) error {
				defer wg.Done()
				count.Add(1)
				return nil
			})))
		}
		wg.Wait()
		r.Stop()
		assert.Equal(t, int32(4), count.Load())
	})

	t.Run("full queue reported", func(t *testing.T) {
		r, err := NewTaskRunner(TaskRunnerConfig{WorkerCount: 1, QueueSize: 1}, setupTestLogger())
		require.NoError(t, err)
		require.NoError(t, r.Start())
		defer r.Stop()

		release := make(chan struct{})
		running := make(chan struct{})
		block := NewFuncTask("block", func(context.Context) error {
			close(running)
			<-release
			return nil
		})
		require.NoError(t, r.Submit(context.Background(), block))
		<-running
		require.NoError(t, r.Submit(context.Background(), NewFuncTask("queued", func(context.Context) error { return nil })))

		err = r.Submit(context.Background(), NewFuncTask("overflow", func(context.Context) error { return nil }))
		assert.ErrorIs(t, err, ErrQueueFull)
		close(release)
	})

	t.Run("stop drains queued tasks with cancelled context", func(t *testing.T) {
		r, err := NewTaskRunner(TaskRunnerConfig{WorkerCount: 1, QueueSize: 5}, setupTestLogger())
		require.NoError(t, err)
		require.NoError(t, r.Start())

		var cancelled atomic.Int32
		for i := 0; i < 3; i++ {
			require.NoError(t, r.Submit(context.Background(), NewFuncTask("x", func(ctx context.Context) error {
				if ctx.Err() != nil {
					cancelled.Add(1)
				}
				return nil
			})))
		}
		r.Stop()
		r.Stop()
		assert.ErrorIs(t, r.Submit(context.Background(), NewFuncTask("late", nil)), ErrQueueClosed)
		assert.LessOrEqual(t, cancelled.Load(), int32(3))
	})

	t.Run("nil logger", func(t *testing.T) {
		_, err := NewTaskRunner(DefaultTaskRunnerConfig(), nil)
		assert.Error(t, err)
	})
}
