package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestQueueRejectsEnqueueBeforeStart(t *testing.T) {
	q := NewQueue("mail", func(context.Context, Job) error { return nil }, QueueConfig{})
	err := q.Enqueue(Job{ID: "j1", Type: "flyer.submitted"})
	require.ErrorContains(t, err, "not started")
}

func TestQueueDeliversJobs(t *testing.T) {
	done := make(chan Job, 1)
	q := NewQueue("mail", func(_ context.Context, job Job) error {
		done <- job
		return nil
	}, QueueConfig{Logger: zap.NewNop()})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "j1", Type: "flyer.submitted"}))

	select {
	case job := <-done:
		require.Equal(t, "j1", job.ID)
		require.False(t, job.Enqueued.IsZero(), "enqueue must stamp the job")
	case <-time.After(time.Second):
		t.Fatal("job was not delivered")
	}
}

func TestQueueRetriesFailedJobs(t *testing.T) {
	var mu sync.Mutex
	attempts := make([]int, 0, 2)
	done := make(chan struct{})

	q := NewQueue("mail", func(_ context.Context, job Job) error {
		mu.Lock()
		attempts = append(attempts, job.Attempt)
		mu.Unlock()
		if job.Attempt == 0 {
			return errors.New("smtp unavailable")
		}
		close(done)
		return nil
	}, QueueConfig{RetryDelay: 5 * time.Millisecond, Logger: zap.NewNop()})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "j1", Type: "flyer.submitted"}))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("job was not retried")
	}
	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []int{0, 1}, attempts)
}
