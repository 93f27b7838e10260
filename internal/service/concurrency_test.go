package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/todotxt-api/internal/model"
	"github.com/BuzzLyutic/todotxt-api/internal/repo"
	"github.com/BuzzLyutic/todotxt-api/internal/service"
	"github.com/BuzzLyutic/todotxt-api/internal/testdb"
	"github.com/BuzzLyutic/todotxt-api/pkg/todotxt"
)

func setup(t *testing.T) (*service.TaskService, *repo.TaskRepo, func() int) {
	pool, cleanup := testdb.SetupTestDB(t)
	t.Cleanup(cleanup)
	testdb.TruncateTables(t, pool)

	taskRepo := repo.NewTaskRepo(pool, todotxt.Parser{})
	count := func() int { return testdb.Count(t, pool, "true") }
	return service.NewTaskService(taskRepo, todotxt.Parser{}, zap.NewNop()), taskRepo, count
}

func TestConcurrent_IdempotencyKeys(t *testing.T) {
	taskService, _, count := setup(t)
	ctx := context.Background()

	const goroutines = 10
	var wg sync.WaitGroup
	results := make([]model.Task, goroutines)
	errs := make([]error, goroutines)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			results[idx], errs[idx] = taskService.Create(ctx, fmt.Sprintf("concurrent %d", idx), "concurrent-test-key")
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "request %d should not error", i)
	}
	for i, result := range results {
		assert.Equal(t, results[0].ID, result.ID, "request %d should return same ID", i)
	}
	assert.Equal(t, 1, count(), "only one task should be stored")
}

func TestConcurrent_OptimisticLocking(t *testing.T) {
	taskService, taskRepo, _ := setup(t)
	ctx := context.Background()

	task, err := taskService.Create(ctx, "optimistic lock test", "")
	require.NoError(t, err)

	const goroutines = 10
	var wg sync.WaitGroup
	errs := make([]error, goroutines)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			_, errs[idx] = taskService.Update(ctx, task.ID, fmt.Sprintf("updated %d", idx), task.Version)
		}(i)
	}
	wg.Wait()

	var success, conflict int
	for i, err := range errs {
		switch {
		case err == nil:
			success++
		case errors.Is(err, repo.ErrorConflict):
			conflict++
		default:
			t.Errorf("unexpected error at %d: %v", i, err)
		}
	}

	assert.Equal(t, 1, success, "exactly one update should succeed")
	assert.Equal(t, goroutines-1, conflict, "others should conflict")

	final, err := taskRepo.Get(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.Version+1, final.Version)
}

func TestConcurrent_ClaimRecurringOnce(t *testing.T) {
	taskService, taskRepo, _ := setup(t)
	ctx := context.Background()

	const tasks = 20
	for i := 0; i < tasks; i++ {
		created, err := taskService.Create(ctx, fmt.Sprintf("(A) chore %d rec:1d", i), "")
		require.NoError(t, err)
		_, err = taskService.Complete(ctx, created.ID)
		require.NoError(t, err)
	}

	var (
		mu      sync.Mutex
		claimed = make(map[int64]int)
		wg      sync.WaitGroup
	)
	for w := 0; w < 5; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				task, err := taskRepo.ClaimRecurring(ctx)
				if errors.Is(err, repo.ErrorNotFound) {
					return
				}
				if !assert.NoError(t, err) {
					return
				}
				mu.Lock()
				claimed[task.ID]++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, claimed, tasks)
	for id, n := range claimed {
		assert.Equal(t, 1, n, "task %d claimed more than once", id)
	}
}

func TestConcurrent_CreateAndList(t *testing.T) {
	taskService, _, count := setup(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	const creators = 5

	for i := 0; i < creators; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			for j := 0; j < 5; j++ {
				_, err := taskService.Create(ctx, fmt.Sprintf("task %d-%d +load", idx, j), "")
				assert.NoError(t, err)
			}
		}(i)
	}
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				_, err := taskService.List(ctx, model.TaskFilter{}, 20)
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, creators*5, count())
}
