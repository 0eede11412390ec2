package async

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Task is one named unit of concurrent work producing a result of type T.
type Task[T any] struct {
	Name string
	Func func(context.Context) T
}

// Collect runs all tasks concurrently and returns their results keyed by
// task name once every task has settled (full barrier, no partial
// advancement). limit caps how many tasks run at once; limit <= 0 means
// unbounded. Slots are disjoint per task, so no result is ever shared
// between goroutines.
func Collect[T any](ctx context.Context, limit int, tasks []Task[T]) map[string]T {
	results := make(map[string]T, len(tasks))
	if len(tasks) == 0 {
		return results
	}

	var sem *semaphore.Weighted
	if limit > 0 {
		sem = semaphore.NewWeighted(int64(limit))
	}

	type slot struct {
		name  string
		value T
	}
	slots := make([]slot, len(tasks))

	var wg sync.WaitGroup
	for i, task := range tasks {
		i, task := i, task
		wg.Add(1)
		go func() {
			defer wg.Done()
			if sem != nil {
				// Acquire fails only when ctx is cancelled; the task still
				// runs and is expected to observe the cancellation itself,
				// so the barrier always ends with a slot per task.
				if err := sem.Acquire(ctx, 1); err == nil {
					defer sem.Release(1)
				}
			}
			slots[i] = slot{name: task.Name, value: task.Func(ctx)}
		}()
	}
	wg.Wait()

	for _, s := range slots {
		results[s.name] = s.value
	}
	return results
}
