package driver

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// executor 把 [first, last) 按行切分给多个 worker 并等待全部完成
type executor struct {
	workers int
}

type task struct {
	start int
	end   int
}

func newExecutor(workers int) *executor {
	if workers < 1 {
		workers = 1
	}
	return &executor{workers: workers}
}

// split 按 worker 数切分，余数分给前面的任务
func (e *executor) split(first, last int) []task {
	total := last - first
	if total <= 0 {
		return nil
	}
	n := e.workers
	if n > total {
		n = total
	}
	taskLen, remainder := total/n, total%n
	tasks := make([]task, 0, n)
	start := first
	for i := 0; i < n; i++ {
		end := start + taskLen
		if i < remainder {
			end++
		}
		tasks = append(tasks, task{start: start, end: end})
		start = end
	}
	return tasks
}

func (e *executor) dispatchTask(ctx context.Context, first, last int, f func(start, end int)) (time.Duration, error) {
	start := time.Now()
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for _, t := range e.split(first, last) {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			f(t.start, t.end)
			return nil
		})
	}
	err := g.Wait()
	return time.Since(start), err
}
