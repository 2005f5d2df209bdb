// Package runner schedules the server's periodic housekeeping with cron.
package runner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Runner manages and executes scheduled background tasks
type Runner struct {
	cron     *cron.Cron
	registry *TaskRegistry
	logger   *zap.Logger
	wg       sync.WaitGroup
}

// NewRunner creates a task runner using standard five-field cron
// expressions. Overlapping runs of the same task are skipped.
func NewRunner(registry *TaskRegistry, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		cron:     cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		registry: registry,
		logger:   logger.Named("runner"),
	}
}

// Start registers every task and starts the scheduler. It returns
// immediately; call Stop to shut down.
func (r *Runner) Start(ctx context.Context) error {
	for _, name := range r.registry.Names() {
		task, _ := r.registry.Lookup(name)
		if task.Schedule() == "" {
			r.logger.Info("task disabled", zap.String("task", name))
			continue
		}
		if _, err := r.cron.AddFunc(task.Schedule(), func() {
			r.executeTask(ctx, task)
		}); err != nil {
			return fmt.Errorf("failed to schedule task %s: %w", name, err)
		}
		r.logger.Info("task registered", zap.String("task", name), zap.String("schedule", task.Schedule()))
	}

	r.cron.Start()
	return nil
}

// RunNow executes the named task once, outside its schedule.
func (r *Runner) RunNow(ctx context.Context, name string) error {
	task, ok := r.registry.Lookup(name)
	if !ok {
		return fmt.Errorf("unknown task %q", name)
	}
	return r.executeTask(ctx, task)
}

// executeTask runs a single task with timeout and error handling
func (r *Runner) executeTask(ctx context.Context, task Task) error {
	r.wg.Add(1)
	defer r.wg.Done()

	taskCtx, cancel := context.WithTimeout(ctx, task.Timeout())
	defer cancel()

	start := time.Now()
	err := task.Run(taskCtx)
	fields := []zap.Field{zap.String("task", task.Name()), zap.Duration("duration", time.Since(start))}
	if err != nil {
		r.logger.Warn("task failed", append(fields, zap.Error(err))...)
		return err
	}
	r.logger.Debug("task completed", fields...)
	return nil
}

// Stop halts the scheduler and waits for running tasks, or for ctx.
func (r *Runner) Stop(ctx context.Context) {
	done := r.cron.Stop()
	waited := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(waited)
	}()

	select {
	case <-waited:
		<-done.Done()
		r.logger.Info("task runner stopped")
	case <-ctx.Done():
		r.logger.Warn("task runner stop timed out")
	}
}
