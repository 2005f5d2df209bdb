package runner

import (
	"context"
	"sort"
	"time"
)

// Task is one periodic housekeeping job.
type Task interface {
	Name() string

	// Schedule returns the cron expression; "" disables the task.
	Schedule() string

	Run(ctx context.Context) error

	Timeout() time.Duration
}

// TaskRegistry holds tasks by name. A later registration under the same
// name replaces the earlier one.
type TaskRegistry struct {
	tasks map[string]Task
}

func NewTaskRegistry() *TaskRegistry {
	return &TaskRegistry{tasks: make(map[string]Task)}
}

func (r *TaskRegistry) Register(task Task) {
	r.tasks[task.Name()] = task
}

func (r *TaskRegistry) Lookup(name string) (Task, bool) {
	task, ok := r.tasks[name]
	return task, ok
}

// Names lists the registered task names in sorted order.
func (r *TaskRegistry) Names() []string {
	names := make([]string, 0, len(r.tasks))
	for name := range r.tasks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
