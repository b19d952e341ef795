// Package task runs at most one long-running operation at a time.
package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Veraticus/folderly/internal/common"
)

// Status is the lifecycle state of a Task.
type Status string

// Task statuses.
const (
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Op is the work a Task performs. It should return promptly once ctx is done.
type Op func(ctx context.Context) error

// Task is a handle on a started operation.
type Task struct {
	StartedAt  time.Time
	finishedAt time.Time
	err        error
	done       chan struct{}
	Name       string
	status     Status
	mu         sync.Mutex
}

// Done is closed when the operation has returned.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the operation returns and reports its error.
func (t *Task) Wait() error {
	<-t.done
	return t.Err()
}

// Status returns the current state.
func (t *Task) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// Err returns the operation's error once it has finished.
func (t *Task) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// FinishedAt returns when the operation returned, or the zero time while it runs.
func (t *Task) FinishedAt() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.finishedAt
}

func (t *Task) finish(status Status, err error) {
	t.mu.Lock()
	t.status = status
	t.err = err
	t.finishedAt = time.Now()
	t.mu.Unlock()
}

// Coordinator is a single-flight gate: Run refuses to start while another
// operation is in flight.
type Coordinator struct {
	current *Task
	cancel  context.CancelFunc
	mu      sync.Mutex
}

// NewCoordinator creates an idle coordinator.
func NewCoordinator() *Coordinator {
	return &Coordinator{}
}

// Run starts op in its own goroutine and returns immediately. It fails with
// common.ErrAlreadyRunning while a previous operation has not returned.
// Stop, or cancelling ctx, cancels the context handed to op.
func (c *Coordinator) Run(ctx context.Context, name string, op Op) (*Task, error) {
	if op == nil {
		return nil, fmt.Errorf("task %q: nil operation", name)
	}

	c.mu.Lock()
	if c.current != nil {
		running := c.current.Name
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", common.ErrAlreadyRunning, running)
	}

	taskCtx, cancel := context.WithCancel(ctx)
	t := &Task{
		Name:      name,
		StartedAt: time.Now(),
		status:    StatusRunning,
		done:      make(chan struct{}),
	}
	c.current = t
	c.cancel = cancel
	c.mu.Unlock()

	slog.Debug("Task started", "task", name)
	go c.execute(taskCtx, t, op)
	return t, nil
}

func (c *Coordinator) execute(ctx context.Context, t *Task, op Op) {
	status, err := invoke(ctx, op)
	if status == StatusSucceeded && ctx.Err() != nil {
		status = StatusCancelled
	}
	t.finish(status, err)

	c.mu.Lock()
	if c.current == t {
		c.current = nil
		c.cancel()
		c.cancel = nil
	}
	c.mu.Unlock()

	slog.Debug("Task finished", "task", t.Name, "status", status, "error", err)
	close(t.done)
}

func invoke(ctx context.Context, op Op) (status Status, err error) {
	defer func() {
		if r := recover(); r != nil {
			status = StatusFailed
			err = fmt.Errorf("task panicked: %v", r)
		}
	}()

	err = op(ctx)
	switch {
	case err == nil:
		return StatusSucceeded, nil
	case errors.Is(err, context.Canceled):
		return StatusCancelled, err
	default:
		return StatusFailed, err
	}
}

// Stop asks the running operation to stop. It does not wait.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
	}
}

// IsRunning reports whether an operation is in flight.
func (c *Coordinator) IsRunning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current != nil
}

// Current returns the running task, or nil when idle.
func (c *Coordinator) Current() *Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}
