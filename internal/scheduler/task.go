package scheduler

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Task is a unit of schedulable work. A true result with a nil error is a success.
type Task interface {
	Do(ctx context.Context) (bool, interface{}, error)
}

type TaskFunc func(ctx context.Context) (bool, interface{}, error)

func (f TaskFunc) Do(ctx context.Context) (bool, interface{}, error) {
	return f(ctx)
}

// TaskCarrier tracks one submitted task. Only the scheduler mutates it.
type TaskCarrier struct {
	ID       uuid.UUID
	Name     string
	Priority float32

	task     Task
	ownerCtx context.Context

	mu     sync.Mutex
	state  TaskState
	err    error
	result interface{}
	cancel context.CancelFunc
	done   chan struct{}
}

func newTaskCarrier(ctx context.Context, name string, priority float32, task Task) *TaskCarrier {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}

	return &TaskCarrier{
		ID:       id,
		Name:     name,
		Priority: priority,
		task:     task,
		ownerCtx: ctx,
		state:    TaskStateWaiting,
		done:     make(chan struct{}),
	}
}

func (c *TaskCarrier) State() TaskState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Err returns the error captured when the task failed or was cancelled
func (c *TaskCarrier) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Result returns the payload returned by a successful task
func (c *TaskCarrier) Result() interface{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result
}

// Done is closed once the task reaches a terminal state
func (c *TaskCarrier) Done() <-chan struct{} {
	return c.done
}

// Wait blocks until the task finishes or ctx is done and returns the state observed
func (c *TaskCarrier) Wait(ctx context.Context) TaskState {
	select {
	case <-c.done:
	case <-ctx.Done():
	}
	return c.State()
}

func (c *TaskCarrier) finish(state TaskState, result interface{}, err error) {
	c.mu.Lock()
	if c.state.IsFinished() {
		c.mu.Unlock()
		return
	}
	c.state = state
	c.result = result
	c.err = err
	if c.cancel != nil {
		c.cancel()
	}
	c.mu.Unlock()
	close(c.done)
}
