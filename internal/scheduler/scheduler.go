package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ecopia-map/cesium_streamer/internal/observability"
	"github.com/golang/glog"
)

const DefaultLimit = 8

var (
	ErrShutdown            = errors.New("scheduler: shut down")
	ErrTaskReturnedFailure = errors.New("scheduler: task reported failure")
	ErrTaskPanicked        = errors.New("scheduler: task panicked")
)

// Scheduler runs submitted tasks in submission order with at most limit of them running at once.
// Tasks start only on Tick, either called by the owner or driven by Run.
type Scheduler struct {
	limit int

	mu      sync.Mutex
	waiting []*TaskCarrier
	running map[*TaskCarrier]struct{}
	closed  bool

	wake chan struct{}
}

func New(limit int) *Scheduler {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Scheduler{
		limit:   limit,
		running: make(map[*TaskCarrier]struct{}),
		wake:    make(chan struct{}, 1),
	}
}

func (s *Scheduler) Limit() int {
	return s.limit
}

// Submit queues a task. The priority is recorded on the carrier but does not reorder the queue.
func (s *Scheduler) Submit(ctx context.Context, name string, priority float32, task Task) *TaskCarrier {
	carrier := newTaskCarrier(ctx, name, priority, task)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		carrier.finish(TaskStateCancelled, nil, ErrShutdown)
		observability.TasksFinished.WithLabelValues(TaskStateCancelled.String()).Inc()
		return carrier
	}
	s.waiting = append(s.waiting, carrier)
	s.mu.Unlock()

	observability.TasksSubmitted.Inc()
	s.signal()
	return carrier
}

// Tick starts waiting tasks while concurrency slots are free. Tasks whose context is already
// done are moved straight to Cancelled.
func (s *Scheduler) Tick() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	for len(s.running) < s.limit && len(s.waiting) > 0 {
		carrier := s.waiting[0]
		s.waiting[0] = nil
		s.waiting = s.waiting[1:]

		if err := carrier.ownerCtx.Err(); err != nil {
			glog.V(2).Infof("task %s cancelled before start", carrier.Name)
			carrier.finish(TaskStateCancelled, nil, err)
			observability.TasksFinished.WithLabelValues(TaskStateCancelled.String()).Inc()
			continue
		}

		s.start(carrier)
	}
}

// Run ticks on every submission, every completion and every interval until ctx is done
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		s.Tick()
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-s.wake:
		}
	}
}

// Shutdown discards the waiting queue and cancels every running task without waiting for them
func (s *Scheduler) Shutdown() {
	s.mu.Lock()
	s.closed = true
	waiting := s.waiting
	s.waiting = nil
	for carrier := range s.running {
		carrier.mu.Lock()
		cancel := carrier.cancel
		carrier.mu.Unlock()
		if cancel != nil {
			cancel()
		}
	}
	s.mu.Unlock()

	for _, carrier := range waiting {
		carrier.finish(TaskStateCancelled, nil, ErrShutdown)
		observability.TasksFinished.WithLabelValues(TaskStateCancelled.String()).Inc()
	}
}

func (s *Scheduler) Running() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.running)
}

func (s *Scheduler) Waiting() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.waiting)
}

// must hold s.mu
func (s *Scheduler) start(carrier *TaskCarrier) {
	linkedCtx, cancel := context.WithCancel(carrier.ownerCtx)

	carrier.mu.Lock()
	carrier.state = TaskStateRunning
	carrier.cancel = cancel
	carrier.mu.Unlock()

	s.running[carrier] = struct{}{}
	observability.TasksRunning.Inc()

	go s.execute(linkedCtx, carrier)
}

func (s *Scheduler) execute(ctx context.Context, carrier *TaskCarrier) {
	started := time.Now()
	ok, result, err := runTask(ctx, carrier.task)
	state := completionState(ctx, ok, err)

	switch {
	case state == TaskStateFailed && err == nil:
		err = ErrTaskReturnedFailure
	case state == TaskStateCancelled && err == nil:
		err = ctx.Err()
	}
	if state == TaskStateFailed {
		glog.Warningf("task %s failed: %v", carrier.Name, err)
	}

	s.mu.Lock()
	delete(s.running, carrier)
	carrier.finish(state, result, err)
	s.mu.Unlock()

	observability.TasksRunning.Dec()
	observability.TasksFinished.WithLabelValues(state.String()).Inc()
	observability.TaskDuration.Observe(time.Since(started).Seconds())
	s.signal()
}

func runTask(ctx context.Context, task Task) (ok bool, result interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			ok, result, err = false, nil, fmt.Errorf("%w: %v", ErrTaskPanicked, r)
		}
	}()
	return task.Do(ctx)
}

func completionState(ctx context.Context, ok bool, err error) TaskState {
	switch {
	case err != nil && errors.Is(err, ErrTaskPanicked):
		return TaskStateFailed
	case err != nil && (errors.Is(err, context.Canceled) || ctx.Err() != nil):
		return TaskStateCancelled
	case err != nil:
		return TaskStateFailed
	case ok:
		return TaskStateSuccess
	case ctx.Err() != nil:
		return TaskStateCancelled
	}
	return TaskStateFailed
}

func (s *Scheduler) signal() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// WaitAll blocks until every carrier is finished or ctx is done
func WaitAll(ctx context.Context, carriers []*TaskCarrier) error {
	for _, carrier := range carriers {
		select {
		case <-carrier.Done():
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}
