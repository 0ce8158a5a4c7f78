package workers

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/artpar/shipyard/internal/core/domain"
)

var (
	// ErrQueueFull is returned when the queue buffer has no free slot.
	ErrQueueFull = errors.New("setup queue is full")

	// ErrQueueStopped is returned when enqueueing to a queue that is not running.
	ErrQueueStopped = errors.New("setup queue is not running")
)

// TaskHandler executes one setup task.
type TaskHandler func(ctx context.Context, task domain.SetupTask) error

// SetupQueueConfig configures the setup queue.
type SetupQueueConfig struct {
	Workers     int
	QueueSize   int
	TaskTimeout time.Duration
}

// DefaultSetupQueueConfig returns default configuration.
func DefaultSetupQueueConfig() SetupQueueConfig {
	return SetupQueueConfig{
		Workers:     2,
		QueueSize:   100,
		TaskTimeout: 2 * time.Minute,
	}
}

// SetupQueue is an in-process task queue drained by a fixed pool of workers.
// Enqueue never blocks. Stop stops accepting tasks and waits for the
// buffered ones to finish.
type SetupQueue struct {
	handler TaskHandler
	config  SetupQueueConfig
	logger  *slog.Logger

	mu      sync.RWMutex
	running bool
	tasks   chan domain.SetupTask

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSetupQueue creates a new setup queue that runs tasks with handler.
func NewSetupQueue(handler TaskHandler, config SetupQueueConfig, logger *slog.Logger) *SetupQueue {
	defaults := DefaultSetupQueueConfig()
	if config.Workers <= 0 {
		config.Workers = defaults.Workers
	}
	if config.QueueSize <= 0 {
		config.QueueSize = defaults.QueueSize
	}
	if config.TaskTimeout <= 0 {
		config.TaskTimeout = defaults.TaskTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &SetupQueue{
		handler: handler,
		config:  config,
		logger:  logger.With("component", "setup_queue"),
	}
}

// Start launches the worker goroutines. Calling Start on a running queue is a no-op.
func (q *SetupQueue) Start() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.running {
		return
	}

	q.ctx, q.cancel = context.WithCancel(context.Background())
	q.tasks = make(chan domain.SetupTask, q.config.QueueSize)
	q.running = true

	for i := 0; i < q.config.Workers; i++ {
		q.wg.Add(1)
		go q.work(q.tasks)
	}

	q.logger.Info("setup queue started", "workers", q.config.Workers, "queue_size", q.config.QueueSize)
}

// Stop stops accepting tasks, waits for queued tasks to finish, then returns.
func (q *SetupQueue) Stop() {
	q.mu.Lock()
	if !q.running {
		q.mu.Unlock()
		return
	}
	q.running = false
	close(q.tasks)
	q.mu.Unlock()

	q.wg.Wait()
	q.cancel()
	q.logger.Info("setup queue stopped")
}

// Enqueue adds a task to the queue without waiting for it to run.
func (q *SetupQueue) Enqueue(ctx context.Context, task domain.SetupTask) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	q.mu.RLock()
	defer q.mu.RUnlock()

	if !q.running {
		return ErrQueueStopped
	}

	select {
	case q.tasks <- task:
		return nil
	default:
		return ErrQueueFull
	}
}

// Len returns the number of tasks waiting for a worker.
func (q *SetupQueue) Len() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.tasks == nil {
		return 0
	}
	return len(q.tasks)
}

func (q *SetupQueue) work(tasks <-chan domain.SetupTask) {
	defer q.wg.Done()
	for task := range tasks {
		q.process(task)
	}
}

func (q *SetupQueue) process(task domain.SetupTask) {
	logger := q.logger.With("task_id", task.ID, "target", task.Target.String())

	ctx, cancel := context.WithTimeout(q.ctx, q.config.TaskTimeout)
	defer cancel()

	start := time.Now()
	if err := q.handler(ctx, task); err != nil {
		logger.Error("setup task failed", "error", err, "duration", time.Since(start))
		return
	}
	logger.Info("setup task completed", "duration", time.Since(start))
}
