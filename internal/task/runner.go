package task

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/oursapp/ours-api/internal/platform/logger"
)

// ErrQueueFull is returned by Submit when the task queue has no capacity.
var ErrQueueFull = errors.New("task queue is full")

// RunnerConfig holds configuration for the task runner.
type RunnerConfig struct {
	// WorkerCount determines how many concurrent workers process tasks.
	WorkerCount int

	// QueueSize is the capacity of the in-memory task queue.
	QueueSize int
}

// DefaultRunnerConfig returns a RunnerConfig with reasonable defaults.
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		WorkerCount: 2,
		QueueSize:   50,
	}
}

// Runner executes submitted tasks on a pool of worker goroutines.
// Tasks are held in memory only; work lost on shutdown is re-driven by
// the lazy checks in the services it calls into.
type Runner struct {
	config   RunnerConfig
	taskChan chan Task
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	logger   *slog.Logger

	// errHandler is invoked when a task fails. Nil means log only.
	errHandler func(task Task, err error)
}

// NewRunner creates a task runner. Start must be called before Submit.
func NewRunner(config RunnerConfig, log *slog.Logger) *Runner {
	if log == nil {
		log = slog.Default()
	}
	if config.WorkerCount <= 0 {
		config.WorkerCount = DefaultRunnerConfig().WorkerCount
	}
	if config.QueueSize <= 0 {
		config.QueueSize = DefaultRunnerConfig().QueueSize
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Runner{
		config:   config,
		taskChan: make(chan Task, config.QueueSize),
		ctx:      ctx,
		cancel:   cancel,
		logger:   log.With("component", "task_runner"),
	}
}

// SetErrorHandler installs a callback invoked after a task fails.
// Must be called before Start.
func (r *Runner) SetErrorHandler(fn func(task Task, err error)) {
	r.errHandler = fn
}

// Start launches the worker goroutines.
func (r *Runner) Start() {
	for i := 0; i < r.config.WorkerCount; i++ {
		r.wg.Add(1)
		go r.worker(i)
	}
	r.logger.Info("task runner started", "worker_count", r.config.WorkerCount)
}

// Stop signals workers to finish and waits for in-flight tasks.
func (r *Runner) Stop() {
	r.cancel()
	r.wg.Wait()
}

// Submit enqueues a task for asynchronous execution. It does not block:
// a full queue returns ErrQueueFull and the caller decides whether to
// retry or drop.
func (r *Runner) Submit(ctx context.Context, t Task) error {
	log := logger.FromContextOrDefault(ctx, r.logger)

	select {
	case r.taskChan <- t:
		log.Debug("task enqueued", "task_id", t.ID(), "task_type", t.Type())
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		log.Error("task queue full, dropping task", "task_id", t.ID(), "task_type", t.Type())
		return ErrQueueFull
	}
}

func (r *Runner) worker(id int) {
	defer r.wg.Done()

	for {
		select {
		case <-r.ctx.Done():
			// Drain what is already queued, then exit.
			for {
				select {
				case t := <-r.taskChan:
					r.processTask(t, id)
				default:
					r.logger.Debug("stopping worker", "worker_id", id)
					return
				}
			}
		case t := <-r.taskChan:
			r.processTask(t, id)
		}
	}
}

func (r *Runner) processTask(t Task, workerID int) {
	log := r.logger.With(
		"task_id", t.ID(),
		"task_type", t.Type(),
		"worker_id", workerID,
	)

	start := time.Now()
	log.Info("processing task")

	// Execution runs on a background context so an in-flight task is
	// not cut off mid-write during shutdown.
	if err := t.Execute(context.Background()); err != nil {
		log.Error("task execution failed", "error", err, "duration", time.Since(start))
		if r.errHandler != nil {
			r.errHandler(t, err)
		}
		return
	}

	log.Info("task completed", "duration", time.Since(start))
}
