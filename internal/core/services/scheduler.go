package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/custodia-labs/paddock/internal/core/domain"
	"github.com/custodia-labs/paddock/internal/core/ports/driven"
	"github.com/custodia-labs/paddock/internal/core/ports/driving"
	"github.com/custodia-labs/paddock/internal/logger"
)

// Ensure Scheduler implements the interface.
var _ driving.Scheduler = (*Scheduler)(nil)

// historyRetention is how many results per task are kept in the store.
const historyRetention = 100

// TaskFunc performs one run of a task and reports how many items it handled.
// Returning domain.ErrStopRequested ends the task's loop.
type TaskFunc func(ctx context.Context) (int, error)

type registeredTask struct {
	id   string
	name string
	fn   TaskFunc
}

// Scheduler runs registered tasks on cancellable timers. Each task waits
// its configured interval between runs; a task with a MaxInterval backs off
// while its runs are idle.
type Scheduler struct {
	config domain.SchedulerConfig
	store  driven.SchedulerStore
	tasks  []registeredTask
	log    *zap.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	halt    func()
	wg      sync.WaitGroup
}

// NewScheduler creates a scheduler with configuration.
// The store is optional - without it no task history is kept.
func NewScheduler(config domain.SchedulerConfig, store driven.SchedulerStore) *Scheduler {
	return &Scheduler{
		config: config,
		store:  store,
		log:    logger.Named("scheduler"),
	}
}

// Register adds a task. Tasks must be registered before Start.
func (s *Scheduler) Register(id, name string, fn TaskFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append(s.tasks, registeredTask{id: id, name: name, fn: fn})
}

// Start runs every enabled task. It blocks until the context is cancelled,
// Stop is called, or every task loop has ended.
func (s *Scheduler) Start(ctx context.Context) error {
	if !s.config.Enabled {
		return nil
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil // Already running
	}
	s.running = true
	stopCh := make(chan struct{})
	var once sync.Once
	s.stopCh = stopCh
	s.halt = func() { once.Do(func() { close(stopCh) }) }
	halt := s.halt
	tasks := append([]registeredTask(nil), s.tasks...)
	s.mu.Unlock()

	for _, t := range tasks {
		cfg := s.config.GetTaskConfig(t.id)
		if !cfg.Enabled || cfg.Interval <= 0 {
			continue
		}
		task := s.ensureTask(ctx, t, cfg)
		s.wg.Add(1)
		go s.loop(ctx, stopCh, halt, t, task, cfg)
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	var err error
	select {
	case <-ctx.Done():
		halt()
		err = ctx.Err()
	case <-stopCh:
	case <-done:
	}
	<-done

	s.mu.Lock()
	if s.stopCh == stopCh {
		s.running = false
	}
	s.mu.Unlock()
	return err
}

// Stop signals every task loop and waits for in-flight runs to finish.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.halt()
	s.mu.Unlock()

	// Wait for running tasks to complete
	s.wg.Wait()
	return nil
}

// ensureTask loads or creates the persisted task state.
func (s *Scheduler) ensureTask(ctx context.Context, t registeredTask, cfg domain.TaskConfig) *domain.ScheduledTask {
	task := &domain.ScheduledTask{ID: t.id, Name: t.name, Interval: cfg.Interval, Enabled: true}
	if s.store == nil {
		return task
	}
	stored, err := s.store.GetTask(ctx, t.id)
	if err != nil {
		s.log.Warn("task state not loaded", zap.String("task", t.id), zap.Error(err))
	} else if stored != nil {
		task = stored
		task.Name = t.name
		task.Interval = cfg.Interval
		task.Enabled = true
	}
	if err := s.store.SaveTask(ctx, task); err != nil {
		s.log.Warn("task state not saved", zap.String("task", t.id), zap.Error(err))
	}
	return task
}

// loop runs a task immediately and then after each computed delay.
func (s *Scheduler) loop(
	ctx context.Context,
	stopCh <-chan struct{},
	halt func(),
	t registeredTask,
	task *domain.ScheduledTask,
	cfg domain.TaskConfig,
) {
	defer s.wg.Done()

	timer := time.NewTimer(0)
	defer timer.Stop()

	var delay time.Duration
	for {
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		case <-timer.C:
		}

		items, err := s.runTask(ctx, t, task)
		if errors.Is(err, domain.ErrStopRequested) {
			// One task seeing the stop sentinel ends the whole scheduler.
			s.log.Info("task stopped", zap.String("task", t.id))
			halt()
			return
		}

		delay = cfg.NextDelay(delay, err == nil && items == 0)
		task.NextRun = time.Now().Add(delay)
		timer.Reset(delay)
	}
}

// runTask executes one run and records its outcome.
func (s *Scheduler) runTask(ctx context.Context, t registeredTask, task *domain.ScheduledTask) (int, error) {
	result := &domain.TaskResult{
		TaskID:    t.id,
		StartedAt: time.Now(),
	}

	items, err := t.fn(ctx)

	result.EndedAt = time.Now()
	result.ItemsProcessed = items
	task.LastRun = result.StartedAt
	if err != nil && !errors.Is(err, domain.ErrStopRequested) {
		result.Error = err.Error()
		task.LastError = err.Error()
		s.log.Warn("task failed", zap.String("task", t.id), zap.Error(err))
	} else {
		result.Success = true
		task.LastError = ""
		task.LastSuccess = result.EndedAt
	}

	// Idle runs are not worth a history row.
	if s.store != nil && (items > 0 || !result.Success) {
		s.persist(ctx, task, result)
	}
	return items, err
}

func (s *Scheduler) persist(ctx context.Context, task *domain.ScheduledTask, result *domain.TaskResult) {
	if err := s.store.SaveTask(ctx, task); err != nil {
		s.log.Warn("task state not saved", zap.String("task", task.ID), zap.Error(err))
	}
	if err := s.store.RecordResult(ctx, result); err != nil {
		s.log.Warn("task result not recorded", zap.String("task", task.ID), zap.Error(err))
	}
	if err := s.store.PruneHistory(ctx, historyRetention); err != nil {
		s.log.Warn("task history not pruned", zap.Error(err))
	}
}
