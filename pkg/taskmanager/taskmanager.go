// Package taskmanager runs background tasks and lets callers wait for a
// task's result with a bounded timeout. Story generation uses it to run
// image synthesis alongside text generation.
package taskmanager

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Task statuses.
const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusRunning   TaskStatus = "running"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusFailed    TaskStatus = "failed"
	TaskStatusCancelled TaskStatus = "cancelled"
)

// ErrTooManyTasks is returned by Submit when the active task limit is hit.
var ErrTooManyTasks = errors.New("too many active tasks")

// TaskStatus is the lifecycle state of a task.
type TaskStatus string

// TaskFunc is the unit of work executed in a task.
type TaskFunc func(ctx context.Context) (interface{}, error)

// Task is an asynchronous unit of work.
type Task struct {
	ID        uuid.UUID
	Status    TaskStatus
	Result    interface{}
	Err       error
	CreatedAt time.Time
	UpdatedAt time.Time

	cancel context.CancelFunc
	done   chan struct{}
}

// Manager tracks running tasks.
type Manager struct {
	tasks    map[uuid.UUID]*Task
	mu       sync.RWMutex
	maxTasks int
	closing  chan struct{}
	wg       sync.WaitGroup
}

// Config holds Manager settings.
type Config struct {
	MaxTasks int
}

// New creates a task manager.
func New(cfg Config) *Manager {
	maxTasks := cfg.MaxTasks
	if maxTasks <= 0 {
		maxTasks = 10
	}
	return &Manager{
		tasks:    make(map[uuid.UUID]*Task),
		maxTasks: maxTasks,
		closing:  make(chan struct{}),
	}
}

// Submit starts a new task. The task runs on a context independent of the
// caller's so an aborted HTTP request does not kill the work.
func (m *Manager) Submit(taskFunc TaskFunc) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	select {
	case <-m.closing:
		return uuid.UUID{}, errors.New("task manager is shutting down")
	default:
	}

	active := 0
	for _, task := range m.tasks {
		if task.Status == TaskStatusPending || task.Status == TaskStatusRunning {
			active++
		}
	}
	if active >= m.maxTasks {
		return uuid.UUID{}, ErrTooManyTasks
	}

	taskCtx, cancel := context.WithCancel(context.Background())
	now := time.Now()
	task := &Task{
		ID:        uuid.New(),
		Status:    TaskStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	m.tasks[task.ID] = task

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer cancel()
		m.run(taskCtx, task, taskFunc)
	}()

	return task.ID, nil
}

func (m *Manager) run(ctx context.Context, task *Task, taskFunc TaskFunc) {
	m.setStatus(task, TaskStatusRunning, nil, nil)

	result, err := taskFunc(ctx)
	switch {
	case ctx.Err() != nil && errors.Is(ctx.Err(), context.Canceled):
		log.Info().Str("taskID", task.ID.String()).Msg("Task cancelled")
		m.setStatus(task, TaskStatusCancelled, nil, context.Canceled)
	case err != nil:
		log.Error().Err(err).Str("taskID", task.ID.String()).Msg("Task failed")
		m.setStatus(task, TaskStatusFailed, nil, err)
	default:
		m.setStatus(task, TaskStatusCompleted, result, nil)
	}
	close(task.done)
}

func (m *Manager) setStatus(task *Task, status TaskStatus, result interface{}, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	task.Status = status
	task.Result = result
	task.Err = err
	task.UpdatedAt = time.Now()
}

// Get returns a snapshot of the task.
func (m *Manager) Get(taskID uuid.UUID) (*Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	task, ok := m.tasks[taskID]
	if !ok {
		return nil, errors.New("task not found")
	}
	snapshot := *task
	return &snapshot, nil
}

// Wait blocks until the task finishes or the context expires. On context
// expiry the task keeps running in the background; only the wait gives up.
// Collecting a finished task removes it from the manager, so uncollected
// results rely on Cleanup instead of living forever.
func (m *Manager) Wait(ctx context.Context, taskID uuid.UUID) (interface{}, error) {
	m.mu.RLock()
	task, ok := m.tasks[taskID]
	m.mu.RUnlock()
	if !ok {
		return nil, errors.New("task not found")
	}

	select {
	case <-task.done:
		m.mu.Lock()
		result, err := task.Result, task.Err
		delete(m.tasks, taskID)
		m.mu.Unlock()
		return result, err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Cancel stops a pending or running task.
func (m *Manager) Cancel(taskID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	task, ok := m.tasks[taskID]
	if !ok {
		return errors.New("task not found")
	}
	if task.Status != TaskStatusPending && task.Status != TaskStatusRunning {
		return nil
	}
	task.cancel()
	return nil
}

// Cleanup drops finished tasks older than age.
func (m *Manager) Cleanup(age time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := time.Now().Add(-age)
	for id, task := range m.tasks {
		finished := task.Status == TaskStatusCompleted || task.Status == TaskStatusFailed || task.Status == TaskStatusCancelled
		if finished && task.UpdatedAt.Before(cutoff) {
			delete(m.tasks, id)
		}
	}
}

// Shutdown stops accepting tasks and waits for running ones to finish, up
// to the context deadline.
func (m *Manager) Shutdown(ctx context.Context) error {
	close(m.closing)

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return errors.New("timed out waiting for tasks to finish")
	}
}

// Close cancels all in-flight tasks and waits for their goroutines.
func (m *Manager) Close() {
	close(m.closing)
	m.mu.Lock()
	for _, task := range m.tasks {
		if task.Status == TaskStatusPending || task.Status == TaskStatusRunning {
			task.cancel()
		}
	}
	m.mu.Unlock()
	m.wg.Wait()
}
