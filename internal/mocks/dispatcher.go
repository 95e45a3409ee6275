package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/chemlab-api/internal/task"
)

// MockDispatcher implements task.Dispatcher for testing. By default it
// runs each task synchronously inside Submit; with Hold set it queues tasks
// until RunPending is called.
type MockDispatcher struct {
	SubmitFn func(ctx context.Context, t task.Task) error

	// Err is returned by Submit, rejecting the task, when set.
	Err error

	// Hold queues tasks instead of running them.
	Hold bool

	mu        sync.Mutex
	submitted []task.Task
	pending   []task.Task
}

var _ task.Dispatcher = (*MockDispatcher)(nil)

// Submit implements task.Dispatcher.
func (m *MockDispatcher) Submit(ctx context.Context, t task.Task) error {
	if m.SubmitFn != nil {
		return m.SubmitFn(ctx, t)
	}

	m.mu.Lock()
	if m.Err != nil {
		m.mu.Unlock()
		return m.Err
	}
	m.submitted = append(m.submitted, t)
	if m.Hold {
		m.pending = append(m.pending, t)
		m.mu.Unlock()
		return nil
	}
	m.mu.Unlock()

	return t.Execute(ctx)
}

// RunPending executes the queued tasks in submission order and returns the
// first error.
func (m *MockDispatcher) RunPending(ctx context.Context) error {
	m.mu.Lock()
	pending := m.pending
	m.pending = nil
	m.mu.Unlock()

	var firstErr error
	for _, t := range pending {
		if err := t.Execute(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// SubmittedTypes returns the type of every accepted task.
func (m *MockDispatcher) SubmittedTypes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	types := make([]string, len(m.submitted))
	for i, t := range m.submitted {
		types[i] = t.Type()
	}
	return types
}
