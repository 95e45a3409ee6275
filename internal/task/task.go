package task

import (
	"context"

	"github.com/google/uuid"
)

// Task type constants
const (
	TypeExplain  = "explain"
	TypeQuiz     = "quiz"
	TypeReaction = "reaction"
	TypeCamera   = "camera"
)

// Task represents a unit of background work to be processed
type Task interface {
	// ID returns the task's unique identifier
	ID() uuid.UUID

	// Type returns the task type identifier
	Type() string

	// Execute runs the task logic
	Execute(ctx context.Context) error
}

// Dispatcher accepts tasks for asynchronous execution.
type Dispatcher interface {
	// Submit queues t. It returns an error without running t when the task
	// cannot be accepted.
	Submit(ctx context.Context, t Task) error
}

// FuncTask adapts a function into a Task.
type FuncTask struct {
	id  uuid.UUID
	typ string
	fn  func(ctx context.Context) error
}

var _ Task = (*FuncTask)(nil)

// NewFuncTask creates a task of the given type that runs fn.
func NewFuncTask(typ string, fn func(ctx context.Context) error) *FuncTask {
	return &FuncTask{id: uuid.New(), typ: typ, fn: fn}
}

// ID returns the task's unique identifier.
func (t *FuncTask) ID() uuid.UUID { return t.id }

// Type returns the task type.
func (t *FuncTask) Type() string { return t.typ }

// Execute runs the wrapped function.
func (t *FuncTask) Execute(ctx context.Context) error { return t.fn(ctx) }
