package session

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/chemlab-api/internal/catalog"
	"github.com/phrazzld/chemlab-api/internal/config"
	"github.com/phrazzld/chemlab-api/internal/domain"
	"github.com/phrazzld/chemlab-api/internal/events"
	"github.com/phrazzld/chemlab-api/internal/platform/capture"
	"github.com/phrazzld/chemlab-api/internal/task"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// manualDispatcher queues tasks until the test runs them, in any order.
type manualDispatcher struct {
	mu     sync.Mutex
	tasks  []task.Task
	reject error
}

func (d *manualDispatcher) Submit(_ context.Context, t task.Task) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.reject != nil {
		return d.reject
	}
	d.tasks = append(d.tasks, t)
	return nil
}

func (d *manualDispatcher) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.tasks)
}

// run executes the i-th submitted task.
func (d *manualDispatcher) run(t *testing.T, i int) {
	t.Helper()
	d.mu.Lock()
	require.Less(t, i, len(d.tasks), "no task %d submitted", i)
	tk := d.tasks[i]
	d.mu.Unlock()
	require.NoError(t, tk.Execute(context.Background()))
}

func (d *manualDispatcher) typeOf(i int) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.tasks[i].Type()
}

// fakeAssistant answers deterministically and records its inputs.
type fakeAssistant struct {
	mu            sync.Mutex
	explainTopics []string
	explainAbouts []string
	quizTopics    []string
	reactions     [][]string
	reaction      string
	quiz          func(topic string) domain.QuizQuestion
}

func (a *fakeAssistant) Explain(_ context.Context, topic, about string) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.explainTopics = append(a.explainTopics, topic)
	a.explainAbouts = append(a.explainAbouts, about)
	return "explanation of " + topic
}

func (a *fakeAssistant) Quiz(_ context.Context, topic string) domain.QuizQuestion {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.quizTopics = append(a.quizTopics, topic)
	if a.quiz != nil {
		return a.quiz(topic)
	}
	return domain.QuizQuestion{
		Question:    "Question about " + topic,
		Options:     []string{"right", "wrong", "wrong", "wrong"},
		Correct:     0,
		Explanation: "because",
	}
}

func (a *fakeAssistant) AnalyzeReaction(_ context.Context, names []string) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.reactions = append(a.reactions, append([]string(nil), names...))
	if a.reaction != "" {
		return a.reaction
	}
	return "A vigorous reaction."
}

type recordingEmitter struct {
	mu     sync.Mutex
	events []*events.ProgressEvent
}

func (e *recordingEmitter) EmitEvent(_ context.Context, ev *events.ProgressEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, ev)
	return nil
}

type cameraOutcomes struct {
	mu       sync.Mutex
	outcomes []string
}

func (c *cameraOutcomes) CameraAcquired(outcome string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.outcomes = append(c.outcomes, outcome)
}

type fixture struct {
	ws         *Workspace
	dispatcher *manualDispatcher
	assistant  *fakeAssistant
	device     *capture.VirtualDevice
	emitter    *recordingEmitter
	cameras    *cameraOutcomes
}

func rearCamera() config.CameraConfig {
	return config.CameraConfig{Available: true, PermissionGranted: true, FacingModes: []string{"environment", "user"}}
}

func newFixture(t *testing.T, cam config.CameraConfig) *fixture {
	t.Helper()
	f := &fixture{
		dispatcher: &manualDispatcher{},
		assistant:  &fakeAssistant{},
		device:     capture.NewVirtualDevice(cam, testLogger()),
		emitter:    &recordingEmitter{},
		cameras:    &cameraOutcomes{},
	}
	learner := uuid.New()
	progress, err := NewProgression(learner, domain.NewUserProgress(), f.emitter, testLogger())
	require.NoError(t, err)

	f.ws, err = NewWorkspace(learner, progress, Deps{
		Catalog:        catalog.MustDefault(),
		Assistant:      f.assistant,
		Dispatcher:     f.dispatcher,
		Device:         f.device,
		CameraObserver: f.cameras,
		Logger:         testLogger(),
	})
	require.NoError(t, err)
	return f
}
