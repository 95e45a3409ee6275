package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/chemlab-api/internal/catalog"
	"github.com/phrazzld/chemlab-api/internal/domain"
	"github.com/phrazzld/chemlab-api/internal/generation"
	"github.com/phrazzld/chemlab-api/internal/platform/capture"
	"github.com/phrazzld/chemlab-api/internal/task"
)

// Deps are the collaborators shared by every workspace.
type Deps struct {
	Catalog        *catalog.Catalog
	Assistant      generation.Assistant
	Dispatcher     task.Dispatcher
	Device         capture.Device // nil means no camera support
	CameraObserver CameraObserver // optional
	ReactionDelay  time.Duration
	Logger         *slog.Logger
}

// Validate checks that required collaborators are present.
func (d Deps) Validate() error {
	switch {
	case d.Catalog == nil:
		return errors.New("catalog cannot be nil")
	case d.Assistant == nil:
		return errors.New("assistant cannot be nil")
	case d.Dispatcher == nil:
		return errors.New("dispatcher cannot be nil")
	case d.Logger == nil:
		return errors.New("logger cannot be nil")
	}
	return nil
}

// Dashboard is the summary shown on the dashboard view.
type Dashboard struct {
	XP            int      `json:"xp"`
	Level         int      `json:"level"`
	NextLevelAt   int      `json:"next_level_at"`
	Badges        []string `json:"badges"`
	MoleculeCount int      `json:"molecule_count"`
}

// Workspace is everything one learner has open: their progression, the
// tutor, and the session of the current view. Only the current view's
// session is mounted; navigating away unmounts it.
type Workspace struct {
	mu     sync.Mutex
	view   domain.View
	viewer *Viewer
	lab    *Lab
	quiz   *Quiz

	learnerID uuid.UUID
	progress  *Progression
	tutor     *Tutor
	deps      Deps
	logger    *slog.Logger
}

// NewWorkspace creates a workspace on the dashboard view.
func NewWorkspace(learnerID uuid.UUID, progress *Progression, deps Deps) (*Workspace, error) {
	if err := deps.Validate(); err != nil {
		return nil, err
	}
	if progress == nil {
		return nil, errors.New("progression cannot be nil")
	}
	tutor, err := NewTutor(deps.Assistant, deps.Dispatcher, deps.Logger)
	if err != nil {
		return nil, err
	}
	return &Workspace{
		view:      domain.ViewDashboard,
		learnerID: learnerID,
		progress:  progress,
		tutor:     tutor,
		deps:      deps,
		logger:    deps.Logger.With("component", "workspace", "learner_id", learnerID),
	}, nil
}

// LearnerID returns the owning learner.
func (w *Workspace) LearnerID() uuid.UUID { return w.learnerID }

// Progression returns the learner's progression store.
func (w *Workspace) Progression() *Progression { return w.progress }

// Tutor returns the learner's tutor, available from every view.
func (w *Workspace) Tutor() *Tutor { return w.tutor }

// View returns the current view.
func (w *Workspace) View() domain.View {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.view
}

// Navigate switches to view, unmounting the previous view's session and
// mounting a fresh one. Navigating to the current view changes nothing and
// reports false.
func (w *Workspace) Navigate(ctx context.Context, view domain.View) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if view == w.view {
		return false
	}
	w.unmountLocked()

	switch view {
	case domain.ViewMolecules:
		w.viewer = newViewer(w.deps, w.tutor)
	case domain.ViewLab:
		w.lab = newLab(w.deps, w.progress, w.tutor)
	case domain.ViewTheory:
		w.quiz = newQuiz(w.deps, w.progress)
	}

	w.logger.DebugContext(ctx, "view changed", "from", w.view, "to", view)
	w.view = view
	return true
}

// Viewer returns the mounted molecule viewer.
func (w *Workspace) Viewer() (*Viewer, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.viewer == nil {
		return nil, ErrViewNotActive
	}
	return w.viewer, nil
}

// Lab returns the mounted lab bench.
func (w *Workspace) Lab() (*Lab, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.lab == nil {
		return nil, ErrViewNotActive
	}
	return w.lab, nil
}

// Quiz returns the mounted quiz.
func (w *Workspace) Quiz() (*Quiz, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.quiz == nil {
		return nil, ErrViewNotActive
	}
	return w.quiz, nil
}

// Dashboard summarises progress for the dashboard view.
func (w *Workspace) Dashboard() Dashboard {
	p := w.progress.Get()
	return Dashboard{
		XP:            p.XP,
		Level:         p.Level,
		NextLevelAt:   p.Threshold(),
		Badges:        append([]string(nil), domain.Badges...),
		MoleculeCount: len(w.deps.Catalog.Molecules()),
	}
}

// Close unmounts the current view, releasing any camera it holds.
func (w *Workspace) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.unmountLocked()
}

func (w *Workspace) unmountLocked() {
	if w.viewer != nil {
		w.viewer.unmount()
		w.viewer = nil
	}
	if w.lab != nil {
		w.lab.unmount()
		w.lab = nil
	}
	if w.quiz != nil {
		w.quiz.unmount()
		w.quiz = nil
	}
}
