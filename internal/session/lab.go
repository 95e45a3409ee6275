package session

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/chemlab-api/internal/catalog"
	"github.com/phrazzld/chemlab-api/internal/domain"
	"github.com/phrazzld/chemlab-api/internal/generation"
	"github.com/phrazzld/chemlab-api/internal/task"
)

// noReactionMarker in a result means nothing happened and no XP is due.
const noReactionMarker = "no reaction"

// reactionTopic is the tutor topic used when asking about a reaction result.
const reactionTopic = "This reaction"

// LabState is a snapshot of the bench.
type LabState struct {
	Items    []domain.BenchItem `json:"items"`
	Reacting bool               `json:"reacting"`
	Result   string             `json:"result,omitempty"`
}

func (s LabState) clone() LabState {
	s.Items = append([]domain.BenchItem(nil), s.Items...)
	return s
}

func (s LabState) add(item domain.BenchItem) LabState {
	s = s.clone()
	s.Items = append(s.Items, item)
	return s
}

func (s LabState) remove(instanceID uuid.UUID) (LabState, bool) {
	for i, item := range s.Items {
		if item.InstanceID == instanceID {
			s = s.clone()
			s.Items = append(s.Items[:i], s.Items[i+1:]...)
			return s, true
		}
	}
	return s, false
}

func (s LabState) clear() LabState {
	return LabState{Items: []domain.BenchItem{}, Reacting: false}
}

func (s LabState) canReact() bool {
	return len(s.Items) >= generation.MinReactants && !s.Reacting
}

func (s LabState) startReaction() LabState {
	s.Reacting = true
	return s
}

func (s LabState) finishReaction(result string) LabState {
	s.Reacting = false
	s.Result = result
	return s
}

func (s LabState) dismissResult() LabState {
	s.Result = ""
	return s
}

func (s LabState) names() []string {
	names := make([]string, len(s.Items))
	for i, item := range s.Items {
		names[i] = item.Name
	}
	return names
}

// ReactionAwardsXP reports whether a reaction result earns the reaction bonus.
func ReactionAwardsXP(result string) bool {
	return !strings.Contains(strings.ToLower(result), noReactionMarker)
}

// Lab is the virtual lab bench session.
type Lab struct {
	mu      sync.Mutex
	state   LabState
	epoch   uint64
	mounted bool

	catalog    *catalog.Catalog
	assistant  generation.Assistant
	dispatcher task.Dispatcher
	progress   *Progression
	tutor      *Tutor
	delay      time.Duration
	logger     *slog.Logger
}

func newLab(deps Deps, progress *Progression, tutor *Tutor) *Lab {
	return &Lab{
		state:      LabState{Items: []domain.BenchItem{}},
		mounted:    true,
		catalog:    deps.Catalog,
		assistant:  deps.Assistant,
		dispatcher: deps.Dispatcher,
		progress:   progress,
		tutor:      tutor,
		delay:      deps.ReactionDelay,
		logger:     deps.Logger.With("component", "lab"),
	}
}

// State returns a copy of the bench.
func (l *Lab) State() (LabState, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.mounted {
		return LabState{}, ErrViewNotActive
	}
	return l.state.clone(), nil
}

// AddItem places a catalog tool or chemical on the bench.
func (l *Lab) AddItem(kind domain.ItemKind, catalogID string) (domain.BenchItem, error) {
	item, err := l.catalog.BenchItem(kind, catalogID)
	if err != nil {
		return domain.BenchItem{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.mounted {
		return domain.BenchItem{}, ErrViewNotActive
	}
	l.state = l.state.add(item)
	return item, nil
}

// RemoveItem removes the bench entry with instanceID.
func (l *Lab) RemoveItem(instanceID uuid.UUID) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.mounted {
		return ErrViewNotActive
	}
	next, ok := l.state.remove(instanceID)
	if !ok {
		return ErrItemNotFound
	}
	l.state = next
	return nil
}

// Clear empties the bench and its result. A reaction in flight is abandoned.
func (l *Lab) Clear() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.mounted {
		return ErrViewNotActive
	}
	l.epoch++
	l.state = l.state.clear()
	return nil
}

// DismissResult hides the last reaction result and keeps the bench. It
// reports false when there is no result to dismiss.
func (l *Lab) DismissResult() (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.mounted {
		return false, ErrViewNotActive
	}
	if l.state.Result == "" {
		return false, nil
	}
	l.state = l.state.dismissResult()
	return true, nil
}

// AskWhy asks the tutor to explain the last reaction result. It reports
// false when there is no result to ask about.
func (l *Lab) AskWhy(ctx context.Context) (bool, error) {
	l.mu.Lock()
	if !l.mounted {
		l.mu.Unlock()
		return false, ErrViewNotActive
	}
	result := l.state.Result
	l.mu.Unlock()

	if result == "" {
		return false, nil
	}
	if err := l.tutor.Ask(ctx, reactionTopic, result); err != nil {
		return false, err
	}
	return true, nil
}

// SimulateReaction analyses the chemicals on the bench after the configured
// delay. It reports false and does nothing when fewer than two items are on
// the bench or a reaction is already running.
func (l *Lab) SimulateReaction(ctx context.Context) (bool, error) {
	l.mu.Lock()
	if !l.mounted {
		l.mu.Unlock()
		return false, ErrViewNotActive
	}
	if !l.state.canReact() {
		l.mu.Unlock()
		return false, nil
	}
	l.state = l.state.startReaction()
	epoch := l.epoch
	names := l.state.names()
	l.mu.Unlock()

	l.logger.InfoContext(ctx, "reaction started", "reactants", len(names))

	submit(ctx, l.dispatcher, l.logger, task.TypeReaction,
		func(ctx context.Context) {
			if err := wait(ctx, l.delay); err != nil {
				l.complete(ctx, epoch, generation.ReactionFailed)
				return
			}
			l.complete(ctx, epoch, l.assistant.AnalyzeReaction(ctx, names))
		},
		func() { l.complete(ctx, epoch, generation.ReactionFailed) },
	)
	return true, nil
}

func (l *Lab) complete(ctx context.Context, epoch uint64, result string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if epoch != l.epoch || !l.mounted {
		l.logger.DebugContext(ctx, "discarding reaction result for cleared bench")
		return
	}
	l.state = l.state.finishReaction(result)

	if !ReactionAwardsXP(result) {
		return
	}
	if _, _, err := l.progress.AddXP(ctx, domain.XPSourceReaction, domain.ReactionXPBonus); err != nil {
		l.logger.ErrorContext(ctx, "failed to award reaction xp", "error", err)
	}
}

func (l *Lab) unmount() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.mounted = false
	l.epoch++
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
