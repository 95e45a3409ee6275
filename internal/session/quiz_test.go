package session

import (
	"context"
	"errors"
	"testing"

	"github.com/phrazzld/chemlab-api/internal/domain"
	"github.com/phrazzld/chemlab-api/internal/generation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mountQuiz(t *testing.T, f *fixture) *Quiz {
	t.Helper()
	require.True(t, f.ws.Navigate(context.Background(), domain.ViewTheory))
	q, err := f.ws.Quiz()
	require.NoError(t, err)
	return q
}

func quizState(t *testing.T, q *Quiz) QuizState {
	t.Helper()
	st, err := q.State()
	require.NoError(t, err)
	return st
}

func TestQuiz_Lifecycle(t *testing.T) {
	f := newFixture(t, rearCamera())
	q := mountQuiz(t, f)
	ctx := context.Background()

	st := quizState(t, q)
	assert.Equal(t, QuizNone, st.Phase)
	assert.Equal(t, "Atomic Structure", st.Topic)

	accepted, err := q.Answer(ctx, 0)
	require.NoError(t, err)
	assert.False(t, accepted, "nothing presented")

	require.NoError(t, q.StartQuiz(ctx, "Periodic Table"))
	st = quizState(t, q)
	assert.Equal(t, QuizLoading, st.Phase)
	assert.Nil(t, st.Question)

	accepted, err = q.Answer(ctx, 0)
	require.NoError(t, err)
	assert.False(t, accepted, "still loading")

	f.dispatcher.run(t, 0)
	st = quizState(t, q)
	assert.Equal(t, QuizPresented, st.Phase)
	require.NotNil(t, st.Question)
	assert.Equal(t, "Question about Periodic Table", st.Question.Question)

	_, err = q.Answer(ctx, 4)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, QuizPresented, quizState(t, q).Phase)

	accepted, err = q.Answer(ctx, 0)
	require.NoError(t, err)
	assert.True(t, accepted)
	st = quizState(t, q)
	assert.Equal(t, QuizAnswered, st.Phase)
	assert.True(t, st.IsCorrect())
	assert.Equal(t, 25, f.ws.Progression().Get().XP)

	accepted, err = q.Answer(ctx, 0)
	require.NoError(t, err)
	assert.False(t, accepted, "repeat answer is a no-op")
	assert.Equal(t, 25, f.ws.Progression().Get().XP)
	assert.Len(t, f.emitter.events, 1)
}

func TestQuiz_WrongAnswerAwardsNothing(t *testing.T) {
	f := newFixture(t, rearCamera())
	q := mountQuiz(t, f)
	ctx := context.Background()

	require.NoError(t, q.StartQuiz(ctx, "Stoichiometry"))
	f.dispatcher.run(t, 0)

	accepted, err := q.Answer(ctx, 2)
	require.NoError(t, err)
	assert.True(t, accepted)
	st := quizState(t, q)
	assert.False(t, st.IsCorrect())
	require.NotNil(t, st.Chosen)
	assert.Equal(t, 2, *st.Chosen)
	assert.Equal(t, 0, f.ws.Progression().Get().XP)
}

func TestQuiz_LatestRequestWins(t *testing.T) {
	f := newFixture(t, rearCamera())
	q := mountQuiz(t, f)
	ctx := context.Background()

	require.NoError(t, q.StartQuiz(ctx, "Atomic Structure"))
	require.NoError(t, q.StartQuiz(ctx, "Chemical Bonding"))

	f.dispatcher.run(t, 1)
	f.dispatcher.run(t, 0)

	st := quizState(t, q)
	assert.Equal(t, "Chemical Bonding", st.Topic)
	assert.Equal(t, "Question about Chemical Bonding", st.Question.Question)
}

func TestQuiz_RestartDiscardsAnswer(t *testing.T) {
	f := newFixture(t, rearCamera())
	q := mountQuiz(t, f)
	ctx := context.Background()

	require.NoError(t, q.StartQuiz(ctx, "Atomic Structure"))
	f.dispatcher.run(t, 0)
	_, _ = q.Answer(ctx, 1)

	require.NoError(t, q.StartQuiz(ctx, "Atomic Structure"))
	st := quizState(t, q)
	assert.Equal(t, QuizLoading, st.Phase)
	assert.Nil(t, st.Chosen)
}

func TestQuiz_SelectedTopicUsedWhenEmpty(t *testing.T) {
	f := newFixture(t, rearCamera())
	q := mountQuiz(t, f)

	require.NoError(t, q.SelectTopic("Acids & Bases"))
	require.NoError(t, q.StartQuiz(context.Background(), ""))
	f.dispatcher.run(t, 0)
	assert.Equal(t, []string{"Acids & Bases"}, f.assistant.quizTopics)

	assert.ErrorIs(t, q.SelectTopic(" "), domain.ErrValidation)
}

type failingGenerator struct{ generation.Unconfigured }

func (failingGenerator) GenerateQuiz(context.Context, string) (domain.QuizQuestion, error) {
	return domain.QuizQuestion{}, errors.New("upstream unavailable")
}

func TestQuiz_FailingGenerationPresentsCannedQuestion(t *testing.T) {
	f := newFixture(t, rearCamera())
	fallback, err := generation.NewFallback(failingGenerator{}, testLogger(), nil)
	require.NoError(t, err)
	f.ws.deps.Assistant = fallback
	q := mountQuiz(t, f)

	require.NoError(t, q.StartQuiz(context.Background(), "Acids & Bases"))
	f.dispatcher.run(t, 0)

	st := quizState(t, q)
	require.NotNil(t, st.Question)
	assert.Equal(t, "Which element has atomic number 1?", st.Question.Question)
	assert.Equal(t, 0, st.Question.Correct)

	accepted, err := q.Answer(context.Background(), 0)
	require.NoError(t, err)
	assert.True(t, accepted)
	assert.Equal(t, 25, f.ws.Progression().Get().XP)
}

func TestQuiz_RejectedTaskPresentsCannedQuestion(t *testing.T) {
	f := newFixture(t, rearCamera())
	q := mountQuiz(t, f)
	f.dispatcher.reject = errors.New("closed")

	require.NoError(t, q.StartQuiz(context.Background(), "Periodic Table"))
	st := quizState(t, q)
	assert.Equal(t, QuizPresented, st.Phase)
	assert.Equal(t, generation.DefaultQuiz(), *st.Question)
}

func TestQuiz_StateIsACopy(t *testing.T) {
	f := newFixture(t, rearCamera())
	q := mountQuiz(t, f)
	require.NoError(t, q.StartQuiz(context.Background(), "Periodic Table"))
	f.dispatcher.run(t, 0)

	st := quizState(t, q)
	st.Question.Options[0] = "changed"
	assert.Equal(t, "right", quizState(t, q).Question.Options[0])
}
