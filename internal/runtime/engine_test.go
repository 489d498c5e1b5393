package runtime_test

import (
	"context"
	"testing"

	"github.com/aretw0/gitquest/internal/runtime"
	"github.com/aretw0/gitquest/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// advanceTo drives the init act from its entry to the terminal step.
func advanceTo(t *testing.T, engine *runtime.Engine, ctx context.Context, opts domain.StartOptions) *domain.LessonState {
	t.Helper()
	state, err := engine.Start(ctx, "s1", 1, opts)
	require.NoError(t, err)
	state, err = engine.Elapse(ctx, state)
	require.NoError(t, err)
	state, err = engine.Acknowledge(ctx, state)
	require.NoError(t, err)
	require.Equal(t, "init", state.CurrentStepID)
	return state
}

func TestEngine_FullAct(t *testing.T) {
	rec := &recorder{}
	engine := newEngine([]*domain.Act{initAct()}, runtime.WithHooks(rec.hooks()))
	ctx := context.Background()

	state, err := engine.Start(ctx, "s1", 1, domain.StartOptions{})
	require.NoError(t, err)
	assert.Equal(t, "opening", state.CurrentStepID)
	assert.Equal(t, domain.StatusActive, state.Status)
	require.Len(t, state.Effects, 1, "cinematic emits its effects on entry")
	assert.Equal(t, "fade-in", state.Effects[0].VisualEvent)

	step, err := engine.Current(state)
	require.NoError(t, err)
	assert.Equal(t, domain.StepCinematic, step.Type)

	state, err = engine.Elapse(ctx, state)
	require.NoError(t, err)
	state, err = engine.Acknowledge(ctx, state)
	require.NoError(t, err)
	require.Equal(t, "init", state.CurrentStepID)
	assert.Equal(t, domain.LineInfo, state.Lines[0].Kind, "terminal intro is written on entry")

	state, err = engine.SubmitCommand(ctx, state, "  git init  ")
	require.NoError(t, err)
	assert.Equal(t, "concept-repo", state.CurrentStepID)

	state, err = engine.Dismiss(ctx, state, "Escape")
	require.NoError(t, err)
	state, err = engine.ConfirmEdit(ctx, state, domain.SourcePlayer)
	require.NoError(t, err)

	assert.Equal(t, "done", state.CurrentStepID)
	assert.Equal(t, domain.StatusCompleted, state.Status)
	require.NotNil(t, state.Completion)
	assert.Equal(t, "You created your first repository.", state.Completion.Summary)
	require.NotNil(t, state.Completion.NextAct)
	assert.Equal(t, 2, *state.Completion.NextAct)

	assert.Equal(t, []string{"opening", "mentor", "init", "concept-repo", "fix-readme", "done"}, state.History)
	assert.Equal(t, state.History, rec.entered)
	assert.Equal(t, []string{"opening", "mentor", "init", "concept-repo", "fix-readme"}, rec.left)
	assert.Len(t, rec.completed, 1)
	assert.Equal(t, state.Lines, rec.lines, "every appended line is reported through OnLine")

	_, err = engine.SubmitCommand(ctx, state, "git init")
	assert.ErrorIs(t, err, domain.ErrActCompleted)
}

func TestEngine_SuccessAdvancesOnce(t *testing.T) {
	engine := newEngine([]*domain.Act{initAct()})
	ctx := context.Background()
	state := advanceTo(t, engine, ctx, domain.StartOptions{})

	next, err := engine.SubmitCommand(ctx, state, "git init")
	require.NoError(t, err)
	assert.Equal(t, "concept-repo", next.CurrentStepID)

	diff := domain.Diff(state, next)
	require.NotNil(t, diff)
	require.Len(t, diff.Lines, 2, "one command line plus one success block")
	assert.Equal(t, domain.OutcomeSuccess, diff.Lines[0].Outcome)
	assert.Equal(t, domain.LineSuccess, diff.Lines[1].Kind)
	assert.Equal(t, "repo-initialized", diff.Lines[1].Marker)
	require.Len(t, diff.Effects, 1)
	assert.Equal(t, "green", diff.Effects[0].VisualData["color"])

	// The step changed, so the same command is no longer a terminal submission.
	_, err = engine.SubmitCommand(ctx, next, "git init")
	assert.ErrorIs(t, err, domain.ErrActionNotAllowed)
	assert.Equal(t, 1, countKind(next.Lines, domain.LineSuccess))
	assert.True(t, domain.DeriveFlags(next).Reached("repo-initialized"))
}

func TestEngine_FailureRetainsStep(t *testing.T) {
	rec := &recorder{}
	engine := newEngine([]*domain.Act{initAct()}, runtime.WithHooks(rec.hooks()))
	ctx := context.Background()
	state := advanceTo(t, engine, ctx, domain.StartOptions{})
	before := len(state.Lines)

	const n = 5
	for i := 1; i <= n; i++ {
		next, err := engine.SubmitCommand(ctx, state, "GIT INIT")
		require.NoError(t, err)
		assert.Equal(t, "init", next.CurrentStepID)
		assert.Len(t, next.Lines, before+i*3, "each failure appends the command and two error lines")
		state = next
	}

	assert.Equal(t, n*2, countKind(state.Lines, domain.LineError))
	assert.Zero(t, countKind(state.Lines, domain.LineSuccess))
	assert.Empty(t, state.Effects[1:], "no success effects were emitted")
	assert.Equal(t, n, domain.DeriveFlags(state).Failures("init"))

	require.Len(t, rec.mismatches, n)
	assert.Equal(t, n, rec.mismatches[n-1].Failures)
	assert.Equal(t, "GIT INIT", rec.mismatches[0].Input)
}

func TestEngine_InputNotMutated(t *testing.T) {
	engine := newEngine([]*domain.Act{initAct()})
	ctx := context.Background()
	state := advanceTo(t, engine, ctx, domain.StartOptions{})
	snapshot := state.Clone()

	_, err := engine.SubmitCommand(ctx, state, "git status")
	require.NoError(t, err)
	_, err = engine.SubmitCommand(ctx, state, "git init")
	require.NoError(t, err)

	assert.Equal(t, snapshot, state)
}

func TestEngine_BlankInputIgnored(t *testing.T) {
	engine := newEngine([]*domain.Act{initAct()})
	ctx := context.Background()
	state := advanceTo(t, engine, ctx, domain.StartOptions{})

	next, err := engine.SubmitCommand(ctx, state, "   ")
	require.NoError(t, err)
	assert.Nil(t, domain.Diff(state, next))
}

func TestEngine_DefaultErrorLine(t *testing.T) {
	act := initAct()
	act.Steps[2].Terminal.Errors = nil
	engine := newEngine([]*domain.Act{act})
	ctx := context.Background()
	state := advanceTo(t, engine, ctx, domain.StartOptions{})

	next, err := engine.SubmitCommand(ctx, state, "git commit")
	require.NoError(t, err)
	last := next.Lines[len(next.Lines)-1]
	assert.Equal(t, domain.LineError, last.Kind)
	assert.Equal(t, runtime.DefaultErrorLine, last.Text)
}

func TestEngine_ActionNotAllowed(t *testing.T) {
	engine := newEngine([]*domain.Act{initAct()})
	ctx := context.Background()

	state, err := engine.Start(ctx, "s1", 1, domain.StartOptions{})
	require.NoError(t, err)
	snapshot := state.Clone()

	_, err = engine.Acknowledge(ctx, state)
	assert.ErrorIs(t, err, domain.ErrActionNotAllowed)
	_, err = engine.SubmitCommand(ctx, state, "git init")
	assert.ErrorIs(t, err, domain.ErrActionNotAllowed)
	_, err = engine.ConfirmEdit(ctx, state, domain.SourceExternal)
	assert.ErrorIs(t, err, domain.ErrActionNotAllowed)
	_, err = engine.Dismiss(ctx, state, "Enter")
	assert.ErrorIs(t, err, domain.ErrActionNotAllowed)

	assert.Equal(t, snapshot, state)
}

func TestEngine_ConceptContinueKeys(t *testing.T) {
	engine := newEngine([]*domain.Act{initAct()})
	ctx := context.Background()
	state := advanceTo(t, engine, ctx, domain.StartOptions{})
	state, err := engine.SubmitCommand(ctx, state, "git init")
	require.NoError(t, err)

	for _, key := range append([]string{""}, domain.ContinueKeys...) {
		next, err := engine.Dismiss(ctx, state, key)
		require.NoError(t, err, "key %q", key)
		assert.Equal(t, "fix-readme", next.CurrentStepID)
	}

	_, err = engine.Dismiss(ctx, state, "Tab")
	assert.ErrorIs(t, err, domain.ErrActionNotAllowed)
}

func TestEngine_ReadOnlyEditor(t *testing.T) {
	act := initAct()
	act.Steps[4].Editor.ReadOnly = true
	engine := newEngine([]*domain.Act{act})
	ctx := context.Background()

	state := advanceTo(t, engine, ctx, domain.StartOptions{})
	state, err := engine.SubmitCommand(ctx, state, "git init")
	require.NoError(t, err)
	state, err = engine.Dismiss(ctx, state, "click")
	require.NoError(t, err)
	require.Equal(t, "fix-readme", state.CurrentStepID)

	_, err = engine.ConfirmEdit(ctx, state, domain.SourcePlayer)
	assert.ErrorIs(t, err, domain.ErrActionNotAllowed)

	next, err := engine.ConfirmEdit(ctx, state, domain.SourceExternal)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, next.Status)
	assert.Equal(t, "README fixed.", next.Lines[len(next.Lines)-1].Text)
}

func TestEngine_Inspect(t *testing.T) {
	engine := newEngine([]*domain.Act{initAct()})

	steps, err := engine.Inspect(1)
	require.NoError(t, err)
	assert.Len(t, steps, 6)

	_, err = engine.Inspect(9)
	assert.ErrorIs(t, err, domain.ErrActNotFound)
}
