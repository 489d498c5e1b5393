package runtime_test

import (
	"context"
	"testing"

	"github.com/aretw0/gitquest/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_HintShownOnce(t *testing.T) {
	engine := newEngine([]*domain.Act{initAct()})
	ctx := context.Background()
	state := advanceTo(t, engine, ctx, domain.StartOptions{HintsEnabled: true})

	for i := 0; i < 6; i++ {
		var err error
		state, err = engine.SubmitCommand(ctx, state, "git start")
		require.NoError(t, err)
	}

	var hints []domain.TerminalLine
	for _, l := range state.Lines {
		if l.Kind == domain.LineInfo && l.Text == "Try: git init" {
			hints = append(hints, l)
		}
	}
	require.Len(t, hints, 1)
	assert.Equal(t, "init", hints[0].StepID)
}

func TestEngine_HintThresholdAndDisabled(t *testing.T) {
	act := initAct()
	act.Steps[2].Terminal.HintAfter = 1
	engine := newEngine([]*domain.Act{act})
	ctx := context.Background()

	on := advanceTo(t, engine, ctx, domain.StartOptions{HintsEnabled: true})
	on, err := engine.SubmitCommand(ctx, on, "nope")
	require.NoError(t, err)
	assert.Equal(t, "Try: git init", on.Lines[len(on.Lines)-1].Text)

	off := advanceTo(t, engine, ctx, domain.StartOptions{})
	off, err = engine.SubmitCommand(ctx, off, "nope")
	require.NoError(t, err)
	assert.Equal(t, domain.LineError, off.Lines[len(off.Lines)-1].Kind)
}

// rescueAct branches to a help step after two failures and back to the challenge.
func rescueAct() *domain.Act {
	return &domain.Act{
		ID:    3,
		Entry: "stage",
		Steps: []domain.Step{
			{
				ID: "stage", Type: domain.StepTerminal, Next: domain.ActComplete,
				Transitions: []domain.Transition{
					{On: domain.OutcomeFailure, MinFailures: 2, To: "explain-staging"},
				},
				Terminal: &domain.TerminalPayload{Pattern: `^git add `, Success: []string{"staged"}},
			},
			{
				ID: "explain-staging", Type: domain.StepConcept, Next: "stage",
				Concept: &domain.ConceptPayload{ConceptID: "staging-area"},
				Effects: domain.Effects{SoundEvent: "page-turn"},
			},
		},
		Summary: "Staged.",
	}
}

func TestEngine_FailureTransition(t *testing.T) {
	engine := newEngine([]*domain.Act{rescueAct()})
	ctx := context.Background()

	state, err := engine.Start(ctx, "s2", 3, domain.StartOptions{})
	require.NoError(t, err)

	state, err = engine.SubmitCommand(ctx, state, "git stage")
	require.NoError(t, err)
	assert.Equal(t, "stage", state.CurrentStepID)

	state, err = engine.SubmitCommand(ctx, state, "git stage")
	require.NoError(t, err)
	assert.Equal(t, "explain-staging", state.CurrentStepID)
	assert.Equal(t, "page-turn", state.Effects[len(state.Effects)-1].SoundEvent)

	state, err = engine.Dismiss(ctx, state, "Space")
	require.NoError(t, err)
	assert.Equal(t, "stage", state.CurrentStepID)

	// Partial patterns accept trailing arguments.
	state, err = engine.SubmitCommand(ctx, state, "git add README.md")
	require.NoError(t, err)
	assert.Equal(t, domain.ActComplete, state.CurrentStepID)
	assert.Equal(t, domain.StatusCompleted, state.Status)
	assert.Equal(t, "Staged.", state.Completion.Summary)
	assert.Nil(t, state.Completion.NextAct, "final act has no successor")

	step, err := engine.Current(state)
	require.NoError(t, err)
	assert.Equal(t, domain.StepComplete, step.Type)
	assert.Equal(t, "Staged.", step.Complete.Summary)
}

func TestEngine_CompletePayloadOverridesAct(t *testing.T) {
	act := initAct()
	act.Entry = "done"
	act.Steps = []domain.Step{{
		ID: "done", Type: domain.StepComplete,
		Complete: &domain.CompletePayload{Summary: "Custom wrap-up.", NextAct: intPtr(7)},
	}}
	engine := newEngine([]*domain.Act{act})

	state, err := engine.Start(context.Background(), "s3", 1, domain.StartOptions{})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, state.Status)
	assert.Equal(t, "Custom wrap-up.", state.Completion.Summary)
	assert.Equal(t, 7, *state.Completion.NextAct)
}

func TestEngine_ConfigErrorFailsFast(t *testing.T) {
	act := initAct()
	act.Steps[1].Next = "missing"
	engine := newEngine([]*domain.Act{act})

	_, err := engine.Start(context.Background(), "s4", 1, domain.StartOptions{})
	require.Error(t, err)
	assert.True(t, domain.IsConfigError(err))

	_, err = engine.LoadAct(1)
	assert.True(t, domain.IsConfigError(err), "invalid acts are never cached")
}

func TestEngine_UnknownAct(t *testing.T) {
	engine := newEngine(nil)
	_, err := engine.Start(context.Background(), "s5", 42, domain.StartOptions{})
	assert.ErrorIs(t, err, domain.ErrActNotFound)
}
