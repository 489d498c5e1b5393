package boss_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/gitquest/pkg/boss"
	"github.com/aretw0/gitquest/pkg/puzzle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLevel() boss.Level {
	return boss.Level{
		ID:             "merge-monster",
		TimeLimit:      60,
		PenaltySeconds: 10,
		Files: []puzzle.ConflictFile{
			{
				Name: "app.go",
				Hunks: []puzzle.Hunk{
					{ID: "h1", Current: "a", Incoming: "b", Solution: puzzle.ChoiceIncoming},
					{ID: "h2", Current: "c", Incoming: "d", Solution: puzzle.ChoiceCurrent},
					{ID: "h3", Current: "e", Incoming: "f", Solution: puzzle.ChoiceBoth},
				},
			},
		},
		Interrupts: []boss.Rule{
			{Kind: boss.TriggerMistake, Message: "The monster laughs."},
		},
	}
}

func newEncounter(t *testing.T, level boss.Level, clock *fakeClock) *boss.Encounter {
	t.Helper()
	e, err := boss.NewEncounter(level,
		boss.WithTimerOptions(boss.WithInterval(0)),
		boss.WithCoordinatorOptions(boss.WithClock(clock.Now)),
	)
	require.NoError(t, err)
	return e
}

func TestEncounter_Victory(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	e := newEncounter(t, testLevel(), clock)

	var finished []boss.Outcome
	e.OnFinish(func(o boss.Outcome) { finished = append(finished, o) })
	var resolved []puzzle.HunkResolved
	e.OnResolved(func(ev puzzle.HunkResolved) { resolved = append(resolved, ev) })

	e.Start(context.Background())
	defer e.Stop()

	res, err := e.Resolve("app.go", "h1", puzzle.ChoiceIncoming)
	require.NoError(t, err)
	assert.True(t, res.Correct)
	assert.Equal(t, 60, res.Remaining)
	assert.Nil(t, res.Interrupt)

	res, err = e.Resolve("app.go", "h2", puzzle.ChoiceIncoming)
	require.NoError(t, err)
	assert.False(t, res.Correct)
	assert.Equal(t, 50, res.Remaining, "penalty applied")
	require.NotNil(t, res.Interrupt)
	assert.Equal(t, "The monster laughs.", res.Interrupt.Rule.Message)

	res, err = e.Resolve("app.go", "h3", puzzle.ChoiceBoth)
	require.NoError(t, err)
	assert.Equal(t, boss.OutcomeVictory, res.Outcome)
	assert.Equal(t, 1, res.Progress.FilesResolved)
	assert.Equal(t, 2, res.Progress.Correct)

	assert.Equal(t, []boss.Outcome{boss.OutcomeVictory}, finished)
	assert.Len(t, resolved, 3)
	assert.Equal(t, 200+500, e.Score())

	_, err = e.Resolve("app.go", "h3", puzzle.ChoiceBoth)
	assert.ErrorIs(t, err, boss.ErrEncounterOver)
}

func TestEncounter_DefeatByPenalty(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	level := testLevel()
	level.TimeLimit = 15
	e := newEncounter(t, level, clock)

	var finished []boss.Outcome
	e.OnFinish(func(o boss.Outcome) { finished = append(finished, o) })
	e.Start(context.Background())

	_, err := e.Resolve("app.go", "h1", puzzle.ChoiceCurrent)
	require.NoError(t, err)
	res, err := e.Resolve("app.go", "h2", puzzle.ChoiceIncoming)
	require.NoError(t, err)

	assert.Equal(t, 0, res.Remaining)
	assert.Equal(t, boss.OutcomeDefeat, res.Outcome)
	assert.Equal(t, []boss.Outcome{boss.OutcomeDefeat}, finished)
	assert.Equal(t, 0, e.Score())
}

func TestEncounter_DefeatByTicks(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	level := testLevel()
	level.TimeLimit = 2
	level.Interrupts = []boss.Rule{{Kind: boss.TriggerTimeBelow, Threshold: 1, Message: "Hurry!"}}
	e := newEncounter(t, level, clock)

	var interrupts []string
	e.OnInterrupt(func(i boss.Interrupt) { interrupts = append(interrupts, i.Rule.Message) })
	e.Start(context.Background())

	e.Tick()
	e.Tick()
	e.Tick()

	assert.Equal(t, boss.OutcomeDefeat, e.Outcome())
	assert.Equal(t, []string{"Hurry!"}, interrupts)
}

func TestNewEncounter_InvalidLevel(t *testing.T) {
	_, err := boss.NewEncounter(boss.Level{ID: "empty"})
	assert.Error(t, err)

	level := testLevel()
	level.Interrupts = []boss.Rule{{Kind: "lunar_eclipse"}}
	_, err = boss.NewEncounter(level)
	assert.Error(t, err)
}

func TestEncounter_Defaults(t *testing.T) {
	level := testLevel()
	level.TimeLimit = 0
	level.PenaltySeconds = 0

	e, err := boss.NewEncounter(level)
	require.NoError(t, err)
	assert.Equal(t, boss.DefaultTimeLimit, e.Level().TimeLimit)
	assert.Equal(t, boss.DefaultPenaltySeconds, e.Level().PenaltySeconds)
	assert.Equal(t, boss.DefaultTimeLimit, e.Remaining())
}
