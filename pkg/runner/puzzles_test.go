package runner_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/aretw0/gitquest/pkg/boss"
	"github.com/aretw0/gitquest/pkg/puzzle"
	"github.com/aretw0/gitquest/pkg/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scripted(input string, out *bytes.Buffer) *runner.Runner {
	return runner.NewRunner(
		runner.WithInput(strings.NewReader(input)),
		runner.WithOutput(out),
		runner.WithHeadless(true),
	)
}

func TestPlayMerge(t *testing.T) {
	var out bytes.Buffer
	board := puzzle.NewMergeBoard(puzzle.MergeLevel{ID: "m", Title: "Two Blocks", Blocks: []string{"B", "A"}, Solution: []string{"A", "B"}})

	solved, err := scripted("take 2\ncheck\ntake 9\ntake 1\ncheck\n", &out).PlayMerge(context.Background(), board)
	require.NoError(t, err)
	assert.True(t, solved)
	assert.Contains(t, out.String(), "Not quite.")
	assert.Contains(t, out.String(), "Error:")
	assert.Equal(t, []string{"A", "B"}, board.Merged)
}

func TestPlayRebase(t *testing.T) {
	var out bytes.Buffer
	board := puzzle.NewRebaseBoard(puzzle.RebaseLevel{
		ID:              "r",
		Main:            []puzzle.Commit{{ID: "M1"}},
		Feature:         []puzzle.Commit{{ID: "F2"}, {ID: "F1"}},
		CorrectTimeline: []string{"M1", "F1", "F2"},
	})

	solved, err := scripted("check\nmove 3 2\ncheck\n", &out).PlayRebase(context.Background(), board)
	require.NoError(t, err)
	assert.True(t, solved)
	assert.Contains(t, out.String(), "not in the right order")
}

func TestPlayCherryPick(t *testing.T) {
	var out bytes.Buffer
	board := puzzle.NewCherryPickBoard(puzzle.CherryPickLevel{
		ID:            "c",
		Main:          []string{"A", "B"},
		Feature:       []puzzle.Commit{{ID: "C", Key: true, Message: "fix crash"}, {ID: "D", Message: "wip"}},
		ExpectedFinal: []string{"A", "B", "C"},
	})

	solved, err := scripted("pick D\ncheck\nunpick D\npick C\ncheck\n", &out).PlayCherryPick(context.Background(), board)
	require.NoError(t, err)
	assert.True(t, solved)
	assert.Contains(t, out.String(), puzzle.ReasonDistractor)
}

func TestPlayPuzzle_Quit(t *testing.T) {
	var out bytes.Buffer
	board := puzzle.NewMergeBoard(puzzle.MergeLevel{ID: "m", Blocks: []string{"A"}, Solution: []string{"A"}})

	solved, err := scripted("quit\n", &out).PlayMerge(context.Background(), board)
	require.NoError(t, err)
	assert.False(t, solved)
}

func twoHunkLevel(timeLimit int) boss.Level {
	return boss.Level{
		ID:        "monster",
		Title:     "Merge Monster",
		TimeLimit: timeLimit,
		Files: []puzzle.ConflictFile{{
			Name: "app.go",
			Hunks: []puzzle.Hunk{
				{ID: "h1", Current: "v1", Incoming: "v2", Solution: puzzle.ChoiceIncoming},
				{ID: "h2", Current: "x", Incoming: "y", Solution: puzzle.ChoiceBoth},
			},
		}},
		Interrupts: []boss.Rule{{Kind: boss.TriggerMistake, Speaker: "Ada", Message: "Careful!"}},
	}
}

func manualEncounter(t *testing.T, level boss.Level) *boss.Encounter {
	t.Helper()
	enc, err := boss.NewEncounter(level, boss.WithTimerOptions(boss.WithInterval(0)))
	require.NoError(t, err)
	return enc
}

func TestPlayBoss_Victory(t *testing.T) {
	var out bytes.Buffer
	enc := manualEncounter(t, twoHunkLevel(60))

	outcome, err := scripted("app.go h1 current\napp.go h9 both\napp.go h2 both\n", &out).PlayBoss(context.Background(), enc)
	require.NoError(t, err)
	assert.Equal(t, boss.OutcomeVictory, outcome)

	text := out.String()
	assert.Contains(t, text, "That broke the build!")
	assert.Contains(t, text, "Ada: Careful!")
	assert.Contains(t, text, "Victory! Score: 600")
}

func TestPlayBoss_DefeatByPenalty(t *testing.T) {
	var out bytes.Buffer
	enc := manualEncounter(t, twoHunkLevel(5))

	outcome, err := scripted("app.go h1 current\napp.go h2 both\n", &out).PlayBoss(context.Background(), enc)
	require.NoError(t, err)
	assert.Equal(t, boss.OutcomeDefeat, outcome)
	assert.Contains(t, out.String(), "Time's up.")
}

func TestPlayBoss_InvalidChoice(t *testing.T) {
	var out bytes.Buffer
	enc := manualEncounter(t, twoHunkLevel(60))

	outcome, err := scripted("app.go h1 mine\n", &out).PlayBoss(context.Background(), enc)
	require.NoError(t, err)
	assert.Equal(t, boss.OutcomePending, outcome)
	assert.Contains(t, out.String(), "is not current, incoming, or both")
	assert.Equal(t, 0, enc.Progress().ConflictsResolved)
}
