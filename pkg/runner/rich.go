package runner

import (
	"slices"

	"github.com/aretw0/gitquest/pkg/domain"
	"github.com/aretw0/gitquest/pkg/ports"
)

// View combines state, the current step, and the latest diff for rich clients (HTTP, MCP).
type View struct {
	State *domain.LessonState `json:"state"`
	Step  *domain.Step        `json:"step"`
	Diff  *domain.StateDiff   `json:"diff,omitempty"`
	Flags ViewFlags           `json:"flags"`
}

// ViewFlags are the derived indicators clients display next to the terminal.
type ViewFlags struct {
	Commands  int      `json:"commands"`
	Mistakes  int      `json:"mistakes"`
	Failures  int      `json:"failures_on_step"`
	Markers   []string `json:"markers,omitempty"`
	Completed bool     `json:"completed"`
}

// Render builds the view of state. diff may be nil.
func Render(engine ports.LessonEngine, state *domain.LessonState, diff *domain.StateDiff) (*View, error) {
	step, err := engine.Current(state)
	if err != nil {
		return nil, err
	}
	f := domain.DeriveFlags(state)
	flags := ViewFlags{
		Commands:  f.Commands,
		Mistakes:  f.Mistakes,
		Failures:  f.Failures(state.CurrentStepID),
		Completed: state.Status == domain.StatusCompleted,
	}
	for _, l := range state.Lines {
		if l.Marker != "" && !slices.Contains(flags.Markers, l.Marker) {
			flags.Markers = append(flags.Markers, l.Marker)
		}
	}
	return &View{State: state, Step: step, Diff: diff, Flags: flags}, nil
}
