package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/gitquest/internal/presentation/graph"
	"github.com/aretw0/gitquest/pkg/domain"
)

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name     string
		act      *domain.Act
		overlay  *graph.Overlay
		contains []string
		excludes []string
	}{
		{
			name: "Shapes",
			act: &domain.Act{Entry: "intro", Steps: []domain.Step{
				{ID: "intro", Type: domain.StepCinematic, Next: "init"},
				{ID: "init", Type: domain.StepTerminal, Next: "fix"},
				{ID: "fix", Type: domain.StepEditor, Next: "end"},
				{ID: "end", Type: domain.StepComplete},
			}},
			contains: []string{
				`intro(("intro <br/> cinematic"))`,
				`init[/"init <br/> terminal"/]`,
				`fix[["fix <br/> editor"]]`,
				`end(["end <br/> complete"])`,
				"intro --> init",
			},
			excludes: []string{"act_complete"},
		},
		{
			name: "Sanitized IDs",
			act: &domain.Act{Entry: "a", Steps: []domain.Step{
				{ID: "a", Type: domain.StepDialog, Next: "git-add.intro"},
				{ID: "git-add.intro", Type: domain.StepDialog, Next: domain.ActComplete},
			}},
			contains: []string{
				`git_add_intro["git-add.intro <br/> dialog"]`,
				"a --> git_add_intro",
				"git_add_intro --> act_complete",
				`act_complete(["act-complete"])`,
			},
		},
		{
			name: "Outcome Transitions",
			act: &domain.Act{Entry: "a", Steps: []domain.Step{
				{ID: "a", Type: domain.StepTerminal, Transitions: []domain.Transition{
					{On: domain.OutcomeFailure, MinFailures: 3, To: "help"},
					{On: domain.OutcomeSuccess, To: "b"},
				}},
			}},
			contains: []string{
				"a -.->|failure x3| help",
				"a -->|success| b",
			},
		},
		{
			name: "Overlay",
			act: &domain.Act{Entry: "a", Steps: []domain.Step{
				{ID: "a", Type: domain.StepDialog, Next: "b"},
				{ID: "b", Type: domain.StepDialog, Next: domain.ActComplete},
			}},
			overlay: graph.OverlayFor(&domain.LessonState{History: []string{"a", "a"}, CurrentStepID: "b"}),
			contains: []string{
				"class a visited;",
				"class b current;",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(tt.act, tt.overlay)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("GenerateMermaid() = \n%v\nWant substring: %v", got, want)
				}
			}
			for _, unwanted := range tt.excludes {
				if strings.Contains(got, unwanted) {
					t.Errorf("GenerateMermaid() = \n%v\nUnexpected substring: %v", got, unwanted)
				}
			}
			if strings.Count(got, "class a visited;") > 1 {
				t.Errorf("visited classes not deduplicated:\n%v", got)
			}
		})
	}
}
