package runtime_test

import (
	"context"
	"sync"

	"github.com/aretw0/gitquest/internal/runtime"
	"github.com/aretw0/gitquest/pkg/adapters/memory"
	"github.com/aretw0/gitquest/pkg/domain"
)

func intPtr(i int) *int { return &i }

// initAct walks through every step type once.
func initAct() *domain.Act {
	return &domain.Act{
		ID:      1,
		Title:   "The Empty Folder",
		Entry:   "opening",
		Summary: "You created your first repository.",
		NextAct: intPtr(2),
		Steps: []domain.Step{
			{
				ID: "opening", Type: domain.StepCinematic, Next: "mentor",
				Cinematic: &domain.CinematicPayload{Lines: []string{"A folder. Empty."}},
				Effects:   domain.Effects{VisualEvent: "fade-in", SoundEvent: "ambient"},
			},
			{
				ID: "mentor", Type: domain.StepDialog, Next: "init",
				Dialog: &domain.DialogPayload{Speaker: "Mentor", Text: "Let's track this folder."},
			},
			{
				ID: "init", Type: domain.StepTerminal, Next: "concept-repo",
				Terminal: &domain.TerminalPayload{
					Intro:   []string{"Type the command that creates a repository."},
					Pattern: `^git init$`,
					Success: []string{"Initialized empty Git repository in /quest/.git/"},
					Errors:  []string{"Not quite.", "Remember: git + init."},
					Hint:    "Try: git init",
					Marker:  "repo-initialized",
				},
				Effects: domain.Effects{VisualEvent: "repo-glow", VisualData: map[string]any{"color": "green"}},
			},
			{
				ID: "concept-repo", Type: domain.StepConcept, Next: "fix-readme",
				Concept: &domain.ConceptPayload{ConceptID: "repository", Title: "Repository"},
			},
			{
				ID: "fix-readme", Type: domain.StepEditor, Next: "done",
				Editor: &domain.EditorPayload{File: "README.md", Initial: "# Titel", Expected: "# Title", Success: []string{"README fixed."}},
			},
			{
				ID: "done", Type: domain.StepComplete,
			},
		},
	}
}

func newEngine(acts []*domain.Act, opts ...runtime.EngineOption) *runtime.Engine {
	return runtime.NewEngine(memory.NewLoader(acts...), opts...)
}

// recorder captures hook events in order.
type recorder struct {
	mu         sync.Mutex
	entered    []string
	left       []string
	lines      []domain.TerminalLine
	effects    []domain.Effect
	mismatches []domain.MismatchEvent
	completed  []domain.Completion
}

func (r *recorder) hooks() domain.Hooks {
	return domain.Hooks{
		OnStepEnter: func(_ context.Context, e *domain.StepEvent) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.entered = append(r.entered, e.StepID)
		},
		OnStepLeave: func(_ context.Context, e *domain.StepEvent) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.left = append(r.left, e.StepID)
		},
		OnLine: func(_ context.Context, e *domain.LineEvent) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.lines = append(r.lines, e.Line)
		},
		OnEffect: func(_ context.Context, e *domain.EffectEvent) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.effects = append(r.effects, e.Effect)
		},
		OnMismatch: func(_ context.Context, e *domain.MismatchEvent) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.mismatches = append(r.mismatches, *e)
		},
		OnActComplete: func(_ context.Context, e *domain.CompletionEvent) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.completed = append(r.completed, e.Completion)
		},
	}
}

func countKind(lines []domain.TerminalLine, kind domain.LineKind) int {
	n := 0
	for _, l := range lines {
		if l.Kind == kind {
			n++
		}
	}
	return n
}
