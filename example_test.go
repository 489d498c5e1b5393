package gitquest_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/gitquest"
	"github.com/aretw0/gitquest/pkg/adapters/memory"
	"github.com/aretw0/gitquest/pkg/domain"
)

// ExampleNew_memory plays a two-step act defined in code.
func ExampleNew_memory() {
	loader := memory.NewLoader(&domain.Act{
		ID:    1,
		Entry: "intro",
		Steps: []domain.Step{
			{ID: "intro", Type: domain.StepDialog, Next: "init", Dialog: &domain.DialogPayload{Speaker: "Mentor", Text: "Let's start."}},
			{ID: "init", Type: domain.StepTerminal, Next: domain.ActComplete, Terminal: &domain.TerminalPayload{
				Pattern: `^git init$`,
				Success: []string{"Initialized empty Git repository"},
			}},
		},
	})

	engine, err := gitquest.New(gitquest.WithLoader(loader))
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	state, err := engine.Start(ctx, "example", 1, domain.StartOptions{})
	if err != nil {
		log.Fatal(err)
	}
	if state, err = engine.Acknowledge(ctx, state); err != nil {
		log.Fatal(err)
	}

	state, _ = engine.SubmitCommand(ctx, state, "git commit")
	fmt.Println("after mistake:", state.CurrentStepID)

	state, _ = engine.SubmitCommand(ctx, state, "git init")
	fmt.Println("status:", state.Status)
	for _, l := range state.Lines {
		fmt.Printf("%s: %s\n", l.Kind, l.Text)
	}
	// Output:
	// after mistake: init
	// status: completed
	// command: git commit
	// error: That command didn't do what we need here. Try again.
	// command: git init
	// success: Initialized empty Git repository
}
