/*
Package gitquest is an interactive tutorial engine that teaches git through short acts of
narrative steps, terminal challenges, and puzzle mini-games.

An act is a directed graph of steps (cinematic, dialog, terminal, editor, concept, complete).
The engine is stateless: every player action takes a LessonState and returns the next one,
so hosts decide where state lives (memory, files, Redis) and how it is presented (terminal,
HTTP, MCP).

# Usage

	eng, err := gitquest.New()
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	state, err := eng.Start(ctx, "player-1", 1, domain.StartOptions{HintsEnabled: true})
	if err != nil {
		log.Fatal(err)
	}

	for state.Status != domain.StatusCompleted {
		step, _ := eng.Current(state)
		switch step.Type {
		case domain.StepTerminal:
			state, err = eng.SubmitCommand(ctx, state, readLine())
		case domain.StepDialog:
			state, err = eng.Acknowledge(ctx, state)
		// ...
		}
	}

A command that does not match the step pattern is not an error: the returned state carries
the failure lines and the player stays on the step. Actions that the current step does not
accept return domain.ErrActionNotAllowed and leave the state untouched.

Puzzle levels (merge, rebase, cherry-pick) live in pkg/puzzle and boss encounters in pkg/boss.
pkg/session groups one player's lesson state, open puzzle, and boss encounter.
*/
package gitquest
