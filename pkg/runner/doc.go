/*
Package runner implements the terminal play loop and the view model shared by rich clients.

Runner drives a session.Session from line-based input: it prints the terminal log as it
grows, waits out cinematics, prompts for commands, and confirms editor fixes. It also hosts
the puzzle mini-games and boss encounters with small command languages.

	r := runner.NewRunner(
		runner.WithStore(store),
		runner.WithRenderer(renderer),
		runner.WithAutoAdvance(true),
	)
	if err := r.Run(ctx, sess); err != nil {
		log.Fatal(err)
	}

Input is sanitized before it reaches the engine (size limit, UTF-8, control characters);
GITQUEST_MAX_INPUT_SIZE overrides the size limit.
*/
package runner
