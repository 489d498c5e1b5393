package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/aretw0/gitquest/pkg/boss"
	"github.com/aretw0/gitquest/pkg/puzzle"
)

// commandLoop reads puzzle commands until handle reports done, the player quits, or input ends.
// Leaving is reported as solved=false with a nil error.
func (r *Runner) commandLoop(ctx context.Context, show func(), handle func(args []string) (bool, error)) (bool, error) {
	show()
	for {
		line, err := r.read(ctx, ">")
		if errors.Is(err, io.EOF) || errors.Is(err, errQuit) || errors.Is(err, context.Canceled) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}
		if args[0] == "show" {
			show()
			continue
		}
		done, err := handle(args)
		if err != nil {
			fmt.Fprintf(r.out, "Error: %v\n", err)
			continue
		}
		if done {
			return true, nil
		}
	}
}

// position parses a 1-based index as shown to the player.
func position(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%q is not a position", s)
	}
	return n - 1, nil
}

func positions(args []string, want int) ([]int, error) {
	if len(args) < want {
		return nil, fmt.Errorf("expected %d positions", want)
	}
	out := make([]int, 0, len(args))
	for _, a := range args {
		p, err := position(a)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *Runner) printList(label string, items []string) {
	fmt.Fprintf(r.out, "%s:\n", label)
	if len(items) == 0 {
		fmt.Fprintln(r.out, "  (empty)")
	}
	for i, it := range items {
		fmt.Fprintf(r.out, "  %d. %s\n", i+1, it)
	}
}

// PlayMerge runs a block-ordering puzzle. Commands: take N [AT], return N, move FROM TO, check.
func (r *Runner) PlayMerge(ctx context.Context, b *puzzle.MergeBoard) (bool, error) {
	show := func() {
		fmt.Fprintf(r.out, "== %s ==\n", b.Level.Title)
		if b.Level.Description != "" {
			r.printMarkdown(b.Level.Description)
		}
		r.printList("Available", b.Available)
		r.printList("Merged", b.Merged)
	}
	return r.commandLoop(ctx, show, func(args []string) (bool, error) {
		switch args[0] {
		case "take":
			p, err := positions(args[1:], 1)
			if err != nil {
				return false, err
			}
			at := -1
			if len(p) > 1 {
				at = p[1]
			}
			if err := b.Take(p[0], at); err != nil {
				return false, err
			}
		case "return":
			p, err := positions(args[1:], 1)
			if err != nil {
				return false, err
			}
			if err := b.Return(p[0]); err != nil {
				return false, err
			}
		case "move":
			p, err := positions(args[1:], 2)
			if err != nil {
				return false, err
			}
			if err := b.Move(p[0], p[1]); err != nil {
				return false, err
			}
		case "check":
			if b.Validate() {
				fmt.Fprintln(r.out, "Merge complete. Every block is where it belongs.")
				return true, nil
			}
			fmt.Fprintln(r.out, "Not quite. The merged file doesn't match yet.")
			return false, nil
		default:
			return false, fmt.Errorf("unknown command %q (take, return, move, check, show, quit)", args[0])
		}
		r.printList("Merged", b.Merged)
		return false, nil
	})
}

// PlayRebase runs a timeline-ordering puzzle. Commands: move FROM TO, check.
func (r *Runner) PlayRebase(ctx context.Context, b *puzzle.RebaseBoard) (bool, error) {
	show := func() {
		fmt.Fprintf(r.out, "== %s ==\n", b.Level.Title)
		r.printList("Timeline", b.Timeline)
	}
	return r.commandLoop(ctx, show, func(args []string) (bool, error) {
		switch args[0] {
		case "move":
			p, err := positions(args[1:], 2)
			if err != nil {
				return false, err
			}
			if err := b.Move(p[0], p[1]); err != nil {
				return false, err
			}
			r.printList("Timeline", b.Timeline)
			return false, nil
		case "check":
			if b.Validate() {
				fmt.Fprintln(r.out, "Rebase complete. History reads like a straight line.")
				return true, nil
			}
			fmt.Fprintln(r.out, "The timeline is not in the right order yet.")
			return false, nil
		}
		return false, fmt.Errorf("unknown command %q (move, check, show, quit)", args[0])
	})
}

// PlayCherryPick runs a cherry-pick puzzle. Commands: pick ID, unpick ID, check.
func (r *Runner) PlayCherryPick(ctx context.Context, b *puzzle.CherryPickBoard) (bool, error) {
	show := func() {
		fmt.Fprintf(r.out, "== %s ==\n", b.Level.Title)
		fmt.Fprintln(r.out, "Feature branch:")
		for _, c := range b.Level.Feature {
			fmt.Fprintf(r.out, "  %s  %s\n", c.ID, c.Message)
		}
		r.printList("main", b.Final)
	}
	return r.commandLoop(ctx, show, func(args []string) (bool, error) {
		if len(args) < 2 && (args[0] == "pick" || args[0] == "unpick") {
			return false, fmt.Errorf("%s needs a commit id", args[0])
		}
		switch args[0] {
		case "pick":
			if err := b.Pick(args[1]); err != nil {
				return false, err
			}
		case "unpick":
			if err := b.Unpick(args[1]); err != nil {
				return false, err
			}
		case "check":
			v := b.Validate()
			if v.OK {
				fmt.Fprintln(r.out, "Cherry-pick complete. Only the fix made it to main.")
				return true, nil
			}
			fmt.Fprintf(r.out, "Not yet: %s.\n", v.Reason)
			return false, nil
		default:
			return false, fmt.Errorf("unknown command %q (pick, unpick, check, show, quit)", args[0])
		}
		r.printList("main", b.Final)
		return false, nil
	})
}

// PlayBoss runs a boss encounter against the clock. Commands: FILE HUNK current|incoming|both.
// The countdown starts when the board is shown and the loop ends on victory, defeat, or quit.
func (r *Runner) PlayBoss(ctx context.Context, enc *boss.Encounter) (boss.Outcome, error) {
	level := enc.Level()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	enc.OnInterrupt(func(i boss.Interrupt) {
		if i.Rule.Speaker != "" {
			fmt.Fprintf(r.out, "\n%s: %s\n", i.Rule.Speaker, i.Rule.Message)
			return
		}
		fmt.Fprintf(r.out, "\n%s\n", i.Rule.Message)
	})
	enc.OnFinish(func(boss.Outcome) { cancel() })

	show := func() {
		fmt.Fprintf(r.out, "== %s == (%ds)\n", level.Title, enc.Remaining())
		for _, f := range enc.Files() {
			for _, h := range f.Hunks {
				status := " "
				if h.Resolved {
					status = "x"
				}
				fmt.Fprintf(r.out, "[%s] %s %s\n  current:  %s\n  incoming: %s\n", status, f.Name, h.ID, h.Current, h.Incoming)
			}
		}
	}

	if level.Intro != "" {
		r.printMarkdown(level.Intro)
	}
	enc.Start(ctx)
	defer enc.Stop()

	_, err := r.commandLoop(ctx, show, func(args []string) (bool, error) {
		if len(args) != 3 {
			return false, fmt.Errorf("usage: FILE HUNK current|incoming|both")
		}
		choice := puzzle.Choice(args[2])
		if !choice.Valid() {
			return false, fmt.Errorf("%q is not current, incoming, or both", args[2])
		}
		res, err := enc.Resolve(args[0], args[1], choice)
		if err != nil {
			return false, err
		}
		if res.Correct {
			fmt.Fprintf(r.out, "Clean resolution. %d/%d conflicts, %ds left.\n", res.Progress.ConflictsResolved, res.Progress.ConflictsTotal, res.Remaining)
		} else {
			fmt.Fprintf(r.out, "That broke the build! -%ds. %d/%d conflicts, %ds left.\n", level.PenaltySeconds, res.Progress.ConflictsResolved, res.Progress.ConflictsTotal, res.Remaining)
		}
		return res.Outcome != boss.OutcomePending, nil
	})
	if err != nil {
		return enc.Outcome(), err
	}

	outcome := enc.Outcome()
	switch outcome {
	case boss.OutcomeVictory:
		fmt.Fprintf(r.out, "Victory! Score: %d\n", enc.Score())
	case boss.OutcomeDefeat:
		fmt.Fprintln(r.out, "Time's up. The merge monster wins this round.")
	}
	return outcome, nil
}
