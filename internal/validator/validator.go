package validator

import (
	"errors"
	"fmt"

	"github.com/aretw0/gitquest/pkg/domain"
	"github.com/aretw0/gitquest/pkg/matcher"
)

// ValidateAct checks an act for authoring defects: unknown step types, mismatched payloads,
// patterns that do not compile, broken successors, and steps unreachable from the entry.
// Every defect is reported as a *domain.ConfigError; the result joins all of them.
func ValidateAct(act *domain.Act) error {
	if act == nil {
		return errors.New("nil act")
	}

	var errs []error
	fail := func(stepID, format string, args ...any) {
		errs = append(errs, &domain.ConfigError{ActID: act.ID, StepID: stepID, Reason: fmt.Sprintf(format, args...)})
	}

	ids := make(map[string]bool, len(act.Steps))
	for _, s := range act.Steps {
		if s.ID == "" {
			fail("", "step without id")
			continue
		}
		if s.ID == domain.ActComplete {
			fail(s.ID, "step id collides with the completion sentinel")
		}
		if ids[s.ID] {
			fail(s.ID, "duplicate step id")
		}
		ids[s.ID] = true
	}

	completes := false
	for i := range act.Steps {
		s := &act.Steps[i]
		if !s.Type.Valid() {
			fail(s.ID, "unknown step type %q", s.Type)
			continue
		}
		if !s.HasPayloadFor() {
			fail(s.ID, "payload does not match type %q", s.Type)
			continue
		}
		if s.Type == domain.StepTerminal {
			if s.Terminal.Pattern == "" {
				fail(s.ID, "terminal step without pattern")
			} else if _, err := matcher.Compile(s.Terminal.Pattern); err != nil {
				fail(s.ID, "invalid pattern: %v", err)
			}
		}
		if s.Type == domain.StepComplete {
			completes = true
			if len(s.Successors()) > 0 {
				fail(s.ID, "complete step cannot have successors")
			}
			continue
		}

		for _, t := range s.Transitions {
			if t.On != domain.OutcomeSuccess && t.On != domain.OutcomeFailure {
				fail(s.ID, "transition on unknown outcome %q", t.On)
			}
			if t.To == "" {
				fail(s.ID, "transition without target")
			}
		}
		if s.Resolve(domain.OutcomeSuccess, 0) == "" {
			fail(s.ID, "no successor on success")
		}
		for _, next := range s.Successors() {
			if next == domain.ActComplete {
				completes = true
				continue
			}
			if next != "" && !ids[next] {
				fail(s.ID, "unknown successor %q", next)
			}
		}
	}

	if act.Entry == "" {
		fail("", "act has no entry step")
	} else if !ids[act.Entry] {
		fail("", "entry step %q not found", act.Entry)
	} else {
		reached := Reachable(act)
		for _, s := range act.Steps {
			if s.ID != "" && !reached[s.ID] {
				fail(s.ID, "unreachable from entry %q", act.Entry)
			}
		}
	}
	if !completes {
		fail("", "act never completes")
	}

	return errors.Join(errs...)
}

// Reachable crawls the step graph breadth-first from the entry step.
func Reachable(act *domain.Act) map[string]bool {
	visited := make(map[string]bool)
	queue := []string{act.Entry}

	for len(queue) > 0 {
		currentID := queue[0]
		queue = queue[1:]

		if visited[currentID] {
			continue
		}
		step, ok := act.Step(currentID)
		if !ok {
			continue
		}
		visited[currentID] = true

		for _, target := range step.Successors() {
			if target == "" || target == domain.ActComplete {
				continue // Sink state
			}
			if !visited[target] {
				queue = append(queue, target)
			}
		}
	}
	return visited
}
