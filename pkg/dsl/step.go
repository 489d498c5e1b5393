package dsl

import "github.com/aretw0/gitquest/pkg/domain"

// StepBuilder provides a fluent API for configuring a step.
type StepBuilder struct {
	step domain.Step
}

// Then sets the default successor (a step ID or domain.ActComplete).
func (s *StepBuilder) Then(next string) *StepBuilder {
	s.step.Next = next
	return s
}

// Finish makes the step end the act without a complete step.
func (s *StepBuilder) Finish() *StepBuilder {
	return s.Then(domain.ActComplete)
}

// OnFailure branches to target once the step has failed at least minFailures times.
func (s *StepBuilder) OnFailure(minFailures int, target string) *StepBuilder {
	s.step.Transitions = append(s.step.Transitions, domain.Transition{
		On:          domain.OutcomeFailure,
		MinFailures: minFailures,
		To:          target,
	})
	return s
}

// OnSuccess branches to target on success, ahead of Then.
func (s *StepBuilder) OnSuccess(target string) *StepBuilder {
	s.step.Transitions = append(s.step.Transitions, domain.Transition{
		On: domain.OutcomeSuccess,
		To: target,
	})
	return s
}

// Visual attaches a visual effect token.
func (s *StepBuilder) Visual(event string, data map[string]any) *StepBuilder {
	s.step.Effects.VisualEvent = event
	s.step.Effects.VisualData = data
	return s
}

// Sound attaches a sound effect token.
func (s *StepBuilder) Sound(event string) *StepBuilder {
	s.step.Effects.SoundEvent = event
	return s
}

// Duration sets the auto-advance delay of a cinematic step.
func (s *StepBuilder) Duration(ms int) *StepBuilder {
	if s.step.Cinematic != nil {
		s.step.Cinematic.DurationMS = ms
	}
	return s
}

// Intro adds lines printed before a terminal prompt.
func (s *StepBuilder) Intro(lines ...string) *StepBuilder {
	if s.step.Terminal != nil {
		s.step.Terminal.Intro = append(s.step.Terminal.Intro, lines...)
	}
	return s
}

// Success adds lines printed when a terminal or editor step is solved.
func (s *StepBuilder) Success(lines ...string) *StepBuilder {
	switch {
	case s.step.Terminal != nil:
		s.step.Terminal.Success = append(s.step.Terminal.Success, lines...)
	case s.step.Editor != nil:
		s.step.Editor.Success = append(s.step.Editor.Success, lines...)
	}
	return s
}

// Errors adds the rotating error lines of a terminal step.
func (s *StepBuilder) Errors(lines ...string) *StepBuilder {
	if s.step.Terminal != nil {
		s.step.Terminal.Errors = append(s.step.Terminal.Errors, lines...)
	}
	return s
}

// Hint sets the terminal hint. after <= 0 keeps domain.DefaultHintAfter.
func (s *StepBuilder) Hint(hint string, after ...int) *StepBuilder {
	if s.step.Terminal != nil {
		s.step.Terminal.Hint = hint
		if len(after) > 0 {
			s.step.Terminal.HintAfter = after[0]
		}
	}
	return s
}

// Marker tags the success lines of a terminal or editor step.
func (s *StepBuilder) Marker(marker string) *StepBuilder {
	switch {
	case s.step.Terminal != nil:
		s.step.Terminal.Marker = marker
	case s.step.Editor != nil:
		s.step.Editor.Marker = marker
	}
	return s
}

// Body sets the text of a concept card.
func (s *StepBuilder) Body(body string) *StepBuilder {
	if s.step.Concept != nil {
		s.step.Concept.Body = body
	}
	return s
}

// Build returns the underlying domain.Step.
func (s *StepBuilder) Build() domain.Step {
	return s.step
}
