package runtime

import (
	"context"

	"github.com/aretw0/gitquest/pkg/domain"
)

// advance leaves from and enters target.
func (e *Engine) advance(ctx context.Context, act *domain.Act, state *domain.LessonState, from *domain.Step, target string) {
	if e.hooks.OnStepLeave != nil {
		e.hooks.OnStepLeave(ctx, &domain.StepEvent{
			EventBase: e.base(state, domain.EventStepLeave),
			ActID:     act.ID,
			StepID:    from.ID,
			StepType:  from.Type,
		})
	}
	e.logger.Debug("step transition", "session_id", state.SessionID, "from", from.ID, "to", target)
	e.enter(ctx, act, state, target)
}

// enter positions the state on stepID and runs the on-entry behavior of its type.
// Cinematic, dialog, and concept steps emit their effects on entry; terminal and editor
// steps emit theirs on success.
func (e *Engine) enter(ctx context.Context, act *domain.Act, state *domain.LessonState, stepID string) {
	state.CurrentStepID = stepID
	state.History = append(state.History, stepID)

	if stepID == domain.ActComplete {
		e.complete(ctx, act, state, nil)
		return
	}

	step, _ := act.Step(stepID)
	if e.hooks.OnStepEnter != nil {
		e.hooks.OnStepEnter(ctx, &domain.StepEvent{
			EventBase: e.base(state, domain.EventStepEnter),
			ActID:     act.ID,
			StepID:    step.ID,
			StepType:  step.Type,
		})
	}

	switch step.Type {
	case domain.StepCinematic, domain.StepDialog, domain.StepConcept:
		e.emitEffects(ctx, state, step)
	case domain.StepTerminal:
		for _, text := range step.Terminal.Intro {
			e.appendLine(ctx, state, domain.TerminalLine{Kind: domain.LineInfo, Text: text, StepID: step.ID})
		}
	case domain.StepComplete:
		e.emitEffects(ctx, state, step)
		e.complete(ctx, act, state, step.Complete)
	}
}

// complete moves the state into its sink. The step payload overrides the act defaults.
func (e *Engine) complete(ctx context.Context, act *domain.Act, state *domain.LessonState, payload *domain.CompletePayload) {
	c := completionFor(act, payload)
	state.Status = domain.StatusCompleted
	state.Completion = &c

	e.logger.Info("act completed", "session_id", state.SessionID, "act_id", act.ID)
	if e.hooks.OnActComplete != nil {
		e.hooks.OnActComplete(ctx, &domain.CompletionEvent{
			EventBase:  e.base(state, domain.EventActComplete),
			Completion: c,
		})
	}
}

func completionFor(act *domain.Act, payload *domain.CompletePayload) domain.Completion {
	c := domain.Completion{ActID: act.ID, Summary: act.Summary, NextAct: act.NextAct}
	if payload != nil {
		if payload.Summary != "" {
			c.Summary = payload.Summary
		}
		if payload.NextAct != nil {
			c.NextAct = payload.NextAct
		}
	}
	return c
}

// sentinelStep stands in for the synthetic act-complete state.
func sentinelStep(act *domain.Act, state *domain.LessonState) *domain.Step {
	c := completionFor(act, nil)
	if state.Completion != nil {
		c = *state.Completion
	}
	return &domain.Step{
		ID:       domain.ActComplete,
		Type:     domain.StepComplete,
		Complete: &domain.CompletePayload{Summary: c.Summary, NextAct: c.NextAct},
	}
}

// succeed appends success narration tagged with the marker and emits the step effects.
func (e *Engine) succeed(ctx context.Context, state *domain.LessonState, step *domain.Step, lines []string, marker string) {
	for _, text := range lines {
		e.appendLine(ctx, state, domain.TerminalLine{Kind: domain.LineSuccess, Text: text, StepID: step.ID, Marker: marker})
	}
	e.emitEffects(ctx, state, step)
}

func (e *Engine) appendLine(ctx context.Context, state *domain.LessonState, line domain.TerminalLine) {
	state.Lines = append(state.Lines, line)
	if e.hooks.OnLine != nil {
		e.hooks.OnLine(ctx, &domain.LineEvent{EventBase: e.base(state, domain.EventLine), Line: line})
	}
}

// emitEffects forwards the step's opaque tokens. Nothing is executed here.
func (e *Engine) emitEffects(ctx context.Context, state *domain.LessonState, step *domain.Step) {
	if step.Effects.IsZero() {
		return
	}
	effect := domain.Effect{StepID: step.ID, Effects: step.Effects}
	state.Effects = append(state.Effects, effect)
	if e.hooks.OnEffect != nil {
		e.hooks.OnEffect(ctx, &domain.EffectEvent{EventBase: e.base(state, domain.EventEffect), Effect: effect})
	}
}

func (e *Engine) base(state *domain.LessonState, t domain.EventType) domain.EventBase {
	return domain.EventBase{Timestamp: e.now(), Type: t, SessionID: state.SessionID}
}
