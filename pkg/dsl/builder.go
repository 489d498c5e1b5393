package dsl

import (
	"fmt"

	"github.com/aretw0/gitquest/internal/validator"
	"github.com/aretw0/gitquest/pkg/adapters/memory"
	"github.com/aretw0/gitquest/pkg/domain"
)

// Builder manages the act construction.
type Builder struct {
	act   domain.Act
	order []string
	steps map[string]*StepBuilder
}

// New creates a builder for the act with the given ID.
func New(actID int) *Builder {
	return &Builder{
		act:   domain.Act{ID: actID},
		steps: make(map[string]*StepBuilder),
	}
}

// Title sets the act title.
func (b *Builder) Title(title string) *Builder {
	b.act.Title = title
	return b
}

// Summary sets the text shown when the act completes.
func (b *Builder) Summary(summary string) *Builder {
	b.act.Summary = summary
	return b
}

// Entry overrides the entry step. Defaults to the first step added.
func (b *Builder) Entry(id string) *Builder {
	b.act.Entry = id
	return b
}

// NextAct links the act to its successor.
func (b *Builder) NextAct(id int) *Builder {
	b.act.NextAct = &id
	return b
}

// Add creates a step of the given type.
// If the step already exists, it returns the existing builder.
func (b *Builder) Add(id string, typ domain.StepType) *StepBuilder {
	if sb, ok := b.steps[id]; ok {
		return sb
	}
	sb := &StepBuilder{step: domain.Step{ID: id, Type: typ}}
	b.steps[id] = sb
	b.order = append(b.order, id)
	return sb
}

// Cinematic adds a cinematic step.
func (b *Builder) Cinematic(id string, lines ...string) *StepBuilder {
	sb := b.Add(id, domain.StepCinematic)
	sb.step.Cinematic = &domain.CinematicPayload{Lines: lines}
	return sb
}

// Dialog adds a dialog step.
func (b *Builder) Dialog(id, speaker, text string) *StepBuilder {
	sb := b.Add(id, domain.StepDialog)
	sb.step.Dialog = &domain.DialogPayload{Speaker: speaker, Text: text}
	return sb
}

// Terminal adds a command challenge matched by pattern.
func (b *Builder) Terminal(id, pattern string) *StepBuilder {
	sb := b.Add(id, domain.StepTerminal)
	sb.step.Terminal = &domain.TerminalPayload{Pattern: pattern}
	return sb
}

// Editor adds a code-fix challenge.
func (b *Builder) Editor(id, file, initial, expected string) *StepBuilder {
	sb := b.Add(id, domain.StepEditor)
	sb.step.Editor = &domain.EditorPayload{File: file, Initial: initial, Expected: expected}
	return sb
}

// Concept adds a concept card.
func (b *Builder) Concept(id, conceptID, title string) *StepBuilder {
	sb := b.Add(id, domain.StepConcept)
	sb.step.Concept = &domain.ConceptPayload{ConceptID: conceptID, Title: title}
	return sb
}

// Complete adds the sink step. An empty summary falls back to the act summary.
func (b *Builder) Complete(id, summary string) *StepBuilder {
	sb := b.Add(id, domain.StepComplete)
	if summary != "" {
		sb.step.Complete = &domain.CompletePayload{Summary: summary}
	}
	return sb
}

// Build assembles and validates the act.
func (b *Builder) Build() (*domain.Act, error) {
	act := b.act
	if act.Entry == "" && len(b.order) > 0 {
		act.Entry = b.order[0]
	}
	act.Steps = make([]domain.Step, 0, len(b.order))
	for _, id := range b.order {
		act.Steps = append(act.Steps, b.steps[id].Build())
	}
	if err := validator.ValidateAct(&act); err != nil {
		return nil, fmt.Errorf("build act %d: %w", act.ID, err)
	}
	return &act, nil
}

// Loader builds every act into a memory loader.
func Loader(builders ...*Builder) (*memory.Loader, error) {
	acts := make([]*domain.Act, 0, len(builders))
	for _, b := range builders {
		act, err := b.Build()
		if err != nil {
			return nil, err
		}
		acts = append(acts, act)
	}
	return memory.NewLoader(acts...), nil
}
