package domain

import "time"

// StepType defines the control flow behavior of a step.
type StepType string

const (
	// StepCinematic plays narrative lines and auto-advances after a fixed duration.
	StepCinematic StepType = "cinematic"
	// StepDialog shows a line of dialog and advances on acknowledgement.
	StepDialog StepType = "dialog"
	// StepTerminal halts until the player submits a command matching the step pattern.
	StepTerminal StepType = "terminal"
	// StepEditor halts until the editor collaborator confirms the fix was applied.
	StepEditor StepType = "editor"
	// StepConcept is an informational interstitial dismissed by any continue key.
	StepConcept StepType = "concept"
	// StepComplete is the sink state of an act.
	StepComplete StepType = "complete"
)

// ActComplete is the sentinel successor that finishes the act without a complete step.
const ActComplete = "act-complete"

// DefaultCinematicDuration is used when a cinematic step does not declare one.
const DefaultCinematicDuration = 3 * time.Second

// DefaultHintAfter is the number of failed submissions before a terminal hint is shown.
const DefaultHintAfter = 3

// Valid reports whether t is one of the known step types.
func (t StepType) Valid() bool {
	switch t {
	case StepCinematic, StepDialog, StepTerminal, StepEditor, StepConcept, StepComplete:
		return true
	}
	return false
}

// Step is an immutable descriptor for one unit of pedagogy.
// Exactly one payload field is set, matching Type.
type Step struct {
	ID   string   `json:"id" yaml:"id" mapstructure:"id"`
	Type StepType `json:"type" yaml:"type" mapstructure:"type"`

	// Next is the default successor (a step ID or ActComplete).
	Next string `json:"next,omitempty" yaml:"next,omitempty" mapstructure:"next"`

	// Transitions are evaluated before Next and may branch on outcome.
	Transitions []Transition `json:"transitions,omitempty" yaml:"transitions,omitempty" mapstructure:"transitions"`

	Effects Effects `json:"effects,omitempty" yaml:"effects,omitempty" mapstructure:"effects"`

	Cinematic *CinematicPayload `json:"cinematic,omitempty" yaml:"cinematic,omitempty" mapstructure:"cinematic"`
	Dialog    *DialogPayload    `json:"dialog,omitempty" yaml:"dialog,omitempty" mapstructure:"dialog"`
	Terminal  *TerminalPayload  `json:"terminal,omitempty" yaml:"terminal,omitempty" mapstructure:"terminal"`
	Editor    *EditorPayload    `json:"editor,omitempty" yaml:"editor,omitempty" mapstructure:"editor"`
	Concept   *ConceptPayload   `json:"concept,omitempty" yaml:"concept,omitempty" mapstructure:"concept"`
	Complete  *CompletePayload  `json:"complete,omitempty" yaml:"complete,omitempty" mapstructure:"complete"`
}

// Effects are opaque presentation tokens. The engine forwards them unmodified.
type Effects struct {
	VisualEvent string         `json:"visual_event,omitempty" yaml:"visual_event,omitempty" mapstructure:"visual_event"`
	SoundEvent  string         `json:"sound_event,omitempty" yaml:"sound_event,omitempty" mapstructure:"sound_event"`
	VisualData  map[string]any `json:"visual_data,omitempty" yaml:"visual_data,omitempty" mapstructure:"visual_data"`
}

// IsZero reports whether no effect token is declared.
func (e Effects) IsZero() bool {
	return e.VisualEvent == "" && e.SoundEvent == "" && len(e.VisualData) == 0
}

type CinematicPayload struct {
	Lines []string `json:"lines" yaml:"lines" mapstructure:"lines"`
	// DurationMS is the time before auto-advance. Zero means DefaultCinematicDuration.
	DurationMS int `json:"duration_ms,omitempty" yaml:"duration_ms,omitempty" mapstructure:"duration_ms"`
}

// Duration returns the configured auto-advance delay.
func (c *CinematicPayload) Duration() time.Duration {
	if c == nil || c.DurationMS <= 0 {
		return DefaultCinematicDuration
	}
	return time.Duration(c.DurationMS) * time.Millisecond
}

type DialogPayload struct {
	Speaker string `json:"speaker,omitempty" yaml:"speaker,omitempty" mapstructure:"speaker"`
	Text    string `json:"text" yaml:"text" mapstructure:"text"`
}

// TerminalPayload configures a command challenge.
type TerminalPayload struct {
	Prompt string   `json:"prompt,omitempty" yaml:"prompt,omitempty" mapstructure:"prompt"`
	Intro  []string `json:"intro,omitempty" yaml:"intro,omitempty" mapstructure:"intro"`

	// Pattern is a Go regular expression. Authors anchor it with ^/$ when the whole
	// input must match, and leave it open for commands taking arbitrary trailing flags.
	Pattern string `json:"pattern" yaml:"pattern" mapstructure:"pattern"`

	Success []string `json:"success,omitempty" yaml:"success,omitempty" mapstructure:"success"`
	Errors  []string `json:"errors,omitempty" yaml:"errors,omitempty" mapstructure:"errors"`

	Hint      string `json:"hint,omitempty" yaml:"hint,omitempty" mapstructure:"hint"`
	HintAfter int    `json:"hint_after,omitempty" yaml:"hint_after,omitempty" mapstructure:"hint_after"`

	// Marker tags the success lines so observers can detect milestones without parsing text.
	Marker string `json:"marker,omitempty" yaml:"marker,omitempty" mapstructure:"marker"`
}

// HintThreshold returns the number of failures before the hint is shown.
func (t *TerminalPayload) HintThreshold() int {
	if t == nil || t.HintAfter <= 0 {
		return DefaultHintAfter
	}
	return t.HintAfter
}

// EditorPayload configures a code-fix challenge. The engine does not diff code;
// it trusts the editor collaborator to confirm the fix.
type EditorPayload struct {
	File     string   `json:"file" yaml:"file" mapstructure:"file"`
	Initial  string   `json:"initial" yaml:"initial" mapstructure:"initial"`
	Expected string   `json:"expected,omitempty" yaml:"expected,omitempty" mapstructure:"expected"`
	ReadOnly bool     `json:"readonly,omitempty" yaml:"readonly,omitempty" mapstructure:"readonly"`
	Success  []string `json:"success,omitempty" yaml:"success,omitempty" mapstructure:"success"`
	Marker   string   `json:"marker,omitempty" yaml:"marker,omitempty" mapstructure:"marker"`
}

type ConceptPayload struct {
	ConceptID string `json:"concept_id" yaml:"concept_id" mapstructure:"concept_id"`
	Title     string `json:"title,omitempty" yaml:"title,omitempty" mapstructure:"title"`
	Body      string `json:"body,omitempty" yaml:"body,omitempty" mapstructure:"body"`
}

type CompletePayload struct {
	Summary string `json:"summary" yaml:"summary" mapstructure:"summary"`
	// NextAct overrides the act's NextAct when set.
	NextAct *int `json:"next_act,omitempty" yaml:"next_act,omitempty" mapstructure:"next_act"`
}

// HasPayloadFor reports whether the payload matching Type is present and no other payload is set.
func (s *Step) HasPayloadFor() bool {
	set := 0
	for _, p := range []bool{
		s.Cinematic != nil, s.Dialog != nil, s.Terminal != nil,
		s.Editor != nil, s.Concept != nil, s.Complete != nil,
	} {
		if p {
			set++
		}
	}

	var match bool
	switch s.Type {
	case StepCinematic:
		match = s.Cinematic != nil
	case StepDialog:
		match = s.Dialog != nil
	case StepTerminal:
		match = s.Terminal != nil
	case StepEditor:
		match = s.Editor != nil
	case StepConcept:
		match = s.Concept != nil
	case StepComplete:
		// A complete step may omit its payload and fall back to the act summary.
		return set == 0 || (set == 1 && s.Complete != nil)
	}
	return match && set == 1
}

// Successors lists every step ID this step can move to.
func (s *Step) Successors() []string {
	out := make([]string, 0, len(s.Transitions)+1)
	for _, t := range s.Transitions {
		out = append(out, t.To)
	}
	if s.Next != "" {
		out = append(out, s.Next)
	}
	return out
}
