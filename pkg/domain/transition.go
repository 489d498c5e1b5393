package domain

// Outcome is the result of a player action on a step.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// Transition defines an outcome-conditioned move from one step to another.
type Transition struct {
	On Outcome `json:"on" yaml:"on" mapstructure:"on"`

	// MinFailures only applies to failure transitions: the edge is taken once the
	// player has failed the step at least this many times (counting the current failure).
	MinFailures int `json:"min_failures,omitempty" yaml:"min_failures,omitempty" mapstructure:"min_failures"`

	To string `json:"to" yaml:"to" mapstructure:"to"`
}

// Resolve returns the successor for the given outcome, or "" when the step is retained.
// failures is the number of failed attempts on this step including the current one.
func (s *Step) Resolve(outcome Outcome, failures int) string {
	for _, t := range s.Transitions {
		if t.On != outcome {
			continue
		}
		if outcome == OutcomeFailure && failures < t.MinFailures {
			continue
		}
		return t.To
	}
	if outcome == OutcomeSuccess {
		return s.Next
	}
	return ""
}
