package domain

// Act is a top-level chapter of the tutorial.
type Act struct {
	ID      int    `json:"id" yaml:"id" mapstructure:"id"`
	Title   string `json:"title" yaml:"title" mapstructure:"title"`
	Entry   string `json:"entry" yaml:"entry" mapstructure:"entry"`
	Summary string `json:"summary,omitempty" yaml:"summary,omitempty" mapstructure:"summary"`

	// NextAct is nil for the final act.
	NextAct *int `json:"next_act,omitempty" yaml:"next_act,omitempty" mapstructure:"next_act"`

	Steps []Step `json:"steps" yaml:"steps" mapstructure:"steps"`
}

// Step returns the step with the given ID.
func (a *Act) Step(id string) (*Step, bool) {
	for i := range a.Steps {
		if a.Steps[i].ID == id {
			return &a.Steps[i], true
		}
	}
	return nil, false
}

// Completion describes a finished act.
type Completion struct {
	ActID   int    `json:"act_id"`
	Summary string `json:"summary"`
	NextAct *int   `json:"next_act,omitempty"`
}
