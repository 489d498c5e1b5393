package domain

// StateDiff represents the changes between two lesson states.
// It is designed to be serialized to JSON for partial updates on the client.
type StateDiff struct {
	// SessionID is always present to identify the target.
	SessionID string `json:"session_id"`

	CurrentStepID *string       `json:"current_step_id,omitempty"`
	Status        *LessonStatus `json:"status,omitempty"`

	// Lines and Effects contain only the items appended since the old snapshot.
	Lines   []TerminalLine `json:"lines,omitempty"`
	Effects []Effect       `json:"effects,omitempty"`

	Completion *Completion `json:"completion,omitempty"`
}

// Diff calculates the difference between oldState and newState.
// If oldState is nil, it returns a diff representing the entire newState (initial load).
// It returns nil when nothing changed.
func Diff(oldState, newState *LessonState) *StateDiff {
	if newState == nil {
		return nil
	}

	diff := &StateDiff{
		SessionID: newState.SessionID,
	}

	if oldState == nil || oldState.CurrentStepID != newState.CurrentStepID {
		diff.CurrentStepID = &newState.CurrentStepID
	}
	if oldState == nil || oldState.Status != newState.Status {
		diff.Status = &newState.Status
	}
	if newState.Completion != nil && (oldState == nil || oldState.Completion == nil) {
		c := *newState.Completion
		diff.Completion = &c
	}

	// The logs are append-only, so the delta is the suffix past the old length.
	var oldLines, oldEffects int
	if oldState != nil {
		oldLines = len(oldState.Lines)
		oldEffects = len(oldState.Effects)
	}
	if len(newState.Lines) > oldLines {
		diff.Lines = newState.Lines[oldLines:]
	}
	if len(newState.Effects) > oldEffects {
		diff.Effects = newState.Effects[oldEffects:]
	}

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *StateDiff) IsEmpty() bool {
	return d.CurrentStepID == nil &&
		d.Status == nil &&
		d.Completion == nil &&
		len(d.Lines) == 0 &&
		len(d.Effects) == 0
}
