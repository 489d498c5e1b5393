package puzzle

import (
	"fmt"
	"slices"
)

// Commit is a commit tile shown in rebase and cherry-pick levels.
type Commit struct {
	ID      string `json:"id" yaml:"id" mapstructure:"id"`
	Message string `json:"message,omitempty" yaml:"message,omitempty" mapstructure:"message"`
	// Key marks the one valuable commit of a cherry-pick level.
	Key bool `json:"key,omitempty" yaml:"key,omitempty" mapstructure:"key"`
}

// ValidateSequence reports exact sequence equality of commit IDs.
func ValidateSequence(got, want []string) bool {
	return slices.Equal(got, want)
}

// RebaseLevel asks the player to replay feature commits on top of main.
type RebaseLevel struct {
	ID      string   `json:"id" yaml:"id" mapstructure:"id"`
	Title   string   `json:"title" yaml:"title" mapstructure:"title"`
	Main    []Commit `json:"main" yaml:"main" mapstructure:"main"`
	Feature []Commit `json:"feature" yaml:"feature" mapstructure:"feature"`

	CorrectTimeline []string `json:"correct_timeline" yaml:"correct_timeline" mapstructure:"correct_timeline"`
}

// Check verifies that every ID of the target timeline is a level commit.
func (l RebaseLevel) Check() error {
	known := commitIDs(l.Main, l.Feature)
	if len(l.CorrectTimeline) == 0 {
		return fmt.Errorf("rebase level %q: empty timeline", l.ID)
	}
	for _, id := range l.CorrectTimeline {
		if !known[id] {
			return fmt.Errorf("rebase level %q: timeline commit %q: %w", l.ID, id, ErrUnknownCommit)
		}
	}
	return nil
}

// RebaseBoard holds the player's timeline: main commits first, then the feature
// commits in their authored (usually wrong) order.
type RebaseBoard struct {
	Level    RebaseLevel
	Timeline []string
}

// NewRebaseBoard opens a rebase level.
func NewRebaseBoard(level RebaseLevel) *RebaseBoard {
	timeline := make([]string, 0, len(level.Main)+len(level.Feature))
	for _, c := range level.Main {
		timeline = append(timeline, c.ID)
	}
	for _, c := range level.Feature {
		timeline = append(timeline, c.ID)
	}
	return &RebaseBoard{Level: level, Timeline: timeline}
}

// Move drags a commit to a new position.
func (b *RebaseBoard) Move(from, to int) error {
	var err error
	b.Timeline, err = move(b.Timeline, from, to)
	return err
}

// Validate checks the timeline against the target ordering.
func (b *RebaseBoard) Validate() bool {
	return ValidateSequence(b.Timeline, b.Level.CorrectTimeline)
}

// CherryPickLevel asks the player to bring the single key commit onto main.
type CherryPickLevel struct {
	ID            string   `json:"id" yaml:"id" mapstructure:"id"`
	Title         string   `json:"title" yaml:"title" mapstructure:"title"`
	Main          []string `json:"main" yaml:"main" mapstructure:"main"`
	Feature       []Commit `json:"feature" yaml:"feature" mapstructure:"feature"`
	ExpectedFinal []string `json:"expected_final" yaml:"expected_final" mapstructure:"expected_final"`
}

// KeyCommit returns the ID of the key commit, or "" if the level declares none.
func (l CherryPickLevel) KeyCommit() string {
	for _, c := range l.Feature {
		if c.Key {
			return c.ID
		}
	}
	return ""
}

// Check verifies the level declares exactly one key commit and that the expected
// history contains it.
func (l CherryPickLevel) Check() error {
	keys := 0
	for _, c := range l.Feature {
		if c.Key {
			keys++
		}
	}
	if keys != 1 {
		return fmt.Errorf("cherry-pick level %q: want exactly one key commit, got %d", l.ID, keys)
	}
	if !slices.Contains(l.ExpectedFinal, l.KeyCommit()) {
		return fmt.Errorf("cherry-pick level %q: expected history lacks key commit %q", l.ID, l.KeyCommit())
	}
	return nil
}

// Verdict is the outcome of a validation with a reason suitable for narrative feedback.
type Verdict struct {
	OK     bool   `json:"ok"`
	Reason string `json:"reason,omitempty"`
}

// Verdict reasons.
const (
	ReasonDistractor   = "distractor commit included"
	ReasonMissingKey   = "key commit missing"
	ReasonDuplicateKey = "key commit picked more than once"
	ReasonKeyPosition  = "key commit in the wrong position"
	ReasonLength       = "history length differs"
	ReasonOrder        = "history order differs"
)

// ValidateCherryPick checks a final history against the level.
// Any length mismatch is rejected, including extra commits beyond the expected history.
func ValidateCherryPick(level CherryPickLevel, final []string) Verdict {
	key := level.KeyCommit()
	distractors := make(map[string]bool)
	for _, c := range level.Feature {
		if !c.Key {
			distractors[c.ID] = true
		}
	}

	keyCount := 0
	for _, id := range final {
		if distractors[id] {
			return Verdict{Reason: ReasonDistractor}
		}
		if id == key {
			keyCount++
		}
	}
	switch {
	case keyCount == 0:
		return Verdict{Reason: ReasonMissingKey}
	case keyCount > 1:
		return Verdict{Reason: ReasonDuplicateKey}
	}

	if len(final) != len(level.ExpectedFinal) {
		return Verdict{Reason: ReasonLength}
	}
	if slices.Index(final, key) != slices.Index(level.ExpectedFinal, key) {
		return Verdict{Reason: ReasonKeyPosition}
	}
	if !ValidateSequence(final, level.ExpectedFinal) {
		return Verdict{Reason: ReasonOrder}
	}
	return Verdict{OK: true}
}

// CherryPickBoard holds the player's main history for one level.
type CherryPickBoard struct {
	Level CherryPickLevel
	Final []string
}

// NewCherryPickBoard opens a cherry-pick level with main as the starting history.
func NewCherryPickBoard(level CherryPickLevel) *CherryPickBoard {
	return &CherryPickBoard{Level: level, Final: slices.Clone(level.Main)}
}

// Pick appends a feature commit to the history. Picking the same commit twice is allowed
// and reported by Validate.
func (b *CherryPickBoard) Pick(id string) error {
	if !slices.ContainsFunc(b.Level.Feature, func(c Commit) bool { return c.ID == id }) {
		return fmt.Errorf("pick %q: %w", id, ErrUnknownCommit)
	}
	b.Final = append(b.Final, id)
	return nil
}

// Unpick removes the last occurrence of a picked feature commit. Main commits cannot be removed.
func (b *CherryPickBoard) Unpick(id string) error {
	for i := len(b.Final) - 1; i >= len(b.Level.Main); i-- {
		if b.Final[i] == id {
			b.Final = slices.Delete(b.Final, i, i+1)
			return nil
		}
	}
	return fmt.Errorf("unpick %q: %w", id, ErrUnknownCommit)
}

// Validate checks the current history.
func (b *CherryPickBoard) Validate() Verdict {
	return ValidateCherryPick(b.Level, b.Final)
}

func commitIDs(groups ...[]Commit) map[string]bool {
	ids := make(map[string]bool)
	for _, g := range groups {
		for _, c := range g {
			ids[c.ID] = true
		}
	}
	return ids
}
