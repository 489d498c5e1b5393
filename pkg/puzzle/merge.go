package puzzle

import (
	"fmt"
	"slices"
)

// MergeLevel is a block-ordering challenge.
type MergeLevel struct {
	ID          string   `json:"id" yaml:"id" mapstructure:"id"`
	Title       string   `json:"title" yaml:"title" mapstructure:"title"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty" mapstructure:"description"`
	Blocks      []string `json:"blocks" yaml:"blocks" mapstructure:"blocks"`
	Solution    []string `json:"solution" yaml:"solution" mapstructure:"solution"`
}

// Check verifies that the level can be solved with its own blocks.
func (l MergeLevel) Check() error {
	if len(l.Solution) == 0 {
		return fmt.Errorf("merge level %q: empty solution", l.ID)
	}
	pool := slices.Clone(l.Blocks)
	for _, want := range l.Solution {
		i := slices.Index(pool, want)
		if i < 0 {
			return fmt.Errorf("merge level %q: solution block %q not offered", l.ID, want)
		}
		pool = slices.Delete(pool, i, i+1)
	}
	return nil
}

// ValidateMerge reports whether merged equals solution exactly, element by element.
// There is no partial credit.
func ValidateMerge(merged, solution []string) bool {
	return slices.Equal(merged, solution)
}

// MergeBoard holds the two pools of a merge puzzle.
type MergeBoard struct {
	Level     MergeLevel
	Available []string
	Merged    []string
}

// NewMergeBoard opens a level with every block in the available pool.
func NewMergeBoard(level MergeLevel) *MergeBoard {
	return &MergeBoard{
		Level:     level,
		Available: slices.Clone(level.Blocks),
		Merged:    []string{},
	}
}

// Take moves Available[i] into the merged pool at position at.
// A negative or too large position appends.
func (b *MergeBoard) Take(i, at int) error {
	if i < 0 || i >= len(b.Available) {
		return fmt.Errorf("take %d: %w", i, ErrIndexOutOfRange)
	}
	block := b.Available[i]
	b.Available = slices.Delete(b.Available, i, i+1)
	if at < 0 || at > len(b.Merged) {
		at = len(b.Merged)
	}
	b.Merged = slices.Insert(b.Merged, at, block)
	return nil
}

// Return moves Merged[i] back to the end of the available pool.
func (b *MergeBoard) Return(i int) error {
	if i < 0 || i >= len(b.Merged) {
		return fmt.Errorf("return %d: %w", i, ErrIndexOutOfRange)
	}
	block := b.Merged[i]
	b.Merged = slices.Delete(b.Merged, i, i+1)
	b.Available = append(b.Available, block)
	return nil
}

// Move reorders the merged pool.
func (b *MergeBoard) Move(from, to int) error {
	var err error
	b.Merged, err = move(b.Merged, from, to)
	return err
}

// Validate checks the merged pool against the level solution.
func (b *MergeBoard) Validate() bool {
	return ValidateMerge(b.Merged, b.Level.Solution)
}

func move(list []string, from, to int) ([]string, error) {
	if from < 0 || from >= len(list) || to < 0 || to >= len(list) {
		return list, fmt.Errorf("move %d->%d: %w", from, to, ErrIndexOutOfRange)
	}
	item := list[from]
	list = slices.Delete(list, from, from+1)
	return slices.Insert(list, to, item), nil
}
