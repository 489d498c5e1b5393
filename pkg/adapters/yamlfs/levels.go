package yamlfs

import (
	"errors"
	"fmt"

	"github.com/aretw0/gitquest/pkg/boss"
	"github.com/aretw0/gitquest/pkg/puzzle"
)

// Levels is the catalogue of standalone mini-games and boss encounters.
type Levels struct {
	Merge      []puzzle.MergeLevel      `json:"merge" mapstructure:"merge"`
	Rebase     []puzzle.RebaseLevel     `json:"rebase" mapstructure:"rebase"`
	CherryPick []puzzle.CherryPickLevel `json:"cherry_pick" mapstructure:"cherry_pick"`
	Boss       []boss.Level             `json:"boss" mapstructure:"boss"`
}

// LoadLevels decodes and checks levels.yaml.
func (l *Loader) LoadLevels() (*Levels, error) {
	var lv Levels
	if err := decodeFile(l.fsys, levelsFile, &lv); err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", levelsFile, err)
	}
	if err := lv.Check(); err != nil {
		return nil, err
	}
	return &lv, nil
}

// Check validates every level against its own solution.
func (lv *Levels) Check() error {
	var errs []error
	seen := make(map[string]bool)
	wrap := func(kind, id string, err error) {
		if err != nil {
			errs = append(errs, fmt.Errorf("%s level %q: %w", kind, id, err))
		}
		key := kind + "/" + id
		if seen[key] {
			errs = append(errs, fmt.Errorf("%s level %q declared twice", kind, id))
		}
		seen[key] = true
	}

	for _, m := range lv.Merge {
		wrap("merge", m.ID, m.Check())
	}
	for _, r := range lv.Rebase {
		wrap("rebase", r.ID, r.Check())
	}
	for _, c := range lv.CherryPick {
		wrap("cherry-pick", c.ID, c.Check())
	}
	for _, b := range lv.Boss {
		wrap("boss", b.ID, b.Check())
	}
	return errors.Join(errs...)
}

// MergeLevel finds a merge level by ID.
func (lv *Levels) MergeLevel(id string) (puzzle.MergeLevel, bool) {
	return find(lv.Merge, id, func(m puzzle.MergeLevel) string { return m.ID })
}

// RebaseLevel finds a rebase level by ID.
func (lv *Levels) RebaseLevel(id string) (puzzle.RebaseLevel, bool) {
	return find(lv.Rebase, id, func(r puzzle.RebaseLevel) string { return r.ID })
}

// CherryPickLevel finds a cherry-pick level by ID.
func (lv *Levels) CherryPickLevel(id string) (puzzle.CherryPickLevel, bool) {
	return find(lv.CherryPick, id, func(c puzzle.CherryPickLevel) string { return c.ID })
}

// BossLevel finds a boss encounter by ID.
func (lv *Levels) BossLevel(id string) (boss.Level, bool) {
	return find(lv.Boss, id, func(b boss.Level) string { return b.ID })
}

func find[T any](items []T, id string, key func(T) string) (T, bool) {
	for _, it := range items {
		if key(it) == id {
			return it, true
		}
	}
	var zero T
	return zero, false
}
