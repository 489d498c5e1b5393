package memory

import (
	"fmt"
	"sort"

	"github.com/aretw0/gitquest/pkg/domain"
)

// Loader implements ports.ActLoader over acts held in memory.
type Loader struct {
	acts map[int]*domain.Act
}

// NewLoader creates a loader from domain objects. Later acts replace earlier ones with the same ID.
func NewLoader(acts ...*domain.Act) *Loader {
	l := &Loader{acts: make(map[int]*domain.Act, len(acts))}
	for _, a := range acts {
		if a != nil {
			l.acts[a.ID] = a
		}
	}
	return l
}

// GetAct returns the act with the given ID.
func (l *Loader) GetAct(id int) (*domain.Act, error) {
	act, ok := l.acts[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", domain.ErrActNotFound, id)
	}
	return act, nil
}

// ListActs returns all available act IDs.
func (l *Loader) ListActs() ([]int, error) {
	ids := make([]int, 0, len(l.acts))
	for id := range l.acts {
		ids = append(ids, id)
	}
	sort.Ints(ids) // Deterministic order
	return ids, nil
}
