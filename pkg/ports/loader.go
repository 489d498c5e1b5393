package ports

import "github.com/aretw0/gitquest/pkg/domain"

// ActLoader defines how the engine retrieves act definitions.
// This allows the content source (embedded YAML, a directory, memory) to be decoupled.
type ActLoader interface {
	// GetAct returns the act with the given ID.
	// Returns domain.ErrActNotFound if the loader has no such act.
	GetAct(id int) (*domain.Act, error)

	// ListActs returns the IDs of every act available, in ascending order.
	ListActs() ([]int, error)
}
