package memory_test

import (
	"testing"

	"github.com/aretw0/gitquest/pkg/adapters/memory"
	"github.com/aretw0/gitquest/pkg/domain"
	contract "github.com/aretw0/gitquest/pkg/ports/tests"
)

func TestInMemoryLoader_Contract(t *testing.T) {
	act := func(id int) *domain.Act {
		return &domain.Act{
			ID:    id,
			Entry: "done",
			Steps: []domain.Step{{ID: "done", Type: domain.StepComplete}},
		}
	}

	loader := memory.NewLoader(act(3), act(1), act(2))
	contract.RunActLoaderContract(t, loader, []int{1, 2, 3})
}
