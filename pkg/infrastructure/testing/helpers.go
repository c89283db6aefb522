package testing

import (
	"fmt"

	"github.com/vsinha/bomplanner/pkg/domain/entities"
	"github.com/vsinha/bomplanner/pkg/infrastructure/repositories/memory"
)

// Step is one insertion: Parent empty means a new root
type Step struct {
	Name     entities.MaterialName
	Parent   entities.MaterialName
	Quantity entities.Quantity
}

// BuildRepository replays steps into a fresh repository and panics on any
// failed insertion, since fixtures are expected to be valid
func BuildRepository(steps ...Step) *memory.BOMRepository {
	repo := memory.NewBOMRepository()
	for i, step := range steps {
		if err := repo.InsertNode(step.Name, step.Parent, step.Quantity); err != nil {
			panic(fmt.Sprintf("fixture step %d (%s under %q): %v", i, step.Name, step.Parent, err))
		}
	}
	return repo
}

// BuildChainTestData builds A -> B (3) -> C (2)
func BuildChainTestData() *memory.BOMRepository {
	return BuildRepository(
		Step{Name: "A", Quantity: 1},
		Step{Name: "B", Parent: "A", Quantity: 3},
		Step{Name: "C", Parent: "B", Quantity: 2},
	)
}

// BuildSharedNameTestData builds two roots that both use B, with the second
// insertion of B overwriting its catalog quantity from 2 to 5
func BuildSharedNameTestData() *memory.BOMRepository {
	return BuildRepository(
		Step{Name: "A", Quantity: 1},
		Step{Name: "B", Parent: "A", Quantity: 2},
		Step{Name: "X", Quantity: 1},
		Step{Name: "B", Parent: "X", Quantity: 5},
	)
}

// BuildBicycleTestData builds a small two-root product structure
//
//	Bicycle
//	├── Frame (1)
//	│   └── Tube (3)
//	├── Wheel (2)
//	│   ├── Spoke (32)
//	│   └── Rim (1)
//	└── Bolt (6)
//	Trailer
//	├── Wheel (2)
//	└── Bolt (4)
func BuildBicycleTestData() *memory.BOMRepository {
	return BuildRepository(
		Step{Name: "Bicycle", Quantity: 1},
		Step{Name: "Frame", Parent: "Bicycle", Quantity: 1},
		Step{Name: "Tube", Parent: "Frame", Quantity: 3},
		Step{Name: "Wheel", Parent: "Bicycle", Quantity: 2},
		Step{Name: "Spoke", Parent: "Wheel", Quantity: 32},
		Step{Name: "Rim", Parent: "Wheel", Quantity: 1},
		Step{Name: "Bolt", Parent: "Bicycle", Quantity: 6},
		Step{Name: "Trailer", Quantity: 1},
		Step{Name: "Wheel", Parent: "Trailer", Quantity: 2},
		Step{Name: "Bolt", Parent: "Trailer", Quantity: 4},
	)
}

// BuildWideTestData builds a root with the given number of levels, each
// node having fanout children of quantity 2
func BuildWideTestData(levels, fanout int) *memory.BOMRepository {
	repo := memory.NewBOMRepository()
	if err := repo.InsertNode("ROOT", "", 1); err != nil {
		panic(err)
	}

	parents := []entities.MaterialName{"ROOT"}
	for level := 1; level <= levels; level++ {
		next := make([]entities.MaterialName, 0, len(parents)*fanout)
		for _, parent := range parents {
			for i := 0; i < fanout; i++ {
				name := entities.MaterialName(fmt.Sprintf("%s_%d", parent, i))
				if err := repo.InsertNode(name, parent, 2); err != nil {
					panic(err)
				}
				next = append(next, name)
			}
		}
		parents = next
	}
	return repo
}
