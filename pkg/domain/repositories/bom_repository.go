package repositories

import "github.com/vsinha/bomplanner/pkg/domain/entities"

// BOMRepository owns the forest, the relationship log and the quantity table.
// InsertNode is the only mutating operation.
type BOMRepository interface {
	// InsertNode adds name as a new root when parent is empty, otherwise as the
	// last child of the first node named parent (depth-first, insertion order).
	InsertNode(name, parent entities.MaterialName, quantity entities.Quantity) error

	// Snapshot returns a deep copy of the current state.
	Snapshot() *entities.Forest

	// FindNode returns a copy of the first node named name, using the same search order as InsertNode.
	FindNode(name entities.MaterialName) (*entities.Node, bool)

	RootCount() int
	NodeCount() int
	Relationships() []entities.Relationship
	QuantityOf(name entities.MaterialName) (entities.Quantity, bool)
}
