package memory

import (
	"strings"
	"sync"

	"github.com/vsinha/bomplanner/pkg/domain/entities"
	"github.com/vsinha/bomplanner/pkg/domain/repositories"
)

// BOMRepository keeps the BOM forest in memory for the lifetime of the process
type BOMRepository struct {
	mu            sync.RWMutex
	roots         []*entities.Node
	relationships []entities.Relationship
	quantities    map[entities.MaterialName]entities.Quantity
	nodeCount     int
}

// NewBOMRepository creates an empty BOM repository
func NewBOMRepository() *BOMRepository {
	return &BOMRepository{
		roots:         make([]*entities.Node, 0),
		relationships: make([]entities.Relationship, 0),
		quantities:    make(map[entities.MaterialName]entities.Quantity),
	}
}

// Verify interface compliance
var _ repositories.BOMRepository = (*BOMRepository)(nil)

// InsertNode validates and records a node. Either the node, its relationship
// and its quantity entry are all recorded, or nothing changes.
func (r *BOMRepository) InsertNode(name, parent entities.MaterialName, quantity entities.Quantity) error {
	name = entities.MaterialName(strings.TrimSpace(string(name)))
	parent = entities.MaterialName(strings.TrimSpace(string(parent)))

	if name == "" {
		return entities.Validationf("material name cannot be empty")
	}
	if err := quantity.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	node := entities.NewNode(name, quantity)

	if parent == "" {
		r.roots = append(r.roots, node)
	} else {
		parentNode := findNode(r.roots, parent)
		if parentNode == nil {
			return entities.ParentNotFound(parent)
		}
		parentNode.Children = append(parentNode.Children, node)
		r.relationships = append(r.relationships, entities.Relationship{
			Source:   parent,
			Target:   name,
			Quantity: quantity,
		})
	}

	r.quantities[name] = quantity
	r.nodeCount++
	return nil
}

// findNode returns the first node named name in depth-first order
func findNode(nodes []*entities.Node, name entities.MaterialName) *entities.Node {
	for _, node := range nodes {
		if node.Name == name {
			return node
		}
		if found := findNode(node.Children, name); found != nil {
			return found
		}
	}
	return nil
}

// FindNode returns a copy of the first node named name
func (r *BOMRepository) FindNode(name entities.MaterialName) (*entities.Node, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	node := findNode(r.roots, name)
	if node == nil {
		return nil, false
	}
	return node.Clone(), true
}

// Snapshot returns a deep copy of the forest, relationships and quantity table
func (r *BOMRepository) Snapshot() *entities.Forest {
	r.mu.RLock()
	defer r.mu.RUnlock()

	forest := &entities.Forest{
		Roots:         make([]*entities.Node, 0, len(r.roots)),
		Relationships: make([]entities.Relationship, len(r.relationships)),
		Quantities:    make(map[entities.MaterialName]entities.Quantity, len(r.quantities)),
	}
	for _, root := range r.roots {
		forest.Roots = append(forest.Roots, root.Clone())
	}
	copy(forest.Relationships, r.relationships)
	for name, qty := range r.quantities {
		forest.Quantities[name] = qty
	}
	return forest
}

// RootCount returns the number of roots in the forest
func (r *BOMRepository) RootCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.roots)
}

// NodeCount returns the number of nodes across all roots
func (r *BOMRepository) NodeCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.nodeCount
}

// Relationships returns a copy of the relationship log in insertion order
func (r *BOMRepository) Relationships() []entities.Relationship {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rels := make([]entities.Relationship, len(r.relationships))
	copy(rels, r.relationships)
	return rels
}

// QuantityOf returns the quantity table entry for name
func (r *BOMRepository) QuantityOf(name entities.MaterialName) (entities.Quantity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	qty, ok := r.quantities[name]
	return qty, ok
}
