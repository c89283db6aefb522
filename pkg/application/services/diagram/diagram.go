package diagram

import (
	"fmt"

	"github.com/vsinha/bomplanner/pkg/domain/entities"
)

type NodeData struct {
	ID       string                `json:"id"`
	Name     entities.MaterialName `json:"name"`
	Label    string                `json:"label"`
	Quantity entities.Quantity     `json:"quantity"`
	Level    int                   `json:"level"`
}

type EdgeData struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
	Label  string `json:"label"`
}

type NodeWrapper struct {
	Data NodeData `json:"data"`
}

type EdgeWrapper struct {
	Data EdgeData `json:"data"`
}

type Elements struct {
	Nodes []NodeWrapper `json:"nodes"`
	Edges []EdgeWrapper `json:"edges"`
}

// Diagram is the read-only view a renderer draws from: one node element per
// tree node, one edge element per parent/child link
type Diagram struct {
	Elements Elements `json:"elements"`
}

// Build converts a forest into diagram elements. Node labels show the catalog
// quantity, edge labels the quantity of the first matching relationship.
func Build(forest *entities.Forest) (Diagram, error) {
	if forest.IsEmpty() {
		return Diagram{}, entities.EmptyTree("generate diagram")
	}

	b := &builder{
		forest: forest,
		nodes:  []NodeWrapper{},
		edges:  []EdgeWrapper{},
	}
	for _, root := range forest.Roots {
		b.walk(root, 0)
	}

	return Diagram{Elements: Elements{Nodes: b.nodes, Edges: b.edges}}, nil
}

type builder struct {
	forest  *entities.Forest
	nodes   []NodeWrapper
	edges   []EdgeWrapper
	nodeSeq int
	edgeSeq int
}

func (b *builder) walk(node *entities.Node, level int) {
	b.nodeSeq++
	nodeID := fmt.Sprintf("n%d", b.nodeSeq)

	qty, ok := b.forest.Quantities[node.Name]
	if !ok {
		qty = node.Quantity
	}

	b.nodes = append(b.nodes, NodeWrapper{Data: NodeData{
		ID:       nodeID,
		Name:     node.Name,
		Label:    fmt.Sprintf("%s (%d)", node.Name, qty),
		Quantity: qty,
		Level:    level,
	}})

	for _, child := range node.Children {
		childID := fmt.Sprintf("n%d", b.nodeSeq+1)

		label := ""
		if rel, found := entities.FindRelationship(b.forest.Relationships, node.Name, child.Name); found {
			label = fmt.Sprintf("%d", rel.Quantity)
		}

		b.edgeSeq++
		b.edges = append(b.edges, EdgeWrapper{Data: EdgeData{
			ID:     fmt.Sprintf("e%d", b.edgeSeq),
			Source: nodeID,
			Target: childID,
			Label:  label,
		}})

		b.walk(child, level+1)
	}
}
