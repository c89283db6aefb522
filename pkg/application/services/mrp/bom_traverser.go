package mrp

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/vsinha/bomplanner/pkg/domain/entities"
)

// ErrQuantityOverflow is returned when a compounded quantity does not fit in an int64
var ErrQuantityOverflow = errors.New("quantity overflow")

// QuantitySource selects where the per-unit quantity of a node comes from
type QuantitySource int

const (
	// CatalogQuantities uses the name-keyed quantity table, so the last
	// insertion of a name applies to every node with that name.
	CatalogQuantities QuantitySource = iota
	// NodeQuantities uses the quantity each node was inserted with.
	NodeQuantities
)

// String method for QuantitySource enum
func (s QuantitySource) String() string {
	switch s {
	case CatalogQuantities:
		return "catalog"
	case NodeQuantities:
		return "node"
	default:
		return "unknown"
	}
}

// ParseQuantitySource parses "catalog" or "node"
func ParseQuantitySource(raw string) (QuantitySource, error) {
	switch raw {
	case "", "catalog":
		return CatalogQuantities, nil
	case "node":
		return NodeQuantities, nil
	default:
		return CatalogQuantities, errors.Newf("unknown quantity source %q, expected catalog or node", raw)
	}
}

// BOMNodeContext provides context information during BOM traversal
type BOMNodeContext struct {
	Node       *entities.Node
	PerUnit    entities.Quantity // per-unit quantity for this node
	Multiplier entities.Quantity // effective quantity of the parent, 1 for roots
	Effective  entities.Quantity // PerUnit * Multiplier
	Level      int
	Path       []entities.MaterialName // root to this node, inclusive
}

// BOMNodeVisitor defines the interface for processing nodes during BOM traversal
type BOMNodeVisitor interface {
	// VisitNode is called for each reachable node, parents before children.
	// Returning false skips the node's children.
	VisitNode(ctx context.Context, nodeCtx BOMNodeContext) (bool, error)
}

type edge struct {
	source entities.MaterialName
	target entities.MaterialName
}

// BOMTraverser walks a forest propagating multipliers from each root
type BOMTraverser struct {
	forest *entities.Forest
	source QuantitySource
	edges  map[edge]entities.Relationship
}

// NewBOMTraverser creates a traverser over a forest snapshot
func NewBOMTraverser(forest *entities.Forest, source QuantitySource) *BOMTraverser {
	// Index the first relationship of every source/target pair
	edges := make(map[edge]entities.Relationship, len(forest.Relationships))
	for _, rel := range forest.Relationships {
		key := edge{rel.Source, rel.Target}
		if _, exists := edges[key]; !exists {
			edges[key] = rel
		}
	}

	return &BOMTraverser{forest: forest, source: source, edges: edges}
}

// Traverse visits every root with a multiplier of 1
func (bt *BOMTraverser) Traverse(ctx context.Context, visitor BOMNodeVisitor) error {
	for _, root := range bt.forest.Roots {
		if err := bt.traverseNode(ctx, root, 1, 0, nil, visitor); err != nil {
			return err
		}
	}
	return nil
}

func (bt *BOMTraverser) traverseNode(
	ctx context.Context,
	node *entities.Node,
	multiplier entities.Quantity,
	level int,
	parentPath []entities.MaterialName,
	visitor BOMNodeVisitor,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	perUnit := bt.perUnit(node)
	effective, err := multiply(perUnit, multiplier)
	if err != nil {
		return errors.Wrapf(err, "material %s at level %d", node.Name, level)
	}

	path := make([]entities.MaterialName, len(parentPath), len(parentPath)+1)
	copy(path, parentPath)
	path = append(path, node.Name)

	nodeCtx := BOMNodeContext{
		Node:       node,
		PerUnit:    perUnit,
		Multiplier: multiplier,
		Effective:  effective,
		Level:      level,
		Path:       path,
	}

	shouldContinue, err := visitor.VisitNode(ctx, nodeCtx)
	if err != nil {
		return errors.Wrapf(err, "failed to visit node %s", node.Name)
	}
	if !shouldContinue {
		return nil
	}

	for _, child := range node.Children {
		// Children without a logged relationship are unreachable demand
		if _, ok := bt.edges[edge{node.Name, child.Name}]; !ok {
			continue
		}
		if err := bt.traverseNode(ctx, child, effective, level+1, path, visitor); err != nil {
			return err
		}
	}
	return nil
}

func (bt *BOMTraverser) perUnit(node *entities.Node) entities.Quantity {
	if bt.source == CatalogQuantities {
		if qty, ok := bt.forest.Quantities[node.Name]; ok {
			return qty
		}
	}
	return node.Quantity
}

func multiply(a, b entities.Quantity) (entities.Quantity, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	product := a * b
	if product/b != a {
		return 0, errors.Wrapf(ErrQuantityOverflow, "%d x %d", a, b)
	}
	return product, nil
}
