package entities

// Node is one occurrence of a material in the forest. Nodes hold no parent
// reference; their position is found by walking down from the roots.
type Node struct {
	Name     MaterialName
	Quantity Quantity // per-unit quantity declared when this node was inserted
	Children []*Node
}

// NewNode creates a leaf node
func NewNode(name MaterialName, quantity Quantity) *Node {
	return &Node{
		Name:     name,
		Quantity: quantity,
		Children: []*Node{},
	}
}

// Clone returns a deep copy of the subtree rooted at n
func (n *Node) Clone() *Node {
	clone := &Node{
		Name:     n.Name,
		Quantity: n.Quantity,
		Children: make([]*Node, 0, len(n.Children)),
	}
	for _, child := range n.Children {
		clone.Children = append(clone.Children, child.Clone())
	}
	return clone
}

// Size returns the number of nodes in the subtree rooted at n
func (n *Node) Size() int {
	size := 1
	for _, child := range n.Children {
		size += child.Size()
	}
	return size
}

// Relationship records that one unit of Source consumes Quantity units of Target
type Relationship struct {
	Source   MaterialName
	Target   MaterialName
	Quantity Quantity
}

// FindRelationship returns the first relationship from source to target.
// Later duplicates of the same pair are never returned.
func FindRelationship(relationships []Relationship, source, target MaterialName) (Relationship, bool) {
	for _, rel := range relationships {
		if rel.Source == source && rel.Target == target {
			return rel, true
		}
	}
	return Relationship{}, false
}

// Forest is a point-in-time copy of the store contents. Callers own it and
// may read it without holding any lock.
type Forest struct {
	Roots         []*Node
	Relationships []Relationship
	Quantities    map[MaterialName]Quantity
}

// IsEmpty reports whether the forest has no roots
func (f *Forest) IsEmpty() bool {
	return f == nil || len(f.Roots) == 0
}

// NodeCount returns the total number of nodes across all roots
func (f *Forest) NodeCount() int {
	if f == nil {
		return 0
	}
	count := 0
	for _, root := range f.Roots {
		count += root.Size()
	}
	return count
}

// Walk visits every node depth-first, roots in order, children in insertion
// order. Returning false from fn stops the walk.
func (f *Forest) Walk(fn func(node *Node, depth int) bool) {
	if f == nil {
		return
	}
	var visit func(node *Node, depth int) bool
	visit = func(node *Node, depth int) bool {
		if !fn(node, depth) {
			return false
		}
		for _, child := range node.Children {
			if !visit(child, depth+1) {
				return false
			}
		}
		return true
	}
	for _, root := range f.Roots {
		if !visit(root, 0) {
			return
		}
	}
}
