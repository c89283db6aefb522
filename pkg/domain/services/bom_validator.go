package services

import (
	"fmt"

	"github.com/vsinha/bomplanner/pkg/domain/entities"
)

// BOMValidator inspects a forest for structures the aggregator handles
// ambiguously. It never modifies the forest.
type BOMValidator struct{}

// NewBOMValidator creates a new BOM validator
func NewBOMValidator() *BOMValidator {
	return &BOMValidator{}
}

// DuplicateName is a material name that occurs at more than one node
type DuplicateName struct {
	Name        entities.MaterialName `json:"name"`
	Occurrences int                   `json:"occurrences"`
}

// ValidationResult contains the results of BOM validation
type ValidationResult struct {
	HasCycles              bool                      `json:"has_cycles"`
	CyclePaths             [][]entities.MaterialName `json:"cycle_paths"`
	DuplicateRelationships []entities.Relationship   `json:"duplicate_relationships"`
	DuplicateNames         []DuplicateName           `json:"duplicate_names"`
	Warnings               []string                  `json:"warnings"`
}

// IsClean reports whether no warnings were raised
func (r *ValidationResult) IsClean() bool {
	return len(r.Warnings) == 0
}

// ValidateBOM checks the forest for material cycles, duplicate relationships
// and materials used at several positions
func (v *BOMValidator) ValidateBOM(forest *entities.Forest) *ValidationResult {
	result := &ValidationResult{
		CyclePaths:             make([][]entities.MaterialName, 0),
		DuplicateRelationships: make([]entities.Relationship, 0),
		DuplicateNames:         make([]DuplicateName, 0),
		Warnings:               make([]string, 0),
	}
	if forest == nil {
		return result
	}

	adjacency, order := v.buildAdjacencyMap(forest.Relationships)
	result.CyclePaths = v.detectCycles(adjacency, order)
	result.HasCycles = len(result.CyclePaths) > 0

	result.DuplicateRelationships = v.detectDuplicateRelationships(forest.Relationships)
	result.DuplicateNames = v.detectDuplicateNames(forest)

	for _, cycle := range result.CyclePaths {
		result.Warnings = append(result.Warnings, fmt.Sprintf("material requires itself: %v", cycle))
	}
	for _, rel := range result.DuplicateRelationships {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("relationship %s -> %s (qty %d) repeats an earlier one and is ignored by MRP", rel.Source, rel.Target, rel.Quantity))
	}
	for _, dup := range result.DuplicateNames {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("material %s appears %d times and shares one quantity entry", dup.Name, dup.Occurrences))
	}

	return result
}

// buildAdjacencyMap creates a map of parent -> children relationships.
// order preserves first-seen parents so results are deterministic.
func (v *BOMValidator) buildAdjacencyMap(
	relationships []entities.Relationship,
) (map[entities.MaterialName][]entities.MaterialName, []entities.MaterialName) {
	adjacency := make(map[entities.MaterialName][]entities.MaterialName)
	order := make([]entities.MaterialName, 0)

	for _, rel := range relationships {
		children, exists := adjacency[rel.Source]
		if !exists {
			order = append(order, rel.Source)
		}

		found := false
		for _, child := range children {
			if child == rel.Target {
				found = true
				break
			}
		}
		if !found {
			adjacency[rel.Source] = append(children, rel.Target)
		}
	}

	return adjacency, order
}

// detectCycles uses DFS to find cycles in the material graph
func (v *BOMValidator) detectCycles(
	adjacency map[entities.MaterialName][]entities.MaterialName,
	order []entities.MaterialName,
) [][]entities.MaterialName {
	visited := make(map[entities.MaterialName]bool)
	onStack := make(map[entities.MaterialName]bool)
	cycles := make([][]entities.MaterialName, 0)

	for _, parent := range order {
		if !visited[parent] {
			v.dfsDetectCycle(parent, adjacency, visited, onStack, nil, &cycles)
		}
	}

	return cycles
}

func (v *BOMValidator) dfsDetectCycle(
	current entities.MaterialName,
	adjacency map[entities.MaterialName][]entities.MaterialName,
	visited map[entities.MaterialName]bool,
	onStack map[entities.MaterialName]bool,
	path []entities.MaterialName,
	cycles *[][]entities.MaterialName,
) {
	visited[current] = true
	onStack[current] = true
	path = append(path, current)

	for _, child := range adjacency[current] {
		if !visited[child] {
			v.dfsDetectCycle(child, adjacency, visited, onStack, path, cycles)
			continue
		}
		if !onStack[child] {
			continue
		}

		// Found a cycle - extract it from the current path
		for i, material := range path {
			if material == child {
				cycle := make([]entities.MaterialName, 0, len(path)-i+1)
				cycle = append(cycle, path[i:]...)
				cycle = append(cycle, child)
				*cycles = append(*cycles, cycle)
				break
			}
		}
	}

	onStack[current] = false
}

// detectDuplicateRelationships returns every relationship that repeats an
// earlier source/target pair
func (v *BOMValidator) detectDuplicateRelationships(relationships []entities.Relationship) []entities.Relationship {
	type edge struct{ source, target entities.MaterialName }

	seen := make(map[edge]bool)
	duplicates := make([]entities.Relationship, 0)

	for _, rel := range relationships {
		key := edge{rel.Source, rel.Target}
		if seen[key] {
			duplicates = append(duplicates, rel)
			continue
		}
		seen[key] = true
	}

	return duplicates
}

func (v *BOMValidator) detectDuplicateNames(forest *entities.Forest) []DuplicateName {
	counts := make(map[entities.MaterialName]int)
	order := make([]entities.MaterialName, 0)

	forest.Walk(func(node *entities.Node, _ int) bool {
		if counts[node.Name] == 0 {
			order = append(order, node.Name)
		}
		counts[node.Name]++
		return true
	})

	duplicates := make([]DuplicateName, 0)
	for _, name := range order {
		if counts[name] > 1 {
			duplicates = append(duplicates, DuplicateName{Name: name, Occurrences: counts[name]})
		}
	}
	return duplicates
}
