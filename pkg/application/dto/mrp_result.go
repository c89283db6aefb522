package dto

import (
	"math"

	"github.com/cockroachdb/errors"

	"github.com/vsinha/bomplanner/pkg/domain/entities"
)

// ErrTotalOverflow is returned when a running total no longer fits in an int64
var ErrTotalOverflow = errors.New("total quantity overflow")

// MaterialRequirement is the total quantity required of one material
type MaterialRequirement struct {
	Material entities.MaterialName `json:"material"`
	Quantity entities.Quantity     `json:"quantity"`
}

// MRPResult contains the output of an MRP run. Requirements are ordered by
// first encounter during the traversal.
type MRPResult struct {
	Requirements []MaterialRequirement `json:"requirements"`
	RootCount    int                   `json:"root_count"`
	NodeCount    int                   `json:"node_count"`

	index map[entities.MaterialName]int
}

// NewMRPResult creates an empty result
func NewMRPResult() *MRPResult {
	return &MRPResult{
		Requirements: make([]MaterialRequirement, 0),
		index:        make(map[entities.MaterialName]int),
	}
}

// Add merges qty into the running total for material. qty must not be
// negative. The total is left unchanged when the sum would overflow.
func (r *MRPResult) Add(material entities.MaterialName, qty entities.Quantity) error {
	if r.index == nil {
		r.index = make(map[entities.MaterialName]int)
	}
	if i, ok := r.index[material]; ok {
		current := r.Requirements[i].Quantity
		if current > math.MaxInt64-qty {
			return errors.Wrapf(ErrTotalOverflow, "material %s: %d + %d", material, current, qty)
		}
		r.Requirements[i].Quantity = current + qty
		return nil
	}
	r.index[material] = len(r.Requirements)
	r.Requirements = append(r.Requirements, MaterialRequirement{Material: material, Quantity: qty})
	return nil
}

// Total returns the total for material and whether it was encountered
func (r *MRPResult) Total(material entities.MaterialName) (entities.Quantity, bool) {
	if i, ok := r.index[material]; ok {
		return r.Requirements[i].Quantity, true
	}
	// Results decoded from JSON have no index
	for _, req := range r.Requirements {
		if req.Material == material {
			return req.Quantity, true
		}
	}
	return 0, false
}

// Len returns the number of distinct materials
func (r *MRPResult) Len() int {
	return len(r.Requirements)
}

// AsMap returns the totals keyed by material, dropping the order
func (r *MRPResult) AsMap() map[entities.MaterialName]entities.Quantity {
	totals := make(map[entities.MaterialName]entities.Quantity, len(r.Requirements))
	for _, req := range r.Requirements {
		totals[req.Material] = req.Quantity
	}
	return totals
}

// ExplodedRequirement is the contribution of a single node occurrence
type ExplodedRequirement struct {
	Material   entities.MaterialName   `json:"material"`
	Level      int                     `json:"level"`
	Path       []entities.MaterialName `json:"path"`
	PerUnit    entities.Quantity       `json:"per_unit"`
	Multiplier entities.Quantity       `json:"multiplier"`
	Quantity   entities.Quantity       `json:"quantity"`
}
