package mrp

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/vsinha/bomplanner/pkg/application/dto"
)

// MRPVisitor implements BOMNodeVisitor by summing effective quantities per material
type MRPVisitor struct {
	result *dto.MRPResult
}

// NewMRPVisitor creates a new MRP visitor
func NewMRPVisitor() *MRPVisitor {
	return &MRPVisitor{result: dto.NewMRPResult()}
}

// VisitNode adds this node's effective quantity to its material bucket
func (v *MRPVisitor) VisitNode(ctx context.Context, nodeCtx BOMNodeContext) (bool, error) {
	if err := v.result.Add(nodeCtx.Node.Name, nodeCtx.Effective); err != nil {
		return false, errors.Mark(err, ErrQuantityOverflow)
	}
	return true, nil
}

// Result returns the aggregated totals
func (v *MRPVisitor) Result() *dto.MRPResult {
	return v.result
}

// ExplosionVisitor records one row per visited node
type ExplosionVisitor struct {
	rows []dto.ExplodedRequirement
}

// NewExplosionVisitor creates a new explosion visitor
func NewExplosionVisitor() *ExplosionVisitor {
	return &ExplosionVisitor{rows: make([]dto.ExplodedRequirement, 0)}
}

// VisitNode records the node occurrence
func (v *ExplosionVisitor) VisitNode(ctx context.Context, nodeCtx BOMNodeContext) (bool, error) {
	v.rows = append(v.rows, dto.ExplodedRequirement{
		Material:   nodeCtx.Node.Name,
		Level:      nodeCtx.Level,
		Path:       nodeCtx.Path,
		PerUnit:    nodeCtx.PerUnit,
		Multiplier: nodeCtx.Multiplier,
		Quantity:   nodeCtx.Effective,
	})
	return true, nil
}

// Rows returns the recorded occurrences in traversal order
func (v *ExplosionVisitor) Rows() []dto.ExplodedRequirement {
	return v.rows
}
