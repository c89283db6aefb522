package mrp

import (
	"context"

	"github.com/vsinha/bomplanner/pkg/application/dto"
	"github.com/vsinha/bomplanner/pkg/domain/entities"
	"github.com/vsinha/bomplanner/pkg/domain/repositories"
)

// EngineConfig holds configuration for the MRP engine
type EngineConfig struct {
	QuantitySource QuantitySource
}

// MRPService computes material requirements from the BOM repository. Every
// call works on a fresh snapshot; nothing is cached between calls.
type MRPService struct {
	bomRepo repositories.BOMRepository
	config  EngineConfig
}

// NewMRPService creates a new MRP service using catalog quantities
func NewMRPService(bomRepo repositories.BOMRepository) *MRPService {
	return NewMRPServiceWithConfig(bomRepo, EngineConfig{QuantitySource: CatalogQuantities})
}

// NewMRPServiceWithConfig creates a new MRP service with custom configuration
func NewMRPServiceWithConfig(bomRepo repositories.BOMRepository, config EngineConfig) *MRPService {
	return &MRPService{
		bomRepo: bomRepo,
		config:  config,
	}
}

// Config returns the engine configuration
func (s *MRPService) Config() EngineConfig {
	return s.config
}

// CalculateMRP totals the required quantity of every material, with each
// root demanded at one unit
func (s *MRPService) CalculateMRP(ctx context.Context) (*dto.MRPResult, error) {
	forest := s.bomRepo.Snapshot()
	return s.CalculateForest(ctx, forest)
}

// CalculateForest runs the aggregation over an existing snapshot
func (s *MRPService) CalculateForest(ctx context.Context, forest *entities.Forest) (*dto.MRPResult, error) {
	if forest.IsEmpty() {
		return nil, entities.EmptyTree("calculate MRP")
	}

	visitor := NewMRPVisitor()
	if err := NewBOMTraverser(forest, s.config.QuantitySource).Traverse(ctx, visitor); err != nil {
		return nil, err
	}

	result := visitor.Result()
	result.RootCount = len(forest.Roots)
	result.NodeCount = forest.NodeCount()
	return result, nil
}

// Explode returns the contribution of every reachable node occurrence in
// traversal order
func (s *MRPService) Explode(ctx context.Context) ([]dto.ExplodedRequirement, error) {
	forest := s.bomRepo.Snapshot()
	if forest.IsEmpty() {
		return nil, entities.EmptyTree("explode BOM")
	}

	visitor := NewExplosionVisitor()
	if err := NewBOMTraverser(forest, s.config.QuantitySource).Traverse(ctx, visitor); err != nil {
		return nil, err
	}
	return visitor.Rows(), nil
}
