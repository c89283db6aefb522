package mrp

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/bomplanner/pkg/application/dto"
	"github.com/vsinha/bomplanner/pkg/domain/entities"
	"github.com/vsinha/bomplanner/pkg/infrastructure/repositories/memory"
	testhelpers "github.com/vsinha/bomplanner/pkg/infrastructure/testing"
)

func TestMRPService_MultiplicativePropagation(t *testing.T) {
	service := NewMRPService(testhelpers.BuildChainTestData())

	result, err := service.CalculateMRP(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []dto.MaterialRequirement{
		{Material: "A", Quantity: 1},
		{Material: "B", Quantity: 3},
		{Material: "C", Quantity: 6},
	}, result.Requirements)
	assert.Equal(t, 1, result.RootCount)
	assert.Equal(t, 3, result.NodeCount)
}

func TestMRPService_SharedNameUsesLatestCatalogQuantity(t *testing.T) {
	service := NewMRPService(testhelpers.BuildSharedNameTestData())

	result, err := service.CalculateMRP(context.Background())
	require.NoError(t, err)

	assert.Equal(t, map[entities.MaterialName]entities.Quantity{
		"A": 1,
		"B": 10,
		"X": 1,
	}, result.AsMap())

	// First-encounter order: A, B (under A), X
	assert.Equal(t, entities.MaterialName("A"), result.Requirements[0].Material)
	assert.Equal(t, entities.MaterialName("B"), result.Requirements[1].Material)
	assert.Equal(t, entities.MaterialName("X"), result.Requirements[2].Material)
}

func TestMRPService_NodeQuantities(t *testing.T) {
	service := NewMRPServiceWithConfig(
		testhelpers.BuildSharedNameTestData(),
		EngineConfig{QuantitySource: NodeQuantities},
	)

	result, err := service.CalculateMRP(context.Background())
	require.NoError(t, err)

	total, ok := result.Total("B")
	require.True(t, ok)
	assert.Equal(t, entities.Quantity(7), total, "each B keeps its own quantity: 2 + 5")
}

func TestMRPService_BicycleForest(t *testing.T) {
	testCases := []struct {
		name   string
		source QuantitySource
		want   []dto.MaterialRequirement
	}{
		{
			name:   "catalog quantities",
			source: CatalogQuantities,
			want: []dto.MaterialRequirement{
				{Material: "Bicycle", Quantity: 1},
				{Material: "Frame", Quantity: 1},
				{Material: "Tube", Quantity: 3},
				{Material: "Wheel", Quantity: 4},
				{Material: "Spoke", Quantity: 64},
				{Material: "Rim", Quantity: 2},
				{Material: "Bolt", Quantity: 8},
				{Material: "Trailer", Quantity: 1},
			},
		},
		{
			name:   "node quantities",
			source: NodeQuantities,
			want: []dto.MaterialRequirement{
				{Material: "Bicycle", Quantity: 1},
				{Material: "Frame", Quantity: 1},
				{Material: "Tube", Quantity: 3},
				{Material: "Wheel", Quantity: 4},
				{Material: "Spoke", Quantity: 64},
				{Material: "Rim", Quantity: 2},
				{Material: "Bolt", Quantity: 10},
				{Material: "Trailer", Quantity: 1},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			service := NewMRPServiceWithConfig(testhelpers.BuildBicycleTestData(), EngineConfig{QuantitySource: tc.source})
			result, err := service.CalculateMRP(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tc.want, result.Requirements)
		})
	}
}

func TestMRPService_Idempotent(t *testing.T) {
	service := NewMRPService(testhelpers.BuildBicycleTestData())
	ctx := context.Background()

	first, err := service.CalculateMRP(ctx)
	require.NoError(t, err)
	second, err := service.CalculateMRP(ctx)
	require.NoError(t, err)

	assert.Equal(t, first.Requirements, second.Requirements)
}

func TestMRPService_RecomputesAfterInsert(t *testing.T) {
	repo := testhelpers.BuildChainTestData()
	service := NewMRPService(repo)
	ctx := context.Background()

	_, err := service.CalculateMRP(ctx)
	require.NoError(t, err)

	require.NoError(t, repo.InsertNode("D", "C", 4))

	result, err := service.CalculateMRP(ctx)
	require.NoError(t, err)
	total, ok := result.Total("D")
	require.True(t, ok)
	assert.Equal(t, entities.Quantity(24), total)
}

func TestMRPService_EmptyTree(t *testing.T) {
	service := NewMRPService(memory.NewBOMRepository())

	result, err := service.CalculateMRP(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, entities.ErrEmptyTree))
	assert.Nil(t, result)

	_, err = service.Explode(context.Background())
	assert.True(t, errors.Is(err, entities.ErrEmptyTree))
}

func TestMRPService_SkipsChildWithoutRelationship(t *testing.T) {
	orphan := entities.NewNode("Orphan", 9)
	root := entities.NewNode("Root", 1)
	root.Children = append(root.Children, orphan)

	forest := &entities.Forest{
		Roots:      []*entities.Node{root},
		Quantities: map[entities.MaterialName]entities.Quantity{"Root": 1, "Orphan": 9},
	}

	result, err := NewMRPService(memory.NewBOMRepository()).CalculateForest(context.Background(), forest)
	require.NoError(t, err)

	_, ok := result.Total("Orphan")
	assert.False(t, ok)
	assert.Equal(t, 1, result.Len())
}

func TestMRPService_Overflow(t *testing.T) {
	repo := memory.NewBOMRepository()
	require.NoError(t, repo.InsertNode("L0", "", 1))
	require.NoError(t, repo.InsertNode("L1", "L0", 1<<40))
	require.NoError(t, repo.InsertNode("L2", "L1", 1<<40))

	_, err := NewMRPService(repo).CalculateMRP(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrQuantityOverflow))
}

func TestMRPService_TotalOverflowAcrossOccurrences(t *testing.T) {
	repo := memory.NewBOMRepository()
	require.NoError(t, repo.InsertNode("A", "", 1))
	require.NoError(t, repo.InsertNode("B", "A", 1<<62))
	require.NoError(t, repo.InsertNode("X", "", 1))
	require.NoError(t, repo.InsertNode("B", "X", 1<<62))

	for _, source := range []QuantitySource{CatalogQuantities, NodeQuantities} {
		t.Run(source.String(), func(t *testing.T) {
			service := NewMRPServiceWithConfig(repo, EngineConfig{QuantitySource: source})

			result, err := service.CalculateMRP(context.Background())
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, errors.Is(err, ErrQuantityOverflow))
			assert.True(t, errors.Is(err, dto.ErrTotalOverflow))
		})
	}
}

func TestMRPService_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMRPService(testhelpers.BuildChainTestData()).CalculateMRP(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMRPService_Explode(t *testing.T) {
	service := NewMRPService(testhelpers.BuildChainTestData())

	rows, err := service.Explode(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 3)

	c := rows[2]
	assert.Equal(t, entities.MaterialName("C"), c.Material)
	assert.Equal(t, 2, c.Level)
	assert.Equal(t, []entities.MaterialName{"A", "B", "C"}, c.Path)
	assert.Equal(t, entities.Quantity(2), c.PerUnit)
	assert.Equal(t, entities.Quantity(3), c.Multiplier)
	assert.Equal(t, entities.Quantity(6), c.Quantity)
}

func TestParseQuantitySource(t *testing.T) {
	source, err := ParseQuantitySource("")
	require.NoError(t, err)
	assert.Equal(t, CatalogQuantities, source)

	source, err = ParseQuantitySource("node")
	require.NoError(t, err)
	assert.Equal(t, NodeQuantities, source)
	assert.Equal(t, "node", source.String())

	_, err = ParseQuantitySource("per-node")
	assert.Error(t, err)
}
