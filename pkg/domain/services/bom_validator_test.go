package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/bomplanner/pkg/domain/entities"
	"github.com/vsinha/bomplanner/pkg/infrastructure/repositories/memory"
)

func TestBOMValidator_CleanForest(t *testing.T) {
	repo := memory.NewBOMRepository()
	require.NoError(t, repo.InsertNode("A", "", 1))
	require.NoError(t, repo.InsertNode("B", "A", 3))
	require.NoError(t, repo.InsertNode("C", "B", 2))

	result := NewBOMValidator().ValidateBOM(repo.Snapshot())

	assert.True(t, result.IsClean())
	assert.False(t, result.HasCycles)
	assert.Empty(t, result.DuplicateRelationships)
	assert.Empty(t, result.DuplicateNames)
}

func TestBOMValidator_DetectsMaterialCycle(t *testing.T) {
	repo := memory.NewBOMRepository()
	require.NoError(t, repo.InsertNode("A", "", 1))
	require.NoError(t, repo.InsertNode("B", "A", 2))
	// An A node under B: the tree stays finite but A now requires itself
	require.NoError(t, repo.InsertNode("A", "B", 1))

	result := NewBOMValidator().ValidateBOM(repo.Snapshot())

	require.True(t, result.HasCycles)
	require.Len(t, result.CyclePaths, 1)
	assert.Equal(t, []entities.MaterialName{"A", "B", "A"}, result.CyclePaths[0])
	assert.False(t, result.IsClean())
}

func TestBOMValidator_DuplicateRelationshipsAndNames(t *testing.T) {
	repo := memory.NewBOMRepository()
	require.NoError(t, repo.InsertNode("Bike", "", 1))
	require.NoError(t, repo.InsertNode("Wheel", "Bike", 2))
	require.NoError(t, repo.InsertNode("Wheel", "Bike", 1))
	require.NoError(t, repo.InsertNode("Trike", "", 1))
	require.NoError(t, repo.InsertNode("Wheel", "Trike", 3))

	result := NewBOMValidator().ValidateBOM(repo.Snapshot())

	assert.Equal(t, []entities.Relationship{
		{Source: "Bike", Target: "Wheel", Quantity: 1},
	}, result.DuplicateRelationships)
	assert.Equal(t, []DuplicateName{{Name: "Wheel", Occurrences: 3}}, result.DuplicateNames)
	assert.Len(t, result.Warnings, 2)
	assert.False(t, result.HasCycles)
}

func TestBOMValidator_NilForest(t *testing.T) {
	result := NewBOMValidator().ValidateBOM(nil)
	assert.True(t, result.IsClean())
}
