package persistence_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/skirmish-economy-go/internal/adapters/persistence"
	"github.com/andrescamacho/skirmish-economy-go/test/helpers"
)

func TestSiteGraphRepository_MissReturnsNil(t *testing.T) {
	// Arrange
	repo := persistence.NewGormSiteGraphRepository(helpers.NewTestDB(t))

	// Act
	graph, err := repo.Get(context.Background(), "delta", "abc")

	// Assert
	require.NoError(t, err)
	assert.Nil(t, graph)
}

func TestSiteGraphRepository_AddUpserts(t *testing.T) {
	// Arrange
	ctx := context.Background()
	repo := persistence.NewGormSiteGraphRepository(helpers.NewTestDB(t))
	require.NoError(t, repo.Add(ctx, persistence.StoredGraph{MapName: "delta", Fingerprint: "abc", Sites: 4, Links: 3, Payload: []byte{1, 2}}))

	// Act
	err := repo.Add(ctx, persistence.StoredGraph{MapName: "delta", Fingerprint: "abc", Sites: 4, Links: 5, Payload: []byte{3}})

	// Assert
	require.NoError(t, err)
	graph, err := repo.Get(ctx, "delta", "abc")
	require.NoError(t, err)
	require.NotNil(t, graph)
	assert.Equal(t, 5, graph.Links)
	assert.Equal(t, []byte{3}, graph.Payload)

	all, err := repo.ListByMap(ctx, "delta")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSiteGraphRepository_FingerprintsAreKeptApart(t *testing.T) {
	// Arrange
	ctx := context.Background()
	repo := persistence.NewGormSiteGraphRepository(helpers.NewTestDB(t))
	require.NoError(t, repo.Add(ctx, persistence.StoredGraph{MapName: "delta", Fingerprint: "abc", Payload: []byte{1}}))

	// Act
	graph, err := repo.Get(ctx, "delta", "def")

	// Assert
	require.NoError(t, err)
	assert.Nil(t, graph)
}
