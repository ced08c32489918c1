package graphview

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raphaelgruber/bookgraph/internal/models"
)

func testResult() models.AnalysisResult {
	return models.AnalysisResult{
		Characters: []models.Character{
			{ID: "hamlet", Name: "Hamlet", Role: "protagonist", Description: "Prince of Denmark", Traits: []string{"brooding"}},
			{ID: "claudius", Name: "Claudius", Role: "antagonist"},
			{ID: "ophelia", Name: "Ophelia"},
			{ID: "horatio", Name: "Horatio"},
		},
		Relationships: []models.Relationship{
			{ID: "rel_1", Source: "hamlet", Target: "claudius", Type: models.RelationRival, Significance: 9},
			{ID: "rel_2", Source: "hamlet", Target: "ophelia", Type: models.RelationRomance, Significance: 7},
			{ID: "rel_3", Source: "hamlet", Target: "horatio", Type: models.RelationFriend},
		},
	}
}

func TestBuildNodes(t *testing.T) {
	g := Build(testResult())
	require.Len(t, g.Nodes, 4)

	first := g.Nodes[0]
	assert.Equal(t, "hamlet", first.ID)
	assert.Equal(t, "Hamlet", first.Label)
	assert.Equal(t, "protagonist", first.Role)
	assert.Equal(t, "Prince of Denmark", first.Description)
	assert.Equal(t, []string{"brooding"}, first.Traits)

	// First node sits at angle 0 on the circle.
	assert.InDelta(t, layoutCenterX+layoutRadius, first.X, 1e-9)
	assert.InDelta(t, layoutCenterY, first.Y, 1e-9)

	// All nodes lie on the circle and get distinct palette colors.
	seen := map[string]bool{}
	for _, n := range g.Nodes {
		dx, dy := n.X-layoutCenterX, n.Y-layoutCenterY
		assert.InDelta(t, layoutRadius, math.Hypot(dx, dy), 1e-9)
		assert.NotEmpty(t, n.Color)
		seen[n.Color] = true
	}
	assert.Len(t, seen, 4)
}

func TestBuildEdges(t *testing.T) {
	g := Build(testResult())
	require.Len(t, g.Edges, 3)

	rival := g.Edges[0]
	assert.Equal(t, "rel_1", rival.ID)
	assert.Equal(t, "Rival", rival.Label)
	assert.Equal(t, "#C70039", rival.Color)
	assert.Equal(t, 9, rival.Significance)
	assert.InDelta(t, 1+9*0.3, rival.Width, 1e-9)

	romance := g.Edges[1]
	assert.Equal(t, "Romance", romance.Label)
	assert.Equal(t, "#E91E63", romance.Color)
}

func TestBuildZeroSignificanceEdge(t *testing.T) {
	g := Build(testResult())

	// The friendship edge carried no significance; it renders at the
	// midpoint so it stays visible.
	friend := g.Edges[2]
	assert.Equal(t, 5, friend.Significance)
	assert.InDelta(t, 1+5*0.3, friend.Width, 1e-9)
}

func TestBuildUnknownTypeFallsBackToAlly(t *testing.T) {
	g := Build(models.AnalysisResult{
		Characters: []models.Character{
			{ID: "a", Name: "A"}, {ID: "b", Name: "B"},
		},
		Relationships: []models.Relationship{
			{ID: "rel_x", Source: "a", Target: "b", Type: models.RelationType("mentor"), Significance: 3},
		},
	})
	require.Len(t, g.Edges, 1)
	assert.Equal(t, "Ally", g.Edges[0].Label)
	assert.Equal(t, "#4CAF50", g.Edges[0].Color)
}

func TestBuildEmptyResult(t *testing.T) {
	g := Build(models.AnalysisResult{})
	assert.Empty(t, g.Nodes)
	assert.Empty(t, g.Edges)
	// Slices stay non-nil so the JSON payload renders [] not null.
	assert.NotNil(t, g.Nodes)
	assert.NotNil(t, g.Edges)
}
