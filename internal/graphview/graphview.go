// Package graphview maps an analysis result onto a renderable
// node/edge graph: circle-layout positions, role colors and per-type
// edge styling. Pure presentation; nothing here feeds back into the
// analysis pipeline.
package graphview

import (
	"math"

	"github.com/raphaelgruber/bookgraph/internal/models"
)

// Layout constants for the circle arrangement.
const (
	layoutRadius  = 300.0
	layoutCenterX = 400.0
	layoutCenterY = 300.0
)

// nodeColors is the palette cycled over character nodes.
var nodeColors = []string{
	"#FF5733", "#C70039", "#900C3F", "#581845",
	"#FFC300", "#52BE80", "#1E8449", "#3498DB",
	"#8E44AD", "#5D6D7E", "#AF7AC5", "#F1C40F",
}

// edgeStyle describes how one relationship type renders.
type edgeStyle struct {
	Label string
	Color string
}

var edgeStyles = map[models.RelationType]edgeStyle{
	models.RelationFamily:  {Label: "Family", Color: "#FF5733"},
	models.RelationFriend:  {Label: "Friend", Color: "#3498DB"},
	models.RelationRival:   {Label: "Rival", Color: "#C70039"},
	models.RelationRomance: {Label: "Romance", Color: "#E91E63"},
	models.RelationAlly:    {Label: "Ally", Color: "#4CAF50"},
}

// Node is one renderable character.
type Node struct {
	ID          string   `json:"id"`
	Label       string   `json:"label"`
	X           float64  `json:"x"`
	Y           float64  `json:"y"`
	Color       string   `json:"color"`
	Role        string   `json:"role"`
	Description string   `json:"description"`
	Traits      []string `json:"traits"`
}

// Edge is one renderable relationship.
type Edge struct {
	ID           string              `json:"id"`
	Source       string              `json:"source"`
	Target       string              `json:"target"`
	Type         models.RelationType `json:"type"`
	Label        string              `json:"label"`
	Color        string              `json:"color"`
	Width        float64             `json:"width"`
	Description  string              `json:"description"`
	Significance int                 `json:"significance"`
}

// Graph is the full renderable character network.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Build lays the characters out on a circle and styles each relationship
// by its type. A zero significance renders as the midpoint value 5 so the
// edge stays visible.
func Build(result models.AnalysisResult) Graph {
	nodes := make([]Node, 0, len(result.Characters))
	for i, c := range result.Characters {
		angle := float64(i) / float64(len(result.Characters)) * 2 * math.Pi
		nodes = append(nodes, Node{
			ID:          c.ID,
			Label:       c.Name,
			X:           layoutRadius*math.Cos(angle) + layoutCenterX,
			Y:           layoutRadius*math.Sin(angle) + layoutCenterY,
			Color:       nodeColors[i%len(nodeColors)],
			Role:        c.Role,
			Description: c.Description,
			Traits:      c.Traits,
		})
	}

	edges := make([]Edge, 0, len(result.Relationships))
	for _, rel := range result.Relationships {
		style, ok := edgeStyles[rel.Type]
		if !ok {
			style = edgeStyles[models.RelationAlly]
		}
		significance := rel.Significance
		if significance == 0 {
			significance = 5
		}
		edges = append(edges, Edge{
			ID:           rel.ID,
			Source:       rel.Source,
			Target:       rel.Target,
			Type:         rel.Type,
			Label:        style.Label,
			Color:        style.Color,
			Width:        1 + float64(significance)*0.3,
			Description:  rel.Description,
			Significance: significance,
		})
	}

	return Graph{Nodes: nodes, Edges: edges}
}
