// Package analysis computes statistics for meshes and toolpaths.
package analysis

import (
	"fmt"
	"math"
	"sort"

	"github.com/philipparndt/printview/pkg/gcode"
	"github.com/philipparndt/printview/pkg/geometry"
)

// EdgeInfo contains information about an edge in the model
type EdgeInfo struct {
	Start   geometry.Vector3
	End     geometry.Vector3
	Length  float64
	FacetID int
}

// MeasurementResult contains various measurements of a mesh
type MeasurementResult struct {
	BoundingBox   geometry.BoundingBox
	Dimensions    geometry.Vector3
	Volume        float64 // Bounding box volume
	SurfaceArea   float64
	FacetCount    int
	EdgeCount     int
	MinEdgeLength float64
	MaxEdgeLength float64
	AvgEdgeLength float64
	AllEdges      []EdgeInfo
}

// AnalyzeMesh analyzes a facet-ordered vertex buffer (three vertices per facet).
// Trailing vertices that do not form a full facet are ignored.
func AnalyzeMesh(vertices []geometry.Vector3) *MeasurementResult {
	facets := len(vertices) / 3
	result := &MeasurementResult{
		BoundingBox: geometry.BoundingBoxOf(vertices[:facets*3]),
		FacetCount:  facets,
		AllEdges:    make([]EdgeInfo, 0, facets*3),
	}

	result.Dimensions = result.BoundingBox.Size()
	result.Volume = result.BoundingBox.Volume()

	minLength := math.MaxFloat64
	maxLength := 0.0
	totalLength := 0.0

	for i := 0; i < facets; i++ {
		v1, v2, v3 := vertices[i*3], vertices[i*3+1], vertices[i*3+2]
		result.SurfaceArea += geometry.NewTriangle(geometry.Vector3{}, v1, v2, v3).Area()

		edges := [3][2]geometry.Vector3{{v1, v2}, {v2, v3}, {v3, v1}}
		for _, edge := range edges {
			length := edge[0].Distance(edge[1])
			result.AllEdges = append(result.AllEdges, EdgeInfo{
				Start:   edge[0],
				End:     edge[1],
				Length:  length,
				FacetID: i,
			})

			totalLength += length
			minLength = math.Min(minLength, length)
			maxLength = math.Max(maxLength, length)
		}
	}

	result.EdgeCount = len(result.AllEdges)
	if result.EdgeCount > 0 {
		result.MinEdgeLength = minLength
		result.MaxEdgeLength = maxLength
		result.AvgEdgeLength = totalLength / float64(result.EdgeCount)
	}

	return result
}

// FindLongestEdges returns the N longest edges in the model
func FindLongestEdges(result *MeasurementResult, count int) []EdgeInfo {
	return sortedEdges(result, count, func(a, b float64) bool { return a > b })
}

// FindShortestEdges returns the N shortest edges in the model
func FindShortestEdges(result *MeasurementResult, count int) []EdgeInfo {
	return sortedEdges(result, count, func(a, b float64) bool { return a < b })
}

func sortedEdges(result *MeasurementResult, count int, less func(a, b float64) bool) []EdgeInfo {
	edges := make([]EdgeInfo, len(result.AllEdges))
	copy(edges, result.AllEdges)

	sort.SliceStable(edges, func(i, j int) bool {
		return less(edges[i].Length, edges[j].Length)
	})

	if count < 0 {
		count = 0
	}
	if count > len(edges) {
		count = len(edges)
	}

	return edges[:count]
}

// ToolpathResult summarizes a parsed GCode toolpath
type ToolpathResult struct {
	LayerCount     int
	SegmentCount   int
	ExtrudeLength  float64 // XYZ distance covered while extruding
	TravelLength   float64
	RetractCount   int
	MinZ, MaxZ     float64
	AvgLayerHeight float64
	BoundingBox    geometry.BoundingBox // Extrusion moves only
}

// AnalyzeToolpath collects movement statistics for the given layers
func AnalyzeToolpath(layers []gcode.Layer) *ToolpathResult {
	result := &ToolpathResult{
		LayerCount:  len(layers),
		BoundingBox: geometry.NewBoundingBox(),
	}
	if len(layers) == 0 {
		return result
	}

	result.MinZ = layers[0].Z
	result.MaxZ = layers[0].Z
	for _, layer := range layers {
		result.MinZ = math.Min(result.MinZ, layer.Z)
		result.MaxZ = math.Max(result.MaxZ, layer.Z)
		result.SegmentCount += len(layer.Segments)

		for _, segment := range layer.Segments {
			switch segment.Type {
			case gcode.Extrude:
				result.ExtrudeLength += segment.From.Distance(segment.To)
				result.BoundingBox.Extend(segment.From)
				result.BoundingBox.Extend(segment.To)
			case gcode.Travel:
				result.TravelLength += segment.From.Distance(segment.To)
			case gcode.Retract:
				result.RetractCount++
			}
		}
	}

	if len(layers) > 1 {
		result.AvgLayerHeight = (result.MaxZ - result.MinZ) / float64(len(layers)-1)
	} else {
		result.AvgLayerHeight = result.MaxZ
	}

	return result
}

// FormatMeasurement formats a measurement with appropriate units
func FormatMeasurement(value float64, unit string) string {
	if unit == "" {
		unit = "units"
	}
	return fmt.Sprintf("%.3f %s", value, unit)
}

// FormatVector formats a 3D vector
func FormatVector(v geometry.Vector3) string {
	return fmt.Sprintf("(%.3f, %.3f, %.3f)", v.X, v.Y, v.Z)
}
