package analysis

import (
	"math"
	"testing"

	"github.com/philipparndt/printview/pkg/gcode"
	"github.com/philipparndt/printview/pkg/geometry"
)

func v(x, y, z float64) geometry.Vector3 {
	return geometry.NewVector3(x, y, z)
}

// Two right triangles forming a 3x4 rectangle in the XY plane
func rectangle() []geometry.Vector3 {
	return []geometry.Vector3{
		v(0, 0, 0), v(3, 0, 0), v(3, 4, 0),
		v(0, 0, 0), v(3, 4, 0), v(0, 4, 0),
	}
}

func TestAnalyzeMesh(t *testing.T) {
	result := AnalyzeMesh(rectangle())

	if result.FacetCount != 2 {
		t.Errorf("FacetCount failed: expected 2, got %d", result.FacetCount)
	}
	if result.EdgeCount != 6 {
		t.Errorf("EdgeCount failed: expected 6, got %d", result.EdgeCount)
	}
	if math.Abs(result.SurfaceArea-12) > 1e-9 {
		t.Errorf("SurfaceArea failed: expected 12, got %f", result.SurfaceArea)
	}
	if !result.Dimensions.ApproxEqual(v(3, 4, 0), 1e-9) {
		t.Errorf("Dimensions failed: expected (3, 4, 0), got %v", result.Dimensions)
	}
	if result.MinEdgeLength != 3 {
		t.Errorf("MinEdgeLength failed: expected 3, got %f", result.MinEdgeLength)
	}
	if result.MaxEdgeLength != 5 {
		t.Errorf("MaxEdgeLength failed: expected 5, got %f", result.MaxEdgeLength)
	}
	if math.Abs(result.AvgEdgeLength-4) > 1e-9 {
		t.Errorf("AvgEdgeLength failed: expected 4, got %f", result.AvgEdgeLength)
	}
}

func TestAnalyzeMeshEmpty(t *testing.T) {
	result := AnalyzeMesh(nil)
	if result.FacetCount != 0 || result.EdgeCount != 0 {
		t.Errorf("Empty failed: expected no facets, got %d facets", result.FacetCount)
	}
	if result.MinEdgeLength != 0 {
		t.Errorf("Empty failed: expected min edge 0, got %f", result.MinEdgeLength)
	}
}

func TestFindEdges(t *testing.T) {
	result := AnalyzeMesh(rectangle())

	tests := []struct {
		name     string
		find     func(*MeasurementResult, int) []EdgeInfo
		count    int
		expected []float64
	}{
		{"longest", FindLongestEdges, 2, []float64{5, 5}},
		{"shortest", FindShortestEdges, 3, []float64{3, 3, 4}},
		{"clamped", FindLongestEdges, 100, []float64{5, 5, 4, 4, 3, 3}},
		{"negative", FindShortestEdges, -1, []float64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			edges := tt.find(result, tt.count)
			if len(edges) != len(tt.expected) {
				t.Fatalf("Count failed: expected %d, got %d", len(tt.expected), len(edges))
			}
			for i, edge := range edges {
				if edge.Length != tt.expected[i] {
					t.Errorf("Edge %d failed: expected %f, got %f", i, tt.expected[i], edge.Length)
				}
			}
		})
	}
}

func TestAnalyzeToolpath(t *testing.T) {
	layers := []gcode.Layer{
		{Z: 0.2, Segments: []gcode.Segment{
			{From: v(0, 0, 0.2), To: v(10, 0, 0.2), Type: gcode.Travel},
			{From: v(10, 0, 0.2), To: v(10, 10, 0.2), Type: gcode.Extrude},
			{From: v(10, 10, 0.2), To: v(10, 10, 0.2), Type: gcode.Retract},
		}},
		{Z: 0.4, Segments: []gcode.Segment{
			{From: v(10, 10, 0.4), To: v(0, 10, 0.4), Type: gcode.Extrude},
		}},
		{Z: 0.6, Segments: []gcode.Segment{
			{From: v(0, 10, 0.6), To: v(0, 0, 0.6), Type: gcode.Travel},
		}},
	}

	result := AnalyzeToolpath(layers)

	if result.LayerCount != 3 {
		t.Errorf("LayerCount failed: expected 3, got %d", result.LayerCount)
	}
	if result.SegmentCount != 5 {
		t.Errorf("SegmentCount failed: expected 5, got %d", result.SegmentCount)
	}
	if result.ExtrudeLength != 20 {
		t.Errorf("ExtrudeLength failed: expected 20, got %f", result.ExtrudeLength)
	}
	if result.TravelLength != 20 {
		t.Errorf("TravelLength failed: expected 20, got %f", result.TravelLength)
	}
	if result.RetractCount != 1 {
		t.Errorf("RetractCount failed: expected 1, got %d", result.RetractCount)
	}
	if math.Abs(result.AvgLayerHeight-0.2) > 1e-9 {
		t.Errorf("AvgLayerHeight failed: expected 0.2, got %f", result.AvgLayerHeight)
	}
	if !result.BoundingBox.Max.ApproxEqual(v(10, 10, 0.4), 1e-9) {
		t.Errorf("BoundingBox failed: expected max (10, 10, 0.4), got %v", result.BoundingBox.Max)
	}
}

func TestAnalyzeToolpathEmpty(t *testing.T) {
	result := AnalyzeToolpath(nil)
	if result.LayerCount != 0 || !result.BoundingBox.Empty() {
		t.Error("Empty failed: expected no layers and an empty box")
	}
}

func TestFormat(t *testing.T) {
	if got := FormatMeasurement(1.5, "mm"); got != "1.500 mm" {
		t.Errorf("FormatMeasurement failed: expected 1.500 mm, got %s", got)
	}
	if got := FormatMeasurement(2, ""); got != "2.000 units" {
		t.Errorf("FormatMeasurement failed: expected 2.000 units, got %s", got)
	}
	if got := FormatVector(v(1, 2, 3)); got != "(1.000, 2.000, 3.000)" {
		t.Errorf("FormatVector failed: got %s", got)
	}
}
