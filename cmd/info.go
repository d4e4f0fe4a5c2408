package cmd

import (
	"fmt"
	"io"

	"github.com/philipparndt/printview/internal/storage"
	"github.com/philipparndt/printview/pkg/analysis"
	"github.com/spf13/cobra"
)

func newInfoCmd(o *options) *cobra.Command {
	var (
		edgesCount    int
		edgesShortest bool
	)

	infoCmd := &cobra.Command{
		Use:   "info <file>",
		Short: "Display general information about a model file",
		Long:  "Show dimensions, facet count, surface area and edge statistics for meshes, or layer statistics for toolpaths.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := storage.NewModelFile(args[0])
			_, data, err := f.Read(nil)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "File: %s\n", f.Basename())
			if size, err := f.Size(); err == nil {
				fmt.Fprintf(out, "Size: %d bytes\n", size)
			}
			ft, _ := f.Filetype()
			fmt.Fprintf(out, "Type: %s\n\n", ft)

			if ft == storage.GCode {
				printToolpathInfo(out, analysis.AnalyzeToolpath(data.Layers))
				return nil
			}

			result := analysis.AnalyzeMesh(data.Vertices)
			printMeshInfo(out, result)
			if edgesCount > 0 {
				printEdges(out, result, edgesCount, edgesShortest)
			}
			return nil
		},
	}

	infoCmd.Flags().IntVarP(&edgesCount, "edges", "n", 0, "Number of longest edges to list")
	infoCmd.Flags().BoolVarP(&edgesShortest, "shortest", "s", false, "List the shortest edges instead")

	return infoCmd
}

func printMeshInfo(out io.Writer, result *analysis.MeasurementResult) {
	fmt.Fprintln(out, "Mesh Statistics:")
	fmt.Fprintf(out, "  Facets: %d\n", result.FacetCount)
	fmt.Fprintf(out, "  Edges: %d\n", result.EdgeCount)
	fmt.Fprintf(out, "  Surface Area: %s\n\n", analysis.FormatMeasurement(result.SurfaceArea, "mm2"))

	fmt.Fprintln(out, "Bounding Box:")
	fmt.Fprintf(out, "  Min: %s\n", analysis.FormatVector(result.BoundingBox.Min))
	fmt.Fprintf(out, "  Max: %s\n", analysis.FormatVector(result.BoundingBox.Max))
	fmt.Fprintf(out, "  Center: %s\n\n", analysis.FormatVector(result.BoundingBox.Center()))

	fmt.Fprintln(out, "Dimensions:")
	fmt.Fprintf(out, "  Width (X): %s\n", analysis.FormatMeasurement(result.Dimensions.X, "mm"))
	fmt.Fprintf(out, "  Depth (Y): %s\n", analysis.FormatMeasurement(result.Dimensions.Y, "mm"))
	fmt.Fprintf(out, "  Height (Z): %s\n", analysis.FormatMeasurement(result.Dimensions.Z, "mm"))
	fmt.Fprintf(out, "  Diagonal: %s\n\n", analysis.FormatMeasurement(result.BoundingBox.Diagonal(), "mm"))

	fmt.Fprintln(out, "Edge Lengths:")
	fmt.Fprintf(out, "  Minimum: %s\n", analysis.FormatMeasurement(result.MinEdgeLength, "mm"))
	fmt.Fprintf(out, "  Maximum: %s\n", analysis.FormatMeasurement(result.MaxEdgeLength, "mm"))
	fmt.Fprintf(out, "  Average: %s\n", analysis.FormatMeasurement(result.AvgEdgeLength, "mm"))
}

func printEdges(out io.Writer, result *analysis.MeasurementResult, count int, shortest bool) {
	edges := analysis.FindLongestEdges(result, count)
	title := "Longest Edges"
	if shortest {
		edges = analysis.FindShortestEdges(result, count)
		title = "Shortest Edges"
	}

	fmt.Fprintf(out, "\n%s:\n", title)
	fmt.Fprintf(out, "%-6s %-30s %-30s %-12s\n", "Facet", "Start", "End", "Length")
	for _, edge := range edges {
		fmt.Fprintf(out, "%-6d %-30s %-30s %-12.3f\n",
			edge.FacetID,
			analysis.FormatVector(edge.Start),
			analysis.FormatVector(edge.End),
			edge.Length)
	}
}

func printToolpathInfo(out io.Writer, result *analysis.ToolpathResult) {
	fmt.Fprintln(out, "Toolpath Statistics:")
	fmt.Fprintf(out, "  Layers: %d\n", result.LayerCount)
	fmt.Fprintf(out, "  Segments: %d\n", result.SegmentCount)
	fmt.Fprintf(out, "  Retractions: %d\n", result.RetractCount)
	fmt.Fprintf(out, "  Extrusion path: %s\n", analysis.FormatMeasurement(result.ExtrudeLength, "mm"))
	fmt.Fprintf(out, "  Travel path: %s\n\n", analysis.FormatMeasurement(result.TravelLength, "mm"))

	fmt.Fprintln(out, "Heights:")
	fmt.Fprintf(out, "  First layer: %s\n", analysis.FormatMeasurement(result.MinZ, "mm"))
	fmt.Fprintf(out, "  Last layer: %s\n", analysis.FormatMeasurement(result.MaxZ, "mm"))
	fmt.Fprintf(out, "  Average layer height: %s\n", analysis.FormatMeasurement(result.AvgLayerHeight, "mm"))

	if !result.BoundingBox.Empty() {
		size := result.BoundingBox.Size()
		fmt.Fprintf(out, "  Printed area: %.3f x %.3f mm\n", size.X, size.Y)
	}
}
