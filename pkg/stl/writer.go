package stl

import (
	"bufio"
	"fmt"
	"io"

	"github.com/philipparndt/printview/pkg/geometry"
)

// WriteASCII serializes facets to the ASCII STL format.
// Every three consecutive vertices form one facet paired with normals[i/3].
func WriteASCII(w io.Writer, vertices, normals []geometry.Vector3) error {
	if len(vertices)%3 != 0 {
		return fmt.Errorf("vertex count %d is not a multiple of 3", len(vertices))
	}
	if len(normals) < len(vertices)/3 {
		return fmt.Errorf("have %d normals for %d facets", len(normals), len(vertices)/3)
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "solid")
	for i := 0; i < len(vertices); i += 3 {
		n := normals[i/3]
		fmt.Fprintf(bw, "facet normal %.6f %.6f %.6f\n", n.X, n.Y, n.Z)
		fmt.Fprintln(bw, "  outer loop")
		for _, v := range vertices[i : i+3] {
			fmt.Fprintf(bw, "    vertex %.6f %.6f %.6f\n", v.X, v.Y, v.Z)
		}
		fmt.Fprintln(bw, "  endloop")
		fmt.Fprintln(bw, "endfacet")
	}
	fmt.Fprintln(bw, "endsolid")
	return bw.Flush()
}
