package stl

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/philipparndt/printview/pkg/geometry"
)

// ErrParse is returned (wrapped) for malformed STL input
var ErrParse = errors.New("stl: parse error")

const (
	binaryHeaderSize   = 80
	binaryTriangleSize = 50
)

// ProgressFunc receives the number of processed and total facets.
// total is -1 when it is unknown in advance (ASCII files).
type ProgressFunc func(done, total int)

// Parse reads an STL file and returns a Model
// It automatically detects whether the file is ASCII or binary format
func Parse(filename string) (*Model, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return Read(file, nil)
}

// Read parses STL data from r, reporting progress through the optional callback
func Read(r io.Reader, progress ProgressFunc) (*Model, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read STL data: %w", err)
	}
	if progress == nil {
		progress = func(int, int) {}
	}

	if isBinary(data) {
		return parseBinary(data, progress)
	}
	return parseASCII(bytes.NewReader(data), progress)
}

// isBinary checks the size implied by the binary triangle count.
// ASCII files start with "solid", but so do some binary exporters' headers.
func isBinary(data []byte) bool {
	if len(data) < binaryHeaderSize+4 {
		return !bytes.HasPrefix(bytes.TrimLeft(data, " \t\r\n"), []byte("solid"))
	}
	count := binary.LittleEndian.Uint32(data[binaryHeaderSize:])
	expected := uint64(binaryHeaderSize+4) + uint64(count)*binaryTriangleSize
	if uint64(len(data)) == expected {
		return true
	}
	return !bytes.HasPrefix(bytes.TrimLeft(data, " \t\r\n"), []byte("solid"))
}

// parseASCII parses an ASCII STL file
func parseASCII(reader io.Reader, progress ProgressFunc) (*Model, error) {
	scanner := bufio.NewScanner(reader)
	model := NewModel("")

	var currentNormal geometry.Vector3
	var vertices []geometry.Vector3
	inFacet := false
	facetLine := 0
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "solid":
			if len(fields) > 1 {
				model.Name = strings.Join(fields[1:], " ")
			}

		case "facet":
			if inFacet {
				return nil, fmt.Errorf("%w: line %d: facet started before line %d was closed", ErrParse, lineNo, facetLine)
			}
			if len(fields) < 5 || fields[1] != "normal" {
				return nil, fmt.Errorf("%w: line %d: malformed facet", ErrParse, lineNo)
			}
			n, err := parseVector(fields[2:5])
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrParse, lineNo, err)
			}
			currentNormal = n
			vertices = vertices[:0]
			inFacet = true
			facetLine = lineNo

		case "vertex":
			if !inFacet {
				return nil, fmt.Errorf("%w: line %d: vertex outside of a facet", ErrParse, lineNo)
			}
			if len(fields) < 4 {
				return nil, fmt.Errorf("%w: line %d: malformed vertex", ErrParse, lineNo)
			}
			v, err := parseVector(fields[1:4])
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrParse, lineNo, err)
			}
			vertices = append(vertices, v)

		case "endfacet":
			if !inFacet {
				return nil, fmt.Errorf("%w: line %d: endfacet without facet", ErrParse, lineNo)
			}
			if len(vertices) != 3 {
				return nil, fmt.Errorf("%w: line %d: facet has %d vertices", ErrParse, lineNo, len(vertices))
			}
			model.AddTriangle(geometry.NewTriangle(currentNormal, vertices[0], vertices[1], vertices[2]))
			vertices = vertices[:0]
			inFacet = false
			progress(model.TriangleCount(), -1)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading ASCII STL: %w", err)
	}
	if inFacet {
		return nil, fmt.Errorf("%w: unexpected end of file in facet started at line %d", ErrParse, facetLine)
	}

	return model, nil
}

func parseVector(fields []string) (geometry.Vector3, error) {
	var xyz [3]float64
	for i, field := range fields {
		value, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return geometry.Vector3{}, fmt.Errorf("invalid number %q", field)
		}
		xyz[i] = value
	}
	return geometry.NewVector3(xyz[0], xyz[1], xyz[2]), nil
}

// parseBinary parses a binary STL file
func parseBinary(data []byte, progress ProgressFunc) (*Model, error) {
	if len(data) < binaryHeaderSize+4 {
		return nil, fmt.Errorf("%w: truncated header", ErrParse)
	}

	// Extract name from header (if present)
	model := NewModel(strings.TrimSpace(string(bytes.TrimRight(data[:binaryHeaderSize], "\x00"))))

	count := int(binary.LittleEndian.Uint32(data[binaryHeaderSize:]))
	body := data[binaryHeaderSize+4:]
	if len(body) < count*binaryTriangleSize {
		return nil, fmt.Errorf("%w: expected %d triangles, data holds %d", ErrParse, count, len(body)/binaryTriangleSize)
	}

	model.Triangles = make([]geometry.Triangle, 0, count)
	for i := 0; i < count; i++ {
		b := body[i*binaryTriangleSize:]
		model.AddTriangle(geometry.NewTriangle(
			getVector(b),
			getVector(b[12:]),
			getVector(b[24:]),
			getVector(b[36:]),
		))
		progress(i+1, count)
	}

	return model, nil
}

func getVector(b []byte) geometry.Vector3 {
	_ = b[11] // early bounds check
	return geometry.NewVector3(
		float64(math.Float32frombits(binary.LittleEndian.Uint32(b))),
		float64(math.Float32frombits(binary.LittleEndian.Uint32(b[4:]))),
		float64(math.Float32frombits(binary.LittleEndian.Uint32(b[8:]))),
	)
}
