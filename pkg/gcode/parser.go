// Package gcode parses 3D printer toolpaths into layered movement segments.
package gcode

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/philipparndt/printview/pkg/geometry"
)

// ErrParse is returned (wrapped) for malformed GCode
var ErrParse = errors.New("gcode: parse error")

const inchToMM = 25.4

// SegmentType classifies a toolhead movement
type SegmentType int

const (
	Travel SegmentType = iota // Move without extrusion
	Extrude                   // Move while extruding
	Retract                   // Filament pulled back without XYZ motion
	Restore                   // Filament pushed forward without XYZ motion
)

// String returns a human-readable segment type
func (t SegmentType) String() string {
	switch t {
	case Travel:
		return "travel"
	case Extrude:
		return "extrude"
	case Retract:
		return "retract"
	case Restore:
		return "restore"
	}
	return "unknown"
}

// Segment is a single straight toolhead move
type Segment struct {
	From, To geometry.Vector3
	Type     SegmentType
	Line     int // Source line number
}

// Layer groups the segments printed at one Z height
type Layer struct {
	Z        float64
	Segments []Segment
}

// ProgressFunc receives processed and total line counts
type ProgressFunc func(done, total int)

// Parser converts GCode text into layers.
// Load must be called before Parse.
type Parser struct {
	lines []string

	pos          geometry.Vector3
	extruder     float64
	relative     bool
	relativeE    bool
	scale        float64
	layers       []Layer
	currentLayer *Layer
}

// NewParser creates a parser in absolute millimeter mode
func NewParser() *Parser {
	return &Parser{scale: 1}
}

// Load reads all lines from r
func (p *Parser) Load(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	p.lines = p.lines[:0]
	for scanner.Scan() {
		p.lines = append(p.lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading gcode: %w", err)
	}
	return nil
}

// Parse interprets the loaded lines and returns the layers in print order
func (p *Parser) Parse(progress ProgressFunc) ([]Layer, error) {
	p.pos = geometry.Vector3{}
	p.extruder = 0
	p.relative = false
	p.relativeE = false
	p.scale = 1
	p.layers = nil
	p.currentLayer = nil

	total := len(p.lines)
	for i, line := range p.lines {
		if err := p.parseLine(i+1, line); err != nil {
			return nil, err
		}
		if progress != nil {
			progress(i+1, total)
		}
	}
	p.flushLayer()
	return p.layers, nil
}

type word struct {
	letter byte
	value  float64
}

func (p *Parser) parseLine(lineNo int, line string) error {
	words, err := splitWords(stripComments(line))
	if err != nil {
		return fmt.Errorf("%w: line %d: %v", ErrParse, lineNo, err)
	}
	if len(words) == 0 {
		return nil
	}

	cmd := words[0]
	args := words[1:]
	switch {
	case cmd.letter == 'G' && (cmd.value == 0 || cmd.value == 1):
		p.move(lineNo, args)
	case cmd.letter == 'G' && cmd.value == 20:
		p.scale = inchToMM
	case cmd.letter == 'G' && cmd.value == 21:
		p.scale = 1
	case cmd.letter == 'G' && cmd.value == 28:
		p.home(args)
	case cmd.letter == 'G' && cmd.value == 90:
		p.relative = false
		p.relativeE = false
	case cmd.letter == 'G' && cmd.value == 91:
		p.relative = true
		p.relativeE = true
	case cmd.letter == 'G' && cmd.value == 92:
		p.setPosition(args)
	case cmd.letter == 'M' && cmd.value == 82:
		p.relativeE = false
	case cmd.letter == 'M' && cmd.value == 83:
		p.relativeE = true
	}
	return nil
}

func (p *Parser) move(lineNo int, args []word) {
	target := p.pos
	deltaE := 0.0
	for _, w := range args {
		value := w.value * p.scale
		switch w.letter {
		case 'X':
			target.X = p.coordinate(p.pos.X, value)
		case 'Y':
			target.Y = p.coordinate(p.pos.Y, value)
		case 'Z':
			target.Z = p.coordinate(p.pos.Z, value)
		case 'E':
			if p.relativeE {
				deltaE = value
			} else {
				deltaE = value - p.extruder
			}
		}
	}
	p.extruder += deltaE

	moved := target != p.pos
	var kind SegmentType
	switch {
	case moved && deltaE > 0:
		kind = Extrude
	case moved:
		kind = Travel
	case deltaE < 0:
		kind = Retract
	case deltaE > 0:
		kind = Restore
	default:
		return
	}

	if target.Z != p.pos.Z || p.currentLayer == nil {
		p.flushLayer()
		p.currentLayer = &Layer{Z: target.Z}
	}
	p.currentLayer.Segments = append(p.currentLayer.Segments, Segment{
		From: p.pos,
		To:   target,
		Type: kind,
		Line: lineNo,
	})
	p.pos = target
}

func (p *Parser) coordinate(current, value float64) float64 {
	if p.relative {
		return current + value
	}
	return value
}

func (p *Parser) home(args []word) {
	if len(args) == 0 {
		p.pos = geometry.Vector3{}
		return
	}
	for _, w := range args {
		switch w.letter {
		case 'X':
			p.pos.X = 0
		case 'Y':
			p.pos.Y = 0
		case 'Z':
			p.pos.Z = 0
		}
	}
}

func (p *Parser) setPosition(args []word) {
	for _, w := range args {
		value := w.value * p.scale
		switch w.letter {
		case 'X':
			p.pos.X = value
		case 'Y':
			p.pos.Y = value
		case 'Z':
			p.pos.Z = value
		case 'E':
			p.extruder = value
		}
	}
}

// flushLayer stores the current layer when it holds any segment
func (p *Parser) flushLayer() {
	if p.currentLayer != nil && len(p.currentLayer.Segments) > 0 {
		p.layers = append(p.layers, *p.currentLayer)
	}
	p.currentLayer = nil
}

func stripComments(line string) string {
	if i := strings.IndexByte(line, ';'); i >= 0 {
		line = line[:i]
	}
	for {
		open := strings.IndexByte(line, '(')
		if open < 0 {
			break
		}
		end := strings.IndexByte(line[open:], ')')
		if end < 0 {
			line = line[:open]
			break
		}
		line = line[:open] + " " + line[open+end+1:]
	}
	return line
}

// splitWords tokenizes "G1X10 Y2.5" style lines into letter/value words.
// Line numbers (N) and checksums (*) are dropped.
func splitWords(line string) ([]word, error) {
	if i := strings.IndexByte(line, '*'); i >= 0 {
		line = line[:i]
	}
	var words []word
	i := 0
	for i < len(line) {
		c := line[i]
		if c == ' ' || c == '\t' || c == '\r' {
			i++
			continue
		}
		if !unicode.IsLetter(rune(c)) {
			return nil, fmt.Errorf("unexpected character %q", c)
		}
		letter := byte(unicode.ToUpper(rune(c)))
		j := i + 1
		for j < len(line) && (line[j] == '-' || line[j] == '+' || line[j] == '.' || (line[j] >= '0' && line[j] <= '9')) {
			j++
		}
		number := line[i+1 : j]
		value := 0.0
		if number != "" {
			v, err := strconv.ParseFloat(number, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid number %q for %c", number, letter)
			}
			value = v
		}
		if letter != 'N' {
			words = append(words, word{letter: letter, value: value})
		}
		i = j
	}
	return words, nil
}
