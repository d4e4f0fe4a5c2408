// Package storage loads models from disk and writes meshes back as ASCII STL.
package storage

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/philipparndt/printview/internal/logger"
	"github.com/philipparndt/printview/internal/model"
	"github.com/philipparndt/printview/pkg/gcode"
	"github.com/philipparndt/printview/pkg/geometry"
	"github.com/philipparndt/printview/pkg/stl"
	"go.uber.org/zap"
)

// Filetype names a supported file format
type Filetype string

const (
	GCode Filetype = "gcode"
	STL   Filetype = "stl"
)

var (
	// ErrUnsupportedExtension is returned when a filetype cannot be derived from the path
	ErrUnsupportedExtension = errors.New("unsupported file extension")
	// ErrModelFile wraps every failure to read or write a model file
	ErrModelFile = errors.New("model file error")
)

// ProgressFunc receives processed and total work units while reading
type ProgressFunc func(done, total int)

// Data is the raw geometry read from a file. Vertices and Normals are set
// for STL, Layers for GCode.
type Data struct {
	Vertices []geometry.Vector3
	Normals  []geometry.Vector3
	Layers   []gcode.Layer
}

// ModelFile is a path plus lazily derived file attributes
type ModelFile struct {
	path     string
	override Filetype

	dirname   *string
	basename  *string
	extension *string
	size      *int64
}

// NewModelFile creates a model file whose type is derived from the extension
func NewModelFile(path string) *ModelFile {
	return &ModelFile{path: path}
}

// NewModelFileWithType creates a model file with an explicit filetype
func NewModelFileWithType(path string, ft Filetype) *ModelFile {
	return &ModelFile{path: path, override: ft}
}

// Path returns the file path
func (f *ModelFile) Path() string {
	return f.path
}

// SetPath changes the path and drops cached attributes
func (f *ModelFile) SetPath(path string) {
	f.path = path
	f.dirname = nil
	f.basename = nil
	f.extension = nil
	f.size = nil
}

// Dirname returns the directory part of the path
func (f *ModelFile) Dirname() string {
	if f.dirname == nil {
		d := filepath.Dir(f.path)
		f.dirname = &d
	}
	return *f.dirname
}

// Basename returns the last element of the path
func (f *ModelFile) Basename() string {
	if f.basename == nil {
		b := filepath.Base(f.path)
		f.basename = &b
	}
	return *f.basename
}

// Extension returns the lower-cased extension including the dot
func (f *ModelFile) Extension() string {
	if f.extension == nil {
		e := strings.ToLower(filepath.Ext(f.Basename()))
		f.extension = &e
	}
	return *f.extension
}

// Size returns the file size in bytes
func (f *ModelFile) Size() (int64, error) {
	if f.size == nil {
		info, err := os.Stat(f.path)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrModelFile, err)
		}
		s := info.Size()
		f.size = &s
	}
	return *f.size, nil
}

// Filetype returns the override if set, otherwise the type for the extension
func (f *ModelFile) Filetype() (Filetype, error) {
	if f.override != "" {
		return f.override, nil
	}
	switch f.Extension() {
	case ".gcode", ".nc":
		return GCode, nil
	case ".stl":
		return STL, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedExtension, f.Extension())
}

// Read parses the file and returns a fresh, not yet loaded model for it
// together with the parsed data
func (f *ModelFile) Read(progress ProgressFunc) (model.Model, Data, error) {
	ft, err := f.Filetype()
	if err != nil {
		return nil, Data{}, err
	}

	log := logger.Named("storage")
	log.Debug("reading model file", zap.String("path", f.path), zap.String("type", string(ft)))

	switch ft {
	case GCode:
		return f.loadGCode(progress)
	case STL:
		return f.loadSTL(progress)
	}
	return nil, Data{}, fmt.Errorf("%w: %q", ErrUnsupportedExtension, ft)
}

func (f *ModelFile) loadGCode(progress ProgressFunc) (model.Model, Data, error) {
	file, err := os.Open(f.path)
	if err != nil {
		return nil, Data{}, fmt.Errorf("%w: %v", ErrModelFile, err)
	}
	defer file.Close()

	parser := gcode.NewParser()
	if err := parser.Load(file); err != nil {
		return nil, Data{}, fmt.Errorf("%w: %v", ErrModelFile, err)
	}
	layers, err := parser.Parse(gcode.ProgressFunc(progress))
	if err != nil {
		return nil, Data{}, fmt.Errorf("%w: parsing error: %v", ErrModelFile, err)
	}
	return model.NewToolpath(), Data{Layers: layers}, nil
}

func (f *ModelFile) loadSTL(progress ProgressFunc) (model.Model, Data, error) {
	file, err := os.Open(f.path)
	if err != nil {
		return nil, Data{}, fmt.Errorf("%w: %v", ErrModelFile, err)
	}
	defer file.Close()

	parsed, err := stl.Read(file, stl.ProgressFunc(progress))
	if err != nil {
		return nil, Data{}, fmt.Errorf("%w: parsing error: %v", ErrModelFile, err)
	}
	return model.NewMesh(), Data{Vertices: parsed.Vertices(), Normals: parsed.Normals()}, nil
}

// Load reads the file and loads the data into the returned model
func Load(path string, progress ProgressFunc) (model.Model, error) {
	f := NewModelFile(path)
	m, data, err := f.Read(progress)
	if err != nil {
		return nil, err
	}

	switch mm := m.(type) {
	case *model.Mesh:
		if err := mm.LoadData(data.Vertices, data.Normals); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrModelFile, err)
		}
	case *model.Toolpath:
		mm.LoadData(data.Layers)
	}
	return m, nil
}

// WriteSTL writes the mesh as ASCII STL. The file must be of type STL.
func (f *ModelFile) WriteSTL(m model.MeshData) error {
	ft, err := f.Filetype()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrModelFile, err)
	}
	if ft != STL {
		return fmt.Errorf("%w: cannot write STL to a %s file", ErrModelFile, ft)
	}

	file, err := os.Create(f.path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrModelFile, err)
	}

	w := bufio.NewWriter(file)
	if err := stl.WriteASCII(w, m.Vertices(), m.Normals()); err != nil {
		file.Close()
		return fmt.Errorf("%w: %v", ErrModelFile, err)
	}
	if err := w.Flush(); err != nil {
		file.Close()
		return fmt.Errorf("%w: %v", ErrModelFile, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrModelFile, err)
	}

	f.size = nil
	logger.Named("storage").Info("model written", zap.String("path", f.path))
	return nil
}
