// Package openscad turns OpenSCAD sources into STL files through the
// openscad command line tool.
package openscad

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// Extension of OpenSCAD source files
const Extension = ".scad"

var (
	// ErrNotInstalled is returned when the openscad binary is not in PATH
	ErrNotInstalled = errors.New("openscad not found in PATH")
	// ErrRender is returned when openscad fails on a source file
	ErrRender = errors.New("openscad render failed")
)

var (
	useRegex     = regexp.MustCompile(`^\s*use\s*<([^>]+)>`)
	includeRegex = regexp.MustCompile(`^\s*include\s*<([^>]+)>`)
)

// IsSource reports whether path names an OpenSCAD source
func IsSource(path string) bool {
	return strings.EqualFold(filepath.Ext(path), Extension)
}

// Renderer renders OpenSCAD files relative to a library directory
type Renderer struct {
	// Binary is the executable looked up in PATH
	Binary string
	libDir string
	log    *zap.Logger
}

// NewRenderer creates a renderer resolving bare library paths in libDir
func NewRenderer(libDir string, log *zap.Logger) *Renderer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Renderer{
		Binary: "openscad",
		libDir: libDir,
		log:    log,
	}
}

// OutputPath is where a document places the STL for scadFile inside dir
func OutputPath(dir, scadFile string) string {
	base := strings.TrimSuffix(filepath.Base(scadFile), filepath.Ext(scadFile))
	return filepath.Join(dir, base+".stl")
}

// RenderToSTL renders scadFile to outputFile
func (r *Renderer) RenderToSTL(ctx context.Context, scadFile, outputFile string) error {
	absScadFile, err := r.abs(scadFile)
	if err != nil {
		return err
	}

	bin, err := exec.LookPath(r.Binary)
	if err != nil {
		return fmt.Errorf("%w: install it from https://openscad.org/", ErrNotInstalled)
	}

	cmd := exec.CommandContext(ctx, bin, "-o", outputFile, absScadFile)
	cmd.Dir = filepath.Dir(absScadFile)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.log.Debug("rendering", zap.String("source", absScadFile), zap.String("output", outputFile))
	if err := cmd.Run(); err != nil {
		var msg strings.Builder
		fmt.Fprintf(&msg, "%s: %v", scadFile, err)
		if stderr.Len() > 0 {
			msg.WriteString("\nstderr: ")
			msg.WriteString(strings.TrimSpace(stderr.String()))
		}
		if stdout.Len() > 0 {
			msg.WriteString("\nstdout: ")
			msg.WriteString(strings.TrimSpace(stdout.String()))
		}
		return fmt.Errorf("%w: %s", ErrRender, msg.String())
	}

	return nil
}

// ResolveDependencies returns scadFile followed by every file it pulls in
// through use or include statements, as absolute paths
func (r *Renderer) ResolveDependencies(scadFile string) ([]string, error) {
	absScadFile, err := r.abs(scadFile)
	if err != nil {
		return nil, err
	}

	visited := make(map[string]bool)
	var deps []string
	if err := r.resolve(absScadFile, visited, &deps); err != nil {
		return nil, err
	}
	return deps, nil
}

func (r *Renderer) abs(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	return abs, nil
}

func (r *Renderer) resolve(scadFile string, visited map[string]bool, deps *[]string) error {
	if visited[scadFile] {
		return nil
	}
	visited[scadFile] = true
	*deps = append(*deps, scadFile)

	fileDeps, err := r.parseDependencies(scadFile)
	if err != nil {
		return err
	}
	for _, dep := range fileDeps {
		if err := r.resolve(dep, visited, deps); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) parseDependencies(scadFile string) ([]string, error) {
	file, err := os.Open(scadFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", scadFile, err)
	}
	defer file.Close()

	var deps []string
	scadDir := filepath.Dir(scadFile)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(strings.TrimSpace(line), "//") {
			continue
		}

		for _, re := range []*regexp.Regexp{useRegex, includeRegex} {
			if m := re.FindStringSubmatch(line); len(m) > 1 {
				deps = append(deps, r.resolveDepPath(m[1], scadDir))
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading %s: %w", scadFile, err)
	}

	return deps, nil
}

// resolveDepPath looks next to the including file first, then in the library dir
func (r *Renderer) resolveDepPath(depPath, currentDir string) string {
	if strings.HasPrefix(depPath, "./") || strings.HasPrefix(depPath, "../") {
		return filepath.Clean(filepath.Join(currentDir, depPath))
	}

	local := filepath.Join(currentDir, depPath)
	if _, err := os.Stat(local); err == nil || r.libDir == "" {
		return filepath.Clean(local)
	}
	return filepath.Clean(filepath.Join(r.libDir, depPath))
}
