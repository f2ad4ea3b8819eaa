// Package openscad renders OpenSCAD models to STL with the openscad binary
// so that .scad files can be used as point sources.
package openscad

import (
	"bufio"
	"bytes"
	"context"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrNotInstalled is returned when the openscad binary is not on PATH
var ErrNotInstalled = errors.New("openscad not found in PATH; install it from https://openscad.org/")

var (
	useRegex     = regexp.MustCompile(`^\s*use\s*<([^>]+)>`)
	includeRegex = regexp.MustCompile(`^\s*include\s*<([^>]+)>`)
)

// Renderer handles OpenSCAD file rendering to STL
type Renderer struct {
	workDir string
	binary  string
	logger  *slog.Logger
}

// NewRenderer creates a renderer resolving relative paths against workDir
func NewRenderer(workDir string, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Renderer{
		workDir: workDir,
		binary:  "openscad",
		logger:  logger,
	}
}

// ForFile creates a renderer working in the directory of scadFile and
// returns the absolute path to hand to its methods.
func ForFile(scadFile string, logger *slog.Logger) (*Renderer, string, error) {
	path, err := filepath.Abs(scadFile)
	if err != nil {
		return nil, "", errors.Wrapf(err, "resolving %s", scadFile)
	}
	return NewRenderer(filepath.Dir(path), logger), path, nil
}

func (r *Renderer) abs(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(r.workDir, path)
}

// RenderToSTL renders an OpenSCAD file to an STL file. The render is
// aborted when ctx is cancelled.
func (r *Renderer) RenderToSTL(ctx context.Context, scadFile, outputFile string) error {
	bin, err := exec.LookPath(r.binary)
	if err != nil {
		return ErrNotInstalled
	}

	cmd := exec.CommandContext(ctx, bin, "-o", outputFile, r.abs(scadFile))
	cmd.Dir = r.workDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.logger.Debug("rendering", "file", scadFile, "output", outputFile)
	if err := cmd.Run(); err != nil {
		err = errors.Wrapf(err, "failed to render %s", scadFile)
		if stderr.Len() > 0 {
			err = errors.WithDetailf(err, "stderr: %s", strings.TrimSpace(stderr.String()))
		}
		if stdout.Len() > 0 {
			err = errors.WithDetailf(err, "stdout: %s", strings.TrimSpace(stdout.String()))
		}
		return err
	}
	return nil
}

// ResolveDependencies returns the file itself and every file it reaches
// through use/include statements, as absolute paths.
func (r *Renderer) ResolveDependencies(scadFile string) ([]string, error) {
	visited := make(map[string]bool)
	var deps []string

	if err := r.resolve(r.abs(scadFile), visited, &deps); err != nil {
		return nil, err
	}
	return deps, nil
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

// parseDependencies lists the use/include targets of a single file
func (r *Renderer) parseDependencies(scadFile string) ([]string, error) {
	file, err := os.Open(scadFile)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", scadFile)
	}
	defer file.Close()

	var deps []string
	scanner := bufio.NewScanner(file)
	scadDir := filepath.Dir(scadFile)

	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(strings.TrimSpace(line), "//") {
			continue
		}
		for _, re := range []*regexp.Regexp{useRegex, includeRegex} {
			if matches := re.FindStringSubmatch(line); len(matches) > 1 {
				deps = append(deps, r.resolveDepPath(matches[1], scadDir))
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "error reading %s", scadFile)
	}
	return deps, nil
}

// resolveDepPath resolves a dependency relative to the including file,
// falling back to the work directory.
func (r *Renderer) resolveDepPath(depPath, currentDir string) string {
	if strings.HasPrefix(depPath, "./") || strings.HasPrefix(depPath, "../") {
		return filepath.Clean(filepath.Join(currentDir, depPath))
	}

	absPath := filepath.Join(currentDir, depPath)
	if _, err := os.Stat(absPath); err == nil {
		return filepath.Clean(absPath)
	}
	return filepath.Clean(filepath.Join(r.workDir, depPath))
}
