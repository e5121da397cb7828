package chart

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var unsafeName = regexp.MustCompile(`[^a-z0-9_-]+`)

// Artifacts tracks the chart images of one run. Every file is registered before it is drawn so
// that Cleanup removes it even when drawing fails half way.
type Artifacts struct {
	root string
	dir  string

	files []string
	names map[string]int
}

// NewArtifacts creates the per-run chart directory root/runID.
func NewArtifacts(root, runID string) (*Artifacts, error) {
	if runID == "" {
		return nil, errors.New("chart artifacts require a run id")
	}
	dir := filepath.Join(root, runID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create chart directory %s: %w", dir, err)
	}
	return &Artifacts{root: root, dir: dir, names: make(map[string]int)}, nil
}

// Dir returns the per-run directory.
func (a *Artifacts) Dir() string {
	return a.dir
}

// Path registers a new PNG artifact and returns where it must be written. Repeated names get a
// numeric suffix.
func (a *Artifacts) Path(name string) string {
	base := strings.Trim(unsafeName.ReplaceAllString(strings.ToLower(name), "_"), "_")
	if base == "" {
		base = "chart"
	}
	a.names[base]++
	if n := a.names[base]; n > 1 {
		base = fmt.Sprintf("%s_%d", base, n)
	}

	path := filepath.Join(a.dir, base+".png")
	a.files = append(a.files, path)
	return path
}

// Files returns the registered artifact paths in registration order.
func (a *Artifacts) Files() []string {
	return append([]string(nil), a.files...)
}

// Cleanup deletes every registered file, then the run directory and the chart root when they
// are left empty. Each step is attempted regardless of earlier failures.
func (a *Artifacts) Cleanup() error {
	var errs []error
	for _, f := range a.Files() {
		if err := os.Remove(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, fmt.Errorf("failed to remove chart %s: %w", f, err))
		}
	}
	if err := removeIfEmpty(a.dir); err != nil {
		errs = append(errs, err)
	}
	if err := removeIfEmpty(a.root); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func removeIfEmpty(dir string) error {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read chart directory %s: %w", dir, err)
	}
	if len(entries) > 0 {
		return nil
	}
	if err := os.Remove(dir); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove chart directory %s: %w", dir, err)
	}
	return nil
}
