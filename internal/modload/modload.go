// Package modload is the CLI host's module loading facility: it accepts
// managed assemblies on behalf of extensions and keeps track of what each
// extension loaded.
package modload

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/SirRandoo/streamkit/internal/extension"
)

// ErrAlreadyLoaded is returned when the same assembly path is loaded twice.
var ErrAlreadyLoaded = errors.New("assembly already loaded")

// Assembly is one accepted assembly.
type Assembly struct {
	Extension string
	Path      string
	Size      int64
}

// Registry accepts assemblies that exist as non-empty regular files.
type Registry struct {
	loaded []Assembly
	seen   map[string]string
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{seen: make(map[string]string)}
}

// LoadAssembly records the assembly at path for ext.
func (r *Registry) LoadAssembly(ext extension.Extension, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving assembly path: %w", err)
	}
	if owner, ok := r.seen[abs]; ok {
		return fmt.Errorf("%w: %s (by %s)", ErrAlreadyLoaded, abs, owner)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("loading assembly: %w", err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("loading assembly: %s is not a regular file", abs)
	}
	if info.Size() == 0 {
		return fmt.Errorf("loading assembly: %s is empty", abs)
	}

	r.seen[abs] = ext.Name
	r.loaded = append(r.loaded, Assembly{Extension: ext.Name, Path: abs, Size: info.Size()})
	return nil
}

// Loaded returns the accepted assemblies in load order.
func (r *Registry) Loaded() []Assembly {
	out := make([]Assembly, len(r.loaded))
	copy(out, r.loaded)
	return out
}
