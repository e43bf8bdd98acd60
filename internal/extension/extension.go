package extension

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// AboutPath is the optional metadata file, relative to an extension root,
// that supplies the display name.
const AboutPath = "About/About.xml"

// Extension is one installed extension.
type Extension struct {
	Name string
	Root string
}

// Source enumerates installed extensions in a stable order.
type Source interface {
	Extensions() ([]Extension, error)
}

// List is a fixed set of extensions.
type List []Extension

// Extensions returns the list unchanged.
func (l List) Extensions() ([]Extension, error) {
	return l, nil
}

// DirSource treats every subdirectory of Dir as an extension.
type DirSource struct {
	Dir string
}

// Extensions lists the subdirectories of Dir in lexical order. Hidden
// directories are ignored.
func (s DirSource) Extensions() ([]Extension, error) {
	dir, err := filepath.Abs(s.Dir)
	if err != nil {
		return nil, fmt.Errorf("resolving extensions directory: %w", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading extensions directory: %w", err)
	}

	var exts []Extension
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		root := filepath.Join(dir, e.Name())
		exts = append(exts, Extension{Name: displayName(root, e.Name()), Root: root})
	}
	sort.Slice(exts, func(i, j int) bool { return filepath.Base(exts[i].Root) < filepath.Base(exts[j].Root) })
	return exts, nil
}

type about struct {
	Name string `xml:"name"`
}

// displayName reads the name element of About/About.xml, falling back to
// the directory name.
func displayName(root, fallback string) string {
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(AboutPath))) //nolint:gosec // path inside the extension root
	if err != nil {
		return fallback
	}
	var a about
	if err := xml.Unmarshal(data, &a); err != nil {
		return fallback
	}
	if name := strings.TrimSpace(a.Name); name != "" {
		return name
	}
	return fallback
}
