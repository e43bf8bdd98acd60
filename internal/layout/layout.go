// Package layout resolves the directory a resource bundle is read from,
// including the host-version qualified layout of versioned bundles.
package layout

import (
	"os"
	"path/filepath"

	"github.com/SirRandoo/streamkit/internal/hostver"
	"github.com/SirRandoo/streamkit/internal/manifest"
)

// BundleDir returns the directory for bundle within the extension rooted at
// extRoot. A versioned bundle prefers <base>/<full version> when it exists
// and otherwise falls back to <base>/<version without build>, which is not
// checked; callers report a missing fallback as a load failure.
func BundleDir(extRoot string, bundle manifest.Bundle, v hostver.Version) string {
	base := extRoot
	if bundle.Root != "" {
		base = filepath.Join(extRoot, filepath.FromSlash(bundle.Root))
	}
	if !bundle.Versioned {
		return base
	}

	full := filepath.Join(base, v.Full)
	if isDir(full) {
		return full
	}
	return filepath.Join(base, v.WithoutBuild)
}

// ResourceDir returns the directory holding resource inside bundleDir.
func ResourceDir(bundleDir string, resource manifest.Resource) string {
	if resource.Root == "" {
		return bundleDir
	}
	return filepath.Join(bundleDir, filepath.FromSlash(resource.Root))
}

// Exists reports whether dir exists and is a directory.
func Exists(dir string) bool {
	return isDir(dir)
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
