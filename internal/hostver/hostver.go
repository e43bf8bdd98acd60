// Package hostver describes the version of the running host application in
// the two forms used to qualify versioned resource directories.
package hostver

import (
	"fmt"
	"strings"
)

// Version is the host version as a full string and without its build
// component, e.g. "1.5.0.1" and "1.5.0".
type Version struct {
	Full         string
	WithoutBuild string
}

// Parse derives a Version from a full version string by dropping its last
// dot-separated component. A single-component version is its own
// build-less form.
func Parse(full string) (Version, error) {
	full = strings.TrimSpace(full)
	if full == "" {
		return Version{}, fmt.Errorf("host version is required")
	}
	for _, part := range strings.Split(full, ".") {
		if part == "" {
			return Version{}, fmt.Errorf("invalid host version %q: empty component", full)
		}
	}

	withoutBuild := full
	if i := strings.LastIndex(full, "."); i != -1 {
		withoutBuild = full[:i]
	}
	return Version{Full: full, WithoutBuild: withoutBuild}, nil
}

// New builds a Version from explicit strings. When withoutBuild is empty it
// is derived from full as Parse does.
func New(full, withoutBuild string) (Version, error) {
	v, err := Parse(full)
	if err != nil {
		return Version{}, err
	}
	if wb := strings.TrimSpace(withoutBuild); wb != "" {
		v.WithoutBuild = wb
	}
	return v, nil
}

func (v Version) String() string {
	return v.Full
}
