package bootstrap

import (
	"errors"
	"fmt"
	"strings"
)

// ErrAlreadyStarted is returned by a second call to Lifecycle.Start.
var ErrAlreadyStarted = errors.New("bootstrap: already started")

// Kind classifies a bootstrap failure by the unit of work it aborts.
type Kind int

const (
	// KindPlatformUnsupported halts the whole subsystem.
	KindPlatformUnsupported Kind = iota + 1
	// KindManifestMissing is informational: the extension has no manifest.
	KindManifestMissing
	// KindManifestMalformed aborts one extension.
	KindManifestMalformed
	// KindBundleDirectoryMissing aborts one bundle.
	KindBundleDirectoryMissing
	// KindResourceLoadFailure aborts one resource.
	KindResourceLoadFailure
	// KindCleanupFailure affects one staged file at shutdown.
	KindCleanupFailure
)

func (k Kind) String() string {
	switch k {
	case KindPlatformUnsupported:
		return "PlatformUnsupported"
	case KindManifestMissing:
		return "ManifestMissing"
	case KindManifestMalformed:
		return "ManifestMalformed"
	case KindBundleDirectoryMissing:
		return "BundleDirectoryMissing"
	case KindResourceLoadFailure:
		return "ResourceLoadFailure"
	case KindCleanupFailure:
		return "CleanupFailure"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Error is a classified bootstrap failure with the context needed to
// diagnose it. Fields that do not apply to the kind are empty.
type Error struct {
	Kind        Kind
	Extension   string
	Bundle      string
	Resource    string
	Source      string
	Destination string
	Err         error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("bootstrap: ")
	switch e.Kind {
	case KindPlatformUnsupported:
		b.WriteString("cannot run on this platform")
	case KindManifestMissing:
		fmt.Fprintf(&b, "%s has no corpus manifest", e.Extension)
	case KindManifestMalformed:
		fmt.Fprintf(&b, "corpus manifest for %s is malformed", e.Extension)
	case KindBundleDirectoryMissing:
		fmt.Fprintf(&b, "directory %s declared in %s's corpus does not exist", e.Bundle, e.Extension)
	case KindResourceLoadFailure:
		fmt.Fprintf(&b, "%s: could not load %s from %s", e.Extension, e.Resource, e.Source)
		if e.Destination != "" {
			fmt.Fprintf(&b, " to %s", e.Destination)
		}
	case KindCleanupFailure:
		fmt.Fprintf(&b, "could not clean file %s", e.Destination)
	default:
		b.WriteString(e.Kind.String())
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var be *Error
	return errors.As(err, &be) && be.Kind == kind
}
