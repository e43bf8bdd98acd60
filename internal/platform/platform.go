package platform

import (
	"errors"
	"fmt"
	"runtime"
)

// ErrUnsupported is returned for any OS without a native library suffix.
var ErrUnsupported = errors.New("unsupported platform")

// Platform is a supported OS together with its native library suffix.
type Platform struct {
	OS     string
	Suffix string
}

var suffixes = map[string]string{
	"windows": "dll",
	"linux":   "so",
	"darwin":  "dylib",
}

// Resolve returns the Platform for goos, or an error wrapping ErrUnsupported.
func Resolve(goos string) (Platform, error) {
	suffix, ok := suffixes[goos]
	if !ok {
		return Platform{}, fmt.Errorf("%w: %q", ErrUnsupported, goos)
	}
	return Platform{OS: goos, Suffix: suffix}, nil
}

// Current resolves the platform this binary was built for.
func Current() (Platform, error) {
	return Resolve(runtime.GOOS)
}

// NativeFileName returns the file name of the native library called name.
func (p Platform) NativeFileName(name string) string {
	return name + "." + p.Suffix
}
