package manifest

import (
	"encoding/xml"
	"fmt"
)

// Corpus is the root of an extension's manifest.
type Corpus struct {
	XMLName xml.Name `xml:"Corpus" yaml:"-"`
	Bundles []Bundle `xml:"Bundle" yaml:"bundles"`
}

// Bundle is a group of resources sharing a base directory.
type Bundle struct {
	Root      string     `xml:"root,attr,omitempty" yaml:"root,omitempty"`
	Versioned bool       `xml:"versioned,attr,omitempty" yaml:"versioned,omitempty"`
	Resources []Resource `xml:"Resource" yaml:"resources"`
}

// Resource is a single loadable file, located by name and type.
type Resource struct {
	Name string       `xml:"name,attr" yaml:"name"`
	Root string       `xml:"root,attr,omitempty" yaml:"root,omitempty"`
	Type ResourceType `xml:"type,attr" yaml:"type"`
}

// ResourceType selects how a resource is located and handled.
type ResourceType int

const (
	// Dll is a native library staged next to the host executable.
	Dll ResourceType = iota + 1
	// Assembly is a managed module handed to the host's module loader.
	Assembly
	// NetStandardAssembly is an auxiliary managed library staged like Dll
	// but always with the managed extension.
	NetStandardAssembly
)

// ManagedExtension is the file extension of managed assemblies.
const ManagedExtension = "dll"

var typeNames = map[ResourceType]string{
	Dll:                 "Dll",
	Assembly:            "Assembly",
	NetStandardAssembly: "NetStandardAssembly",
}

func (t ResourceType) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("ResourceType(%d)", int(t))
}

// MarshalText implements encoding.TextMarshaler.
func (t ResourceType) MarshalText() ([]byte, error) {
	s, ok := typeNames[t]
	if !ok {
		return nil, fmt.Errorf("unknown resource type %d", int(t))
	}
	return []byte(s), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *ResourceType) UnmarshalText(text []byte) error {
	rt, err := ParseResourceType(string(text))
	if err != nil {
		return err
	}
	*t = rt
	return nil
}

// ParseResourceType parses the manifest spelling of a resource type.
func ParseResourceType(s string) (ResourceType, error) {
	for t, name := range typeNames {
		if name == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown resource type %q (must be Dll, Assembly, or NetStandardAssembly)", s)
}

// Staged reports whether resources of this type are copied into the working
// directory rather than handed to the module loader.
func (t ResourceType) Staged() bool {
	return t == Dll || t == NetStandardAssembly
}
