package manifest

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is the serialization of a manifest file.
type Format string

const (
	FormatXML  Format = "xml"
	FormatYAML Format = "yaml"
)

// File names looked up in an extension root, in order.
const (
	XMLFileName  = "Corpus.xml"
	YAMLFileName = "corpus.yaml"
)

// ErrEmpty is returned when a manifest file holds no root object.
var ErrEmpty = errors.New("manifest: no corpus object")

// ParseFormat parses a format name, defaulting to YAML.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatYAML, "yml", "":
		return FormatYAML, nil
	case FormatXML:
		return FormatXML, nil
	default:
		return "", fmt.Errorf("unknown manifest format: %q (must be xml or yaml)", s)
	}
}

// FileName returns the fixed manifest file name for the format.
func (f Format) FileName() string {
	if f == FormatXML {
		return XMLFileName
	}
	return YAMLFileName
}

// Find looks for a manifest in root. It returns ok=false when none exists.
func Find(root string) (path string, format Format, ok bool) {
	for _, f := range []Format{FormatXML, FormatYAML} {
		p := filepath.Join(root, f.FileName())
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, f, true
		}
	}
	return "", "", false
}

// Load reads and validates the manifest at path, picking the format from
// the file extension.
func Load(path string) (*Corpus, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is an extension manifest
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	return Parse(data, formatOf(path))
}

func formatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xml":
		return FormatXML
	default:
		return FormatYAML
	}
}

// Parse parses and validates manifest content.
func Parse(data []byte, format Format) (*Corpus, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmpty
	}

	var c *Corpus
	switch format {
	case FormatXML:
		c = new(Corpus)
		if err := xml.Unmarshal(data, c); err != nil {
			return nil, fmt.Errorf("parsing manifest XML: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("parsing manifest YAML: %w", err)
		}
	}
	if c == nil {
		return nil, ErrEmpty
	}
	if err := validate(c); err != nil {
		return nil, err
	}
	return c, nil
}

// Marshal validates c and serializes it in the given format.
func Marshal(c *Corpus, format Format) ([]byte, error) {
	if err := validate(c); err != nil {
		return nil, err
	}
	if format == FormatXML {
		data, err := xml.MarshalIndent(c, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshaling manifest: %w", err)
		}
		return append([]byte(xml.Header), append(data, '\n')...), nil
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshaling manifest: %w", err)
	}
	return data, nil
}

// Save validates and writes c into dir under the format's fixed file name.
// It returns the path written.
func Save(dir string, c *Corpus, format Format) (string, error) {
	data, err := Marshal(c, format)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, format.FileName())
	if err := os.WriteFile(path, data, 0644); err != nil { //nolint:gosec // manifest needs to be readable
		return "", fmt.Errorf("writing manifest: %w", err)
	}
	return path, nil
}

func validate(c *Corpus) error {
	for i, b := range c.Bundles {
		if b.Root != "" {
			if err := validatePath(b.Root, fmt.Sprintf("bundles[%d].root", i)); err != nil {
				return err
			}
		}
		for j, r := range b.Resources {
			if err := validateResource(i, j, r); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateResource(i, j int, r Resource) error {
	if r.Name == "" {
		return fmt.Errorf("manifest: bundles[%d].resources[%d].name is required", i, j)
	}
	if strings.ContainsAny(r.Name, `/\`) || r.Name == "." || r.Name == ".." {
		return fmt.Errorf("manifest: bundles[%d].resources[%d]: invalid name %q", i, j, r.Name)
	}
	if _, ok := typeNames[r.Type]; !ok {
		return fmt.Errorf("manifest: bundles[%d].resources[%d] (%s).type is required", i, j, r.Name)
	}
	if r.Root != "" {
		label := fmt.Sprintf("bundles[%d].resources[%d] (%s).root", i, j, r.Name)
		if err := validatePath(r.Root, label); err != nil {
			return err
		}
	}
	return nil
}

// validatePath ensures a path is relative and does not escape the extension.
func validatePath(p, label string) error {
	if filepath.IsAbs(p) || strings.HasPrefix(p, "/") || strings.HasPrefix(p, `\`) {
		return fmt.Errorf("manifest: %s: absolute path is not allowed: %s", label, p)
	}
	cleaned := filepath.Clean(filepath.FromSlash(p))
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return fmt.Errorf("manifest: %s: path must not escape the extension (contains ..): %s", label, p)
	}
	return nil
}
