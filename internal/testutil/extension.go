// Package testutil builds extension directory trees for tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFile writes content at root/rel, creating parent directories.
func WriteFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil { //nolint:gosec // test directory
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil { //nolint:gosec // test file
		t.Fatal(err)
	}
	return path
}

// Mkdir creates root/rel and its parents.
func Mkdir(t *testing.T, root, rel string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(path, 0755); err != nil { //nolint:gosec // test directory
		t.Fatal(err)
	}
	return path
}

// CreateExtension creates mods/name with the given XML corpus (skipped when
// empty) and files, keyed by path relative to the extension root. It
// returns the extension root.
func CreateExtension(t *testing.T, mods, name, corpus string, files map[string]string) string {
	t.Helper()
	root := Mkdir(t, mods, name)
	if corpus != "" {
		WriteFile(t, root, "Corpus.xml", corpus)
	}
	for rel, content := range files {
		WriteFile(t, root, rel, content)
	}
	return root
}

// ReadFile returns the content of path, failing the test on error.
func ReadFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path) //nolint:gosec // test file
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

// Exists reports whether path exists.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
