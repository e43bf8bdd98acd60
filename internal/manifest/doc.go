// Package manifest parses the corpus manifest an extension ships in its root
// directory. A corpus declares ordered resource bundles, each an ordered list
// of native libraries and managed assemblies to stage or load at startup.
// Both the XML form (Corpus.xml) and a YAML form (corpus.yaml) are accepted.
package manifest
