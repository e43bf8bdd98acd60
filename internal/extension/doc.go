// Package extension enumerates the installed extensions of the host. An
// extension is a directory with a display name; a mods directory holds one
// extension per immediate subdirectory.
package extension
