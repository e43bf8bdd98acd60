// Package platform maps the running operating system to the file-name suffix
// its dynamic linker uses for native libraries.
package platform
