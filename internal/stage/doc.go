// Package stage copies resource files into the host's working directory and
// keeps the record of every file it created so they can be removed again
// when the host quits.
package stage
