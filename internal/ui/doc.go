// Package ui renders skboot output: aligned tables, a progress counter and
// coloured status labels.
package ui
