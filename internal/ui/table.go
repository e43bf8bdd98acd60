package ui

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// Table renders rows of data in aligned columns. Styled values should go in
// the last column, since escape sequences would skew alignment elsewhere.
type Table struct {
	w       *tabwriter.Writer
	headers []string
	rows    int
}

// NewTable creates a new table writer with the given column headers.
func NewTable(out io.Writer, headers ...string) *Table {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	t := &Table{w: tw, headers: headers}
	_, _ = fmt.Fprintln(tw, strings.Join(headers, "\t"))
	return t
}

// Row appends a row of values. Missing trailing values render empty.
func (t *Table) Row(values ...any) {
	parts := make([]string, len(t.headers))
	for i := range parts {
		if i < len(values) {
			parts[i] = fmt.Sprintf("%v", values[i])
		}
	}
	_, _ = fmt.Fprintln(t.w, strings.Join(parts, "\t"))
	t.rows++
}

// Len returns the number of rows written.
func (t *Table) Len() int {
	return t.rows
}

// Flush writes the buffered output.
func (t *Table) Flush() error {
	return t.w.Flush()
}
