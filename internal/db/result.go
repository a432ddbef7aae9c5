package db

import (
	"fmt"
	"strings"
)

// Result holds query output rendered as text. NULL values read as "NULL".
type Result struct {
	Columns   []string
	Rows      [][]string
	Truncated bool
}

// Format renders the result as an ASCII table followed by a row count.
func (r *Result) Format() string {
	out := formatTable(r.Columns, r.Rows)
	if r.Truncated {
		out += fmt.Sprintf("(truncated at %d rows)\n", len(r.Rows))
	}
	return out
}

func formatTable(columns []string, rows [][]string) string {
	if len(columns) == 0 {
		return "(0 rows)\n"
	}

	widths := make([]int, len(columns))
	for i, c := range columns {
		widths[i] = len(c)
	}
	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var b strings.Builder
	sep := separator(widths)
	b.WriteString(sep)
	writeRow(&b, widths, columns)
	b.WriteString(sep)
	for _, row := range rows {
		writeRow(&b, widths, row)
	}
	b.WriteString(sep)

	if n := len(rows); n == 1 {
		b.WriteString("(1 row)\n")
	} else {
		fmt.Fprintf(&b, "(%d rows)\n", n)
	}
	return b.String()
}

func writeRow(b *strings.Builder, widths []int, cells []string) {
	b.WriteByte('|')
	for i, c := range cells {
		fmt.Fprintf(b, " %-*s |", widths[i], c)
	}
	b.WriteByte('\n')
}

func separator(widths []int) string {
	var b strings.Builder
	b.WriteByte('+')
	for _, w := range widths {
		b.WriteString(strings.Repeat("-", w+2))
		b.WriteByte('+')
	}
	b.WriteByte('\n')
	return b.String()
}
