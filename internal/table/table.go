// Package table renders text tables with box borders. Cells may contain ANSI
// color codes, which are ignored when measuring column widths.
package table

import (
	"io"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Alignment of text within a cell.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignRight
	AlignCenter
)

// Table accumulates rows and renders them to a writer.
type Table struct {
	writer          io.Writer
	header          []string
	rows            [][]string
	columnAlignment []Alignment
	headerAlignment []Alignment
}

// NewTable creates a table that renders to w.
func NewTable(w io.Writer) *Table {
	return &Table{writer: w}
}

func (t *Table) WithHeader(header []string) *Table {
	t.header = header
	return t
}

func (t *Table) WithColumnAlignment(alignment []Alignment) *Table {
	t.columnAlignment = alignment
	return t
}

func (t *Table) WithHeaderAlignment(alignment []Alignment) *Table {
	t.headerAlignment = alignment
	return t
}

func (t *Table) WithRows(rows [][]string) *Table {
	t.rows = append(t.rows, rows...)
	return t
}

// Append adds a row.
func (t *Table) Append(row []string) {
	t.rows = append(t.rows, row)
}

// Render writes the table. Write errors are ignored, as with fmt.Fprint to a
// terminal.
func (t *Table) Render() {
	widths := t.columnWidths()
	if len(widths) == 0 {
		return
	}
	var b strings.Builder
	separator := t.separator(widths)
	b.WriteString(separator)
	if len(t.header) > 0 {
		t.writeRow(&b, t.header, widths, t.headerAlignment)
		b.WriteString(separator)
	}
	for _, row := range t.rows {
		t.writeRow(&b, row, widths, t.columnAlignment)
	}
	if len(t.rows) > 0 {
		b.WriteString(separator)
	}
	io.WriteString(t.writer, b.String())
}

func (t *Table) columnWidths() []int {
	var widths []int
	measure := func(row []string) {
		for i, cell := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			if w := displayWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}
	measure(t.header)
	for _, row := range t.rows {
		measure(row)
	}
	return widths
}

func (t *Table) separator(widths []int) string {
	var b strings.Builder
	b.WriteString("+")
	for _, w := range widths {
		b.WriteString(strings.Repeat("-", w+2))
		b.WriteString("+")
	}
	b.WriteString("\n")
	return b.String()
}

func (t *Table) writeRow(b *strings.Builder, row []string, widths []int, alignment []Alignment) {
	b.WriteString("|")
	for i, w := range widths {
		var cell string
		if i < len(row) {
			cell = row[i]
		}
		align := AlignLeft
		if i < len(alignment) {
			align = alignment[i]
		}
		b.WriteString(" ")
		b.WriteString(pad(cell, w, align))
		b.WriteString(" |")
	}
	b.WriteString("\n")
}

func pad(s string, width int, align Alignment) string {
	gap := width - displayWidth(s)
	if gap <= 0 {
		return s
	}
	switch align {
	case AlignRight:
		return strings.Repeat(" ", gap) + s
	case AlignCenter:
		left := gap / 2
		return strings.Repeat(" ", left) + s + strings.Repeat(" ", gap-left)
	}
	return s + strings.Repeat(" ", gap)
}

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func stripAnsi(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

func displayWidth(s string) int {
	return utf8.RuneCountInString(stripAnsi(s))
}
