// Package table renders rows of text as an ASCII table. Cells may contain
// ANSI color sequences; they do not count toward column widths.
package table

import (
	"io"
	"regexp"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Alignment controls how a cell is padded within its column.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignRight
	AlignCenter
)

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func stripAnsi(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

func displayWidth(s string) int {
	return runewidth.StringWidth(stripAnsi(s))
}

// Table accumulates a header and rows and writes them on Render.
type Table struct {
	w               io.Writer
	header          []string
	rows            [][]string
	alignment       []Alignment
	headerAlignment []Alignment
}

// NewTable returns an empty table that renders to w.
func NewTable(w io.Writer) *Table {
	return &Table{w: w}
}

// WithHeader sets the header row.
func (t *Table) WithHeader(header []string) *Table {
	t.header = header
	return t
}

// WithColumnAlignment sets the alignment of body cells per column.
func (t *Table) WithColumnAlignment(alignment []Alignment) *Table {
	t.alignment = alignment
	return t
}

// WithHeaderAlignment sets the alignment of header cells per column.
func (t *Table) WithHeaderAlignment(alignment []Alignment) *Table {
	t.headerAlignment = alignment
	return t
}

// WithRows appends rows.
func (t *Table) WithRows(rows [][]string) *Table {
	t.rows = append(t.rows, rows...)
	return t
}

// Append adds one row.
func (t *Table) Append(row []string) {
	t.rows = append(t.rows, row)
}

func (t *Table) columnWidths() []int {
	n := len(t.header)
	for _, row := range t.rows {
		if len(row) > n {
			n = len(row)
		}
	}
	widths := make([]int, n)
	measure := func(row []string) {
		for i, cell := range row {
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

func alignmentAt(alignment []Alignment, i int) Alignment {
	if i < len(alignment) {
		return alignment[i]
	}
	return AlignLeft
}

func pad(cell string, width int, align Alignment) string {
	gap := width - displayWidth(cell)
	if gap <= 0 {
		return cell
	}
	switch align {
	case AlignRight:
		return strings.Repeat(" ", gap) + cell
	case AlignCenter:
		left := gap / 2
		return strings.Repeat(" ", left) + cell + strings.Repeat(" ", gap-left)
	default:
		return cell + strings.Repeat(" ", gap)
	}
}

// Render writes the table.
func (t *Table) Render() error {
	widths := t.columnWidths()
	var sb strings.Builder
	separator := func() {
		sb.WriteString("+")
		for _, w := range widths {
			sb.WriteString(strings.Repeat("-", w+2))
			sb.WriteString("+")
		}
		sb.WriteString("\n")
	}
	line := func(row []string, alignment []Alignment) {
		sb.WriteString("|")
		for i, w := range widths {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			sb.WriteString(" ")
			sb.WriteString(pad(cell, w, alignmentAt(alignment, i)))
			sb.WriteString(" |")
		}
		sb.WriteString("\n")
	}
	separator()
	if len(t.header) > 0 {
		line(t.header, t.headerAlignment)
		separator()
	}
	for _, row := range t.rows {
		line(row, t.alignment)
	}
	separator()
	_, err := io.WriteString(t.w, sb.String())
	return err
}
