// Package table aligns multi-field option labels into columns.
package table

import (
	"strings"

	"github.com/atomicstack/popup-select/internal/option"
	"github.com/charmbracelet/x/ansi"
)

type Alignment int

const (
	AlignLeft Alignment = iota
	AlignRight
)

// ParseAlignment maps "right" (or "r") to AlignRight and anything else to
// AlignLeft.
func ParseAlignment(value string) Alignment {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "right", "r":
		return AlignRight
	}
	return AlignLeft
}

// Format returns the rows padded according to the widest entry in each
// column. Rows may be ragged; the last cell of a row is never padded.
func Format(rows [][]string, alignments []Alignment) []string {
	if len(rows) == 0 {
		return nil
	}
	colCount := 0
	for _, row := range rows {
		if len(row) > colCount {
			colCount = len(row)
		}
	}
	widths := make([]int, colCount)
	for _, row := range rows {
		for c, cell := range row {
			if width := cellWidth(cell); width > widths[c] {
				widths[c] = width
			}
		}
	}
	out := make([]string, len(rows))
	for i, row := range rows {
		var b strings.Builder
		for c, cell := range row {
			if c > 0 {
				b.WriteString("  ")
			}
			pad := widths[c] - cellWidth(cell)
			if c < len(alignments) && alignments[c] == AlignRight {
				writeSpaces(&b, pad)
				b.WriteString(cell)
				continue
			}
			b.WriteString(cell)
			if c < len(row)-1 {
				writeSpaces(&b, pad)
			}
		}
		out[i] = b.String()
	}
	return out
}

// Labels builds one aligned label per option from the text of keys and
// returns them keyed by option id.
func Labels(options []option.Option, keys []string, alignments []Alignment) map[string]string {
	if len(keys) == 0 {
		return nil
	}
	rows := make([][]string, len(options))
	for i, o := range options {
		row := make([]string, len(keys))
		for c, key := range keys {
			row[c] = o.Text(key)
		}
		rows[i] = row
	}
	formatted := Format(rows, alignments)
	out := make(map[string]string, len(options))
	for i, o := range options {
		out[o.ID] = strings.TrimRight(formatted[i], " ")
	}
	return out
}

func cellWidth(text string) int {
	return ansi.StringWidth(text)
}

func writeSpaces(b *strings.Builder, count int) {
	if count <= 0 {
		return
	}
	b.WriteString(strings.Repeat(" ", count))
}
