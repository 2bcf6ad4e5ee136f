package export

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/octobees/decisionfindr/api/internal/entity"
)

const maxCellWidth = 40

// Table renders an aligned plain-text table. Cells wider than maxCellWidth are truncated.
func Table(results []entity.SearchResult) []byte {
	rows := make([][]string, 0, len(results)+1)
	rows = append(rows, append([]string(nil), Columns...))
	for _, r := range results {
		rows = append(rows, row(r))
	}

	widths := make([]int, len(Columns))
	for _, cells := range rows {
		for i, c := range cells {
			c = runewidth.Truncate(c, maxCellWidth, "…")
			cells[i] = c
			if w := runewidth.StringWidth(c); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var b strings.Builder
	for n, cells := range rows {
		for i, c := range cells {
			if i > 0 {
				b.WriteString(" | ")
			}
			if i == len(cells)-1 {
				b.WriteString(c)
			} else {
				b.WriteString(runewidth.FillRight(c, widths[i]))
			}
		}
		b.WriteString("\n")
		if n == 0 {
			for i, w := range widths {
				if i > 0 {
					b.WriteString("-+-")
				}
				b.WriteString(strings.Repeat("-", w))
			}
			b.WriteString("\n")
		}
	}
	return []byte(b.String())
}
