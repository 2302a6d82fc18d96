package adapter

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// rowCells extracts the trimmed text of every td/th in a table row.
func rowCells(row *goquery.Selection) []string {
	var cells []string
	row.Find("td, th").Each(func(_ int, cell *goquery.Selection) {
		cells = append(cells, strings.Join(strings.Fields(cell.Text()), " "))
	})
	return cells
}

// headerMatches reports whether any header cell contains any of the keywords,
// case-insensitively.
func headerMatches(cells []string, keywords ...string) bool {
	for _, c := range cells {
		lc := strings.ToLower(c)
		for _, kw := range keywords {
			if strings.Contains(lc, kw) {
				return true
			}
		}
	}
	return false
}

// cellAt returns the cell at index i or empty when the row is short.
func cellAt(cells []string, i int) string {
	if i < len(cells) {
		return cells[i]
	}
	return ""
}
