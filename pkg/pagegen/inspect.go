package pagegen

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// PageTitle returns the trimmed text of the page's first <title>, or "" if
// there is none.
func PageTitle(page string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}
