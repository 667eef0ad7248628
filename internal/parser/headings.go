package parser

import (
	"strconv"

	"github.com/PuerkitoBio/goquery"

	"github.com/IshaanNene/SEOCrawl/internal/types"
)

// Headings collects h1..h6 grouped by level. Structure lists all h1s, then
// all h2s and so on; it is level-ordered, not document-ordered.
func Headings(doc *goquery.Document) types.Headings {
	var out types.Headings
	for level := 1; level <= 6; level++ {
		list := out.Headings.Level(level)
		*list = []types.HeadingText{}
		doc.Find("h" + strconv.Itoa(level)).Each(func(_ int, sel *goquery.Selection) {
			t := text(sel)
			*list = append(*list, types.HeadingText{Text: t, Length: runeLen(t)})
			out.Structure = append(out.Structure, types.HeadingEntry{Level: level, Text: t, Length: runeLen(t)})
		})
		out.TotalHeadings += len(*list)
	}
	if out.Structure == nil {
		out.Structure = []types.HeadingEntry{}
	}
	out.H1Count = len(out.Headings.H1)
	return out
}
