package parser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/IshaanNene/SEOCrawl/internal/types"
)

// Metadata extracts the document head metadata.
func Metadata(doc *goquery.Document) types.MetaData {
	title := text(doc.Find("title").First())
	description, _ := metaContent(doc, "description")
	description = strings.TrimSpace(description)

	md := types.MetaData{
		Title:             title,
		TitleLength:       runeLen(title),
		Description:       description,
		DescriptionLength: runeLen(description),
		Charset:           Charset(doc),
	}
	if kw, ok := metaContent(doc, "keywords"); ok {
		kw = strings.TrimSpace(kw)
		md.Keywords = &kw
	}
	md.Viewport, _ = metaContent(doc, "viewport")
	md.Robots, _ = metaContent(doc, "robots")
	return md
}

// Charset returns the declared document charset: <meta charset>, then the
// http-equiv Content-Type charset, then utf-8.
func Charset(doc *goquery.Document) string {
	if sel := doc.Find("meta[charset]").First(); sel.Length() > 0 {
		return attr(sel, "charset")
	}
	if sel := doc.Find(`meta[http-equiv="content-type" i]`).First(); sel.Length() > 0 {
		content := attr(sel, "content")
		if _, cs, ok := strings.Cut(content, "charset="); ok {
			return strings.TrimSpace(cs)
		}
	}
	return "utf-8"
}
