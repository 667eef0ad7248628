package parser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/IshaanNene/SEOCrawl/internal/types"
)

// Social collects Open Graph and Twitter Card tags with their prefixes
// removed. A repeated property keeps its last value.
func Social(doc *goquery.Document) types.SocialMeta {
	og := make(map[string]string)
	doc.Find(`meta[property^="og:"]`).Each(func(_ int, sel *goquery.Selection) {
		og[strings.ReplaceAll(attr(sel, "property"), "og:", "")] = attr(sel, "content")
	})

	twitter := make(map[string]string)
	doc.Find(`meta[name^="twitter:"]`).Each(func(_ int, sel *goquery.Selection) {
		twitter[strings.ReplaceAll(attr(sel, "name"), "twitter:", "")] = attr(sel, "content")
	})

	return types.SocialMeta{
		OpenGraph:      og,
		TwitterCard:    twitter,
		HasOGTags:      len(og) > 0,
		HasTwitterTags: len(twitter) > 0,
	}
}
