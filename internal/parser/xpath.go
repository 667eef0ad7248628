package parser

import (
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"github.com/IshaanNene/SEOCrawl/internal/types"
)

// Microdata returns one entry per element carrying itemtype. Properties are
// read from every descendant with itemprop; a repeated name keeps the last value.
func Microdata(root *html.Node) []types.SchemaEntry {
	var out []types.SchemaEntry
	for _, n := range htmlquery.Find(root, "//*[@itemtype]") {
		props := make(map[string]string)
		for _, p := range htmlquery.Find(n, ".//*[@itemprop]") {
			props[htmlquery.SelectAttr(p, "itemprop")] = microdataValue(p)
		}
		scope := htmlquery.ExistsAttr(n, "itemscope")
		out = append(out, types.SchemaEntry{
			Format:     types.FormatMicrodata,
			ItemType:   htmlquery.SelectAttr(n, "itemtype"),
			ItemScope:  &scope,
			Properties: props,
		})
	}
	return out
}

func microdataValue(n *html.Node) string {
	switch n.Data {
	case "meta":
		return htmlquery.SelectAttr(n, "content")
	case "img", "audio", "video", "source", "iframe":
		return htmlquery.SelectAttr(n, "src")
	case "a":
		return htmlquery.SelectAttr(n, "href")
	case "time":
		if htmlquery.ExistsAttr(n, "datetime") {
			return htmlquery.SelectAttr(n, "datetime")
		}
	}
	return strings.TrimSpace(htmlquery.InnerText(n))
}

// RDFa returns one entry per element carrying typeof.
func RDFa(root *html.Node) []types.SchemaEntry {
	var out []types.SchemaEntry
	for _, n := range htmlquery.Find(root, "//*[@typeof]") {
		vocab := htmlquery.SelectAttr(n, "vocab")
		prefix := htmlquery.SelectAttr(n, "prefix")
		out = append(out, types.SchemaEntry{
			Format: types.FormatRDFa,
			TypeOf: htmlquery.SelectAttr(n, "typeof"),
			Vocab:  &vocab,
			Prefix: &prefix,
		})
	}
	return out
}
