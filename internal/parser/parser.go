// Package parser turns a parsed HTML document into the typed sections of a
// page record. Analyzers read the shared document and never modify it.
package parser

import (
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// text returns the trimmed text content of a selection.
func text(sel *goquery.Selection) string {
	return strings.TrimSpace(sel.Text())
}

// runeLen counts characters the way page authors see them.
func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

// attr returns the attribute value or "" when absent.
func attr(sel *goquery.Selection, name string) string {
	v, _ := sel.Attr(name)
	return v
}

// resolveRef resolves ref against base without normalizing it. Unparseable
// references are returned unchanged.
func resolveRef(base *url.URL, ref string) string {
	if base == nil {
		return ref
	}
	r, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return ref
	}
	return base.ResolveReference(r).String()
}

// metaContent returns the content of the first <meta name=...> tag.
func metaContent(doc *goquery.Document, name string) (string, bool) {
	sel := doc.Find(`meta[name="` + name + `"]`).First()
	if sel.Length() == 0 {
		return "", false
	}
	return attr(sel, "content"), true
}
