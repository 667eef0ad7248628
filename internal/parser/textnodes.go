package parser

import (
	"regexp"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// CountTextNodes counts the document's text nodes matching re. Script and
// style bodies are text nodes too.
func CountTextNodes(doc *goquery.Document, re *regexp.Regexp) int {
	count := 0
	for _, root := range doc.Nodes {
		walkText(root, func(s string) bool {
			if re.MatchString(s) {
				count++
			}
			return true
		})
	}
	return count
}

// HasTextNode reports whether any text node matches re.
func HasTextNode(doc *goquery.Document, re *regexp.Regexp) bool {
	found := false
	for _, root := range doc.Nodes {
		walkText(root, func(s string) bool {
			found = re.MatchString(s)
			return !found
		})
		if found {
			break
		}
	}
	return found
}

// walkText visits text nodes depth-first until fn returns false.
func walkText(n *html.Node, fn func(string) bool) bool {
	if n.Type == html.TextNode {
		return fn(n.Data)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !walkText(c, fn) {
			return false
		}
	}
	return true
}
