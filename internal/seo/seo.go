// Package seo scores a parsed page against SEO, accessibility, mobile and
// performance rubrics. Every function reads the document and response only.
package seo

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var adClassPattern = regexp.MustCompile(`(?i)ad|banner`)

// classMatches returns descendants of root with at least one class token
// matching re.
func classMatches(root *goquery.Selection, re *regexp.Regexp) *goquery.Selection {
	return root.Find("[class]").FilterFunction(func(_ int, s *goquery.Selection) bool {
		class, _ := s.Attr("class")
		for _, c := range strings.Fields(class) {
			if re.MatchString(c) {
				return true
			}
		}
		return false
	})
}

// attrMatches returns the elements selected by sel whose attribute name
// matches re.
func attrMatches(doc *goquery.Document, sel, name string, re *regexp.Regexp) *goquery.Selection {
	return doc.Find(sel).FilterFunction(func(_ int, s *goquery.Selection) bool {
		v, ok := s.Attr(name)
		return ok && re.MatchString(v)
	})
}

func trimmedText(sel *goquery.Selection) string {
	return strings.TrimSpace(sel.Text())
}
