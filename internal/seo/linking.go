package seo

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/IshaanNene/SEOCrawl/internal/types"
)

const maxListedInternalLinks = 20

var (
	genericAnchorTerms = []string{"click here", "read more", "here", "more", "εδώ", "περισσότερα", "κλικ", "δες εδώ"}
	brandAnchorTerms   = []string{"home", "αρχική", "homepage", "main"}
)

type anchorKind int

const (
	anchorDescriptive anchorKind = iota
	anchorGeneric
	anchorBranded
	anchorImage
	anchorEmpty
)

// classifyAnchor buckets an anchor by its lower-cased visible text. Generic
// terms match as substrings, so "there" counts as generic.
func classifyAnchor(text string, hasImage bool) anchorKind {
	text = strings.ToLower(strings.TrimSpace(text))
	switch {
	case text == "" && hasImage:
		return anchorImage
	case text == "":
		return anchorEmpty
	case containsAny(text, genericAnchorTerms):
		return anchorGeneric
	case containsAny(text, brandAnchorTerms):
		return anchorBranded
	default:
		return anchorDescriptive
	}
}

func containsAny(s string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

func (b *anchorTally) add(kind anchorKind) {
	b.TotalLinks++
	switch kind {
	case anchorDescriptive:
		b.DescriptiveAnchors++
	case anchorGeneric:
		b.GenericAnchors++
	case anchorBranded:
		b.BrandedAnchors++
	case anchorImage:
		b.ImageLinks++
	case anchorEmpty:
		b.EmptyAnchors++
	}
}

type anchorTally types.AnchorTextBreakdown

// AnchorTextBreakdown classifies anchors whose raw href is relative, rooted
// or a fragment, which is how on-site links usually appear in markup.
func AnchorTextBreakdown(doc *goquery.Document) types.AnchorTextBreakdown {
	var tally anchorTally
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if strings.HasPrefix(href, "/") || strings.HasPrefix(href, "#") || !strings.HasPrefix(href, "http") {
			tally.add(classifyAnchor(s.Text(), s.Find("img").Length() > 0))
		}
	})
	return types.AnchorTextBreakdown(tally)
}

// InternalLinking summarizes the internal edges of a page. Only the first
// twenty links are listed; the analysis covers all of them.
func InternalLinking(edges []types.LinkEdge) types.InternalLinking {
	links := []types.InternalLink{}
	anchors := make(map[string]bool)
	var analysis types.AnchorTextAnalysis
	var tally anchorTally

	for _, e := range edges {
		if !e.Internal {
			continue
		}
		rel := e.Rel
		if rel == nil {
			rel = []string{}
		}
		links = append(links, types.InternalLink{
			URL:           e.Target,
			AnchorText:    e.AnchorText,
			Title:         e.Title,
			Position:      e.Position,
			IsImageLink:   e.IsImageLink,
			RelAttributes: rel,
		})

		analysis.TotalInternalLinks++
		if e.AnchorText == "" {
			analysis.EmptyAnchorTexts++
		} else {
			anchors[e.AnchorText] = true
		}
		if e.IsImageLink {
			analysis.ImageLinks++
		}
		if e.Position == types.PositionNavigation {
			analysis.NavigationLinks++
		} else {
			analysis.ContentLinks++
		}
		tally.add(classifyAnchor(e.AnchorText, e.IsImageLink))
	}
	analysis.UniqueAnchorTexts = len(anchors)

	return types.InternalLinking{
		InternalLinks:          links[:min(len(links), maxListedInternalLinks)],
		AnchorTextAnalysis:     analysis,
		LinkingRecommendations: LinkingRecommendations(types.AnchorTextBreakdown(tally)),
	}
}

// LinkingRecommendations turns an anchor breakdown into advice. The ratio
// rules read the generic, descriptive and empty counts of the breakdown.
func LinkingRecommendations(b types.AnchorTextBreakdown) []string {
	total := b.TotalLinks
	if total == 0 {
		return []string{"Add internal links for better navigation"}
	}

	recs := []string{}
	if float64(b.GenericAnchors)/float64(total) > 0.3 {
		recs = append(recs, "Reduce generic anchor texts (click here, read more)")
	}
	if float64(b.DescriptiveAnchors)/float64(total) < 0.5 {
		recs = append(recs, "Use more descriptive anchor texts")
	}
	if b.EmptyAnchors > 0 {
		recs = append(recs, "Add alt text to image links")
	}
	switch {
	case total < 5:
		recs = append(recs, "Add more internal links")
	case total > 100:
		recs = append(recs, "Reduce the number of internal links")
	}
	return recs
}
