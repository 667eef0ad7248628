package parser

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/IshaanNene/SEOCrawl/internal/types"
	"github.com/IshaanNene/SEOCrawl/internal/urlnorm"
)

// ExtractEdges returns one edge per anchor whose href is not skippable. The
// target is resolved against base, normalized and classified against domain.
// Anchors that fail to resolve are dropped.
func ExtractEdges(doc *goquery.Document, base *url.URL, domain string) []types.LinkEdge {
	source := base.String()
	var edges []types.LinkEdge
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href := strings.TrimSpace(attr(sel, "href"))
		if urlnorm.IsSkippableHref(href) {
			return
		}
		target, err := urlnorm.Resolve(source, href)
		if err != nil {
			return
		}

		position := types.PositionContent
		if sel.ParentsFiltered("nav, header").Length() > 0 {
			position = types.PositionNavigation
		}

		edges = append(edges, types.LinkEdge{
			Source:      source,
			Target:      target,
			AnchorText:  text(sel),
			Title:       attr(sel, "title"),
			Rel:         strings.Fields(attr(sel, "rel")),
			TargetAttr:  attr(sel, "target"),
			IsImageLink: sel.Find("img").Length() > 0,
			Position:    position,
			Internal:    urlnorm.IsInternal(target, domain),
		})
	})
	return edges
}

// Links splits edges into internal and external link lists.
func Links(edges []types.LinkEdge) types.Links {
	out := types.Links{
		InternalLinks: []types.Link{},
		ExternalLinks: []types.Link{},
	}
	for _, e := range edges {
		rel := e.Rel
		if rel == nil {
			rel = []string{}
		}
		l := types.Link{
			URL:        e.Target,
			Text:       e.AnchorText,
			Title:      e.Title,
			Rel:        rel,
			Target:     e.TargetAttr,
			IsNofollow: e.IsNofollow(),
		}
		if l.IsNofollow {
			out.NofollowLinks++
		}
		if e.Internal {
			out.InternalLinks = append(out.InternalLinks, l)
		} else {
			out.ExternalLinks = append(out.ExternalLinks, l)
		}
	}
	out.TotalInternal = len(out.InternalLinks)
	out.TotalExternal = len(out.ExternalLinks)
	return out
}
