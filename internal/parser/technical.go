package parser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/IshaanNene/SEOCrawl/internal/types"
)

// Technical extracts crawlability signals from the head and response.
func Technical(doc *goquery.Document, resp *types.RawResponse) types.TechnicalSEO {
	out := types.TechnicalSEO{
		HasSitemapLink:   doc.Find(`link[rel~="sitemap"]`).Length() > 0,
		HasRobotsTxtLink: doc.Find(`link[href*="robots.txt"]`).Length() > 0,
		HasHreflang:      doc.Find(`link[rel~="alternate"][hreflang]`).Length() > 0,
		HasFavicon:       doc.Find(`link[rel~="icon"]`).Length() > 0,
		HasSSL:           strings.HasPrefix(resp.FinalURL, "https://"),
		ResponseHeaders:  make(map[string]string, len(resp.Headers)),
	}

	if canonical := doc.Find(`link[rel~="canonical"]`).First(); canonical.Length() > 0 {
		out.HasCanonical = true
		if href, ok := canonical.Attr("href"); ok {
			out.CanonicalURL = &href
		}
	}

	for name, values := range resp.Headers {
		out.ResponseHeaders[name] = strings.Join(values, ", ")
	}
	return out
}
