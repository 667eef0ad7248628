package parser

import (
	"net/url"

	"github.com/PuerkitoBio/goquery"

	"github.com/IshaanNene/SEOCrawl/internal/types"
)

// Images lists every <img> with its src resolved against base.
func Images(doc *goquery.Document, base *url.URL) types.Images {
	out := types.Images{Images: []types.Image{}}
	doc.Find("img").Each(func(_ int, sel *goquery.Selection) {
		src := attr(sel, "src")
		if src != "" {
			src = resolveRef(base, src)
		}
		alt := attr(sel, "alt")
		img := types.Image{
			Src:     src,
			Alt:     alt,
			HasAlt:  alt != "",
			Title:   attr(sel, "title"),
			Width:   attr(sel, "width"),
			Height:  attr(sel, "height"),
			Loading: attr(sel, "loading"),
		}
		if !img.HasAlt {
			out.ImagesWithoutAlt++
		}
		if img.Loading == "lazy" {
			out.ImagesWithLazyLoading++
		}
		out.Images = append(out.Images, img)
	})
	out.TotalImages = len(out.Images)
	return out
}
