package seo

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/IshaanNene/SEOCrawl/internal/types"
)

// Rating buckets shared by the estimated vitals.
const (
	RatingGood             = "good"
	RatingNeedsImprovement = "needs_improvement"
	RatingPoor             = "poor"
)

// Thresholds for the estimated Core Web Vitals.
const (
	lcpGood = 2500.0
	lcpPoor = 4000.0
	fidGood = 100.0
	fidPoor = 300.0
	clsGood = 0.1
	clsPoor = 0.25
	fcpGood = 1800.0
	fcpPoor = 3000.0
	ttiGood = 3800.0
	ttiPoor = 7300.0
)

func rate(v, good, poor float64) string {
	switch {
	case v < good:
		return RatingGood
	case v < poor:
		return RatingNeedsImprovement
	default:
		return RatingPoor
	}
}

func elapsedMS(resp *types.RawResponse) float64 {
	return float64(resp.Elapsed.Microseconds()) / 1000
}

func sizeKB(resp *types.RawResponse) float64 {
	return float64(resp.Size) / 1024
}

// Performance reports transfer figures and the cache and security headers.
func Performance(resp *types.RawResponse) types.PerformanceMetrics {
	encoding := strings.ToLower(resp.ContentEncoding)
	return types.PerformanceMetrics{
		ResponseTimeMS:  elapsedMS(resp),
		ContentSizeKB:   sizeKB(resp),
		GzipEnabled:     strings.Contains(encoding, "gzip"),
		BrotliEnabled:   strings.Contains(encoding, "br"),
		CacheHeaders:    cacheHeaders(resp),
		SecurityHeaders: securityHeaders(resp),
	}
}

func cacheHeaders(resp *types.RawResponse) types.CacheHeaders {
	c := types.CacheHeaders{
		CacheControl: resp.Header("Cache-Control"),
		Expires:      resp.Header("Expires"),
		ETag:         resp.Header("ETag"),
		LastModified: resp.Header("Last-Modified"),
	}
	c.HasCacheHeaders = c.CacheControl != "" || c.Expires != ""
	return c
}

func securityHeaders(resp *types.RawResponse) types.SecurityHeaders {
	s := types.SecurityHeaders{
		StrictTransportSecurity: resp.Header("Strict-Transport-Security"),
		ContentSecurityPolicy:   resp.Header("Content-Security-Policy"),
		XFrameOptions:           resp.Header("X-Frame-Options"),
		XContentTypeOptions:     resp.Header("X-Content-Type-Options"),
		XXSSProtection:          resp.Header("X-XSS-Protection"),
		ReferrerPolicy:          resp.Header("Referrer-Policy"),
		PermissionsPolicy:       resp.Header("Permissions-Policy"),
		ContentType:             resp.Header("Content-Type"),
	}

	checks := []struct {
		name  string
		value string
	}{
		{"strict_transport_security", s.StrictTransportSecurity},
		{"content_security_policy", s.ContentSecurityPolicy},
		{"x_frame_options", s.XFrameOptions},
		{"x_content_type_options", s.XContentTypeOptions},
		{"x_xss_protection", s.XXSSProtection},
		{"referrer_policy", s.ReferrerPolicy},
		{"permissions_policy", s.PermissionsPolicy},
		{"content_type", s.ContentType},
	}

	present := 0
	s.MissingHeaders = []string{}
	for _, c := range checks {
		if c.value == "" {
			s.MissingHeaders = append(s.MissingHeaders, c.name)
		} else if c.name != "content_type" {
			present++
		}
	}
	if strings.Contains(strings.ToLower(s.ContentType), "charset") {
		present++
	}
	s.SecurityScore = types.Round(float64(present)/float64(len(checks))*100, 1)
	return s
}

// PageSpeed estimates a PageSpeed Insights style report from response timing
// and resource counts. The figures are heuristics, not measurements.
func PageSpeed(doc *goquery.Document, resp *types.RawResponse) types.PageSpeedInsights {
	ms := elapsedMS(resp)
	kb := sizeKB(resp)
	css := doc.Find(`link[rel~="stylesheet"]`).Length()
	js := doc.Find("script[src]").Length()
	imgs := doc.Find("img[src]").Length()

	score := max(0, min(100, 100-ms/50))
	score -= min(20, float64(css)*2)
	score -= min(20, float64(js)*1.5)
	score -= min(10, float64(max(0, imgs-10)))

	lcp := min(lcpPoor, ms+kb*2)
	fid := max(50, min(fidPoor, float64(js)*10))
	cls := min(clsPoor, float64(imgs)*0.01)

	opportunities := []string{}
	if css > 5 {
		opportunities = append(opportunities, fmt.Sprintf("Reduce CSS files (%d files)", css))
	}
	if js > 5 {
		opportunities = append(opportunities, fmt.Sprintf("Reduce JavaScript files (%d files)", js))
	}
	if kb > 1000 {
		opportunities = append(opportunities, fmt.Sprintf("Reduce page size (%.1fKB)", kb))
	}
	if imgs > 20 {
		opportunities = append(opportunities, fmt.Sprintf("Optimize images (%d images)", imgs))
	}

	overall := RatingPoor
	switch {
	case score > 80:
		overall = RatingGood
	case score > 50:
		overall = RatingNeedsImprovement
	}

	return types.PageSpeedInsights{
		PerformanceScore: types.Round(max(0, score), 1),
		CoreWebVitals: types.PSIVitals{
			LCP:       types.Round(lcp, 1),
			FID:       types.Round(fid, 1),
			CLS:       types.Round(cls, 3),
			LCPRating: rate(lcp, lcpGood, lcpPoor),
			FIDRating: rate(fid, fidGood, fidPoor),
			CLSRating: rate(cls, clsGood, clsPoor),
		},
		Metrics: types.PSIMetrics{
			LoadTimeMS:    types.Round(ms, 1),
			ContentSizeKB: types.Round(kb, 1),
			CSSFiles:      css,
			JSFiles:       js,
			ImageCount:    imgs,
		},
		OptimizationFeatures: types.OptimizationFeatures{
			HasLazyLoading: doc.Find(`img[loading="lazy"]`).Length() > 0,
			HasPreload:     doc.Find(`link[rel~="preload"]`).Length() > 0,
			HasPrefetch:    doc.Find(`link[rel~="prefetch"]`).Length() > 0,
			GzipEnabled:    strings.Contains(strings.ToLower(resp.ContentEncoding), "gzip"),
		},
		Opportunities: opportunities,
		OverallRating: overall,
	}
}

// CoreWebVitals estimates LCP, FID, CLS, FCP and TTI from the markup. The
// figures are heuristics, not field data.
func CoreWebVitals(doc *goquery.Document, resp *types.RawResponse) types.CoreWebVitals {
	ms := elapsedMS(resp)
	images := doc.Find("img")
	scripts := doc.Find("script")

	largeImages, withoutDims := 0, 0
	images.Each(func(_ int, img *goquery.Selection) {
		w, _ := img.Attr("width")
		h, _ := img.Attr("height")
		if n, ok := digits(w); ok && n > 500 {
			largeImages++
		}
		if w == "" || h == "" {
			withoutDims++
		}
	})

	blocking := scripts.FilterFunction(func(_ int, s *goquery.Selection) bool {
		_, async := s.Attr("async")
		_, deferred := s.Attr("defer")
		return !async && !deferred
	}).Length()

	ads := classMatches(doc.Selection, adClassPattern).Length()

	lcp := ms + float64(largeImages)*200 + float64(resp.Size)/1000
	fid := max(50, float64(blocking)*20)
	cls := float64(withoutDims)*0.02 + float64(ads)*0.05
	fcp := ms * 0.6
	tti := ms + float64(scripts.Length())*100

	return types.CoreWebVitals{
		LCP:                    threshold(types.Round(lcp, 1), rate(lcp, lcpGood, lcpPoor), lcpGood, lcpPoor),
		FID:                    threshold(types.Round(fid, 1), rate(fid, fidGood, fidPoor), fidGood, fidPoor),
		CLS:                    threshold(types.Round(cls, 3), rate(cls, clsGood, clsPoor), clsGood, clsPoor),
		FCP:                    types.Vital{Value: types.Round(fcp, 1), Rating: rate(fcp, fcpGood, fcpPoor)},
		TTI:                    types.Vital{Value: types.Round(tti, 1), Rating: rate(tti, ttiGood, ttiPoor)},
		OverallCWVRating:       overallCWV(lcp, fid, cls),
		ImprovementSuggestions: cwvSuggestions(lcp, fid, cls, images.Length(), scripts.Length()),
	}
}

func threshold(value float64, rating string, good, poor float64) types.Vital {
	return types.Vital{Value: value, Rating: rating, ThresholdGood: &good, ThresholdPoor: &poor}
}

// digits parses an attribute made only of ASCII digits.
func digits(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	return n, err == nil
}

func overallCWV(lcp, fid, cls float64) string {
	good := 0
	if lcp < lcpGood {
		good++
	}
	if fid < fidGood {
		good++
	}
	if cls < clsGood {
		good++
	}
	switch {
	case good == 3:
		return RatingGood
	case good >= 2:
		return RatingNeedsImprovement
	default:
		return RatingPoor
	}
}

func cwvSuggestions(lcp, fid, cls float64, images, scripts int) []string {
	s := []string{}
	if lcp > lcpGood {
		s = append(s,
			"Optimize Largest Contentful Paint with image optimization",
			"Use a CDN for faster content delivery")
	}
	if fid > fidGood {
		s = append(s,
			"Reduce First Input Delay with async/defer JavaScript",
			"Reduce blocking scripts")
	}
	if cls > clsGood {
		s = append(s,
			"Add dimensions to images for a stable layout",
			"Avoid dynamic content insertions")
	}
	if images > 20 {
		s = append(s, "Use lazy loading for images")
	}
	if scripts > 10 {
		s = append(s, "Combine and minify JavaScript files")
	}
	return s
}
