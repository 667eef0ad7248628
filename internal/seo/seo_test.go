package seo

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/IshaanNene/SEOCrawl/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

func mustDoc(t *testing.T, body string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		t.Fatalf("parse document: %v", err)
	}
	return doc
}

func response(url string, elapsed time.Duration, size int, headers map[string]string) *types.RawResponse {
	h := http.Header{}
	for k, v := range headers {
		h.Set(k, v)
	}
	return &types.RawResponse{
		URL:             url,
		FinalURL:        url,
		StatusCode:      200,
		Headers:         h,
		ContentType:     h.Get("Content-Type"),
		ContentEncoding: h.Get("Content-Encoding"),
		Size:            size,
		Elapsed:         elapsed,
	}
}

func TestAccessibilityPerfectPage(t *testing.T) {
	doc := mustDoc(t, `<html lang="en"><body>
<a href="#main">Skip to content</a>
<h1>Title</h1>
<img src="a.png" alt="A">
<label for="email">Email</label><input type="email" id="email">
<table><thead><tr><th>H</th></tr></thead></table>
<a href="/docs">Documentation</a>
</body></html>`)

	// every check passes; the rubric tops out at nine of ten points
	a := Accessibility(doc)
	if a.AccessibilityScore != 90 {
		t.Errorf("score = %v, want 90 (issues %v)", a.AccessibilityScore, a.Issues)
	}
	if len(a.Issues) != 0 {
		t.Errorf("issues = %v", a.Issues)
	}
	if !a.HasProperHeadings || !a.HasLanguageDeclaration {
		t.Errorf("flags = %+v", a)
	}
}

func TestAccessibilityIssues(t *testing.T) {
	doc := mustDoc(t, `<html><body>
<h1>One</h1><h1>Two</h1>
<img src="a.png"><img src="b.png" alt="B">
<input type="text" id="q">
<a href="/x">click here</a>
<p style="color: red; background: red">x</p>
</body></html>`)

	a := Accessibility(doc)
	want := []string{
		"1 images without alt text",
		"1 form inputs without labels",
		"Multiple H1 (2)",
		"1 links with generic text",
		"Possible color contrast issues in 1 elements",
		"Missing lang attribute on HTML",
	}
	if strings.Join(a.Issues, "|") != strings.Join(want, "|") {
		t.Errorf("issues = %v", a.Issues)
	}
	// only the half point for skip links and the table point remain
	if a.AccessibilityScore != 15 {
		t.Errorf("score = %v, want 15", a.AccessibilityScore)
	}
	if a.ImagesAltCoverage != 50 || a.FormLabelCoverage != 0 {
		t.Errorf("coverage = %v/%v", a.ImagesAltCoverage, a.FormLabelCoverage)
	}
}

func TestMobile(t *testing.T) {
	doc := mustDoc(t, `<html amp><head>
<meta name="viewport" content="width=device-width, initial-scale=1">
<style>@media (max-width: 600px) { body { margin: 0 } }</style>
</head><body>
<img src="a.png" srcset="a2.png 2x"><button>Go</button>
</body></html>`)

	m := Mobile(doc)
	if m.MobileOptimizationScore != 100 {
		t.Errorf("score = %v, issues %v", m.MobileOptimizationScore, m.MobileIssues)
	}
	if !m.IsAMP || m.ResponsiveImagesPercentage != 100 || m.MobileFriendlyIndicators.TouchElements != 1 {
		t.Errorf("mobile = %+v", m)
	}

	bare := Mobile(mustDoc(t, `<body><p style="font-size: 10px">tiny</p></body>`))
	// no images earns its point; nothing else does
	if bare.MobileOptimizationScore != 12.5 {
		t.Errorf("bare score = %v", bare.MobileOptimizationScore)
	}
	if bare.HasViewportMeta || len(bare.MobileIssues) != 3 {
		t.Errorf("bare issues = %v", bare.MobileIssues)
	}
}

func TestPerformanceHeaders(t *testing.T) {
	resp := response("https://site.test/", 120*time.Millisecond, 2048, map[string]string{
		"Content-Type":              "text/html; charset=utf-8",
		"Content-Encoding":          "br",
		"Cache-Control":             "max-age=60",
		"Strict-Transport-Security": "max-age=31536000",
		"X-Frame-Options":           "DENY",
	})
	p := Performance(resp)
	if p.ResponseTimeMS != 120 || p.ContentSizeKB != 2 {
		t.Errorf("timing = %v ms, %v KB", p.ResponseTimeMS, p.ContentSizeKB)
	}
	if !p.BrotliEnabled || p.GzipEnabled {
		t.Errorf("encoding flags = br:%v gzip:%v", p.BrotliEnabled, p.GzipEnabled)
	}
	if !p.CacheHeaders.HasCacheHeaders {
		t.Error("cache headers not detected")
	}
	// HSTS, X-Frame-Options and a charset on Content-Type
	if p.SecurityHeaders.SecurityScore != 37.5 {
		t.Errorf("security score = %v", p.SecurityHeaders.SecurityScore)
	}
	if len(p.SecurityHeaders.MissingHeaders) != 5 {
		t.Errorf("missing = %v", p.SecurityHeaders.MissingHeaders)
	}
}

func TestPageSpeed(t *testing.T) {
	doc := mustDoc(t, `<html><head>
<link rel="stylesheet" href="a.css"><link rel="stylesheet" href="b.css">
<script src="a.js"></script>
</head><body><img src="x.png" loading="lazy"></body></html>`)
	resp := response("https://site.test/", 500*time.Millisecond, 10240, nil)

	psi := PageSpeed(doc, resp)
	// 100 - 500/50 - 2*2 - 1.5
	if psi.PerformanceScore != 84.5 {
		t.Errorf("performance score = %v", psi.PerformanceScore)
	}
	if psi.OverallRating != RatingGood {
		t.Errorf("rating = %q", psi.OverallRating)
	}
	if psi.CoreWebVitals.LCP != 520 || psi.CoreWebVitals.LCPRating != RatingGood {
		t.Errorf("lcp = %v %q", psi.CoreWebVitals.LCP, psi.CoreWebVitals.LCPRating)
	}
	if psi.CoreWebVitals.FID != 50 {
		t.Errorf("fid = %v", psi.CoreWebVitals.FID)
	}
	if !psi.OptimizationFeatures.HasLazyLoading {
		t.Error("lazy loading not detected")
	}
}

func TestCoreWebVitals(t *testing.T) {
	doc := mustDoc(t, `<body>
<img src="hero.png" width="1200" height="600">
<img src="icon.png">
<div class="ad-slot"></div>
<script src="a.js"></script>
<script src="b.js" async></script>
<script src="c.js" defer></script>
</body>`)
	resp := response("https://site.test/", time.Second, 5000, nil)

	cwv := CoreWebVitals(doc, resp)
	// 1000 + 200 for the large image + 5000/1000
	if cwv.LCP.Value != 1205 || cwv.LCP.Rating != RatingGood {
		t.Errorf("lcp = %+v", cwv.LCP)
	}
	if cwv.FID.Value != 50 {
		t.Errorf("fid = %v, one blocking script", cwv.FID.Value)
	}
	if cwv.CLS.Value != 0.07 || cwv.CLS.Rating != RatingGood {
		t.Errorf("cls = %+v", cwv.CLS)
	}
	if cwv.TTI.Value != 1300 || cwv.FCP.Value != 600 {
		t.Errorf("tti = %v fcp = %v", cwv.TTI.Value, cwv.FCP.Value)
	}
	if cwv.LCP.ThresholdGood == nil || *cwv.LCP.ThresholdGood != 2500 {
		t.Error("lcp threshold missing")
	}
	if cwv.FCP.ThresholdGood != nil {
		t.Error("fcp carries no thresholds")
	}
	if cwv.OverallCWVRating != RatingGood {
		t.Errorf("overall = %q", cwv.OverallCWVRating)
	}
}

func TestURLReadability(t *testing.T) {
	tests := []struct {
		path        string
		score       int
		descriptive bool
	}{
		{"/blog/seo-basics", 100, true},
		{"/Blog/SEO_basics", 65, true},
		{"/p/12345", 100, false},
		{"/search%20me", 85, true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			r := URLReadability(tt.path)
			if r.ReadabilityScore != tt.score {
				t.Errorf("score = %d, want %d (issues %v)", r.ReadabilityScore, tt.score, r.Issues)
			}
			if r.Descriptive != tt.descriptive {
				t.Errorf("descriptive = %v", r.Descriptive)
			}
		})
	}
}

func TestBreadcrumbs(t *testing.T) {
	doc := mustDoc(t, `<html><head>
<script type="application/ld+json">{"@type":"BreadcrumbList","itemListElement":[{"position":1},{"position":2},{"position":3}]}</script>
</head><body>
<nav aria-label="Breadcrumb"><a href="/">Home</a> / <a href="/docs">Docs</a></nav>
</body></html>`)

	b := Breadcrumbs(doc)
	if !b.HasBreadcrumbs || len(b.HTMLBreadcrumbs) != 2 || len(b.JSONLDBreadcrumbs) != 3 {
		t.Fatalf("breadcrumbs = %+v", b)
	}
	if b.BreadcrumbDepth != 3 {
		t.Errorf("depth = %d", b.BreadcrumbDepth)
	}
	if b.HTMLBreadcrumbs[1].URL != "/docs" {
		t.Errorf("second crumb = %+v", b.HTMLBreadcrumbs[1])
	}
}

func TestHeadingHierarchy(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		correct bool
		issues  int
	}{
		{"ordered", `<h1>a</h1><h2>b</h2><h3>c</h3>`, true, 0},
		{"skip", `<h1>a</h1><h4>b</h4>`, false, 1},
		{"no h1", `<h2>a</h2><h3>b</h3>`, false, 1},
		{"empty", `<p>none</p>`, false, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := HeadingHierarchy(mustDoc(t, "<body>"+tt.body+"</body>"))
			if h.Correct != tt.correct || len(h.Issues) != tt.issues {
				t.Errorf("correct=%v issues=%v", h.Correct, h.Issues)
			}
		})
	}
}

func TestKeywordDistribution(t *testing.T) {
	doc := mustDoc(t, `<html><head><title>Handmade Widgets Shop</title>
<meta name="description" content="Widgets made by hand"></head>
<body><nav>widgets widgets widgets</nav><h1>Widgets</h1><p>Our widgets are the best widgets.</p></body></html>`)

	kd := KeywordDistribution(doc)
	if strings.Join(kd.ExtractedKeywords, ",") != "handmade,shop,widgets" {
		t.Fatalf("keywords = %v", kd.ExtractedKeywords)
	}
	w := kd.KeywordPlacement["widgets"]
	if !w.InTitle || !w.InH1 || !w.InMetaDescription || !w.InContent {
		t.Errorf("widgets placement = %+v", w)
	}
	// title, h1 and paragraph; nav is excluded
	if w.ContentFrequency != 4 {
		t.Errorf("content frequency = %d, want 4", w.ContentFrequency)
	}
	// widgets 80, handmade 35, shop 35
	if kd.KeywordOptimizationScore != 50 {
		t.Errorf("score = %d, want 50", kd.KeywordOptimizationScore)
	}
}

func TestFreshness(t *testing.T) {
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		body string
		want string
	}{
		{`<footer>Copyright 2024 Acme</footer>`, "fresh"},
		{`<footer>Copyright 2022 Acme</footer>`, "moderate"},
		{`<footer>Copyright 2015 Acme</footer>`, "stale"},
		{`<p>no year here</p>`, "unknown"},
	}
	for _, tt := range tests {
		f := Freshness(mustDoc(t, "<body>"+tt.body+"</body>"), now)
		if f.EstimatedFreshness != tt.want {
			t.Errorf("%s: freshness = %q, want %q", tt.body, f.EstimatedFreshness, tt.want)
		}
	}

	f := Freshness(mustDoc(t, `<body><time datetime="2025-01-01">Jan 1</time><p>Last updated 01/02/2025</p></body>`), now)
	if !f.HasTimeElements || !f.HasDates || !f.HasLastUpdated {
		t.Errorf("freshness flags = %+v", f)
	}
}

func TestAdvancedRobotsAndTitle(t *testing.T) {
	doc := mustDoc(t, `<html><head><title>Welcome Home | Acme</title>
<meta name="robots" content="NOINDEX, follow"></head><body></body></html>`)
	adv := Advanced(doc, response("https://site.test/a/b?x=1", 0, 0, nil), time.Now())

	if adv.RobotsAnalysis.IsIndexable || !adv.RobotsAnalysis.IsFollowable {
		t.Errorf("robots = %+v", adv.RobotsAnalysis)
	}
	if !adv.TitleAnalysis.TitleHasBrand {
		t.Error("brand separator not detected")
	}
	if adv.TitleAnalysis.TitleUniquenessScore != 60 {
		t.Errorf("uniqueness = %d, want 60", adv.TitleAnalysis.TitleUniquenessScore)
	}
	if adv.URLAnalysis.PathDepth != 2 || !adv.URLAnalysis.HasParameters {
		t.Errorf("url analysis = %+v", adv.URLAnalysis)
	}
}

func TestInternalLinking(t *testing.T) {
	var edges []types.LinkEdge
	for i := 0; i < 25; i++ {
		edges = append(edges, types.LinkEdge{
			Target:     "https://site.test/p",
			AnchorText: "Product catalogue",
			Position:   types.PositionContent,
			Internal:   true,
		})
	}
	edges = append(edges,
		types.LinkEdge{Target: "https://site.test/", AnchorText: "", IsImageLink: true, Position: types.PositionNavigation, Internal: true},
		types.LinkEdge{Target: "https://other.test/", AnchorText: "Elsewhere"},
	)

	il := InternalLinking(edges)
	if len(il.InternalLinks) != 20 {
		t.Errorf("listed %d links, want 20", len(il.InternalLinks))
	}
	a := il.AnchorTextAnalysis
	if a.TotalInternalLinks != 26 || a.UniqueAnchorTexts != 1 || a.EmptyAnchorTexts != 1 || a.ImageLinks != 1 || a.NavigationLinks != 1 {
		t.Errorf("analysis = %+v", a)
	}
	if len(il.LinkingRecommendations) != 0 {
		t.Errorf("recommendations = %v", il.LinkingRecommendations)
	}
}

func TestLinkingRecommendations(t *testing.T) {
	got := LinkingRecommendations(types.AnchorTextBreakdown{})
	if len(got) != 1 || got[0] != "Add internal links for better navigation" {
		t.Errorf("empty = %v", got)
	}
	got = LinkingRecommendations(types.AnchorTextBreakdown{TotalLinks: 2, GenericAnchors: 2})
	want := "Reduce generic anchor texts (click here, read more)|Use more descriptive anchor texts|Add more internal links"
	if strings.Join(got, "|") != want {
		t.Errorf("generic = %v", got)
	}
}

func TestInternalLinkingRecommendsFromAnchorTally(t *testing.T) {
	tests := []struct {
		name    string
		anchors []string
		want    []string
	}{
		{
			name:    "mostly generic",
			anchors: []string{"click here", "read more", "here", "Spring catalogue", "Workshop tools", "Contact sales"},
			want:    []string{"Reduce generic anchor texts (click here, read more)"},
		},
		{
			name:    "empty anchors",
			anchors: []string{"", "Spring catalogue", "Workshop tools", "Contact sales", "Delivery terms"},
			want:    []string{"Add alt text to image links"},
		},
		{
			name:    "descriptive",
			anchors: []string{"Spring catalogue", "Workshop tools", "Contact sales", "Delivery terms", "Company history"},
			want:    []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var edges []types.LinkEdge
			for _, a := range tt.anchors {
				edges = append(edges, types.LinkEdge{Target: "https://site.test/x", AnchorText: a, Internal: true})
			}
			got := InternalLinking(edges).LinkingRecommendations
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("recommendations = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCompetitive(t *testing.T) {
	doc := mustDoc(t, `<html><head>
<meta name="generator" content="WordPress 6.4">
<script>gtag('config', 'G-1'); window.hubspot = {};</script>
</head><body class="wp-site">
<p>Read our customer testimonials</p>
<p>Call +30 210 1234567 or mail info@acme.test</p>
<a href="/about">About</a><a href="/blog">Blog</a><a href="/services/seo">SEO service</a>
<form><input type="text" name="csrf_token"></form>
</body></html>`)

	c := Competitive(doc)
	if c.TechnologyStack.CMSIndicators.DetectedCMS != "wordpress" || c.TechnologyStack.CMSIndicators.Confidence != "high" {
		t.Errorf("cms = %+v", c.TechnologyStack.CMSIndicators)
	}
	if c.TechnologyStack.CMSIndicators.CMSIndicators["custom"] {
		t.Error("custom should be false when a CMS matched")
	}
	if strings.Join(c.TechnologyStack.AnalyticsTools, ",") != "Google Analytics" {
		t.Errorf("analytics = %v", c.TechnologyStack.AnalyticsTools)
	}
	if strings.Join(c.TechnologyStack.MarketingTools, ",") != "HubSpot" {
		t.Errorf("marketing = %v", c.TechnologyStack.MarketingTools)
	}
	if c.SocialProof.Testimonials != 1 || c.ContactAccessibility.EmailAddresses != 1 || c.ContactAccessibility.ContactForms != 1 {
		t.Errorf("signals = %+v %+v", c.SocialProof, c.ContactAccessibility)
	}
	if !c.BusinessMaturity.AboutPage || !c.BusinessMaturity.BlogSection || c.BusinessMaturity.ServicePages != 1 {
		t.Errorf("maturity = %+v", c.BusinessMaturity)
	}
	if c.CompetitiveStrengthScore <= 0 || c.CompetitiveStrengthScore > 100 {
		t.Errorf("score = %d", c.CompetitiveStrengthScore)
	}
}

func TestDetectCMSCustom(t *testing.T) {
	cms := DetectCMS(mustDoc(t, `<html><body><p>plain</p></body></html>`))
	if cms.DetectedCMS != "custom" || cms.Confidence != "low" || !cms.CMSIndicators["custom"] {
		t.Errorf("cms = %+v", cms)
	}
}

type mapFetcher map[string]string

func (m mapFetcher) Fetch(_ context.Context, rawURL string) (*types.RawResponse, error) {
	body, ok := m[rawURL]
	if !ok {
		return nil, &types.FetchError{URL: rawURL, StatusCode: http.StatusNotFound}
	}
	return &types.RawResponse{URL: rawURL, StatusCode: 200, Body: []byte(body)}, nil
}

func (m mapFetcher) Close() error { return nil }
func (m mapFetcher) Type() string { return "map" }

func TestSitemapAuditorFollowsIndex(t *testing.T) {
	f := mapFetcher{
		"https://site.test/sitemap.xml": `<?xml version="1.0"?>
<sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <sitemap><loc>https://site.test/pages.xml</loc></sitemap>
  <sitemap><loc>https://site.test/missing.xml</loc></sitemap>
</sitemapindex>`,
		"https://site.test/pages.xml": `<?xml version="1.0"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc> https://site.test/ </loc></url>
  <url><loc>https://site.test/about</loc></url>
  <url><loc>https://SITE.test/pricing#plans</loc></url>
</urlset>`,
	}

	a := NewSitemapAuditor(f, testLogger)
	sitemapURL, listed, err := a.Fetch(context.Background(), "https://site.test/some/page")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if sitemapURL != "https://site.test/sitemap.xml" || len(listed) != 3 {
		t.Fatalf("sitemap %s listed %v", sitemapURL, listed)
	}

	report := CompareSitemap(sitemapURL, listed, []string{"https://site.test/", "https://site.test/about", "https://site.test/blog"})
	if report.Listed != 3 || report.Crawled != 3 {
		t.Errorf("counts = %d/%d", report.Listed, report.Crawled)
	}
	if strings.Join(report.InSitemapNotCrawled, ",") != "https://site.test/pricing" {
		t.Errorf("in sitemap not crawled = %v", report.InSitemapNotCrawled)
	}
	if strings.Join(report.CrawledNotInSitemap, ",") != "https://site.test/blog" {
		t.Errorf("crawled not in sitemap = %v", report.CrawledNotInSitemap)
	}
}

func TestParseSitemapRejectsUnknownRoot(t *testing.T) {
	if _, _, err := ParseSitemap([]byte(`<rss><channel/></rss>`)); err == nil {
		t.Error("expected error for non-sitemap document")
	}
	if _, _, err := ParseSitemap([]byte(`not xml at all <`)); err == nil {
		t.Error("expected error for malformed document")
	}
}
