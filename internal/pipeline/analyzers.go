package pipeline

import (
	"github.com/IshaanNene/SEOCrawl/internal/language"
	"github.com/IshaanNene/SEOCrawl/internal/parser"
	"github.com/IshaanNene/SEOCrawl/internal/seo"
	"github.com/IshaanNene/SEOCrawl/internal/types"
)

// AnalyzerFunc adapts a function into a named Analyzer.
type AnalyzerFunc struct {
	Section string
	Fn      func(page *Page, rec *types.PageRecord) error
}

func (a AnalyzerFunc) Name() string { return a.Section }

func (a AnalyzerFunc) Apply(page *Page, rec *types.PageRecord) error {
	return a.Fn(page, rec)
}

func section(name string, fn func(p *Page, rec *types.PageRecord)) Analyzer {
	return AnalyzerFunc{Section: name, Fn: func(p *Page, rec *types.PageRecord) error {
		fn(p, rec)
		return nil
	}}
}

// linkEdges resolves every anchor once. The links and internal linking
// sections, and the link sink, all read page.Edges.
type linkEdges struct{}

func (linkEdges) Name() string { return "link_edges" }

func (linkEdges) Apply(p *Page, _ *types.PageRecord) error {
	p.Edges = parser.ExtractEdges(p.Doc, p.Base, p.Domain)
	return nil
}

// DefaultAnalyzers returns the full set of page sections in record order.
func DefaultAnalyzers() []Analyzer {
	return []Analyzer{
		section("meta_data", func(p *Page, rec *types.PageRecord) {
			rec.MetaData = parser.Metadata(p.Doc)
		}),
		section("headings", func(p *Page, rec *types.PageRecord) {
			rec.Headings = parser.Headings(p.Doc)
		}),
		section("images", func(p *Page, rec *types.PageRecord) {
			rec.Images = parser.Images(p.Doc, p.Base)
		}),
		section("links", func(p *Page, rec *types.PageRecord) {
			rec.Links = parser.Links(p.Edges)
		}),
		section("content_analysis", func(p *Page, rec *types.PageRecord) {
			rec.ContentAnalysis = parser.Content(p.Doc)
		}),
		section("technical_seo", func(p *Page, rec *types.PageRecord) {
			rec.TechnicalSEO = parser.Technical(p.Doc, p.Response)
		}),
		section("social_meta", func(p *Page, rec *types.PageRecord) {
			rec.SocialMeta = parser.Social(p.Doc)
		}),
		section("schema_markup", func(p *Page, rec *types.PageRecord) {
			rec.SchemaMarkup = parser.Schema(p.Doc)
		}),
		section("performance_metrics", func(p *Page, rec *types.PageRecord) {
			rec.PerformanceMetrics = seo.Performance(p.Response)
		}),
		section("advanced_seo", func(p *Page, rec *types.PageRecord) {
			rec.AdvancedSEO = seo.Advanced(p.Doc, p.Response, p.Now)
		}),
		section("accessibility", func(p *Page, rec *types.PageRecord) {
			rec.Accessibility = seo.Accessibility(p.Doc)
		}),
		section("mobile_optimization", func(p *Page, rec *types.PageRecord) {
			rec.MobileOptimization = seo.Mobile(p.Doc)
		}),
		section("internal_linking", func(p *Page, rec *types.PageRecord) {
			// Totals are edge-based: fragment-only, mailto:, tel: and
			// javascript: hrefs never become edges and are not counted.
			rec.InternalLinking = seo.InternalLinking(p.Edges)
		}),
		section("page_speed_insights", func(p *Page, rec *types.PageRecord) {
			rec.PageSpeedInsights = seo.PageSpeed(p.Doc, p.Response)
		}),
		section("competitive_analysis", func(p *Page, rec *types.PageRecord) {
			rec.CompetitiveAnalysis = seo.Competitive(p.Doc)
		}),
		section("core_web_vitals", func(p *Page, rec *types.PageRecord) {
			rec.CoreWebVitals = seo.CoreWebVitals(p.Doc, p.Response)
		}),
		section("detected_language", func(p *Page, rec *types.PageRecord) {
			rec.DetectedLanguage = string(language.Detect(p.Doc, p.Response.URL))
		}),
	}
}
