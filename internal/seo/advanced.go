package seo

import (
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/IshaanNene/SEOCrawl/internal/parser"
	"github.com/IshaanNene/SEOCrawl/internal/types"
)

var (
	upperLetter      = regexp.MustCompile(`[A-Z]`)
	urlSpecialChars  = regexp.MustCompile(`[^a-zA-Z0-9\-/]`)
	opaqueURLSegment = regexp.MustCompile(`\d{3,}|[a-f0-9]{8,}`)
	datePattern      = regexp.MustCompile(`\d{1,2}[/-]\d{1,2}[/-]\d{4}|\d{4}[/-]\d{1,2}[/-]\d{1,2}`)
	copyrightYear    = regexp.MustCompile(`copyright.*?(\d{4})`)
)

var (
	breadcrumbSelectors = []string{
		`nav[aria-label*="breadcrumb" i]`,
		".breadcrumb",
		".breadcrumbs",
		`[role="navigation"] ol`,
		`[role="navigation"] ul`,
	}
	titleBrandSeparators = []string{"|", "-", "::", "•", "—"}
	titleBrandWords      = []string{"company", "ltd", "inc", "corp"}
	commonTitlePatterns  = []string{"home", "welcome", "index", "main", "default"}
	lastUpdatedPhrases   = []string{"last updated", "τελευταία ενημέρωση", "updated on", "ενημερώθηκε"}
)

// Advanced runs the URL, robots, title and content optimization checks. now
// anchors the freshness estimate.
func Advanced(doc *goquery.Document, resp *types.RawResponse, now time.Time) types.AdvancedSEO {
	title := trimmedText(doc.Find("title").First())
	return types.AdvancedSEO{
		URLAnalysis:    urlAnalysis(doc, resp.FinalURL),
		RobotsAnalysis: robotsAnalysis(doc),
		TitleAnalysis: types.TitleAnalysis{
			TitleKeywordPlacement: titleKeywordPlacement(title),
			TitleHasBrand:         containsAny(strings.ToLower(title), titleBrandSeparators),
			TitleUniquenessScore:  titleUniqueness(title),
		},
		ContentOptimization: types.ContentOptimization{
			HeadingHierarchy:            HeadingHierarchy(doc),
			ContentKeywordsDistribution: KeywordDistribution(doc),
			InternalLinkOptimization:    AnchorTextBreakdown(doc),
			ContentFreshnessIndicators:  Freshness(doc, now),
		},
	}
}

func urlAnalysis(doc *goquery.Document, rawURL string) types.URLAnalysis {
	out := types.URLAnalysis{URLLength: len([]rune(rawURL))}
	u, err := url.Parse(rawURL)
	if err != nil {
		out.URLReadability = URLReadability("")
		out.BreadcrumbTrail = Breadcrumbs(doc)
		return out
	}
	path := u.EscapedPath()
	out.PathDepth = len(pathSegments(path))
	out.HasParameters = u.RawQuery != ""
	out.HasFragment = u.Fragment != ""
	out.URLReadability = URLReadability(path)
	out.BreadcrumbTrail = Breadcrumbs(doc)
	return out
}

func pathSegments(path string) []string {
	var segs []string
	for _, p := range strings.Split(path, "/") {
		if p != "" {
			segs = append(segs, p)
		}
	}
	return segs
}

// URLReadability scores a URL path starting from 100.
func URLReadability(path string) types.URLReadability {
	score := 100
	issues := []string{}
	if len(path) > 100 {
		score -= 20
		issues = append(issues, "URL too long")
	}
	if strings.Contains(path, "_") {
		score -= 10
		issues = append(issues, "Underscore in URL (prefer hyphens)")
	}
	if upperLetter.MatchString(path) {
		score -= 10
		issues = append(issues, "Uppercase letters in URL")
	}
	if urlSpecialChars.MatchString(path) {
		score -= 15
		issues = append(issues, "Special characters in URL")
	}
	return types.URLReadability{
		ReadabilityScore: max(0, score),
		Issues:           issues,
		WordCount:        len(pathSegments(path)),
		UsesHyphens:      strings.Contains(path, "-"),
		Descriptive:      !opaqueURLSegment.MatchString(path),
	}
}

// Breadcrumbs reads the first matching HTML breadcrumb trail and any JSON-LD
// BreadcrumbList. A later BreadcrumbList replaces an earlier one.
func Breadcrumbs(doc *goquery.Document) types.Breadcrumbs {
	out := types.Breadcrumbs{
		HTMLBreadcrumbs:   []types.Breadcrumb{},
		JSONLDBreadcrumbs: []any{},
	}
	for _, sel := range breadcrumbSelectors {
		nav := doc.Find(sel).First()
		if nav.Length() == 0 {
			continue
		}
		nav.Find("a").Each(func(_ int, a *goquery.Selection) {
			href, _ := a.Attr("href")
			out.HTMLBreadcrumbs = append(out.HTMLBreadcrumbs, types.Breadcrumb{Text: trimmedText(a), URL: href})
		})
		break
	}

	for _, b := range parser.JSONLDBlocks(doc) {
		if b.Err != nil {
			continue
		}
		obj, ok := b.Data.(map[string]any)
		if !ok {
			continue
		}
		if obj["@type"] == "BreadcrumbList" {
			out.JSONLDBreadcrumbs = itemList(obj)
			continue
		}
		graph, _ := obj["@graph"].([]any)
		for _, item := range graph {
			if m, ok := item.(map[string]any); ok && m["@type"] == "BreadcrumbList" {
				out.JSONLDBreadcrumbs = itemList(m)
			}
		}
	}

	out.HasBreadcrumbs = len(out.HTMLBreadcrumbs) > 0 || len(out.JSONLDBreadcrumbs) > 0
	out.BreadcrumbDepth = max(len(out.HTMLBreadcrumbs), len(out.JSONLDBreadcrumbs))
	return out
}

func itemList(obj map[string]any) []any {
	if items, ok := obj["itemListElement"].([]any); ok {
		return items
	}
	return []any{}
}

func robotsAnalysis(doc *goquery.Document) types.RobotsAnalysis {
	content, _ := doc.Find(`meta[name="robots"]`).First().Attr("content")
	lower := strings.ToLower(content)
	return types.RobotsAnalysis{
		RobotsContent: content,
		IsIndexable:   !strings.Contains(lower, "noindex"),
		IsFollowable:  !strings.Contains(lower, "nofollow"),
		AllowsCaching: !strings.Contains(lower, "noarchive"),
	}
}

func titleKeywordPlacement(title string) types.TitleKeywordPlacement {
	words := strings.Fields(strings.ToLower(title))
	var p types.TitleKeywordPlacement
	if len(words) == 0 {
		return p
	}
	long := 0
	for _, w := range words {
		if len([]rune(w)) > 3 {
			long++
		}
	}
	p.StartsWithKeyword = len([]rune(words[0])) > 3
	p.KeywordDensity = float64(long) / float64(len(words))
	if len(words) > 1 {
		for _, w := range words[len(words)-2:] {
			for _, brand := range titleBrandWords {
				if w == brand {
					p.HasBrandLast = true
				}
			}
		}
	}
	return p
}

func titleUniqueness(title string) int {
	lower := strings.ToLower(title)
	score := 100
	for _, p := range commonTitlePatterns {
		if strings.Contains(lower, p) {
			score -= 20
		}
	}
	return max(0, score)
}

// HeadingHierarchy checks the level-ordered heading list: it must start at
// h1 and never skip a level going down.
func HeadingHierarchy(doc *goquery.Document) types.HeadingHierarchy {
	var headings []types.HierarchyHeading
	for level := 1; level <= 6; level++ {
		doc.Find("h" + strconv.Itoa(level)).Each(func(_ int, s *goquery.Selection) {
			headings = append(headings, types.HierarchyHeading{
				Level:    level,
				Text:     trimmedText(s),
				Position: len(headings),
			})
		})
	}
	if len(headings) == 0 {
		return types.HeadingHierarchy{
			Issues:   []string{"No headings found"},
			Headings: []types.HierarchyHeading{},
		}
	}

	out := types.HeadingHierarchy{
		Correct:       true,
		Issues:        []string{},
		Headings:      headings,
		TotalHeadings: len(headings),
	}
	if headings[0].Level != 1 {
		out.Correct = false
		out.Issues = append(out.Issues, "Does not start with H1")
	}
	for i := 1; i < len(headings); i++ {
		prev, cur := headings[i-1].Level, headings[i].Level
		if cur > prev+1 {
			out.Correct = false
			out.Issues = append(out.Issues, fmt.Sprintf("Skipped level: from H%d to H%d", prev, cur))
		}
	}
	for _, h := range headings {
		if h.Level == 1 {
			out.H1Count++
		}
	}
	return out
}

// KeywordDistribution checks where each long title word appears on the page.
func KeywordDistribution(doc *goquery.Document) types.KeywordDistribution {
	title := doc.Find("title").First().Text()
	var h1 []string
	doc.Find("h1").Each(func(_ int, s *goquery.Selection) { h1 = append(h1, s.Text()) })
	h1Text := strings.ToLower(strings.Join(h1, " "))
	desc, _ := doc.Find(`meta[name="description"]`).First().Attr("content")
	desc = strings.ToLower(desc)
	content := strings.ToLower(parser.StripChrome(doc).Text())
	titleLower := strings.ToLower(title)

	keywordSet := make(map[string]bool)
	for _, w := range strings.Fields(title) {
		if len([]rune(w)) <= 3 {
			continue
		}
		if k := strings.Trim(strings.ToLower(w), ".,!?"); k != "" {
			keywordSet[k] = true
		}
	}
	keywords := make([]string, 0, len(keywordSet))
	for k := range keywordSet {
		keywords = append(keywords, k)
	}
	sort.Strings(keywords)

	placement := make(map[string]types.KeywordSignals, len(keywords))
	for _, k := range keywords {
		placement[k] = types.KeywordSignals{
			InTitle:           strings.Contains(titleLower, k),
			InH1:              strings.Contains(h1Text, k),
			InMetaDescription: strings.Contains(desc, k),
			InContent:         strings.Contains(content, k),
			ContentFrequency:  strings.Count(content, k),
		}
	}

	return types.KeywordDistribution{
		ExtractedKeywords:        keywords,
		KeywordPlacement:         placement,
		KeywordOptimizationScore: keywordScore(placement),
	}
}

func keywordScore(placement map[string]types.KeywordSignals) int {
	if len(placement) == 0 {
		return 0
	}
	total := 0
	for _, p := range placement {
		s := 0
		if p.InTitle {
			s += 25
		}
		if p.InH1 {
			s += 20
		}
		if p.InMetaDescription {
			s += 15
		}
		if p.InContent {
			s += 10
		}
		switch f := p.ContentFrequency; {
		case f >= 2 && f <= 5:
			s += 10
		case f > 5:
			s -= 5
		}
		total += s
	}
	return min(100, total/len(placement))
}

// Freshness looks for dates, update notices and a copyright year.
func Freshness(doc *goquery.Document, now time.Time) types.Freshness {
	out := types.Freshness{EstimatedFreshness: "unknown"}
	if doc.Find("time").Length() > 0 {
		out.HasTimeElements = true
		out.HasDates = true
	}
	text := doc.Text()
	if datePattern.MatchString(text) {
		out.HasDates = true
	}
	lower := strings.ToLower(text)
	out.HasLastUpdated = containsAny(lower, lastUpdatedPhrases)

	if m := copyrightYear.FindStringSubmatch(lower); m != nil {
		if year, err := strconv.Atoi(m[1]); err == nil && year != 0 {
			out.CopyrightYear = &year
			switch age := now.Year() - year; {
			case age <= 1:
				out.EstimatedFreshness = "fresh"
			case age <= 3:
				out.EstimatedFreshness = "moderate"
			default:
				out.EstimatedFreshness = "stale"
			}
		}
	}
	return out
}
