package seo

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/IshaanNene/SEOCrawl/internal/types"
)

const accessibilityMax = 10.0

var genericLinkTexts = map[string]bool{
	"click here": true, "read more": true, "here": true, "more": true,
	"εδώ": true, "περισσότερα": true, "κλικ εδώ": true,
}

// Accessibility scores the page on a ten point rubric and reports the
// percentage with the issues found.
func Accessibility(doc *goquery.Document) types.Accessibility {
	var score float64
	issues := []string{}

	images := doc.Find("img")
	withAlt := images.FilterFunction(func(_ int, s *goquery.Selection) bool {
		alt, _ := s.Attr("alt")
		return alt != ""
	}).Length()
	if n := images.Length(); n > 0 {
		pct := float64(withAlt) / float64(n) * 100
		switch {
		case pct > 90:
			score += 2
		case pct > 70:
			score++
		}
		if pct < 100 {
			issues = append(issues, fmt.Sprintf("%d images without alt text", n-withAlt))
		}
	} else {
		score += 2
	}

	labelFor := make(map[string]bool)
	doc.Find("label[for]").Each(func(_ int, s *goquery.Selection) {
		id, _ := s.Attr("for")
		labelFor[id] = true
	})
	inputs := doc.Find(`input[type="text"], input[type="email"], input[type="password"], input[type="tel"]`)
	labeled := inputs.FilterFunction(func(_ int, s *goquery.Selection) bool {
		id, _ := s.Attr("id")
		return id != "" && labelFor[id]
	}).Length()
	if n := inputs.Length(); n > 0 {
		if labeled == n {
			score++
		} else {
			issues = append(issues, fmt.Sprintf("%d form inputs without labels", n-labeled))
		}
	} else {
		score++
	}

	h1 := doc.Find("h1").Length()
	switch {
	case h1 == 1:
		score++
	case h1 == 0:
		issues = append(issues, "Missing H1")
	default:
		issues = append(issues, fmt.Sprintf("Multiple H1 (%d)", h1))
	}

	links := doc.Find("a[href]")
	generic := links.FilterFunction(func(_ int, s *goquery.Selection) bool {
		return genericLinkTexts[strings.ToLower(trimmedText(s))]
	}).Length()
	if links.Length() > 0 {
		if generic == 0 {
			score++
		} else {
			issues = append(issues, fmt.Sprintf("%d links with generic text", generic))
		}
	} else {
		score++
	}

	colorIssues := doc.Find("[style]").FilterFunction(func(_ int, s *goquery.Selection) bool {
		style, _ := s.Attr("style")
		return strings.Contains(style, "color:") && strings.Contains(style, "background")
	}).Length()
	if colorIssues > 0 {
		issues = append(issues, fmt.Sprintf("Possible color contrast issues in %d elements", colorIssues))
	} else {
		score++
	}

	lang, _ := doc.Find("html").First().Attr("lang")
	hasLang := lang != ""
	if hasLang {
		score++
	} else {
		issues = append(issues, "Missing lang attribute on HTML")
	}

	hasSkip := doc.Find(`a[href^="#"]`).FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.Contains(strings.ToLower(s.Text()), "skip")
	}).Length() > 0
	if hasSkip {
		score++
	} else {
		score += 0.5
	}

	tables := doc.Find("table")
	if n := tables.Length(); n > 0 {
		withHeaders := tables.FilterFunction(func(_ int, s *goquery.Selection) bool {
			return s.Find("th, thead").Length() > 0
		}).Length()
		if withHeaders == n {
			score++
		} else {
			issues = append(issues, fmt.Sprintf("%d tables without proper headers", n-withHeaders))
		}
	} else {
		score++
	}

	return types.Accessibility{
		AccessibilityScore:     types.Round(score/accessibilityMax*100, 1),
		Issues:                 issues,
		ImagesAltCoverage:      types.Percent(withAlt, images.Length(), 100),
		FormLabelCoverage:      types.Percent(labeled, inputs.Length(), 100),
		HasProperHeadings:      h1 == 1,
		HasLanguageDeclaration: hasLang,
	}
}
