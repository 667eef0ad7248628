package seo

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/IshaanNene/SEOCrawl/internal/types"
)

const mobileMax = 8.0

var fontSizePX = regexp.MustCompile(`font-size:\s*([0-9]+)px`)

// Mobile scores mobile readiness on an eight point rubric.
func Mobile(doc *goquery.Document) types.MobileOptimization {
	var score float64
	issues := []string{}

	viewport := doc.Find(`meta[name="viewport"]`).First()
	viewportContent, _ := viewport.Attr("content")
	properViewport := strings.Contains(viewportContent, "width=device-width")
	if viewport.Length() > 0 {
		score += 2
		if properViewport {
			score++
		} else {
			issues = append(issues, "Viewport meta is missing width=device-width")
		}
	} else {
		issues = append(issues, "Missing viewport meta tag")
	}

	images := doc.Find("img")
	responsive := images.FilterFunction(func(_ int, s *goquery.Selection) bool {
		srcset, _ := s.Attr("srcset")
		sizes, _ := s.Attr("sizes")
		return srcset != "" || sizes != ""
	}).Length()
	if n := images.Length(); n > 0 {
		if float64(responsive)/float64(n) > 0.5 {
			score++
		} else {
			issues = append(issues, "Few responsive images")
		}
	} else {
		score++
	}

	buttons := doc.Find("button").Length()
	if buttons > 0 {
		score++
	}

	smallFonts := doc.Find("[style]").FilterFunction(func(_ int, s *goquery.Selection) bool {
		style, _ := s.Attr("style")
		m := fontSizePX.FindStringSubmatch(style)
		if m == nil {
			return false
		}
		px, err := strconv.Atoi(m[1])
		return err == nil && px < 14
	}).Length()
	if smallFonts == 0 {
		score++
	} else {
		issues = append(issues, fmt.Sprintf("%d elements with very small fonts", smallFonts))
	}

	hasMedia := doc.Find("style").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.Contains(s.Text(), "@media")
	}).Length() > 0
	if hasMedia {
		score++
	} else {
		issues = append(issues, "No media queries found in inline CSS")
	}

	isAMP := doc.Find("amp-img, amp-video, html[amp]").Length() > 0
	if isAMP {
		score++
	}

	return types.MobileOptimization{
		MobileOptimizationScore:    types.Round(score/mobileMax*100, 1),
		HasViewportMeta:            viewport.Length() > 0,
		ViewportContent:            viewportContent,
		ResponsiveImagesPercentage: types.Percent(responsive, images.Length(), 0),
		IsAMP:                      isAMP,
		MobileIssues:               issues,
		MobileFriendlyIndicators: types.MobileIndicators{
			ProperViewport:      properViewport,
			HasResponsiveImages: responsive > 0,
			TouchElements:       buttons,
		},
	}
}
