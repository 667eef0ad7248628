package report

import (
	"github.com/IshaanNene/SEOCrawl/internal/types"
)

const (
	digestTitleLen       = 100
	digestDescriptionLen = 200
)

// PageDigest is the short per-page view printed by `seocrawl inspect`.
type PageDigest struct {
	URL               string  `json:"url"`
	Language          string  `json:"language"`
	StatusCode        int     `json:"status_code"`
	Title             string  `json:"title"`
	TitleLength       int     `json:"title_length"`
	Description       string  `json:"description"`
	DescriptionLength int     `json:"description_length"`
	H1Count           int     `json:"h1_count"`
	TotalHeadings     int     `json:"total_headings"`
	WordCount         int     `json:"word_count"`
	ImagesTotal       int     `json:"images_total"`
	ImagesWithoutAlt  int     `json:"images_without_alt"`
	InternalLinks     int     `json:"internal_links"`
	ExternalLinks     int     `json:"external_links"`
	PageSizeKB        float64 `json:"page_size_kb"`
	LoadTimeMS        float64 `json:"load_time_ms"`
	HasCanonical      bool    `json:"has_canonical"`
	HasSSL            bool    `json:"has_ssl"`
}

// Digest condenses a record. Title and description are cut to 100 and 200
// characters.
func Digest(rec *types.PageRecord) PageDigest {
	return PageDigest{
		URL:               rec.URL,
		Language:          rec.DetectedLanguage,
		StatusCode:        rec.StatusCode,
		Title:             truncate(rec.MetaData.Title, digestTitleLen),
		TitleLength:       rec.MetaData.TitleLength,
		Description:       truncate(rec.MetaData.Description, digestDescriptionLen),
		DescriptionLength: rec.MetaData.DescriptionLength,
		H1Count:           rec.Headings.H1Count,
		TotalHeadings:     rec.Headings.TotalHeadings,
		WordCount:         rec.ContentAnalysis.TotalWordCount,
		ImagesTotal:       rec.Images.TotalImages,
		ImagesWithoutAlt:  rec.Images.ImagesWithoutAlt,
		InternalLinks:     rec.Links.TotalInternal,
		ExternalLinks:     rec.Links.TotalExternal,
		PageSizeKB:        rec.PerformanceMetrics.ContentSizeKB,
		LoadTimeMS:        rec.PerformanceMetrics.ResponseTimeMS,
		HasCanonical:      rec.TechnicalSEO.HasCanonical,
		HasSSL:            rec.TechnicalSEO.HasSSL,
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
