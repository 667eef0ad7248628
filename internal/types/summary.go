package types

// CrawlSummary is derived from the PageRecords and CrawlErrors of one crawl.
// It holds no state beyond what the persisted records carry, so it can be
// rebuilt from disk.
type CrawlSummary struct {
	CrawlInfo   CrawlInfo        `json:"crawl_info"`
	SEOOverview SEOOverview      `json:"seo_overview"`
	SEOIssues   SEOIssues        `json:"seo_issues"`
	Performance PerformanceStats `json:"performance"`
	Content     ContentStats     `json:"content"`
	Duplicates  []DuplicateGroup `json:"duplicate_content"`
	Errors      []CrawlError     `json:"errors"`
}

type LanguageStats struct {
	Pages int      `json:"pages"`
	Files []string `json:"files"`
}

type CrawlInfo struct {
	CrawlID              string                   `json:"crawl_id,omitempty"`
	Domain               string                   `json:"domain"`
	BaseURL              string                   `json:"base_url"`
	CrawlTimestamp       string                   `json:"crawl_timestamp"`
	CrawlDate            string                   `json:"crawl_date"`
	TotalPagesCrawled    int                      `json:"total_pages_crawled"`
	TotalErrors          int                      `json:"total_errors"`
	LanguageDistribution map[string]LanguageStats `json:"language_distribution"`
}

type SEOOverview struct {
	TotalImages        int     `json:"total_images"`
	ImagesWithoutAlt   int     `json:"images_without_alt"`
	AltTextCoverage    float64 `json:"alt_text_coverage"`
	TotalInternalLinks int     `json:"total_internal_links"`
	TotalExternalLinks int     `json:"total_external_links"`
}

type SEOIssues struct {
	PagesWithoutTitle       int `json:"pages_without_title"`
	PagesWithoutDescription int `json:"pages_without_description"`
	PagesWithoutH1          int `json:"pages_without_h1"`
	PagesWithMultipleH1     int `json:"pages_with_multiple_h1"`
}

type PerformanceStats struct {
	AverageLoadTimeSeconds float64 `json:"average_load_time_seconds"`
	SlowPagesOver3s        int     `json:"slow_pages_over_3s"`
	PerformanceScore       float64 `json:"performance_score"`
}

type ContentStats struct {
	AverageWordCount    float64 `json:"average_word_count"`
	PagesWithLowContent int     `json:"pages_with_low_content"`
}

// DuplicateGroup lists pages whose cleaned text hashes to the same value.
type DuplicateGroup struct {
	ContentHash string   `json:"content_hash"`
	URLs        []string `json:"urls"`
}
