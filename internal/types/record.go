package types

// PageRecord is the full signal profile of one successfully fetched page.
// It is created once per page and not modified after the extraction pipeline
// returns it. JSON field names are a stable contract for downstream tooling.
type PageRecord struct {
	URL        string  `json:"url"`
	StatusCode int     `json:"status_code"`
	Timestamp  float64 `json:"timestamp"`
	PageSize   int     `json:"page_size"`
	LoadTime   float64 `json:"load_time"`
	CrawlDate  string  `json:"crawl_date"`
	CrawlID    string  `json:"crawl_id,omitempty"`

	MetaData            MetaData            `json:"meta_data"`
	Headings            Headings            `json:"headings"`
	Images              Images              `json:"images"`
	Links               Links               `json:"links"`
	ContentAnalysis     ContentAnalysis     `json:"content_analysis"`
	TechnicalSEO        TechnicalSEO        `json:"technical_seo"`
	SocialMeta          SocialMeta          `json:"social_meta"`
	SchemaMarkup        SchemaMarkup        `json:"schema_markup"`
	PerformanceMetrics  PerformanceMetrics  `json:"performance_metrics"`
	AdvancedSEO         AdvancedSEO         `json:"advanced_seo"`
	Accessibility       Accessibility       `json:"accessibility"`
	MobileOptimization  MobileOptimization  `json:"mobile_optimization"`
	InternalLinking     InternalLinking     `json:"internal_linking"`
	PageSpeedInsights   PageSpeedInsights   `json:"page_speed_insights"`
	CompetitiveAnalysis CompetitiveAnalysis `json:"competitive_analysis"`
	CoreWebVitals       CoreWebVitals       `json:"core_web_vitals"`
	DetectedLanguage    string              `json:"detected_language"`
}

// MetaData holds the document head metadata.
type MetaData struct {
	Title             string  `json:"title"`
	TitleLength       int     `json:"title_length"`
	Description       string  `json:"description"`
	DescriptionLength int     `json:"description_length"`
	Keywords          *string `json:"keywords"`
	Charset           string  `json:"charset"`
	Viewport          string  `json:"viewport"`
	Robots            string  `json:"robots"`
}

// HeadingText is one heading's text and rune length.
type HeadingText struct {
	Text   string `json:"text"`
	Length int    `json:"length"`
}

// HeadingEntry is a heading in the flattened structure list.
type HeadingEntry struct {
	Level  int    `json:"level"`
	Text   string `json:"text"`
	Length int    `json:"length"`
}

// HeadingLevels groups headings by level.
type HeadingLevels struct {
	H1 []HeadingText `json:"h1"`
	H2 []HeadingText `json:"h2"`
	H3 []HeadingText `json:"h3"`
	H4 []HeadingText `json:"h4"`
	H5 []HeadingText `json:"h5"`
	H6 []HeadingText `json:"h6"`
}

// Level returns a pointer to the list for heading level n (1..6).
func (l *HeadingLevels) Level(n int) *[]HeadingText {
	switch n {
	case 1:
		return &l.H1
	case 2:
		return &l.H2
	case 3:
		return &l.H3
	case 4:
		return &l.H4
	case 5:
		return &l.H5
	default:
		return &l.H6
	}
}

type Headings struct {
	Headings      HeadingLevels  `json:"headings"`
	Structure     []HeadingEntry `json:"structure"`
	H1Count       int            `json:"h1_count"`
	TotalHeadings int            `json:"total_headings"`
}

type Image struct {
	Src     string `json:"src"`
	Alt     string `json:"alt"`
	HasAlt  bool   `json:"has_alt"`
	Title   string `json:"title"`
	Width   string `json:"width"`
	Height  string `json:"height"`
	Loading string `json:"loading"`
}

type Images struct {
	Images                []Image `json:"images"`
	TotalImages           int     `json:"total_images"`
	ImagesWithoutAlt      int     `json:"images_without_alt"`
	ImagesWithLazyLoading int     `json:"images_with_lazy_loading"`
}

type Link struct {
	URL        string   `json:"url"`
	Text       string   `json:"text"`
	Title      string   `json:"title"`
	Rel        []string `json:"rel"`
	Target     string   `json:"target"`
	IsNofollow bool     `json:"is_nofollow"`
}

type Links struct {
	InternalLinks []Link `json:"internal_links"`
	ExternalLinks []Link `json:"external_links"`
	TotalInternal int    `json:"total_internal"`
	TotalExternal int    `json:"total_external"`
	NofollowLinks int    `json:"nofollow_links"`
}

// ScriptShare is the Greek/Latin character split of the cleaned text.
type ScriptShare struct {
	GreekPercentage   float64 `json:"greek_percentage"`
	EnglishPercentage float64 `json:"english_percentage"`
	PrimaryLanguage   string  `json:"primary_language"`
}

type ContentStructure struct {
	ParagraphCount         int     `json:"paragraph_count"`
	AverageParagraphLength float64 `json:"average_paragraph_length"`
	SentenceCount          int     `json:"sentence_count"`
	AverageSentenceLength  float64 `json:"average_sentence_length"`
}

type KeywordCount struct {
	Word    string  `json:"word"`
	Count   int     `json:"count"`
	Density float64 `json:"density"`
}

type KeywordAnalysis struct {
	TopKeywords      []KeywordCount `json:"top_keywords"`
	KeywordDiversity int            `json:"keyword_diversity"`
	RepeatedWords    int            `json:"repeated_words"`
}

type ContentQuality struct {
	HasMainContent    bool    `json:"has_main_content"`
	ContentDepthScore float64 `json:"content_depth_score"`
	ReadabilityScore  float64 `json:"readability_score"`
}

type ContentAnalysis struct {
	TotalWordCount           int              `json:"total_word_count"`
	MainContentWordCount     int              `json:"main_content_word_count"`
	CharacterCount           int              `json:"character_count"`
	CharacterCountWithSpaces int              `json:"character_count_with_spaces"`
	TextToHTMLRatio          float64          `json:"text_to_html_ratio"`
	CodeToTextRatio          float64          `json:"code_to_text_ratio"`
	ReadingTimeMinutes       float64          `json:"reading_time_minutes"`
	LanguageDetection        ScriptShare      `json:"language_detection"`
	ContentStructure         ContentStructure `json:"content_structure"`
	KeywordAnalysis          KeywordAnalysis  `json:"keyword_analysis"`
	ContentQuality           ContentQuality   `json:"content_quality_indicators"`
	ContentHash              string           `json:"content_hash"`
}

type TechnicalSEO struct {
	HasSitemapLink   bool              `json:"has_sitemap_link"`
	HasRobotsTxtLink bool              `json:"has_robots_txt_link"`
	HasCanonical     bool              `json:"has_canonical"`
	CanonicalURL     *string           `json:"canonical_url"`
	HasHreflang      bool              `json:"has_hreflang"`
	HasFavicon       bool              `json:"has_favicon"`
	HasSSL           bool              `json:"has_ssl"`
	ResponseHeaders  map[string]string `json:"response_headers"`
}

type SocialMeta struct {
	OpenGraph      map[string]string `json:"open_graph"`
	TwitterCard    map[string]string `json:"twitter_card"`
	HasOGTags      bool              `json:"has_og_tags"`
	HasTwitterTags bool              `json:"has_twitter_tags"`
}

// Schema entry formats.
const (
	FormatJSONLD    = "json-ld"
	FormatMicrodata = "microdata"
	FormatRDFa      = "rdfa"
)

// SchemaEntry is one structured-data block. Which fields are populated depends
// on Format; a JSON-LD block that failed to parse carries Error and RawContent.
type SchemaEntry struct {
	Format     string            `json:"format"`
	Data       any               `json:"data,omitempty"`
	Type       string            `json:"type,omitempty"`
	Error      string            `json:"error,omitempty"`
	RawContent string            `json:"raw_content,omitempty"`
	ItemType   string            `json:"itemtype,omitempty"`
	ItemScope  *bool             `json:"itemscope,omitempty"`
	Properties map[string]string `json:"properties,omitempty"`
	TypeOf     string            `json:"typeof,omitempty"`
	Vocab      *string           `json:"vocab,omitempty"`
	Prefix     *string           `json:"prefix,omitempty"`
}

type SchemaValidation struct {
	Errors      []string `json:"errors"`
	Warnings    []string `json:"warnings"`
	Suggestions []string `json:"suggestions"`
}

type SchemaMarkup struct {
	Schemas            []SchemaEntry    `json:"schemas"`
	JSONLDCount        int              `json:"json_ld_count"`
	MicrodataCount     int              `json:"microdata_count"`
	RDFaCount          int              `json:"rdfa_count"`
	SchemaCount        int              `json:"schema_count"`
	SchemaTypes        []string         `json:"schema_types"`
	HasSchemaMarkup    bool             `json:"has_schema_markup"`
	Validation         SchemaValidation `json:"validation"`
	RecommendedSchemas []string         `json:"recommended_schemas"`
}

type CacheHeaders struct {
	CacheControl    string `json:"cache_control"`
	Expires         string `json:"expires"`
	ETag            string `json:"etag"`
	LastModified    string `json:"last_modified"`
	HasCacheHeaders bool   `json:"has_cache_headers"`
}

type SecurityHeaders struct {
	StrictTransportSecurity string   `json:"strict_transport_security"`
	ContentSecurityPolicy   string   `json:"content_security_policy"`
	XFrameOptions           string   `json:"x_frame_options"`
	XContentTypeOptions     string   `json:"x_content_type_options"`
	XXSSProtection          string   `json:"x_xss_protection"`
	ReferrerPolicy          string   `json:"referrer_policy"`
	PermissionsPolicy       string   `json:"permissions_policy"`
	ContentType             string   `json:"content_type"`
	SecurityScore           float64  `json:"security_score"`
	MissingHeaders          []string `json:"missing_headers"`
}

type PerformanceMetrics struct {
	ResponseTimeMS  float64         `json:"response_time_ms"`
	ContentSizeKB   float64         `json:"content_size_kb"`
	GzipEnabled     bool            `json:"gzip_enabled"`
	BrotliEnabled   bool            `json:"brotli_enabled"`
	CacheHeaders    CacheHeaders    `json:"cache_headers"`
	SecurityHeaders SecurityHeaders `json:"security_headers"`
}

type URLReadability struct {
	ReadabilityScore int      `json:"readability_score"`
	Issues           []string `json:"issues"`
	WordCount        int      `json:"word_count"`
	UsesHyphens      bool     `json:"uses_hyphens"`
	Descriptive      bool     `json:"descriptive"`
}

type Breadcrumb struct {
	Text string `json:"text"`
	URL  string `json:"url"`
}

type Breadcrumbs struct {
	HTMLBreadcrumbs   []Breadcrumb `json:"html_breadcrumbs"`
	JSONLDBreadcrumbs []any        `json:"json_ld_breadcrumbs"`
	HasBreadcrumbs    bool         `json:"has_breadcrumbs"`
	BreadcrumbDepth   int          `json:"breadcrumb_depth"`
}

type URLAnalysis struct {
	URLLength       int            `json:"url_length"`
	PathDepth       int            `json:"path_depth"`
	HasParameters   bool           `json:"has_parameters"`
	HasFragment     bool           `json:"has_fragment"`
	URLReadability  URLReadability `json:"url_readability"`
	BreadcrumbTrail Breadcrumbs    `json:"breadcrumb_trail"`
}

type RobotsAnalysis struct {
	RobotsContent string `json:"robots_content"`
	IsIndexable   bool   `json:"is_indexable"`
	IsFollowable  bool   `json:"is_followable"`
	AllowsCaching bool   `json:"allows_caching"`
}

type TitleKeywordPlacement struct {
	StartsWithKeyword bool    `json:"starts_with_keyword"`
	KeywordDensity    float64 `json:"keyword_density"`
	HasBrandLast      bool    `json:"has_brand_last"`
}

type TitleAnalysis struct {
	TitleKeywordPlacement TitleKeywordPlacement `json:"title_keyword_placement"`
	TitleHasBrand         bool                  `json:"title_has_brand"`
	TitleUniquenessScore  int                   `json:"title_uniqueness_score"`
}

type HierarchyHeading struct {
	Level    int    `json:"level"`
	Text     string `json:"text"`
	Position int    `json:"position"`
}

type HeadingHierarchy struct {
	Correct       bool               `json:"correct"`
	Issues        []string           `json:"issues"`
	Headings      []HierarchyHeading `json:"headings"`
	TotalHeadings int                `json:"total_headings"`
	H1Count       int                `json:"h1_count"`
}

type KeywordSignals struct {
	InTitle           bool `json:"in_title"`
	InH1              bool `json:"in_h1"`
	InMetaDescription bool `json:"in_meta_description"`
	InContent         bool `json:"in_content"`
	ContentFrequency  int  `json:"content_frequency"`
}

type KeywordDistribution struct {
	ExtractedKeywords        []string                  `json:"extracted_keywords"`
	KeywordPlacement         map[string]KeywordSignals `json:"keyword_placement"`
	KeywordOptimizationScore int                       `json:"keyword_optimization_score"`
}

type AnchorTextBreakdown struct {
	TotalLinks         int `json:"total_links"`
	DescriptiveAnchors int `json:"descriptive_anchors"`
	GenericAnchors     int `json:"generic_anchors"`
	BrandedAnchors     int `json:"branded_anchors"`
	ImageLinks         int `json:"image_links"`
	EmptyAnchors       int `json:"empty_anchors"`
}

type Freshness struct {
	HasDates           bool   `json:"has_dates"`
	HasLastUpdated     bool   `json:"has_last_updated"`
	HasTimeElements    bool   `json:"has_time_elements"`
	CopyrightYear      *int   `json:"copyright_year"`
	EstimatedFreshness string `json:"estimated_freshness"`
}

type ContentOptimization struct {
	HeadingHierarchy            HeadingHierarchy    `json:"heading_hierarchy_correct"`
	ContentKeywordsDistribution KeywordDistribution `json:"content_keywords_distribution"`
	InternalLinkOptimization    AnchorTextBreakdown `json:"internal_link_optimization"`
	ContentFreshnessIndicators  Freshness           `json:"content_freshness_indicators"`
}

type AdvancedSEO struct {
	URLAnalysis         URLAnalysis         `json:"url_analysis"`
	RobotsAnalysis      RobotsAnalysis      `json:"robots_analysis"`
	TitleAnalysis       TitleAnalysis       `json:"title_analysis"`
	ContentOptimization ContentOptimization `json:"content_optimization"`
}

type Accessibility struct {
	AccessibilityScore     float64  `json:"accessibility_score"`
	Issues                 []string `json:"issues"`
	ImagesAltCoverage      float64  `json:"images_alt_coverage"`
	FormLabelCoverage      float64  `json:"form_label_coverage"`
	HasProperHeadings      bool     `json:"has_proper_headings"`
	HasLanguageDeclaration bool     `json:"has_language_declaration"`
}

type MobileIndicators struct {
	ProperViewport      bool `json:"proper_viewport"`
	HasResponsiveImages bool `json:"has_responsive_images"`
	TouchElements       int  `json:"touch_elements"`
}

type MobileOptimization struct {
	MobileOptimizationScore    float64          `json:"mobile_optimization_score"`
	HasViewportMeta            bool             `json:"has_viewport_meta"`
	ViewportContent            string           `json:"viewport_content"`
	ResponsiveImagesPercentage float64          `json:"responsive_images_percentage"`
	IsAMP                      bool             `json:"is_amp"`
	MobileIssues               []string         `json:"mobile_issues"`
	MobileFriendlyIndicators   MobileIndicators `json:"mobile_friendly_indicators"`
}

type InternalLink struct {
	URL           string   `json:"url"`
	AnchorText    string   `json:"anchor_text"`
	Title         string   `json:"title"`
	Position      string   `json:"position"`
	IsImageLink   bool     `json:"is_image_link"`
	RelAttributes []string `json:"rel_attributes"`
}

type AnchorTextAnalysis struct {
	TotalInternalLinks int `json:"total_internal_links"`
	UniqueAnchorTexts  int `json:"unique_anchor_texts"`
	EmptyAnchorTexts   int `json:"empty_anchor_texts"`
	ImageLinks         int `json:"image_links"`
	NavigationLinks    int `json:"navigation_links"`
	ContentLinks       int `json:"content_links"`
}

type InternalLinking struct {
	InternalLinks          []InternalLink     `json:"internal_links"`
	AnchorTextAnalysis     AnchorTextAnalysis `json:"anchor_text_analysis"`
	LinkingRecommendations []string           `json:"linking_recommendations"`
}

type PSIVitals struct {
	LCP       float64 `json:"lcp"`
	FID       float64 `json:"fid"`
	CLS       float64 `json:"cls"`
	LCPRating string  `json:"lcp_rating"`
	FIDRating string  `json:"fid_rating"`
	CLSRating string  `json:"cls_rating"`
}

type PSIMetrics struct {
	LoadTimeMS    float64 `json:"load_time_ms"`
	ContentSizeKB float64 `json:"content_size_kb"`
	CSSFiles      int     `json:"css_files"`
	JSFiles       int     `json:"js_files"`
	ImageCount    int     `json:"image_count"`
}

type OptimizationFeatures struct {
	HasLazyLoading bool `json:"has_lazy_loading"`
	HasPreload     bool `json:"has_preload"`
	HasPrefetch    bool `json:"has_prefetch"`
	GzipEnabled    bool `json:"gzip_enabled"`
}

// PageSpeedInsights holds estimated, not measured, performance figures.
type PageSpeedInsights struct {
	PerformanceScore     float64              `json:"performance_score"`
	CoreWebVitals        PSIVitals            `json:"core_web_vitals"`
	Metrics              PSIMetrics           `json:"metrics"`
	OptimizationFeatures OptimizationFeatures `json:"optimization_features"`
	Opportunities        []string             `json:"opportunities"`
	OverallRating        string               `json:"overall_rating"`
}

// Vital is one estimated web-vital value with its rating bucket.
type Vital struct {
	Value         float64  `json:"value"`
	Rating        string   `json:"rating"`
	ThresholdGood *float64 `json:"threshold_good,omitempty"`
	ThresholdPoor *float64 `json:"threshold_poor,omitempty"`
}

type CoreWebVitals struct {
	LCP                    Vital    `json:"lcp"`
	FID                    Vital    `json:"fid"`
	CLS                    Vital    `json:"cls"`
	FCP                    Vital    `json:"fcp"`
	TTI                    Vital    `json:"tti"`
	OverallCWVRating       string   `json:"overall_cwv_rating"`
	ImprovementSuggestions []string `json:"improvement_suggestions"`
}

type SocialProof struct {
	Testimonials int `json:"testimonials"`
	ClientLogos  int `json:"client_logos"`
	Awards       int `json:"awards"`
	CaseStudies  int `json:"case_studies"`
}

type ContactAccessibility struct {
	PhoneNumbers   int `json:"phone_numbers"`
	EmailAddresses int `json:"email_addresses"`
	Addresses      int `json:"addresses"`
	ContactForms   int `json:"contact_forms"`
}

type BusinessMaturity struct {
	PricingMentions int  `json:"pricing_mentions"`
	ServicePages    int  `json:"service_pages"`
	AboutPage       bool `json:"about_page"`
	BlogSection     bool `json:"blog_section"`
}

type CMSDetection struct {
	DetectedCMS   string          `json:"detected_cms"`
	CMSIndicators map[string]bool `json:"cms_indicators"`
	Confidence    string          `json:"confidence"`
}

type TechnologyStack struct {
	CMSIndicators      CMSDetection `json:"cms_indicators"`
	AnalyticsTools     []string     `json:"analytics_tools"`
	MarketingTools     []string     `json:"marketing_tools"`
	SecurityIndicators []string     `json:"security_indicators"`
}

type CompetitiveAnalysis struct {
	SocialProof              SocialProof          `json:"social_proof"`
	ContactAccessibility     ContactAccessibility `json:"contact_accessibility"`
	BusinessMaturity         BusinessMaturity     `json:"business_maturity"`
	TechnologyStack          TechnologyStack      `json:"technology_stack"`
	CompetitiveStrengthScore int                  `json:"competitive_strength_score"`
}
