package seo

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/IshaanNene/SEOCrawl/internal/parser"
	"github.com/IshaanNene/SEOCrawl/internal/types"
)

var (
	testimonialPattern = regexp.MustCompile(`(?i)testimonial|review|αξιολόγηση`)
	clientAltPattern   = regexp.MustCompile(`(?i)client|customer|πελάτης`)
	awardPattern       = regexp.MustCompile(`(?i)award|certification|βραβείο|πιστοποίηση`)
	caseStudyPattern   = regexp.MustCompile(`(?i)case-study|portfolio|έργα`)
	phonePattern       = regexp.MustCompile(`(\+\d{1,3}[\s-]?)?\(?\d{3,4}\)?[\s-]?\d{3,4}[\s-]?\d{3,4}`)
	emailPattern       = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Z|a-z]{2,}\b`)
	addressPattern     = regexp.MustCompile(`(?i)\d+.*street|avenue|road|οδός|λεωφόρος`)
	pricingPattern     = regexp.MustCompile(`(?i)price|cost|€|pricing|τιμή|κόστος`)
	servicePattern     = regexp.MustCompile(`(?i)service|υπηρεσία`)
	aboutPattern       = regexp.MustCompile(`(?i)about|σχετικά`)
	blogPattern        = regexp.MustCompile(`(?i)blog|news|άρθρα|νέα`)
	wpClassPattern     = regexp.MustCompile(`(?i)wp-`)
	csrfNamePattern    = regexp.MustCompile(`(?i)csrf|token`)
	captchaPattern     = regexp.MustCompile(`(?i)captcha|recaptcha`)
)

// cmsOrder is the detection precedence when several CMS fingerprints match.
var cmsOrder = []string{"wordpress", "drupal", "joomla", "shopify", "wix", "squarespace"}

var cmsPatterns = func() map[string]*regexp.Regexp {
	m := make(map[string]*regexp.Regexp, len(cmsOrder))
	for _, name := range cmsOrder {
		m[name] = regexp.MustCompile(`(?i)` + name)
	}
	return m
}()

type marker struct {
	name   string
	needle []string
}

var (
	analyticsMarkers = []marker{
		{"Google Analytics", []string{"google-analytics", "gtag", "ga("}},
		{"Google Tag Manager", []string{"googletagmanager"}},
		{"Facebook Pixel", []string{"facebook.net", "fbevents"}},
		{"Hotjar", []string{"hotjar"}},
		{"Mouseflow", []string{"mouseflow"}},
	}
	marketingMarkers = []marker{
		{"MailChimp", []string{"mailchimp"}},
		{"HubSpot", []string{"hubspot"}},
		{"Intercom", []string{"intercom"}},
		{"Zendesk", []string{"zendesk"}},
		{"Crisp Chat", []string{"crisp"}},
	}
)

// Competitive gathers business signals: social proof, contact channels,
// site maturity and the detectable technology stack.
func Competitive(doc *goquery.Document) types.CompetitiveAnalysis {
	text := doc.Text()

	social := types.SocialProof{
		Testimonials: parser.CountTextNodes(doc, testimonialPattern),
		ClientLogos:  attrMatches(doc, "img", "alt", clientAltPattern).Length(),
		Awards:       parser.CountTextNodes(doc, awardPattern),
		CaseStudies:  attrMatches(doc, "a", "href", caseStudyPattern).Length(),
	}
	contact := types.ContactAccessibility{
		PhoneNumbers:   len(phonePattern.FindAllStringIndex(text, -1)),
		EmailAddresses: len(emailPattern.FindAllStringIndex(text, -1)),
		Addresses:      parser.CountTextNodes(doc, addressPattern),
		ContactForms:   doc.Find("form").Length(),
	}
	business := types.BusinessMaturity{
		PricingMentions: parser.CountTextNodes(doc, pricingPattern),
		ServicePages:    attrMatches(doc, "a", "href", servicePattern).Length(),
		AboutPage:       attrMatches(doc, "a", "href", aboutPattern).Length() > 0,
		BlogSection:     attrMatches(doc, "a", "href", blogPattern).Length() > 0,
	}

	var scripts []string
	doc.Find("script").Each(func(_ int, s *goquery.Selection) { scripts = append(scripts, s.Text()) })
	scriptText := strings.Join(scripts, " ")

	return types.CompetitiveAnalysis{
		SocialProof:          social,
		ContactAccessibility: contact,
		BusinessMaturity:     business,
		TechnologyStack: types.TechnologyStack{
			CMSIndicators:      DetectCMS(doc),
			AnalyticsTools:     matchMarkers(scriptText, analyticsMarkers),
			MarketingTools:     matchMarkers(scriptText, marketingMarkers),
			SecurityIndicators: securityFeatures(doc, text),
		},
		CompetitiveStrengthScore: competitiveScore(social, contact, business),
	}
}

// DetectCMS fingerprints common CMS platforms from generator tags, class
// names and script sources.
func DetectCMS(doc *goquery.Document) types.CMSDetection {
	generator := func(re *regexp.Regexp) bool {
		return attrMatches(doc, `meta[name="generator"]`, "content", re).Length() > 0
	}
	scriptSrc := func(re *regexp.Regexp) bool {
		return attrMatches(doc, "script", "src", re).Length() > 0
	}

	indicators := map[string]bool{
		"wordpress":   classMatches(doc.Selection, wpClassPattern).Length() > 0 || generator(cmsPatterns["wordpress"]),
		"drupal":      generator(cmsPatterns["drupal"]),
		"joomla":      generator(cmsPatterns["joomla"]),
		"shopify":     scriptSrc(cmsPatterns["shopify"]),
		"wix":         generator(cmsPatterns["wix"]),
		"squarespace": scriptSrc(cmsPatterns["squarespace"]),
	}

	out := types.CMSDetection{DetectedCMS: "custom", Confidence: "low", CMSIndicators: indicators}
	for _, cms := range cmsOrder {
		if indicators[cms] {
			out.DetectedCMS = cms
			out.Confidence = "high"
			break
		}
	}
	indicators["custom"] = out.DetectedCMS == "custom"
	return out
}

func matchMarkers(text string, markers []marker) []string {
	found := []string{}
	for _, m := range markers {
		if containsAny(text, m.needle) {
			found = append(found, m.name)
		}
	}
	return found
}

func securityFeatures(doc *goquery.Document, text string) []string {
	found := []string{}
	if attrMatches(doc, "input", "name", csrfNamePattern).Length() > 0 {
		found = append(found, "CSRF Protection")
	}
	if classMatches(doc.Selection, captchaPattern).Length() > 0 {
		found = append(found, "Captcha")
	}
	if strings.Contains(text, "https://") {
		found = append(found, "SSL Awareness")
	}
	return found
}

func competitiveScore(s types.SocialProof, c types.ContactAccessibility, b types.BusinessMaturity) int {
	score := min(20, s.Testimonials*5) +
		min(15, s.ClientLogos*3) +
		min(10, s.Awards*5) +
		min(10, s.CaseStudies*2) +
		min(15, c.PhoneNumbers*8) +
		min(10, c.EmailAddresses*5) +
		min(10, c.ContactForms*10) +
		min(5, b.ServicePages)
	if b.AboutPage {
		score += 5
	}
	if b.BlogSection {
		score += 5
	}
	return min(100, score)
}
