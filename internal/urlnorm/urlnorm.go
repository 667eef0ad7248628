// Package urlnorm canonicalizes crawl URLs and classifies them against the
// crawl domain. Every function here is pure.
package urlnorm

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/IshaanNene/SEOCrawl/internal/types"
)

// Class is the relation of a URL to the crawl domain.
type Class int

const (
	Internal Class = iota
	External
)

func (c Class) String() string {
	if c == Internal {
		return "internal"
	}
	return "external"
}

// skippedPrefixes are href forms that never name a fetchable document.
var skippedPrefixes = []string{"#", "javascript:", "mailto:", "tel:"}

// deniedSubstrings is the conservative non-document denylist. A match anywhere
// in the lower-cased URL rejects it.
var deniedSubstrings = []string{".pdf", ".jpg", ".png", ".gif", ".css", ".js", ".xml", ".txt"}

// deniedExtensions are additional binary types matched on the path suffix only.
var deniedExtensions = map[string]bool{
	".jpeg": true, ".webp": true, ".svg": true, ".ico": true,
	".zip": true, ".mp4": true, ".mp3": true,
}

// Normalize canonicalizes a URL:
//   - lowercases scheme and host
//   - removes fragment
//   - removes default ports (80 for http, 443 for https)
//   - gives an empty path on an absolute URL the root path "/"
func Normalize(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("%w: %v", types.ErrInvalidURL, err)
	}
	return canonical(u), nil
}

// Resolve resolves href against base and normalizes the result.
func Resolve(base, href string) (string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("%w: base %q: %v", types.ErrInvalidURL, base, err)
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", fmt.Errorf("%w: href %q: %v", types.ErrInvalidURL, href, err)
	}
	return canonical(b.ResolveReference(ref)), nil
}

func canonical(u *url.URL) string {
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.RawFragment = ""

	port := u.Port()
	if (u.Scheme == "http" && port == "80") || (u.Scheme == "https" && port == "443") {
		u.Host = u.Hostname()
	}
	if u.Host != "" && u.Path == "" && u.Opaque == "" {
		u.Path = "/"
	}
	return u.String()
}

// Classify reports whether rawURL is internal to domain. A URL without a host
// is relative and therefore internal.
func Classify(rawURL, domain string) Class {
	u, err := url.Parse(rawURL)
	if err != nil {
		return External
	}
	if u.Host == "" {
		return Internal
	}
	if strings.EqualFold(u.Host, domain) {
		return Internal
	}
	return External
}

// IsInternal is shorthand for Classify(rawURL, domain) == Internal.
func IsInternal(rawURL, domain string) bool {
	return Classify(rawURL, domain) == Internal
}

// IsCrawlable rejects URLs that are not http(s) or whose path names a
// non-document resource. It does not probe content types.
func IsCrawlable(rawURL string) bool {
	lower := strings.ToLower(rawURL)
	for _, s := range deniedSubstrings {
		if strings.Contains(lower, s) {
			return false
		}
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if u.Scheme != "" && u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return !deniedExtensions[strings.ToLower(path.Ext(u.Path))]
}

// IsSkippableHref reports whether an anchor href should be ignored before
// resolution: empty, in-page fragments and non-HTTP pseudo schemes.
func IsSkippableHref(href string) bool {
	href = strings.TrimSpace(href)
	if href == "" {
		return true
	}
	lower := strings.ToLower(href)
	for _, p := range skippedPrefixes {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}
	return false
}

// Host returns the lower-cased host (with port) of rawURL, or "" if it has none.
func Host(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Host)
}
