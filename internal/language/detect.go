// Package language classifies a page into one of a fixed set of language
// codes using markup, URL and text signals.
package language

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Code is a detected language code.
type Code string

const (
	Greek   Code = "el"
	English Code = "en"
	French  Code = "fr"
	German  Code = "de"
	Spanish Code = "es"
	Italian Code = "it"
	Unknown Code = "unknown"
)

// Supported lists the detectable codes in tie-break order.
var Supported = []Code{Greek, English, French, German, Spanish, Italian}

var (
	greekChars   = regexp.MustCompile(`[Α-Ωα-ωάέήίόύώ]`)
	frenchChars  = regexp.MustCompile(`(?i)[àâäéèêëïîôöùûüÿç]`)
	germanChars  = regexp.MustCompile(`(?i)[äöüß]`)
	spanishChars = regexp.MustCompile(`(?i)[ñáéíóúü]`)
	italianChars = regexp.MustCompile(`(?i)[àèéìíîòóù]`)
	latinChars   = regexp.MustCompile(`[A-Za-z]`)
)

var stopWords = map[Code][]string{
	Greek:   {"και", "είναι", "για", "από", "στο", "στη", "με", "που", "αυτό", "μας", "σας"},
	English: {"the", "and", "for", "are", "with", "this", "that", "from", "they", "have"},
	French:  {"le", "de", "et", "dans", "les", "des", "est", "pour", "que", "une"},
	German:  {"der", "die", "und", "in", "den", "von", "zu", "das", "mit", "sich"},
	Spanish: {"el", "de", "que", "y", "en", "un", "es", "se", "no", "te"},
	Italian: {"il", "di", "che", "e", "la", "per", "in", "un", "è", "non"},
}

// Detect returns exactly one code for the page. The first confident signal
// wins: html lang, URL path, accented script frequency, stop-words, then a
// Latin/Greek letter fallback.
func Detect(doc *goquery.Document, pageURL string) Code {
	if code, ok := fromHTMLLang(doc); ok {
		return code
	}
	if code, ok := FromURL(pageURL); ok {
		return code
	}
	return FromText(visibleText(doc))
}

// visibleText is the document text without script and style bodies.
func visibleText(doc *goquery.Document) string {
	sel := doc.Selection.Clone()
	sel.Find("script, style").Remove()
	return sel.Text()
}

// fromHTMLLang matches the lower-cased lang attribute by code prefix, so
// "el-GR" and "elx" are Greek while "ger" is not German.
func fromHTMLLang(doc *goquery.Document) (Code, bool) {
	lang, ok := doc.Find("html").First().Attr("lang")
	if !ok {
		return "", false
	}
	lang = strings.ToLower(strings.TrimSpace(lang))
	for _, code := range Supported {
		if strings.HasPrefix(lang, string(code)) {
			return code, true
		}
	}
	return "", false
}

// FromURL looks for a language path segment such as /el/ or a trailing /fr.
// Greek also matches /gr.
func FromURL(pageURL string) (Code, bool) {
	u := strings.ToLower(pageURL)
	if strings.Contains(u, "/el/") || strings.Contains(u, "/gr/") ||
		strings.HasSuffix(u, "/el") || strings.HasSuffix(u, "/gr") {
		return Greek, true
	}
	for _, code := range Supported[1:] {
		seg := "/" + string(code)
		if strings.Contains(u, seg+"/") || strings.HasSuffix(u, seg) {
			return code, true
		}
	}
	return "", false
}

// FromText classifies raw text by script frequency, then stop-words, then
// the letter fallback.
func FromText(text string) Code {
	if code, ok := fromScript(text); ok {
		return code
	}
	if code, ok := fromStopWords(text); ok {
		return code
	}

	latin := len(latinChars.FindAllStringIndex(text, -1))
	greek := len(greekChars.FindAllStringIndex(text, -1))
	switch {
	case latin > greek:
		return English
	case greek > 0:
		return Greek
	default:
		return Unknown
	}
}

func fromScript(text string) (Code, bool) {
	el := len(greekChars.FindAllStringIndex(text, -1))
	fr := len(frenchChars.FindAllStringIndex(text, -1))
	de := len(germanChars.FindAllStringIndex(text, -1))
	es := len(spanishChars.FindAllStringIndex(text, -1))
	it := len(italianChars.FindAllStringIndex(text, -1))

	if el+fr+de+es+it == 0 {
		return "", false
	}
	switch {
	case el > max(fr, de, es, it):
		return Greek, true
	case fr > max(de, es, it):
		return French, true
	case de > max(es, it):
		return German, true
	case es > it:
		return Spanish, true
	case it > 0:
		return Italian, true
	}
	return "", false
}

func fromStopWords(text string) (Code, bool) {
	lower := strings.ToLower(text)
	best, bestScore := Code(""), 0
	for _, code := range Supported {
		score := 0
		for _, w := range stopWords[code] {
			if strings.Contains(lower, w) {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = code, score
		}
	}
	if bestScore > 2 {
		return best, true
	}
	return "", false
}
