package parser

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/cespare/xxhash/v2"

	"github.com/IshaanNene/SEOCrawl/internal/types"
)

var (
	mainClassPattern = regexp.MustCompile(`(?i)content|main|post`)
	sentenceEnd      = regexp.MustCompile(`[.!?]+`)
	greekLetter      = regexp.MustCompile(`[Α-Ωα-ωάέήίόύώ]`)
	latinLetter      = regexp.MustCompile(`[A-Za-z]`)
)

// keywordStopWords are excluded from keyword frequency.
var keywordStopWords = toSet(
	"που", "για", "από", "στο", "στη", "στις", "στον", "με", "τα", "το", "τη", "την", "του", "της",
	"τις", "τους", "και", "είναι",
	"the", "and", "for", "are", "with", "this", "that", "from", "they", "have", "more", "your",
	"will", "been", "were", "said", "each", "which", "their",
)

const (
	keywordTrimChars = `.,!?";:()[]`
	topKeywordCount  = 10
	wordsPerMinute   = 200
)

func toSet(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

// StripChrome returns a copy of the document without script, style and page
// chrome (nav, header, footer, aside). The input document is unchanged.
func StripChrome(doc *goquery.Document) *goquery.Selection {
	clone := doc.Selection.Clone()
	clone.Find("script, style, nav, header, footer, aside").Remove()
	return clone
}

// Content computes text statistics over the document with chrome removed.
func Content(doc *goquery.Document) types.ContentAnalysis {
	clone := StripChrome(doc)

	mainSel, hasMain := mainContent(clone)

	fullText := clone.Text()
	clean := strings.Join(strings.Fields(fullText), " ")
	words := strings.Fields(clean)

	mainWords := words
	if hasMain {
		mainWords = strings.Fields(mainSel.Text())
	}

	markup, _ := goquery.OuterHtml(clone)
	markupLen := runeLen(markup)
	cleanLen := runeLen(clean)

	var textRatio, codeRatio float64
	if markupLen > 0 {
		textRatio = types.Round(float64(cleanLen)/float64(markupLen), 4)
		codeRatio = types.Round(float64(markupLen-cleanLen)/float64(markupLen), 4)
	}

	paragraphs := clone.Find("p")
	var paragraphWords int
	paragraphs.Each(func(_ int, p *goquery.Selection) {
		paragraphWords += len(strings.Fields(p.Text()))
	})
	var avgParagraph float64
	if paragraphs.Length() > 0 {
		avgParagraph = float64(paragraphWords) / float64(paragraphs.Length())
	}

	sentences := len(sentenceEnd.FindAllStringIndex(clean, -1))
	var avgSentence float64
	if sentences > 0 {
		avgSentence = float64(len(words)) / float64(sentences)
	}

	// Pages without visible text get no hash so they never form a
	// duplicate group.
	var hash string
	if clean != "" {
		hash = fmt.Sprintf("%016x", xxhash.Sum64String(clean))
	}

	mainWordCount := len(mainWords)
	return types.ContentAnalysis{
		TotalWordCount:           len(words),
		MainContentWordCount:     mainWordCount,
		CharacterCount:           cleanLen,
		CharacterCountWithSpaces: runeLen(fullText),
		TextToHTMLRatio:          textRatio,
		CodeToTextRatio:          codeRatio,
		ReadingTimeMinutes:       types.Round(float64(len(words))/wordsPerMinute, 1),
		LanguageDetection:        scriptShare(clean),
		ContentStructure: types.ContentStructure{
			ParagraphCount:         paragraphs.Length(),
			AverageParagraphLength: types.Round(avgParagraph, 1),
			SentenceCount:          sentences,
			AverageSentenceLength:  types.Round(avgSentence, 1),
		},
		KeywordAnalysis: keywordAnalysis(words),
		ContentQuality: types.ContentQuality{
			HasMainContent:    hasMain,
			ContentDepthScore: min(100, float64(mainWordCount)/10),
			ReadabilityScore:  max(0, min(100, 100-(avgSentence-15)*2)),
		},
		ContentHash: hash,
	}
}

// mainContent finds <main>, then <article>, then the first div with a
// content-like class token.
func mainContent(root *goquery.Selection) (*goquery.Selection, bool) {
	if sel := root.Find("main").First(); sel.Length() > 0 {
		return sel, true
	}
	if sel := root.Find("article").First(); sel.Length() > 0 {
		return sel, true
	}
	div := root.Find("div[class]").FilterFunction(func(_ int, s *goquery.Selection) bool {
		for _, c := range strings.Fields(attr(s, "class")) {
			if mainClassPattern.MatchString(c) {
				return true
			}
		}
		return false
	}).First()
	if div.Length() > 0 {
		return div, true
	}
	return root, false
}

func scriptShare(clean string) types.ScriptShare {
	greek := len(greekLetter.FindAllStringIndex(clean, -1))
	latin := len(latinLetter.FindAllStringIndex(clean, -1))
	share := types.ScriptShare{
		GreekPercentage:   types.Percent(greek, greek+latin, 0),
		EnglishPercentage: types.Percent(latin, greek+latin, 0),
		PrimaryLanguage:   "unknown",
	}
	switch {
	case greek > latin:
		share.PrimaryLanguage = "greek"
	case latin > 0:
		share.PrimaryLanguage = "english"
	}
	return share
}

func keywordAnalysis(words []string) types.KeywordAnalysis {
	freq := make(map[string]int)
	var order []string
	for _, w := range words {
		w = strings.Trim(strings.ToLower(w), keywordTrimChars)
		if runeLen(w) <= 3 || keywordStopWords[w] {
			continue
		}
		if freq[w] == 0 {
			order = append(order, w)
		}
		freq[w]++
	}

	sort.SliceStable(order, func(i, j int) bool { return freq[order[i]] > freq[order[j]] })

	top := []types.KeywordCount{}
	for _, w := range order[:min(topKeywordCount, len(order))] {
		top = append(top, types.KeywordCount{
			Word:    w,
			Count:   freq[w],
			Density: types.Round(float64(freq[w])/float64(len(words))*100, 2),
		})
	}

	repeated := 0
	for _, c := range freq {
		if c > 3 {
			repeated++
		}
	}
	return types.KeywordAnalysis{
		TopKeywords:      top,
		KeywordDiversity: len(freq),
		RepeatedWords:    repeated,
	}
}
