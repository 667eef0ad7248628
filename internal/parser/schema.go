package parser

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/IshaanNene/SEOCrawl/internal/types"
)

const rawContentPreview = 200

var (
	phoneLikeDigits = regexp.MustCompile(`\d{10,}`)
	productPattern  = regexp.MustCompile(`(?i)price|€|\$|cost`)
	eventPattern    = regexp.MustCompile(`(?i)event|conference|meeting`)
)

// JSONLDBlock is one application/ld+json script body and its decoded value.
type JSONLDBlock struct {
	Raw  string
	Data any
	Err  error
}

// JSONLDBlocks decodes every JSON-LD script in document order.
func JSONLDBlocks(doc *goquery.Document) []JSONLDBlock {
	var blocks []JSONLDBlock
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, sel *goquery.Selection) {
		raw := sel.Text()
		data, err := decodeJSON(raw)
		blocks = append(blocks, JSONLDBlock{Raw: raw, Data: data, Err: err})
	})
	return blocks
}

// decodeJSON decodes exactly one JSON value, keeping numbers exact.
func decodeJSON(raw string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("unexpected end of JSON input")
		}
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("extra data after JSON value")
	}
	return v, nil
}

// Schema collects JSON-LD, Microdata and RDFa entries, validates common
// JSON-LD types and recommends schemas the content suggests.
func Schema(doc *goquery.Document) types.SchemaMarkup {
	out := types.SchemaMarkup{Schemas: []types.SchemaEntry{}}
	typeSet := make(map[string]bool)

	for _, b := range JSONLDBlocks(doc) {
		if b.Err != nil {
			out.Schemas = append(out.Schemas, types.SchemaEntry{
				Format:     types.FormatJSONLD,
				Error:      "Invalid JSON: " + b.Err.Error(),
				RawContent: preview(b.Raw),
			})
			continue
		}
		out.JSONLDCount++
		out.Schemas = append(out.Schemas, types.SchemaEntry{
			Format: types.FormatJSONLD,
			Data:   b.Data,
			Type:   entryType(b.Data),
		})
		for _, t := range declaredTypes(b.Data) {
			typeSet[t] = true
		}
	}

	root := doc.Selection.Nodes[0]
	microdata := Microdata(root)
	for _, e := range microdata {
		typeSet[lastSegment(e.ItemType)] = true
	}
	out.Schemas = append(out.Schemas, microdata...)
	out.MicrodataCount = len(microdata)

	rdfa := RDFa(root)
	out.Schemas = append(out.Schemas, rdfa...)
	out.RDFaCount = len(rdfa)

	out.SchemaCount = len(out.Schemas)
	for _, e := range out.Schemas {
		if e.Error == "" {
			out.HasSchemaMarkup = true
			break
		}
	}

	out.SchemaTypes = make([]string, 0, len(typeSet))
	for t := range typeSet {
		out.SchemaTypes = append(out.SchemaTypes, t)
	}
	sort.Strings(out.SchemaTypes)

	out.Validation = validateSchemas(out.Schemas)
	out.RecommendedSchemas = recommendSchemas(doc)
	return out
}

func preview(raw string) string {
	r := []rune(raw)
	if len(r) > rawContentPreview {
		return string(r[:rawContentPreview]) + "..."
	}
	return raw
}

// entryType is the @type of an object ("Unknown" when absent) or "Complex"
// for arrays and scalars.
func entryType(data any) string {
	obj, ok := data.(map[string]any)
	if !ok {
		return "Complex"
	}
	t, ok := obj["@type"]
	if !ok {
		return "Unknown"
	}
	return strings.Join(typeNames(t), ", ")
}

// declaredTypes reads @type, or the @type of each @graph item.
func declaredTypes(data any) []string {
	obj, ok := data.(map[string]any)
	if !ok {
		return nil
	}
	if t, ok := obj["@type"]; ok {
		return typeNames(t)
	}
	graph, _ := obj["@graph"].([]any)
	var out []string
	for _, item := range graph {
		if m, ok := item.(map[string]any); ok {
			if t, ok := m["@type"]; ok {
				out = append(out, typeNames(t)...)
			}
		}
	}
	return out
}

func typeNames(v any) []string {
	switch t := v.(type) {
	case string:
		return []string{t}
	case []any:
		var out []string
		for _, x := range t {
			if s, ok := x.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return []string{fmt.Sprint(t)}
	}
}

func lastSegment(itemType string) string {
	if i := strings.LastIndex(itemType, "/"); i >= 0 {
		return itemType[i+1:]
	}
	return itemType
}

// truthy follows JSON-LD authoring intent: missing, null, "", 0, [] and {}
// all count as absent.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case bool:
		return t
	case json.Number:
		f, err := t.Float64()
		return err != nil || f != 0
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	}
	return true
}

func validateSchemas(entries []types.SchemaEntry) types.SchemaValidation {
	v := types.SchemaValidation{Errors: []string{}, Warnings: []string{}, Suggestions: []string{}}
	for _, e := range entries {
		if e.Format != types.FormatJSONLD || e.Error != "" {
			continue
		}
		data, ok := e.Data.(map[string]any)
		if !ok {
			continue
		}
		schemaType, _ := data["@type"].(string)
		switch schemaType {
		case "Organization":
			if !truthy(data["name"]) {
				v.Errors = append(v.Errors, `Organization schema missing required "name" property`)
			}
			if !truthy(data["url"]) {
				v.Warnings = append(v.Warnings, `Organization schema should include "url" property`)
			}
		case "LocalBusiness":
			for _, req := range []string{"name", "address", "telephone"} {
				if !truthy(data[req]) {
					v.Errors = append(v.Errors, fmt.Sprintf(`LocalBusiness schema missing required "%s" property`, req))
				}
			}
		case "WebPage":
			if !truthy(data["name"]) && !truthy(data["headline"]) {
				v.Warnings = append(v.Warnings, `WebPage schema should include "name" or "headline"`)
			}
		}
	}
	return v
}

func recommendSchemas(doc *goquery.Document) []string {
	recs := []string{}
	if doc.Find("address").Length() > 0 || HasTextNode(doc, phoneLikeDigits) {
		recs = append(recs, "LocalBusiness")
	}
	if doc.Find("article, time").Length() > 0 {
		recs = append(recs, "Article")
	}
	if HasTextNode(doc, productPattern) {
		recs = append(recs, "Product")
	}
	if HasTextNode(doc, eventPattern) {
		recs = append(recs, "Event")
	}
	return recs
}
