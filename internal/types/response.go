package types

import (
	"bytes"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// RawResponse is the result of fetching one page.
type RawResponse struct {
	// URL is the normalized URL that was requested.
	URL string

	// StatusCode is the HTTP status code.
	StatusCode int

	// Headers are the response HTTP headers.
	Headers http.Header

	// Body is the decoded (decompressed, UTF-8) response body.
	Body []byte

	// ContentType is the MIME type of the response.
	ContentType string

	// ContentEncoding is the encoding the server declared before decompression.
	ContentEncoding string

	// Size is the decompressed body length in bytes, before charset transcoding.
	Size int

	// FinalURL is the URL after any redirects.
	FinalURL string

	// Elapsed is how long the fetch took.
	Elapsed time.Duration

	// FetchedAt is when this response was received.
	FetchedAt time.Time
}

// NewRawResponse creates a RawResponse from an http.Response and its decoded body.
func NewRawResponse(url string, httpResp *http.Response, body []byte, size int, elapsed time.Duration) *RawResponse {
	finalURL := url
	if httpResp.Request != nil && httpResp.Request.URL != nil {
		finalURL = httpResp.Request.URL.String()
	}
	return &RawResponse{
		URL:             url,
		StatusCode:      httpResp.StatusCode,
		Headers:         httpResp.Header,
		Body:            body,
		ContentType:     httpResp.Header.Get("Content-Type"),
		ContentEncoding: httpResp.Header.Get("Content-Encoding"),
		Size:            size,
		FinalURL:        finalURL,
		Elapsed:         elapsed,
		FetchedAt:       time.Now(),
	}
}

// Document parses the body into a goquery document. Parsing is best-effort:
// the HTML5 algorithm accepts any input, so an error here means a read failure.
func (r *RawResponse) Document() (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(bytes.NewReader(r.Body))
}

// IsSuccess returns true if the response status is 2xx.
func (r *RawResponse) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Header returns the first value of a response header.
func (r *RawResponse) Header(name string) string {
	if r.Headers == nil {
		return ""
	}
	return r.Headers.Get(name)
}
