package storage

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/IshaanNene/SEOCrawl/internal/types"
)

// Artifact names written next to the page records.
const (
	SummaryFile  = "_summary.json"
	ErrorsFile   = "_errors.json"
	SitemapFile  = "_sitemap.json"
	HomepageFile = "homepage.json"
)

const (
	maxFilenameLen   = 100
	maxFilenameBytes = 255
)

var (
	unsafeFilenameChars = regexp.MustCompile(`[^\p{L}\p{N}_\-.]`)
	repeatedUnderscores = regexp.MustCompile(`_+`)
)

// FilenameFor maps a page URL to its record file name. The result depends on
// the decoded URL path only, always ends in .json and is at most 100
// characters long. Letters of any script are kept.
func FilenameFor(rawURL string) string {
	path := ""
	if u, err := url.Parse(rawURL); err == nil {
		path = u.Path
	}
	if path == "" || path == "/" {
		return HomepageFile
	}

	name := strings.ReplaceAll(strings.Trim(path, "/"), "/", "_")
	name = unsafeFilenameChars.ReplaceAllString(name, "_")
	name = repeatedUnderscores.ReplaceAllString(name, "_")
	if !strings.HasSuffix(name, ".json") {
		name += ".json"
	}
	if utf8.RuneCountInString(name) > maxFilenameLen {
		runes := []rune(name)
		name = string(runes[:maxFilenameLen-len(".json")]) + ".json"
	}
	// Most filesystems cap a name at 255 bytes.
	if len(name) > maxFilenameBytes {
		cut := maxFilenameBytes - len(".json")
		for cut > 0 && !utf8.RuneStart(name[cut]) {
			cut--
		}
		name = name[:cut] + ".json"
	}
	return name
}

// WriteJSON writes v as indented UTF-8 JSON through a temp file and rename.
// HTML characters and non-ASCII text are written as-is.
func WriteJSON(path string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rename %s: %w", filepath.Base(path), err)
	}
	return nil
}

// ReadJSON decodes the JSON file at path into v.
func ReadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return nil
}

// WriteSummary writes _summary.json into root.
func WriteSummary(root string, summary *types.CrawlSummary) error {
	return WriteJSON(filepath.Join(root, SummaryFile), summary)
}

// WriteErrors writes _errors.json into root.
func WriteErrors(root string, errs []types.CrawlError) error {
	if errs == nil {
		errs = []types.CrawlError{}
	}
	return WriteJSON(filepath.Join(root, ErrorsFile), errs)
}

// ReadErrors reads _errors.json from root. A missing file yields no errors.
func ReadErrors(root string) ([]types.CrawlError, error) {
	var errs []types.CrawlError
	err := ReadJSON(filepath.Join(root, ErrorsFile), &errs)
	if os.IsNotExist(err) {
		return nil, nil
	}
	return errs, err
}

// --- File Sink ---

// FileSink writes each PageRecord to <root>/<lang>/<FilenameFor(url)>.
type FileSink struct {
	root   string
	count  int
	mu     sync.Mutex
	logger *slog.Logger
}

// NewFileSink creates a file sink rooted at a crawl directory.
func NewFileSink(root string, logger *slog.Logger) (*FileSink, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, &types.StorageError{Backend: "file", Op: "mkdir", Err: err}
	}
	return &FileSink{
		root:   root,
		logger: logger.With("component", "file_sink"),
	}, nil
}

func (s *FileSink) Name() string { return "file" }

// Root returns the crawl directory.
func (s *FileSink) Root() string { return s.root }

// PathFor returns where rec is written.
func (s *FileSink) PathFor(rec *types.PageRecord) string {
	lang := rec.DetectedLanguage
	if lang == "" {
		lang = "unknown"
	}
	return filepath.Join(s.root, lang, FilenameFor(rec.URL))
}

func (s *FileSink) Store(_ context.Context, rec *types.PageRecord) error {
	path := s.PathFor(rec)
	if err := WriteJSON(path, rec); err != nil {
		return &types.StorageError{Backend: "file", Op: "write", Err: err}
	}

	s.mu.Lock()
	s.count++
	s.mu.Unlock()

	rel, _ := filepath.Rel(s.root, path)
	s.logger.Info("page saved", "file", rel)
	return nil
}

func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logger.Debug("file sink closed", "pages", s.count)
	return nil
}

// --- JSONL Sink ---

// JSONLSink appends one record per line to <root>/_pages.jsonl.
type JSONLSink struct {
	path   string
	file   *os.File
	enc    *json.Encoder
	mu     sync.Mutex
	count  int
	logger *slog.Logger
}

// NewJSONLSink opens _pages.jsonl for appending so resumed crawls extend it.
func NewJSONLSink(root string, logger *slog.Logger) (*JSONLSink, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(root, "_pages.jsonl")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open output file: %w", err)
	}
	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	return &JSONLSink{
		path:   path,
		file:   f,
		enc:    enc,
		logger: logger.With("component", "jsonl_sink"),
	}, nil
}

func (s *JSONLSink) Name() string { return "jsonl" }

func (s *JSONLSink) Store(_ context.Context, rec *types.PageRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enc.Encode(rec); err != nil {
		return &types.StorageError{Backend: "jsonl", Op: "encode", Err: err}
	}
	s.count++
	return nil
}

func (s *JSONLSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logger.Info("JSONL written", "path", s.path, "pages", s.count)
	return s.file.Close()
}

// --- CSV Sink ---

var csvHeader = []string{"url", "crawl_id", "language", "status_code", "title", "word_count", "load_time", "content_hash"}

// CSVSink writes the page index to <root>/_pages.csv.
type CSVSink struct {
	path   string
	file   *os.File
	writer *csv.Writer
	mu     sync.Mutex
	count  int
	logger *slog.Logger
}

// NewCSVSink creates the CSV index, writing the header when the file is new.
func NewCSVSink(root string, logger *slog.Logger) (*CSVSink, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(root, "_pages.csv")
	_, statErr := os.Stat(path)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open output file: %w", err)
	}
	w := csv.NewWriter(f)
	if os.IsNotExist(statErr) {
		if err := w.Write(csvHeader); err != nil {
			f.Close()
			return nil, fmt.Errorf("write CSV header: %w", err)
		}
		w.Flush()
	}
	return &CSVSink{
		path:   path,
		file:   f,
		writer: w,
		logger: logger.With("component", "csv_sink"),
	}, nil
}

func (s *CSVSink) Name() string { return "csv" }

func (s *CSVSink) Store(_ context.Context, rec *types.PageRecord) error {
	row := NewIndexRow(rec)

	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.writer.Write([]string{
		row.URL,
		row.CrawlID,
		row.Language,
		strconv.Itoa(row.StatusCode),
		row.Title,
		strconv.Itoa(row.WordCount),
		strconv.FormatFloat(row.LoadTime, 'f', 3, 64),
		row.ContentHash,
	})
	if err != nil {
		return &types.StorageError{Backend: "csv", Op: "write", Err: err}
	}
	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		return &types.StorageError{Backend: "csv", Op: "flush", Err: err}
	}
	s.count++
	return nil
}

func (s *CSVSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logger.Info("CSV written", "path", s.path, "pages", s.count)
	s.writer.Flush()
	return s.file.Close()
}
