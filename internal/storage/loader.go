package storage

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/IshaanNene/SEOCrawl/internal/types"
)

// LoadedPage is a PageRecord read back from disk.
type LoadedPage struct {
	Record   *types.PageRecord
	Language string
	File     string
	Path     string
}

// Loader reads persisted page records. It understands the per-language
// directory layout and the older flat layout.
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a Loader.
func NewLoader(logger *slog.Logger) *Loader {
	return &Loader{logger: logger.With("component", "loader")}
}

// Load reads the records under path. path may be a crawl directory or a
// single page file. A non-empty lang keeps only that language. Unreadable
// files are logged and skipped.
func (l *Loader) Load(path, lang string) ([]LoadedPage, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &types.StorageError{Backend: "file", Op: "stat", Err: err}
	}
	if !info.IsDir() {
		page, err := l.readPage(path, "")
		if err != nil {
			return nil, &types.StorageError{Backend: "file", Op: "read", Err: err}
		}
		return []LoadedPage{page}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, &types.StorageError{Backend: "file", Op: "readdir", Err: err}
	}
	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, e.Name())
		}
	}

	var pages []LoadedPage
	if len(dirs) > 0 {
		sort.Strings(dirs)
		for _, d := range dirs {
			if lang != "" && d != lang {
				continue
			}
			pages = append(pages, l.readDir(filepath.Join(path, d), d)...)
		}
		return pages, nil
	}

	for _, p := range l.readDir(path, "") {
		if lang != "" && p.Language != lang {
			continue
		}
		pages = append(pages, p)
	}
	return pages, nil
}

// readDir reads every page file in dir. Artifact files starting with "_"
// are not pages.
func (l *Loader) readDir(dir, lang string) []LoadedPage {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		l.logger.Warn("glob failed", "dir", dir, "error", err)
		return nil
	}
	sort.Strings(files)

	var pages []LoadedPage
	for _, f := range files {
		if strings.HasPrefix(filepath.Base(f), "_") {
			continue
		}
		page, err := l.readPage(f, lang)
		if err != nil {
			l.logger.Warn("skipping unreadable page file", "file", f, "error", err)
			continue
		}
		pages = append(pages, page)
	}
	return pages
}

func (l *Loader) readPage(path, lang string) (LoadedPage, error) {
	var rec types.PageRecord
	if err := ReadJSON(path, &rec); err != nil {
		return LoadedPage{}, err
	}
	if rec.URL == "" {
		return LoadedPage{}, errors.New("record has no url")
	}
	if lang == "" {
		lang = rec.DetectedLanguage
	}
	if lang == "" {
		lang = "unknown"
	}
	return LoadedPage{
		Record:   &rec,
		Language: lang,
		File:     filepath.Base(path),
		Path:     path,
	}, nil
}

// FindSummary looks for _summary.json in path (or its directory when path
// is a file), then in the parent and grandparent directories.
func FindSummary(path string) (string, error) {
	dir := path
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		dir = filepath.Dir(path)
	}
	for i := 0; i < 3; i++ {
		candidate := filepath.Join(dir, SummaryFile)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		dir = filepath.Dir(dir)
	}
	return "", fmt.Errorf("%s not found near %s", SummaryFile, path)
}

// LoadSummary reads the summary nearest to path.
func LoadSummary(path string) (*types.CrawlSummary, string, error) {
	file, err := FindSummary(path)
	if err != nil {
		return nil, "", err
	}
	var summary types.CrawlSummary
	if err := ReadJSON(file, &summary); err != nil {
		return nil, file, &types.StorageError{Backend: "file", Op: "read", Err: err}
	}
	return &summary, file, nil
}
