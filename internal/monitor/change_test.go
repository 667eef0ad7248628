package monitor

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/IshaanNene/SEOCrawl/internal/storage"
	"github.com/IshaanNene/SEOCrawl/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

func record(url, title string, words int) *types.PageRecord {
	rec := &types.PageRecord{URL: url, StatusCode: 200, DetectedLanguage: "en"}
	rec.MetaData.Title = title
	rec.ContentAnalysis.TotalWordCount = words
	return rec
}

func TestCompare(t *testing.T) {
	oldRecs := []*types.PageRecord{
		record("https://example.com", "Home", 400),
		record("https://example.com/about", "About", 250),
		record("https://example.com/gone", "Gone", 100),
	}
	newRecs := []*types.PageRecord{
		record("https://example.com", "Home", 400),
		record("https://example.com/about", "About Us", 320),
		record("https://example.com/new", "New", 50),
	}

	r := NewChangeDetector(testLogger).Compare(oldRecs, newRecs)

	if r.Pages != 4 || r.Added != 1 || r.Removed != 1 || r.Modified != 1 {
		t.Fatalf("report counts = %+v", r)
	}

	want := []Change{
		{URL: "https://example.com/about", Type: ChangeModified, Field: "title", OldValue: "About", NewValue: "About Us"},
		{URL: "https://example.com/about", Type: ChangeModified, Field: "word_count", OldValue: "250", NewValue: "320"},
		{URL: "https://example.com/gone", Type: ChangeRemoved},
		{URL: "https://example.com/new", Type: ChangeAdded},
	}
	if len(r.Changes) != len(want) {
		t.Fatalf("changes = %+v", r.Changes)
	}
	for i, c := range r.Changes {
		if c != want[i] {
			t.Errorf("change %d = %+v, want %+v", i, c, want[i])
		}
	}
}

func TestCompareIdentical(t *testing.T) {
	recs := []*types.PageRecord{record("https://example.com", "Home", 10)}
	r := NewChangeDetector(testLogger).Compare(recs, recs)
	if r.Modified != 0 || len(r.Changes) != 0 {
		t.Errorf("identical crawls reported changes: %+v", r.Changes)
	}
	if r.Changes == nil {
		t.Error("Changes should be an empty slice, not nil")
	}
}

func TestCompareCanonical(t *testing.T) {
	canon := "https://example.com/"
	before := record("https://example.com", "Home", 10)
	after := record("https://example.com", "Home", 10)
	after.TechnicalSEO.CanonicalURL = &canon

	r := NewChangeDetector(testLogger).Compare([]*types.PageRecord{before}, []*types.PageRecord{after})
	if len(r.Changes) != 1 || r.Changes[0].Field != "canonical_url" || r.Changes[0].NewValue != canon {
		t.Errorf("changes = %+v", r.Changes)
	}
}

func TestCompareDirs(t *testing.T) {
	oldDir := filepath.Join(t.TempDir(), "old")
	newDir := filepath.Join(t.TempDir(), "new")

	write := func(root string, recs ...*types.PageRecord) {
		t.Helper()
		sink, err := storage.NewFileSink(root, testLogger)
		if err != nil {
			t.Fatalf("NewFileSink: %v", err)
		}
		for _, rec := range recs {
			if err := sink.Store(context.Background(), rec); err != nil {
				t.Fatalf("Store: %v", err)
			}
		}
	}
	write(oldDir, record("https://example.com", "Home", 10))
	write(newDir, record("https://example.com", "Welcome", 10), record("https://example.com/a", "A", 5))

	r, err := NewChangeDetector(testLogger).CompareDirs(oldDir, newDir)
	if err != nil {
		t.Fatalf("CompareDirs: %v", err)
	}
	if r.OldCrawl != oldDir || r.NewCrawl != newDir {
		t.Errorf("crawl dirs = %q, %q", r.OldCrawl, r.NewCrawl)
	}
	if r.Added != 1 || r.Modified != 1 {
		t.Errorf("report = %+v", r)
	}

	if _, err := NewChangeDetector(testLogger).CompareDirs(filepath.Join(oldDir, "missing"), newDir); err == nil {
		t.Error("expected error for missing crawl directory")
	}
}

func TestTruncateStr(t *testing.T) {
	long := strings.Repeat("é", 250)
	got := truncateStr(long, 200)
	if n := len([]rune(got)); n != 200 {
		t.Errorf("rune length = %d, want 200", n)
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("missing ellipsis: %q", got[len(got)-6:])
	}
	if truncateStr("short", 200) != "short" {
		t.Error("short strings must be unchanged")
	}
}
