package corpus

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func TestSanitizeRuby(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Simple Ruby",
			input:    "<ruby>word<rt>gloss</rt></ruby>",
			expected: "<ruby>word</ruby>",
		},
		{
			name:     "Ruby with RP",
			input:    "<ruby>word<rp>(</rp><rt>gloss</rt><rp>)</rp></ruby>",
			expected: "<ruby>word</ruby>",
		},
		{
			name:     "Multiple Ruby",
			input:    "<ruby>one<rt>a</rt></ruby> and <ruby>two<rt>b</rt></ruby>",
			expected: "<ruby>one</ruby> and <ruby>two</ruby>",
		},
		{
			name:     "Attributes and case",
			input:    "<ruby class='x'>word<RT class='reading'>gloss</RT></ruby>",
			expected: "<ruby class='x'>word</ruby>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SanitizeRuby([]byte(tt.input))
			if string(result) != tt.expected {
				t.Errorf("got %q, want %q", string(result), tt.expected)
			}
		})
	}
}

func TestCountWords(t *testing.T) {
	text := "The apple, the APPLE and the apple-tree. Don't count 42 or _."
	counts := CountWords(text, 0)
	want := map[string]int64{
		"THE": 3, "APPLE": 3, "AND": 1, "TREE": 1,
		"DON": 1, "T": 1, "COUNT": 1, "OR": 1,
	}
	if len(counts) != len(want) {
		t.Fatalf("expected %d distinct words, got %d: %v", len(want), len(counts), counts)
	}
	for w, c := range want {
		if counts[w] != c {
			t.Errorf("count[%s] = %d, want %d", w, counts[w], c)
		}
	}

	five := CountWords(text, 5)
	if len(five) != 2 || five["APPLE"] != 3 || five["COUNT"] != 1 {
		t.Errorf("expected only APPLE and COUNT for length 5, got %v", five)
	}
}

func TestWriteCounts(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCounts(&buf, map[string]int64{"TABLE": 3, "APPLE": 10, "ARISE": 3})
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	want := "APPLE 10\nARISE 3\nTABLE 3\n"
	if buf.String() != want {
		t.Fatalf("got %q, want %q", buf.String(), want)
	}
}

func TestFetchAndExtractFile(t *testing.T) {
	doc, err := Fetch(context.Background(), filepath.Join("testdata", "article.html"))
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if doc.URL.Scheme != "file" {
		t.Errorf("expected file URL, got %s", doc.URL)
	}
	text, err := Extract(doc)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if !strings.Contains(text, "orchard fills with pickers") {
		t.Errorf("expected article body in extracted text, got %q", text)
	}

	counts := CountWords(text, 5)
	if counts["APPLE"] < 3 {
		t.Errorf("expected APPLE at least 3 times, got %d", counts["APPLE"])
	}
}

func TestExtractStripsRuby(t *testing.T) {
	doc, err := Fetch(context.Background(), filepath.Join("testdata", "ruby.html"))
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	text, err := Extract(doc)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if strings.Contains(text, "GLOSS") {
		t.Errorf("annotation leaked into extracted text: %q", text)
	}
	if !strings.Contains(text, "orchard") {
		t.Errorf("expected base text to survive, got %q", text)
	}
}

func TestFetchMissingFile(t *testing.T) {
	_, err := Fetch(context.Background(), filepath.Join(t.TempDir(), "missing.html"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestFetchURL(t *testing.T) {
	body, err := os.ReadFile(filepath.Join("testdata", "article.html"))
	if err != nil {
		t.Fatalf("failed to read fixture: %v", err)
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		if !strings.Contains(r.Header.Get("User-Agent"), "Mozilla") {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(body)
	}))
	defer srv.Close()

	doc, err := Fetch(context.Background(), srv.URL+"/article")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if !bytes.Equal(doc.HTML, body) {
		t.Errorf("fetched body differs from fixture")
	}
	if doc.URL.Path != "/article" {
		t.Errorf("expected URL path /article, got %s", doc.URL.Path)
	}

	if _, err := Fetch(context.Background(), srv.URL+"/missing"); err == nil {
		t.Fatalf("expected error for 404")
	}
}

func TestBuilder(t *testing.T) {
	article, err := os.ReadFile(filepath.Join("testdata", "article.html"))
	if err != nil {
		t.Fatalf("failed to read fixture: %v", err)
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(article)
	}))
	defer srv.Close()

	var mu sync.Mutex
	seen := map[string]bool{}
	b := &Builder{
		Length:  5,
		Workers: 2,
		OnSource: func(source string, words int) {
			mu.Lock()
			seen[source] = true
			mu.Unlock()
		},
	}
	sources := []string{srv.URL + "/a", srv.URL + "/b", filepath.Join("testdata", "article.html")}
	counts, err := b.Build(context.Background(), sources)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(seen) != 3 {
		t.Errorf("expected 3 sources reported, got %v", seen)
	}

	single, err := (&Builder{Length: 5}).Build(context.Background(), sources[:1])
	if err != nil {
		t.Fatalf("build single: %v", err)
	}
	for w, c := range single {
		if counts[w] != 3*c {
			t.Errorf("count[%s] = %d, want %d", w, counts[w], 3*c)
		}
		if len(w) != 5 {
			t.Errorf("unexpected word length for %s", w)
		}
	}
}

func TestBuilderFailsOnBadSource(t *testing.T) {
	b := &Builder{Workers: 2}
	_, err := b.Build(context.Background(), []string{
		filepath.Join("testdata", "article.html"),
		filepath.Join(t.TempDir(), "missing.html"),
	})
	if err == nil {
		t.Fatalf("expected error for missing source")
	}
}
