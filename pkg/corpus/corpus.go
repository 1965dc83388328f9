// Package corpus builds word-count lists from HTML articles.
package corpus

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-shiori/go-readability"
	"golang.org/x/sync/errgroup"
)

// maxBodySize limits how much HTML is read from a single source.
const maxBodySize = 10 * 1024 * 1024

var (
	// (?s) allows dot to match newlines, (?i) makes it case-insensitive
	reRT = regexp.MustCompile(`(?si)<rt\b[^>]*>.*?</rt>`)
	reRP = regexp.MustCompile(`(?si)<rp\b[^>]*>.*?</rp>`)

	reWord = regexp.MustCompile(`[A-Za-z]+`)
)

// Document is a fetched HTML page and the URL it was read from.
type Document struct {
	URL  *url.URL
	HTML []byte
}

// Fetch loads an HTML document from an http(s) URL or a local file path.
func Fetch(ctx context.Context, source string) (*Document, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return fetchURL(ctx, source)
	}

	abs, err := filepath.Abs(source)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", source, err)
	}
	f, err := os.Open(abs)
	if err != nil {
		return nil, fmt.Errorf("open source: %w", err)
	}
	defer f.Close()
	body, err := readLimited(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", source, err)
	}
	return &Document{URL: &url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}, HTML: body}, nil
}

func fetchURL(ctx context.Context, source string) (*Document, error) {
	u, err := url.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	// Some sites block clients that do not look like a browser.
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Upgrade-Insecure-Requests", "1")

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", source, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %s", source, resp.Status)
	}
	if resp.ContentLength > maxBodySize {
		return nil, fmt.Errorf("fetch %s: content-length %d exceeds limit of %d bytes", source, resp.ContentLength, maxBodySize)
	}
	body, err := readLimited(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", source, err)
	}
	return &Document{URL: u, HTML: body}, nil
}

// readLimited reads at most maxBodySize bytes and fails on anything larger.
func readLimited(r io.Reader) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r, maxBodySize+1))
	if err != nil {
		return nil, err
	}
	if len(body) > maxBodySize {
		return nil, fmt.Errorf("body exceeds limit of %d bytes", maxBodySize)
	}
	return body, nil
}

// SanitizeRuby removes ruby text (<rt>...</rt>) and ruby parentheses
// (<rp>...</rp>) so readability does not duplicate annotated words.
func SanitizeRuby(content []byte) []byte {
	cleaned := reRT.ReplaceAll(content, nil)
	return reRP.ReplaceAll(cleaned, nil)
}

// Extract returns the readable article text of doc.
func Extract(doc *Document) (string, error) {
	article, err := readability.FromReader(bytes.NewReader(SanitizeRuby(doc.HTML)), doc.URL)
	if err != nil {
		return "", fmt.Errorf("extract article: %w", err)
	}
	return article.TextContent, nil
}

// CountWords counts the letter-only tokens of text, upper-cased. When length
// is positive only words of exactly that many letters are counted.
func CountWords(text string, length int) map[string]int64 {
	counts := make(map[string]int64)
	for _, tok := range reWord.FindAllString(text, -1) {
		if length > 0 && len(tok) != length {
			continue
		}
		counts[strings.ToUpper(tok)]++
	}
	return counts
}

// Merge adds the counts of src into dst.
func Merge(dst, src map[string]int64) {
	for w, c := range src {
		dst[w] += c
	}
}

// Builder fetches and counts many sources concurrently.
type Builder struct {
	// Length keeps only words of this many letters; <= 0 keeps all.
	Length int
	// Workers bounds concurrent fetches; <= 0 means 4.
	Workers int
	Logger  *slog.Logger
	// OnSource is called after each source is counted.
	OnSource func(source string, words int)
}

// Build fetches every source, extracts its article text and returns the
// merged counts. The first failing source cancels the rest.
func (b *Builder) Build(ctx context.Context, sources []string) (map[string]int64, error) {
	logger := b.Logger
	if logger == nil {
		logger = slog.Default()
	}
	workers := b.Workers
	if workers <= 0 {
		workers = 4
	}

	var mu sync.Mutex
	total := make(map[string]int64)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, src := range sources {
		g.Go(func() error {
			doc, err := Fetch(ctx, src)
			if err != nil {
				return err
			}
			text, err := Extract(doc)
			if err != nil {
				return fmt.Errorf("%s: %w", src, err)
			}
			counts := CountWords(text, b.Length)
			logger.Debug("counted source", slog.String("source", src), slog.Int("distinct", len(counts)))

			mu.Lock()
			Merge(total, counts)
			mu.Unlock()
			if b.OnSource != nil {
				b.OnSource(src, len(counts))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return total, nil
}

// WordCount is one line of a word-count list.
type WordCount struct {
	Word  string
	Count int64
}

// Sorted orders counts by descending count, then word.
func Sorted(counts map[string]int64) []WordCount {
	out := make([]WordCount, 0, len(counts))
	for w, c := range counts {
		out = append(out, WordCount{Word: w, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Word < out[j].Word
	})
	return out
}

// WriteCounts writes counts as "<WORD> <count>" lines, the word list format.
func WriteCounts(w io.Writer, counts map[string]int64) error {
	bw := bufio.NewWriter(w)
	for _, wc := range Sorted(counts) {
		if _, err := fmt.Fprintf(bw, "%s %d\n", wc.Word, wc.Count); err != nil {
			return err
		}
	}
	return bw.Flush()
}
