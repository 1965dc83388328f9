package dictionary

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// maxDownloadSize caps word list downloads (uncompressed).
const maxDownloadSize = 64 * 1024 * 1024

// EnsureWordList checks if the word list exists at path.
// If not and url is set, it downloads the list (gunzipping .gz payloads) to path.
// With no url a missing file is left for Load to report.
func EnsureWordList(ctx context.Context, path, url string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}
	if url == "" {
		return nil
	}

	slog.Info("word list not found, downloading", slog.String("path", path), slog.String("url", url))
	return download(ctx, url, path)
}

func download(ctx context.Context, url, destPath string) error {
	client := &http.Client{Timeout: 60 * time.Second}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "hangman-cli")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("download word list: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed: %s", resp.Status)
	}

	var body io.Reader = resp.Body
	if strings.HasSuffix(url, ".gz") || resp.Header.Get("Content-Type") == "application/gzip" {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer gz.Close()
		body = gz
	}

	// Write to a temp file next to the destination so a failed download
	// never leaves a truncated list behind.
	tmp, err := os.CreateTemp(filepath.Dir(destPath), ".wordlist-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, io.LimitReader(body, maxDownloadSize+1))
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("failed to write word list: %w", err)
	}
	if n > maxDownloadSize {
		return fmt.Errorf("word list exceeds %d bytes", maxDownloadSize)
	}

	return os.Rename(tmp.Name(), destPath)
}
