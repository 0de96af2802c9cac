package media

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// Fetcher downloads media files from the media origin. Requests are plain
// unauthenticated GETs against resolved URLs.
type Fetcher struct {
	resolver Resolver
	http     *http.Client
}

// FetchResult describes a completed download.
type FetchResult struct {
	URL   string `json:"url"`
	Path  string `json:"path"`
	Bytes int64  `json:"bytes"`
}

func NewFetcher(resolver Resolver, client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Minute}
	}
	return &Fetcher{resolver: resolver, http: client}
}

// Fetch downloads assetPath into dest. When dest is an existing directory the
// file name is taken from the URL.
func (f *Fetcher) Fetch(ctx context.Context, assetPath, dest string) (FetchResult, error) {
	url := f.resolver.Resolve(strings.TrimSpace(assetPath))
	if url == "" {
		return FetchResult{}, fmt.Errorf("media path is empty")
	}
	target, err := destinationPath(url, dest)
	if err != nil {
		return FetchResult{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return FetchResult{}, fmt.Errorf("build media request %s: %w", url, err)
	}
	resp, err := f.http.Do(req)
	if err != nil {
		return FetchResult{}, fmt.Errorf("fetch media %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return FetchResult{}, fmt.Errorf("fetch media %s: unexpected status %d", url, resp.StatusCode)
	}

	n, err := WriteStream(target, resp.Body)
	if err != nil {
		return FetchResult{}, err
	}
	return FetchResult{URL: url, Path: target, Bytes: n}, nil
}

func destinationPath(url, dest string) (string, error) {
	name := path.Base(strings.SplitN(url, "?", 2)[0])
	if name == "" || name == "/" || name == "." {
		name = "media.bin"
	}
	dest = strings.TrimSpace(dest)
	if dest == "" {
		return name, nil
	}
	info, err := os.Stat(dest)
	if err == nil && info.IsDir() {
		return filepath.Join(dest, name), nil
	}
	if strings.HasSuffix(dest, string(os.PathSeparator)) {
		return filepath.Join(dest, name), nil
	}
	return dest, nil
}

// WriteStream copies r into path atomically: data lands in a temp file in the
// same directory and is renamed into place only after a complete copy.
func WriteStream(path string, r io.Reader) (int64, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("create parent for %s: %w", path, err)
	}

	tmp, err := os.CreateTemp(dir, ".shorts-tmp-*")
	if err != nil {
		return 0, fmt.Errorf("create temp file for %s: %w", path, err)
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		_ = os.Remove(tmpPath)
	}

	n, err := io.Copy(tmp, r)
	if err != nil {
		_ = tmp.Close()
		cleanup()
		return 0, fmt.Errorf("write temp file for %s: %w", path, err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		cleanup()
		return 0, fmt.Errorf("chmod temp file for %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return 0, fmt.Errorf("close temp file for %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		cleanup()
		return 0, fmt.Errorf("atomic rename for %s: %w", path, err)
	}
	return n, nil
}
