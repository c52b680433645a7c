// Package media validates and downloads speaker photos referenced by
// form submissions.
package media

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"greenroom/internal/config"
)

const userAgent = "Greenroom/0.1.0"

var allowedExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
}

// ImageFileName extracts the file name from url when it points at a
// supported image type. Query strings are ignored when checking the
// extension. The second return is false when the URL does not name a
// usable image.
func ImageFileName(rawURL string) (string, bool) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return "", false
	}
	if i := strings.IndexByte(rawURL, '?'); i >= 0 {
		rawURL = rawURL[:i]
	}
	name := path.Base(rawURL)
	if name == "." || name == "/" || name == "" {
		return "", false
	}
	ext := strings.ToLower(path.Ext(name))
	if _, ok := allowedExtensions[ext]; !ok {
		return "", false
	}
	return name, true
}

// Image is a downloaded photo ready to attach to a record.
type Image struct {
	FileName    string
	ContentType string
	Data        []byte
}

// Fetcher downloads images over HTTP with a bounded timeout and size.
type Fetcher struct {
	client   *http.Client
	maxBytes int64
}

// NewFetcher builds a fetcher from the media configuration.
func NewFetcher(cfg *config.Config) *Fetcher {
	timeout := time.Duration(cfg.Media.FetchTimeout) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	maxBytes := cfg.Media.MaxBytes
	if maxBytes <= 0 {
		maxBytes = 8 << 20
	}
	return &Fetcher{
		client:   &http.Client{Timeout: timeout},
		maxBytes: maxBytes,
	}
}

// Fetch downloads the image at rawURL. It fails when the URL does not
// name a supported image, the server responds with a non-2xx status,
// or the body exceeds the configured size limit.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Image, error) {
	name, ok := ImageFileName(rawURL)
	if !ok {
		return nil, fmt.Errorf("unsupported image url %q", rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build image request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch image: server returned %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read image body: %w", err)
	}
	if int64(len(data)) > f.maxBytes {
		return nil, fmt.Errorf("image exceeds %d byte limit", f.maxBytes)
	}

	return &Image{
		FileName:    name,
		ContentType: resp.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
