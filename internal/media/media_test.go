package media_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"greenroom/internal/media"
	"greenroom/internal/testsupport"
)

func TestImageFileName(t *testing.T) {
	cases := []struct {
		url    string
		want   string
		wantOK bool
	}{
		{"https://x.test/uploads/photo.png", "photo.png", true},
		{"https://x.test/uploads/photo.png?sz=200", "photo.png", true},
		{"https://x.test/headshot.JPG", "headshot.JPG", true},
		{"https://x.test/headshot.jpeg", "headshot.jpeg", true},
		{"https://x.test/page", "", false},
		{"https://x.test/archive.gif", "", false},
		{"https://x.test/", "", false},
		{"", "", false},
		{"   ", "", false},
	}
	for _, tc := range cases {
		got, ok := media.ImageFileName(tc.url)
		if got != tc.want || ok != tc.wantOK {
			t.Errorf("ImageFileName(%q) = %q, %v; want %q, %v", tc.url, got, ok, tc.want, tc.wantOK)
		}
	}
}

func TestFetchDownloadsImage(t *testing.T) {
	body := strings.Repeat("p", 128)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte(body))
	}))
	defer server.Close()

	cfg := testsupport.NewConfig(t)
	fetcher := media.NewFetcher(cfg)

	img, err := fetcher.Fetch(context.Background(), server.URL+"/photo.png?sz=200")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if img.FileName != "photo.png" {
		t.Fatalf("unexpected file name %q", img.FileName)
	}
	if img.ContentType != "image/png" {
		t.Fatalf("unexpected content type %q", img.ContentType)
	}
	if len(img.Data) != len(body) {
		t.Fatalf("expected %d bytes, got %d", len(body), len(img.Data))
	}
}

func TestFetchRejectsUnsupportedURL(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	fetcher := media.NewFetcher(cfg)

	if _, err := fetcher.Fetch(context.Background(), "https://x.test/page"); err == nil {
		t.Fatal("expected error for non-image url")
	}
}

func TestFetchEnforcesSizeLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 64)))
	}))
	defer server.Close()

	cfg := testsupport.NewConfig(t)
	cfg.Media.MaxBytes = 16
	fetcher := media.NewFetcher(cfg)

	if _, err := fetcher.Fetch(context.Background(), server.URL+"/photo.jpg"); err == nil {
		t.Fatal("expected error when body exceeds limit")
	}
}

func TestFetchReportsServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	cfg := testsupport.NewConfig(t)
	fetcher := media.NewFetcher(cfg)

	if _, err := fetcher.Fetch(context.Background(), server.URL+"/photo.jpg"); err == nil {
		t.Fatal("expected error for 404 response")
	}
}
