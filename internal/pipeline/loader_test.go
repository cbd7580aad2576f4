package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/disclose/internal/model"
)

func testHTTPConfig() model.HTTPConfig {
	cfg := model.DefaultConfig().HTTP
	cfg.Timeout = 5 * time.Second
	return cfg
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoader_MarkdownFile(t *testing.T) {
	path := writeFile(t, "report.md", "| A | B |\n|---|---|\n| 1 | 2 |\n")

	doc, err := NewLoader(testHTTPConfig()).Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if doc.FromHTML {
		t.Error("Markdown file should not be converted")
	}
	if !strings.HasPrefix(doc.Content, "| A | B |") {
		t.Errorf("Unexpected content: %q", doc.Content)
	}
}

func TestLoader_HTMLFile(t *testing.T) {
	path := writeFile(t, "report.html", "<html><body><p>Total: 12 tCO2</p><script>x()</script></body></html>")

	doc, err := NewLoader(testHTTPConfig()).Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !doc.FromHTML {
		t.Error("Expected HTML conversion")
	}
	if strings.Contains(doc.Content, "<p>") || strings.Contains(doc.Content, "x()") {
		t.Errorf("Markup leaked into text: %q", doc.Content)
	}
	if !strings.Contains(doc.Content, "12 tCO2") {
		t.Errorf("Expected report text, got %q", doc.Content)
	}
}

func TestLoader_MissingFile(t *testing.T) {
	_, err := NewLoader(testHTTPConfig()).Load(context.Background(), filepath.Join(t.TempDir(), "missing.md"))
	if err == nil {
		t.Fatal("Expected error for missing file")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected not-exist error, got %v", err)
	}
}

func TestLoader_URL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/robots.txt":
			_, _ = fmt.Fprint(w, "User-agent: *\nDisallow: /private/\n")
		case "/report.html":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = fmt.Fprint(w, "<html><body><p>Scope 1: 1,200 tCO2</p></body></html>")
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	loader := NewLoader(testHTTPConfig())

	doc, err := loader.Load(context.Background(), server.URL+"/report.html")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !doc.FromHTML || !strings.Contains(doc.Content, "1,200 tCO2") {
		t.Errorf("Unexpected document: %+v", doc)
	}

	_, err = loader.Load(context.Background(), server.URL+"/private/report.md")
	if !errors.Is(err, ErrDisallowed) {
		t.Errorf("Expected ErrDisallowed, got %v", err)
	}
}

func TestLoader_RobotsIgnored(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			_, _ = fmt.Fprint(w, "User-agent: *\nDisallow: /\n")
			return
		}
		_, _ = fmt.Fprint(w, "plain report")
	}))
	defer server.Close()

	cfg := testHTTPConfig()
	cfg.RespectRobots = false

	doc, err := NewLoader(cfg).Load(context.Background(), server.URL+"/report.txt")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if doc.Content != "plain report" {
		t.Errorf("Unexpected content: %q", doc.Content)
	}
}

func TestLoader_CrawlDelay(t *testing.T) {
	if testing.Short() {
		t.Skip("waits for the crawl delay")
	}

	var reports atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			_, _ = fmt.Fprint(w, "User-agent: *\nCrawl-delay: 1\n")
			return
		}
		reports.Add(1)
		_, _ = fmt.Fprint(w, "plain report")
	}))
	defer server.Close()

	loader := NewLoader(testHTTPConfig())

	start := time.Now()
	for i := 0; i < 3; i++ {
		if _, err := loader.Load(context.Background(), server.URL+"/report.txt"); err != nil {
			t.Fatalf("Load %d: %v", i, err)
		}
	}
	elapsed := time.Since(start)

	if n := reports.Load(); n != 3 {
		t.Errorf("Expected 3 report requests, got %d", n)
	}
	if elapsed < 1800*time.Millisecond {
		t.Errorf("Expected loads paced one second apart, took %v", elapsed)
	}
}

func TestLooksLikeHTML(t *testing.T) {
	tests := []struct {
		content string
		want    bool
	}{
		{"<!DOCTYPE html><html></html>", true},
		{"  <html lang=\"fr\">", true},
		{"| A | B |", false},
		{"# Heading", false},
	}
	for _, tt := range tests {
		if got := looksLikeHTML(tt.content); got != tt.want {
			t.Errorf("looksLikeHTML(%q) = %v, want %v", tt.content, got, tt.want)
		}
	}
}

func TestCrawlDelayRate(t *testing.T) {
	if got := crawlDelayRate(2 * time.Second); got != 0.5 {
		t.Errorf("Expected 0.5 rps, got %v", got)
	}
	if got := crawlDelayRate(0); got != 0 {
		t.Errorf("Expected 0 for no delay, got %v", got)
	}
}
