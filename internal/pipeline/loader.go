package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ppiankov/disclose/internal/extract"
	"github.com/ppiankov/disclose/internal/model"
	"github.com/ppiankov/disclose/internal/util"
	"github.com/ppiankov/disclose/internal/worker"
)

// ErrDisallowed is returned when robots.txt forbids fetching a report URL
var ErrDisallowed = errors.New("disallowed by robots.txt")

// Document is a loaded source reduced to text
type Document struct {
	Source    string
	Content   string
	FromHTML  bool
	Truncated bool
}

// Loader reads requirement tables and reports from disk or over HTTP
type Loader struct {
	fetcher       *Fetcher
	robots        *util.RobotsChecker
	limiter       *worker.Limiter
	respectRobots bool
}

// NewLoader creates a loader from the HTTP settings
func NewLoader(cfg model.HTTPConfig) *Loader {
	proxy := util.NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy)
	return &Loader{
		fetcher:       NewFetcher(cfg.Timeout, cfg.UserAgent, cfg.MaxBodyBytes, proxy),
		robots:        util.NewRobotsChecker(cfg.UserAgent, cfg.Timeout, proxy),
		limiter:       worker.NewLimiter(0, 1),
		respectRobots: cfg.RespectRobots,
	}
}

// Load returns the text of src. http(s) sources are fetched, anything else
// is read from disk. HTML is reduced to text with tables kept as pipe rows.
func (l *Loader) Load(ctx context.Context, src string) (*Document, error) {
	if isURL(src) {
		return l.loadURL(ctx, src)
	}

	data, err := os.ReadFile(src)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", src, err)
	}
	doc := &Document{Source: src, Content: string(data)}

	ext := strings.ToLower(filepath.Ext(src))
	if ext == ".html" || ext == ".htm" || (ext == "" && looksLikeHTML(doc.Content)) {
		return toText(doc)
	}
	return doc, nil
}

func (l *Loader) loadURL(ctx context.Context, rawURL string) (*Document, error) {
	if l.respectRobots {
		allowed, delay, err := l.robots.CanFetch(ctx, rawURL)
		if err != nil {
			return nil, fmt.Errorf("robots check: %w", err)
		}
		if !allowed {
			return nil, fmt.Errorf("%s: %w", rawURL, ErrDisallowed)
		}
		if delay > 0 {
			l.limiter.SetRateIfAbsent(rawURL, crawlDelayRate(delay), 1)
		}
	}

	if err := l.limiter.Wait(ctx, rawURL); err != nil {
		return nil, err
	}

	res, err := l.fetcher.FetchWithRetry(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}

	doc := &Document{Source: res.FinalURL, Content: res.Body, Truncated: res.Truncated}
	if strings.Contains(strings.ToLower(res.ContentType), "html") || looksLikeHTML(res.Body) {
		return toText(doc)
	}
	return doc, nil
}

func toText(doc *Document) (*Document, error) {
	text, err := extract.ReportText(doc.Content)
	if err != nil {
		return nil, fmt.Errorf("convert %s: %w", doc.Source, err)
	}
	doc.Content = text
	doc.FromHTML = true
	return doc, nil
}

func isURL(src string) bool {
	lower := strings.ToLower(src)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func looksLikeHTML(content string) bool {
	head := strings.ToLower(strings.TrimSpace(content))
	if len(head) > 512 {
		head = head[:512]
	}
	return strings.HasPrefix(head, "<!doctype html") || strings.HasPrefix(head, "<html")
}

// crawlDelayRate converts a robots crawl delay into requests per second
func crawlDelayRate(delay time.Duration) float64 {
	if delay <= 0 {
		return 0
	}
	return 1 / delay.Seconds()
}
