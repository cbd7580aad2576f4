package table

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ppiankov/disclose/internal/model"
)

// HeaderLocator finds the header span of a single-line table.
// Locate returns the half-open span [start, end) of header cells.
type HeaderLocator interface {
	Name() string
	Locate(cells []string, width int) (start, end int, ok bool)
}

// KeywordLocator takes the first cell that is a known header keyword
// (case-insensitive, shorter than maxLen) and the cells following it.
type KeywordLocator struct {
	keywords map[string]bool
	maxLen   int
}

// NewKeywordLocator creates a keyword locator
func NewKeywordLocator(keywords []string, maxLen int) *KeywordLocator {
	set := make(map[string]bool, len(keywords))
	for _, k := range keywords {
		set[strings.ToUpper(strings.TrimSpace(k))] = true
	}
	return &KeywordLocator{keywords: set, maxLen: maxLen}
}

// Name returns "keyword"
func (l *KeywordLocator) Name() string { return "keyword" }

// Locate scans cells for the first header keyword
func (l *KeywordLocator) Locate(cells []string, width int) (int, int, bool) {
	for i, c := range cells {
		if !l.keywords[strings.ToUpper(c)] {
			continue
		}
		if l.maxLen > 0 && utf8.RuneCountInString(c) >= l.maxLen {
			continue
		}
		return i, min(i+width, len(cells)), true
	}
	return 0, 0, false
}

// TitleMarkerLocator takes the cells right after the first title cell
// (a cell containing "Table" or a heading marker).
type TitleMarkerLocator struct {
	markers []string
}

// NewTitleMarkerLocator creates a title-marker locator
func NewTitleMarkerLocator(markers []string) *TitleMarkerLocator {
	return &TitleMarkerLocator{markers: markers}
}

// Name returns "title"
func (l *TitleMarkerLocator) Name() string { return "title" }

// Locate scans cells for the first title marker
func (l *TitleMarkerLocator) Locate(cells []string, width int) (int, int, bool) {
	i := l.titleIndex(cells)
	if i < 0 || i+1 >= len(cells) {
		return 0, 0, false
	}
	return i + 1, min(i+1+width, len(cells)), true
}

func (l *TitleMarkerLocator) titleIndex(cells []string) int {
	for i, c := range cells {
		for _, m := range l.markers {
			if m != "" && strings.Contains(c, m) {
				return i
			}
		}
	}
	return -1
}

// NewLocator builds a locator by configuration name
func NewLocator(name string, cfg model.TableConfig) (HeaderLocator, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "keyword":
		return NewKeywordLocator(cfg.HeaderKeywords, cfg.MaxKeywordLength), nil
	case "title", "title-marker":
		return NewTitleMarkerLocator(cfg.TitleMarkers), nil
	default:
		return nil, fmt.Errorf("unknown header locator: %s (supported: keyword, title)", name)
	}
}
