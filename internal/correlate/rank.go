package correlate

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sahilm/fuzzy"

	"github.com/ppiankov/disclose/internal/model"
)

// Ranker names
const (
	RankerFirst     = "first"
	RankerProximity = "proximity"
)

// Ranker picks one candidate for a requirement
type Ranker interface {
	Rank(req model.Requirement, text string, candidates []Candidate) (Candidate, bool)
}

// NewRanker returns the ranker registered under name; "" means first-match
func NewRanker(name string) (Ranker, error) {
	switch strings.ToLower(name) {
	case "", RankerFirst:
		return FirstMatch{}, nil
	case RankerProximity:
		return ProximityRanker{}, nil
	default:
		return nil, fmt.Errorf("unknown ranker: %s (supported: first, proximity)", name)
	}
}

// FirstMatch takes the first candidate in category, pattern, position order
type FirstMatch struct{}

// Rank implements Ranker
func (FirstMatch) Rank(_ model.Requirement, _ string, candidates []Candidate) (Candidate, bool) {
	if len(candidates) == 0 {
		return Candidate{}, false
	}
	return candidates[0], true
}

// DefaultProximityWindow is the number of bytes inspected on each side of a candidate
const DefaultProximityWindow = 200

// ProximityRanker prefers the candidate whose surrounding text mentions the
// most words of the requirement's metric. Ties keep first-match order.
type ProximityRanker struct {
	Window int
}

// Rank implements Ranker
func (r ProximityRanker) Rank(req model.Requirement, text string, candidates []Candidate) (Candidate, bool) {
	if len(candidates) == 0 {
		return Candidate{}, false
	}
	keywords := metricKeywords(req.Metric)
	if len(keywords) == 0 {
		return candidates[0], true
	}

	window := r.Window
	if window <= 0 {
		window = DefaultProximityWindow
	}

	type scored struct {
		c    Candidate
		hits int
	}
	ranked := make([]scored, len(candidates))
	for i, c := range candidates {
		ranked[i] = scored{c: c, hits: keywordHits(keywords, around(text, c.Start, c.End, window))}
	}
	sort.SliceStable(ranked, func(a, b int) bool { return ranked[a].hits > ranked[b].hits })

	return ranked[0].c, true
}

// metricKeywords keeps the informative words of a metric
func metricKeywords(metric string) []string {
	var out []string
	for _, w := range strings.FieldsFunc(NormalizeUnit(metric), notWord) {
		if utf8.RuneCountInString(w) >= 4 {
			out = append(out, w)
		}
	}
	return out
}

// keywordHits counts keywords that fuzzy-match a word of the window closely
// enough to be the same word with a different ending.
func keywordHits(keywords []string, window string) int {
	words := strings.FieldsFunc(NormalizeUnit(window), notWord)
	if len(words) == 0 {
		return 0
	}
	hits := 0
	for _, kw := range keywords {
		limit := utf8.RuneCountInString(kw)*3/2 + 1
		for _, m := range fuzzy.Find(kw, words) {
			if utf8.RuneCountInString(m.Str) <= limit {
				hits++
				break
			}
		}
	}
	return hits
}

// around returns text[start-window:end+window], widened to rune boundaries
func around(text string, start, end, window int) string {
	lo := start - window
	if lo < 0 {
		lo = 0
	}
	hi := end + window
	if hi > len(text) {
		hi = len(text)
	}
	for lo > 0 && !utf8.RuneStart(text[lo]) {
		lo--
	}
	for hi < len(text) && !utf8.RuneStart(text[hi]) {
		hi++
	}
	return text[lo:hi]
}

func notWord(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}
