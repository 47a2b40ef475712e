package evidence

import (
	"context"
	"strings"
	"time"
)

// SearchHit is one raw result from the evidence-search collaborator,
// before grading.
type SearchHit struct {
	URL         string    `json:"url"`
	Publisher   string    `json:"publisher"`
	Excerpt     string    `json:"excerpt"`
	PublishedAt time.Time `json:"published_at"`
}

// SearchBackend is the pluggable evidence-search collaborator. The grader
// applies grading/stance logic on top, independent of which backend
// produced the hits.
type SearchBackend interface {
	Name() string
	Search(ctx context.Context, query string, assets []string) ([]SearchHit, error)
}

// StaticBackend serves hits from an in-memory corpus, matched by keyword
// overlap. Used for tests and offline runs.
type StaticBackend struct {
	corpus []SearchHit
}

// NewStaticBackend creates a backend over a fixed corpus.
func NewStaticBackend(corpus []SearchHit) *StaticBackend {
	return &StaticBackend{corpus: corpus}
}

func (b *StaticBackend) Name() string { return "static" }

// Search returns corpus entries sharing at least two terms with the query
// or mentioning one of its assets.
func (b *StaticBackend) Search(_ context.Context, query string, assets []string) ([]SearchHit, error) {
	terms := significantTerms(query)

	var out []SearchHit
	for _, hit := range b.corpus {
		haystack := strings.ToLower(hit.Excerpt + " " + hit.URL)

		overlap := 0
		for _, t := range terms {
			if strings.Contains(haystack, t) {
				overlap++
			}
		}
		assetHit := false
		for _, a := range assets {
			if strings.Contains(haystack, strings.ToLower(a)) {
				assetHit = true
				break
			}
		}

		if overlap >= 2 || assetHit {
			out = append(out, hit)
		}
	}
	return out, nil
}

func significantTerms(query string) []string {
	var out []string
	for _, t := range strings.Fields(strings.ToLower(query)) {
		t = strings.Trim(t, ".,;:!?\"'()")
		if len(t) >= 4 {
			out = append(out, t)
		}
	}
	return out
}
