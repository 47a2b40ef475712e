package evidence

import (
	"context"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"github.com/LewisWJackson/confirmd-sub001/internal/model"
)

// HTTPBackend queries a JSON search API over a corpus of crypto sources.
// The pipeline treats it as an opaque search service.
type HTTPBackend struct {
	client     *resty.Client
	endpoint   string
	maxResults int
}

type searchRequest struct {
	Query      string   `json:"query"`
	Assets     []string `json:"assets,omitempty"`
	MaxResults int      `json:"max_results"`
}

type searchResponse struct {
	Results []struct {
		URL         string `json:"url"`
		Publisher   string `json:"publisher"`
		Excerpt     string `json:"excerpt"`
		PublishedAt string `json:"published_at"`
	} `json:"results"`
}

// NewHTTPBackend creates a search backend against the configured endpoint.
func NewHTTPBackend(cfg model.SearchConfig) (*HTTPBackend, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("search endpoint is required")
	}

	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond)
	if cfg.APIKey != "" {
		client.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 10
	}

	return &HTTPBackend{
		client:     client,
		endpoint:   strings.TrimSuffix(cfg.Endpoint, "/") + "/search",
		maxResults: maxResults,
	}, nil
}

func (b *HTTPBackend) Name() string { return "http" }

// Search posts the claim query and decodes hits. Any transport or decode
// failure is returned as an error; the retriever downgrades it to an
// empty result set.
func (b *HTTPBackend) Search(ctx context.Context, query string, assets []string) ([]SearchHit, error) {
	var out searchResponse
	resp, err := b.client.R().
		SetContext(ctx).
		SetBody(searchRequest{Query: query, Assets: assets, MaxResults: b.maxResults}).
		SetResult(&out).
		Post(b.endpoint)
	if err != nil {
		return nil, errors.Wrap(err, "search request")
	}
	if resp.IsError() {
		return nil, errors.Errorf("search backend: status %d", resp.StatusCode())
	}

	hits := make([]SearchHit, 0, len(out.Results))
	for _, r := range out.Results {
		hit := SearchHit{
			URL:       r.URL,
			Publisher: r.Publisher,
			Excerpt:   r.Excerpt,
		}
		if t, err := time.Parse(time.RFC3339, r.PublishedAt); err == nil {
			hit.PublishedAt = t
		}
		hits = append(hits, hit)
	}
	return hits, nil
}
