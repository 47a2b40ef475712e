package evidence

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LewisWJackson/confirmd-sub001/internal/model"
)

func TestHTTPBackend_Search(t *testing.T) {
	var gotAuth string
	var gotReq searchRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/search", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"results": []map[string]string{
				{
					"url":          "https://www.sec.gov/litigation/2026-12",
					"publisher":    "SEC",
					"excerpt":      "The commission announced charges on Monday.",
					"published_at": "2026-03-01T10:00:00Z",
				},
				{
					"url":       "https://cryptopanic.com/news/1",
					"publisher": "CryptoPanic",
					"excerpt":   "roundup",
					// no published_at: field stays zero
				},
			},
		})
	}))
	defer server.Close()

	backend, err := NewHTTPBackend(model.SearchConfig{
		Endpoint:   server.URL,
		APIKey:     "secret",
		Timeout:    5 * time.Second,
		MaxResults: 7,
	})
	require.NoError(t, err)

	hits, err := backend.Search(context.Background(), "sec charges exchange", []string{"BTC"})
	require.NoError(t, err)
	require.Len(t, hits, 2)

	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "sec charges exchange", gotReq.Query)
	assert.Equal(t, []string{"BTC"}, gotReq.Assets)
	assert.Equal(t, 7, gotReq.MaxResults)

	assert.Equal(t, "https://www.sec.gov/litigation/2026-12", hits[0].URL)
	assert.Equal(t, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC), hits[0].PublishedAt)
	assert.True(t, hits[1].PublishedAt.IsZero())
}

func TestHTTPBackend_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	backend, err := NewHTTPBackend(model.SearchConfig{Endpoint: server.URL, Timeout: 5 * time.Second})
	require.NoError(t, err)

	_, err = backend.Search(context.Background(), "anything", nil)
	assert.Error(t, err)
}

func TestHTTPBackend_RequiresEndpoint(t *testing.T) {
	_, err := NewHTTPBackend(model.SearchConfig{})
	assert.Error(t, err)
}
