package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"productwatch/internal/config"
	"productwatch/internal/errorwrapper"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildQuery(t *testing.T) {
	assert.Equal(t, "nintendo switch (site:amazon.co.jp OR site:rakuten.co.jp)",
		buildQuery("nintendo switch", []string{"amazon.co.jp", "rakuten.co.jp"}))
	assert.Equal(t, "nintendo switch (site:amazon.co.jp)",
		buildQuery("nintendo switch", []string{"amazon.co.jp"}))
	assert.Equal(t, "nintendo switch", buildQuery("nintendo switch", nil))
	assert.Equal(t, "nintendo switch", buildQuery("nintendo switch", []string{" ", ""}))
}

func TestSearch_ParsesOrganicResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("X-API-KEY"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "bag (site:louisvuitton.com)", body["q"])
		assert.Equal(t, "jp", body["gl"])

		w.Write([]byte(`{"organic":[
			{"title":"Bag A","link":"https://jp.louisvuitton.com/products/a"},
			{"title":"No link"},
			{"title":"Relative link","link":"/products/c"},
			{"title":"Bag B","link":"https://jp.louisvuitton.com/products/b"}
		]}`))
	}))
	defer server.Close()

	client := NewSerperClient(config.SearchConfig{
		APIKey:         "test-key",
		Endpoint:       server.URL,
		Country:        "jp",
		Language:       "ja",
		NumResults:     20,
		TimeoutSeconds: 5,
	}, zerolog.Nop())

	candidates, err := client.Search(context.Background(), "bag", []string{"louisvuitton.com"})

	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, "Bag A", candidates[0].Title)
	assert.Equal(t, "https://jp.louisvuitton.com/products/b", candidates[1].URL)
}

func TestSearch_MissingAPIKey(t *testing.T) {
	client := NewSerperClient(config.SearchConfig{TimeoutSeconds: 5}, zerolog.Nop())

	_, err := client.Search(context.Background(), "bag", nil)

	require.Error(t, err)
	var collabErr *errorwrapper.CollaboratorError
	require.ErrorAs(t, err, &collabErr)
	assert.Equal(t, "search", collabErr.Collaborator)
}

func TestSearch_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"message":"invalid key"}`))
	}))
	defer server.Close()

	client := NewSerperClient(config.SearchConfig{
		APIKey:         "bad-key",
		Endpoint:       server.URL,
		TimeoutSeconds: 5,
	}, zerolog.Nop())

	_, err := client.Search(context.Background(), "bag", nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 403")
}
