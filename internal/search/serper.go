package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"productwatch/internal/config"
	"productwatch/internal/errorwrapper"
	"productwatch/internal/models"
	"productwatch/internal/urlhandler"

	"github.com/rs/zerolog"
)

// SerperClient queries the Serper search API for candidate product pages. The
// query scopes the keyword to the target sites with OR-joined site: filters.
type SerperClient struct {
	cfg        config.SearchConfig
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewSerperClient creates a search client for the configured endpoint.
func NewSerperClient(cfg config.SearchConfig, logger zerolog.Logger) *SerperClient {
	return &SerperClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout()},
		logger:     logger.With().Str("component", "SerperClient").Logger(),
	}
}

type serperRequest struct {
	Query    string `json:"q"`
	Country  string `json:"gl,omitempty"`
	Language string `json:"hl,omitempty"`
	Num      int    `json:"num,omitempty"`
}

type serperResponse struct {
	Organic []struct {
		Title string `json:"title"`
		Link  string `json:"link"`
	} `json:"organic"`
}

// Search performs one search API call. The caller decides how to treat errors;
// the pipeline maps them to a "no results" report.
func (c *SerperClient) Search(ctx context.Context, keyword string, sites []string) ([]models.Candidate, error) {
	if c.cfg.APIKey == "" {
		return nil, errorwrapper.NewCollaboratorError("search", errorwrapper.NewError("search API key not configured"))
	}

	query := buildQuery(keyword, sites)
	c.logger.Debug().Str("query", query).Msg("Searching for candidate pages")

	payload, err := json.Marshal(serperRequest{
		Query:    query,
		Country:  c.cfg.Country,
		Language: c.cfg.Language,
		Num:      c.cfg.NumResults,
	})
	if err != nil {
		return nil, errorwrapper.NewCollaboratorError("search", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, errorwrapper.NewCollaboratorError("search", err)
	}
	req.Header.Set("X-API-KEY", c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errorwrapper.NewCollaboratorError("search", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, errorwrapper.NewCollaboratorError("search",
			errorwrapper.NewError("search API returned status %d: %s", resp.StatusCode, string(body)))
	}

	var parsed serperResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, errorwrapper.NewCollaboratorError("search", err)
	}

	candidates := make([]models.Candidate, 0, len(parsed.Organic))
	for _, item := range parsed.Organic {
		if err := urlhandler.ValidateURLFormat(item.Link); err != nil {
			c.logger.Debug().Err(err).Str("title", item.Title).Msg("Skipping search result with unusable link")
			continue
		}
		candidates = append(candidates, models.Candidate{Title: item.Title, URL: item.Link})
	}

	c.logger.Info().Str("keyword", keyword).Int("results", len(candidates)).Msg("Search completed")
	return candidates, nil
}

func buildQuery(keyword string, sites []string) string {
	siteQueries := make([]string, 0, len(sites))
	for _, site := range sites {
		site = strings.TrimSpace(site)
		if site != "" {
			siteQueries = append(siteQueries, "site:"+site)
		}
	}
	if len(siteQueries) == 0 {
		return keyword
	}
	return fmt.Sprintf("%s (%s)", keyword, strings.Join(siteQueries, " OR "))
}
