package relevance

import (
	"context"
	"strings"

	"productwatch/internal/config"
	"productwatch/internal/errorwrapper"
	"productwatch/internal/urlhandler"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
)

// Filter judges whether a candidate URL is a relevant purchase page for a
// keyword. On internal error the safe default is "relevant" — the pipeline
// applies that default, favoring false positives over dropped real matches.
type Filter interface {
	IsRelevant(ctx context.Context, pageURL, keyword string, sites []string) (bool, error)
}

// URL path fragments that mark obvious non-product pages, checked before any
// model call.
var exclusionPatterns = []string{
	"help", "support", "contact", "about", "privacy", "terms",
	"blog", "news", "press", "careers", "investor",
	"search", "category", "sitemap", "login", "register",
}

const relevanceSystemPrompt = `You are a product page identification expert. Decide whether the given URL is a purchase page for the product the user searched for.

A relevant page is a product detail or purchase page whose product name, brand, or model matches the keyword, where the item can be bought.
Category pages, search result pages, help pages, and blog articles are not relevant, nor are entirely different product categories.

Answer only "yes" or "no".`

// ModelFilter is the OpenAI-backed Filter implementation with a fast URL-based
// pre-filter in front of the model call.
type ModelFilter struct {
	cfg    config.RelevanceConfig
	client *openai.Client
	logger zerolog.Logger
}

// NewModelFilter creates a relevance filter. The client is only consulted for
// URLs that survive the pattern and site checks.
func NewModelFilter(cfg config.RelevanceConfig, logger zerolog.Logger) *ModelFilter {
	var client *openai.Client
	if cfg.APIKey != "" {
		client = openai.NewClient(cfg.APIKey)
	}
	return &ModelFilter{
		cfg:    cfg,
		client: client,
		logger: logger.With().Str("component", "RelevanceFilter").Logger(),
	}
}

// IsRelevant applies the layered judgment: exclusion patterns, target-site
// membership, then a model yes/no call. Pattern and site rejections are
// definitive; a model failure is returned as an error so the caller can apply
// the safe default.
func (f *ModelFilter) IsRelevant(ctx context.Context, pageURL, keyword string, sites []string) (bool, error) {
	lowerURL := strings.ToLower(pageURL)
	for _, pattern := range exclusionPatterns {
		if strings.Contains(lowerURL, pattern) {
			f.logger.Debug().Str("url", pageURL).Str("pattern", pattern).Msg("Excluded by URL pattern")
			return false, nil
		}
	}

	if !urlhandler.MatchesAnySite(pageURL, sites) {
		f.logger.Debug().Str("url", pageURL).Msg("Not on a target site")
		return false, nil
	}

	if f.client == nil {
		// Without a model key the pre-filters are the whole judgment.
		return true, nil
	}

	ctx, cancel := context.WithTimeout(ctx, f.cfg.Timeout())
	defer cancel()

	resp, err := f.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       f.cfg.Model,
		Temperature: 0,
		MaxTokens:   10,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: relevanceSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: "keyword: " + keyword + "\nURL: " + pageURL},
		},
	})
	if err != nil {
		return false, errorwrapper.NewCollaboratorError("relevance", err)
	}
	if len(resp.Choices) == 0 {
		return false, errorwrapper.NewCollaboratorError("relevance", errorwrapper.NewError("empty completion response"))
	}

	answer := strings.ToLower(strings.TrimSpace(resp.Choices[0].Message.Content))
	relevant := strings.HasPrefix(answer, "yes")
	f.logger.Debug().Str("url", pageURL).Bool("relevant", relevant).Msg("Model relevance judgment")
	return relevant, nil
}
