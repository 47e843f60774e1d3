package classifier

import (
	"strings"

	"productwatch/internal/urlhandler"

	"github.com/rs/zerolog"
)

type registryEntry struct {
	pattern    string
	classifier Classifier
}

// Registry maps domain substring patterns to site-specific classifiers, with a
// fallback for unmatched domains. Patterns are checked in registration order.
type Registry struct {
	entries  []registryEntry
	fallback Classifier
	logger   zerolog.Logger
}

// NewRegistry creates an empty registry with the given fallback classifier.
func NewRegistry(fallback Classifier, logger zerolog.Logger) *Registry {
	return &Registry{
		fallback: fallback,
		logger:   logger.With().Str("component", "ClassifierRegistry").Logger(),
	}
}

// NewDefaultRegistry creates a registry preloaded with the shipped site
// classifiers and the generic fallback.
func NewDefaultRegistry(logger zerolog.Logger) *Registry {
	registry := NewRegistry(NewGenericClassifier(), logger)
	registry.Register("amazon", NewAmazonClassifier())
	registry.Register("louisvuitton", NewLouisVuittonClassifier())
	registry.Register("lv", NewLouisVuittonClassifier())
	registry.Register("rakuten", NewRakutenClassifier())
	return registry
}

// Register adds a classifier for domains containing the given pattern.
func (r *Registry) Register(pattern string, c Classifier) {
	r.entries = append(r.entries, registryEntry{pattern: strings.ToLower(pattern), classifier: c})
}

// ForURL selects the classifier for a URL by domain substring match, falling
// back to the generic classifier for unmatched domains.
func (r *Registry) ForURL(pageURL string) Classifier {
	domain, err := urlhandler.ExtractDomain(pageURL)
	if err != nil {
		r.logger.Debug().Str("url", pageURL).Msg("Could not extract domain, using fallback classifier")
		return r.fallback
	}
	for _, entry := range r.entries {
		if strings.Contains(domain, entry.pattern) {
			return entry.classifier
		}
	}
	return r.fallback
}
