package urlhandler

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// NormalizeURL normalizes a URL string, ensuring it has a scheme, lowercase
// host, and no fragment.
func NormalizeURL(rawURL string) (string, error) {
	trimmedURL := strings.TrimSpace(rawURL)
	if trimmedURL == "" {
		return "", errors.New("URL is empty or only whitespace")
	}

	// Add scheme if missing
	if !strings.Contains(trimmedURL, "://") && !strings.HasPrefix(trimmedURL, "//") {
		trimmedURL = "https://" + trimmedURL
	}

	parsedURL, err := url.Parse(trimmedURL)
	if err != nil {
		return "", fmt.Errorf("could not parse URL '%s': %w", trimmedURL, err)
	}

	if parsedURL.Host == "" {
		return "", errors.New("URL lacks a valid hostname")
	}

	parsedURL.Host = strings.ToLower(parsedURL.Host)
	parsedURL.Fragment = ""
	return parsedURL.String(), nil
}

// ValidateURLFormat checks whether a string parses as an absolute http(s) URL.
func ValidateURLFormat(rawURL string) error {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return fmt.Errorf("invalid URL '%s': %w", rawURL, err)
	}
	if !parsed.IsAbs() || parsed.Host == "" {
		return fmt.Errorf("URL '%s' is not absolute", rawURL)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("URL '%s' has unsupported scheme '%s'", rawURL, parsed.Scheme)
	}
	return nil
}

// ExtractDomain returns the lowercase hostname of a URL, without port.
func ExtractDomain(rawURL string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("could not parse URL '%s': %w", rawURL, err)
	}
	host := parsed.Hostname()
	if host == "" {
		return "", fmt.Errorf("URL '%s' lacks a hostname", rawURL)
	}
	return strings.ToLower(host), nil
}

// MatchesAnySite reports whether the URL belongs to one of the target site
// domains. A site matches if the URL host equals it or is a subdomain of it.
func MatchesAnySite(rawURL string, sites []string) bool {
	host, err := ExtractDomain(rawURL)
	if err != nil {
		return false
	}
	for _, site := range sites {
		s := strings.ToLower(strings.TrimSpace(site))
		if s == "" {
			continue
		}
		if host == s || strings.HasSuffix(host, "."+s) {
			return true
		}
	}
	return false
}

// SiteName returns a short display name for the URL's site, used in
// notification bodies.
func SiteName(rawURL string) string {
	host, err := ExtractDomain(rawURL)
	if err != nil {
		return "unknown site"
	}
	return strings.TrimPrefix(host, "www.")
}
