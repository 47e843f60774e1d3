package urlhandler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"adds https scheme", "example.com/path", "https://example.com/path", false},
		{"lowercases host", "https://EXAMPLE.com/Path", "https://example.com/Path", false},
		{"strips fragment", "https://example.com/p#reviews", "https://example.com/p", false},
		{"keeps query", "https://example.com/p?id=1", "https://example.com/p?id=1", false},
		{"empty", "   ", "", true},
		{"no host", "https://", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeURL(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateURLFormat(t *testing.T) {
	assert.NoError(t, ValidateURLFormat("https://example.com/p"))
	assert.NoError(t, ValidateURLFormat("http://example.com"))
	assert.Error(t, ValidateURLFormat("ftp://example.com"))
	assert.Error(t, ValidateURLFormat("/relative/path"))
}

func TestExtractDomain(t *testing.T) {
	domain, err := ExtractDomain("https://Shop.Example.com:8443/p/1")
	require.NoError(t, err)
	assert.Equal(t, "shop.example.com", domain)

	_, err = ExtractDomain("not a url")
	assert.Error(t, err)
}

func TestMatchesAnySite(t *testing.T) {
	sites := []string{"amazon.co.jp", "louisvuitton.com"}

	assert.True(t, MatchesAnySite("https://www.amazon.co.jp/dp/B000", sites))
	assert.True(t, MatchesAnySite("https://jp.louisvuitton.com/products/bag", sites))
	assert.True(t, MatchesAnySite("https://amazon.co.jp/dp/B000", sites))
	assert.False(t, MatchesAnySite("https://amazon.co.jp.evil.com/dp/B000", sites))
	assert.False(t, MatchesAnySite("https://rakuten.co.jp/item", sites))
	assert.False(t, MatchesAnySite("https://notamazon.co.jp/dp/B000", sites))
	assert.False(t, MatchesAnySite("https://example.com/p", nil))
}

func TestSiteName(t *testing.T) {
	assert.Equal(t, "amazon.co.jp", SiteName("https://www.amazon.co.jp/dp/B000"))
	assert.Equal(t, "jp.louisvuitton.com", SiteName("https://jp.louisvuitton.com/products"))
	assert.Equal(t, "unknown site", SiteName("not a url"))
}
