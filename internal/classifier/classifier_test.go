package classifier

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name    string
		matched string
		want    *float64
	}{
		{"yen symbol with commas", "¥12,800", floatPtr(12800)},
		{"fullwidth yen", "￥980", floatPtr(980)},
		{"yen suffix", "5,480円", floatPtr(5480)},
		{"dollar with decimals", "$129.99", floatPtr(129.99)},
		{"only symbols", "¥", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parsePrice(tt.matched)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}

func floatPtr(v float64) *float64 { return &v }

func TestGenericClassifier_Available(t *testing.T) {
	doc := parseDoc(t, `
	<html><body>
		<button class="purchase">Buy Now</button>
		<span>¥3,200</span>
	</body></html>`)

	classification, err := NewGenericClassifier().Classify(doc, "https://shop.example.com/p/1")

	require.NoError(t, err)
	assert.True(t, classification.IsAvailable)
	require.NotNil(t, classification.Price)
	assert.Equal(t, 3200.0, *classification.Price)
	assert.Equal(t, StockStatusInStock, classification.StockStatus)
}

func TestGenericClassifier_SoldOut(t *testing.T) {
	doc := parseDoc(t, `
	<html><body>
		<button>Add to Cart</button>
		<p>Sold Out</p>
		<span>¥3,200</span>
	</body></html>`)

	classification, err := NewGenericClassifier().Classify(doc, "https://shop.example.com/p/1")

	require.NoError(t, err)
	assert.False(t, classification.IsAvailable)
	assert.Equal(t, StockStatusOutOfStock, classification.StockStatus)
}

func TestGenericClassifier_DisabledButtonNotCounted(t *testing.T) {
	doc := parseDoc(t, `
	<html><body>
		<button disabled>Add to Cart</button>
		<span>¥3,200</span>
	</body></html>`)

	classification, err := NewGenericClassifier().Classify(doc, "https://shop.example.com/p/1")

	require.NoError(t, err)
	assert.False(t, classification.IsAvailable)
}

func TestGenericClassifier_NoPriceNotAvailable(t *testing.T) {
	doc := parseDoc(t, `
	<html><body>
		<button>Buy Now</button>
	</body></html>`)

	classification, err := NewGenericClassifier().Classify(doc, "https://shop.example.com/p/1")

	require.NoError(t, err)
	assert.False(t, classification.IsAvailable)
	assert.Nil(t, classification.Price)
}

func TestAmazonClassifier_Available(t *testing.T) {
	doc := parseDoc(t, `
	<html><body>
		<input id="add-to-cart-button" type="submit" value="カートに入れる">
		<div id="availability"><span>在庫あり</span></div>
		<span class="a-price">¥24,800</span>
	</body></html>`)

	classification, err := NewAmazonClassifier().Classify(doc, "https://www.amazon.co.jp/dp/B000")

	require.NoError(t, err)
	assert.True(t, classification.IsAvailable)
	require.NotNil(t, classification.Price)
	assert.Equal(t, 24800.0, *classification.Price)
}

func TestAmazonClassifier_OutOfStockTextWins(t *testing.T) {
	// The button stays in the DOM for some out-of-stock listings; the
	// availability text overrides it.
	doc := parseDoc(t, `
	<html><body>
		<input id="add-to-cart-button" type="submit">
		<div id="availability"><span>在庫切れ</span></div>
		<span class="a-price">¥24,800</span>
	</body></html>`)

	classification, err := NewAmazonClassifier().Classify(doc, "https://www.amazon.co.jp/dp/B000")

	require.NoError(t, err)
	assert.False(t, classification.IsAvailable)
	assert.Equal(t, StockStatusOutOfStock, classification.StockStatus)
}

func TestAmazonClassifier_ButtonAloneInsufficient(t *testing.T) {
	doc := parseDoc(t, `
	<html><body>
		<input id="add-to-cart-button" type="submit">
	</body></html>`)

	classification, err := NewAmazonClassifier().Classify(doc, "https://www.amazon.co.jp/dp/B000")

	require.NoError(t, err)
	assert.False(t, classification.IsAvailable)
}

func TestRakutenClassifier_Available(t *testing.T) {
	doc := parseDoc(t, `
	<html><body>
		<button class="cart-button">かごに追加</button>
		<p>在庫あり</p>
		<span class="price">5,980円</span>
	</body></html>`)

	classification, err := NewRakutenClassifier().Classify(doc, "https://item.rakuten.co.jp/shop/item/")

	require.NoError(t, err)
	assert.True(t, classification.IsAvailable)
	require.NotNil(t, classification.Price)
	assert.Equal(t, 5980.0, *classification.Price)
}

func TestRegistry_SelectsByDomain(t *testing.T) {
	registry := NewDefaultRegistry(zerolog.Nop())

	tests := []struct {
		url  string
		want string
	}{
		{"https://www.amazon.co.jp/dp/B000", "amazon"},
		{"https://jp.louisvuitton.com/products/bag", "louisvuitton"},
		{"https://item.rakuten.co.jp/shop/item/", "rakuten"},
		{"https://shop.example.com/p/1", "generic"},
		{"not a url", "generic"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, registry.ForURL(tt.url).Name(), tt.url)
	}
}
