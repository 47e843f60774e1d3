package classifier

import (
	"github.com/PuerkitoBio/goquery"
)

// AmazonClassifier interprets Amazon product pages.
type AmazonClassifier struct{}

// NewAmazonClassifier creates an Amazon page classifier.
func NewAmazonClassifier() *AmazonClassifier {
	return &AmazonClassifier{}
}

func (c *AmazonClassifier) Name() string { return "amazon" }

// Classify requires both an enabled add-to-cart button and a second positive
// indicator before claiming availability, since Amazon keeps the button in the
// DOM for some out-of-stock listings.
func (c *AmazonClassifier) Classify(doc *goquery.Document, pageURL string) (Classification, error) {
	var indicators []string

	addToCart := doc.Find("input#add-to-cart-button, button#add-to-cart-button")
	if addToCart.Length() > 0 {
		if _, disabled := addToCart.First().Attr("disabled"); !disabled {
			indicators = append(indicators, indicatorAddToCartEnabled)
		}
	}

	availability := doc.Find("div#availability")
	if availability.Length() > 0 {
		text := availability.Text()
		if containsAny(text, []string{"在庫あり", "in stock", "available"}) {
			indicators = append(indicators, indicatorStockAvailableText)
		} else if containsAny(text, []string{"在庫切れ", "out of stock", "unavailable"}) {
			indicators = append(indicators, indicatorOutOfStockText)
		}
	}

	price := findPriceIn(doc, `span[class*="price"], div[class*="price"]`, yenPriceRegex)
	if price != nil {
		indicators = append(indicators, indicatorPriceFound)
	}

	isAvailable := hasIndicator(indicators, indicatorAddToCartEnabled) &&
		!hasIndicator(indicators, indicatorOutOfStockText) &&
		len(indicators) >= 2

	return Classification{
		IsAvailable: isAvailable,
		Price:       price,
		StockStatus: resolveStockStatus(isAvailable, indicators),
		Indicators:  indicators,
	}, nil
}
