package classifier

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var genericBuyButtonTexts = []string{
	"add to cart", "カートに入れる", "カートに追加", "购买", "立即购买",
	"buy now", "add to bag", "add to basket",
}

var genericOutOfStockPhrases = []string{
	"out of stock", "sold out", "在庫切れ", "在庫なし",
	"缺货", "售完", "unavailable", "temporarily unavailable",
}

// GenericClassifier is the fallback for domains without a site-specific
// classifier. It looks for common buy-button labels, out-of-stock phrases, and
// multi-currency price patterns anywhere on the page.
type GenericClassifier struct{}

// NewGenericClassifier creates the fallback classifier.
func NewGenericClassifier() *GenericClassifier {
	return &GenericClassifier{}
}

func (c *GenericClassifier) Name() string { return "generic" }

func (c *GenericClassifier) Classify(doc *goquery.Document, pageURL string) (Classification, error) {
	var indicators []string

	doc.Find("button, input, a").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if !containsAny(sel.Text(), genericBuyButtonTexts) {
			return true
		}
		if _, disabled := sel.Attr("disabled"); disabled {
			return true
		}
		indicators = append(indicators, indicatorBuyButtonFound)
		return false
	})

	pageText := strings.ToLower(doc.Text())
	for _, phrase := range genericOutOfStockPhrases {
		if strings.Contains(pageText, phrase) {
			indicators = append(indicators, indicatorOutOfStockText)
			break
		}
	}

	var price *float64
	if match := multiPriceRegex.FindString(pageText); match != "" {
		price = parsePrice(match)
	}
	if price != nil {
		indicators = append(indicators, indicatorPriceFound)
	}

	isAvailable := hasIndicator(indicators, indicatorBuyButtonFound) &&
		!hasIndicator(indicators, indicatorOutOfStockText) &&
		hasIndicator(indicators, indicatorPriceFound)

	return Classification{
		IsAvailable: isAvailable,
		Price:       price,
		StockStatus: resolveStockStatus(isAvailable, indicators),
		Indicators:  indicators,
	}, nil
}
