package classifier

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// LouisVuittonClassifier interprets Louis Vuitton product pages.
type LouisVuittonClassifier struct{}

// NewLouisVuittonClassifier creates a Louis Vuitton page classifier.
func NewLouisVuittonClassifier() *LouisVuittonClassifier {
	return &LouisVuittonClassifier{}
}

func (c *LouisVuittonClassifier) Name() string { return "louisvuitton" }

func (c *LouisVuittonClassifier) Classify(doc *goquery.Document, pageURL string) (Classification, error) {
	var indicators []string

	doc.Find("button, a").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if !containsAny(sel.Text(), []string{"add to bag", "カートに追加", "加入购物车"}) {
			return true
		}
		if _, disabled := sel.Attr("disabled"); disabled {
			return true
		}
		if class, _ := sel.Attr("class"); strings.Contains(strings.ToLower(class), "disabled") {
			return true
		}
		indicators = append(indicators, indicatorAddToCartEnabled)
		return false
	})

	availabilitySelector := `.availability, .stock-status, .product-availability, [data-testid*="availability"], [class*="availability"]`
	doc.Find(availabilitySelector).Each(func(_ int, sel *goquery.Selection) {
		text := sel.Text()
		if containsAny(text, []string{"available", "在庫あり", "有库存"}) {
			if !hasIndicator(indicators, indicatorStockAvailableText) {
				indicators = append(indicators, indicatorStockAvailableText)
			}
		} else if containsAny(text, []string{"sold out", "out of stock", "在庫切れ", "缺货"}) {
			if !hasIndicator(indicators, indicatorOutOfStockText) {
				indicators = append(indicators, indicatorOutOfStockText)
			}
		}
	})

	priceSelector := `.price, .product-price, [class*="price"], [data-testid*="price"]`
	price := findPriceIn(doc, priceSelector, multiPriceRegex)
	if price != nil {
		indicators = append(indicators, indicatorPriceFound)
	}

	isAvailable := hasIndicator(indicators, indicatorAddToCartEnabled) &&
		!hasIndicator(indicators, indicatorOutOfStockText)

	return Classification{
		IsAvailable: isAvailable,
		Price:       price,
		StockStatus: resolveStockStatus(isAvailable, indicators),
		Indicators:  indicators,
	}, nil
}
