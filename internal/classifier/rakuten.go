package classifier

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// RakutenClassifier interprets Rakuten product pages.
type RakutenClassifier struct{}

// NewRakutenClassifier creates a Rakuten page classifier.
func NewRakutenClassifier() *RakutenClassifier {
	return &RakutenClassifier{}
}

func (c *RakutenClassifier) Name() string { return "rakuten" }

func (c *RakutenClassifier) Classify(doc *goquery.Document, pageURL string) (Classification, error) {
	var indicators []string

	doc.Find("button, input, a").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		class, _ := sel.Attr("class")
		lower := strings.ToLower(class)
		if !strings.Contains(lower, "cart") && !strings.Contains(lower, "buy") && !strings.Contains(lower, "purchase") {
			return true
		}
		if _, disabled := sel.Attr("disabled"); disabled {
			return true
		}
		indicators = append(indicators, indicatorBuyButtonFound)
		return false
	})

	pageText := strings.ToLower(doc.Text())
	if strings.Contains(pageText, "在庫") || strings.Contains(pageText, "stock") || strings.Contains(pageText, "库存") {
		if containsAny(pageText, []string{"あり", "available", "有"}) {
			indicators = append(indicators, indicatorStockAvailableText)
		} else if containsAny(pageText, []string{"なし", "out", "无", "切れ"}) {
			indicators = append(indicators, indicatorOutOfStockText)
		}
	}

	price := findPriceIn(doc, `span[class*="price"], div[class*="price"]`, yenPriceRegex)
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
