package classifier

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Stock status values reported in classification details.
const (
	StockStatusInStock    = "in_stock"
	StockStatusOutOfStock = "out_of_stock"
	StockStatusUnknown    = "unknown"
)

// Indicator names collected while scanning a page.
const (
	indicatorAddToCartEnabled   = "add_to_cart_enabled"
	indicatorBuyButtonFound     = "buy_button_found"
	indicatorStockAvailableText = "stock_available_text"
	indicatorOutOfStockText     = "out_of_stock_text"
	indicatorPriceFound         = "price_found"
)

// Classification is the interpretation of one product page.
type Classification struct {
	IsAvailable bool
	Price       *float64
	StockStatus string
	Indicators  []string
}

// Details returns the classification as a detail map for probe result storage.
func (c Classification) Details() map[string]interface{} {
	return map[string]interface{}{
		"stock_status": c.StockStatus,
		"indicators":   c.Indicators,
	}
}

// Classifier interprets a fetched product page for one site family.
type Classifier interface {
	// Name identifies the classifier in logs and details.
	Name() string
	// Classify inspects the parsed page and reports availability and price.
	Classify(doc *goquery.Document, pageURL string) (Classification, error)
}

var (
	yenPriceRegex   = regexp.MustCompile(`[¥￥][\d,]+|[\d,]+円`)
	multiPriceRegex = regexp.MustCompile(`[¥￥$€£][\d,]+(?:\.\d+)?|[\d,]+[円元]`)
	priceStripRegex = regexp.MustCompile(`[¥￥$€£円元,\s]`)
)

// parsePrice extracts a numeric price from matched price text. Returns nil if
// the text does not reduce to a valid non-negative number.
func parsePrice(matched string) *float64 {
	cleaned := priceStripRegex.ReplaceAllString(matched, "")
	if cleaned == "" {
		return nil
	}
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || value < 0 {
		return nil
	}
	return &value
}

// findPriceIn scans the text of elements matched by selector with the given
// price regex.
func findPriceIn(doc *goquery.Document, selector string, re *regexp.Regexp) *float64 {
	var price *float64
	doc.Find(selector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if match := re.FindString(sel.Text()); match != "" {
			if p := parsePrice(match); p != nil {
				price = p
				return false
			}
		}
		return true
	})
	return price
}

func containsAny(text string, phrases []string) bool {
	lower := strings.ToLower(text)
	for _, phrase := range phrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

func hasIndicator(indicators []string, name string) bool {
	for _, ind := range indicators {
		if ind == name {
			return true
		}
	}
	return false
}

func resolveStockStatus(isAvailable bool, indicators []string) string {
	if isAvailable {
		return StockStatusInStock
	}
	if hasIndicator(indicators, indicatorOutOfStockText) {
		return StockStatusOutOfStock
	}
	return StockStatusUnknown
}
