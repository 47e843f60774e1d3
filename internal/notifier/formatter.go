package notifier

import (
	"fmt"
	"strings"
	"time"

	"productwatch/internal/models"
	"productwatch/internal/urlhandler"
)

// Email formatting constants
const (
	subjectNewProduct   = "New product in stock"
	subjectInStock      = "Back in stock"
	subjectPriceChanged = "Price changed"
	subjectTestEmail    = "Notification test"
)

func formatPrice(price *float64) string {
	if price == nil {
		return "unknown"
	}
	if *price == float64(int64(*price)) {
		return fmt.Sprintf("%.0f", *price)
	}
	return fmt.Sprintf("%.2f", *price)
}

func truncateString(s string, maxLength int) string {
	if len(s) <= maxLength {
		return s
	}
	return s[:maxLength-3] + "..."
}

// FormatChangeEvent renders one change event into an email subject plus HTML
// and plain-text bodies.
func FormatChangeEvent(event models.ChangeEvent, keyword string) (subject, htmlBody, textBody string) {
	title := event.Candidate.Title
	if title == "" {
		title = event.Candidate.URL
	}
	title = truncateString(title, 120)

	switch event.Type {
	case models.EventNewProductAvailable:
		subject = fmt.Sprintf("%s: %s", subjectNewProduct, title)
	case models.EventBecameAvailable:
		subject = fmt.Sprintf("%s: %s", subjectInStock, title)
	case models.EventPriceChanged:
		subject = fmt.Sprintf("%s: %s", subjectPriceChanged, title)
	default:
		subject = fmt.Sprintf("Product update: %s", title)
	}

	var lines []string
	lines = append(lines, fmt.Sprintf("Keyword: %s", keyword))
	lines = append(lines, fmt.Sprintf("Product: %s", title))
	lines = append(lines, fmt.Sprintf("Site: %s", urlhandler.SiteName(event.Candidate.URL)))
	lines = append(lines, fmt.Sprintf("URL: %s", event.Candidate.URL))

	switch event.Type {
	case models.EventPriceChanged:
		lines = append(lines, fmt.Sprintf("Price: %s -> %s", formatPrice(event.OldPrice), formatPrice(event.NewPrice)))
	default:
		if event.NewPrice != nil {
			lines = append(lines, fmt.Sprintf("Price: %s", formatPrice(event.NewPrice)))
		}
	}
	lines = append(lines, fmt.Sprintf("Checked at: %s", event.Current.Timestamp.Format(time.RFC3339)))

	textBody = strings.Join(lines, "\n")

	var html strings.Builder
	html.WriteString("<html><body>")
	html.WriteString(fmt.Sprintf("<h2>%s</h2>", subject))
	html.WriteString("<ul>")
	for _, line := range lines {
		html.WriteString(fmt.Sprintf("<li>%s</li>", line))
	}
	html.WriteString("</ul>")
	html.WriteString(fmt.Sprintf(`<p><a href="%s">Open product page</a></p>`, event.Candidate.URL))
	html.WriteString("</body></html>")
	htmlBody = html.String()

	return subject, htmlBody, textBody
}

// FormatTestEmail renders the configuration test email.
func FormatTestEmail(now time.Time) (subject, htmlBody, textBody string) {
	subject = subjectTestEmail
	textBody = fmt.Sprintf("Email notifications are configured correctly.\nSent at: %s", now.Format(time.RFC3339))
	htmlBody = fmt.Sprintf("<html><body><h2>%s</h2><p>Email notifications are configured correctly.</p><p>Sent at: %s</p></body></html>",
		subject, now.Format(time.RFC3339))
	return subject, htmlBody, textBody
}
