package mail

import (
	"strings"

	"email-trade-bot/internal/types"

	"github.com/PuerkitoBio/goquery"
)

// Field aliases across email webhook providers; first non-empty match wins.
var (
	senderKeys  = []string{"from", "From", "sender"}
	subjectKeys = []string{"subject", "Subject"}
	bodyKeys    = []string{"stripped-text", "body-plain", "text"}
)

// Normalize maps a provider-specific payload into the canonical Email.
// Missing fields become empty strings, never an error. No address syntax
// validation is performed.
func Normalize(data map[string]string) types.Email {
	e := types.Email{
		Sender:  firstNonEmpty(data, senderKeys),
		Subject: firstNonEmpty(data, subjectKeys),
		Body:    firstNonEmpty(data, bodyKeys),
	}

	// Last resort: some providers only deliver an HTML body.
	if e.Body == "" {
		if h := data["html"]; h != "" {
			e.Body = htmlToText(h)
		}
	}

	e.Sender = strings.TrimSpace(e.Sender)
	e.Subject = strings.TrimSpace(e.Subject)
	e.Body = strings.TrimSpace(e.Body)
	return e
}

func firstNonEmpty(data map[string]string, keys []string) string {
	for _, k := range keys {
		if v := data[k]; v != "" {
			return v
		}
	}
	return ""
}

func htmlToText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return strings.TrimSpace(html)
	}
	return strings.TrimSpace(doc.Text())
}
