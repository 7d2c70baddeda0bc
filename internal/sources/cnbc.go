package sources

import (
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// CNBC scrapes the CNBC Indonesia market section and search results.
type CNBC struct{}

func (CNBC) Name() string  { return "cnbc" }
func (CNBC) Label() string { return "CNBC Indonesia" }

func (CNBC) baseURL() string { return "https://www.cnbcindonesia.com" }

// SearchURL uses only the first keyword; CNBC's search endpoint takes a
// single query term.
func (c CNBC) SearchURL(keywords []string) string {
	if len(keywords) > 0 {
		return c.baseURL() + "/search?query=" + url.QueryEscape(keywords[0])
	}
	return c.baseURL() + "/market"
}

func (CNBC) Marker() string { return "a.group" }

func (CNBC) ExtractListing(doc *goquery.Document) []listingItem {
	var items []listingItem
	doc.Find("a.group.flex.gap-4.items-center").Each(func(_ int, card *goquery.Selection) {
		href, ok := card.Attr("href")
		if !ok || href == "" {
			return
		}
		title := strings.TrimSpace(card.Find("h2").First().Text())
		if title == "" {
			return
		}

		img := card.Find("img").First()
		imageURL, _ := img.Attr("src")
		if imageURL == "" {
			imageURL, _ = img.Attr("data-src")
		}

		dateText := strings.TrimSpace(card.Find("span").Last().Text())

		items = append(items, listingItem{
			Title:    title,
			URL:      href,
			ImageURL: imageURL,
			DateText: dateText,
		})
	})
	return items
}

func (c CNBC) ResolveURL(raw string) string {
	if strings.HasPrefix(raw, "http") {
		return raw
	}
	return c.baseURL() + raw
}

func (CNBC) ContentSelector() string { return ".detail-text" }

func (CNBC) ParseDate(text string, now time.Time) time.Time {
	return parseCNBCDate(text, now)
}
