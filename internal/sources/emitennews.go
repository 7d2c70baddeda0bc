package sources

import (
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// EmitenNews scrapes emitennews.com search results.
type EmitenNews struct{}

func (EmitenNews) Name() string  { return "emitennews" }
func (EmitenNews) Label() string { return "EmitenNews.com" }

func (EmitenNews) baseURL() string { return "https://emitennews.com" }

// SearchURL uses only the first keyword; the term is a path segment on this
// site, not a query parameter.
func (e EmitenNews) SearchURL(keywords []string) string {
	if len(keywords) > 0 {
		return e.baseURL() + "/search/" + url.PathEscape(keywords[0])
	}
	return e.baseURL() + "/search/"
}

func (EmitenNews) Marker() string { return "a.news-card-2" }

func (EmitenNews) ExtractListing(doc *goquery.Document) []listingItem {
	var items []listingItem
	doc.Find("a.news-card-2.search-result-item").Each(func(_ int, card *goquery.Selection) {
		href, ok := card.Attr("href")
		if !ok || href == "" {
			return
		}
		title := strings.TrimSpace(card.Find("p").First().Text())
		if title == "" {
			return
		}

		imageURL, _ := card.Find("img").First().Attr("src")
		dateText := strings.TrimSpace(card.Find("span").First().Text())

		items = append(items, listingItem{
			Title:    title,
			URL:      href,
			ImageURL: imageURL,
			DateText: dateText,
		})
	})
	return items
}

func (e EmitenNews) ResolveURL(raw string) string {
	if strings.HasPrefix(raw, "http") {
		return raw
	}
	return e.baseURL() + raw
}

func (EmitenNews) ContentSelector() string { return ".article-body" }

func (EmitenNews) ParseDate(text string, now time.Time) time.Time {
	return parseEmitenDate(text, now)
}
