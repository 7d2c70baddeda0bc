package sources

import (
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Kontan scrapes investasi.kontan.co.id. Its listing shows a channel label
// and a timestamp in one ".ket" block separated by a pipe.
type Kontan struct{}

var kontanKetRe = regexp.MustCompile(`(\w+)\s*\|\s*(\w+,\s*\d{1,2}\s+\w+\s+\d{4}\s*/\s*\d{1,2}:\d{2}\s*\w+)`)

func (Kontan) Name() string  { return "kontan" }
func (Kontan) Label() string { return "Kontan" }

func (Kontan) baseURL() string { return "https://investasi.kontan.co.id" }

// SearchURL joins every keyword into one space-separated query.
func (k Kontan) SearchURL(keywords []string) string {
	if len(keywords) > 0 {
		return k.baseURL() + "/search/?search=" + url.QueryEscape(strings.Join(keywords, " "))
	}
	return k.baseURL()
}

func (Kontan) Marker() string { return "ul#list-news" }

func (Kontan) ExtractListing(doc *goquery.Document) []listingItem {
	var items []listingItem
	doc.Find("ul#list-news li").Each(func(_ int, item *goquery.Selection) {
		link := item.Find("a").First()
		href, ok := link.Attr("href")
		if !ok || href == "" {
			return
		}
		title := strings.TrimSpace(item.Find("h1").First().Text())
		if title == "" {
			return
		}

		img := item.Find("img").First()
		imageURL, _ := img.Attr("data-src")
		if imageURL == "" {
			imageURL, _ = img.Attr("src")
		}

		ket := strings.TrimSpace(item.Find(".ket").First().Text())
		var dateText string
		if m := kontanKetRe.FindStringSubmatch(ket); m != nil {
			dateText = m[2]
		}

		items = append(items, listingItem{
			Title:    title,
			URL:      href,
			ImageURL: imageURL,
			DateText: dateText,
		})
	})
	return items
}

func (k Kontan) ResolveURL(raw string) string {
	if strings.HasPrefix(raw, "http") {
		return raw
	}
	return k.baseURL() + raw
}

func (Kontan) ContentSelector() string { return ".tmpt-desk-kon" }

func (Kontan) ParseDate(text string, now time.Time) time.Time {
	return parseKontanDate(text, now)
}
