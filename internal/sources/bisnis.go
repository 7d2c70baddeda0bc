package sources

import (
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Bisnis scrapes search.bisnis.com. Result links go through a redirect
// endpoint carrying the real article URL in a "url" query parameter, and
// relative links belong to the market subdomain, not the search host.
type Bisnis struct{}

func (Bisnis) Name() string  { return "bisnis" }
func (Bisnis) Label() string { return "Bisnis Indonesia" }

func (Bisnis) baseURL() string { return "https://search.bisnis.com" }

// SearchURL joins every keyword into one space-separated query. Without
// keywords it falls back to a generic stock-market search.
func (b Bisnis) SearchURL(keywords []string) string {
	if len(keywords) > 0 {
		return b.baseURL() + "/?q=" + url.QueryEscape(strings.Join(keywords, " "))
	}
	return b.baseURL() + "/?q=saham"
}

func (Bisnis) Marker() string { return "a.artLink" }

func (b Bisnis) ExtractListing(doc *goquery.Document) []listingItem {
	var items []listingItem
	doc.Find("a.artLink").Each(func(_ int, link *goquery.Selection) {
		href, ok := link.Attr("href")
		if !ok || href == "" {
			return
		}
		articleURL := b.unwrapRedirect(href)
		if articleURL == "" {
			return
		}

		title := strings.TrimSpace(link.Find("h4").First().Text())
		if title == "" {
			return
		}

		dateText := strings.TrimSpace(link.Find("div").First().Text())

		// The thumbnail lives in the sibling element before the text link.
		img := link.Parent().Prev().Find("a.artLinkImg img").First()
		imageURL, _ := img.Attr("src")

		items = append(items, listingItem{
			Title:    title,
			URL:      articleURL,
			ImageURL: imageURL,
			DateText: dateText,
		})
	})
	return items
}

// unwrapRedirect pulls the destination out of the search redirect URL,
// returning the raw link when it does not look like a redirect.
func (b Bisnis) unwrapRedirect(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("url"); target != "" {
		return target
	}
	return href
}

func (Bisnis) ResolveURL(raw string) string {
	if strings.HasPrefix(raw, "http") {
		return raw
	}
	return "https://market.bisnis.com" + raw
}

func (Bisnis) ContentSelector() string {
	return ".article__content, .box_article, article, .content-body"
}

func (Bisnis) ParseDate(text string, now time.Time) time.Time {
	return parseBisnisDate(text, now)
}
