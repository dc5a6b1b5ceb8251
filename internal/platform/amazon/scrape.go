package amazon

import (
	"context"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// PageInfo holds whatever could be recovered from product page markup.
// Either field may be empty; scraping is best-effort by design.
type PageInfo struct {
	Title  string
	Author string
}

// Scraper pulls a title and author off a product page for the lookup
// fallback. It never returns errors: any failure degrades to empty fields.
type Scraper struct {
	client    *http.Client
	userAgent string
}

func NewScraper() *Scraper {
	return &Scraper{
		client:    &http.Client{Timeout: 10 * time.Second},
		userAgent: "Mozilla/5.0 (compatible; bookdrop/1.0)",
	}
}

// ProductPage fetches and scrapes the page at rawURL. Non-success responses
// are still parsed; error pages occasionally carry usable markup.
func (s *Scraper) ProductPage(ctx context.Context, rawURL string) PageInfo {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return PageInfo{}
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return PageInfo{}
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return PageInfo{}
	}
	return PageInfo{Title: scrapeTitle(doc), Author: scrapeAuthor(doc)}
}

var (
	providerPrefix = regexp.MustCompile(`(?i)^amazon(\.[a-z.]{2,6})?\s*:\s*`)
	providerSuffix = regexp.MustCompile(`(?i)\s*[:|]\s*amazon(\.[a-z.]{2,6})?.*$`)
	editionNote    = regexp.MustCompile(`\s*\([^)]*\)\s*$`)
)

// scrapeTitle prefers the structured og:title tag and falls back to the
// page title with provider noise and a trailing edition note stripped.
func scrapeTitle(doc *goquery.Document) string {
	if v, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok {
		if title := cleanTitle(v); title != "" {
			return title
		}
	}
	return cleanTitle(doc.Find("title").First().Text())
}

func cleanTitle(raw string) string {
	title := strings.TrimSpace(raw)
	title = providerPrefix.ReplaceAllString(title, "")
	title = providerSuffix.ReplaceAllString(title, "")
	title = editionNote.ReplaceAllString(title, "")
	return strings.TrimSpace(title)
}

// Byline selectors in priority order; first non-empty text wins.
var bylineSelectors = []string{
	"#bylineInfo .author a",
	"#bylineInfo a.contributorNameID",
	"#bylineInfo a",
	".author a",
}

var bylineByPattern = regexp.MustCompile(`(?i)\bby\s+([^|(\n]+)`)

func scrapeAuthor(doc *goquery.Document) string {
	for _, sel := range bylineSelectors {
		name := strings.TrimSpace(doc.Find(sel).First().Text())
		if name != "" {
			return name
		}
	}
	// Tolerant fallback: free text "by Some Name" inside the byline block.
	if m := bylineByPattern.FindStringSubmatch(doc.Find("#bylineInfo").Text()); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}
