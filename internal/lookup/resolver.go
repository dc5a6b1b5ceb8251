// Package lookup resolves a product identifier to a bibliographic record,
// falling back to a page scrape for digital-edition identifiers that never
// match catalog search directly.
package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"bookdrop/internal/book"
	"bookdrop/internal/platform/amazon"
	"bookdrop/internal/platform/hardcover"
)

// searchPageSize keeps provider result pages small; only the top hit is used.
const searchPageSize = 5

type SearchClient interface {
	Search(ctx context.Context, query string, perPage int) ([]hardcover.Document, error)
}

type PageScraper interface {
	ProductPage(ctx context.Context, rawURL string) amazon.PageInfo
}

// Result carries either a resolved record or, when both stages came up
// empty, whatever scrape context exists for the review queue.
type Result struct {
	Resolved      bool
	Record        book.Record
	ScrapedTitle  string
	ScrapedAuthor string
}

type Resolver struct {
	search  SearchClient
	scraper PageScraper
	now     func() time.Time
}

func NewResolver(search SearchClient, scraper PageScraper) *Resolver {
	return &Resolver{search: search, scraper: scraper, now: time.Now}
}

// Resolve looks the identifier up in the catalog. Stage 1 queries search
// with the identifier as free text. Stage 2, gated on the digital-edition
// class, scrapes the product page and retries the search with the scraped
// title and author. Provider transport errors are returned; scrape failures
// only ever degrade the fallback query.
func (r *Resolver) Resolve(ctx context.Context, identifier, productURL string) (Result, error) {
	docs, err := r.search.Search(ctx, identifier, searchPageSize)
	if err != nil {
		return Result{}, fmt.Errorf("catalog search: %w", err)
	}
	if len(docs) > 0 {
		return Result{Resolved: true, Record: r.normalize(docs[0])}, nil
	}

	if !amazon.IsDigitalEdition(identifier) {
		return Result{}, nil
	}

	page := r.scraper.ProductPage(ctx, productURL)
	if page.Title == "" {
		return Result{ScrapedAuthor: page.Author}, nil
	}

	query := page.Title
	if page.Author != "" {
		query += " " + page.Author
	}
	docs, err = r.search.Search(ctx, query, searchPageSize)
	if err != nil {
		return Result{}, fmt.Errorf("catalog search: %w", err)
	}
	if len(docs) > 0 {
		return Result{Resolved: true, Record: r.normalize(docs[0])}, nil
	}
	return Result{ScrapedTitle: page.Title, ScrapedAuthor: page.Author}, nil
}

// normalize flattens a search document into a ledger record. List fields
// collapse to comma-separated strings, absent values to empty strings, and
// the added date is stamped here, at resolution time.
func (r *Resolver) normalize(d hardcover.Document) book.Record {
	return book.Record{
		ID:           d.ID,
		Title:        d.Title,
		AuthorNames:  strings.Join(d.AuthorNames, ", "),
		ReleaseYear:  numberString(d.ReleaseYear),
		Pages:        numberString(d.Pages),
		Rating:       ratingString(d.Rating),
		RatingsCount: numberString(d.RatingsCount),
		Genres:       strings.Join(d.Genres, ", "),
		Description:  d.Description,
		ImageURL:     d.Image.URL,
		AddedDate:    r.now().UTC().Truncate(time.Second),
	}
}

func numberString(n json.Number) string {
	return n.String()
}

func ratingString(rating float64) string {
	if rating == 0 {
		return ""
	}
	return strconv.FormatFloat(rating, 'f', -1, 64)
}
