package book

import "time"

// Record is a resolved bibliographic record as it appears in the ledger.
// ID is the catalog provider's key, not the product identifier extracted
// from the submitted URL. Every field other than ID and Title may be empty.
type Record struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	AuthorNames  string    `json:"author_names,omitempty"`
	ReleaseYear  string    `json:"release_year,omitempty"`
	Pages        string    `json:"pages,omitempty"`
	Rating       string    `json:"rating,omitempty"`
	RatingsCount string    `json:"ratings_count,omitempty"`
	Genres       string    `json:"genres,omitempty"`
	Description  string    `json:"description,omitempty"`
	ImageURL     string    `json:"image_url,omitempty"`
	AddedDate    time.Time `json:"added_date"`
}

// LedgerHeader is the ledger file's header row, in column order.
var LedgerHeader = []string{
	"id", "title", "author_names", "release_year", "pages", "rating",
	"ratings_count", "genres", "description", "image_url", "added_date",
}

// addedDateLayout matches the format the browsing front end reads back.
const addedDateLayout = "2006-01-02 15:04:05"

// Fields returns the record's ledger row values in LedgerHeader order.
func (r Record) Fields() []string {
	added := ""
	if !r.AddedDate.IsZero() {
		added = r.AddedDate.UTC().Format(addedDateLayout)
	}
	return []string{
		r.ID, r.Title, r.AuthorNames, r.ReleaseYear, r.Pages, r.Rating,
		r.RatingsCount, r.Genres, r.Description, r.ImageURL, added,
	}
}
